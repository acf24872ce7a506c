package optimization

// DefaultOptimizationRanges keeps every combination valid: the fast windows
// are always below the slow ones and the RSI long band never inverts.
var DefaultOptimizationRanges = OptimizationRanges{
	ATRPeriods:     []int{7, 10, 14, 20, 28},
	ATRMultipliers: []float64{1.0, 1.25, 1.5, 1.75, 2.0, 2.5, 3.0},
	TargetMultipliers: [][3]float64{
		{0.25, 0.5, 0.75},
		{0.5, 1.0, 1.5},
		{0.5, 1.0, 2.0},
		{0.75, 1.5, 2.25},
		{1.0, 2.0, 3.0},
	},
	RSIPeriods:  []int{7, 10, 14, 21},
	RSILongMin:  []float64{30, 35, 40, 45},
	RSILongMax:  []float64{55, 60, 65, 70},
	RSIShortMin: []float64{65, 70, 75, 80},
	EMAFast:     []int{9, 12, 20, 26},
	EMASlow:     []int{30, 50, 75},
	MACDFast:    []int{6, 8, 10, 12, 14},
	MACDSlow:    []int{20, 24, 26, 30},
	MACDSignal:  []int{7, 9, 12},
}

// GetDefaultOptimizationRanges returns a copy of the default optimization ranges
func GetDefaultOptimizationRanges() OptimizationRanges {
	return DefaultOptimizationRanges
}

// GetDefaultOptimizationConfig returns the default optimization configuration
func GetDefaultOptimizationConfig() OptimizationConfig {
	return OptimizationConfig{
		PopulationSize: 24,
		Generations:    15,
		MutationRate:   0.2,
		CrossoverRate:  0.85,
		EliteSize:      4,
		TournamentSize: 2,
		MaxWorkers:     6,
		Objective:      ObjectiveAccuracy,
		MinTrades:      10,
	}
}

func (c OptimizationConfig) withDefaults() OptimizationConfig {
	def := GetDefaultOptimizationConfig()
	if c.PopulationSize < 2 {
		c.PopulationSize = def.PopulationSize
	}
	if c.Generations <= 0 {
		c.Generations = def.Generations
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		c.MutationRate = def.MutationRate
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		c.CrossoverRate = def.CrossoverRate
	}
	if c.EliteSize < 0 || c.EliteSize >= c.PopulationSize {
		c.EliteSize = c.PopulationSize / 4
	}
	if c.TournamentSize <= 0 {
		c.TournamentSize = def.TournamentSize
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = def.MaxWorkers
	}
	if c.Objective == "" {
		c.Objective = def.Objective
	}
	if c.MinTrades < 0 {
		c.MinTrades = 0
	}
	return c
}
