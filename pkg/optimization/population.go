package optimization

import (
	"sort"
)

// Population represents a collection of individuals
type Population struct {
	individuals []*Individual
}

// NewPopulation creates a new population with the given individuals
func NewPopulation(individuals []*Individual) *Population {
	return &Population{individuals: individuals}
}

// Individuals returns all individuals in the population
func (p *Population) Individuals() []*Individual {
	return p.individuals
}

// Size returns the number of individuals in the population
func (p *Population) Size() int {
	return len(p.individuals)
}

// GetBest returns the best individual; valid individuals always beat invalid ones
func (p *Population) GetBest() *Individual {
	if len(p.individuals) == 0 {
		return nil
	}

	best := p.individuals[0]
	for _, ind := range p.individuals[1:] {
		if better(ind, best) {
			best = ind
		}
	}
	return best
}

// SortByFitness sorts the population best first
func (p *Population) SortByFitness() {
	sort.SliceStable(p.individuals, func(i, j int) bool {
		return better(p.individuals[i], p.individuals[j])
	})
}

// AverageFitness is the mean fitness of the valid individuals
func (p *Population) AverageFitness() float64 {
	sum, n := 0.0, 0
	for _, ind := range p.individuals {
		if ind.Valid {
			sum += ind.Fitness
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ValidCount counts the individuals with a trusted score
func (p *Population) ValidCount() int {
	n := 0
	for _, ind := range p.individuals {
		if ind.Valid {
			n++
		}
	}
	return n
}

// GetElite returns copies of the top n individuals
func (p *Population) GetElite(n int) []*Individual {
	if n > len(p.individuals) {
		n = len(p.individuals)
	}
	p.SortByFitness()

	elite := make([]*Individual, n)
	for i := 0; i < n; i++ {
		elite[i] = p.individuals[i].Copy()
	}
	return elite
}
