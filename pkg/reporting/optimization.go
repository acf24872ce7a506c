package reporting

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/optimization"
	"github.com/ducminhle1904/futures-signal-engine/pkg/validation"
)

// PrintOptimization compares the tuned parameters with the base ones
func (r *ConsoleReporter) PrintOptimization(res *optimization.Result) {
	if res == nil || res.Best == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("🧬 OPTIMIZATION")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Parameter", "Base", "Best"})

	var base strategy.Params
	if res.Base != nil {
		base = res.Base.Params
	}
	for _, row := range paramRows(base, res.Best.Params) {
		t.AppendRow(row)
	}

	t.AppendSeparator()
	t.AppendRow(table.Row{"Trades", summaryTrades(res.Base), res.Best.Summary.TotalTrades})
	t.AppendRow(table.Row{"Accuracy", summaryAccuracy(res.Base), fmt.Sprintf("%.2f%%", res.Best.Summary.AccuracyPercent)})
	t.AppendRow(table.Row{"Return", summaryReturn(res.Base), fmt.Sprintf("%+.2f%%", res.Best.Summary.CumulativeReturnPercent)})
	t.AppendFooter(table.Row{"Evaluations", "", res.Evaluations})

	t.Render()
}

// PrintWalkForward renders one row per fold plus the averages
func (r *ConsoleReporter) PrintWalkForward(s *validation.WalkForwardSummary) {
	if s == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("🔄 WALK-FORWARD")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Fold", "Test Window", "Train Acc", "Test Acc", "Train Ret", "Test Ret", "Test Trades"})

	for _, res := range s.Results {
		t.AppendRow(table.Row{
			res.Fold,
			res.Window.TestStart.UTC().Format("2006-01-02 15:04") + " → " + res.Window.TestEnd.UTC().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f%%", res.Train.AccuracyPercent),
			fmt.Sprintf("%.2f%%", res.Test.AccuracyPercent),
			fmt.Sprintf("%+.2f%%", res.Train.CumulativeReturnPercent),
			fmt.Sprintf("%+.2f%%", res.Test.CumulativeReturnPercent),
			res.Test.TotalTrades,
		})
	}

	t.AppendFooter(table.Row{
		"Avg", "",
		fmt.Sprintf("%.2f%%", s.AverageTrainAccuracy),
		fmt.Sprintf("%.2f%% ± %.2f", s.AverageTestAccuracy, s.TestAccuracyStdDev),
		fmt.Sprintf("%+.2f%%", s.AverageTrainReturn),
		fmt.Sprintf("%+.2f%%", s.AverageTestReturn),
		fmt.Sprintf("%s risk", s.OverfittingRisk),
	})
	t.Render()

	verdict := "✅ Accuracy holds out of sample"
	if !s.IsRobust {
		verdict = "⚠️  Accuracy drops out of sample, parameters look overfit"
	}
	fmt.Fprintf(r.out, "%s (degradation %.1f%%)\n", verdict, s.AccuracyDegradation)
}

func paramRows(base, best strategy.Params) []table.Row {
	return []table.Row{
		{"ATR Period", base.ATRPeriod, best.ATRPeriod},
		{"ATR Multiplier", base.ATRMultiplier, best.ATRMultiplier},
		{"Targets", fmt.Sprint(base.TargetMultipliers), fmt.Sprint(best.TargetMultipliers)},
		{"RSI Period", base.RSIPeriod, best.RSIPeriod},
		{"RSI Long Band", fmt.Sprintf("%.0f-%.0f", base.RSILongMin, base.RSILongMax), fmt.Sprintf("%.0f-%.0f", best.RSILongMin, best.RSILongMax)},
		{"RSI Short Min", base.RSIShortMin, best.RSIShortMin},
		{"EMA", fmt.Sprintf("%d/%d", base.EMAFast, base.EMASlow), fmt.Sprintf("%d/%d", best.EMAFast, best.EMASlow)},
		{"MACD", fmt.Sprintf("%d/%d/%d", base.MACDFast, base.MACDSlow, base.MACDSignal), fmt.Sprintf("%d/%d/%d", best.MACDFast, best.MACDSlow, best.MACDSignal)},
	}
}

func summaryTrades(ind *optimization.Individual) interface{} {
	if ind == nil || ind.Err != nil {
		return "-"
	}
	return ind.Summary.TotalTrades
}

func summaryAccuracy(ind *optimization.Individual) string {
	if ind == nil || ind.Err != nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", ind.Summary.AccuracyPercent)
}

func summaryReturn(ind *optimization.Individual) string {
	if ind == nil || ind.Err != nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", ind.Summary.CumulativeReturnPercent)
}
