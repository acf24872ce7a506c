package reporting

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
	"github.com/ducminhle1904/futures-signal-engine/internal/exchange"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
)

// ConsoleReporter renders signals and backtests as go-pretty tables
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a reporter writing to out
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, Align: text.AlignLeft},
		{Number: 2, WidthMin: 18, Align: text.AlignRight},
	})
	return t
}

// PrintSignal renders the signal card. Price levels are only listed for
// actionable signals.
func (r *ConsoleReporter) PrintSignal(sig strategy.Signal) {
	t := r.newTable(fmt.Sprintf("%s %s SIGNAL", directionIcon(sig.Direction), sig.Symbol))

	t.AppendRows([]table.Row{
		{"Rule", string(sig.Rule)},
		{"Direction", sig.Direction.String()},
		{"Price", formatPrice(sig.Price)},
	})

	if sig.IsActionable() {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Entry", formatPrice(sig.Entry)})
		for i, tp := range []float64{sig.Target1, sig.Target2, sig.Target3} {
			if tp == 0 && !(i == 2 && sig.HasTarget3) {
				continue
			}
			t.AppendRow(table.Row{fmt.Sprintf("Target %d", i+1), formatPrice(tp)})
		}
		t.AppendRow(table.Row{"Stop Loss", formatPrice(sig.StopLoss)})
		if sig.ATR > 0 {
			t.AppendRow(table.Row{"ATR", formatPrice(sig.ATR)})
		}
	}

	if sig.Reason != "" {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Reason", sig.Reason})
	}
	if !sig.Timestamp.IsZero() {
		t.AppendRow(table.Row{"Candle", sig.Timestamp.UTC().Format("2006-01-02 15:04 MST")})
	}

	t.Render()
}

// PrintMarketContext renders the derivatives snapshot. Parts that failed
// to load are shown as unavailable.
func (r *ConsoleReporter) PrintMarketContext(mc *exchange.MarketContext) {
	if mc == nil {
		return
	}
	t := r.newTable(fmt.Sprintf("📡 %s MARKET CONTEXT", mc.Symbol))

	fair := "unavailable"
	if mc.FairPrice != nil {
		fair = formatPrice(mc.FairPrice.Price)
	}
	change := "unavailable"
	if mc.Change1h.Available {
		change = fmt.Sprintf("%+.2f%%", mc.Change1h.Percent)
	}
	funding := "unavailable"
	if mc.FundingRate != nil {
		funding = fmt.Sprintf("%+.4f%%", mc.FundingRate.RatePercent())
		if !mc.FundingRate.NextSettle.IsZero() {
			funding += " (next " + mc.FundingRate.NextSettle.UTC().Format("15:04 MST") + ")"
		}
	}
	oi := "unavailable"
	if mc.OpenInterest != nil {
		oi = fmt.Sprintf("%.2f", mc.OpenInterest.Value)
	}

	t.AppendRows([]table.Row{
		{"Fair Price", fair},
		{"1h Change", change},
		{"Funding Rate", funding},
		{"Open Interest", oi},
	})

	if len(mc.Errors) > 0 {
		parts := make([]string, 0, len(mc.Errors))
		for part := range mc.Errors {
			parts = append(parts, part)
		}
		sort.Strings(parts)
		t.AppendSeparator()
		t.AppendRow(table.Row{"Missing", strings.Join(parts, ", ")})
	}

	t.Render()
}

// PrintBacktest renders the aggregate of a backtest run
func (r *ConsoleReporter) PrintBacktest(res *backtest.Result) {
	if res == nil {
		return
	}
	s := res.Summary
	t := r.newTable(fmt.Sprintf("📊 BACKTEST %s (%s)", res.Symbol, res.Rule))

	t.AppendRows([]table.Row{
		{"Candles", res.Candles},
		{"Decision Points", res.DecisionPoints},
		{"Trades", s.TotalTrades},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Wins", s.Wins},
		{"Losses", s.Losses},
		{"Neutral", s.Neutrals},
		{"Accuracy", fmt.Sprintf("%.2f%%", s.AccuracyPercent)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Cumulative Return", fmt.Sprintf("%+.2f%%", s.CumulativeReturnPercent)},
		{"Average Return", fmt.Sprintf("%+.4f%%", s.AverageReturnPercent)},
		{"Profit Factor", fmt.Sprintf("%.2f", s.ProfitFactor)},
		{"Sharpe Ratio", fmt.Sprintf("%.2f", s.SharpeRatio)},
		{"Max Loss Streak", s.MaxConsecutiveLosses},
		{"Duration", res.Duration.Round(time.Millisecond).String()},
	})

	t.Render()
}

// PrintBatch renders one row per backtest job, failures included
func (r *ConsoleReporter) PrintBatch(results []backtest.BacktestResult) {
	sorted := append([]backtest.BacktestResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("📊 BACKTEST BATCH")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Interval", "Trades", "Accuracy", "Return", "Profit Factor", "Status"})

	for _, res := range sorted {
		if res.Error != nil || res.Result == nil {
			t.AppendRow(table.Row{res.Symbol, res.Interval, "-", "-", "-", "-", errorText(res.Error)})
			continue
		}
		s := res.Result.Summary
		t.AppendRow(table.Row{
			res.Symbol,
			res.Interval,
			s.TotalTrades,
			fmt.Sprintf("%.2f%%", s.AccuracyPercent),
			fmt.Sprintf("%+.2f%%", s.CumulativeReturnPercent),
			fmt.Sprintf("%.2f", s.ProfitFactor),
			"ok",
		})
	}

	t.Render()
}

// ScanRow is one symbol of a scan
type ScanRow struct {
	Symbol string
	Signal strategy.Signal
	Err    error
}

// PrintScan renders a symbol scan, actionable signals first
func (r *ConsoleReporter) PrintScan(rows []ScanRow) {
	sorted := append([]ScanRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := sorted[i].Signal.IsActionable(), sorted[j].Signal.IsActionable()
		if ai != aj {
			return ai
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("🔎 SIGNAL SCAN")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Signal", "Price", "Entry", "Target 1", "Stop Loss", "Note"})

	for _, row := range sorted {
		if row.Err != nil {
			t.AppendRow(table.Row{row.Symbol, "ERROR", "-", "-", "-", "-", errorText(row.Err)})
			continue
		}
		sig := row.Signal
		entry, tp1, sl := "-", "-", "-"
		if sig.IsActionable() {
			entry, tp1, sl = formatPrice(sig.Entry), formatPrice(sig.Target1), formatPrice(sig.StopLoss)
		}
		t.AppendRow(table.Row{
			row.Symbol,
			directionIcon(sig.Direction) + " " + sig.Direction.String(),
			formatPrice(sig.Price),
			entry, tp1, sl,
			sig.Reason,
		})
	}

	t.Render()
}

func directionIcon(d strategy.Direction) string {
	switch d {
	case strategy.DirectionLong:
		return "🟢"
	case strategy.DirectionShort:
		return "🔴"
	case strategy.DirectionNeutral:
		return "⚪"
	default:
		return "⚠️"
	}
}

// formatPrice keeps enough precision for sub-cent contracts
func formatPrice(v float64) string {
	switch {
	case v == 0:
		return "-"
	case v >= 1000 || v <= -1000:
		return fmt.Sprintf("%.2f", v)
	case v >= 1 || v <= -1:
		return fmt.Sprintf("%.4f", v)
	default:
		return fmt.Sprintf("%.8f", v)
	}
}

func errorText(err error) string {
	if err == nil {
		return "no result"
	}
	msg := err.Error()
	if len(msg) > 60 {
		msg = msg[:57] + "..."
	}
	return msg
}
