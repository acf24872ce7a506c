package reporting

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
)

var csvHeaders = []string{
	"Decision_Time", "Exit_Time", "Direction", "Entry", "Target", "Stop_Loss", "Exit_Price", "Outcome", "Return_%",
}

// ExportTradesCSV writes one row per scored trade
func ExportTradesCSV(res *backtest.Result, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeaders); err != nil {
		return err
	}

	if res != nil {
		for _, t := range res.Trades {
			record := []string{
				t.Timestamp.UTC().Format(time.RFC3339),
				t.ExitTime.UTC().Format(time.RFC3339),
				t.Direction.String(),
				formatFloat(t.Entry),
				formatFloat(t.Target),
				formatFloat(t.StopLoss),
				formatFloat(t.ExitPrice),
				string(t.Outcome),
				strconv.FormatFloat(t.ReturnPercent, 'f', 6, 64),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
