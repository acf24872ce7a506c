package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
)

// ExcelStyles holds the cell styles shared by the workbook sheets
type ExcelStyles struct {
	HeaderStyle  int
	PriceStyle   int
	PercentStyle int
	DateStyle    int
	BaseStyle    int
	WinStyle     int
	LossStyle    int
	LabelStyle   int
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "E0E0E0", Style: 1},
	{Type: "right", Color: "E0E0E0", Style: 1},
	{Type: "bottom", Color: "E0E0E0", Style: 1},
}

// ExportTradesXLSX writes every scored trade plus the run summary to an
// Excel workbook with a Trades and a Summary sheet.
func ExportTradesXLSX(res *backtest.Result, path string) error {
	if res == nil {
		return fmt.Errorf("no backtest result to export")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const summarySheet = "Summary"

	if err := fx.SetSheetName(fx.GetSheetName(0), tradesSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	styles, err := createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := writeTradesSheet(fx, tradesSheet, res, styles); err != nil {
		return err
	}
	if err := writeSummarySheet(fx, summarySheet, res, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	// Header style - dark slate background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	priceFmt := "#,##0.00######"
	styles.PriceStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &priceFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       thinBorder,
	})
	if err != nil {
		return styles, err
	}

	// Returns are stored as percent values, not fractions
	percentFmt := "0.0000\"%\""
	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &percentFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       thinBorder,
	})
	if err != nil {
		return styles, err
	}

	dateFmt := "yyyy-mm-dd hh:mm"
	styles.DateStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &dateFmt,
		Alignment:    &excelize.Alignment{Horizontal: "center"},
		Border:       thinBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return styles, err
	}

	// Outcome styles - green for wins, red for losses
	styles.WinStyle, err = fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "006100"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.LossStyle, err = fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "9C0006"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.LabelStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
		Border: thinBorder,
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

var tradeHeaders = []string{
	"#", "Decision Time", "Exit Time", "Direction", "Entry", "Target", "Stop Loss", "Exit Price", "Outcome", "Return %",
}

func writeTradesSheet(fx *excelize.File, sheet string, res *backtest.Result, styles ExcelStyles) error {
	for i, h := range tradeHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(tradeHeaders), 1)
	if err := fx.SetCellStyle(sheet, "A1", last, styles.HeaderStyle); err != nil {
		return err
	}

	for i, t := range res.Trades {
		row := i + 2
		values := []interface{}{
			i + 1,
			t.Timestamp.UTC(),
			t.ExitTime.UTC(),
			t.Direction.String(),
			t.Entry,
			t.Target,
			t.StopLoss,
			t.ExitPrice,
			string(t.Outcome),
			t.ReturnPercent,
		}
		cellStyles := []int{
			styles.BaseStyle,
			styles.DateStyle,
			styles.DateStyle,
			styles.BaseStyle,
			styles.PriceStyle,
			styles.PriceStyle,
			styles.PriceStyle,
			styles.PriceStyle,
			outcomeStyle(t.Outcome, styles),
			styles.PercentStyle,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if err := fx.SetCellStyle(sheet, cell, cell, cellStyles[col]); err != nil {
				return err
			}
		}
	}

	_ = fx.SetColWidth(sheet, "A", "A", 6)
	_ = fx.SetColWidth(sheet, "B", "C", 18)
	_ = fx.SetColWidth(sheet, "D", "J", 14)
	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummarySheet(fx *excelize.File, sheet string, res *backtest.Result, styles ExcelStyles) error {
	s := res.Summary
	rows := [][]interface{}{
		{"Symbol", res.Symbol},
		{"Rule", string(res.Rule)},
		{"Candles", res.Candles},
		{"Decision Points", res.DecisionPoints},
		{"Trades", s.TotalTrades},
		{"Wins", s.Wins},
		{"Losses", s.Losses},
		{"Neutral", s.Neutrals},
		{"Accuracy %", s.AccuracyPercent},
		{"Cumulative Return %", s.CumulativeReturnPercent},
		{"Average Return %", s.AverageReturnPercent},
		{"Profit Factor", s.ProfitFactor},
		{"Sharpe Ratio", s.SharpeRatio},
		{"Max Consecutive Losses", s.MaxConsecutiveLosses},
	}

	if err := fx.SetCellValue(sheet, "A1", "Metric"); err != nil {
		return err
	}
	if err := fx.SetCellValue(sheet, "B1", "Value"); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "B1", styles.HeaderStyle); err != nil {
		return err
	}

	for i, r := range rows {
		row := i + 2
		label := fmt.Sprintf("A%d", row)
		value := fmt.Sprintf("B%d", row)
		if err := fx.SetCellValue(sheet, label, r[0]); err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, value, r[1]); err != nil {
			return err
		}
		_ = fx.SetCellStyle(sheet, label, label, styles.LabelStyle)
		_ = fx.SetCellStyle(sheet, value, value, styles.BaseStyle)
	}

	_ = fx.SetColWidth(sheet, "A", "A", 26)
	return fx.SetColWidth(sheet, "B", "B", 18)
}

func outcomeStyle(o backtest.Outcome, styles ExcelStyles) int {
	switch o {
	case backtest.OutcomeWin:
		return styles.WinStyle
	case backtest.OutcomeLoss:
		return styles.LossStyle
	default:
		return styles.BaseStyle
	}
}
