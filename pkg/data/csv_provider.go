package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// CSVProvider implements DataProvider for CSV files
type CSVProvider struct {
	format CSVColumnMapping
	log    *logger.Logger
}

// NewCSVProvider creates a new CSV data provider with default format
func NewCSVProvider() *CSVProvider {
	return NewCSVProviderWithFormat(DefaultCSVFormat)
}

// NewCSVProviderWithFormat creates a new CSV data provider with custom format
func NewCSVProviderWithFormat(format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{
		format: format,
		log:    logger.Nop(),
	}
}

// SetLogger routes skipped-row warnings to log
func (p *CSVProvider) SetLogger(log *logger.Logger) {
	if log != nil {
		p.log = log.With("csv_provider")
	}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads historical data from a CSV file. A missing file is an error.
func (p *CSVProvider) LoadData(source string) ([]types.OHLCV, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", source, err)
	}
	defer file.Close()

	return p.Read(file)
}

// Read parses CSV candles from r. The first row is a header. Rows that do not
// parse or break the OHLC envelope are skipped with a warning.
func (p *CSVProvider) Read(r io.Reader) ([]types.OHLCV, error) {
	format := p.format
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty CSV input")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var data []types.OHLCV
	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		lineNum++

		if len(record) < format.MinColumns {
			p.log.Warning("Insufficient columns at line %d (expected %d, got %d), skipping", lineNum, format.MinColumns, len(record))
			continue
		}

		timestamp, err := parseTimestamp(record[format.TimestampCol], format.DateFormat)
		if err != nil {
			p.log.Warning("Invalid timestamp '%s' at line %d, skipping: %v", record[format.TimestampCol], lineNum, err)
			continue
		}

		var values [5]float64
		cols := [5]int{format.OpenCol, format.HighCol, format.LowCol, format.CloseCol, format.VolumeCol}
		valid := true
		for i, col := range cols {
			values[i], err = strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				p.log.Warning("Invalid number '%s' at line %d, skipping: %v", record[col], lineNum, err)
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		open, high, low, close, volume := values[0], values[1], values[2], values[3], values[4]
		candle := types.OHLCV{Timestamp: timestamp, Open: open, High: high, Low: low, Close: close, Volume: volume}

		if !candle.Finite() {
			p.log.Warning("Non-finite value at line %d, skipping", lineNum)
			continue
		}

		if open <= 0 || high <= 0 || low <= 0 || close <= 0 {
			p.log.Warning("Invalid price data (negative or zero) at line %d, skipping", lineNum)
			continue
		}
		if high < open || high < close || high < low {
			p.log.Warning("High price is lower than other prices at line %d, skipping", lineNum)
			continue
		}
		if low > open || low > close {
			p.log.Warning("Low price is higher than other prices at line %d, skipping", lineNum)
			continue
		}

		data = append(data, candle)
	}

	return data, nil
}

// ValidateData validates the integrity of loaded data
func (p *CSVProvider) ValidateData(data []types.OHLCV) error {
	return validateCandles(data)
}

func validateCandles(data []types.OHLCV) error {
	if len(data) == 0 {
		return fmt.Errorf("no data provided")
	}
	for i, candle := range data {
		if !candle.Finite() {
			return fmt.Errorf("invalid price data at index %d: non-finite value", i)
		}
		if candle.Open <= 0 || candle.High <= 0 || candle.Low <= 0 || candle.Close <= 0 {
			return fmt.Errorf("invalid price data at index %d: prices must be positive", i)
		}
	}
	return types.ValidateSeries(data)
}

func parseTimestamp(value, layout string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if layout == UnixMillisFormat {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(layout, value)
}
