package data

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ConvertIntervalToMinutes converts interval strings like "5m", "1h", "4h" to minute numbers.
// Unknown forms are returned unchanged.
func ConvertIntervalToMinutes(interval string) string {
	if _, err := strconv.Atoi(interval); err == nil {
		return interval
	}

	interval = strings.ToLower(strings.TrimSpace(interval))
	if len(interval) < 2 {
		return interval
	}

	num, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil {
		return interval
	}

	switch interval[len(interval)-1:] {
	case "m":
		return strconv.Itoa(num)
	case "h":
		return strconv.Itoa(num * 60)
	case "d":
		return strconv.Itoa(num * 24 * 60)
	case "w":
		return strconv.Itoa(num * 7 * 24 * 60)
	default:
		return interval
	}
}

// FindDataFile locates a candle dump laid out as
// {dataRoot}/{exchange}/{category}/{SYMBOL}/{minutes}/candles.csv.
// It returns the attempted paths when nothing is found.
func FindDataFile(dataRoot, exchange, symbol, interval string) (string, []string) {
	symbol = strings.ToUpper(strings.ReplaceAll(symbol, "_", ""))
	minutes := ConvertIntervalToMinutes(interval)

	var categories []string
	switch strings.ToLower(exchange) {
	case "bybit":
		categories = []string{"linear", "inverse"}
	case "binance", "mexc":
		categories = []string{"futures"}
	default:
		categories = []string{"futures", "linear"}
	}

	var attempted []string
	for _, category := range categories {
		path := filepath.Join(dataRoot, strings.ToLower(exchange), category, symbol, minutes, "candles.csv")
		attempted = append(attempted, path)
		if _, err := os.Stat(path); err == nil {
			return path, attempted
		}
	}
	return "", attempted
}
