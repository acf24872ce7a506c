package validation

import (
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// SplitByRatio splits data into one train and one test fold. ok is false when
// either side would be empty.
func SplitByRatio(data []types.OHLCV, ratio float64) (WalkForwardFold, bool) {
	if ratio <= 0 || ratio >= 1 {
		return WalkForwardFold{}, false
	}

	n := int(float64(len(data)) * ratio)
	if n < 1 || n >= len(data) {
		return WalkForwardFold{}, false
	}
	return newFold(data, 0, n, len(data)), true
}

// CreateRollingFolds slides a train window followed by a test window over
// data, moving step candles at a time
func CreateRollingFolds(data []types.OHLCV, train, test, step int) []WalkForwardFold {
	if train <= 0 || test <= 0 {
		return nil
	}
	if step <= 0 {
		step = test
	}

	var folds []WalkForwardFold
	for start := 0; start+train+test <= len(data); start += step {
		folds = append(folds, newFold(data, start, start+train, start+train+test))
	}
	return folds
}

func newFold(data []types.OHLCV, trainFrom, testFrom, testTo int) WalkForwardFold {
	return WalkForwardFold{
		TrainFrom:  trainFrom,
		TestFrom:   testFrom,
		TestTo:     testTo,
		TrainStart: data[trainFrom].Timestamp,
		TrainEnd:   data[testFrom-1].Timestamp,
		TestStart:  data[testFrom].Timestamp,
		TestEnd:    data[testTo-1].Timestamp,
	}
}
