package models

import "fmt"

// Timeframe is one of the fixed lookback windows offered to the user.
type Timeframe struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

var timeframes = []Timeframe{
	{Label: "1 Month", Days: 30},
	{Label: "3 Months", Days: 90},
	{Label: "6 Months", Days: 180},
	{Label: "12 Months", Days: 365},
}

// DefaultTimeframe is the first entry of Timeframes.
const DefaultTimeframe = "1 Month"

// Timeframes returns the supported windows in display order.
func Timeframes() []Timeframe {
	out := make([]Timeframe, len(timeframes))
	copy(out, timeframes)
	return out
}

// TimeframeDays maps a label to its day count.
func TimeframeDays(label string) (int, bool) {
	for _, tf := range timeframes {
		if tf.Label == label {
			return tf.Days, true
		}
	}
	return 0, false
}

// ResolveDays picks the lookback window: a timeframe label wins, then an
// explicit day count, then DefaultTimeframe. The result is always one of the
// Timeframes day counts.
func ResolveDays(timeframe string, days int) (int, error) {
	if timeframe != "" {
		d, ok := TimeframeDays(timeframe)
		if !ok {
			return 0, fmt.Errorf("unknown timeframe %q", timeframe)
		}
		return d, nil
	}
	if days == 0 {
		d, _ := TimeframeDays(DefaultTimeframe)
		return d, nil
	}
	for _, tf := range timeframes {
		if tf.Days == days {
			return days, nil
		}
	}
	return 0, fmt.Errorf("unsupported days %d", days)
}
