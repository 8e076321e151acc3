package quote

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe keys the lookback window of a history query.
type Timeframe string

const (
	Timeframe1D Timeframe = "1D"
	Timeframe1W Timeframe = "1W"
	Timeframe1M Timeframe = "1M"
	Timeframe3M Timeframe = "3M"
	Timeframe1Y Timeframe = "1Y"
	Timeframe5Y Timeframe = "5Y"
)

var windows = map[Timeframe]time.Duration{
	Timeframe1D: 24 * time.Hour,
	Timeframe1W: 7 * 24 * time.Hour,
	Timeframe1M: 31 * 24 * time.Hour,
	Timeframe3M: 92 * 24 * time.Hour,
	Timeframe1Y: 365 * 24 * time.Hour,
	Timeframe5Y: 5 * 365 * 24 * time.Hour,
}

// ParseTimeframe validates a timeframe string (case-insensitive).
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := windows[tf]; !ok {
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
	return tf, nil
}

// Window returns the lookback duration for the timeframe.
func (tf Timeframe) Window() time.Duration {
	if w, ok := windows[tf]; ok {
		return w
	}
	return windows[Timeframe1M]
}
