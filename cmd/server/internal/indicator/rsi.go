package indicator

// DefaultRSIPeriod is the lookback window used everywhere in this service.
const DefaultRSIPeriod = 14

// RSI computes a relative-strength oscillator over the trailing window of
// the close series: average up-move divided by average down-move over the
// last `period` deltas, scaled to [0,100]. It needs at least period+1
// samples; ok is false when the series is too short. When no down-moves
// exist in the window the result is pinned to 100.
func RSI(closes []float64, period int) (rsi float64, ok bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	// Only the trailing window matters.
	window := closes[len(closes)-period-1:]

	var gain, loss float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// RSIWithLive appends an optional live price to the historical closes before
// computing. This is how composed quotes fold the latest tick into the
// oscillator without mutating the cached history.
func RSIWithLive(closes []float64, live *float64, period int) (float64, bool) {
	if live == nil {
		return RSI(closes, period)
	}
	extended := make([]float64, 0, len(closes)+1)
	extended = append(extended, closes...)
	extended = append(extended, *live)
	return RSI(extended, period)
}
