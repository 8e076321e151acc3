package indicator

import (
	"math"
	"testing"
)

// Classic worked example: 14 periods of gains/losses ending in RSI ~70.46.
var textbookCloses = []float64{
	44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
	45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28,
}

func TestRSI_TextbookSeries(t *testing.T) {
	rsi, ok := RSI(textbookCloses, DefaultRSIPeriod)
	if !ok {
		t.Fatal("expected RSI to be available for 15 samples")
	}
	if math.Abs(rsi-70.4641) > 0.01 {
		t.Errorf("RSI = %.4f, want ~70.4641", rsi)
	}
}

func TestRSI_InsufficientSamples(t *testing.T) {
	if _, ok := RSI(textbookCloses[:14], DefaultRSIPeriod); ok {
		t.Error("expected RSI unavailable for fewer than period+1 samples")
	}
	if _, ok := RSI(nil, DefaultRSIPeriod); ok {
		t.Error("expected RSI unavailable for empty series")
	}
}

func TestRSI_AllGainsPinsTo100(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi, ok := RSI(closes, DefaultRSIPeriod)
	if !ok {
		t.Fatal("expected RSI to be available")
	}
	if rsi != 100 {
		t.Errorf("RSI = %.4f, want 100 when there are no down-moves", rsi)
	}
}

func TestRSI_AllLosses(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	rsi, ok := RSI(closes, DefaultRSIPeriod)
	if !ok {
		t.Fatal("expected RSI to be available")
	}
	if rsi != 0 {
		t.Errorf("RSI = %.4f, want 0 when there are no up-moves", rsi)
	}
}

func TestRSIWithLive_AppendsSample(t *testing.T) {
	history := textbookCloses[:14]

	// 14 historical samples alone are not enough...
	if _, ok := RSI(history, DefaultRSIPeriod); ok {
		t.Fatal("precondition: history alone should be insufficient")
	}

	// ...but appending the live tick crosses the threshold and
	// reproduces the full-series value.
	live := textbookCloses[14]
	rsi, ok := RSIWithLive(history, &live, DefaultRSIPeriod)
	if !ok {
		t.Fatal("expected RSI available once live price is appended")
	}
	if math.Abs(rsi-70.4641) > 0.01 {
		t.Errorf("RSI = %.4f, want ~70.4641", rsi)
	}
}

func TestRSIWithLive_NilLive(t *testing.T) {
	rsi, ok := RSIWithLive(textbookCloses, nil, DefaultRSIPeriod)
	if !ok {
		t.Fatal("expected RSI available")
	}
	want, _ := RSI(textbookCloses, DefaultRSIPeriod)
	if rsi != want {
		t.Errorf("nil live price should match plain RSI: %.4f != %.4f", rsi, want)
	}
}
