package exporter

import (
	"testing"
	"time"

	"github.com/EuroPitch/Trading-Software/pkg/models"
)

func TestRowsFromCache(t *testing.T) {
	now := time.Now()
	cache := models.FundamentalsMap{
		"MSFT": {Constants: models.Metrics{
			PERatio: models.Float(35.2),
			EPS:     models.Float(11.8),
		}},
		"AAPL": {Constants: models.Metrics{
			PERatio:   models.Float(28.5),
			PBRatio:   models.Float(45.1),
			MarketCap: models.Float(2.9e12),
		}},
		"EMPTY": {Constants: models.Metrics{
			Name: models.String("No Valuation Data Corp"),
		}},
	}

	rows := RowsFromCache(cache, now)

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (symbol without valuation data skipped)", len(rows))
	}
	// Stable symbol order.
	if rows[0].Symbol != "AAPL" || rows[1].Symbol != "MSFT" {
		t.Errorf("order = [%s %s], want [AAPL MSFT]", rows[0].Symbol, rows[1].Symbol)
	}

	aapl := rows[0]
	if aapl.PERatio == nil || *aapl.PERatio != 28.5 {
		t.Errorf("AAPL pe_ratio = %v, want 28.5", aapl.PERatio)
	}
	if aapl.EPS != nil {
		t.Errorf("AAPL eps = %v, want nil", aapl.EPS)
	}
	if !aapl.UpdatedAt.Equal(now) {
		t.Errorf("AAPL updated_at = %v, want %v", aapl.UpdatedAt, now)
	}
}

func TestRowsFromCacheEmpty(t *testing.T) {
	if rows := RowsFromCache(models.FundamentalsMap{}, time.Now()); len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}
