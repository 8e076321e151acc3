package fundamentals

import (
	"context"

	"github.com/EuroPitch/Trading-Software/pkg/models"
)

// Fetcher abstracts the upstream fundamentals provider.
type Fetcher interface {
	// FetchHistory fetches the recent daily bars for the whole symbol set
	// in one call. The result may be partial; a symbol with no data is
	// simply absent from the map.
	FetchHistory(ctx context.Context, symbols []string) (map[string][]models.Bar, error)

	// FetchSymbolHistory is the per-symbol fallback used when the batch
	// call fails.
	FetchSymbolHistory(ctx context.Context, symbol string) ([]models.Bar, error)

	// FetchMetrics fetches the metric set for one symbol. Fields the
	// provider has no data for are nil.
	FetchMetrics(ctx context.Context, symbol string) (models.Metrics, error)

	Name() string
}

// Store persists the fundamentals layer between restarts.
type Store interface {
	Load() (models.FundamentalsMap, error)
	Save(m models.FundamentalsMap) error
}
