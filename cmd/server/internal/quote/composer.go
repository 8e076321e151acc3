package quote

import (
	"math"
	"time"

	"github.com/EuroPitch/Trading-Software/cmd/server/internal/indicator"
	"github.com/EuroPitch/Trading-Software/pkg/models"
)

// FundamentalsView is the read side of the refresher's cache.
type FundamentalsView interface {
	Get(symbol string) (models.Fundamentals, bool)
}

// LiveView is the read side of the ingestor's last-price map.
type LiveView interface {
	Price(symbol string) (float64, bool)
}

// MetadataView supplies static per-symbol metadata from the universe.
type MetadataView interface {
	NameOf(symbol string) string
	SectorOf(symbol string) string
}

// Composer merges the fundamentals layer and the live-price layer into
// composed quotes on demand. Every call is a pure read of the two in-memory
// layers: no I/O, no caching, no mutation.
type Composer struct {
	funds FundamentalsView
	live  LiveView
	meta  MetadataView
}

func NewComposer(funds FundamentalsView, live LiveView, meta MetadataView) *Composer {
	return &Composer{funds: funds, live: live, meta: meta}
}

// SetLive attaches the live layer after construction. The composer feeds
// the ingestor's broadcast deltas while reading the ingestor's prices, so
// one of the two sides has to be wired late; call this before serving.
func (c *Composer) SetLive(live LiveView) {
	c.live = live
}

// Compose builds the current composed quote for one symbol. A symbol absent
// from the fundamentals cache still yields a minimal, fully populated quote.
func (c *Composer) Compose(symbol string) models.Quote {
	rec, _ := c.funds.Get(symbol)
	constants := rec.Constants

	var livePtr *float64
	if c.live != nil {
		if p, ok := c.live.Price(symbol); ok {
			livePtr = &p
		}
	}

	prev := previousClose(rec)

	// Price source priority: live tick -> cached previous close -> zero.
	var price float64
	switch {
	case livePtr != nil:
		price = *livePtr
	case prev != nil:
		price = *prev
	}

	var change, changePct float64
	if prev != nil && *prev != 0 && price != 0 {
		change = round2(price - *prev)
		changePct = round2((price - *prev) / *prev * 100)
	}

	q := models.Quote{
		Symbol:        symbol,
		Name:          c.displayName(symbol, constants),
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
		Sector:        c.sector(symbol, constants),

		PriceToBook:   constants.PBRatio,
		PEGRatio:      constants.PEGRatio,
		DividendYield: constants.DividendYield,

		ROE: constants.ROE,
		ROA: constants.ROA,

		DebtToEquity: constants.DebtToEquity,
		CurrentRatio: constants.CurrentRatio,
		QuickRatio:   constants.QuickRatio,

		GrossMargin:     constants.GrossMargin,
		OperatingMargin: constants.OperatingMargin,
		ProfitMargin:    constants.ProfitMargin,

		RevenueGrowth:  constants.RevenueGrowth,
		EarningsGrowth: constants.EarningsGrowth,

		Volume:    constants.Volume,
		AvgVolume: constants.AvgVolume,
		Beta:      constants.Beta,

		High52W: constants.High52W,
		Low52W:  constants.Low52W,
	}

	// Market cap and P/E follow the effective price when shares
	// outstanding / EPS are known, falling back to the cached statics.
	q.MarketCap = constants.MarketCap
	if constants.SharesOutstanding != nil && price > 0 {
		q.MarketCap = models.Float(price * *constants.SharesOutstanding)
	}
	q.PERatio = constants.PERatio
	if constants.EPS != nil && *constants.EPS != 0 && price > 0 {
		q.PERatio = models.Float(round2(price / *constants.EPS))
	}

	if rsi, ok := indicator.RSIWithLive(closes(rec.History), livePtr, indicator.DefaultRSIPeriod); ok {
		q.RSI = models.Float(round2(rsi))
	}

	return q
}

// ComposeMany is the vectorized form used by the pull API.
func (c *Composer) ComposeMany(symbols []string) map[string]models.Quote {
	out := make(map[string]models.Quote, len(symbols))
	for _, sym := range symbols {
		out[sym] = c.Compose(sym)
	}
	return out
}

// Delta computes the broadcast payload fields for one traded price. Shared
// with the ingestor so push updates and pull snapshots agree on the math.
func (c *Composer) Delta(symbol string, price float64) models.PriceDelta {
	d := models.PriceDelta{Price: price}
	rec, _ := c.funds.Get(symbol)
	if prev := previousClose(rec); prev != nil && *prev != 0 {
		d.Change = round2(price - *prev)
		d.ChangePercent = round2((price - *prev) / *prev * 100)
	}
	return d
}

// History returns the cached daily bars for a symbol, oldest first,
// restricted to the timeframe's lookback window.
func (c *Composer) History(symbol string, tf Timeframe) []models.Bar {
	rec, ok := c.funds.Get(symbol)
	if !ok {
		return nil
	}
	cutoff := time.Now().Add(-tf.Window())
	out := make([]models.Bar, 0, len(rec.History))
	for _, bar := range rec.History {
		if bar.Date.Before(cutoff) {
			continue
		}
		out = append(out, bar)
	}
	return out
}

func (c *Composer) displayName(symbol string, constants models.Metrics) string {
	if constants.Name != nil && *constants.Name != "" {
		return *constants.Name
	}
	return c.meta.NameOf(symbol)
}

func (c *Composer) sector(symbol string, constants models.Metrics) string {
	if s := c.meta.SectorOf(symbol); s != "Unknown" {
		return s
	}
	if constants.Sector != nil && *constants.Sector != "" {
		return *constants.Sector
	}
	return "Unknown"
}

// previousClose resolves the change baseline: the cached prev-close metric
// when present, else the last cached daily close.
func previousClose(rec models.Fundamentals) *float64 {
	if rec.Constants.PrevClose != nil {
		return rec.Constants.PrevClose
	}
	if len(rec.History) > 0 {
		return &rec.History[len(rec.History)-1].Close
	}
	return nil
}

func closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
