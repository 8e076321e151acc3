package models

import "time"

// Bar represents a single daily OHLCV candle.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Metrics holds the slow-changing per-symbol attributes fetched from the
// fundamentals provider. Every field is independently nullable: nil means
// "the provider did not return this", which the refresher treats as
// "keep whatever we already had".
type Metrics struct {
	Name     *string `json:"name,omitempty"`
	Sector   *string `json:"sector,omitempty"`
	Currency *string `json:"currency,omitempty"`

	MarketCap         *float64 `json:"market_cap,omitempty"`
	PrevClose         *float64 `json:"prev_close,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`

	PERatio       *float64 `json:"pe_ratio,omitempty"`
	PBRatio       *float64 `json:"pb_ratio,omitempty"`
	PEGRatio      *float64 `json:"peg_ratio,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`

	ROE *float64 `json:"roe,omitempty"`
	ROA *float64 `json:"roa,omitempty"`

	DebtToEquity *float64 `json:"debt_to_equity,omitempty"`
	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	QuickRatio   *float64 `json:"quick_ratio,omitempty"`

	GrossMargin     *float64 `json:"gross_margin,omitempty"`
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	ProfitMargin    *float64 `json:"profit_margin,omitempty"`

	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"`
	EarningsGrowth *float64 `json:"earnings_growth,omitempty"`

	Volume    *float64 `json:"volume,omitempty"`
	AvgVolume *float64 `json:"avg_volume,omitempty"`
	Beta      *float64 `json:"beta,omitempty"`

	High52W *float64 `json:"52_week_high,omitempty"`
	Low52W  *float64 `json:"52_week_low,omitempty"`
}

// Fundamentals is the cached slow layer for one symbol: roughly one month of
// daily bars plus the metric constants, stamped with the fetch time.
type Fundamentals struct {
	History   []Bar     `json:"history"`
	Constants Metrics   `json:"constants"`
	FetchedAt time.Time `json:"fetched_at"`
}

// FundamentalsMap is the whole fundamentals layer, keyed by symbol. This is
// the unit that gets persisted and swapped at the end of each refresh cycle.
type FundamentalsMap map[string]Fundamentals

// Quote is the composed per-symbol view served to consumers. It is derived
// on every read from the fundamentals layer and the live price map and is
// never stored anywhere.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Sector        string  `json:"sector"`

	MarketCap     *float64 `json:"market_cap"`
	PERatio       *float64 `json:"pe_ratio"`
	PriceToBook   *float64 `json:"price_to_book"`
	PEGRatio      *float64 `json:"peg_ratio"`
	DividendYield *float64 `json:"dividend_yield"`

	ROE *float64 `json:"roe"`
	ROA *float64 `json:"roa"`

	DebtToEquity *float64 `json:"debt_to_equity"`
	CurrentRatio *float64 `json:"current_ratio"`
	QuickRatio   *float64 `json:"quick_ratio"`

	GrossMargin     *float64 `json:"gross_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	ProfitMargin    *float64 `json:"profit_margin"`

	RevenueGrowth  *float64 `json:"revenue_growth"`
	EarningsGrowth *float64 `json:"earnings_growth"`

	Volume    *float64 `json:"volume"`
	AvgVolume *float64 `json:"avg_volume"`
	Beta      *float64 `json:"beta"`

	High52W *float64 `json:"52_week_high"`
	Low52W  *float64 `json:"52_week_low"`

	RSI *float64 `json:"rsi"`
}

// Float returns a pointer to v. Convenience for building Metrics literals.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s.
func String(s string) *string { return &s }
