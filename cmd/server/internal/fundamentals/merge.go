package fundamentals

import "github.com/EuroPitch/Trading-Software/pkg/models"

// mergeMetrics overlays fresh metric values on top of the cached ones,
// field by field. A nil field in the fresh set keeps the previous value:
// stale-but-present beats absent.
func mergeMetrics(old, fresh models.Metrics) models.Metrics {
	out := old

	if fresh.Name != nil {
		out.Name = fresh.Name
	}
	if fresh.Sector != nil {
		out.Sector = fresh.Sector
	}
	if fresh.Currency != nil {
		out.Currency = fresh.Currency
	}
	if fresh.MarketCap != nil {
		out.MarketCap = fresh.MarketCap
	}
	if fresh.PrevClose != nil {
		out.PrevClose = fresh.PrevClose
	}
	if fresh.SharesOutstanding != nil {
		out.SharesOutstanding = fresh.SharesOutstanding
	}
	if fresh.EPS != nil {
		out.EPS = fresh.EPS
	}
	if fresh.PERatio != nil {
		out.PERatio = fresh.PERatio
	}
	if fresh.PBRatio != nil {
		out.PBRatio = fresh.PBRatio
	}
	if fresh.PEGRatio != nil {
		out.PEGRatio = fresh.PEGRatio
	}
	if fresh.DividendYield != nil {
		out.DividendYield = fresh.DividendYield
	}
	if fresh.ROE != nil {
		out.ROE = fresh.ROE
	}
	if fresh.ROA != nil {
		out.ROA = fresh.ROA
	}
	if fresh.DebtToEquity != nil {
		out.DebtToEquity = fresh.DebtToEquity
	}
	if fresh.CurrentRatio != nil {
		out.CurrentRatio = fresh.CurrentRatio
	}
	if fresh.QuickRatio != nil {
		out.QuickRatio = fresh.QuickRatio
	}
	if fresh.GrossMargin != nil {
		out.GrossMargin = fresh.GrossMargin
	}
	if fresh.OperatingMargin != nil {
		out.OperatingMargin = fresh.OperatingMargin
	}
	if fresh.ProfitMargin != nil {
		out.ProfitMargin = fresh.ProfitMargin
	}
	if fresh.RevenueGrowth != nil {
		out.RevenueGrowth = fresh.RevenueGrowth
	}
	if fresh.EarningsGrowth != nil {
		out.EarningsGrowth = fresh.EarningsGrowth
	}
	if fresh.Volume != nil {
		out.Volume = fresh.Volume
	}
	if fresh.AvgVolume != nil {
		out.AvgVolume = fresh.AvgVolume
	}
	if fresh.Beta != nil {
		out.Beta = fresh.Beta
	}
	if fresh.High52W != nil {
		out.High52W = fresh.High52W
	}
	if fresh.Low52W != nil {
		out.Low52W = fresh.Low52W
	}

	return out
}
