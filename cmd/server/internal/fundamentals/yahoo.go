package fundamentals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/EuroPitch/Trading-Software/pkg/models"
)

// YahooFetcher implements Fetcher against the Yahoo Finance public API:
// the chart endpoint for daily bars and quoteSummary for the metric set.
type YahooFetcher struct {
	Client  *http.Client
	BaseURL string
}

var _ Fetcher = (*YahooFetcher)(nil)

func NewYahooFetcher() *YahooFetcher {
	return &YahooFetcher{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: "https://query1.finance.yahoo.com",
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooValue is Yahoo's {raw, fmt} number wrapper. Only raw matters.
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

// yahooSummary is the response structure from the quoteSummary API, trimmed
// to the modules this service requests.
type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				LongName                 string     `json:"longName"`
				ShortName                string     `json:"shortName"`
				Currency                 string     `json:"currency"`
				MarketCap                yahooValue `json:"marketCap"`
				RegularMarketPrevClose   yahooValue `json:"regularMarketPreviousClose"`
				RegularMarketVolume      yahooValue `json:"regularMarketVolume"`
				AverageDailyVolume3Month yahooValue `json:"averageDailyVolume3Month"`
			} `json:"price"`
			SummaryDetail *struct {
				TrailingPE       yahooValue `json:"trailingPE"`
				DividendYield    yahooValue `json:"dividendYield"`
				Beta             yahooValue `json:"beta"`
				FiftyTwoWeekHigh yahooValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  yahooValue `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				PriceToBook       yahooValue `json:"priceToBook"`
				PegRatio          yahooValue `json:"pegRatio"`
				TrailingEps       yahooValue `json:"trailingEps"`
				SharesOutstanding yahooValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			FinancialData *struct {
				ReturnOnEquity   yahooValue `json:"returnOnEquity"`
				ReturnOnAssets   yahooValue `json:"returnOnAssets"`
				DebtToEquity     yahooValue `json:"debtToEquity"`
				CurrentRatio     yahooValue `json:"currentRatio"`
				QuickRatio       yahooValue `json:"quickRatio"`
				GrossMargins     yahooValue `json:"grossMargins"`
				OperatingMargins yahooValue `json:"operatingMargins"`
				ProfitMargins    yahooValue `json:"profitMargins"`
				RevenueGrowth    yahooValue `json:"revenueGrowth"`
				EarningsGrowth   yahooValue `json:"earningsGrowth"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (f *YahooFetcher) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// FetchHistory fetches one month of daily bars for the symbol set. Yahoo has
// no multi-symbol chart endpoint, so the batch is served by per-symbol chart
// calls with isolated errors; the call as a whole fails only when every
// symbol fails.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbols []string) (map[string][]models.Bar, error) {
	out := make(map[string][]models.Bar, len(symbols))
	var lastErr error
	for _, sym := range symbols {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		bars, err := f.FetchSymbolHistory(ctx, sym)
		if err != nil {
			lastErr = err
			continue
		}
		out[sym] = bars
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

// FetchSymbolHistory fetches one month of daily bars for a single symbol.
func (f *YahooFetcher) FetchSymbolHistory(ctx context.Context, symbol string) ([]models.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1mo", f.BaseURL, url.PathEscape(symbol))

	var chart yahooChart
	if err := f.getJSON(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote data for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, models.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(quote.Volume[i]),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// FetchMetrics fetches the metric set for one symbol from quoteSummary.
// Every field the provider omits stays nil so the refresher can retain the
// previously cached value.
func (f *YahooFetcher) FetchMetrics(ctx context.Context, symbol string) (models.Metrics, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,defaultKeyStatistics,financialData",
		f.BaseURL, url.PathEscape(symbol))

	var summary yahooSummary
	if err := f.getJSON(ctx, u, &summary); err != nil {
		return models.Metrics{}, err
	}
	if summary.QuoteSummary.Error != nil {
		return models.Metrics{}, fmt.Errorf("yahoo api error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return models.Metrics{}, fmt.Errorf("yahoo: no summary for %s", symbol)
	}

	res := summary.QuoteSummary.Result[0]
	var m models.Metrics

	if p := res.Price; p != nil {
		if p.LongName != "" {
			m.Name = models.String(p.LongName)
		} else if p.ShortName != "" {
			m.Name = models.String(p.ShortName)
		}
		if p.Currency != "" {
			m.Currency = models.String(p.Currency)
		}
		m.MarketCap = p.MarketCap.Raw
		m.PrevClose = p.RegularMarketPrevClose.Raw
		m.Volume = p.RegularMarketVolume.Raw
		m.AvgVolume = p.AverageDailyVolume3Month.Raw
	}
	if d := res.SummaryDetail; d != nil {
		m.PERatio = d.TrailingPE.Raw
		m.DividendYield = d.DividendYield.Raw
		m.Beta = d.Beta.Raw
		m.High52W = d.FiftyTwoWeekHigh.Raw
		m.Low52W = d.FiftyTwoWeekLow.Raw
	}
	if k := res.DefaultKeyStatistics; k != nil {
		m.PBRatio = k.PriceToBook.Raw
		m.PEGRatio = k.PegRatio.Raw
		m.EPS = k.TrailingEps.Raw
		m.SharesOutstanding = k.SharesOutstanding.Raw
	}
	if fd := res.FinancialData; fd != nil {
		m.ROE = fd.ReturnOnEquity.Raw
		m.ROA = fd.ReturnOnAssets.Raw
		m.DebtToEquity = fd.DebtToEquity.Raw
		m.CurrentRatio = fd.CurrentRatio.Raw
		m.QuickRatio = fd.QuickRatio.Raw
		m.GrossMargin = fd.GrossMargins.Raw
		m.OperatingMargin = fd.OperatingMargins.Raw
		m.ProfitMargin = fd.ProfitMargins.Raw
		m.RevenueGrowth = fd.RevenueGrowth.Raw
		m.EarningsGrowth = fd.EarningsGrowth.Raw
	}

	return m, nil
}
