package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/EuroPitch/Trading-Software/cmd/server/internal/hub"
	"github.com/EuroPitch/Trading-Software/cmd/server/internal/quote"
	"github.com/EuroPitch/Trading-Software/cmd/server/internal/universe"
	"github.com/EuroPitch/Trading-Software/pkg/models"
)

const testUniverseJSON = `{
  "sectors": {
    "tech": {
      "name": "Technology",
      "stocks": [
        {"ticker": "AAPL", "name": "Apple Inc."},
        {"ticker": "MSFT", "name": "Microsoft Corporation"}
      ]
    }
  },
  "metadata": {"total_stocks": 2}
}`

type fakeQuotes struct {
	history map[string][]models.Bar
}

func (f *fakeQuotes) ComposeMany(symbols []string) map[string]models.Quote {
	out := make(map[string]models.Quote, len(symbols))
	for _, sym := range symbols {
		out[sym] = models.Quote{Symbol: sym, Price: 100}
	}
	return out
}

func (f *fakeQuotes) History(symbol string, tf quote.Timeframe) []models.Bar {
	return f.history[symbol]
}

type fakeHealth struct{ connected bool }

func (f fakeHealth) Connected() bool { return f.connected }

func newTestServer(t *testing.T, quotes QuoteSource, health StreamHealth) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universe.json")
	if err := os.WriteFile(path, []byte(testUniverseJSON), 0o644); err != nil {
		t.Fatalf("write universe file: %v", err)
	}
	u, err := universe.Load(path)
	if err != nil {
		t.Fatalf("load universe: %v", err)
	}
	logger := zap.NewNop()
	return NewServer(u, quotes, health, hub.NewHub(logger), logger)
}

func getJSON(t *testing.T, srv *Server, path string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
	return rec
}

func TestQuotesDefaultsToWholeUniverse(t *testing.T) {
	srv := newTestServer(t, &fakeQuotes{}, fakeHealth{})

	var body struct {
		Provider string                  `json:"provider"`
		Symbols  []string                `json:"symbols"`
		Data     map[string]models.Quote `json:"data"`
	}
	rec := getJSON(t, srv, "/equities/quotes", &body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(body.Symbols) != 2 || len(body.Data) != 2 {
		t.Errorf("got %d symbols, %d quotes; want 2 each", len(body.Symbols), len(body.Data))
	}
	if _, ok := body.Data["AAPL"]; !ok {
		t.Error("AAPL missing from data")
	}
}

func TestQuotesFiltersToRequestedSymbols(t *testing.T) {
	srv := newTestServer(t, &fakeQuotes{}, fakeHealth{})

	var body struct {
		Symbols []string                `json:"symbols"`
		Data    map[string]models.Quote `json:"data"`
	}
	// Comma-separated, lowercase, with an unknown ticker mixed in.
	getJSON(t, srv, "/equities/quotes?symbols=aapl,FAKE", &body)

	if len(body.Symbols) != 1 || body.Symbols[0] != "AAPL" {
		t.Errorf("symbols = %v, want [AAPL]", body.Symbols)
	}
	if _, ok := body.Data["FAKE"]; ok {
		t.Error("unknown symbol must not appear in data")
	}
}

func TestUniverseEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeQuotes{}, fakeHealth{})

	var body struct {
		Symbols       []string          `json:"symbols"`
		SectorMapping map[string]string `json:"sector_mapping"`
		Metadata      universe.Metadata `json:"metadata"`
	}
	getJSON(t, srv, "/equities/universe", &body)

	if len(body.Symbols) != 2 {
		t.Errorf("symbols = %v, want 2 entries", body.Symbols)
	}
	if body.SectorMapping["AAPL"] != "Technology" {
		t.Errorf("sector_mapping[AAPL] = %q, want Technology", body.SectorMapping["AAPL"])
	}
	if body.Metadata.TotalStocks != 2 {
		t.Errorf("metadata.total_stocks = %d, want 2", body.Metadata.TotalStocks)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	bars := []models.Bar{{
		Date: time.Now().Add(-24 * time.Hour), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 1000,
	}}
	srv := newTestServer(t, &fakeQuotes{history: map[string][]models.Bar{"AAPL": bars}}, fakeHealth{})

	var body struct {
		Symbol    string       `json:"symbol"`
		Timeframe string       `json:"timeframe"`
		Bars      []models.Bar `json:"bars"`
	}
	rec := getJSON(t, srv, "/equities/history?symbol=aapl&timeframe=1m", &body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body.Symbol != "AAPL" || body.Timeframe != "1M" {
		t.Errorf("got symbol=%q timeframe=%q", body.Symbol, body.Timeframe)
	}
	if len(body.Bars) != 1 {
		t.Errorf("bars = %d, want 1", len(body.Bars))
	}
}

func TestHistoryEmptyStillAnArray(t *testing.T) {
	srv := newTestServer(t, &fakeQuotes{}, fakeHealth{})

	rec := getJSON(t, srv, "/equities/history?symbol=MSFT", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body["bars"]) != "[]" {
		t.Errorf("bars = %s, want []", body["bars"])
	}
}

func TestHistoryValidation(t *testing.T) {
	srv := newTestServer(t, &fakeQuotes{}, fakeHealth{})

	if rec := getJSON(t, srv, "/equities/history", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing symbol: status = %d, want 400", rec.Code)
	}
	if rec := getJSON(t, srv, "/equities/history?symbol=FAKE", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown symbol: status = %d, want 404", rec.Code)
	}
	if rec := getJSON(t, srv, "/equities/history?symbol=AAPL&timeframe=7D", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad timeframe: status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeQuotes{}, fakeHealth{connected: true})

	var body struct {
		Status             string `json:"status"`
		StreamingConnected bool   `json:"streaming_connected"`
		Symbols            int    `json:"symbols"`
		Clients            int    `json:"clients"`
	}
	rec := getJSON(t, srv, "/healthz", &body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body.Status != "ok" || !body.StreamingConnected || body.Symbols != 2 || body.Clients != 0 {
		t.Errorf("unexpected health body: %+v", body)
	}
}

func TestQuotesRejectsNonGet(t *testing.T) {
	srv := newTestServer(t, &fakeQuotes{}, fakeHealth{})

	req := httptest.NewRequest(http.MethodPost, "/equities/quotes", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
