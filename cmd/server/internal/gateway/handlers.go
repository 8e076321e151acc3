package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gobwas/ws"
	"go.uber.org/zap"

	"github.com/EuroPitch/Trading-Software/cmd/server/internal/hub"
	"github.com/EuroPitch/Trading-Software/cmd/server/internal/quote"
	"github.com/EuroPitch/Trading-Software/cmd/server/internal/universe"
	"github.com/EuroPitch/Trading-Software/pkg/models"
)

// QuoteSource is the pull side of the composed-quote layer.
type QuoteSource interface {
	ComposeMany(symbols []string) map[string]models.Quote
	History(symbol string, tf quote.Timeframe) []models.Bar
}

// StreamHealth reports whether the live feed is currently attached.
type StreamHealth interface {
	Connected() bool
}

// Server holds the HTTP surface: pull endpoints plus the websocket upgrade
// that feeds the push hub.
type Server struct {
	universe *universe.Universe
	quotes   QuoteSource
	stream   StreamHealth
	hub      *hub.Hub
	logger   *zap.Logger
}

func NewServer(u *universe.Universe, quotes QuoteSource, stream StreamHealth, h *hub.Hub, logger *zap.Logger) *Server {
	return &Server{universe: u, quotes: quotes, stream: stream, hub: h, logger: logger}
}

// Routes registers all endpoints on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/equities/quotes", s.handleQuotes)
	mux.HandleFunc("/equities/universe", s.handleUniverse)
	mux.HandleFunc("/equities/history", s.handleHistory)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// handleQuotes serves composed snapshots. With no symbols parameter the
// whole universe is returned; requested symbols outside the universe are
// silently skipped.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbols := s.requestedSymbols(r)
	if len(symbols) == 0 {
		symbols = s.universe.Symbols()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"provider": "live",
		"symbols":  symbols,
		"data":     s.quotes.ComposeMany(symbols),
	})
}

func (s *Server) handleUniverse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbols":        s.universe.Symbols(),
		"sectors":        s.universe.Sectors,
		"sector_mapping": s.universe.SectorMapping(),
		"metadata":       s.universe.Metadata,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	if !s.universe.Contains(symbol) {
		http.Error(w, "unknown symbol", http.StatusNotFound)
		return
	}

	tfParam := r.URL.Query().Get("timeframe")
	if tfParam == "" {
		tfParam = "1M"
	}
	tf, err := quote.ParseTimeframe(tfParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bars := s.quotes.History(symbol, tf)
	if bars == nil {
		bars = []models.Bar{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":    symbol,
		"timeframe": string(tf),
		"bars":      bars,
	})
}

// handleHealth always answers 200: a missing live feed degrades the data,
// not the service.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "ok",
		"streaming_connected": s.stream.Connected(),
		"symbols":             len(s.universe.Symbols()),
		"clients":             s.hub.Count(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(conn, s.hub, s.logger)
	s.hub.Connect(client)
	client.Start()
}

func (s *Server) requestedSymbols(r *http.Request) []string {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range r.URL.Query()["symbols"] {
		// Accept both repeated params and comma-separated lists.
		for _, part := range strings.Split(raw, ",") {
			sym := strings.ToUpper(strings.TrimSpace(part))
			if sym == "" || seen[sym] || !s.universe.Contains(sym) {
				continue
			}
			seen[sym] = true
			out = append(out, sym)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
