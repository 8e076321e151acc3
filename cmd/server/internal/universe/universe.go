package universe

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Stock is one entry in the universe file.
type Stock struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Sector groups the stocks of one sector under a display name.
type Sector struct {
	Name   string  `json:"name"`
	Stocks []Stock `json:"stocks"`
}

type Metadata struct {
	TotalStocks int `json:"total_stocks"`
}

type file struct {
	Sectors  map[string]Sector `json:"sectors"`
	Metadata Metadata          `json:"metadata"`
}

// Universe is the fixed symbol set the service tracks, with per-symbol
// name and sector metadata. Immutable after Load.
type Universe struct {
	Sectors  map[string]Sector
	Metadata Metadata

	symbols []string
	names   map[string]string
	sectors map[string]string
}

// Load reads and parses the universe file. Tickers are uppercased and
// deduplicated; the symbol order is stable (sorted).
func Load(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}

	u := &Universe{
		Sectors:  f.Sectors,
		Metadata: f.Metadata,
		names:    make(map[string]string),
		sectors:  make(map[string]string),
	}

	for _, sector := range f.Sectors {
		for _, stock := range sector.Stocks {
			ticker := strings.ToUpper(strings.TrimSpace(stock.Ticker))
			if ticker == "" {
				continue
			}
			if _, seen := u.names[ticker]; !seen {
				u.symbols = append(u.symbols, ticker)
			}
			u.names[ticker] = stock.Name
			u.sectors[ticker] = sector.Name
		}
	}
	sort.Strings(u.symbols)

	return u, nil
}

// Symbols returns all tickers in the universe.
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.symbols))
	copy(out, u.symbols)
	return out
}

// Contains reports whether the symbol is part of the universe.
func (u *Universe) Contains(symbol string) bool {
	_, ok := u.names[symbol]
	return ok
}

// NameOf returns the display name for a symbol, or the symbol itself if
// it carries no metadata.
func (u *Universe) NameOf(symbol string) string {
	if name, ok := u.names[symbol]; ok && name != "" {
		return name
	}
	return symbol
}

// SectorOf returns the sector display name for a symbol, or "Unknown".
func (u *Universe) SectorOf(symbol string) string {
	if sector, ok := u.sectors[symbol]; ok && sector != "" {
		return sector
	}
	return "Unknown"
}

// SectorMapping returns a copy of the ticker -> sector name map.
func (u *Universe) SectorMapping() map[string]string {
	out := make(map[string]string, len(u.sectors))
	for sym, sector := range u.sectors {
		out[sym] = sector
	}
	return out
}
