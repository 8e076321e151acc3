package universe

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleUniverse = `{
  "sectors": {
    "tech": {
      "name": "Technology",
      "stocks": [
        {"ticker": "AAPL", "name": "Apple Inc."},
        {"ticker": "msft", "name": "Microsoft Corporation"}
      ]
    },
    "energy": {
      "name": "Energy",
      "stocks": [
        {"ticker": "XOM", "name": "Exxon Mobil"},
        {"ticker": "AAPL", "name": "Apple Inc."}
      ]
    }
  },
  "metadata": {"total_stocks": 4}
}`

func writeUniverse(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universe.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write universe file: %v", err)
	}
	return path
}

func TestLoad_SymbolsDeduplicatedAndUppercased(t *testing.T) {
	u, err := Load(writeUniverse(t, sampleUniverse))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	syms := u.Symbols()
	if len(syms) != 3 {
		t.Fatalf("expected 3 unique symbols, got %v", syms)
	}
	if !u.Contains("MSFT") {
		t.Error("expected lowercased ticker to be uppercased")
	}
}

func TestLoad_Metadata(t *testing.T) {
	u, err := Load(writeUniverse(t, sampleUniverse))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if u.NameOf("MSFT") != "Microsoft Corporation" {
		t.Errorf("NameOf(MSFT) = %q", u.NameOf("MSFT"))
	}
	if u.NameOf("ZZZZ") != "ZZZZ" {
		t.Errorf("unknown symbol should fall back to itself, got %q", u.NameOf("ZZZZ"))
	}
	if u.SectorOf("XOM") != "Energy" {
		t.Errorf("SectorOf(XOM) = %q", u.SectorOf("XOM"))
	}
	if u.SectorOf("ZZZZ") != "Unknown" {
		t.Errorf("unknown symbol sector should be Unknown, got %q", u.SectorOf("ZZZZ"))
	}

	mapping := u.SectorMapping()
	if mapping["MSFT"] != "Technology" {
		t.Errorf("SectorMapping[MSFT] = %q", mapping["MSFT"])
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_BadJSON(t *testing.T) {
	if _, err := Load(writeUniverse(t, `{"sectors": [`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
