package fundamentals

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/EuroPitch/Trading-Software/pkg/models"
)

// FileStore persists the fundamentals map as one JSON blob on local disk.
// Only the refresher ever writes it, so no locking beyond that single-writer
// discipline is needed. The blob layout is not a cross-version contract.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the cached fundamentals map. A missing or corrupt file yields
// an empty map; the returned error is informational only and must never be
// treated as fatal.
func (s *FileStore) Load() (models.FundamentalsMap, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.FundamentalsMap{}, nil
		}
		return models.FundamentalsMap{}, fmt.Errorf("read cache: %w", err)
	}

	var m models.FundamentalsMap
	if err := json.Unmarshal(data, &m); err != nil {
		return models.FundamentalsMap{}, fmt.Errorf("parse cache: %w", err)
	}
	if m == nil {
		m = models.FundamentalsMap{}
	}
	return m, nil
}

// Save overwrites the blob wholesale.
func (s *FileStore) Save(m models.FundamentalsMap) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}
