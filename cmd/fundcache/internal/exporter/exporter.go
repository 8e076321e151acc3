package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EuroPitch/Trading-Software/pkg/models"
)

// Row is the relational projection of one symbol's valuation metrics.
type Row struct {
	Symbol    string   `gorm:"primaryKey;size:16"`
	PERatio   *float64 `gorm:"column:pe_ratio"`
	PBRatio   *float64 `gorm:"column:pb_ratio"`
	EPS       *float64 `gorm:"column:eps"`
	MarketCap *float64 `gorm:"column:market_cap"`
	UpdatedAt time.Time
}

func (Row) TableName() string { return "stock_fundamentals" }

// Exporter projects the service's durable fundamentals cache into a
// relational table, upserting one row per symbol. It reads the same cache
// file the quote service maintains, so it never talks to the upstream
// provider itself.
type Exporter struct {
	db        *gorm.DB
	cachePath string
	rowDelay  time.Duration
	logger    *zap.Logger
}

func New(db *gorm.DB, cachePath string, logger *zap.Logger) *Exporter {
	return &Exporter{
		db:        db,
		cachePath: cachePath,
		rowDelay:  50 * time.Millisecond,
		logger:    logger,
	}
}

// Migrate creates or updates the target table.
func (e *Exporter) Migrate() error {
	return e.db.AutoMigrate(&Row{})
}

// Run performs one full export pass.
func (e *Exporter) Run(ctx context.Context) error {
	raw, err := os.ReadFile(e.cachePath)
	if err != nil {
		return fmt.Errorf("read cache: %w", err)
	}
	var cache models.FundamentalsMap
	if err := json.Unmarshal(raw, &cache); err != nil {
		return fmt.Errorf("parse cache: %w", err)
	}

	rows := RowsFromCache(cache, time.Now())
	e.logger.Info("Exporting fundamentals", zap.Int("rows", len(rows)))

	for _, row := range rows {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := e.upsert(ctx, row); err != nil {
			// One bad row must not sink the batch.
			e.logger.Warn("Upsert failed", zap.String("symbol", row.Symbol), zap.Error(err))
			continue
		}
		if e.rowDelay > 0 {
			time.Sleep(e.rowDelay)
		}
	}
	return nil
}

func (e *Exporter) upsert(ctx context.Context, row Row) error {
	return e.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pe_ratio", "pb_ratio", "eps", "market_cap", "updated_at",
		}),
	}).Create(&row).Error
}

// RowsFromCache derives the export rows from a cache snapshot, in stable
// symbol order. Symbols with no valuation data at all are skipped.
func RowsFromCache(cache models.FundamentalsMap, now time.Time) []Row {
	symbols := make([]string, 0, len(cache))
	for sym := range cache {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	rows := make([]Row, 0, len(symbols))
	for _, sym := range symbols {
		c := cache[sym].Constants
		if c.PERatio == nil && c.PBRatio == nil && c.EPS == nil && c.MarketCap == nil {
			continue
		}
		rows = append(rows, Row{
			Symbol:    sym,
			PERatio:   c.PERatio,
			PBRatio:   c.PBRatio,
			EPS:       c.EPS,
			MarketCap: c.MarketCap,
			UpdatedAt: now,
		})
	}
	return rows
}
