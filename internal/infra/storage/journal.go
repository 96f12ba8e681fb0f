package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ares_go/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Journal persists the trade history of replay runs: one row per fill and
// one row per completed run. It is the P&L history the in-memory engine
// itself does not keep.
type Journal struct {
	db *gorm.DB
}

// NewJournal opens (or creates) the journal database at path.
func NewJournal(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	// Pure Go SQLite driver
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.AutoMigrate(&domain.FillRecord{}, &domain.RunRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}

	return &Journal{db: db}, nil
}

// NewRunID returns a fresh identifier for a replay run.
func NewRunID() string {
	return uuid.NewString()
}

// RecordFill appends a fill row. The row id is assigned here.
func (j *Journal) RecordFill(fill *domain.FillRecord) error {
	if fill.ID == "" {
		fill.ID = uuid.NewString()
	}
	fill.CreatedAt = time.Now()
	return j.db.Create(fill).Error
}

// RecordRun appends the summary row of a completed run.
func (j *Journal) RecordRun(run *domain.RunRecord) error {
	run.CreatedAt = time.Now()
	return j.db.Create(run).Error
}

// FillsByRun returns all fills of a run in execution order.
func (j *Journal) FillsByRun(runID string) ([]domain.FillRecord, error) {
	var fills []domain.FillRecord
	err := j.db.Where("run_id = ?", runID).Order("created_at, id").Find(&fills).Error
	return fills, err
}

// RunsBySymbol returns all recorded runs for a symbol, newest first.
func (j *Journal) RunsBySymbol(symbol string) ([]domain.RunRecord, error) {
	var runs []domain.RunRecord
	err := j.db.Where("symbol = ?", symbol).Order("created_at desc").Find(&runs).Error
	return runs, err
}

// GetRun returns a run summary by id, or nil when absent.
func (j *Journal) GetRun(runID string) (*domain.RunRecord, error) {
	var run domain.RunRecord
	err := j.db.First(&run, "id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &run, err
}
