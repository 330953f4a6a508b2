// Package storage persists completed workflow runs to SQLite via GORM.
// The core pipeline never reads from here; it is an export collaborator
// plus the backing store for the run-report API.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/netscenehq/netscene/internal/core/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrRunNotFound is returned when no snapshot exists for a run ID.
var ErrRunNotFound = errors.New("run not found")

// SQLiteStore implements ports.SceneStore.
type SQLiteStore struct {
	db *gorm.DB
}

// RunModel is the GORM model for a workflow run.
type RunModel struct {
	RunID      string `gorm:"primaryKey"`
	Status     string
	Started    time.Time
	Finished   time.Time
	ErrorCount int
	Enhanced   bool

	Devices []DeviceModel `gorm:"foreignKey:RunID"`
	Edges   []EdgeModel   `gorm:"foreignKey:RunID"`
	Errors  []ErrorModel  `gorm:"foreignKey:RunID"`
}

// DeviceModel is the GORM model for one scene node.
type DeviceModel struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"index"`
	DeviceID   string
	MAC        string `gorm:"index"`
	Serial     string
	IP         string
	Name       string
	Vendor     string
	Type       string
	Confidence int
	Model      string
	Hostname   string
	FirstSeen  time.Time
	LastSeen   time.Time
	Position   int // preserves scene order across load
}

// EdgeModel is the GORM model for one scene link.
type EdgeModel struct {
	ID     uint   `gorm:"primaryKey"`
	RunID  string `gorm:"index"`
	From   string
	To     string
	Type   string
	Status string
}

// ErrorModel stores one aggregated item error of a run.
type ErrorModel struct {
	ID      uint   `gorm:"primaryKey"`
	RunID   string `gorm:"index"`
	Step    string
	Item    string
	Message string
}

// NewSQLiteStore opens (or creates) the snapshot database and migrates
// the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if err := db.AutoMigrate(&RunModel{}, &DeviceModel{}, &EdgeModel{}, &ErrorModel{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot schema: %w", err)
	}
	db.Exec("CREATE INDEX IF NOT EXISTS idx_runs_finished ON run_models(finished)")
	return &SQLiteStore{db: db}, nil
}

// SaveSnapshot writes one completed run with its scene. Re-saving the same
// run ID replaces the previous rows.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, report domain.WorkflowReport) error {
	run := toRunModel(report)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&DeviceModel{}, &EdgeModel{}, &ErrorModel{}} {
			if err := tx.Where("run_id = ?", report.RunID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Save(&run).Error; err != nil {
			return fmt.Errorf("save run %s: %w", report.RunID, err)
		}
		return nil
	})
}

// Report loads one run's report, scene included.
func (s *SQLiteStore) Report(ctx context.Context, runID string) (domain.WorkflowReport, error) {
	var run RunModel
	err := s.db.WithContext(ctx).
		Preload("Devices", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Edges").
		Preload("Errors").
		First(&run, "run_id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.WorkflowReport{}, ErrRunNotFound
	}
	if err != nil {
		return domain.WorkflowReport{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	return fromRunModel(run), nil
}

// LatestReport returns the most recently finished run, ErrRunNotFound when
// the store is empty.
func (s *SQLiteStore) LatestReport(ctx context.Context) (domain.WorkflowReport, error) {
	var run RunModel
	err := s.db.WithContext(ctx).Order("finished DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.WorkflowReport{}, ErrRunNotFound
	}
	if err != nil {
		return domain.WorkflowReport{}, fmt.Errorf("load latest run: %w", err)
	}
	return s.Report(ctx, run.RunID)
}

// RunIDs lists stored runs, newest first, capped at limit.
func (s *SQLiteStore) RunIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	var ids []string
	err := s.db.WithContext(ctx).Model(&RunModel{}).
		Order("finished DESC").Limit(limit).Pluck("run_id", &ids).Error
	return ids, err
}

// Prune deletes runs finished before the cutoff, returning how many were
// removed.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&RunModel{}).
		Where("finished < ?", before).Pluck("run_id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&DeviceModel{}, &EdgeModel{}, &ErrorModel{}} {
			if err := tx.Where("run_id IN ?", ids).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Where("run_id IN ?", ids).Delete(&RunModel{}).Error
	})
	return int64(len(ids)), err
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
