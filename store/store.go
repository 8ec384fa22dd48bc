// Package store implements the offline-first local record store. Every
// mutating call notifies registered observers after the write resolves,
// which is what drives change-triggered synchronization.
package store

import (
	"context"
	"sync"

	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AllModels lists every table migrated into the local database. The slice
// order matches the sync dependency order (parents before children).
var AllModels = []any{
	&models.Customer{},
	&models.Vehicle{},
	&models.InventoryCategory{},
	&models.InventoryItem{},
	&models.Service{},
	&models.Quotation{},
	&models.QuotationItem{},
	&models.RepairOrder{},
	&models.RepairOrderItem{},
	&models.Invoice{},
	&models.Settings{},
	&models.SyncRun{},
	&models.SyncError{},
}

type Store struct {
	db     *gorm.DB
	logger *logrus.Logger

	mu        sync.Mutex
	observers map[int]func()
	nextObs   int
}

// Open opens (or creates) the local sqlite database at path.
// Use "file:name?mode=memory&cache=shared" for tests.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return &Store{
		db:        db,
		logger:    config.GetLogger(),
		observers: make(map[int]func()),
	}, nil
}

// InitSchema migrates all tables. Idempotent.
func (s *Store) InitSchema() error {
	return s.db.AutoMigrate(AllModels...)
}

// DB exposes the underlying handle for read-side queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Subscribe registers fn to run after every mutating operation. The
// returned function removes the registration.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// notify runs every observer. Fired after the underlying write resolved;
// carries no payload beyond the fact that something changed.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

/* Generic per-table operations */

func Add[T any](ctx context.Context, s *Store, record *T) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return err
	}
	s.notify()
	return nil
}

func BulkAdd[T any](ctx context.Context, s *Store, records []T) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&records).Error; err != nil {
		return err
	}
	s.notify()
	return nil
}

func Update[T any](ctx context.Context, s *Store, id int, patch map[string]any) error {
	if err := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(patch).Error; err != nil {
		return err
	}
	s.notify()
	return nil
}

func Delete[T any](ctx context.Context, s *Store, id int) error {
	if err := s.db.WithContext(ctx).Delete(new(T), id).Error; err != nil {
		return err
	}
	s.notify()
	return nil
}

func Clear[T any](ctx context.Context, s *Store) error {
	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
		return err
	}
	s.notify()
	return nil
}

func ToArray[T any](ctx context.Context, s *Store) ([]T, error) {
	var records []T
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func Count[T any](ctx context.Context, s *Store) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(new(T)).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func Get[T any](ctx context.Context, s *Store, id int) (*T, error) {
	var record T
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

/* Raw row access used by the synchronizer and backup. Rows are keyed by
   column name (snake_case), which is the local field space the mapping
   engine translates from. */

// Rows reads the complete contents of a table as raw rows.
func (s *Store) Rows(ctx context.Context, table string) ([]map[string]any, error) {
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Table(table).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceRows clears table and bulk-inserts rows inside one transaction.
// This is the standard pull pattern: a bulk load into a non-empty table
// would violate primary-key uniqueness.
func (s *Store) ReplaceRows(ctx context.Context, table string, rows []map[string]any) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// table names come from the fixed sync table list, never from input
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Table(table).Create(rows).Error
	})
	if err != nil {
		return err
	}
	s.notify()
	return nil
}
