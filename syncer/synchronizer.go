package syncer

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/mmdatafocus/garage_backend/store"
	"github.com/sirupsen/logrus"
)

// Synchronizer is the only component that invokes a driver's table
// operations. It owns the re-entrancy guard: at most one push-or-pull
// cycle runs at a time, regardless of trigger source.
type Synchronizer struct {
	store    *store.Store
	settings *settings.Store
	driver   Driver
	logger   *logrus.Logger

	syncing atomic.Bool
}

func New(st *store.Store, cfg *settings.Store, driver Driver) *Synchronizer {
	return &Synchronizer{
		store:    st,
		settings: cfg,
		driver:   driver,
		logger:   config.GetLogger(),
	}
}

func (s *Synchronizer) Driver() Driver {
	return s.driver
}

func (s *Synchronizer) IsSyncing() bool {
	return s.syncing.Load()
}

// PushAll mirrors the full local snapshot to the remote, table by table in
// dependency order. The first table failure aborts the remaining tables:
// continuing after a failed parent would leave the remote with orphaned
// children.
func (s *Synchronizer) PushAll(ctx context.Context, triggeredBy string) error {
	if s.driver == nil || !s.driver.IsEnabled() {
		return ErrSyncDisabled
	}
	if !s.syncing.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer s.syncing.Store(false)

	run := s.beginRun(ctx, models.SyncDirectionPush, triggeredBy)
	stats := make(map[string]int, len(TableOrder))

	for _, table := range TableOrder {
		rows, err := s.store.Rows(ctx, string(table))
		if err != nil {
			s.failTable(ctx, run, table, err)
			s.finishRun(ctx, run, models.SyncRunStatusFailed, stats, 1)
			return err
		}
		if err := s.driver.ReplaceTable(ctx, table, ToRemoteRows(rows, s.driver.Mappings(table))); err != nil {
			s.failTable(ctx, run, table, err)
			s.finishRun(ctx, run, models.SyncRunStatusFailed, stats, 1)
			return err
		}
		stats[string(table)] = len(rows)
	}

	s.recordLastSync(ctx)
	s.finishRun(ctx, run, models.SyncRunStatusSuccess, stats, 0)
	return nil
}

// PullAll replaces local tables with the remote contents, table by table in
// the same dependency order. Per-table failures are isolated: the table
// keeps its prior local contents and the pull continues with the rest.
func (s *Synchronizer) PullAll(ctx context.Context, triggeredBy string) error {
	if s.driver == nil || !s.driver.IsEnabled() {
		return ErrSyncDisabled
	}
	if !s.syncing.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer s.syncing.Store(false)

	run := s.beginRun(ctx, models.SyncDirectionPull, triggeredBy)
	stats := make(map[string]int, len(TableOrder))
	errorCount := 0

	for _, table := range TableOrder {
		remote, err := s.driver.FetchTable(ctx, table)
		if err != nil {
			errorCount++
			s.failTable(ctx, run, table, err)
			continue
		}
		rows := ToLocalRows(remote, s.driver.Mappings(table))
		if err := s.store.ReplaceRows(ctx, string(table), rows); err != nil {
			errorCount++
			s.failTable(ctx, run, table, err)
			continue
		}
		stats[string(table)] = len(rows)
	}

	status := models.SyncRunStatusSuccess
	switch {
	case errorCount == len(TableOrder):
		status = models.SyncRunStatusFailed
	case errorCount > 0:
		status = models.SyncRunStatusPartial
	default:
		s.recordLastSync(ctx)
	}
	s.finishRun(ctx, run, status, stats, errorCount)
	if errorCount > 0 {
		return classified(ErrClassConnectivity, "pull finished with table errors", nil)
	}
	return nil
}

func (s *Synchronizer) recordLastSync(ctx context.Context) {
	now := time.Now().UTC()
	if _, err := s.settings.Update(ctx, &models.SettingsPatch{LastSyncTime: &now}); err != nil {
		config.LogError(s.logger, "syncer", "recordLastSync", "failed to persist last sync time", nil, err)
	}
}

/* Run bookkeeping. Written through the raw handle so history rows never
   fire the data-changed signal (that would re-trigger the scheduler). */

func (s *Synchronizer) beginRun(ctx context.Context, direction, triggeredBy string) *models.SyncRun {
	now := time.Now()
	run := &models.SyncRun{
		Backend:       string(s.driver.Name()),
		Direction:     direction,
		Status:        models.SyncRunStatusRunning,
		TriggeredBy:   triggeredBy,
		CorrelationId: uuid.NewString(),
		StartedAt:     &now,
	}
	if err := s.store.DB().WithContext(ctx).Create(run).Error; err != nil {
		config.LogError(s.logger, "syncer", "beginRun", "failed to record sync run", nil, err)
	}
	return run
}

func (s *Synchronizer) finishRun(ctx context.Context, run *models.SyncRun, status string, stats map[string]int, errorCount int) {
	finished := time.Now()
	total := 0
	for _, n := range stats {
		total += n
	}
	statsJSON, _ := json.Marshal(stats)
	var durationMs int64
	if run.StartedAt != nil {
		durationMs = finished.Sub(*run.StartedAt).Milliseconds()
	}
	err := s.store.DB().WithContext(ctx).Model(run).Updates(map[string]any{
		"status":         status,
		"finished_at":    finished,
		"duration_ms":    durationMs,
		"records_synced": total,
		"error_count":    errorCount,
		"stats_json":     statsJSON,
	}).Error
	if err != nil {
		config.LogError(s.logger, "syncer", "finishRun", "failed to finalize sync run", nil, err)
	}
}

func (s *Synchronizer) failTable(ctx context.Context, run *models.SyncRun, table Table, tableErr error) {
	config.LogError(s.logger, "syncer", "failTable", "table sync failed", map[string]any{
		"table": string(table), "direction": run.Direction,
	}, tableErr)
	rec := &models.SyncError{
		SyncRunId: run.ID,
		TableName: string(table),
		ErrorCode: string(ClassOf(tableErr)),
		Message:   tableErr.Error(),
		Retryable: ClassOf(tableErr) == ErrClassConnectivity || ClassOf(tableErr) == ErrClassTimeout || ClassOf(tableErr) == ErrClassUnavailable,
	}
	if err := s.store.DB().WithContext(ctx).Create(rec).Error; err != nil {
		config.LogError(s.logger, "syncer", "failTable", "failed to record sync error", nil, err)
	}
}
