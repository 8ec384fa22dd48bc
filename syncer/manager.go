package syncer

import (
	"context"
	"sync"

	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/mmdatafocus/garage_backend/store"
	"github.com/sirupsen/logrus"
)

// Manager owns the driver, synchronizer and scheduler for the currently
// configured backend, and rebuilds all three when the configuration
// changes. Saving new sync settings calls Reload instead of requiring a
// process restart.
type Manager struct {
	store    *store.Store
	settings *settings.Store
	logger   *logrus.Logger

	mu   sync.Mutex
	sync *Synchronizer
	auto *AutoSync
}

func NewManager(st *store.Store, cfg *settings.Store) *Manager {
	return &Manager{
		store:    st,
		settings: cfg,
		logger:   config.GetLogger(),
	}
}

// Reload tears down the running scheduler and rebuilds the sync stack from
// the current settings. Safe to call before any previous Reload.
func (m *Manager) Reload(ctx context.Context) error {
	cfg, err := m.settings.Get(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	old := m.auto
	m.auto = nil
	m.sync = nil
	m.mu.Unlock()
	if old != nil {
		old.Teardown()
	}

	driver := ForBackend(cfg.SyncBackend, m.settings)
	if driver == nil {
		m.logger.Info("no sync backend selected")
		return nil
	}
	if err := driver.Initialize(ctx); err != nil {
		config.LogError(m.logger, "syncer", "Manager.Reload", "backend initialization failed", map[string]any{
			"backend": string(cfg.SyncBackend),
		}, err)
	}

	sync := New(m.store, m.settings, driver)
	auto := NewAutoSync(sync, m.store, m.settings)

	m.mu.Lock()
	m.sync = sync
	m.auto = auto
	m.mu.Unlock()

	auto.Init(ctx)
	return nil
}

func (m *Manager) synchronizer() *Synchronizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sync
}

// Push runs a full push cycle on the active backend.
func (m *Manager) Push(ctx context.Context, triggeredBy string) error {
	sync := m.synchronizer()
	if sync == nil {
		return ErrSyncDisabled
	}
	return sync.PushAll(ctx, triggeredBy)
}

// Pull runs a full pull cycle on the active backend.
func (m *Manager) Pull(ctx context.Context, triggeredBy string) error {
	sync := m.synchronizer()
	if sync == nil {
		return ErrSyncDisabled
	}
	return sync.PullAll(ctx, triggeredBy)
}

// TestConnection probes the active backend.
func (m *Manager) TestConnection(ctx context.Context) error {
	sync := m.synchronizer()
	if sync == nil || sync.Driver() == nil {
		return classified(ErrClassConfig, "no sync backend is configured", nil)
	}
	return sync.Driver().TestConnection(ctx)
}

// Status reports the active backend and whether a cycle is running.
func (m *Manager) Status() (backend models.SyncBackend, enabled, syncing bool) {
	sync := m.synchronizer()
	if sync == nil || sync.Driver() == nil {
		return "", false, false
	}
	return sync.Driver().Name(), sync.Driver().IsEnabled(), sync.IsSyncing()
}

// Teardown stops the scheduler. In-flight cycles finish on their own.
func (m *Manager) Teardown() {
	m.mu.Lock()
	auto := m.auto
	m.auto = nil
	m.sync = nil
	m.mu.Unlock()
	if auto != nil {
		auto.Teardown()
	}
}
