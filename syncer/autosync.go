package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/mmdatafocus/garage_backend/store"
	"github.com/sirupsen/logrus"
)

const defaultSyncIntervalSeconds = 180

// AutoSync drives the synchronizer from three sources: an initial sync on
// startup, local data-change notifications, and a periodic timer. Every
// trigger funnels into the same guarded synchronizer, so overlapping
// triggers collapse into one running cycle.
type AutoSync struct {
	sync     *Synchronizer
	store    *store.Store
	settings *settings.Store
	logger   *logrus.Logger
	interval time.Duration

	cancel      context.CancelFunc
	unsubscribe func()
	done        chan struct{}
}

func NewAutoSync(sync *Synchronizer, st *store.Store, cfg *settings.Store) *AutoSync {
	return &AutoSync{
		sync:     sync,
		store:    st,
		settings: cfg,
		logger:   config.GetLogger(),
		interval: time.Duration(config.IntFromEnv("SYNC_INTERVAL_SECONDS", defaultSyncIntervalSeconds)) * time.Second,
	}
}

// Init wires the change listener and the timer, then runs the startup sync
// in the background. Direction on startup is decided by a cold-start
// heuristic: an empty local database pulls first so a fresh device adopts
// the remote data instead of wiping it with an empty push.
func (a *AutoSync) Init(ctx context.Context) {
	cfg, err := a.settings.Get(ctx)
	if err != nil {
		config.LogError(a.logger, "syncer", "AutoSync.Init", "failed to load settings", nil, err)
		return
	}
	if !cfg.SyncEnabled || a.sync.Driver() == nil {
		a.logger.Info("auto sync not started: sync disabled or no backend selected")
		return
	}

	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})

	a.unsubscribe = a.store.Subscribe(func() {
		go a.attempt(runCtx, models.SyncTriggeredChange)
	})

	go a.run(runCtx)
}

func (a *AutoSync) run(ctx context.Context) {
	defer close(a.done)

	if a.localIsEmpty(ctx) {
		a.logger.Info("local database is empty, starting with an initial pull")
		if err := a.sync.PullAll(ctx, models.SyncTriggeredStart); err != nil && !a.expected(err) {
			config.LogError(a.logger, "syncer", "AutoSync.run", "initial pull failed", nil, err)
		}
	} else {
		a.attempt(ctx, models.SyncTriggeredStart)
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.attempt(ctx, models.SyncTriggeredTimer)
		}
	}
}

// attempt pushes once, swallowing the in-progress and disabled sentinels:
// for automatic triggers those are normal outcomes, not failures.
func (a *AutoSync) attempt(ctx context.Context, triggeredBy string) {
	err := a.sync.PushAll(ctx, triggeredBy)
	if err != nil && !a.expected(err) {
		config.LogError(a.logger, "syncer", "AutoSync.attempt", "automatic push failed", map[string]any{
			"triggered_by": triggeredBy,
		}, err)
	}
}

func (a *AutoSync) expected(err error) bool {
	return errors.Is(err, ErrSyncInProgress) || errors.Is(err, ErrSyncDisabled) || errors.Is(err, context.Canceled)
}

func (a *AutoSync) localIsEmpty(ctx context.Context) bool {
	customers, err := store.Count[models.Customer](ctx, a.store)
	if err != nil {
		return false
	}
	vehicles, err := store.Count[models.Vehicle](ctx, a.store)
	if err != nil {
		return false
	}
	items, err := store.Count[models.InventoryItem](ctx, a.store)
	if err != nil {
		return false
	}
	return customers == 0 && vehicles == 0 && items == 0
}

// Teardown stops the timer loop and detaches the change listener. Safe to
// call when Init never started anything.
func (a *AutoSync) Teardown() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.done != nil {
		<-a.done
		a.done = nil
	}
}
