// Package settings is the single source of truth for which backend is
// active and its credentials. Reads and writes prefer a remote settings
// backend when one is configured; the first remote failure disables the
// remote for the rest of the session and all traffic falls back to the
// local store.
package settings

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/store"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RemoteSettings is an optional remote settings backend.
type RemoteSettings interface {
	Load(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, s *models.Settings) error
}

type Store struct {
	local  *store.Store
	remote RemoteSettings
	logger *logrus.Logger

	mu         sync.Mutex
	remoteDown bool
}

func New(local *store.Store, remote RemoteSettings) *Store {
	return &Store{
		local:  local,
		remote: remote,
		logger: config.GetLogger(),
	}
}

// Get returns the settings singleton, creating it with defaults on first
// access. Absence of a record is never an error.
func (s *Store) Get(ctx context.Context) (*models.Settings, error) {
	if remote := s.activeRemote(); remote != nil {
		settings, err := remote.Load(ctx)
		if err == nil {
			return settings, nil
		}
		s.disableRemote("Get", err)
	}
	return s.getLocal(ctx)
}

// Update merges the patch into the current settings and persists them.
func (s *Store) Update(ctx context.Context, patch *models.SettingsPatch) (*models.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	patch.Apply(settings)

	if remote := s.activeRemote(); remote != nil {
		err := remote.Save(ctx, settings)
		if err == nil {
			return settings, nil
		}
		s.disableRemote("Update", err)
	}
	if err := s.local.DB().WithContext(ctx).Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Store) getLocal(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := s.local.DB().WithContext(ctx).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.DefaultSettings()
	applyEnvDefaults(created)
	if err := s.local.DB().WithContext(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) activeRemote() RemoteSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remote == nil || s.remoteDown {
		return nil
	}
	return s.remote
}

// disableRemote is one-way for the session: the remote is not retried on
// subsequent calls once disabled.
func (s *Store) disableRemote(funcName string, err error) {
	s.mu.Lock()
	already := s.remoteDown
	s.remoteDown = true
	s.mu.Unlock()
	if !already {
		config.LogError(s.logger, "settings", funcName, "remote settings backend failed, falling back to local store", nil, err)
	}
}

// applyEnvDefaults seeds a freshly created settings row from deployment
// environment variables. Consumed once, here, never re-read.
func applyEnvDefaults(s *models.Settings) {
	if backend := strings.TrimSpace(os.Getenv("SYNC_BACKEND")); backend != "" {
		s.SyncBackend = models.SyncBackend(backend)
		s.SyncEnabled = config.EnvBoolDefault("SYNC_ENABLED", true)
	}
	s.FirestoreProjectId = config.EnvDefault("FIRESTORE_PROJECT_ID", s.FirestoreProjectId)
	s.FirestoreAPIKey = config.EnvDefault("FIRESTORE_API_KEY", s.FirestoreAPIKey)
	s.SupabaseURL = config.EnvDefault("SUPABASE_URL", s.SupabaseURL)
	s.SupabaseAPIKey = config.EnvDefault("SUPABASE_API_KEY", s.SupabaseAPIKey)
	s.SheetId = config.EnvDefault("SHEET_ID", s.SheetId)
	s.SheetAPIKey = config.EnvDefault("SHEET_API_KEY", s.SheetAPIKey)
	s.SheetWriteURL = config.EnvDefault("SHEET_WRITE_URL", s.SheetWriteURL)
	s.MongoDataURL = config.EnvDefault("MONGO_DATA_URL", s.MongoDataURL)
	s.MongoAPIKey = config.EnvDefault("MONGO_API_KEY", s.MongoAPIKey)
	s.MongoDataSource = config.EnvDefault("MONGO_DATA_SOURCE", s.MongoDataSource)
	s.MongoDatabase = config.EnvDefault("MONGO_DATABASE", s.MongoDatabase)
}
