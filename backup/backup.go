package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/mmdatafocus/garage_backend/store"
	"github.com/mmdatafocus/garage_backend/syncer"
	"github.com/sirupsen/logrus"
)

// snapshotVersion tags the export format so a future format change can
// still read old files.
const snapshotVersion = 1

// Snapshot is the full-database backup document: every synced table plus
// the settings record.
type Snapshot struct {
	Version    int                         `json:"version"`
	ExportedAt time.Time                   `json:"exported_at"`
	Data       map[string][]map[string]any `json:"data"`
	Settings   *models.Settings            `json:"settings,omitempty"`
}

type Manager struct {
	store    *store.Store
	settings *settings.Store
	logger   *logrus.Logger
}

func NewManager(st *store.Store, cfg *settings.Store) *Manager {
	return &Manager{store: st, settings: cfg, logger: config.GetLogger()}
}

// Export writes the snapshot JSON to w.
func (m *Manager) Export(ctx context.Context, w io.Writer) error {
	snap := Snapshot{
		Version:    snapshotVersion,
		ExportedAt: time.Now().UTC(),
		Data:       make(map[string][]map[string]any, len(syncer.TableOrder)),
	}
	for _, table := range syncer.TableOrder {
		rows, err := m.store.Rows(ctx, string(table))
		if err != nil {
			return fmt.Errorf("export %s: %w", table, err)
		}
		snap.Data[string(table)] = rows
	}

	cfg, err := m.settings.Get(ctx)
	if err != nil {
		config.LogError(m.logger, "backup", "Export", "settings unavailable, exporting data only", nil, err)
	} else {
		snap.Settings = cfg
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Import replaces the local database with the snapshot read from r. Tables
// load in dependency order so parents exist before their children. Settings
// restore through the normal update path, which also refreshes the remote
// copy when one is configured.
func (m *Manager) Import(ctx context.Context, r io.Reader) error {
	var snap Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return fmt.Errorf("invalid backup file: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported backup version %d", snap.Version)
	}
	if snap.Data == nil {
		return fmt.Errorf("invalid backup file: missing data section")
	}

	for _, table := range syncer.TableOrder {
		rows := snap.Data[string(table)]
		if err := m.store.ReplaceRows(ctx, string(table), rows); err != nil {
			return fmt.Errorf("import %s: %w", table, err)
		}
	}

	if snap.Settings != nil {
		if err := m.restoreSettings(ctx, snap.Settings); err != nil {
			config.LogError(m.logger, "backup", "Import", "data imported but settings restore failed", nil, err)
			return err
		}
	}

	m.logger.WithField("exported_at", snap.ExportedAt).Info("backup imported")
	return nil
}

func (m *Manager) restoreSettings(ctx context.Context, restored *models.Settings) error {
	// Settings round-trip through the patch form so the restore follows the
	// same merge path a manual settings edit does.
	raw, err := json.Marshal(restored)
	if err != nil {
		return err
	}
	var patch models.SettingsPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return err
	}
	_, err = m.settings.Update(ctx, &patch)
	return err
}
