package settings

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/store"
)

func testLocal(t *testing.T) *store.Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return s
}

type fakeRemote struct {
	settings *models.Settings
	loadErr  error
	saveErr  error

	loads int
	saves int
}

func (r *fakeRemote) Load(ctx context.Context) (*models.Settings, error) {
	r.loads++
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.settings, nil
}

func (r *fakeRemote) Save(ctx context.Context, s *models.Settings) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.settings = s
	return nil
}

func TestGetCreatesDefaults(t *testing.T) {
	ctx := context.Background()
	s := New(testLocal(t), nil)

	cfg, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.AccentColor != models.DefaultAccentColor {
		t.Fatalf("expected default accent color, got %q", cfg.AccentColor)
	}
	if cfg.SyncEnabled {
		t.Fatal("sync must be disabled by default")
	}

	again, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.ID != cfg.ID {
		t.Fatalf("expected singleton row, got ids %d and %d", cfg.ID, again.ID)
	}
}

func TestUpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	s := New(testLocal(t), nil)

	name := "Garage Song Han"
	enabled := true
	backend := models.SyncBackendSupabase
	cfg, err := s.Update(ctx, &models.SettingsPatch{
		GarageName:  &name,
		SyncEnabled: &enabled,
		SyncBackend: &backend,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cfg.GarageName != name || !cfg.SyncEnabled || cfg.SyncBackend != backend {
		t.Fatalf("patch not applied: %+v", cfg)
	}
	// untouched fields keep their values
	if cfg.AccentColor != models.DefaultAccentColor {
		t.Fatalf("unrelated field changed: %q", cfg.AccentColor)
	}

	reloaded, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.GarageName != name {
		t.Fatalf("update not persisted, name %q", reloaded.GarageName)
	}
}

func TestRemoteFailoverIsOneWay(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{loadErr: errors.New("remote down")}
	s := New(testLocal(t), remote)

	cfg, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("get with failing remote: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected local fallback settings")
	}
	if remote.loads != 1 {
		t.Fatalf("expected one remote attempt, got %d", remote.loads)
	}

	// the remote is not retried for the rest of the session
	if _, err := s.Get(ctx); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if remote.loads != 1 {
		t.Fatalf("remote retried after failover, loads %d", remote.loads)
	}

	name := "offline garage"
	if _, err := s.Update(ctx, &models.SettingsPatch{GarageName: &name}); err != nil {
		t.Fatalf("update after failover: %v", err)
	}
	if remote.saves != 0 {
		t.Fatalf("save went to the disabled remote, saves %d", remote.saves)
	}
}

func TestRemoteUsedWhenHealthy(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{settings: &models.Settings{ID: 1, GarageName: "remote garage"}}
	s := New(testLocal(t), remote)

	cfg, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.GarageName != "remote garage" {
		t.Fatalf("expected remote settings, got %q", cfg.GarageName)
	}

	name := "renamed"
	if _, err := s.Update(ctx, &models.SettingsPatch{GarageName: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if remote.saves != 1 {
		t.Fatalf("expected remote save, saves %d", remote.saves)
	}
	if remote.settings.GarageName != name {
		t.Fatalf("remote copy not updated: %q", remote.settings.GarageName)
	}
}
