package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/sirupsen/logrus"
)

// supabaseDriver mirrors tables into a Postgres-compatible API (PostgREST
// row-level insert/delete/select). The remote schema uses the same
// snake_case names as the local store.
type supabaseDriver struct {
	settings *settings.Store
	logger   *logrus.Logger

	mu      sync.Mutex
	state   DriverState
	enabled bool

	client *restClient
}

func NewSupabaseDriver(store *settings.Store) Driver {
	return &supabaseDriver{
		settings: store,
		logger:   config.GetLogger(),
	}
}

func (d *supabaseDriver) Name() models.SyncBackend {
	return models.SyncBackendSupabase
}

func (d *supabaseDriver) Initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateUninitialized {
		return nil
	}
	d.state = StateInitializing

	cfg, err := d.settings.Get(ctx)
	if err != nil {
		d.state = StateDisabled
		return err
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseAPIKey == "" {
		d.logger.WithField("module", "syncer").Info("supabase driver not configured, staying disabled")
		d.state = StateDisabled
		return nil
	}

	d.client = newRestClient(cfg.SupabaseURL, 30*time.Second, map[string]string{
		"apikey":        cfg.SupabaseAPIKey,
		"Authorization": "Bearer " + cfg.SupabaseAPIKey,
	})
	d.enabled = cfg.SyncEnabled
	if d.enabled {
		d.state = StateEnabled
	} else {
		d.state = StateDisabled
	}
	return nil
}

func (d *supabaseDriver) IsEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateEnabled && d.enabled
}

func (d *supabaseDriver) Mappings(table Table) []FieldMapping {
	return SnakeMappings(table)
}

func (d *supabaseDriver) TestConnection(ctx context.Context) error {
	if d.client == nil {
		return classified(ErrClassConfig, "supabase driver is not configured", nil)
	}
	params := url.Values{"select": {"id"}, "limit": {"1"}}
	err := d.client.doJSON(ctx, "GET", "/rest/v1/"+string(TableCustomers), params, nil, &[]map[string]any{})
	if err != nil {
		return d.classify(err)
	}
	return nil
}

func (d *supabaseDriver) FetchTable(ctx context.Context, table Table) ([]map[string]any, error) {
	params := url.Values{"select": {"*"}, "order": {"id.asc"}}
	var rows []map[string]any
	if err := d.client.doJSON(ctx, "GET", "/rest/v1/"+string(table), params, nil, &rows); err != nil {
		return nil, d.classify(err)
	}
	return rows, nil
}

func (d *supabaseDriver) ReplaceTable(ctx context.Context, table Table, rows []map[string]any) error {
	// delete all rows, then bulk-insert the snapshot
	params := url.Values{"id": {"gte.0"}}
	if err := d.client.doJSON(ctx, "DELETE", "/rest/v1/"+string(table), params, nil, nil); err != nil {
		return d.classify(err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := d.client.doJSON(ctx, "POST", "/rest/v1/"+string(table), nil, rows, nil); err != nil {
		return d.classify(err)
	}
	return nil
}

// postgrestError is the error envelope PostgREST returns.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (d *supabaseDriver) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return classified(ErrClassTimeout, "supabase did not answer in time", err)
	}
	var he *httpError
	if errors.As(err, &he) {
		var pg postgrestError
		_ = json.Unmarshal([]byte(he.Body), &pg)
		// 42P01 = undefined_table; PGRST205 = missing table in schema cache.
		// Either means the remote tables have not been created yet, which is
		// a setup step, not a network problem.
		if pg.Code == "42P01" || pg.Code == "PGRST205" || strings.Contains(he.Body, "42P01") {
			return classified(ErrClassSetupRequired, "remote tables do not exist yet; run the setup script", err)
		}
		return classifyStatus(he.Status, he.Body, err)
	}
	return classified(ErrClassConnectivity, "supabase unreachable", err)
}
