package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/sirupsen/logrus"
)

// mongoDataDriver mirrors tables into document collections through a
// generic REST data API (find/insertMany/deleteMany actions, api-key
// header). The probe is a plain findOne; the API offers no cheaper
// read/write distinction.
type mongoDataDriver struct {
	settings *settings.Store
	logger   *logrus.Logger

	mu      sync.Mutex
	state   DriverState
	enabled bool

	client     *restClient
	dataSource string
	database   string
}

func NewMongoDataDriver(store *settings.Store) Driver {
	return &mongoDataDriver{
		settings: store,
		logger:   config.GetLogger(),
	}
}

func (d *mongoDataDriver) Name() models.SyncBackend {
	return models.SyncBackendMongoData
}

func (d *mongoDataDriver) Initialize(ctx context.Context) error {
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
	if cfg.MongoDataURL == "" || cfg.MongoAPIKey == "" || cfg.MongoDataSource == "" || cfg.MongoDatabase == "" {
		d.logger.WithField("module", "syncer").Info("data-api driver not configured, staying disabled")
		d.state = StateDisabled
		return nil
	}

	d.client = newRestClient(cfg.MongoDataURL, 30*time.Second, map[string]string{
		"api-key": cfg.MongoAPIKey,
	})
	d.dataSource = cfg.MongoDataSource
	d.database = cfg.MongoDatabase
	d.enabled = cfg.SyncEnabled
	if d.enabled {
		d.state = StateEnabled
	} else {
		d.state = StateDisabled
	}
	return nil
}

func (d *mongoDataDriver) IsEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateEnabled && d.enabled
}

func (d *mongoDataDriver) Mappings(table Table) []FieldMapping {
	return CamelMappings(table)
}

func (d *mongoDataDriver) action(collection Table, extra map[string]any) map[string]any {
	body := map[string]any{
		"dataSource": d.dataSource,
		"database":   d.database,
		"collection": string(collection),
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func (d *mongoDataDriver) TestConnection(ctx context.Context) error {
	if d.client == nil {
		return classified(ErrClassConfig, "data-api driver is not configured", nil)
	}
	body := d.action(TableCustomers, map[string]any{"filter": map[string]any{}})
	err := d.client.doJSON(ctx, "POST", "/action/findOne", nil, body, &map[string]any{})
	if err != nil {
		return d.classify(err)
	}
	return nil
}

type mongoFindResponse struct {
	Documents []map[string]any `json:"documents"`
}

func (d *mongoDataDriver) FetchTable(ctx context.Context, table Table) ([]map[string]any, error) {
	body := d.action(table, map[string]any{
		"filter": map[string]any{},
		"sort":   map[string]any{"id": 1},
	})
	var resp mongoFindResponse
	if err := d.client.doJSON(ctx, "POST", "/action/find", nil, body, &resp); err != nil {
		return nil, d.classify(err)
	}
	return resp.Documents, nil
}

func (d *mongoDataDriver) ReplaceTable(ctx context.Context, table Table, rows []map[string]any) error {
	del := d.action(table, map[string]any{"filter": map[string]any{}})
	if err := d.client.doJSON(ctx, "POST", "/action/deleteMany", nil, del, nil); err != nil {
		return d.classify(err)
	}
	if len(rows) == 0 {
		return nil
	}
	ins := d.action(table, map[string]any{"documents": rows})
	if err := d.client.doJSON(ctx, "POST", "/action/insertMany", nil, ins, nil); err != nil {
		return d.classify(err)
	}
	return nil
}

func (d *mongoDataDriver) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return classified(ErrClassTimeout, "data api did not answer in time", err)
	}
	var he *httpError
	if errors.As(err, &he) {
		return classifyStatus(he.Status, he.Body, err)
	}
	return classified(ErrClassConnectivity, "data api unreachable", err)
}
