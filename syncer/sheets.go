package syncer

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/sirupsen/logrus"
)

// sheetsDriver mirrors tables into a spreadsheet, one tab per table with a
// header row. Reads go through the public values API with an API key;
// writes require a separately configured write endpoint (an Apps Script
// URL). Without one the driver silently operates read-only.
type sheetsDriver struct {
	settings *settings.Store
	logger   *logrus.Logger

	mu      sync.Mutex
	state   DriverState
	enabled bool

	client   *restClient
	writer   *restClient
	sheetId  string
	apiKey   string
	warnOnce sync.Once
}

const sheetsBaseURL = "https://sheets.googleapis.com/v4"

var sheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ExtractSheetID accepts either a bare spreadsheet id or a full sharing URL.
func ExtractSheetID(value string) string {
	if m := sheetURLPattern.FindStringSubmatch(value); len(m) == 2 {
		return m[1]
	}
	return value
}

func NewSheetsDriver(store *settings.Store) Driver {
	return &sheetsDriver{
		settings: store,
		logger:   config.GetLogger(),
	}
}

func (d *sheetsDriver) Name() models.SyncBackend {
	return models.SyncBackendSheets
}

func (d *sheetsDriver) Initialize(ctx context.Context) error {
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
	if cfg.SheetId == "" || cfg.SheetAPIKey == "" {
		d.logger.WithField("module", "syncer").Info("sheets driver not configured, staying disabled")
		d.state = StateDisabled
		return nil
	}

	d.sheetId = ExtractSheetID(cfg.SheetId)
	d.apiKey = cfg.SheetAPIKey
	d.client = newRestClient(config.EnvDefault("SHEETS_BASE_URL", sheetsBaseURL), 30*time.Second, nil)
	if cfg.SheetWriteURL != "" {
		d.writer = newRestClient(cfg.SheetWriteURL, 60*time.Second, nil)
	}
	d.enabled = cfg.SyncEnabled
	if d.enabled {
		d.state = StateEnabled
	} else {
		d.state = StateDisabled
	}
	return nil
}

func (d *sheetsDriver) IsEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateEnabled && d.enabled
}

func (d *sheetsDriver) Mappings(table Table) []FieldMapping {
	// header row carries the local column names verbatim
	return SnakeMappings(table)
}

func (d *sheetsDriver) TestConnection(ctx context.Context) error {
	if d.client == nil {
		return classified(ErrClassConfig, "sheets driver is not configured", nil)
	}
	params := url.Values{"key": {d.apiKey}, "fields": {"spreadsheetId"}}
	err := d.client.doJSON(ctx, "GET", "/spreadsheets/"+d.sheetId, params, nil, &map[string]any{})
	if err != nil {
		return d.classify(err)
	}
	return nil
}

type sheetValuesResponse struct {
	Values [][]string `json:"values"`
}

func (d *sheetsDriver) FetchTable(ctx context.Context, table Table) ([]map[string]any, error) {
	params := url.Values{"key": {d.apiKey}}
	var resp sheetValuesResponse
	err := d.client.doJSON(ctx, "GET", "/spreadsheets/"+d.sheetId+"/values/"+string(table), params, nil, &resp)
	if err != nil {
		return nil, d.classify(err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}
	headers := resp.Values[0]
	rows := make([]map[string]any, 0, len(resp.Values)-1)
	for _, cells := range resp.Values[1:] {
		row := make(map[string]any, len(headers))
		for i, header := range headers {
			if i < len(cells) {
				row[header] = cells[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (d *sheetsDriver) ReplaceTable(ctx context.Context, table Table, rows []map[string]any) error {
	if d.writer == nil {
		// Read-only deployment. Warn once per session, then stay quiet.
		d.warnOnce.Do(func() {
			d.logger.WithField("module", "syncer").
				Warn("sheets driver has no write endpoint configured; push is a no-op")
		})
		return nil
	}

	mappings := d.Mappings(table)
	headers := make([]string, 0, len(mappings))
	for _, m := range mappings {
		headers = append(headers, m.Remote)
	}
	values := make([][]any, 0, len(rows)+1)
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	values = append(values, headerRow)
	for _, row := range rows {
		cells := make([]any, len(headers))
		for i, h := range headers {
			if v, ok := row[h]; ok && v != nil {
				cells[i] = AsString(v)
			} else {
				cells[i] = ""
			}
		}
		values = append(values, cells)
	}

	body := map[string]any{
		"sheetId": d.sheetId,
		"table":   string(table),
		"values":  values,
	}
	if err := d.writer.doJSON(ctx, "POST", "", nil, body, nil); err != nil {
		return d.classify(err)
	}
	return nil
}

func (d *sheetsDriver) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return classified(ErrClassTimeout, "spreadsheet api did not answer in time", err)
	}
	var he *httpError
	if errors.As(err, &he) {
		if he.Status == 404 {
			return classified(ErrClassNotFound, "spreadsheet not found; check the sheet id or sharing URL", err)
		}
		return classifyStatus(he.Status, he.Body, err)
	}
	return classified(ErrClassConnectivity, "spreadsheet api unreachable", err)
}
