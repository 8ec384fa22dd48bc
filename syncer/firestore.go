package syncer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/sirupsen/logrus"
)

// firestoreDriver mirrors tables into Firestore document collections keyed
// by entity name, through the REST documents API with API-key auth.
type firestoreDriver struct {
	settings *settings.Store
	logger   *logrus.Logger

	mu      sync.Mutex
	state   DriverState
	enabled bool

	client    *restClient
	root      string // projects/{pid}/databases/(default)/documents
	apiKey    string
	pageSize  int
	probeWait time.Duration
}

const firestoreBaseURL = "https://firestore.googleapis.com/v1"

func NewFirestoreDriver(store *settings.Store) Driver {
	return &firestoreDriver{
		settings:  store,
		logger:    config.GetLogger(),
		pageSize:  300,
		probeWait: 10 * time.Second,
	}
}

func (d *firestoreDriver) Name() models.SyncBackend {
	return models.SyncBackendFirestore
}

func (d *firestoreDriver) Initialize(ctx context.Context) error {
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
	if cfg.FirestoreProjectId == "" || cfg.FirestoreAPIKey == "" {
		d.logger.WithField("module", "syncer").Info("firestore driver not configured, staying disabled")
		d.state = StateDisabled
		return nil
	}

	baseURL := config.EnvDefault("FIRESTORE_BASE_URL", firestoreBaseURL)
	d.root = fmt.Sprintf("projects/%s/databases/(default)/documents", cfg.FirestoreProjectId)
	d.apiKey = cfg.FirestoreAPIKey
	d.client = newRestClient(baseURL, 30*time.Second, nil)
	d.enabled = cfg.SyncEnabled
	if d.enabled {
		d.state = StateEnabled
	} else {
		d.state = StateDisabled
	}
	return nil
}

func (d *firestoreDriver) IsEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateEnabled && d.enabled
}

func (d *firestoreDriver) Mappings(table Table) []FieldMapping {
	return CamelMappings(table)
}

// TestConnection writes a probe document, bounded at ten seconds.
func (d *firestoreDriver) TestConnection(ctx context.Context) error {
	if d.client == nil {
		return classified(ErrClassConfig, "firestore driver is not configured", nil)
	}
	probeCtx, cancel := context.WithTimeout(ctx, d.probeWait)
	defer cancel()

	body := map[string]any{"fields": map[string]any{
		"probedAt": map[string]any{"stringValue": time.Now().UTC().Format(time.RFC3339)},
	}}
	err := d.client.doJSON(probeCtx, "PATCH", "/"+d.root+"/__garage_probe__/connection", d.query(nil), body, nil)
	if err != nil {
		return d.classify(err)
	}
	return nil
}

func (d *firestoreDriver) FetchTable(ctx context.Context, table Table) ([]map[string]any, error) {
	var rows []map[string]any
	pageToken := ""
	for {
		params := d.query(url.Values{"pageSize": {fmt.Sprint(d.pageSize)}})
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		var resp firestoreListResponse
		if err := d.client.doJSON(ctx, "GET", "/"+d.root+"/"+string(table), params, nil, &resp); err != nil {
			return nil, d.classify(err)
		}
		for _, doc := range resp.Documents {
			rows = append(rows, decodeFirestoreFields(doc.Fields))
		}
		if resp.NextPageToken == "" {
			return rows, nil
		}
		pageToken = resp.NextPageToken
	}
}

// ReplaceTable deletes every document in the collection, then recreates one
// document per row.
func (d *firestoreDriver) ReplaceTable(ctx context.Context, table Table, rows []map[string]any) error {
	pageToken := ""
	for {
		params := d.query(url.Values{"pageSize": {fmt.Sprint(d.pageSize)}})
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		var resp firestoreListResponse
		if err := d.client.doJSON(ctx, "GET", "/"+d.root+"/"+string(table), params, nil, &resp); err != nil {
			return d.classify(err)
		}
		for _, doc := range resp.Documents {
			if err := d.client.doJSON(ctx, "DELETE", "/"+doc.Name, d.query(nil), nil, nil); err != nil {
				return d.classify(err)
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	for _, row := range rows {
		body := map[string]any{"fields": encodeFirestoreFields(row)}
		docID := AsString(row["id"])
		params := d.query(nil)
		if docID != "" {
			params.Set("documentId", docID)
		}
		if err := d.client.doJSON(ctx, "POST", "/"+d.root+"/"+string(table), params, body, nil); err != nil {
			return d.classify(err)
		}
	}
	return nil
}

func (d *firestoreDriver) query(params url.Values) url.Values {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", d.apiKey)
	return params
}

func (d *firestoreDriver) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return classified(ErrClassTimeout, "firestore did not answer within the probe window", err)
	}
	var he *httpError
	if errors.As(err, &he) {
		switch he.Status {
		case 400:
			if strings.Contains(he.Body, "API key not valid") {
				return classified(ErrClassInvalidCredential, "firestore rejected the api key", err)
			}
			return classifyStatus(he.Status, he.Body, err)
		default:
			return classifyStatus(he.Status, he.Body, err)
		}
	}
	return classified(ErrClassConnectivity, "firestore unreachable", err)
}

type firestoreListResponse struct {
	Documents []struct {
		Name   string                    `json:"name"`
		Fields map[string]firestoreValue `json:"fields"`
	} `json:"documents"`
	NextPageToken string `json:"nextPageToken"`
}

// firestoreValue is the typed value wrapper of the Firestore REST API.
type firestoreValue struct {
	StringValue  *string  `json:"stringValue,omitempty"`
	IntegerValue *string  `json:"integerValue,omitempty"`
	DoubleValue  *float64 `json:"doubleValue,omitempty"`
	BooleanValue *bool    `json:"booleanValue,omitempty"`
	NullValue    *string  `json:"nullValue,omitempty"`
}

func encodeFirestoreFields(row map[string]any) map[string]any {
	fields := make(map[string]any, len(row))
	for k, v := range row {
		switch t := v.(type) {
		case nil:
			fields[k] = map[string]any{"nullValue": nil}
		case bool:
			fields[k] = map[string]any{"booleanValue": t}
		case int64:
			fields[k] = map[string]any{"integerValue": fmt.Sprint(t)}
		case float64:
			fields[k] = map[string]any{"doubleValue": t}
		default:
			fields[k] = map[string]any{"stringValue": AsString(t)}
		}
	}
	return fields
}

func decodeFirestoreFields(fields map[string]firestoreValue) map[string]any {
	row := make(map[string]any, len(fields))
	for k, v := range fields {
		switch {
		case v.StringValue != nil:
			row[k] = *v.StringValue
		case v.IntegerValue != nil:
			row[k] = *v.IntegerValue
		case v.DoubleValue != nil:
			row[k] = *v.DoubleValue
		case v.BooleanValue != nil:
			row[k] = *v.BooleanValue
		default:
			row[k] = nil
		}
	}
	return row
}
