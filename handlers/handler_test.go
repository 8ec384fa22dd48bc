package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/garage_backend/backup"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/mmdatafocus/garage_backend/store"
	"github.com/mmdatafocus/garage_backend/syncer"
	"github.com/shopspring/decimal"
)

func testRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	cfg := settings.New(st, nil)
	sync := syncer.NewManager(st, cfg)
	bk := backup.NewManager(st, cfg)

	r := gin.New()
	New(st, cfg, sync, bk).Register(r)
	return r, st
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCustomerAssignsCode(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, "POST", "/api/customers", map[string]any{
		"name":  "Nguyen Van An",
		"phone": "0903123456",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var created models.Customer
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Code != "KH0001" {
		t.Fatalf("code %q, want KH0001", created.Code)
	}
}

func TestCreateCustomerRejectsBadPhone(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, "POST", "/api/customers", map[string]any{
		"name":  "A",
		"phone": "not a phone",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestCreateInvoiceDerivesStatus(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, "POST", "/api/invoices", map[string]any{
		"repair_order_id": 1,
		"customer_id":     1,
		"vehicle_id":      1,
		"subtotal":        "1000000",
		"discount":        "100000",
		"tax":             "0",
		"amount_paid":     "400000",
		"payment_method":  "cash",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var created models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.Total.Equal(decimal.NewFromInt(900000)) {
		t.Fatalf("total %s, want 900000", created.Total)
	}
	if created.Status != models.InvoiceStatusPartial {
		t.Fatalf("status %q, want partial", created.Status)
	}
	if !strings.HasPrefix(created.Code, "HD") {
		t.Fatalf("code %q missing prefix", created.Code)
	}
}

func TestCompleteRepairOrderEndpoint(t *testing.T) {
	r, st := testRouter(t)
	ctx := httptest.NewRequest("GET", "/", nil).Context()

	item := &models.InventoryItem{Sku: "PT0001", Name: "Filter", CategoryId: 1, Unit: "pcs", Quantity: decimal.NewFromInt(5)}
	if err := store.Add(ctx, st, item); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	w := doJSON(t, r, "POST", "/api/repair-orders", map[string]any{
		"customer_id": 1,
		"vehicle_id":  1,
		"items": []map[string]any{
			{"type": "part", "item_id": item.ID, "name": "Filter", "quantity": "2", "unit_price": "80000"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		RepairOrder models.RepairOrder `json:"repair_order"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.RepairOrder.Subtotal.Equal(decimal.NewFromInt(160000)) {
		t.Fatalf("subtotal %s", created.RepairOrder.Subtotal)
	}

	w = doJSON(t, r, "POST", "/api/repair-orders/1/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete status %d: %s", w.Code, w.Body.String())
	}

	got, err := store.Get[models.InventoryItem](ctx, st, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if !got.Quantity.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("stock not deducted, quantity %s", got.Quantity)
	}
}

func TestSyncPushWithoutBackend(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, "POST", "/api/sync/push", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, "GET", "/api/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status %d", w.Code)
	}

	w = doJSON(t, r, "PUT", "/api/settings", map[string]any{
		"garage_name": "Garage Song Han",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("put status %d: %s", w.Code, w.Body.String())
	}
	var updated models.Settings
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.GarageName != "Garage Song Han" {
		t.Fatalf("name %q", updated.GarageName)
	}
}

func TestBackupExportEndpoint(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, "GET", "/api/backup/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var snap map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap["version"] != float64(1) {
		t.Fatalf("version %v", snap["version"])
	}
}
