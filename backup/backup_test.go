package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/mmdatafocus/garage_backend/store"
	"github.com/shopspring/decimal"
)

func testManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewManager(st, settings.New(st, nil)), st
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, st := testManager(t)

	customer := &models.Customer{Code: "KH0001", Name: "A", Phone: "0903123456"}
	if err := store.Add(ctx, st, customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	item := &models.InventoryItem{
		Sku: "PT0001", Name: "Oil filter", CategoryId: 1, Unit: "pcs",
		Quantity: decimal.NewFromInt(7),
	}
	if err := store.Add(ctx, st, item); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	var buf bytes.Buffer
	if err := m.Export(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	// wipe, then restore from the snapshot
	if err := store.Clear[models.Customer](ctx, st); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear[models.InventoryItem](ctx, st); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := m.Import(ctx, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("import: %v", err)
	}

	restored, err := store.Get[models.Customer](ctx, st, customer.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if restored.Name != "A" || restored.Code != "KH0001" {
		t.Fatalf("customer mangled: %+v", restored)
	}
	restoredItem, err := store.Get[models.InventoryItem](ctx, st, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if !restoredItem.Quantity.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("quantity mangled: %s", restoredItem.Quantity)
	}
}

func TestExportIncludesVersionAndSettings(t *testing.T) {
	ctx := context.Background()
	m, _ := testManager(t)

	var buf bytes.Buffer
	if err := m.Export(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Version != snapshotVersion {
		t.Fatalf("version %d", snap.Version)
	}
	if snap.Settings == nil {
		t.Fatal("settings missing from snapshot")
	}
	if len(snap.Data) != 10 {
		t.Fatalf("expected 10 tables, got %d", len(snap.Data))
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	m, _ := testManager(t)

	if err := m.Import(ctx, strings.NewReader("not json")); err == nil {
		t.Fatal("expected error for malformed input")
	}
	if err := m.Import(ctx, strings.NewReader(`{"version": 99, "data": {}}`)); err == nil {
		t.Fatal("expected error for unsupported version")
	}
	if err := m.Import(ctx, strings.NewReader(`{"version": 1}`)); err == nil {
		t.Fatal("expected error for missing data section")
	}
}
