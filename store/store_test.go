package store

import (
	"context"
	"strings"
	"testing"

	"github.com/mmdatafocus/garage_backend/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return s
}

func TestAddGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	customer := &models.Customer{Code: "KH0001", Name: "Nguyen Van An", Phone: "0903123456"}
	if err := Add(ctx, s, customer); err != nil {
		t.Fatalf("add: %v", err)
	}
	if customer.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := Get[models.Customer](ctx, s, customer.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Nguyen Van An" {
		t.Fatalf("got name %q", got.Name)
	}

	if err := Update[models.Customer](ctx, s, customer.ID, map[string]any{"name": "An Nguyen"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = Get[models.Customer](ctx, s, customer.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "An Nguyen" {
		t.Fatalf("update did not apply, name %q", got.Name)
	}

	if err := Delete[models.Customer](ctx, s, customer.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	count, err := Count[models.Customer](ctx, s)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty table, got %d", count)
	}
}

func TestSubscribeNotify(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	fired := 0
	unsubscribe := s.Subscribe(func() { fired++ })

	if err := Add(ctx, s, &models.Service{Code: "DV0001", Name: "Oil change"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected 1 notification, got %d", fired)
	}
	if err := Update[models.Service](ctx, s, 1, map[string]any{"name": "Oil change plus"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if fired != 2 {
		t.Fatalf("expected 2 notifications, got %d", fired)
	}

	unsubscribe()
	if err := Delete[models.Service](ctx, s, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if fired != 2 {
		t.Fatalf("unsubscribed observer still fired, count %d", fired)
	}
}

func TestReplaceRows(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	seed := []models.Customer{
		{Code: "KH0001", Name: "A", Phone: "0903123456"},
		{Code: "KH0002", Name: "B", Phone: "0912345678"},
	}
	if err := BulkAdd(ctx, s, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	replacement := []map[string]any{
		{"id": int64(7), "code": "KH0007", "name": "C", "phone": "0987654321"},
	}
	if err := s.ReplaceRows(ctx, "customers", replacement); err != nil {
		t.Fatalf("replace rows: %v", err)
	}

	rows, err := s.Rows(ctx, "customers")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after replace, got %d", len(rows))
	}
	if got := rows[0]["code"]; got != "KH0007" {
		t.Fatalf("unexpected row code %v", got)
	}
}

func TestReplaceRowsEmptyClearsTable(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	if err := Add(ctx, s, &models.Customer{Code: "KH0001", Name: "A", Phone: "0903123456"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.ReplaceRows(ctx, "customers", nil); err != nil {
		t.Fatalf("replace rows: %v", err)
	}
	count, err := Count[models.Customer](ctx, s)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cleared table, got %d rows", count)
	}
}
