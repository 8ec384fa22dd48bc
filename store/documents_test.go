package store

import (
	"context"
	"testing"
	"time"

	"github.com/mmdatafocus/garage_backend/models"
	"github.com/shopspring/decimal"
)

func TestCreateQuotationSetsLineParents(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	quotation := &models.Quotation{
		Code:        "BG2608-0001",
		DateCreated: time.Now(),
		CustomerId:  1,
		VehicleId:   1,
		Subtotal:    decimal.NewFromInt(100000),
		Total:       decimal.NewFromInt(100000),
		Status:      models.QuotationStatusNew,
	}
	items := []models.QuotationItem{
		{Type: models.LineItemTypeService, ItemId: 1, Name: "Oil change", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100000), Total: decimal.NewFromInt(100000)},
	}
	if err := s.CreateQuotation(ctx, quotation, items); err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	if quotation.ID == 0 {
		t.Fatal("quotation id not assigned")
	}
	if items[0].QuotationId != quotation.ID {
		t.Fatalf("line parent = %d, want %d", items[0].QuotationId, quotation.ID)
	}
}

func TestCreateQuotationRollsBackOnLineFailure(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	quotation := &models.Quotation{
		Code:        "BG2608-0001",
		DateCreated: time.Now(),
		CustomerId:  1,
		VehicleId:   1,
		Status:      models.QuotationStatusNew,
	}
	// two lines carrying the same explicit primary key make the batch
	// insert fail after the parent row is already written
	items := []models.QuotationItem{
		{ID: 7, Type: models.LineItemTypeService, ItemId: 1, Name: "Oil change"},
		{ID: 7, Type: models.LineItemTypeService, ItemId: 2, Name: "Brake service"},
	}
	if err := s.CreateQuotation(ctx, quotation, items); err == nil {
		t.Fatal("expected line insert to fail")
	}
	count, err := Count[models.Quotation](ctx, s)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("quotation survived a failed line insert: %d rows", count)
	}
}

func TestCreateRepairOrderRollsBackOnLineFailure(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	order := &models.RepairOrder{
		Code:        "SC2608-0001",
		DateCreated: time.Now(),
		CustomerId:  1,
		VehicleId:   1,
		Status:      models.RepairOrderStatusNew,
	}
	items := []models.RepairOrderItem{
		{ID: 7, Type: models.LineItemTypePart, ItemId: 1, Name: "Oil filter"},
		{ID: 7, Type: models.LineItemTypePart, ItemId: 2, Name: "Air filter"},
	}
	if err := s.CreateRepairOrder(ctx, order, items); err == nil {
		t.Fatal("expected line insert to fail")
	}
	count, err := Count[models.RepairOrder](ctx, s)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("repair order survived a failed line insert: %d rows", count)
	}

	lines, err := Count[models.RepairOrderItem](ctx, s)
	if err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Fatalf("orphan line items left behind: %d rows", lines)
	}
}
