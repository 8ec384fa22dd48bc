// seed-demo populates the local database with a small demo data set: a few
// customers with vehicles, an inventory, a service catalog, and one worked
// example flowing quotation -> repair order -> invoice.
//
// Usage:
//   GARAGE_DB_PATH=garage.db go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/store"
	"github.com/shopspring/decimal"
)

func main() {
	ctx := context.Background()

	dbPath := config.EnvDefault("GARAGE_DB_PATH", "garage.db")
	st, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	if err := st.InitSchema(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate schema: %v\n", err)
		os.Exit(1)
	}

	count, err := store.Count[models.Customer](ctx, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to inspect database: %v\n", err)
		os.Exit(1)
	}
	if count > 0 {
		fmt.Fprintln(os.Stderr, "database already has customers; refusing to seed on top of existing data")
		os.Exit(2)
	}

	if err := seed(ctx, st); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("demo data seeded into", dbPath)
}

func seed(ctx context.Context, st *store.Store) error {
	customers := []models.Customer{
		{Code: "KH0001", Name: "Nguyen Van An", Phone: "0903123456", Address: "12 Le Loi, Da Nang"},
		{Code: "KH0002", Name: "Tran Thi Binh", Phone: "0912345678", Address: "45 Tran Phu, Da Nang"},
		{Code: "KH0003", Name: "Le Hoang Cuong", Phone: "0987654321"},
	}
	if err := store.BulkAdd(ctx, st, customers); err != nil {
		return err
	}

	vehicles := []models.Vehicle{
		{Code: "XE0001", CustomerId: 1, LicensePlate: "43A-123.45", Brand: "Toyota", Model: "Vios", Year: 2019, Color: "White", LastOdometer: 48200},
		{Code: "XE0002", CustomerId: 2, LicensePlate: "43A-678.90", Brand: "Honda", Model: "City", Year: 2021, Color: "Silver", LastOdometer: 21500},
		{Code: "XE0003", CustomerId: 3, LicensePlate: "92B-111.22", Brand: "Ford", Model: "Ranger", Year: 2018, Color: "Black", LastOdometer: 96400},
	}
	if err := store.BulkAdd(ctx, st, vehicles); err != nil {
		return err
	}

	categories := []models.InventoryCategory{
		{Code: "DM0001", Name: "Engine oil"},
		{Code: "DM0002", Name: "Filters"},
		{Code: "DM0003", Name: "Brakes"},
	}
	if err := store.BulkAdd(ctx, st, categories); err != nil {
		return err
	}

	items := []models.InventoryItem{
		{Sku: "PT0001", Name: "Castrol 5W-30 4L", CategoryId: 1, Unit: "can", Quantity: dec(24), CostPrice: dec(520000), SellingPrice: dec(650000), MinQuantity: dec(6)},
		{Sku: "PT0002", Name: "Oil filter Toyota", CategoryId: 2, Unit: "pcs", Quantity: dec(40), CostPrice: dec(45000), SellingPrice: dec(80000), MinQuantity: dec(10)},
		{Sku: "PT0003", Name: "Air filter Honda", CategoryId: 2, Unit: "pcs", Quantity: dec(18), CostPrice: dec(95000), SellingPrice: dec(150000), MinQuantity: dec(5)},
		{Sku: "PT0004", Name: "Front brake pads", CategoryId: 3, Unit: "set", Quantity: dec(12), CostPrice: dec(380000), SellingPrice: dec(550000), MinQuantity: dec(4)},
	}
	if err := store.BulkAdd(ctx, st, items); err != nil {
		return err
	}

	services := []models.Service{
		{Code: "DV0001", Name: "Oil change", Price: dec(100000), EstimatedTime: "30m"},
		{Code: "DV0002", Name: "Brake service", Price: dec(250000), EstimatedTime: "1h"},
		{Code: "DV0003", Name: "General inspection", Price: dec(150000), EstimatedTime: "45m"},
	}
	if err := store.BulkAdd(ctx, st, services); err != nil {
		return err
	}

	now := time.Now()
	stamp := now.Format("0601")

	quotation := models.Quotation{
		Code:        fmt.Sprintf("BG%s-0001", stamp),
		DateCreated: now,
		CustomerId:  1,
		VehicleId:   1,
		Subtotal:    dec(830000),
		Total:       dec(830000),
		Status:      models.QuotationStatusAccepted,
	}
	if err := store.Add(ctx, st, &quotation); err != nil {
		return err
	}
	quotationItems := []models.QuotationItem{
		{QuotationId: quotation.ID, Type: models.LineItemTypePart, ItemId: 1, Name: "Castrol 5W-30 4L", Quantity: dec(1), UnitPrice: dec(650000), Total: dec(650000)},
		{QuotationId: quotation.ID, Type: models.LineItemTypePart, ItemId: 2, Name: "Oil filter Toyota", Quantity: dec(1), UnitPrice: dec(80000), Total: dec(80000)},
		{QuotationId: quotation.ID, Type: models.LineItemTypeService, ItemId: 1, Name: "Oil change", Quantity: dec(1), UnitPrice: dec(100000), Total: dec(100000)},
	}
	if err := store.BulkAdd(ctx, st, quotationItems); err != nil {
		return err
	}

	order := models.RepairOrder{
		Code:            fmt.Sprintf("SC%s-0001", stamp),
		DateCreated:     now,
		QuotationId:     quotation.ID,
		CustomerId:      1,
		VehicleId:       1,
		Odometer:        48650,
		CustomerRequest: "Routine oil change",
		Subtotal:        dec(830000),
		Total:           dec(830000),
		Status:          models.RepairOrderStatusInProgress,
	}
	if err := store.Add(ctx, st, &order); err != nil {
		return err
	}
	orderItems := []models.RepairOrderItem{
		{RepairOrderId: order.ID, Type: models.LineItemTypePart, ItemId: 1, Name: "Castrol 5W-30 4L", Quantity: dec(1), UnitPrice: dec(650000), Total: dec(650000)},
		{RepairOrderId: order.ID, Type: models.LineItemTypePart, ItemId: 2, Name: "Oil filter Toyota", Quantity: dec(1), UnitPrice: dec(80000), Total: dec(80000)},
		{RepairOrderId: order.ID, Type: models.LineItemTypeService, ItemId: 1, Name: "Oil change", Quantity: dec(1), UnitPrice: dec(100000), Total: dec(100000)},
	}
	if err := store.BulkAdd(ctx, st, orderItems); err != nil {
		return err
	}
	if _, err := st.CompleteRepairOrder(ctx, order.ID); err != nil {
		return err
	}

	invoice := models.Invoice{
		Code:          fmt.Sprintf("HD%s-0001", stamp),
		DateCreated:   now,
		RepairOrderId: order.ID,
		CustomerId:    1,
		VehicleId:     1,
		Subtotal:      dec(830000),
		Total:         dec(830000),
		AmountPaid:    dec(830000),
		PaymentMethod: models.PaymentMethodCash,
		Status:        models.InvoiceStatusPaid,
	}
	return store.Add(ctx, st, &invoice)
}

func dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
