package syncer

// Table names a synchronized local table. The string value is the sqlite
// table name, which is also the local field space used in raw rows.
type Table string

const (
	TableCustomers           Table = "customers"
	TableVehicles            Table = "vehicles"
	TableInventoryCategories Table = "inventory_categories"
	TableInventoryItems      Table = "inventory_items"
	TableServices            Table = "services"
	TableQuotations          Table = "quotations"
	TableQuotationItems      Table = "quotation_items"
	TableRepairOrders        Table = "repair_orders"
	TableRepairOrderItems    Table = "repair_order_items"
	TableInvoices            Table = "invoices"
)

// TableOrder is the fixed dependency order, identical for push and pull:
// parents strictly before children. Reversing it on pull would insert child
// rows referencing not-yet-existing parents in any backend that validates
// foreign keys.
var TableOrder = []Table{
	TableCustomers,
	TableVehicles,
	TableInventoryCategories,
	TableInventoryItems,
	TableServices,
	TableQuotations,
	TableQuotationItems,
	TableRepairOrders,
	TableRepairOrderItems,
	TableInvoices,
}

// tableSchemas declares every synchronized column with its value kind.
// Drivers derive their remote mapping tables from these.
var tableSchemas = map[Table][]Field{
	TableCustomers: {
		{"id", KindInt}, {"code", KindString}, {"name", KindString},
		{"phone", KindString}, {"address", KindString}, {"email", KindString},
		{"tax_code", KindString}, {"notes", KindString},
		{"created_at", KindDate}, {"updated_at", KindDate},
	},
	TableVehicles: {
		{"id", KindInt}, {"code", KindString}, {"customer_id", KindInt},
		{"license_plate", KindString}, {"brand", KindString}, {"model", KindString},
		{"vin", KindString}, {"year", KindInt}, {"color", KindString},
		{"last_odometer", KindInt},
		{"created_at", KindDate}, {"updated_at", KindDate},
	},
	TableInventoryCategories: {
		{"id", KindInt}, {"code", KindString}, {"name", KindString},
		{"created_at", KindDate}, {"updated_at", KindDate},
	},
	TableInventoryItems: {
		{"id", KindInt}, {"sku", KindString}, {"name", KindString},
		{"category_id", KindInt}, {"unit", KindString},
		{"quantity", KindDecimal}, {"cost_price", KindDecimal},
		{"selling_price", KindDecimal}, {"supplier", KindString},
		{"location", KindString}, {"min_quantity", KindDecimal},
		{"notes", KindString},
		{"created_at", KindDate}, {"updated_at", KindDate},
	},
	TableServices: {
		{"id", KindInt}, {"code", KindString}, {"name", KindString},
		{"description", KindString}, {"price", KindDecimal},
		{"estimated_time", KindString},
		{"created_at", KindDate}, {"updated_at", KindDate},
	},
	TableQuotations: {
		{"id", KindInt}, {"code", KindString}, {"date_created", KindDate},
		{"customer_id", KindInt}, {"vehicle_id", KindInt},
		{"subtotal", KindDecimal}, {"tax", KindDecimal}, {"total", KindDecimal},
		{"notes", KindString}, {"status", KindString},
		{"created_at", KindDate}, {"updated_at", KindDate},
	},
	TableQuotationItems: {
		{"id", KindInt}, {"quotation_id", KindInt}, {"type", KindString},
		{"item_id", KindInt}, {"name", KindString},
		{"quantity", KindDecimal}, {"unit_price", KindDecimal}, {"total", KindDecimal},
		{"created_at", KindDate}, {"updated_at", KindDate},
	},
	TableRepairOrders: {
		{"id", KindInt}, {"code", KindString}, {"date_created", KindDate},
		{"date_expected", KindDate}, {"quotation_id", KindInt},
		{"customer_id", KindInt}, {"vehicle_id", KindInt},
		{"odometer", KindInt}, {"customer_request", KindString},
		{"technician_notes", KindString}, {"technician_id", KindInt},
		{"subtotal", KindDecimal}, {"tax", KindDecimal}, {"total", KindDecimal},
		{"status", KindString}, {"stock_applied", KindBool},
		{"created_at", KindDate}, {"updated_at", KindDate},
	},
	TableRepairOrderItems: {
		{"id", KindInt}, {"repair_order_id", KindInt}, {"type", KindString},
		{"item_id", KindInt}, {"name", KindString},
		{"quantity", KindDecimal}, {"unit_price", KindDecimal}, {"total", KindDecimal},
		{"created_at", KindDate}, {"updated_at", KindDate},
	},
	TableInvoices: {
		{"id", KindInt}, {"code", KindString}, {"date_created", KindDate},
		{"repair_order_id", KindInt}, {"customer_id", KindInt}, {"vehicle_id", KindInt},
		{"subtotal", KindDecimal}, {"discount", KindDecimal}, {"tax", KindDecimal},
		{"total", KindDecimal}, {"amount_paid", KindDecimal},
		{"payment_method", KindString}, {"status", KindString},
		{"created_at", KindDate}, {"updated_at", KindDate},
	},
}

// Field is one synchronized column.
type Field struct {
	Column string
	Kind   FieldKind
}

// Schema returns the declared columns of a table.
func Schema(table Table) []Field {
	return tableSchemas[table]
}
