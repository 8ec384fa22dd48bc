package models

type QuotationStatus string

const (
	QuotationStatusNew      QuotationStatus = "new"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
)

type RepairOrderStatus string

const (
	RepairOrderStatusNew          RepairOrderStatus = "new"
	RepairOrderStatusInProgress   RepairOrderStatus = "in_progress"
	RepairOrderStatusWaitingParts RepairOrderStatus = "waiting_parts"
	RepairOrderStatusCompleted    RepairOrderStatus = "completed"
	RepairOrderStatusDelivered    RepairOrderStatus = "delivered"
	RepairOrderStatusCancelled    RepairOrderStatus = "cancelled"
)

type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
)

// LineItemType distinguishes part lines (backed by InventoryItem) from
// service lines (backed by Service) on quotations and repair orders.
type LineItemType string

const (
	LineItemTypePart    LineItemType = "part"
	LineItemTypeService LineItemType = "service"
)

// SyncBackend selects which remote driver the synchronizer talks to.
type SyncBackend string

const (
	SyncBackendNone      SyncBackend = ""
	SyncBackendFirestore SyncBackend = "firestore"
	SyncBackendSupabase  SyncBackend = "supabase"
	SyncBackendSheets    SyncBackend = "sheets"
	SyncBackendMongoData SyncBackend = "mongodata"
)

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

const (
	SyncTriggeredManual = "manual"
	SyncTriggeredChange = "change"
	SyncTriggeredTimer  = "timer"
	SyncTriggeredStart  = "startup"
)

const (
	SyncDirectionPush = "push"
	SyncDirectionPull = "pull"
)
