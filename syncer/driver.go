package syncer

import (
	"context"

	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
)

// DriverState tracks the driver lifecycle. Disabled is terminal for the
// session once entered through a configuration or connectivity failure.
type DriverState int

const (
	StateUninitialized DriverState = iota
	StateInitializing
	StateEnabled
	StateDisabled
)

// Driver is the contract every remote backend satisfies. Rows cross the
// boundary in the driver's remote field space; the Synchronizer runs the
// shared mapping engine against Mappings before calling ReplaceTable and
// after FetchTable.
type Driver interface {
	Name() models.SyncBackend

	// Initialize loads credentials from the settings store and constructs
	// the remote client. Idempotent. Missing configuration is not an
	// error: the driver logs and stays disabled.
	Initialize(ctx context.Context) error

	// IsEnabled reports whether configuration is present, sync is turned
	// on, and the remote client constructed successfully.
	IsEnabled() bool

	// TestConnection performs a minimal round-trip. It returns nil only on
	// an unambiguous success; otherwise a *ClassifiedError.
	TestConnection(ctx context.Context) error

	// ReplaceTable deletes every remote record of the table and inserts
	// rows: a full mirror, not a delta.
	ReplaceTable(ctx context.Context, table Table, rows []map[string]any) error

	// FetchTable returns the complete remote collection.
	FetchTable(ctx context.Context, table Table) ([]map[string]any, error)

	// Mappings declares the per-table field mapping of this backend.
	Mappings(table Table) []FieldMapping
}

// ForBackend constructs the driver for the configured backend kind.
// Returns nil when no backend is selected.
func ForBackend(backend models.SyncBackend, store *settings.Store) Driver {
	switch backend {
	case models.SyncBackendFirestore:
		return NewFirestoreDriver(store)
	case models.SyncBackendSupabase:
		return NewSupabaseDriver(store)
	case models.SyncBackendSheets:
		return NewSheetsDriver(store)
	case models.SyncBackendMongoData:
		return NewMongoDataDriver(store)
	default:
		return nil
	}
}
