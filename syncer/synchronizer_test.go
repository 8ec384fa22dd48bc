package syncer

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/mmdatafocus/garage_backend/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return s
}

// fakeDriver is an in-memory backend. The zero value is disabled; tests
// seed remote contents directly into remote.
type fakeDriver struct {
	mu         sync.Mutex
	enabled    bool
	remote     map[Table][]map[string]any
	replaced   []Table
	fetched    []Table
	replaceErr map[Table]error
	fetchErr   map[Table]error

	// when set, ReplaceTable signals enter and then blocks until release
	// closes, which lets a test hold the guard open.
	enter   chan struct{}
	release chan struct{}
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		enabled:    true,
		remote:     make(map[Table][]map[string]any),
		replaceErr: make(map[Table]error),
		fetchErr:   make(map[Table]error),
	}
}

func (d *fakeDriver) Name() models.SyncBackend             { return "fake" }
func (d *fakeDriver) Initialize(context.Context) error     { return nil }
func (d *fakeDriver) TestConnection(context.Context) error { return nil }

func (d *fakeDriver) IsEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

func (d *fakeDriver) Mappings(table Table) []FieldMapping {
	return SnakeMappings(table)
}

func (d *fakeDriver) ReplaceTable(ctx context.Context, table Table, rows []map[string]any) error {
	if d.enter != nil {
		d.enter <- struct{}{}
	}
	if d.release != nil {
		<-d.release
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.replaced = append(d.replaced, table)
	if err := d.replaceErr[table]; err != nil {
		return err
	}
	d.remote[table] = rows
	return nil
}

func (d *fakeDriver) FetchTable(ctx context.Context, table Table) ([]map[string]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetched = append(d.fetched, table)
	if err := d.fetchErr[table]; err != nil {
		return nil, err
	}
	return d.remote[table], nil
}

func (d *fakeDriver) replacedTables() []Table {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Table(nil), d.replaced...)
}

func (d *fakeDriver) remoteTable(table Table) []map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]map[string]any, len(d.remote[table]))
	copy(out, d.remote[table])
	return out
}

func newTestSynchronizer(t *testing.T) (*Synchronizer, *store.Store, *fakeDriver) {
	t.Helper()
	st := testStore(t)
	cfg := settings.New(st, nil)
	driver := newFakeDriver()
	return New(st, cfg, driver), st, driver
}

func seedCustomer(t *testing.T, st *store.Store, code, name string) {
	t.Helper()
	err := store.Add(context.Background(), st, &models.Customer{
		Code: code, Name: name, Phone: "0903123456",
	})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}

func TestPushAllVisitsTablesInDependencyOrder(t *testing.T) {
	sync, st, driver := newTestSynchronizer(t)
	seedCustomer(t, st, "KH0001", "A")

	if err := sync.PushAll(context.Background(), models.SyncTriggeredManual); err != nil {
		t.Fatalf("push: %v", err)
	}
	if got := driver.replacedTables(); !reflect.DeepEqual(got, TableOrder) {
		t.Fatalf("push order %v, want %v", got, TableOrder)
	}
}

func TestPushAllAbortsOnFirstTableError(t *testing.T) {
	sync, st, driver := newTestSynchronizer(t)
	seedCustomer(t, st, "KH0001", "A")
	driver.replaceErr[TableVehicles] = errors.New("remote rejected vehicles")

	err := sync.PushAll(context.Background(), models.SyncTriggeredManual)
	if err == nil {
		t.Fatal("expected push to fail")
	}
	got := driver.replacedTables()
	want := []Table{TableCustomers, TableVehicles}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("push continued past the failed table: %v", got)
	}

	var run models.SyncRun
	if err := st.DB().Order("id desc").First(&run).Error; err != nil {
		t.Fatalf("load run: %v", err)
	}
	if run.Status != models.SyncRunStatusFailed {
		t.Fatalf("run status %q, want failed", run.Status)
	}
	var tableErrors []models.SyncError
	if err := st.DB().Where("sync_run_id = ?", run.ID).Find(&tableErrors).Error; err != nil {
		t.Fatalf("load errors: %v", err)
	}
	if len(tableErrors) != 1 || tableErrors[0].TableName != string(TableVehicles) {
		t.Fatalf("unexpected error rows: %+v", tableErrors)
	}
}

func TestPushAllRecordsRunAndLastSync(t *testing.T) {
	sync, st, driver := newTestSynchronizer(t)
	seedCustomer(t, st, "KH0001", "A")
	seedCustomer(t, st, "KH0002", "B")

	if err := sync.PushAll(context.Background(), models.SyncTriggeredTimer); err != nil {
		t.Fatalf("push: %v", err)
	}

	var run models.SyncRun
	if err := st.DB().Order("id desc").First(&run).Error; err != nil {
		t.Fatalf("load run: %v", err)
	}
	if run.Status != models.SyncRunStatusSuccess || run.Direction != models.SyncDirectionPush {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.TriggeredBy != models.SyncTriggeredTimer {
		t.Fatalf("triggered_by %q", run.TriggeredBy)
	}
	if run.RecordsSynced != 2 {
		t.Fatalf("records_synced %d, want 2", run.RecordsSynced)
	}
	if len(driver.remoteTable(TableCustomers)) != 2 {
		t.Fatal("remote did not receive the customer rows")
	}

	cfg := settings.New(st, nil)
	loaded, err := cfg.Get(context.Background())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if loaded.LastSyncTime == nil {
		t.Fatal("last sync time not recorded")
	}
}

func TestPushAllIsIdempotent(t *testing.T) {
	sync, st, driver := newTestSynchronizer(t)
	seedCustomer(t, st, "KH0001", "A")

	if err := sync.PushAll(context.Background(), models.SyncTriggeredManual); err != nil {
		t.Fatalf("first push: %v", err)
	}
	first := driver.remoteTable(TableCustomers)

	if err := sync.PushAll(context.Background(), models.SyncTriggeredManual); err != nil {
		t.Fatalf("second push: %v", err)
	}
	second := driver.remoteTable(TableCustomers)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("pushing the same data twice changed the remote state:\n%v\n%v", first, second)
	}
}

func TestConcurrentPushIsDropped(t *testing.T) {
	sync, st, driver := newTestSynchronizer(t)
	seedCustomer(t, st, "KH0001", "A")
	driver.enter = make(chan struct{}, 1)
	driver.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- sync.PushAll(context.Background(), models.SyncTriggeredManual)
	}()
	<-driver.enter

	if err := sync.PushAll(context.Background(), models.SyncTriggeredChange); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}
	if err := sync.PullAll(context.Background(), models.SyncTriggeredManual); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("pull during push: expected ErrSyncInProgress, got %v", err)
	}

	close(driver.release)
	if err := <-done; err != nil {
		t.Fatalf("first push: %v", err)
	}

	// guard released: the next cycle may run again
	driver.enter = nil
	driver.release = nil
	if err := sync.PushAll(context.Background(), models.SyncTriggeredManual); err != nil {
		t.Fatalf("push after release: %v", err)
	}
}

func TestPushDisabledDriver(t *testing.T) {
	sync, _, driver := newTestSynchronizer(t)
	driver.enabled = false
	if err := sync.PushAll(context.Background(), models.SyncTriggeredManual); !errors.Is(err, ErrSyncDisabled) {
		t.Fatalf("expected ErrSyncDisabled, got %v", err)
	}
}

func TestPullAllReplacesLocalData(t *testing.T) {
	sync, st, driver := newTestSynchronizer(t)
	seedCustomer(t, st, "KH0001", "stale local")
	driver.remote[TableCustomers] = []map[string]any{
		{"id": float64(1), "code": "KH0001", "name": "fresh remote", "phone": "0912345678"},
	}

	if err := sync.PullAll(context.Background(), models.SyncTriggeredManual); err != nil {
		t.Fatalf("pull: %v", err)
	}
	got, err := store.Get[models.Customer](context.Background(), st, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "fresh remote" {
		t.Fatalf("local row not replaced, name %q", got.Name)
	}
	if !reflect.DeepEqual(driverFetched(driver), TableOrder) {
		t.Fatalf("pull order %v", driverFetched(driver))
	}
}

func driverFetched(d *fakeDriver) []Table {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Table(nil), d.fetched...)
}

func TestPullAllIsolatesTableFailures(t *testing.T) {
	sync, st, driver := newTestSynchronizer(t)
	seedCustomer(t, st, "KH0001", "stale local")
	driver.remote[TableCustomers] = []map[string]any{
		{"id": float64(1), "code": "KH0001", "name": "fresh remote", "phone": "0912345678"},
	}
	driver.fetchErr[TableVehicles] = errors.New("collection unavailable")

	err := sync.PullAll(context.Background(), models.SyncTriggeredManual)
	if err == nil {
		t.Fatal("expected pull to report the table failure")
	}

	// the failed table did not stop the others
	if len(driverFetched(driver)) != len(TableOrder) {
		t.Fatalf("pull stopped early: %v", driverFetched(driver))
	}
	got, loadErr := store.Get[models.Customer](context.Background(), st, 1)
	if loadErr != nil {
		t.Fatalf("get: %v", loadErr)
	}
	if got.Name != "fresh remote" {
		t.Fatal("healthy table was not pulled")
	}

	var run models.SyncRun
	if err := st.DB().Order("id desc").First(&run).Error; err != nil {
		t.Fatalf("load run: %v", err)
	}
	if run.Status != models.SyncRunStatusPartial {
		t.Fatalf("run status %q, want partial", run.Status)
	}
	if run.ErrorCount != 1 {
		t.Fatalf("error count %d", run.ErrorCount)
	}
}

func TestPullAllOntoFreshDevice(t *testing.T) {
	sync, st, driver := newTestSynchronizer(t)
	driver.remote[TableCustomers] = []map[string]any{
		{"id": float64(1), "code": "KH0001", "name": "A", "phone": "0903123456"},
		{"id": float64(2), "code": "KH0002", "name": "B", "phone": "0912345678"},
		{"id": float64(3), "code": "KH0003", "name": "C", "phone": "0987654321"},
	}
	driver.remote[TableVehicles] = []map[string]any{
		{"id": float64(1), "code": "XE0001", "customer_id": float64(1), "license_plate": "43A-123.45", "brand": "Toyota", "model": "Vios"},
		{"id": float64(2), "code": "XE0002", "customer_id": float64(3), "license_plate": "92B-111.22", "brand": "Ford", "model": "Ranger"},
	}

	if err := sync.PullAll(context.Background(), models.SyncTriggeredStart); err != nil {
		t.Fatalf("pull: %v", err)
	}
	customers, err := store.Count[models.Customer](context.Background(), st)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if customers != 3 {
		t.Fatalf("expected 3 customers, got %d", customers)
	}
	vehicle, err := store.Get[models.Vehicle](context.Background(), st, 1)
	if err != nil {
		t.Fatalf("get vehicle: %v", err)
	}
	if vehicle.CustomerId != 1 || vehicle.LicensePlate != "43A-123.45" {
		t.Fatalf("vehicle fields lost in transit: %+v", vehicle)
	}
}

// Snapshots the local tables after every per-table replace of a pull and
// checks that a visible line item always resolves to a repair order row.
func TestPullAllNeverOrphansRepairOrderLines(t *testing.T) {
	sync, st, driver := newTestSynchronizer(t)
	driver.remote[TableRepairOrders] = []map[string]any{
		{"id": float64(1), "code": "SC2608-0001", "customer_id": float64(1), "vehicle_id": float64(1), "status": "completed"},
		{"id": float64(2), "code": "SC2608-0002", "customer_id": float64(2), "vehicle_id": float64(2), "status": "new"},
		{"id": float64(3), "code": "SC2608-0003", "customer_id": float64(1), "vehicle_id": float64(1), "status": "in_progress"},
	}
	driver.remote[TableRepairOrderItems] = []map[string]any{
		{"id": float64(1), "repair_order_id": float64(1), "type": "part", "item_id": float64(1), "name": "Oil filter", "quantity": "1", "unit_price": "80000", "total": "80000"},
		{"id": float64(2), "repair_order_id": float64(3), "type": "service", "item_id": float64(1), "name": "Oil change", "quantity": "1", "unit_price": "100000", "total": "100000"},
	}

	ctx := context.Background()
	var orphans []int64
	unsubscribe := st.Subscribe(func() {
		lines, err := st.Rows(ctx, string(TableRepairOrderItems))
		if err != nil {
			t.Errorf("snapshot lines: %v", err)
			return
		}
		if len(lines) == 0 {
			return
		}
		orders, err := st.Rows(ctx, string(TableRepairOrders))
		if err != nil {
			t.Errorf("snapshot orders: %v", err)
			return
		}
		known := make(map[int64]bool, len(orders))
		for _, row := range orders {
			known[AsInt(row["id"])] = true
		}
		for _, row := range lines {
			if ref := AsInt(row["repair_order_id"]); !known[ref] {
				orphans = append(orphans, ref)
			}
		}
	})
	defer unsubscribe()

	if err := sync.PullAll(ctx, models.SyncTriggeredManual); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if len(orphans) > 0 {
		t.Fatalf("line items referenced missing repair orders %v mid-pull", orphans)
	}
	orders, err := store.Count[models.RepairOrder](ctx, st)
	if err != nil {
		t.Fatalf("count orders: %v", err)
	}
	lines, err := store.Count[models.RepairOrderItem](ctx, st)
	if err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if orders != 3 || lines != 2 {
		t.Fatalf("pulled %d orders and %d lines, want 3 and 2", orders, lines)
	}
}
