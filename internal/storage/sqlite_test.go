package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewSQLiteDB_CreatesTables(t *testing.T) {
	db := newTestDB(t)

	tables := []string{"users", "orders", "notification_log", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(context.Background(), "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestNewSQLiteDB_MigrationVersion(t *testing.T) {
	db := newTestDB(t)

	var version int
	err := db.QueryRowContext(context.Background(), "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		t.Fatalf("querying version: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("expected version %d, got %d", len(migrations), version)
	}
}

func TestNewSQLiteDB_FreshDBFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "orders.db")

	db, fresh, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	if !fresh {
		t.Error("expected freshDB=true for new database")
	}
	_ = db.Close()

	db, fresh, err = NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("reopening database: %v", err)
	}
	defer db.Close()
	if fresh {
		t.Error("expected freshDB=false on reopen")
	}
}

// --- Order Store Tests ---

func TestSQLiteOrderStore_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	store := NewSQLiteOrderStore(db)
	ctx := context.Background()

	o := &order.Order{
		UserID:      "user-1",
		Description: "Chocolate fudge, 2 tiers",
		Status:      order.StatusPending,
		Contact:     order.Contact{Email: "a@b.com", Phone: "+15550001111", PhoneVerified: true},
	}
	if err := store.CreateOrder(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := store.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected order, got nil")
	}
	if got.Status != order.StatusPending {
		t.Errorf("expected status pending, got %q", got.Status)
	}
	if got.Contact != o.Contact {
		t.Errorf("contact mismatch: got %+v want %+v", got.Contact, o.Contact)
	}
	if got.Description != o.Description || got.UserID != "user-1" {
		t.Errorf("unexpected order: %+v", got)
	}

	missing, err := store.GetOrder(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing order")
	}
}

func TestSQLiteOrderStore_UpdateStatusIsCompareAndSet(t *testing.T) {
	db := newTestDB(t)
	store := NewSQLiteOrderStore(db)
	ctx := context.Background()

	o := &order.Order{Status: order.StatusPending, Contact: order.Contact{Email: "a@b.com"}}
	if err := store.CreateOrder(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	at := time.Now().Add(time.Minute)
	ok, err := store.UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusAccepted, at)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ok {
		t.Fatal("expected first update to apply")
	}

	// Second writer still believes the order is pending.
	ok, err = store.UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusCancelled, at)
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if ok {
		t.Error("expected stale update to be rejected")
	}

	got, _ := store.GetOrder(ctx, o.ID)
	if got.Status != order.StatusAccepted {
		t.Errorf("expected accepted, got %q", got.Status)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("expected updated_at to move forward: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}

	ok, err = store.UpdateStatus(ctx, 12345, order.StatusPending, order.StatusAccepted, at)
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if ok {
		t.Error("expected update of missing order to report false")
	}
}

func TestSQLiteOrderStore_List(t *testing.T) {
	db := newTestDB(t)
	store := NewSQLiteOrderStore(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, uid := range []string{"u1", "u2", "u1"} {
		o := &order.Order{UserID: uid, Status: order.StatusPending, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.CreateOrder(ctx, o); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, err := store.ListOrders(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}
	if all[0].ID != 3 {
		t.Errorf("expected newest order first, got id %d", all[0].ID)
	}

	mine, err := store.ListOrders(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 orders for u1, got %d", len(mine))
	}

	limited, err := store.ListOrders(ctx, "", 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}

// --- User Store Tests ---

func TestSQLiteUserStore(t *testing.T) {
	db := newTestDB(t)
	store := NewSQLiteUserStore(db)
	ctx := context.Background()

	u := &User{Name: "Lando", Email: "lando@cloudcity.example", Phone: "+15550002222"}
	if err := store.AddUser(ctx, u); err != nil {
		t.Fatalf("add: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := store.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Email != u.Email || got.PhoneVerified {
		t.Fatalf("unexpected user: %+v", got)
	}

	byPhone, err := store.GetUserByPhoneNumber(ctx, "+15550002222")
	if err != nil {
		t.Fatalf("get by phone: %v", err)
	}
	if byPhone == nil || byPhone.ID != u.ID {
		t.Fatalf("expected lookup by phone to find %q, got %+v", u.ID, byPhone)
	}

	none, err := store.GetUserByPhoneNumber(ctx, "")
	if err != nil || none != nil {
		t.Errorf("expected nil for empty phone, got %+v, %v", none, err)
	}

	dup := &User{Name: "Other", Phone: "+15550002222"}
	if err := store.AddUser(ctx, dup); !errors.Is(err, ErrDuplicatePhone) {
		t.Errorf("expected ErrDuplicatePhone, got %v", err)
	}

	// Users without a phone do not collide with each other.
	for i := 0; i < 2; i++ {
		if err := store.AddUser(ctx, &User{Name: "No Phone", Email: "np@example.com"}); err != nil {
			t.Fatalf("add phoneless user %d: %v", i, err)
		}
	}

	if err := store.SetPhoneVerified(ctx, u.ID, true); err != nil {
		t.Fatalf("set verified: %v", err)
	}
	got, _ = store.GetUser(ctx, u.ID)
	if !got.PhoneVerified {
		t.Error("expected phone to be verified")
	}

	if err := store.SetPhoneVerified(ctx, "missing", true); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for missing user, got %v", err)
	}

	missing, err := store.GetUser(ctx, "missing")
	if err != nil || missing != nil {
		t.Errorf("expected nil for missing user, got %+v, %v", missing, err)
	}
}
