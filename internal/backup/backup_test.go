package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/tokumei/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tokumei.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Set("user_id", "user-42"); err != nil {
		t.Fatalf("failed to seed identity: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
	return dbPath
}

func fixedClock() func() time.Time {
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func readIdentity(t *testing.T, dbPath string) string {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	defer store.Close()

	v, ok, err := store.Get("user_id")
	if err != nil || !ok {
		t.Fatalf("identity missing: ok=%v err=%v", ok, err)
	}
	return v
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(fixedClock()))

	info, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if info.Name() != "tokumei-20261017-080000.db" {
		t.Errorf("unexpected backup name %q", info.Name())
	}
	if info.Size == 0 {
		t.Error("backup size is 0")
	}
	if err := Verify(info.Path); err != nil {
		t.Errorf("backup does not verify: %v", err)
	}
	if got := readIdentity(t, info.Path); got != "user-42" {
		t.Errorf("expected identity in backup, got %q", got)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestSameSecondNames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(fixedClock()))

	var names []string
	for i := 0; i < 3; i++ {
		info, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		names = append(names, info.Name())
	}

	want := []string{
		"tokumei-20261017-080000.db",
		"tokumei-20261017-080000-1.db",
		"tokumei-20261017-080000-2.db",
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("backup %d: expected %q, got %q", i, want[i], names[i])
		}
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 || list[0].Name() != want[2] {
		t.Errorf("expected newest counter first, got %v", list)
	}
}

func TestPrune(t *testing.T) {
	dbPath := setupTestDB(t)

	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	mgr := NewManager(dbPath, WithKeep(3), WithClock(func() time.Time { return now }))

	for i := 0; i < 5; i++ {
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		now = now.Add(24 * time.Hour)
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 backups after pruning, got %d", len(list))
	}
	if list[0].Name() != "tokumei-20261005-080000.db" {
		t.Errorf("expected newest first, got %s", list[0].Name())
	}
	for i := 1; i < len(list); i++ {
		if list[i].Created.After(list[i-1].Created) {
			t.Errorf("backups not sorted: %s after %s", list[i].Name(), list[i-1].Name())
		}
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	if list, err := mgr.List(); err != nil || len(list) != 0 {
		t.Fatalf("expected no backups before the directory exists, got %v, %v", list, err)
	}

	if err := os.MkdirAll(mgr.Dir(), 0o700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"notes.txt",
		"tokumei-yesterday.db",
		"tokumei-20261017-080000-x.db",
		"backup-20261017-080000.db",
	} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected foreign files to be ignored, got %v", list)
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	mgr := NewManager(dbPath, WithClock(func() time.Time { return now }))

	saved, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Replace the identity, then roll back.
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("user_id", "user-other"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	now = now.Add(time.Minute)
	safety, err := mgr.Restore(saved.Path)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if got := readIdentity(t, dbPath); got != "user-42" {
		t.Errorf("expected restored identity user-42, got %q", got)
	}
	if got := readIdentity(t, safety.Path); got != "user-other" {
		t.Errorf("expected safety backup to hold the replaced identity, got %q", got)
	}
}

func TestRestoreRejectsInvalid(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "nope.db")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	junk := filepath.Join(t.TempDir(), "junk.db")
	if err := os.WriteFile(junk, []byte("not a database"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(junk); err == nil {
		t.Error("expected error restoring an invalid file")
	}
	if got := readIdentity(t, dbPath); got != "user-42" {
		t.Errorf("failed restore must leave the store alone, got %q", got)
	}
}

func TestResolve(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(fixedClock()))

	info, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}

	got, err := mgr.Resolve(info.Name())
	if err != nil || got != info.Path {
		t.Errorf("Resolve(name) = %q, %v", got, err)
	}
	got, err = mgr.Resolve(info.Path)
	if err != nil || got != info.Path {
		t.Errorf("Resolve(path) = %q, %v", got, err)
	}
	if _, err := mgr.Resolve("tokumei-19990101-000000.db"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
