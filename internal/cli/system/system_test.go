package system

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/tokumei/internal/api/apitest"
	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/storage/sqlite"
)

var testNow = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

// setupTestDB returns a context over an uninitialized store in a temp dir.
func setupTestDB(t *testing.T) (*cli.Context, string, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	out := &bytes.Buffer{}
	return &cli.Context{
		Store: store,
		Out:   out,
		Clock: func() time.Time { return testNow },
	}, dbPath, out
}

// setupWithAPI returns an initialized store wired to a fake service.
func setupWithAPI(t *testing.T) (*cli.Context, *apitest.Server, *bytes.Buffer) {
	t.Helper()
	ctx, _, out := setupTestDB(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	settings.Timezone = "UTC"
	settings.RequestsPerSecond = 0
	if err := ctx.Store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	srv := apitest.New(t)
	srv.SetClock(func() time.Time { return testNow })
	ctx.APIURL = srv.URL
	return ctx, srv, out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
