package postgres

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tokumei/internal/models"
)

func TestPostgresIntegration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	require.NoError(t, store.Init())
	defer store.Close()

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings().APIURL, settings.APIURL)

	require.NoError(t, store.SetMany(map[string]string{
		"daily:it:last_posted_date": "2026-10-17",
		"daily:it:received_count":   "2",
	}))
	t.Cleanup(func() { _ = store.Delete("daily:it:last_posted_date", "daily:it:received_count") })

	value, ok, err := store.Get("daily:it:received_count")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", value)

	listed, err := store.List("daily:it:")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	current, latest, err := store.SchemaStatus()
	require.NoError(t, err)
	assert.Equal(t, latest, current)
}
