package storage

import (
	"fmt"

	"github.com/julianstephens/tokumei/internal/models"
	"github.com/julianstephens/tokumei/internal/storage/postgres"
	"github.com/julianstephens/tokumei/internal/storage/sqlite"
	"github.com/julianstephens/tokumei/internal/utils"
)

// KV is the flat string key/value store that holds the identity token,
// the daily markers and the notification watermark.
type KV interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	SetMany(pairs map[string]string) error
	Delete(keys ...string) error
	List(prefix string) (map[string]string, error)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Schema
	Migrate(logFn func(string)) (int, error)
	SchemaStatus() (current int, latest int, err error)

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	KV
}

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
)

// Open returns the provider for a database path or PostgreSQL connection
// string. It does not touch the database; call Init or Load next.
func Open(config string) (Provider, error) {
	if utils.IsConnString(config) {
		if ok, err := postgres.ValidateConnString(config); !ok {
			return nil, err
		}
		return postgres.New(config), nil
	}

	path, err := utils.ExpandPath(config)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	return sqlite.NewStore(path), nil
}
