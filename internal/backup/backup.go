// Package backup snapshots the SQLite local store. The store holds the
// anonymous identity, which the service never re-issues, so losing the file
// loses the user's diaries and collection.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/logger"
	"github.com/julianstephens/tokumei/internal/utils"
)

const (
	// DefaultKeep is how many snapshots Create leaves behind.
	DefaultKeep = 14
	DirName     = "backups"

	filePrefix = constants.AppName + "-"
	fileSuffix = ".db"
	stampFmt   = "20060102-150405"
)

// ErrNotFound is returned when a snapshot path does not exist.
var ErrNotFound = errors.New("backup not found")

// Info describes one snapshot on disk.
type Info struct {
	Path    string
	Created time.Time
	Size    int64

	seq int
}

func (i Info) Name() string {
	return filepath.Base(i.Path)
}

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    utils.Clock
}

type Option func(*Manager)

// WithClock sets the time source used to name snapshots.
func WithClock(now utils.Clock) Option {
	return func(m *Manager) { m.now = now }
}

// WithKeep sets the retention count. Values below 1 keep everything.
func WithKeep(n int) Option {
	return func(m *Manager) { m.keep = n }
}

// NewManager manages snapshots of dbPath in a backups directory next to it.
func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		keep:   DefaultKeep,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a consistent snapshot of the store and prunes old ones.
func (m *Manager) Create() (Info, error) {
	info, err := m.create()
	if err != nil {
		return Info{}, err
	}
	if err := m.prune(); err != nil {
		logger.Component("backup").Warn("failed to prune old backups", "error", err)
	}
	return info, nil
}

func (m *Manager) create() (Info, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return Info{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return Info{}, err
	}
	if err := snapshot(m.dbPath, path); err != nil {
		return Info{}, fmt.Errorf("failed to back up database: %w", err)
	}
	return stat(path)
}

// nextPath names a snapshot after the current second, adding a counter when
// several are taken within it.
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().UTC().Format(stampFmt)
	path := filepath.Join(m.dir, filePrefix+stamp+fileSuffix)
	for n := 1; exists(path); n++ {
		if n > 100 {
			return "", errors.New("failed to generate a unique backup name")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s%s-%d%s", filePrefix, stamp, n, fileSuffix))
	}
	return path, nil
}

// snapshot copies src with VACUUM INTO, which is safe while other
// connections hold the database open.
func snapshot(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := verifyDB(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	_, err = db.Exec("VACUUM INTO ?", dst)
	return err
}

// List returns the snapshots newest first. Files that do not follow the
// naming scheme are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		created, seq, ok := parseName(e.Name())
		if !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Path:    filepath.Join(m.dir, e.Name()),
			Created: created,
			Size:    fi.Size(),
			seq:     seq,
		})
	}

	slices.SortFunc(out, func(a, b Info) int {
		if c := b.Created.Compare(a.Created); c != 0 {
			return c
		}
		return b.seq - a.seq
	})
	return out, nil
}

// parseName extracts the timestamp and collision counter from a snapshot
// file name.
func parseName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	seq := 0
	if len(stamp) > len(stampFmt) {
		counter, ok := strings.CutPrefix(stamp[len(stampFmt):], "-")
		if !ok {
			return time.Time{}, 0, false
		}
		n, err := strconv.Atoi(counter)
		if err != nil || n < 1 {
			return time.Time{}, 0, false
		}
		stamp, seq = stamp[:len(stampFmt)], n
	}
	t, err := time.Parse(stampFmt, stamp)
	if err != nil {
		return time.Time{}, 0, false
	}
	return t, seq, true
}

func (m *Manager) prune() error {
	if m.keep < 1 {
		return nil
	}
	backups, err := m.List()
	if err != nil {
		return err
	}
	for _, b := range backups[min(m.keep, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", b.Name(), err)
		}
	}
	return nil
}

// Resolve accepts a snapshot path or a bare file name inside Dir.
func (m *Manager) Resolve(name string) (string, error) {
	if !filepath.IsAbs(name) {
		if p := filepath.Join(m.dir, name); exists(p) {
			return p, nil
		}
	}
	if !exists(name) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return name, nil
}

// Restore replaces the store with the snapshot at path. The current store is
// snapshotted first and that snapshot is returned. The caller must close its
// connections before calling Restore.
func (m *Manager) Restore(path string) (Info, error) {
	if !exists(path) {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err := Verify(path); err != nil {
		return Info{}, fmt.Errorf("backup is corrupted or invalid: %w", err)
	}

	var safety Info
	if exists(m.dbPath) {
		var err error
		if safety, err = m.create(); err != nil {
			return Info{}, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return Info{}, fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		_ = os.Remove(tmp)
		return Info{}, fmt.Errorf("failed to restore database: %w", err)
	}
	return safety, nil
}

// Verify checks that path is a SQLite database holding the tokumei schema.
func Verify(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return verifyDB(db)
}

func verifyDB(db *sql.DB) error {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('settings', 'kv')`).Scan(&n)
	if err != nil {
		return err
	}
	if n != 2 {
		return errors.New("missing settings or kv table")
	}
	return nil
}

func stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	created, seq, _ := parseName(filepath.Base(path))
	return Info{Path: path, Created: created, Size: fi.Size(), seq: seq}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
