// Package store persists application settings and field profiles in sqlite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/justyntemme/panes/internal/debug"
	"github.com/justyntemme/panes/internal/profile"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Setting keys.
const (
	KeyGeometry      = "geometry"
	KeyLayoutID      = "layout_id"
	KeyPanePaths     = "pane_paths"
	KeyPaneProfiles  = "pane_profiles"
	KeyPaneViewModes = "pane_view_modes"
	KeyBookmarks     = "bookmarks" // reserved, never written
)

// ErrReservedKey is returned when writing a reserved setting.
var ErrReservedKey = errors.New("setting key is reserved")

// DB is a settings store scoped by vendor and application name.
type DB struct {
	conn *sql.DB
	path string
}

// DefaultPath returns <UserConfigDir>/<vendor>/<app>/settings.db.
func DefaultPath(vendor, app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, vendor, app, "settings.db"), nil
}

// Open opens or creates the database at dbPath and ensures the schema.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode allows simultaneous readers and writers
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, err
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			name TEXT PRIMARY KEY,
			display TEXT NOT NULL,
			properties TEXT NOT NULL
		);`,
	}
	for _, q := range schema {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, err
		}
	}

	debug.Log(debug.STORE, "Open: %s", dbPath)
	return &DB{conn: db, path: dbPath}, nil
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

func (d *DB) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// Get returns the value stored under key.
func (d *DB) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := d.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (d *DB) Set(key string, value []byte) error {
	if key == KeyBookmarks {
		return fmt.Errorf("set %s: %w", key, ErrReservedKey)
	}
	_, err := d.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	debug.Log(debug.STORE, "Set: %s (%d bytes)", key, len(value))
	return nil
}

// GetJSON decodes the JSON value under key into v.
func (d *DB) GetJSON(key string, v any) (bool, error) {
	raw, ok, err := d.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v as JSON under key.
func (d *DB) SetJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return d.Set(key, raw)
}

// Delete removes keys. Missing keys are ignored.
func (d *DB) Delete(keys ...string) error {
	for _, key := range keys {
		if _, err := d.conn.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

// Keys lists the stored setting keys, sorted.
func (d *DB) Keys() ([]string, error) {
	rows, err := d.conn.Query("SELECT key FROM settings ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// LoadProfiles reads every stored profile. Rows with undecodable field lists
// are skipped.
func (d *DB) LoadProfiles() (map[string]profile.Fields, error) {
	rows, err := d.conn.Query("SELECT name, display, properties FROM profiles")
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	defer rows.Close()

	out := make(map[string]profile.Fields)
	for rows.Next() {
		var name, display, properties string
		if err := rows.Scan(&name, &display, &properties); err != nil {
			return nil, err
		}
		var f profile.Fields
		if err := json.Unmarshal([]byte(display), &f.Display); err != nil {
			debug.Log(debug.STORE, "LoadProfiles: %q display: %v", name, err)
			continue
		}
		if err := json.Unmarshal([]byte(properties), &f.Properties); err != nil {
			debug.Log(debug.STORE, "LoadProfiles: %q properties: %v", name, err)
			continue
		}
		out[name] = f
	}
	return out, rows.Err()
}

// SaveProfiles replaces the stored profiles with m in one transaction.
func (d *DB) SaveProfiles(m map[string]profile.Fields) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM profiles"); err != nil {
		return err
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := m[name]
		display, err := json.Marshal(nonNil(f.Display))
		if err != nil {
			return err
		}
		properties, err := json.Marshal(nonNil(f.Properties))
		if err != nil {
			return err
		}
		if _, err := tx.Exec("INSERT INTO profiles (name, display, properties) VALUES (?, ?, ?)",
			name, string(display), string(properties)); err != nil {
			return fmt.Errorf("save profile %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	debug.Log(debug.STORE, "SaveProfiles: %d profiles", len(m))
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
