package services

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MaxProfiles caps the remembered connection profiles.
const MaxProfiles = 5

// Preference keys and their allowed values.
const (
	PrefTheme    = "theme"
	PrefLanguage = "language"

	ThemeLight = "light"
	ThemeDark  = "dark"

	LanguageEnglish = "en"
	LanguagePersian = "fa"
)

// Profile is a remembered connection.
type Profile struct {
	ID        string    `json:"id" yaml:"id"`
	Endpoint  string    `json:"endpoint" yaml:"endpoint"`
	AccessKey string    `json:"accessKey" yaml:"accessKey"`
	SecretKey string    `json:"-" yaml:"-"`
	Region    string    `json:"region" yaml:"region"`
	PathStyle bool      `json:"pathStyle" yaml:"pathStyle"`
	LastUsed  time.Time `json:"lastUsed" yaml:"lastUsed"`
}

// HasSecret reports whether the profile can reconnect without a prompt.
func (p Profile) HasSecret() bool { return p.SecretKey != "" }

// Connection rebuilds the connection the profile was recorded from.
func (p Profile) Connection() Connection {
	return Connection{
		Endpoint:  p.Endpoint,
		AccessKey: p.AccessKey,
		SecretKey: p.SecretKey,
		Region:    p.Region,
		PathStyle: p.PathStyle,
	}
}

// Preferences are the UI settings kept between runs.
type Preferences struct {
	Theme    string `json:"theme" yaml:"theme"`
	Language string `json:"language" yaml:"language"`
}

// DefaultPreferences is what a fresh install shows.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight, Language: LanguageEnglish}
}

// HistoryOptions configures OpenHistory.
type HistoryOptions struct {
	Path            string
	Enabled         bool
	RememberSecrets bool
	Limit           int
}

// HistoryStore persists connection profiles and preferences in SQLite.
type HistoryStore struct {
	db   *sql.DB
	opts HistoryOptions
	log  *logger.Logger
	now  func() time.Time
}

// OpenHistory opens (creating if needed) the database at opts.Path and
// applies pending migrations.
func OpenHistory(opts HistoryOptions, log *logger.Logger) (*HistoryStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Limit <= 0 || opts.Limit > MaxProfiles {
		opts.Limit = MaxProfiles
	}

	if dir := filepath.Dir(opts.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errs.Wrap(errs.KindLocalIO, "failed to create history directory", err)
		}
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, errs.Wrap(errs.KindLocalIO, "failed to open history database", err)
	}
	// One writer; sqlite serialises anyway.
	db.SetMaxOpenConns(1)

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.KindLocalIO, "failed to migrate history database", err)
	}

	h := &HistoryStore{
		db:   db,
		opts: opts,
		log:  log.With().Str("component", "history").Logger(),
		now:  time.Now,
	}
	if opts.Enabled && opts.RememberSecrets {
		h.log.Warn().Str("path", opts.Path).Msg("secret keys will be stored in plaintext")
	}
	return h, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("error loading migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("error creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("error creating migrator: %w", err)
	}
	// m.Close would close db as well.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// Enabled reports whether connections are recorded.
func (h *HistoryStore) Enabled() bool { return h.opts.Enabled }

// Record stores conn as the most recent profile. An existing profile for the
// same endpoint and access key is updated in place. Older profiles beyond
// the limit are dropped. Nothing happens when history is disabled.
func (h *HistoryStore) Record(ctx context.Context, conn Connection) (Profile, error) {
	p := Profile{
		Endpoint:  conn.Endpoint,
		AccessKey: conn.AccessKey,
		Region:    conn.Region,
		PathStyle: conn.PathStyle,
		LastUsed:  h.now(),
	}
	if !h.opts.Enabled {
		return p, nil
	}
	if h.opts.RememberSecrets {
		p.SecretKey = conn.SecretKey
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return Profile{}, errs.Wrap(errs.KindLocalIO, "failed to record connection", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO connections (id, endpoint, access_key, secret_key, region, path_style, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (endpoint, access_key) DO UPDATE SET
			secret_key = excluded.secret_key,
			region     = excluded.region,
			path_style = excluded.path_style,
			last_used  = excluded.last_used
		RETURNING id`,
		uuid.NewString(), p.Endpoint, p.AccessKey, p.SecretKey, p.Region, p.PathStyle, p.LastUsed.UnixNano(),
	).Scan(&p.ID)
	if err != nil {
		return Profile{}, errs.Wrap(errs.KindLocalIO, "failed to record connection", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM connections WHERE id NOT IN (
			SELECT id FROM connections ORDER BY last_used DESC LIMIT ?
		)`, h.opts.Limit); err != nil {
		return Profile{}, errs.Wrap(errs.KindLocalIO, "failed to trim history", err)
	}

	if err := tx.Commit(); err != nil {
		return Profile{}, errs.Wrap(errs.KindLocalIO, "failed to record connection", err)
	}
	return p, nil
}

// List returns profiles, most recent first.
func (h *HistoryStore) List(ctx context.Context) ([]Profile, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, endpoint, access_key, secret_key, region, path_style, last_used
		FROM connections ORDER BY last_used DESC LIMIT ?`, h.opts.Limit)
	if err != nil {
		return nil, errs.Wrap(errs.KindLocalIO, "failed to list history", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, errs.Wrap(errs.KindLocalIO, "failed to read history", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindLocalIO, "failed to read history", err)
	}
	return out, nil
}

// Get returns one profile by ID.
func (h *HistoryStore) Get(ctx context.Context, id string) (Profile, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT id, endpoint, access_key, secret_key, region, path_style, last_used
		FROM connections WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, errs.Newf(errs.KindNotFound, "no saved connection %q", id)
	}
	if err != nil {
		return Profile{}, errs.Wrap(errs.KindLocalIO, "failed to read history", err)
	}
	return p, nil
}

// Delete forgets one profile. Forgetting an unknown ID is not an error.
func (h *HistoryStore) Delete(ctx context.Context, id string) error {
	if _, err := h.db.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id); err != nil {
		return errs.Wrap(errs.KindLocalIO, "failed to forget connection", err)
	}
	return nil
}

// Clear forgets every profile.
func (h *HistoryStore) Clear(ctx context.Context) error {
	if _, err := h.db.ExecContext(ctx, `DELETE FROM connections`); err != nil {
		return errs.Wrap(errs.KindLocalIO, "failed to clear history", err)
	}
	return nil
}

// Preferences returns stored preferences filled with defaults.
func (h *HistoryStore) Preferences(ctx context.Context) (Preferences, error) {
	prefs := DefaultPreferences()

	rows, err := h.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return prefs, errs.Wrap(errs.KindLocalIO, "failed to read preferences", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return prefs, errs.Wrap(errs.KindLocalIO, "failed to read preferences", err)
		}
		switch key {
		case PrefTheme:
			prefs.Theme = value
		case PrefLanguage:
			prefs.Language = value
		}
	}
	return prefs, rows.Err()
}

// SetPreference stores one preference after checking the value.
func (h *HistoryStore) SetPreference(ctx context.Context, key, value string) error {
	if err := ValidatePreference(key, value); err != nil {
		return err
	}
	if _, err := h.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
		return errs.Wrap(errs.KindLocalIO, "failed to save preference", err)
	}
	return nil
}

// ValidatePreference rejects unknown keys and values.
func ValidatePreference(key, value string) error {
	switch key {
	case PrefTheme:
		if value == ThemeLight || value == ThemeDark {
			return nil
		}
	case PrefLanguage:
		if value == LanguageEnglish || value == LanguagePersian {
			return nil
		}
	default:
		return errs.Newf(errs.KindInvalidInput, "unknown preference %q", key)
	}
	return errs.Newf(errs.KindInvalidInput, "invalid %s %q", key, value)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (Profile, error) {
	var (
		p        Profile
		lastUsed int64
	)
	if err := s.Scan(&p.ID, &p.Endpoint, &p.AccessKey, &p.SecretKey, &p.Region, &p.PathStyle, &lastUsed); err != nil {
		return Profile{}, err
	}
	p.LastUsed = time.Unix(0, lastUsed)
	return p, nil
}
