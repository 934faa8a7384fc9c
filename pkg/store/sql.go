package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/layoutset"
)

// Dialect selects placeholder style and driver name.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS form_layouts (
		org TEXT NOT NULL,
		app TEXT NOT NULL,
		layout_set TEXT NOT NULL,
		name TEXT NOT NULL,
		document TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (org, app, layout_set, name)
	)`,
	`CREATE TABLE IF NOT EXISTS layout_settings (
		org TEXT NOT NULL,
		app TEXT NOT NULL,
		layout_set TEXT NOT NULL,
		document TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (org, app, layout_set)
	)`,
}

// SQLStore keeps layouts in a SQLite or PostgreSQL database.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	opts    options
	owned   bool
}

var _ Store = (*SQLStore)(nil)

// OpenSQL opens dsn with the dialect's driver, verifies the connection and
// creates the tables when missing.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store: dsn is required")
	}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", dialect, err)
	}

	s := NewSQLStore(db, dialect, opts...)
	s.owned = true
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an existing handle. Call Migrate before first use.
func NewSQLStore(db *sql.DB, dialect Dialect, opts ...Option) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, opts: resolve(opts)}
}

// Migrate creates the layout tables if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	s.opts.logger.Debug("schema ready", slog.String("dialect", string(s.dialect)))
	return nil
}

// Close releases the database handle when OpenSQL created it.
func (s *SQLStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) timestamp() string {
	return s.opts.now().UTC().Format(time.RFC3339Nano)
}

// LoadLayout reads and decodes a single layout.
func (s *SQLStore) LoadLayout(ctx context.Context, ref Ref, name string) (*layout.ExternalFormLayout, error) {
	if err := checkLayoutRef(ref, name); err != nil {
		return nil, err
	}
	var document string
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT document FROM form_layouts WHERE org = ? AND app = ? AND layout_set = ? AND name = ?`),
		ref.Org, ref.App, ref.LayoutSet, name,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: load layout %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load layout %q: %w", name, err)
	}
	external, err := layout.ParseExternal([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("store: load layout %q: %w", name, err)
	}
	return external, nil
}

// SaveLayout inserts or replaces the layout row.
func (s *SQLStore) SaveLayout(ctx context.Context, ref Ref, name string, external *layout.ExternalFormLayout) error {
	if err := checkLayoutRef(ref, name); err != nil {
		return err
	}
	data, err := json.Marshal(external)
	if err != nil {
		return fmt.Errorf("store: save layout %q: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO form_layouts (org, app, layout_set, name, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (org, app, layout_set, name)
		DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`),
		ref.Org, ref.App, ref.LayoutSet, name, string(data), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("store: save layout %q: %w", name, err)
	}
	s.opts.logger.Debug("layout saved", slog.String("ref", ref.String()), slog.String("layout", name))
	return nil
}

// DeleteLayout removes the layout row.
func (s *SQLStore) DeleteLayout(ctx context.Context, ref Ref, name string) error {
	if err := checkLayoutRef(ref, name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM form_layouts WHERE org = ? AND app = ? AND layout_set = ? AND name = ?`),
		ref.Org, ref.App, ref.LayoutSet, name,
	)
	if err != nil {
		return fmt.Errorf("store: delete layout %q: %w", name, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("store: delete layout %q: %w", name, ErrNotFound)
	}
	s.opts.logger.Debug("layout deleted", slog.String("ref", ref.String()), slog.String("layout", name))
	return nil
}

// ListLayouts returns the layout names of the set, sorted.
func (s *SQLStore) ListLayouts(ctx context.Context, ref Ref) ([]string, error) {
	raw, err := s.query(ctx, ref, `SELECT name FROM form_layouts WHERE org = ? AND app = ? AND layout_set = ? ORDER BY name`, false)
	if err != nil {
		return nil, fmt.Errorf("store: list layouts: %w", err)
	}
	names := make([]string, 0, len(raw))
	for _, row := range raw {
		names = append(names, row.name)
	}
	return names, nil
}

// LoadRaw returns every layout document of the set without decoding it.
func (s *SQLStore) LoadRaw(ctx context.Context, ref Ref) (map[string][]byte, error) {
	raw, err := s.query(ctx, ref, `SELECT name, document FROM form_layouts WHERE org = ? AND app = ? AND layout_set = ? ORDER BY name`, true)
	if err != nil {
		return nil, fmt.Errorf("store: load layouts: %w", err)
	}
	out := make(map[string][]byte, len(raw))
	for _, row := range raw {
		out[row.name] = []byte(row.document)
	}
	return out, nil
}

type layoutRow struct {
	name     string
	document string
}

func (s *SQLStore) query(ctx context.Context, ref Ref, query string, withDocument bool) ([]layoutRow, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(query), ref.Org, ref.App, ref.LayoutSet)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	out := []layoutRow{}
	for rows.Next() {
		var row layoutRow
		if withDocument {
			err = rows.Scan(&row.name, &row.document)
		} else {
			err = rows.Scan(&row.name)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LoadSettings reads the settings row of the set.
func (s *SQLStore) LoadSettings(ctx context.Context, ref Ref) (layoutset.Settings, error) {
	if err := ref.Validate(); err != nil {
		return layoutset.Settings{}, err
	}
	var document string
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT document FROM layout_settings WHERE org = ? AND app = ? AND layout_set = ?`),
		ref.Org, ref.App, ref.LayoutSet,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return layoutset.Settings{}, fmt.Errorf("store: load settings: %w", ErrNotFound)
	}
	if err != nil {
		return layoutset.Settings{}, fmt.Errorf("store: load settings: %w", err)
	}
	var settings layoutset.Settings
	if err := json.Unmarshal([]byte(document), &settings); err != nil {
		return layoutset.Settings{}, fmt.Errorf("store: load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings inserts or replaces the settings row.
func (s *SQLStore) SaveSettings(ctx context.Context, ref Ref, settings layoutset.Settings) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO layout_settings (org, app, layout_set, document, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (org, app, layout_set)
		DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`),
		ref.Org, ref.App, ref.LayoutSet, string(data), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	return nil
}
