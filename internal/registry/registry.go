// Package registry stores validated venue catalogs in a local SQLite
// database so sessions can start from a catalog imported once.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/thatjpcsguy/eventalloc/internal/catalog"
	"github.com/thatjpcsguy/eventalloc/internal/traffic"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

// ErrEmpty is returned when no catalog has been imported yet
var ErrEmpty = errors.New("registry holds no catalog")

// Registry manages the stored catalog
type Registry struct {
	db *sqlx.DB
}

// DefaultPath returns ~/.eventalloc/catalog.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".eventalloc", "catalog.db"), nil
}

// Open creates or opens a registry database at path
func Open(path string) (*Registry, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create registry directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps SQLite writes serialised
	db.SetMaxOpenConns(1)

	r := &Registry{db: db}

	if err := r.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return r, nil
}

// Close closes the database connection
func (r *Registry) Close() error {
	return r.db.Close()
}

// initSchema creates the catalog tables if they don't exist
func (r *Registry) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog_imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		imported_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS corridors (
		name TEXT PRIMARY KEY,
		capacity INTEGER NOT NULL CHECK (capacity >= 0)
	);

	CREATE TABLE IF NOT EXISTS venues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		position INTEGER NOT NULL,
		name TEXT NOT NULL UNIQUE,
		capacity INTEGER NOT NULL CHECK (capacity >= 0),
		model TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS venue_traffic (
		venue_id INTEGER NOT NULL REFERENCES venues(id) ON DELETE CASCADE,
		corridor TEXT NOT NULL REFERENCES corridors(name),
		load INTEGER NOT NULL CHECK (load >= 0),
		PRIMARY KEY (venue_id, corridor)
	);

	CREATE INDEX IF NOT EXISTS idx_venues_position ON venues(position);
	`

	_, err := r.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// SaveCatalog replaces the stored catalog with cat in a single transaction
func (r *Registry) SaveCatalog(ctx context.Context, cat *catalog.Catalog, source string) (Summary, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM venue_traffic",
		"DELETE FROM venues",
		"DELETE FROM corridors",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return Summary{}, fmt.Errorf("failed to clear catalog: %w", err)
		}
	}

	corridors := cat.Corridors()
	for _, c := range corridors {
		_, err := tx.NamedExecContext(ctx,
			"INSERT INTO corridors (name, capacity) VALUES (:name, :capacity)",
			corridorRow{Name: c.Name(), Capacity: c.Capacity()},
		)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to insert corridor %s: %w", c.Name(), err)
		}
	}

	for i, v := range cat.Venues {
		res, err := tx.NamedExecContext(ctx,
			"INSERT INTO venues (position, name, capacity, model) VALUES (:position, :name, :capacity, :model)",
			venueRow{Position: i, Name: v.Name(), Capacity: v.HostingCapacity(), Model: string(v.Model())},
		)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to insert venue %s: %w", v.Name(), err)
		}
		venueID, err := res.LastInsertId()
		if err != nil {
			return Summary{}, fmt.Errorf("failed to read venue id: %w", err)
		}

		base := v.BaseTraffic()
		for c := range base.CorridorsWithLoad() {
			_, err := tx.NamedExecContext(ctx,
				"INSERT INTO venue_traffic (venue_id, corridor, load) VALUES (:venue_id, :corridor, :load)",
				trafficRow{VenueID: venueID, Corridor: c.Name(), Load: base.LoadOn(c)},
			)
			if err != nil {
				return Summary{}, fmt.Errorf("failed to insert traffic for %s: %w", v.Name(), err)
			}
		}
	}

	importedAt := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO catalog_imports (source, imported_at) VALUES (?, ?)",
		source, importedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("failed to commit catalog: %w", err)
	}

	return Summary{
		Source:     source,
		ImportedAt: importedAt.Truncate(time.Second),
		Venues:     len(cat.Venues),
		Corridors:  len(corridors),
	}, nil
}

// LoadCatalog rebuilds the stored catalog in import order. Venues stored
// without a traffic model get defaultModel.
func (r *Registry) LoadCatalog(ctx context.Context, defaultModel venue.Model) (*catalog.Catalog, error) {
	var corridorRows []corridorRow
	if err := r.db.SelectContext(ctx, &corridorRows, "SELECT name, capacity FROM corridors"); err != nil {
		return nil, fmt.Errorf("failed to query corridors: %w", err)
	}
	corridors := make(map[string]traffic.Corridor, len(corridorRows))
	for _, row := range corridorRows {
		c, err := traffic.NewCorridor(row.Name, row.Capacity)
		if err != nil {
			return nil, err
		}
		corridors[row.Name] = c
	}

	var venueRows []venueRow
	if err := r.db.SelectContext(ctx, &venueRows,
		"SELECT id, position, name, capacity, model FROM venues ORDER BY position"); err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	if len(venueRows) == 0 {
		return nil, ErrEmpty
	}

	var trafficRows []trafficRow
	if err := r.db.SelectContext(ctx, &trafficRows,
		"SELECT venue_id, corridor, load FROM venue_traffic ORDER BY venue_id, corridor"); err != nil {
		return nil, fmt.Errorf("failed to query venue traffic: %w", err)
	}
	loads := make(map[int64]traffic.Traffic)
	for _, row := range trafficRows {
		c, ok := corridors[row.Corridor]
		if !ok {
			return nil, fmt.Errorf("venue traffic references unknown corridor %s", row.Corridor)
		}
		t, ok := loads[row.VenueID]
		if !ok {
			t = traffic.New()
		}
		if err := t.Add(c, row.Load); err != nil {
			return nil, err
		}
		loads[row.VenueID] = t
	}

	venues := make([]*venue.Venue, 0, len(venueRows))
	for _, row := range venueRows {
		model := venue.Model(row.Model)
		if model == "" {
			model = defaultModel
		}
		v, err := venue.New(row.Name, row.Capacity, loads[row.ID], model)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild venue %s: %w", row.Name, err)
		}
		venues = append(venues, v)
	}

	return catalog.New(venues)
}

// Summary describes the last import
func (r *Registry) Summary(ctx context.Context) (Summary, error) {
	var last importRow
	err := r.db.GetContext(ctx, &last,
		"SELECT id, source, imported_at FROM catalog_imports ORDER BY id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, ErrEmpty
	}
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get last import: %w", err)
	}

	s := Summary{Source: last.Source}
	s.ImportedAt, _ = time.Parse(time.RFC3339, last.ImportedAt)

	if err := r.db.GetContext(ctx, &s.Venues, "SELECT COUNT(*) FROM venues"); err != nil {
		return Summary{}, fmt.Errorf("failed to count venues: %w", err)
	}
	if err := r.db.GetContext(ctx, &s.Corridors, "SELECT COUNT(*) FROM corridors"); err != nil {
		return Summary{}, fmt.Errorf("failed to count corridors: %w", err)
	}
	return s, nil
}
