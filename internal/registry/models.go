package registry

import "time"

// Summary describes the catalog currently held by the registry
type Summary struct {
	Source     string
	ImportedAt time.Time
	Venues     int
	Corridors  int
}

// importRow is a row of catalog_imports
type importRow struct {
	ID         int64  `db:"id"`
	Source     string `db:"source"`
	ImportedAt string `db:"imported_at"`
}

type corridorRow struct {
	Name     string `db:"name"`
	Capacity int    `db:"capacity"`
}

type venueRow struct {
	ID       int64  `db:"id"`
	Position int    `db:"position"`
	Name     string `db:"name"`
	Capacity int    `db:"capacity"`
	Model    string `db:"model"`
}

type trafficRow struct {
	VenueID  int64  `db:"venue_id"`
	Corridor string `db:"corridor"`
	Load     int    `db:"load"`
}
