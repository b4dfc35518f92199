package catalog

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/thatjpcsguy/eventalloc/internal/remote"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

// RegistryPrefix marks a source as a catalog registry database
const RegistryPrefix = "registry:"

// Store is a persisted catalog
type Store interface {
	LoadCatalog(ctx context.Context, defaultModel venue.Model) (*Catalog, error)
	Close() error
}

// Resolver loads a catalog from a local file, a registry database or a
// remote host
type Resolver struct {
	Format  Format
	Options Options

	// OpenStore opens the registry at path
	OpenStore func(path string) (Store, error)
	// Fetch reads a file from a remote host
	Fetch func(ctx context.Context, src remote.Source) ([]byte, error)
}

// Resolve loads the catalog named by source:
//
//	venues.txt                  local file
//	registry:/path/catalog.db   registry database
//	ops@host:/srv/venues.yaml   file on a remote host, read over SSH
//
// Every failure is a *LoadError.
func (r *Resolver) Resolve(ctx context.Context, source string) (*Catalog, error) {
	if path, ok := strings.CutPrefix(source, RegistryPrefix); ok {
		return r.fromStore(ctx, source, path)
	}
	if src, ok := remote.ParseSource(source); ok {
		return r.fromRemote(ctx, source, src)
	}
	return Load(source, r.Format, r.Options)
}

func (r *Resolver) fromStore(ctx context.Context, source, path string) (*Catalog, error) {
	if r.OpenStore == nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("catalog registry is not available")}
	}
	store, err := r.OpenStore(path)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	defer func() { _ = store.Close() }()

	cat, err := store.LoadCatalog(ctx, r.Options.DefaultModel)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return cat, nil
}

func (r *Resolver) fromRemote(ctx context.Context, source string, src remote.Source) (*Catalog, error) {
	if r.Fetch == nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("remote catalogs are not available")}
	}
	data, err := r.Fetch(ctx, src)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	format := r.Format
	if format == FormatAuto || format == "" {
		format = DetectFormat(src.Path)
	}
	return parse(source, bytes.NewReader(data), format, r.Options)
}
