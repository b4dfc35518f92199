package registry

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatjpcsguy/eventalloc/internal/catalog"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

const venuesText = `Hall A
100
Main St, 50: 20

Hall B
200
Main St, 50: 40
River Rd, 30: 5

Arena
500
`

func openTemp(t *testing.T) *Registry {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func parseCatalog(t *testing.T, text string, model venue.Model) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse(strings.NewReader(text), catalog.FormatText, catalog.Options{DefaultModel: model})
	require.NoError(t, err)
	return cat
}

func TestRegistry_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	r := openTemp(t)
	cat := parseCatalog(t, venuesText, venue.ModelProportional)

	summary, err := r.SaveCatalog(ctx, cat, "venues.txt")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Venues)
	assert.Equal(t, 2, summary.Corridors)
	assert.Equal(t, "venues.txt", summary.Source)

	loaded, err := r.LoadCatalog(ctx, venue.ModelFixed)
	require.NoError(t, err)
	require.Len(t, loaded.Venues, len(cat.Venues))
	for i, v := range cat.Venues {
		got := loaded.Venues[i]
		assert.Equal(t, v.Name(), got.Name())
		assert.Equal(t, v.HostingCapacity(), got.HostingCapacity())
		assert.Equal(t, venue.ModelProportional, got.Model(), "stored model wins over the default")
		assert.True(t, v.BaseTraffic().Equal(got.BaseTraffic()), "venue %s: %s vs %s", v.Name(), v.BaseTraffic(), got.BaseTraffic())
	}
}

func TestRegistry_SaveReplacesCatalog(t *testing.T) {
	ctx := context.Background()
	r := openTemp(t)

	_, err := r.SaveCatalog(ctx, parseCatalog(t, venuesText, venue.ModelFixed), "first.txt")
	require.NoError(t, err)
	_, err = r.SaveCatalog(ctx, parseCatalog(t, "Annex\n40\nSide St, 10: 2\n", venue.ModelFixed), "second.txt")
	require.NoError(t, err)

	loaded, err := r.LoadCatalog(ctx, venue.ModelFixed)
	require.NoError(t, err)
	require.Len(t, loaded.Venues, 1)
	assert.Equal(t, "Annex", loaded.Venues[0].Name())
	assert.Equal(t, "{Side St: 2}", loaded.Venues[0].BaseTraffic().String())

	summary, err := r.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second.txt", summary.Source)
	assert.Equal(t, 1, summary.Venues)
	assert.Equal(t, 1, summary.Corridors)
	assert.WithinDuration(t, time.Now(), summary.ImportedAt, time.Minute)
}

func TestRegistry_Empty(t *testing.T) {
	ctx := context.Background()
	r := openTemp(t)

	_, err := r.LoadCatalog(ctx, venue.ModelFixed)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = r.Summary(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRegistry_ReopenKeepsCatalog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	r, err := Open(path)
	require.NoError(t, err)
	_, err = r.SaveCatalog(ctx, parseCatalog(t, venuesText, venue.ModelFixed), "venues.txt")
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	loaded, err := r.LoadCatalog(ctx, venue.ModelFixed)
	require.NoError(t, err)
	assert.Len(t, loaded.Venues, 3)
}

func TestRegistry_ServesResolver(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	r, err := Open(path)
	require.NoError(t, err)
	_, err = r.SaveCatalog(ctx, parseCatalog(t, venuesText, venue.ModelFixed), "venues.txt")
	require.NoError(t, err)
	require.NoError(t, r.Close())

	resolver := &catalog.Resolver{
		OpenStore: func(p string) (catalog.Store, error) { return Open(p) },
	}
	cat, err := resolver.Resolve(ctx, catalog.RegistryPrefix+path)
	require.NoError(t, err)
	assert.Len(t, cat.Venues, 3)
}
