package cartengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiranakart/internal/cartengine"
)

// memStore satisfies cartengine.Store for tests.
type memStore struct {
	carts map[string]map[string]cartengine.CartLine
}

func newMemStore() *memStore {
	return &memStore{carts: map[string]map[string]cartengine.CartLine{}}
}

func (m *memStore) Lines(_ context.Context, vendor string) (map[string]cartengine.CartLine, error) {
	out := map[string]cartengine.CartLine{}
	for k, v := range m.carts[vendor] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) Put(_ context.Context, vendor string, line cartengine.CartLine) error {
	if m.carts[vendor] == nil {
		m.carts[vendor] = map[string]cartengine.CartLine{}
	}
	m.carts[vendor][line.EffectiveCatalogID()] = line
	return nil
}

func (m *memStore) Delete(_ context.Context, vendor, lineID string) error {
	delete(m.carts[vendor], lineID)
	return nil
}

const vendor = "9876543210"

func snapshot(id string, price float64) cartengine.ItemSnapshot {
	return cartengine.ItemSnapshot{
		ID:    id,
		Name:  "item " + id,
		Price: price,
		Prices: []cartengine.PriceOption{
			{MRP: price + 10, SellingPrice: price, Measurement: "500g"},
		},
		Measurement: "500g",
		Stock:       20,
	}
}

func TestIncrementCreatesThenAdds(t *testing.T) {
	svc := cartengine.NewService(newMemStore())
	ctx := context.Background()

	line, err := svc.Increment(ctx, vendor, snapshot("p1", 40))
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, "item p1", line.Name)
	assert.Len(t, line.Prices, 1)
	assert.False(t, line.CreatedAt.IsZero())

	line, err = svc.Increment(ctx, vendor, snapshot("p1", 40))
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.UpdatedAt.After(line.CreatedAt) || line.UpdatedAt.Equal(line.CreatedAt))

	lines, err := svc.Lines(ctx, vendor)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestDecrementDeletesAtZero(t *testing.T) {
	svc := cartengine.NewService(newMemStore())
	ctx := context.Background()

	_, err := svc.Increment(ctx, vendor, snapshot("p1", 40))
	require.NoError(t, err)

	removed, err := svc.Decrement(ctx, vendor, "p1")
	require.NoError(t, err)
	assert.True(t, removed)

	lines, err := svc.Lines(ctx, vendor)
	require.NoError(t, err)
	// the line is gone, not stored with quantity zero
	assert.Empty(t, lines)
}

func TestDecrementAboveZero(t *testing.T) {
	svc := cartengine.NewService(newMemStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Increment(ctx, vendor, snapshot("p1", 40))
		require.NoError(t, err)
	}

	removed, err := svc.Decrement(ctx, vendor, "p1")
	require.NoError(t, err)
	assert.False(t, removed)

	lines, err := svc.Lines(ctx, vendor)
	require.NoError(t, err)
	assert.Equal(t, 2, lines["p1"].Quantity)
}

func TestDecrementMissingLineIsNoOp(t *testing.T) {
	svc := cartengine.NewService(newMemStore())

	removed, err := svc.Decrement(context.Background(), vendor, "ghost")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestVariantLinesKeyByVariantID(t *testing.T) {
	svc := cartengine.NewService(newMemStore())
	ctx := context.Background()

	item := snapshot("p1", 40)
	variant := snapshot("p1", 60)
	variant.VariantID = "p1-large"

	_, err := svc.Increment(ctx, vendor, item)
	require.NoError(t, err)
	_, err = svc.Increment(ctx, vendor, variant)
	require.NoError(t, err)

	lines, err := svc.Lines(ctx, vendor)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "p1", lines["p1"].EffectiveCatalogID())
	assert.Equal(t, "p1-large", lines["p1-large"].EffectiveCatalogID())
	assert.Equal(t, "p1", lines["p1-large"].ID)
}

func TestPruneDropsStaleLines(t *testing.T) {
	svc := cartengine.NewService(newMemStore())
	ctx := context.Background()

	_, err := svc.Increment(ctx, vendor, snapshot("p1", 40))
	require.NoError(t, err)
	_, err = svc.Increment(ctx, vendor, snapshot("p2", 25))
	require.NoError(t, err)

	// p2 disappeared from the vendor's catalog
	pruned, err := svc.Prune(ctx, vendor, map[string]bool{"p1": true})
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	lines, err := svc.Lines(ctx, vendor)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Contains(t, lines, "p1")
}

func TestDerivedTotals(t *testing.T) {
	svc := cartengine.NewService(newMemStore())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Increment(ctx, vendor, snapshot("p1", 200))
		require.NoError(t, err)
	}
	_, err := svc.Increment(ctx, vendor, snapshot("p2", 50))
	require.NoError(t, err)

	lines, err := svc.Lines(ctx, vendor)
	require.NoError(t, err)

	assert.Equal(t, 3, cartengine.Count(lines))
	assert.Equal(t, 450.0, cartengine.Total(lines))
}

func TestMergeGuestIntoRemote(t *testing.T) {
	guest := newMemStore()
	remote := newMemStore()
	ctx := context.Background()

	guestSvc := cartengine.NewService(guest)
	remoteSvc := cartengine.NewService(remote)

	for i := 0; i < 2; i++ {
		_, err := guestSvc.Increment(ctx, vendor, snapshot("p1", 40))
		require.NoError(t, err)
	}
	_, err := guestSvc.Increment(ctx, vendor, snapshot("p2", 25))
	require.NoError(t, err)

	_, err = remoteSvc.Increment(ctx, vendor, snapshot("p1", 40))
	require.NoError(t, err)

	merged, err := cartengine.Merge(ctx, vendor, guest, remote)
	require.NoError(t, err)
	assert.Equal(t, 2, merged)

	remoteLines, err := remoteSvc.Lines(ctx, vendor)
	require.NoError(t, err)
	assert.Equal(t, 3, remoteLines["p1"].Quantity)
	assert.Equal(t, 1, remoteLines["p2"].Quantity)

	// the guest cart is consumed
	guestLines, err := guestSvc.Lines(ctx, vendor)
	require.NoError(t, err)
	assert.Empty(t, guestLines)

	// merging again is a no-op
	merged, err = cartengine.Merge(ctx, vendor, guest, remote)
	require.NoError(t, err)
	assert.Equal(t, 0, merged)
}

func TestLastWriteWinsOnSharedStore(t *testing.T) {
	// two services over the same store, as two operations from a single
	// active client interleaving reads before writes
	store := newMemStore()
	a := cartengine.NewService(store)
	b := cartengine.NewService(store)
	ctx := context.Background()

	_, err := a.Increment(ctx, vendor, snapshot("p1", 40))
	require.NoError(t, err)
	_, err = b.Increment(ctx, vendor, snapshot("p1", 40))
	require.NoError(t, err)

	lines, err := a.Lines(ctx, vendor)
	require.NoError(t, err)
	assert.Equal(t, 2, lines["p1"].Quantity)
}
