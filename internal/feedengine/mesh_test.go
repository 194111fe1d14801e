package feedengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kiranakart/internal/feedengine"
)

func product(id, vendor string) feedengine.Product {
	return feedengine.Product{ID: id, VendorMobile: vendor, Name: id}
}

func ids(feed []feedengine.Product) []string {
	var out []string
	for _, p := range feed {
		out = append(out, p.ID)
	}
	return out
}

func activeVendor(mobile string) feedengine.RankedVendor {
	return feedengine.RankedVendor{
		Vendor: feedengine.Vendor{MobileNumber: mobile},
		Active: true,
	}
}

func TestMesherInterleavesRoundRobin(t *testing.T) {
	vendors := []feedengine.RankedVendor{activeVendor("V1"), activeVendor("V2")}
	products := map[string][]feedengine.Product{
		"V1": {product("p1", "V1"), product("p2", "V1")},
		"V2": {product("q1", "V2")},
	}

	m := feedengine.NewMesher(vendors, products)
	assert.Equal(t, 2, m.Rounds())

	round, ok := m.LoadRound(0)
	assert.True(t, ok)
	assert.Equal(t, []string{"p1", "q1"}, ids(round))
	assert.True(t, m.HasMore())

	round, ok = m.LoadRound(1)
	assert.True(t, ok)
	assert.Equal(t, []string{"p2"}, ids(round))
	assert.False(t, m.HasMore())

	assert.Equal(t, []string{"p1", "q1", "p2"}, ids(m.Feed()))
}

func TestMesherStaleRoundIsNoOp(t *testing.T) {
	vendors := []feedengine.RankedVendor{activeVendor("V1")}
	products := map[string][]feedengine.Product{
		"V1": {product("p1", "V1"), product("p2", "V1")},
	}

	m := feedengine.NewMesher(vendors, products)

	_, ok := m.LoadRound(0)
	assert.True(t, ok)

	// a repeated "load more" must not duplicate round 0
	_, ok = m.LoadRound(0)
	assert.False(t, ok)
	assert.Equal(t, []string{"p1"}, ids(m.Feed()))

	// nor may rounds be requested out of order
	_, ok = m.LoadRound(5)
	assert.False(t, ok)
	assert.Equal(t, []string{"p1"}, ids(m.Feed()))
}

func TestMesherSkipsInactiveDisabledAndHidden(t *testing.T) {
	disabled := activeVendor("V2")
	disabled.IsDisabled = true

	vendors := []feedengine.RankedVendor{
		activeVendor("V1"),
		disabled,
		{Vendor: feedengine.Vendor{MobileNumber: "V3"}, Active: false},
	}

	hidden := product("h1", "V1")
	hidden.Hidden = true
	products := map[string][]feedengine.Product{
		"V1": {product("p1", "V1"), hidden, product("p2", "V1")},
		"V2": {product("x1", "V2")},
		"V3": {product("y1", "V3")},
	}

	m := feedengine.NewMesher(vendors, products)
	for r := 0; m.HasMore(); r++ {
		m.LoadRound(r)
	}
	assert.Equal(t, []string{"p1", "p2"}, ids(m.Feed()))
}

func TestMeshAllCategoryFiltered(t *testing.T) {
	vendors := []feedengine.RankedVendor{activeVendor("V1"), activeVendor("V2"), activeVendor("V3")}

	withCategory := func(id, vendor, category string) feedengine.Product {
		p := product(id, vendor)
		p.Category = category
		return p
	}

	products := map[string][]feedengine.Product{
		"V1": {withCategory("p1", "V1", "dairy"), withCategory("p2", "V1", "dairy")},
		"V2": {withCategory("q1", "V2", "bakery")},
		"V3": {withCategory("r1", "V3", "dairy")},
	}

	// eager, full result in one call; vendors without the category drop out
	feed := feedengine.MeshAll(vendors, products, "dairy")
	assert.Equal(t, []string{"p1", "r1", "p2"}, ids(feed))

	assert.Empty(t, feedengine.MeshAll(vendors, products, "produce"))
}

func TestFilterFeed(t *testing.T) {
	feed := []feedengine.Product{
		{ID: "1", Name: "Amul Butter", VendorName: "Sharma Stores"},
		{ID: "2", Name: "Brown Bread", VendorName: "City Bakery"},
		{ID: "3", Name: "Butter Cookies", VendorName: "City Bakery"},
	}

	assert.Equal(t, []string{"1", "3"}, ids(feedengine.FilterFeed(feed, "BUTTER")))
	assert.Equal(t, []string{"2", "3"}, ids(feedengine.FilterFeed(feed, "bakery")))
	assert.Equal(t, []string{"1", "2", "3"}, ids(feedengine.FilterFeed(feed, "  ")))
	assert.Empty(t, feedengine.FilterFeed(feed, "paneer"))
}
