package feedengine

import (
	"strings"
	"sync"
)

// Product is one catalog entry flattened for the feed. Price and MRP come
// from the first entry of the owning item's price list.
type Product struct {
	ID           string  `json:"id"`
	VendorMobile string  `json:"vendor_mobile"`
	VendorName   string  `json:"vendor_name"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	MRP          float64 `json:"mrp"`
	Measurement  string  `json:"measurement"`
	Image        string  `json:"image"`
	Stock        int     `json:"stock"`
	Hidden       bool    `json:"hidden"`
}

// Mesher interleaves multiple vendors' product lists round-robin, one
// round at a time: round r takes the product at index r from each
// vendor's list, in vendor order, skipping exhausted lists. No vendor can
// monopolize the top of the feed.
type Mesher struct {
	mu     sync.Mutex
	lists  [][]Product
	rounds int
	next   int
	feed   []Product
}

// NewMesher fixes the interleave order from an already-sorted vendor
// list, keeping only active, non-disabled vendors and dropping hidden
// products.
func NewMesher(vendors []RankedVendor, products map[string][]Product) *Mesher {
	m := &Mesher{}
	for _, v := range vendors {
		if !v.Active || v.IsDisabled {
			continue
		}
		list := visibleProducts(products[v.MobileNumber])
		if len(list) == 0 {
			continue
		}
		m.lists = append(m.lists, list)
		if len(list) > m.rounds {
			m.rounds = len(list)
		}
	}
	return m
}

// LoadRound appends round r to the accumulated feed and returns the
// products it added. A stale or repeated round index is a no-op: the
// "load more" trigger can fire twice without duplicating items.
func (m *Mesher) LoadRound(r int) ([]Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r != m.next || r >= m.rounds {
		return nil, false
	}

	var round []Product
	for _, list := range m.lists {
		if r < len(list) {
			round = append(round, list[r])
		}
	}
	m.feed = append(m.feed, round...)
	m.next++
	return round, true
}

// HasMore reports whether unserved rounds remain.
func (m *Mesher) HasMore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next < m.rounds
}

// Rounds returns the total round count (the longest per-vendor list).
func (m *Mesher) Rounds() int {
	return m.rounds
}

// Feed returns the feed accumulated so far, in round order.
func (m *Mesher) Feed() []Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Product, len(m.feed))
	copy(out, m.feed)
	return out
}

// MeshAll runs the round-robin interleave eagerly in full, restricted to
// vendors that have at least one product in the given category. The
// category feed is intentionally not paginated, unlike the main feed.
func MeshAll(vendors []RankedVendor, products map[string][]Product, category string) []Product {
	var lists [][]Product
	rounds := 0
	for _, v := range vendors {
		if !v.Active || v.IsDisabled {
			continue
		}
		var list []Product
		for _, p := range visibleProducts(products[v.MobileNumber]) {
			if p.Category == category {
				list = append(list, p)
			}
		}
		if len(list) == 0 {
			continue
		}
		lists = append(lists, list)
		if len(list) > rounds {
			rounds = len(list)
		}
	}

	var feed []Product
	for r := 0; r < rounds; r++ {
		for _, list := range lists {
			if r < len(list) {
				feed = append(feed, list[r])
			}
		}
	}
	return feed
}

// FilterFeed applies the search filter: a case-insensitive substring
// match against product name or seller business name. It runs after
// meshing and before ad injection.
func FilterFeed(feed []Product, query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return feed
	}
	var out []Product
	for _, p := range feed {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.VendorName), q) {
			out = append(out, p)
		}
	}
	return out
}

func visibleProducts(list []Product) []Product {
	var out []Product
	for _, p := range list {
		if !p.Hidden {
			out = append(out, p)
		}
	}
	return out
}
