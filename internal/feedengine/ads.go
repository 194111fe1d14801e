package feedengine

import "time"

// Ad is one promotional slot, populated from the ads media list.
type Ad struct {
	URL       string    `json:"url"`
	IsVideo   bool      `json:"is_video"`
	Timestamp time.Time `json:"timestamp"`
}

// AdCursor hands out ads round-robin. The flat feed and the grid
// grouping each run the rotation from the start over the same filtered
// feed, so slot k shows the same ad in both views. The cursor only
// advances when an ad exists.
type AdCursor struct {
	ads  []Ad
	next int
}

func NewAdCursor(ads []Ad) *AdCursor {
	return &AdCursor{ads: ads}
}

// Next returns the next ad in rotation, or nil when no ads are loaded.
func (c *AdCursor) Next() *Ad {
	if len(c.ads) == 0 {
		return nil
	}
	ad := c.ads[c.next%len(c.ads)]
	c.next++
	return &ad
}

// FeedEntry is one slot of the rendered flat feed: a product or an ad.
type FeedEntry struct {
	Product *Product `json:"product,omitempty"`
	Ad      *Ad      `json:"ad,omitempty"`
}

// adAfter reports whether an ad slot follows the n-th item (1-based):
// after the first item and after every subsequent 9th.
func adAfter(n int) bool {
	return n%9 == 1
}

// InjectAds walks the filtered feed and inserts an ad slot after the 1st
// item and after every subsequent 9th item.
func InjectAds(feed []Product, cursor *AdCursor) []FeedEntry {
	var out []FeedEntry
	for i := range feed {
		out = append(out, FeedEntry{Product: &feed[i]})
		if adAfter(i + 1) {
			if ad := cursor.Next(); ad != nil {
				out = append(out, FeedEntry{Ad: ad})
			}
		}
	}
	return out
}

// GridRow is one rendered row: up to three products, or a full-width ad.
type GridRow struct {
	Products []Product `json:"products,omitempty"`
	Ad       *Ad       `json:"ad,omitempty"`
}

// GroupForGrid groups the feed into 3-up rows with ad rows interleaved on
// the same 9-item cadence as InjectAds. Callers hand each view a fresh
// cursor over the same ads list so both rotations stay in lockstep.
func GroupForGrid(feed []Product, cursor *AdCursor) []GridRow {
	var rows []GridRow
	pendingAd := false
	var current []Product

	flush := func() {
		if len(current) > 0 {
			rows = append(rows, GridRow{Products: current})
			current = nil
		}
		if pendingAd {
			if ad := cursor.Next(); ad != nil {
				rows = append(rows, GridRow{Ad: ad})
			}
			pendingAd = false
		}
	}

	for i := range feed {
		current = append(current, feed[i])
		if adAfter(i + 1) {
			pendingAd = true
		}
		if len(current) == 3 {
			flush()
		}
	}
	flush()
	return rows
}
