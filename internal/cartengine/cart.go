package cartengine

import (
	"context"
	"time"

	"kiranakart/internal/offerengine"
)

// PriceOption is one entry of an item's price list; the first entry is
// the canonical one.
type PriceOption struct {
	MRP          float64 `json:"mrp"`
	SellingPrice float64 `json:"selling_price"`
	Measurement  string  `json:"measurement"`
}

// CartLine is one line of a vendor-scoped cart. A line for a product
// variant carries the variant id; for regular items VariantID is empty.
// Quantity is never persisted at zero; decrementing to zero deletes the
// line instead.
type CartLine struct {
	ID          string        `json:"id"`
	VariantID   string        `json:"variant_id,omitempty"`
	Name        string        `json:"name"`
	Price       float64       `json:"price"`
	Prices      []PriceOption `json:"prices"`
	Measurement string        `json:"measurement"`
	Quantity    int           `json:"quantity"`
	Stock       int           `json:"stock"`
	Image       string        `json:"image"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// EffectiveCatalogID is the id the line is known by in the vendor's
// catalog and in the cart itself: the variant id when the line is a
// variant, otherwise the item id. All cart keying and catalog
// cross-checks go through this accessor.
func (l CartLine) EffectiveCatalogID() string {
	if l.VariantID != "" {
		return l.VariantID
	}
	return l.ID
}

// ItemSnapshot carries the catalog fields copied onto a new cart line.
type ItemSnapshot struct {
	ID          string
	VariantID   string
	Name        string
	Price       float64
	Prices      []PriceOption
	Measurement string
	Stock       int
	Image       string
}

// Store is the vendor-scoped line store. The authenticated implementation
// keeps lines in the cart collection; the guest implementation keeps one
// JSON document per vendor in the local key-value store.
type Store interface {
	Lines(ctx context.Context, vendor string) (map[string]CartLine, error)
	Put(ctx context.Context, vendor string, line CartLine) error
	Delete(ctx context.Context, vendor, lineID string) error
}

// Service applies the quantity semantics shared by both stores.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Increment adds one to the item's line, creating the line with a full
// catalog snapshot and quantity 1 when it does not exist yet.
func (s *Service) Increment(ctx context.Context, vendor string, item ItemSnapshot) (CartLine, error) {
	key := item.VariantID
	if key == "" {
		key = item.ID
	}

	lines, err := s.store.Lines(ctx, vendor)
	if err != nil {
		return CartLine{}, err
	}

	line, ok := lines[key]
	if !ok {
		now := s.now()
		line = CartLine{
			ID:          item.ID,
			VariantID:   item.VariantID,
			Name:        item.Name,
			Price:       item.Price,
			Prices:      item.Prices,
			Measurement: item.Measurement,
			Quantity:    1,
			Stock:       item.Stock,
			Image:       item.Image,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	} else {
		line.Quantity++
		line.UpdatedAt = s.now()
	}

	if err := s.store.Put(ctx, vendor, line); err != nil {
		return CartLine{}, err
	}
	return line, nil
}

// Decrement subtracts one from the line; at or below zero the line is
// deleted entirely. Returns true when the line was removed.
func (s *Service) Decrement(ctx context.Context, vendor, lineID string) (bool, error) {
	lines, err := s.store.Lines(ctx, vendor)
	if err != nil {
		return false, err
	}

	line, ok := lines[lineID]
	if !ok {
		return false, nil
	}

	if line.Quantity-1 <= 0 {
		return true, s.store.Delete(ctx, vendor, lineID)
	}

	line.Quantity--
	line.UpdatedAt = s.now()
	return false, s.store.Put(ctx, vendor, line)
}

// Prune drops lines whose effective id is no longer present in the
// vendor's catalog. It returns how many lines were removed so callers
// know to refresh derived totals.
func (s *Service) Prune(ctx context.Context, vendor string, catalogIDs map[string]bool) (int, error) {
	lines, err := s.store.Lines(ctx, vendor)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key, line := range lines {
		if catalogIDs[line.EffectiveCatalogID()] {
			continue
		}
		if err := s.store.Delete(ctx, vendor, key); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

// Merge folds every line of the source store's vendor cart into the
// destination: quantities add up when the same line exists on both
// sides, otherwise the line is copied as-is. Merged lines are removed
// from the source, so a guest cart is consumed by login exactly once.
func Merge(ctx context.Context, vendor string, from, to Store) (int, error) {
	source, err := from.Lines(ctx, vendor)
	if err != nil {
		return 0, err
	}
	if len(source) == 0 {
		return 0, nil
	}

	dest, err := to.Lines(ctx, vendor)
	if err != nil {
		return 0, err
	}

	merged := 0
	for key, line := range source {
		if existing, ok := dest[key]; ok {
			existing.Quantity += line.Quantity
			existing.UpdatedAt = time.Now()
			line = existing
		}
		if err := to.Put(ctx, vendor, line); err != nil {
			return merged, err
		}
		if err := from.Delete(ctx, vendor, key); err != nil {
			return merged, err
		}
		merged++
	}
	return merged, nil
}

// Lines returns the vendor's current cart lines.
func (s *Service) Lines(ctx context.Context, vendor string) (map[string]CartLine, error) {
	return s.store.Lines(ctx, vendor)
}

// Count is the derived item count: the sum of line quantities.
func Count(lines map[string]CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// Total is the derived cart total: the sum of price times quantity.
func Total(lines map[string]CartLine) float64 {
	var out []offerengine.Line
	for _, l := range lines {
		out = append(out, offerengine.Line{ID: l.EffectiveCatalogID(), Price: l.Price, Quantity: l.Quantity})
	}
	return offerengine.Subtotal(out)
}

// OfferLines converts cart lines into the offer engine's view.
func OfferLines(lines map[string]CartLine) []offerengine.Line {
	var out []offerengine.Line
	for _, l := range lines {
		out = append(out, offerengine.Line{ID: l.EffectiveCatalogID(), Price: l.Price, Quantity: l.Quantity})
	}
	return out
}
