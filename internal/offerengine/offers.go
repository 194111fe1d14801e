package offerengine

import "github.com/shopspring/decimal"

// Value types a vendor can attach to an offer.
const (
	ValueTypeFlat    = "₹"
	ValueTypePercent = "%"
)

// ApplicableOnAll marks an offer that discounts the whole cart instead of
// an explicit item subset.
const ApplicableOnAll = "All Items"

// OfferItem is one entry of an item-scoped offer's applicable set.
type OfferItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SellingPrice float64 `json:"selling_price"`
	Image        string  `json:"image"`
}

// Offer is a vendor-defined discount. It is immutable from the engine's
// point of view.
type Offer struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	ValueType          string      `json:"value_type"`
	Value              float64     `json:"value"`
	ApplicableOn       string      `json:"applicable_on"`
	ApplicableItems    []OfferItem `json:"applicable_items"`
	MinimumOrderAmount *float64    `json:"minimum_order_amount"`
	Active             bool        `json:"active"`
}

// Line is the slice of a cart line the engine needs.
type Line struct {
	ID       string
	Price    float64
	Quantity int
}

// Subtotal is the pre-discount cart total.
func Subtotal(lines []Line) float64 {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// Applicable reports whether the offer may be applied to a cart with the
// given pre-discount subtotal. The minimum-order check always runs
// against the raw subtotal, never a discounted remainder.
func Applicable(offer Offer, subtotal float64) bool {
	if !offer.Active {
		return false
	}
	if offer.MinimumOrderAmount == nil {
		return true
	}
	return subtotal >= *offer.MinimumOrderAmount
}

// ApplicableOffers filters a vendor's offers down to the ones the cart
// qualifies for.
func ApplicableOffers(offers []Offer, subtotal float64) []Offer {
	var out []Offer
	for _, o := range offers {
		if Applicable(o, subtotal) {
			out = append(out, o)
		}
	}
	return out
}

// ComputeDiscount returns the discount amount for a single offer. For an
// item-scoped offer the flat/percent rule applies against the sum of the
// applicable lines only; a flat value never discounts more than the
// amount it applies to.
func ComputeDiscount(offer Offer, subtotal float64, lines []Line) float64 {
	base := decimal.NewFromFloat(subtotal)

	if offer.ApplicableOn != ApplicableOnAll {
		scoped := map[string]bool{}
		for _, it := range offer.ApplicableItems {
			scoped[it.ID] = true
		}
		sum := decimal.Zero
		for _, l := range lines {
			if scoped[l.ID] {
				sum = sum.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
			}
		}
		if sum.IsZero() {
			return 0
		}
		base = sum
	}

	value := decimal.NewFromFloat(offer.Value)
	var discount decimal.Decimal
	switch offer.ValueType {
	case ValueTypePercent:
		discount = base.Mul(value).Div(decimal.NewFromInt(100))
	default:
		discount = decimal.Min(value, base)
	}

	f, _ := discount.Round(2).Float64()
	return f
}

// FinalAmount composes the payable total: the discounted subtotal,
// clamped at zero, plus the delivery charge for home delivery. Delivery
// is free when a non-zero threshold is set and the post-discount amount
// already meets it. The comparison is deliberately against the
// discounted amount, not the raw subtotal.
func FinalAmount(subtotal, discount float64, homeDelivery bool, deliveryCharge, freeDeliveryAbove float64) (float64, float64) {
	final := decimal.NewFromFloat(subtotal).Sub(decimal.NewFromFloat(discount))
	if final.IsNegative() {
		final = decimal.Zero
	}

	charge := 0.0
	if homeDelivery {
		charge = deliveryCharge
		if freeDeliveryAbove > 0 && final.GreaterThanOrEqual(decimal.NewFromFloat(freeDeliveryAbove)) {
			charge = 0
		}
	}

	f, _ := final.Add(decimal.NewFromFloat(charge)).Round(2).Float64()
	return f, charge
}

// Selection tracks the at-most-one selected offer.
type Selection struct {
	selectedID string
}

// SelectedID returns the selected offer id, empty when none is selected.
func (s *Selection) SelectedID() string {
	return s.selectedID
}

// Toggle selects the offer, or clears the selection when the offer is
// already selected. Selecting an offer the cart does not qualify for is
// rejected with no state change, independent of any UI-side disabling.
func (s *Selection) Toggle(offer Offer, subtotal float64) bool {
	if s.selectedID == offer.ID {
		s.selectedID = ""
		return true
	}
	if !Applicable(offer, subtotal) {
		return false
	}
	s.selectedID = offer.ID
	return true
}
