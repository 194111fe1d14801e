package feedengine

import (
	"sort"

	"kiranakart/internal/geoengine"
)

// Vendor is the raw vendor record as loaded from storage. The mobile
// number is the vendor's identity everywhere in the system.
type Vendor struct {
	MobileNumber      string              `json:"mobile_number"`
	BusinessName      string              `json:"business_name"`
	Category          string              `json:"category"`
	Location          *geoengine.Point    `json:"location"`
	ServiceAreas      []geoengine.Polygon `json:"service_areas"`
	Balance           float64             `json:"balance"`
	AverageRating     float64             `json:"average_rating"`
	RatingCount       int                 `json:"rating_count"`
	IsDisabled        bool                `json:"is_disabled"`
	ProductCount      int                 `json:"product_count"`
	DeliveryCharge    float64             `json:"delivery_charge"`
	FreeDeliveryAbove float64             `json:"free_delivery_above"`
}

// RankedVendor is a Vendor annotated against a customer location. It is
// derived per request and never persisted.
type RankedVendor struct {
	Vendor
	Active     bool     `json:"active"`
	Available  bool     `json:"available"`
	DistanceKm *float64 `json:"distance_km"`
}

// AnnotateVendor derives activity, availability and distance for one
// vendor. An unknown customer or vendor location leaves the distance nil.
func AnnotateVendor(v Vendor, customer *geoengine.Point, minBalance float64) RankedVendor {
	rv := RankedVendor{
		Vendor: v,
		Active: v.Balance >= minBalance && v.ProductCount > 0,
	}

	rv.Available = geoengine.VendorServes(customer, v.ServiceAreas)

	if customer != nil && v.Location != nil {
		d := geoengine.HaversineKm(*customer, *v.Location)
		rv.DistanceKm = &d
	}
	return rv
}

// SortVendors orders vendors for the vendor list and fixes the interleave
// order for product meshing: active before inactive, then known distance
// ascending (known always before unknown), then rating count descending.
// The sort is stable so equal vendors keep their input order.
func SortVendors(vendors []RankedVendor) {
	sort.SliceStable(vendors, func(i, j int) bool {
		a, b := vendors[i], vendors[j]

		if a.Active != b.Active {
			return a.Active
		}

		switch {
		case a.DistanceKm != nil && b.DistanceKm != nil:
			if *a.DistanceKm != *b.DistanceKm {
				return *a.DistanceKm < *b.DistanceKm
			}
		case a.DistanceKm != nil:
			return true
		case b.DistanceKm != nil:
			return false
		}

		return a.RatingCount > b.RatingCount
	})
}
