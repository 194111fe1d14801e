package feedengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kiranakart/internal/feedengine"
	"kiranakart/internal/geoengine"
)

func ranked(mobile string, active bool, dist *float64, ratingCount int) feedengine.RankedVendor {
	return feedengine.RankedVendor{
		Vendor:     feedengine.Vendor{MobileNumber: mobile, RatingCount: ratingCount},
		Active:     active,
		DistanceKm: dist,
	}
}

func km(v float64) *float64 { return &v }

func mobiles(vendors []feedengine.RankedVendor) []string {
	var out []string
	for _, v := range vendors {
		out = append(out, v.MobileNumber)
	}
	return out
}

func TestSortVendors(t *testing.T) {
	testCases := []struct {
		name     string
		input    []feedengine.RankedVendor
		expected []string
	}{
		{
			name: "active first then distance ascending",
			input: []feedengine.RankedVendor{
				ranked("A", false, km(1), 0),
				ranked("B", true, km(5), 0),
				ranked("C", true, km(2), 0),
			},
			expected: []string{"C", "B", "A"},
		},
		{
			name: "known distance before unknown",
			input: []feedengine.RankedVendor{
				ranked("A", true, nil, 50),
				ranked("B", true, km(9), 0),
			},
			expected: []string{"B", "A"},
		},
		{
			name: "rating count breaks distance ties",
			input: []feedengine.RankedVendor{
				ranked("A", true, nil, 3),
				ranked("B", true, nil, 12),
				ranked("C", true, nil, 0),
			},
			expected: []string{"B", "A", "C"},
		},
		{
			name: "stable for fully equal vendors",
			input: []feedengine.RankedVendor{
				ranked("A", true, km(2), 7),
				ranked("B", true, km(2), 7),
			},
			expected: []string{"A", "B"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			feedengine.SortVendors(tc.input)
			assert.Equal(t, tc.expected, mobiles(tc.input))
		})
	}
}

func TestAnnotateVendor(t *testing.T) {
	customer := &geoengine.Point{Latitude: 28.6139, Longitude: 77.2090}

	vendor := feedengine.Vendor{
		MobileNumber: "9876543210",
		Location:     &geoengine.Point{Latitude: 28.7041, Longitude: 77.1025},
		Balance:      100,
		ProductCount: 4,
	}

	t.Run("active with distance", func(t *testing.T) {
		rv := feedengine.AnnotateVendor(vendor, customer, 50)
		assert.True(t, rv.Active)
		if assert.NotNil(t, rv.DistanceKm) {
			assert.Greater(t, *rv.DistanceKm, 0.0)
			assert.Less(t, *rv.DistanceKm, 30.0)
		}
		// no service areas defined: serves everywhere
		assert.True(t, rv.Available)
	})

	t.Run("low balance is inactive", func(t *testing.T) {
		v := vendor
		v.Balance = 10
		assert.False(t, feedengine.AnnotateVendor(v, customer, 50).Active)
	})

	t.Run("empty catalog is inactive", func(t *testing.T) {
		v := vendor
		v.ProductCount = 0
		assert.False(t, feedengine.AnnotateVendor(v, customer, 50).Active)
	})

	t.Run("unknown customer location", func(t *testing.T) {
		rv := feedengine.AnnotateVendor(vendor, nil, 50)
		assert.Nil(t, rv.DistanceKm)
		assert.False(t, rv.Available)
	})

	t.Run("unknown vendor location", func(t *testing.T) {
		v := vendor
		v.Location = nil
		assert.Nil(t, feedengine.AnnotateVendor(v, customer, 50).DistanceKm)
	})
}
