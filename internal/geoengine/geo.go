package geoengine

import "math"

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Polygon is a simple polygon; the boundary follows insertion order and
// the last vertex connects back to the first.
type Polygon struct {
	Points []Point `json:"points"`
}

const earthRadiusKm = 6371.0

// PointInPolygon reports whether p lies inside poly using the even-odd
// ray casting rule, with latitude as x and longitude as y.
func PointInPolygon(p Point, poly Polygon) bool {
	pts := poly.Points
	inside := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		xi, yi := pts[i].Latitude, pts[i].Longitude
		xj, yj := pts[j].Latitude, pts[j].Longitude

		crosses := (yi > p.Longitude) != (yj > p.Longitude) &&
			p.Latitude < (xj-xi)*(p.Longitude-yi)/(yj-yi)+xi
		if crosses {
			inside = !inside
		}
	}
	return inside
}

// InServiceArea reports whether p lies inside any of the given polygons.
// A vendor's total service area is the union of its polygons. Returns
// false for a nil point or an empty polygon list; polygons with fewer
// than three vertices are not valid boundaries and are skipped.
func InServiceArea(p *Point, polys []Polygon) bool {
	if p == nil || len(polys) == 0 {
		return false
	}
	for _, poly := range polys {
		if len(poly.Points) < 3 {
			continue
		}
		if PointInPolygon(*p, poly) {
			return true
		}
	}
	return false
}

// VendorServes is the single service-area policy used by ranking, the
// product feed and the home-delivery gate: a vendor with no polygons has
// not restricted its area and serves everywhere. A customer with an
// unknown location is never considered served.
func VendorServes(p *Point, polys []Polygon) bool {
	if p == nil {
		return false
	}
	if len(polys) == 0 {
		return true
	}
	return InServiceArea(p, polys)
}

// HaversineKm returns the great-circle distance between a and b in
// kilometers.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
