package geo

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance between two points.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundingBox returns the lat/lng envelope enclosing a circle of radiusKm
// around the center, used as an index-friendly SQL prefilter. The exact
// haversine check still applies to rows inside the box.
func BoundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusKm / 111.0 // ~111km per degree of latitude
	minLat, maxLat = lat-dLat, lat+dLat

	// Longitude degrees shrink with latitude; clamp near the poles where the
	// box degenerates to the full range.
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.01 {
		return minLat, maxLat, -180, 180
	}
	dLng := radiusKm / (111.0 * cos)
	return minLat, maxLat, lng - dLng, lng + dLng
}
