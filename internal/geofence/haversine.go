package geofence

import "math"

// earthRadiusMeters is the mean Earth radius used for great-circle distances.
const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance in meters between two
// latitude/longitude points. The asin formulation with a clamped radicand
// keeps the result stable for identical and near-antipodal points.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// Clamp to [0, 1] to handle floating point errors
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
