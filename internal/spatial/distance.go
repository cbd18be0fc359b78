package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// HaversineDistance calculates the great-circle distance between two points in meters
// using the haversine formula on a sphere of radius EarthRadiusMeters.
//
// Inputs are not range checked. Coordinates outside [-90,90]/[-180,180] still
// produce a finite, mathematically defined result.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)

	phi1 := p1.Lat.Radians()
	phi2 := p2.Lat.Radians()
	dPhi := phi2 - phi1
	dLambda := p2.Lng.Radians() - p1.Lng.Radians()

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// a can drift just past 1 for antipodal inputs
	a = math.Min(a, 1)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(math.Max(0, 1-a)))

	return EarthRadiusMeters * c
}

// Distance calculates the haversine distance between two points in meters
func Distance(p1, p2 Point) float64 {
	return HaversineDistance(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
}

// EarthRadiusMeters is the mean Earth radius used by every distance in this package
const EarthRadiusMeters = 6371000.0
