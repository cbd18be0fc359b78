// Package analysis turns stored location samples into derived track views.
package analysis

import (
	"github.com/dmashiku07/starlink-tracker/internal/models"
	"github.com/dmashiku07/starlink-tracker/internal/spatial"
)

// Aggregate builds the trajectory of an ordered sample sequence.
//
// Samples are walked in the given order. A sample missing its latitude or
// longitude is skipped as a leg endpoint, and the next positioned sample is
// paired with the last positioned one seen before it. Fewer than two
// positioned samples yield a distance of zero.
//
// The input slice is not modified; Points holds a copy of it.
func Aggregate(samples []models.LocationSample) models.Trajectory {
	points := make([]models.LocationSample, len(samples))
	copy(points, samples)

	path := make([]spatial.Point, 0, len(samples))
	skipped := 0
	for _, s := range samples {
		if !s.HasPosition() {
			skipped++
			continue
		}
		path = append(path, spatial.Point{Lat: *s.Latitude, Lon: *s.Longitude})
	}

	traj := models.Trajectory{
		Points:              points,
		TotalDistanceMeters: spatial.PathLength(path),
		SkippedPoints:       skipped,
	}

	if len(path) > 0 {
		minLat, minLon, maxLat, maxLon := spatial.BoundingBox(path)
		traj.Bounds = &models.Bounds{
			MinLat: minLat,
			MinLng: minLon,
			MaxLat: maxLat,
			MaxLng: maxLon,
		}
	}

	return traj
}
