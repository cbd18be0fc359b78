package models

// Trajectory is an ordered sample sequence with its cumulative distance.
// It is built per query and never stored.
type Trajectory struct {
	Points              []LocationSample `json:"points"`
	TotalDistanceMeters float64          `json:"distance_meters"`
	SkippedPoints       int              `json:"skipped_points"` // samples without a full coordinate pair
	Bounds              *Bounds          `json:"bounds,omitempty"`
}

// Bounds is the lat/lng rectangle covering the positioned samples of a trajectory
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}
