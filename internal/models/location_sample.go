package models

import "time"

// LocationSample is one reported device position as persisted in gps_history.
// Optional fields are pointers so that an absent value stays NULL instead of
// turning into a point at the origin.
type LocationSample struct {
	ID         int64     `json:"id"` // store-assigned sequence id
	DeviceID   *string   `json:"device_id"`
	Latitude   *float64  `json:"lat"`
	Longitude  *float64  `json:"lng"`
	Altitude   *float64  `json:"altitude"`
	RecordedAt time.Time `json:"timestamp"` // acceptance time, UTC
}

// HasPosition reports whether both coordinates are present
func (s LocationSample) HasPosition() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// TrackReport is the payload pushed by a tracker to POST /tracker.
// Key names follow the flat telemetry format the devices emit.
type TrackReport struct {
	Ident     *string  `json:"ident"`
	Latitude  *float64 `json:"position.latitude"`
	Longitude *float64 `json:"position.longitude"`
	Altitude  *float64 `json:"position.altitude"`
}

// Sample converts the report into a sample accepted at the given time
func (r TrackReport) Sample(acceptedAt time.Time) LocationSample {
	return LocationSample{
		DeviceID:   r.Ident,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		Altitude:   r.Altitude,
		RecordedAt: acceptedAt.UTC(),
	}
}
