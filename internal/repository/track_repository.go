package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmashiku07/starlink-tracker/internal/models"
)

// ErrStoreUnavailable is returned when the track store cannot complete a read or write
var ErrStoreUnavailable = errors.New("track store unavailable")

const sampleColumns = `id, device_id, lat, lng, altitude, timestamp`

// TrackRepository is the append-only log of location samples in gps_history.
// Appends are serialized by the repository so that sequence ids are handed
// out in a single total order; reads run concurrently.
type TrackRepository struct {
	db *sql.DB
	mu sync.Mutex // single writer
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Append persists one sample and returns its sequence id.
// The sample's ID field is ignored. Nil fields are stored as NULL.
func (r *TrackRepository) Append(ctx context.Context, sample models.LocationSample) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO gps_history (device_id, lat, lng, altitude, timestamp) VALUES (?, ?, ?, ?, ?)`,
		nullString(sample.DeviceID),
		nullFloat(sample.Latitude),
		nullFloat(sample.Longitude),
		nullFloat(sample.Altitude),
		sample.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, unavailable("failed to insert sample", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, unavailable("failed to read sequence id", err)
	}

	return id, nil
}

// ListOrdered returns every stored sample in ascending sequence id order
func (r *TrackRepository) ListOrdered(ctx context.Context) ([]models.LocationSample, error) {
	return r.query(ctx, `SELECT `+sampleColumns+` FROM gps_history ORDER BY id ASC`)
}

// ListByDevice returns the samples of one device in ascending sequence id order
func (r *TrackRepository) ListByDevice(ctx context.Context, deviceID string) ([]models.LocationSample, error) {
	return r.query(ctx, `SELECT `+sampleColumns+` FROM gps_history WHERE device_id = ? ORDER BY id ASC`, deviceID)
}

// Count returns the number of stored samples
func (r *TrackRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gps_history`).Scan(&total); err != nil {
		return 0, unavailable("failed to count samples", err)
	}
	return total, nil
}

func (r *TrackRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.LocationSample, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("failed to query samples", err)
	}
	defer rows.Close()

	samples := []models.LocationSample{}
	for rows.Next() {
		var (
			s         models.LocationSample
			deviceID  sql.NullString
			lat, lng  sql.NullFloat64
			altitude  sql.NullFloat64
			timestamp string
		)
		if err := rows.Scan(&s.ID, &deviceID, &lat, &lng, &altitude, &timestamp); err != nil {
			return nil, unavailable("failed to scan sample", err)
		}

		s.DeviceID = stringPtr(deviceID)
		s.Latitude = floatPtr(lat)
		s.Longitude = floatPtr(lng)
		s.Altitude = floatPtr(altitude)
		s.RecordedAt = parseTimestamp(timestamp)
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("failed to read samples", err)
	}

	return samples, nil
}

func unavailable(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, msg, err)
}

// parseTimestamp accepts RFC 3339 and the naive ISO form written by older ingesters
func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}
