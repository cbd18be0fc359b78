package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/dmashiku07/starlink-tracker/internal/analysis"
	"github.com/dmashiku07/starlink-tracker/internal/logging"
	"github.com/dmashiku07/starlink-tracker/internal/metrics"
	"github.com/dmashiku07/starlink-tracker/internal/models"
	"github.com/dmashiku07/starlink-tracker/internal/repository"
)

// ErrMalformedInput is returned when a report cannot be decoded into its minimal shape
var ErrMalformedInput = errors.New("malformed input")

// TrackStore is the persistence contract the service needs
type TrackStore interface {
	Append(ctx context.Context, sample models.LocationSample) (int64, error)
	ListOrdered(ctx context.Context) ([]models.LocationSample, error)
	ListByDevice(ctx context.Context, deviceID string) ([]models.LocationSample, error)
	Count(ctx context.Context) (int64, error)
}

var _ TrackStore = (*repository.TrackRepository)(nil)

// TrackService handles ingestion and history queries for location samples
type TrackService struct {
	store TrackStore
	now   func() time.Time
}

// NewTrackService creates a new track service
func NewTrackService(store TrackStore) *TrackService {
	return &TrackService{
		store: store,
		now:   time.Now,
	}
}

// ParseReport decodes a raw report body. Unknown keys are ignored; an empty
// body, an empty object, a non-object or a known key of the wrong JSON type
// yields ErrMalformedInput.
func ParseReport(body []byte) (models.TrackReport, error) {
	var report models.TrackReport

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return report, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(fields) == 0 {
		return report, fmt.Errorf("%w: no data received", ErrMalformedInput)
	}

	if err := json.Unmarshal(body, &report); err != nil {
		return report, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	return report, nil
}

// Ingest stamps the report with the acceptance time and appends it to the store.
// It returns the sequence id assigned to the new sample.
func (s *TrackService) Ingest(ctx context.Context, report models.TrackReport) (int64, error) {
	sample := report.Sample(s.now())

	id, err := s.store.Append(ctx, sample)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("append").Inc()
		return 0, fmt.Errorf("failed to store sample: %w", err)
	}

	metrics.SamplesAppended.Inc()
	logging.Ctx(ctx).Debug().
		Int64("id", id).
		Bool("positioned", sample.HasPosition()).
		Msg("Sample stored")

	return id, nil
}

// History returns the trajectory of the whole store in sequence order
func (s *TrackService) History(ctx context.Context) (*models.Trajectory, error) {
	samples, err := s.store.ListOrdered(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return s.aggregate(samples), nil
}

// DeviceHistory returns the trajectory of one device in sequence order
func (s *TrackService) DeviceHistory(ctx context.Context, deviceID string) (*models.Trajectory, error) {
	samples, err := s.store.ListByDevice(ctx, deviceID)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("failed to load history for device %q: %w", deviceID, err)
	}
	return s.aggregate(samples), nil
}

// SampleCount returns the number of stored samples
func (s *TrackService) SampleCount(ctx context.Context) (int64, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("count").Inc()
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return total, nil
}

func (s *TrackService) aggregate(samples []models.LocationSample) *models.Trajectory {
	traj := analysis.Aggregate(samples)
	metrics.TrajectoryDistance.Observe(traj.TotalDistanceMeters)
	return &traj
}
