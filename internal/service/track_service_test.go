package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmashiku07/starlink-tracker/internal/database"
	"github.com/dmashiku07/starlink-tracker/internal/models"
	"github.com/dmashiku07/starlink-tracker/internal/repository"
	"github.com/dmashiku07/starlink-tracker/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore simulates a persistence layer that is down
type failingStore struct{}

func (failingStore) Append(context.Context, models.LocationSample) (int64, error) {
	return 0, fmt.Errorf("%w: disk gone", repository.ErrStoreUnavailable)
}

func (failingStore) ListOrdered(context.Context) ([]models.LocationSample, error) {
	return nil, fmt.Errorf("%w: disk gone", repository.ErrStoreUnavailable)
}

func (failingStore) ListByDevice(context.Context, string) ([]models.LocationSample, error) {
	return nil, fmt.Errorf("%w: disk gone", repository.ErrStoreUnavailable)
}

func (failingStore) Count(context.Context) (int64, error) {
	return 0, fmt.Errorf("%w: disk gone", repository.ErrStoreUnavailable)
}

func newService(t *testing.T) *TrackService {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "gps_data.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = database.Migrate(db)
	require.NoError(t, err)
	return NewTrackService(repository.NewTrackRepository(db))
}

func TestParseReport(t *testing.T) {
	report, err := ParseReport([]byte(`{
		"ident": "starlink-7",
		"position.latitude": 47.3769,
		"position.longitude": 8.5417,
		"position.altitude": 408.5,
		"battery.level": 88
	}`))
	require.NoError(t, err)
	assert.Equal(t, "starlink-7", *report.Ident)
	assert.Equal(t, 47.3769, *report.Latitude)
	assert.Equal(t, 8.5417, *report.Longitude)
	assert.Equal(t, 408.5, *report.Altitude)
}

func TestParseReportPermissive(t *testing.T) {
	report, err := ParseReport([]byte(`{"position.latitude": 95.5, "position.longitude": null}`))
	require.NoError(t, err)
	assert.Nil(t, report.Ident)
	assert.Nil(t, report.Longitude)
	assert.Nil(t, report.Altitude)
	assert.Equal(t, 95.5, *report.Latitude)
}

func TestParseReportMalformed(t *testing.T) {
	bodies := map[string]string{
		"empty body":      ``,
		"empty object":    `{}`,
		"null":            `null`,
		"array":           `[1, 2]`,
		"not json":        `lat=1&lng=2`,
		"string latitude": `{"ident": "a", "position.latitude": "47.1", "position.longitude": 8}`,
		"numeric ident":   `{"ident": 42, "position.latitude": 47.1}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := ParseReport([]byte(body))
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestIngestAndHistory(t *testing.T) {
	svc := newService(t)
	accepted := time.Date(2025, 6, 1, 8, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	svc.now = func() time.Time { return accepted }
	ctx := context.Background()

	device := "starlink-1"
	for _, lng := range []float64{0, 1, 2} {
		lat, lng := 0.0, lng
		_, err := svc.Ingest(ctx, models.TrackReport{Ident: &device, Latitude: &lat, Longitude: &lng})
		require.NoError(t, err)
	}

	traj, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, traj.Points, 3)
	assert.InDelta(t, 2*111320.0, traj.TotalDistanceMeters, 2*111320.0*0.01)
	for i, p := range traj.Points {
		assert.Equal(t, float64(i), *p.Longitude)
		assert.Equal(t, time.UTC, p.RecordedAt.Location())
		assert.True(t, accepted.Equal(p.RecordedAt))
	}

	total, err := svc.SampleCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestHistorySkipsSampleWithoutLongitude(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	reports := []string{
		`{"ident": "a", "position.latitude": 40.7128, "position.longitude": -74.0060}`,
		`{"ident": "a", "position.latitude": 41.0}`,
		`{"ident": "a", "position.latitude": 42.3601, "position.longitude": -71.0589}`,
	}
	for _, body := range reports {
		report, err := ParseReport([]byte(body))
		require.NoError(t, err)
		_, err = svc.Ingest(ctx, report)
		require.NoError(t, err)
	}

	traj, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, spatial.HaversineDistance(40.7128, -74.0060, 42.3601, -71.0589), traj.TotalDistanceMeters)
	assert.Equal(t, 1, traj.SkippedPoints)
}

func TestDeviceHistory(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, b := "a", "b"
	points := []struct {
		device *string
		lat    float64
	}{{&a, 0}, {&b, 50}, {&a, 1}, {&b, -50}, {&a, 2}}

	for _, p := range points {
		lat, lng := p.lat, 0.0
		_, err := svc.Ingest(ctx, models.TrackReport{Ident: p.device, Latitude: &lat, Longitude: &lng})
		require.NoError(t, err)
	}

	global, err := svc.History(ctx)
	require.NoError(t, err)
	scoped, err := svc.DeviceHistory(ctx, "a")
	require.NoError(t, err)

	assert.Len(t, global.Points, 5)
	assert.Len(t, scoped.Points, 3)
	assert.InDelta(t, spatial.HaversineDistance(0, 0, 2, 0), scoped.TotalDistanceMeters, 1e-6)
	assert.Greater(t, global.TotalDistanceMeters, scoped.TotalDistanceMeters)
}

func TestConcurrentIngest(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lat, lng := float64(i)/10, float64(i)/10
			_, err := svc.Ingest(ctx, models.TrackReport{Latitude: &lat, Longitude: &lng})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	traj, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Len(t, traj.Points, 50)
}

func TestStoreUnavailablePropagates(t *testing.T) {
	svc := NewTrackService(failingStore{})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, models.TrackReport{})
	assert.True(t, errors.Is(err, repository.ErrStoreUnavailable))

	traj, err := svc.History(ctx)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.Nil(t, traj)

	_, err = svc.DeviceHistory(ctx, "a")
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)

	_, err = svc.SampleCount(ctx)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
}
