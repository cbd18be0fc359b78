package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dmashiku07/starlink-tracker/internal/logging"
	"github.com/dmashiku07/starlink-tracker/internal/models"
	"github.com/dmashiku07/starlink-tracker/internal/repository"
	"github.com/dmashiku07/starlink-tracker/internal/service"
	"github.com/dmashiku07/starlink-tracker/pkg/response"
)

// TrackService is the part of service.TrackService the handlers use
type TrackService interface {
	Ingest(ctx context.Context, report models.TrackReport) (int64, error)
	History(ctx context.Context) (*models.Trajectory, error)
	DeviceHistory(ctx context.Context, deviceID string) (*models.Trajectory, error)
	SampleCount(ctx context.Context) (int64, error)
}

// TrackHandler handles HTTP requests for location reports and history
type TrackHandler struct {
	trackService TrackService
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(trackService TrackService) *TrackHandler {
	return &TrackHandler{
		trackService: trackService,
	}
}

// Ingest handles POST /tracker
func (h *TrackHandler) Ingest(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "Failed to read request body")
		return
	}

	report, err := service.ParseReport(body)
	if err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("Rejected report")
		response.BadRequest(c, "No valid report received")
		return
	}

	id, err := h.trackService.Ingest(c.Request.Context(), report)
	if err != nil {
		h.storeError(c, err)
		return
	}

	response.OK(c, id)
}

// History handles GET /history, optionally scoped with ?device_id=
func (h *TrackHandler) History(c *gin.Context) {
	var (
		traj *models.Trajectory
		err  error
	)

	if deviceID, ok := c.GetQuery("device_id"); ok {
		traj, err = h.trackService.DeviceHistory(c.Request.Context(), deviceID)
	} else {
		traj, err = h.trackService.History(c.Request.Context())
	}
	if err != nil {
		h.storeError(c, err)
		return
	}

	response.JSON(c, traj)
}

// Health handles GET /health
func (h *TrackHandler) Health(c *gin.Context) {
	total, err := h.trackService.SampleCount(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}

	response.JSON(c, gin.H{
		"status":  "ok",
		"samples": total,
	})
}

func (h *TrackHandler) storeError(c *gin.Context, err error) {
	logging.Ctx(c.Request.Context()).Error().Err(err).Msg("Track store request failed")
	_ = c.Error(err)

	if errors.Is(err, repository.ErrStoreUnavailable) {
		response.Unavailable(c, "Track store unavailable")
		return
	}
	response.InternalError(c, "Internal error")
}
