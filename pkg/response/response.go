package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Rejection reasons returned to clients
const (
	ReasonMalformedInput   = "malformed_input"
	ReasonStoreUnavailable = "store_unavailable"
	ReasonRateLimited      = "rate_limited"
	ReasonNotFound         = "not_found"
	ReasonInternal         = "internal_error"
)

// Status is the acknowledgment body sent to trackers
type Status struct {
	Status  string `json:"status"`
	ID      int64  `json:"id,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK acknowledges a stored sample
func OK(c *gin.Context, id int64) {
	c.JSON(http.StatusOK, Status{Status: "ok", ID: id})
}

// JSON sends a payload with status 200
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error sends a rejection with a stable reason
func Error(c *gin.Context, code int, reason, message string) {
	c.AbortWithStatusJSON(code, Status{
		Status:  "error",
		Reason:  reason,
		Message: message,
	})
}

// BadRequest sends a 400 malformed input rejection
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, ReasonMalformedInput, message)
}

// Unavailable sends a 503 store unavailable rejection
func Unavailable(c *gin.Context, message string) {
	Error(c, http.StatusServiceUnavailable, ReasonStoreUnavailable, message)
}

// TooManyRequests sends a 429 rejection
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, ReasonRateLimited, "Rate limit exceeded. Please try again later.")
}

// NotFound sends a 404 rejection
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, ReasonNotFound, message)
}

// InternalError sends a 500 rejection
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, ReasonInternal, message)
}
