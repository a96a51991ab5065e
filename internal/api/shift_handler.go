package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shifttrack-backend-go/internal/core"
	"shifttrack-backend-go/internal/models"
)

// ShiftHandler handles shift tracking API endpoints.
type ShiftHandler struct {
	shiftService core.ShiftService
	logger       *zap.Logger
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(ss core.ShiftService, logger *zap.Logger) *ShiftHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftHandler{shiftService: ss, logger: logger}
}

// mapShiftErrorToStatus maps errors from core.ShiftService to HTTP status
// codes and an ErrorResponse body.
func (h *ShiftHandler) mapShiftErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrShiftNotFound), errors.Is(err, core.ErrShiftForbidden):
		// Forbidden is reported as 404 so shift IDs are not probeable.
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Shift not found"}
	case errors.Is(err, core.ErrShiftAlreadyActive):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "A shift is already running", Details: err.Error()}
	case errors.Is(err, core.ErrNoActiveShift):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "No shift is currently running"}
	case errors.Is(err, core.ErrShiftAlreadyEnded):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "Shift has already ended"}
	case errors.Is(err, core.ErrBreakAlreadyOpen):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "A break is already running"}
	case errors.Is(err, core.ErrNoOpenBreak):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "No break is currently running"}
	case errors.Is(err, core.ErrInvalidShiftRange), errors.Is(err, core.ErrInvalidBreakRange):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid shift data", Details: err.Error()}
	default:
		h.logger.Error("Unexpected shift service error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// requireUserID pulls the authenticated user ID from the context, answering
// 401 itself when it is missing.
func requireUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return "", false
	}
	return userID, true
}

// StartShift handles POST /api/v1/shifts/start.
func (h *ShiftHandler) StartShift(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.StartShiftRequest
	// The body is optional; an empty POST starts a shift without a note.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
			return
		}
	}

	shift, err := h.shiftService.StartShift(c.Request.Context(), userID, req)
	if err != nil {
		h.mapShiftErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// EndShift handles POST /api/v1/shifts/:shiftId/end.
func (h *ShiftHandler) EndShift(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftService.EndShift(c.Request.Context(), userID, c.Param("shiftId"))
	if err != nil {
		h.mapShiftErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// StartBreak handles POST /api/v1/shifts/:shiftId/breaks/start.
func (h *ShiftHandler) StartBreak(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftService.StartBreak(c.Request.Context(), userID, c.Param("shiftId"))
	if err != nil {
		h.mapShiftErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// EndBreak handles POST /api/v1/shifts/:shiftId/breaks/end.
func (h *ShiftHandler) EndBreak(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftService.EndBreak(c.Request.Context(), userID, c.Param("shiftId"))
	if err != nil {
		h.mapShiftErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// GetActiveShift handles GET /api/v1/shifts/active.
// A 404 means no shift is currently running.
func (h *ShiftHandler) GetActiveShift(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftService.ActiveShift(c.Request.Context(), userID)
	if err != nil {
		h.mapShiftErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// CreateShift handles POST /api/v1/shifts for manual after-the-fact entry.
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	shift, err := h.shiftService.CreateManual(c.Request.Context(), userID, req)
	if err != nil {
		h.mapShiftErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// UpdateShift handles PATCH /api/v1/shifts/:shiftId.
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	shift, err := h.shiftService.UpdateShift(c.Request.Context(), userID, c.Param("shiftId"), req)
	if err != nil {
		h.mapShiftErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// DeleteShift handles DELETE /api/v1/shifts/:shiftId.
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.shiftService.DeleteShift(c.Request.Context(), userID, c.Param("shiftId")); err != nil {
		h.mapShiftErrorToStatus(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parsePeriod reads the from/to query parameters as RFC 3339 timestamps.
// Both are required; the range is half-open [from, to).
func parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid or missing 'from' query parameter (RFC 3339 expected)", Details: err.Error()})
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid or missing 'to' query parameter (RFC 3339 expected)", Details: err.Error()})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// ListShifts handles GET /api/v1/shifts?from=&to=.
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	from, to, ok := parsePeriod(c)
	if !ok {
		return
	}

	shifts, err := h.shiftService.ListShifts(c.Request.Context(), userID, from, to)
	if err != nil {
		h.mapShiftErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, shifts)
}

// GetSummary handles GET /api/v1/shifts/summary?from=&to=.
func (h *ShiftHandler) GetSummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	from, to, ok := parsePeriod(c)
	if !ok {
		return
	}

	summary, err := h.shiftService.Summary(c.Request.Context(), userID, from, to)
	if err != nil {
		h.mapShiftErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
