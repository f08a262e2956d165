package api

import (
	"context"
	"net/http"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/checkin"
	"github.com/gin-gonic/gin"
)

type ScanVerifier interface {
	Verify(ctx context.Context, req checkin.ScanRequest) (checkin.Result, error)
}

type CheckinHandler struct {
	verifier ScanVerifier
}

type scanRequest struct {
	Payload   string    `json:"payload"`
	BookingID string    `json:"booking_id"`
	EventID   string    `json:"event_id"`
	Signature string    `json:"signature"`
	GuardName string    `json:"guard_name"`
	Location  string    `json:"location"`
	ScanTime  time.Time `json:"scan_time"`
}

type scanResponse struct {
	checkin.Result
	Signal    checkin.Signal `json:"signal"`
	Retryable bool           `json:"retryable"`
}

func NewCheckinHandler(verifier ScanVerifier) *CheckinHandler {
	return &CheckinHandler{verifier: verifier}
}

func (h *CheckinHandler) Register(router *gin.RouterGroup) {
	router.POST("/scan", h.scan)
}

// scan answers 200 for every gate decision, including rejections; the outcome
// is in the body. Only malformed requests and storage failures use other codes.
func (h *CheckinHandler) scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}

	eventID := req.EventID
	if scope := c.GetString(guardEventKey); scope != "" {
		if eventID != "" && eventID != scope {
			c.JSON(http.StatusForbidden, errorResponse{Error: "guard is not assigned to this event", Code: "forbidden"})
			return
		}
		eventID = scope
	}
	guardName := req.GuardName
	if guardName == "" {
		guardName = c.GetString(guardNameKey)
	}

	res, err := h.verifier.Verify(c.Request.Context(), checkin.ScanRequest{
		Payload:      req.Payload,
		BookingID:    req.BookingID,
		EventID:      eventID,
		Signature:    req.Signature,
		ScannedBy:    c.GetString(guardIDKey),
		GuardName:    guardName,
		ScanLocation: req.Location,
		ScanTime:     req.ScanTime,
	})

	status := http.StatusOK
	switch {
	case err != nil:
		status = http.StatusServiceUnavailable
	case res.Outcome == checkin.OutcomeInvalidRequest:
		status = http.StatusBadRequest
	}
	c.JSON(status, scanResponse{
		Result:    res,
		Signal:    res.Outcome.Signal(),
		Retryable: res.Outcome.Retryable(),
	})
}
