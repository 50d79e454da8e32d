// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"privatehire/internal/modules/booking"
	"privatehire/internal/modules/chat"
	"privatehire/internal/modules/fleet"
	"privatehire/internal/modules/history"
	"privatehire/internal/modules/routing"
	"privatehire/internal/modules/trip"
	"privatehire/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

type locationReq struct {
	Name string   `json:"name"`
	Lng  *float64 `json:"lng"`
	Lat  *float64 `json:"lat"`
}

func (l locationReq) toLocation() (types.Location, bool) {
	if l.Lng == nil || l.Lat == nil {
		return types.Location{}, false
	}
	if *l.Lat < -90 || *l.Lat > 90 || *l.Lng < -180 || *l.Lng > 180 {
		return types.Location{}, false
	}
	return types.Location{Name: l.Name, Lng: *l.Lng, Lat: *l.Lat}, true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to HTTP statuses. Caller-input errors leave state
// unchanged; anything unrecognised is a 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrBadRequest),
		errors.Is(err, trip.ErrInvalidRating),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrInvalidSender),
		errors.Is(err, booking.ErrIncompleteDraft),
		errors.Is(err, booking.ErrInvalidPayment),
		errors.Is(err, fleet.ErrUnknownClass):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trip.ErrNoActiveTrip),
		errors.Is(err, history.ErrRecordNotFound),
		errors.Is(err, fleet.ErrDriverNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, trip.ErrTripAlreadyActive),
		errors.Is(err, trip.ErrInvalidTransition),
		errors.Is(err, trip.ErrTripNotActive),
		errors.Is(err, routing.ErrStaleQuote),
		errors.Is(err, booking.ErrNoQuote),
		errors.Is(err, booking.ErrQuoteDegraded),
		errors.Is(err, fleet.ErrDriverOnTrip):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, fleet.ErrNoDriverAvailable):
		writeError(c, http.StatusServiceUnavailable, "cannot confirm booking right now: "+err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
