// README: Trip handlers for the active trip, cancel and complete.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"privatehire/internal/http/middleware"
	"privatehire/internal/modules/trip"
	"privatehire/internal/types"
)

type TripHandler struct {
	trips *trip.Service
}

func NewTripHandler(svc *trip.Service) *TripHandler {
	return &TripHandler{trips: svc}
}

type completeReq struct {
	Rating *int `json:"rating"`
}

func (h *TripHandler) Active(c *gin.Context) {
	t, err := h.trips.Active(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

func (h *TripHandler) Cancel(c *gin.Context) {
	rec, err := h.trips.Cancel(c.Request.Context(), trip.CancelCommand{
		PassengerID: middleware.CallerUID(c),
		TripID:      types.ID(c.Param("id")),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}

// Complete accepts an empty body for an unrated trip.
func (h *TripHandler) Complete(c *gin.Context) {
	var req completeReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	rec, err := h.trips.Complete(c.Request.Context(), trip.CompleteCommand{
		PassengerID: middleware.CallerUID(c),
		TripID:      types.ID(c.Param("id")),
		Rating:      req.Rating,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}
