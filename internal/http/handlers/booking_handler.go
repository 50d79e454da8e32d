// README: Booking handlers: edit the draft, re-quote, confirm.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"privatehire/internal/http/middleware"
	"privatehire/internal/modules/booking"
	"privatehire/internal/modules/fleet"
	"privatehire/internal/modules/pricing"
	"privatehire/internal/modules/routing"
	"privatehire/internal/modules/trip"
)

type BookingHandler struct {
	booking *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{booking: svc}
}

type updateDraftReq struct {
	Pickup      *locationReq `json:"pickup"`
	Destination *locationReq `json:"destination"`
	Class       *string      `json:"class"`
}

type confirmReq struct {
	PaymentMethod string `json:"payment_method"`
}

type quoteResponse struct {
	routing.Quote
	Breakdown         pricing.Breakdown `json:"breakdown"`
	DistanceText      string            `json:"distance_text"`
	DurationText      string            `json:"duration_text"`
	FareText          string            `json:"fare_text"`
	CanConfirm        bool              `json:"can_confirm"`
	UnavailableReason string            `json:"unavailable_reason,omitempty"`
}

func newQuoteResponse(q routing.Quote) quoteResponse {
	resp := quoteResponse{
		Quote:        q,
		Breakdown:    pricing.Split(q.Fare),
		DistanceText: pricing.FormatDistance(q.DistanceMeters),
		DurationText: pricing.FormatDuration(q.DurationSeconds),
		FareText:     pricing.FormatPrice(q.Fare),
		CanConfirm:   !q.Degraded,
	}
	if q.Degraded {
		resp.UnavailableReason = booking.ErrQuoteDegraded.Error()
	}
	return resp
}

func (h *BookingHandler) GetDraft(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.booking.Draft(middleware.CallerUID(c)))
}

func (h *BookingHandler) UpdateDraft(c *gin.Context) {
	var req updateDraftReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	var u booking.DraftUpdate
	if req.Pickup != nil {
		loc, ok := req.Pickup.toLocation()
		if !ok {
			writeError(c, http.StatusBadRequest, "invalid pickup")
			return
		}
		u.Pickup = &loc
	}
	if req.Destination != nil {
		loc, ok := req.Destination.toLocation()
		if !ok {
			writeError(c, http.StatusBadRequest, "invalid destination")
			return
		}
		u.Destination = &loc
	}
	if req.Class != nil {
		class := fleet.VehicleClass(*req.Class)
		u.Class = &class
	}
	d, err := h.booking.Update(middleware.CallerUID(c), u)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

func (h *BookingHandler) Quote(c *gin.Context) {
	q, err := h.booking.Requote(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newQuoteResponse(q))
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	var req confirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := h.booking.Confirm(c.Request.Context(), middleware.CallerUID(c), trip.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, t)
}
