// README: Driver pool availability.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"privatehire/internal/http/middleware"
	"privatehire/internal/modules/fleet"
	"privatehire/internal/types"
)

type DriverHandler struct {
	fleet *fleet.Service
}

func NewDriverHandler(svc *fleet.Service) *DriverHandler {
	return &DriverHandler{fleet: svc}
}

type availabilityReq struct {
	Available *bool `json:"available"`
}

// SetAvailability is open to admins and to a driver toggling their own id.
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	id := types.ID(c.Param("id"))
	switch middleware.CallerRole(c) {
	case "admin":
	case "driver":
		if middleware.CallerUID(c) != id {
			writeError(c, http.StatusForbidden, "forbidden: id does not match authenticated driver")
			return
		}
	default:
		writeError(c, http.StatusForbidden, "forbidden: driver or admin role required")
		return
	}

	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		writeError(c, http.StatusBadRequest, "available is required")
		return
	}
	if err := h.fleet.SetAvailability(c.Request.Context(), id, *req.Available); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"driver_id": id, "available": *req.Available})
}
