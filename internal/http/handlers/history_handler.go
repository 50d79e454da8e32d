// README: Trip history and receipts.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"privatehire/internal/http/middleware"
	"privatehire/internal/modules/history"
	"privatehire/internal/types"
)

type HistoryHandler struct {
	history *history.Store
}

func NewHistoryHandler(store *history.Store) *HistoryHandler {
	return &HistoryHandler{history: store}
}

func (h *HistoryHandler) List(c *gin.Context) {
	recs, err := h.history.List(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"trips": recs})
}

func (h *HistoryHandler) Receipt(c *gin.Context) {
	sess := middleware.CallerSession(c)
	rec, err := h.history.Get(c.Request.Context(), sess.UID, types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.String(http.StatusOK, history.Receipt(rec, sess))
}
