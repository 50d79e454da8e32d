// README: Vehicle class catalogue.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"privatehire/internal/modules/fleet"
)

type classResponse struct {
	fleet.ClassSpec
	Multiplier float64 `json:"multiplier"`
}

func Classes(c *gin.Context) {
	specs := fleet.Classes()
	out := make([]classResponse, 0, len(specs))
	for _, s := range specs {
		out = append(out, classResponse{ClassSpec: s, Multiplier: s.Multiplier()})
	}
	writeJSON(c, http.StatusOK, gin.H{"classes": out})
}
