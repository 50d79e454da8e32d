// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"privatehire/internal/http/handlers"
	"privatehire/internal/http/middleware"
	"privatehire/internal/infra"
	"privatehire/internal/logging"
	"privatehire/internal/modules/booking"
	"privatehire/internal/modules/chat"
	"privatehire/internal/modules/fleet"
	"privatehire/internal/modules/history"
	"privatehire/internal/modules/trip"
)

type RouterDeps struct {
	Booking  *booking.Service
	Trips    *trip.Service
	Chat     *chat.Service
	History  *history.Store
	Fleet    *fleet.Service
	Verifier infra.TokenVerifier
	Log      logging.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/api/classes", handlers.Classes)

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	bookingHandler := handlers.NewBookingHandler(deps.Booking)
	api.GET("/booking/draft", bookingHandler.GetDraft)
	api.PUT("/booking/draft", bookingHandler.UpdateDraft)
	api.POST("/booking/quote", bookingHandler.Quote)
	api.POST("/booking/confirm", bookingHandler.Confirm)

	tripHandler := handlers.NewTripHandler(deps.Trips)
	api.GET("/trips/active", tripHandler.Active)
	api.POST("/trips/:id/cancel", tripHandler.Cancel)
	api.POST("/trips/:id/complete", tripHandler.Complete)

	chatHandler := handlers.NewChatHandler(deps.Chat, deps.Log)
	api.GET("/trips/:id/messages", chatHandler.List)
	api.POST("/trips/:id/messages", chatHandler.Send)
	api.GET("/trips/:id/messages/ws", chatHandler.Stream)

	historyHandler := handlers.NewHistoryHandler(deps.History)
	api.GET("/history", historyHandler.List)
	api.GET("/history/:id/receipt", historyHandler.Receipt)

	driverHandler := handlers.NewDriverHandler(deps.Fleet)
	api.PUT("/drivers/:id/availability", driverHandler.SetAvailability)

	return r
}
