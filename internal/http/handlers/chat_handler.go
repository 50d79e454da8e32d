// README: In-trip chat handlers, including the websocket stream of new messages.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"privatehire/internal/http/middleware"
	"privatehire/internal/logging"
	"privatehire/internal/modules/chat"
	"privatehire/internal/modules/trip"
	"privatehire/internal/types"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

type ChatHandler struct {
	chat     *chat.Service
	log      logging.Logger
	upgrader websocket.Upgrader
}

func NewChatHandler(svc *chat.Service, log logging.Logger) *ChatHandler {
	return &ChatHandler{
		chat: svc,
		log:  log.Action("chat_stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type sendMessageReq struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

func (h *ChatHandler) List(c *gin.Context) {
	msgs, err := h.chat.List(c.Request.Context(), middleware.CallerUID(c), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"messages": msgs})
}

// Send posts as the customer. The caller is the trip's passenger, so any other
// sender is refused.
func (h *ChatHandler) Send(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Sender != "" && trip.Sender(req.Sender) != trip.SenderCustomer {
		writeError(c, http.StatusForbidden, "forbidden: passengers post as customer")
		return
	}
	msg, err := h.chat.Send(c.Request.Context(), chat.SendCommand{
		PassengerID: middleware.CallerUID(c),
		TripID:      types.ID(c.Param("id")),
		Sender:      trip.SenderCustomer,
		Text:        req.Text,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, msg)
}

// Stream upgrades to a websocket and pushes each new message as JSON until the client
// goes away. The trip must be the caller's active trip.
func (h *ChatHandler) Stream(c *gin.Context) {
	tripID := types.ID(c.Param("id"))
	if _, err := h.chat.List(c.Request.Context(), middleware.CallerUID(c), tripID); err != nil {
		writeServiceError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "trip_id", tripID, "err", err.Error())
		return
	}
	defer conn.Close()

	msgs, unsubscribe := h.chat.Subscribe(tripID)
	defer unsubscribe()

	// reader only watches for close and pongs
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Warn("websocket closed", "trip_id", tripID, "err", err.Error())
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
