package handlers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/LuqmanKt98/hangout-app/events"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

// WSHandler pushes bus events to connected clients over WebSocket. Each
// session is keyed by the authenticated user id; an event's audience decides
// which sessions receive it.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive matters behind cloud load balancers.
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		log.Printf("✅ WebSocket connected: %v", userID)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		log.Printf("🔌 WebSocket disconnected: %v", userID)
	})
	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// GET /api/ws
func (h *WSHandler) HandleWS(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		"user_id": userID.String(),
	})
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
	}
}

// Run pumps bus events into the hub until ctx is cancelled. Call it in its
// own goroutine.
func (h *WSHandler) Run(ctx context.Context, bus events.Bus) {
	ch, cancel := bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(ev)
		}
	}
}

func (h *WSHandler) broadcast(ev events.Event) {
	msg, err := json.Marshal(gin.H{
		"topic":   ev.Topic,
		"payload": ev.Payload,
	})
	if err != nil {
		return
	}

	wanted := make(map[string]bool, len(ev.Audience))
	for _, id := range ev.Audience {
		wanted[id.String()] = true
	}

	err = h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		if len(wanted) == 0 {
			return true // no audience means broadcast
		}
		id, exists := s.Get("user_id")
		uid, _ := id.(string)
		return exists && wanted[uid]
	})
	if err != nil {
		log.Printf("⚠️ WebSocket broadcast failed: %v", err)
	}
}
