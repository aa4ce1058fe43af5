package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/auth"
	"github.com/testimonial-hub/backend/internal/events"
	"go.uber.org/zap"
)

type wsConn interface {
	WriteMessage(messageType int, data []byte) error
}

// WSHub pushes testimonial events to the dashboards of the owning business.
type WSHub struct {
	jwtSecret   string
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[uuid.UUID][]wsConn
}

func NewWSHub(jwtSecret string, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		jwtSecret:   jwtSecret,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[uuid.UUID][]wsConn),
	}
}

func (h *WSHub) Start(ctx context.Context) {
	if err := h.subscriber.Subscribe(ctx, events.StreamTestimonials, h.dispatch); err != nil {
		h.log.Error("ws hub subscribe failed", zap.Error(err))
	}
}

func (h *WSHub) dispatch(event events.Event) {
	businessID, err := uuid.Parse(event.BusinessID())
	if err != nil {
		return
	}
	h.SendToBusiness(businessID, event)
}

func (h *WSHub) SendToBusiness(businessID uuid.UUID, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[businessID] {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

func (h *WSHub) register(businessID uuid.UUID, conn wsConn) {
	h.mu.Lock()
	h.connections[businessID] = append(h.connections[businessID], conn)
	h.mu.Unlock()
}

func (h *WSHub) unregister(businessID uuid.UUID, conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.connections[businessID]
	for i, c := range conns {
		if c == conn {
			h.connections[businessID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[businessID]) == 0 {
		delete(h.connections, businessID)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	claims, err := auth.ParseJWT(h.jwtSecret, tokenStr)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	businessID := claims.BusinessID
	h.register(businessID, conn)
	defer func() {
		h.unregister(businessID, conn)
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
