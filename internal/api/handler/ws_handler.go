package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/leadstack/crm-api/internal/api/metrics"
	"github.com/leadstack/crm-api/internal/api/middleware"
	"github.com/leadstack/crm-api/internal/core/ports"
)

// WSHandler upgrades authenticated clients to a websocket and bridges the
// event bus to them. Every connection is auto-subscribed to its user topic
// and the global topic; clients join and leave lead rooms explicitly.
type WSHandler struct {
	bus       ports.EventBus
	jwtSecret string
	log       zerolog.Logger
}

func NewWSHandler(bus ports.EventBus, jwtSecret string, log zerolog.Logger) *WSHandler {
	return &WSHandler{bus: bus, jwtSecret: jwtSecret, log: log}
}

// clientMessage is what clients send over the socket.
type clientMessage struct {
	Action string `json:"action"`
	LeadID int64  `json:"leadId"`
}

// Serve handles GET /ws. The token comes from the `token` query parameter or
// the Authorization header; anonymous connections are rejected before the
// upgrade.
func (h *WSHandler) Serve(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		header := c.Request().Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = parts[1]
		}
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	claims, err := middleware.ParseToken(token, h.jwtSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	userID, err := middleware.UserIDFromClaims(claims)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return nil // Accept already wrote the handshake failure
	}

	metrics.WebsocketConnections.Inc()
	defer metrics.WebsocketConnections.Dec()

	h.log.Info().Int64("user_id", userID).Msg("websocket connected")
	h.serve(c.Request().Context(), conn, userID)
	h.log.Info().Int64("user_id", userID).Msg("websocket disconnected")

	return nil
}

func (h *WSHandler) serve(reqCtx context.Context, conn *websocket.Conn, userID int64) {
	ctx, cancel := context.WithCancel(reqCtx)
	defer cancel()
	defer conn.Close(websocket.StatusNormalClosure, "")

	out := make(chan ports.Event, 32)

	subs := make(map[string]ports.Subscription)
	defer func() {
		for _, sub := range subs {
			_ = sub.Close()
		}
	}()

	join := func(topic string) {
		if _, ok := subs[topic]; ok {
			return
		}
		sub, err := h.bus.Subscribe(ctx, topic)
		if err != nil {
			h.log.Warn().Err(err).Str("topic", topic).Msg("subscribe failed")
			return
		}
		subs[topic] = sub
		go func() {
			for ev := range sub.Events() {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	join(ports.TopicUser(userID))
	join(ports.TopicGlobal)

	// Writer. The read loop below owns the subs map, this goroutine is the
	// only writer on the connection.
	go func() {
		for {
			select {
			case ev := <-out:
				if err := wsjson.Write(ctx, conn, ev); err != nil {
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}

		switch msg.Action {
		case "join:lead":
			if msg.LeadID > 0 {
				join(ports.TopicLead(msg.LeadID))
			}
		case "leave:lead":
			topic := ports.TopicLead(msg.LeadID)
			if sub, ok := subs[topic]; ok {
				_ = sub.Close()
				delete(subs, topic)
			}
		default:
			h.log.Debug().Str("action", msg.Action).Msg("unknown websocket action")
		}
	}
}
