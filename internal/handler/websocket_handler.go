package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TokenResolver maps a bearer token to the user it authenticates
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (int32, error)
}

// WebSocketHandler upgrades /ws requests into per-user event channels
type WebSocketHandler struct {
	hub      *websocket.Hub
	resolver TokenResolver
	origins  map[string]struct{}
	upgrader ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Browser upgrades are
// accepted only from allowedOrigins.
func NewWebSocketHandler(hub *websocket.Hub, resolver TokenResolver, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:      hub,
		resolver: resolver,
		origins:  make(map[string]struct{}, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		h.origins[strings.TrimSpace(origin)] = struct{}{}
	}
	h.upgrader = ws.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := h.origins[origin]; ok {
		return true
	}
	log.Warn().Str("origin", origin).Msg("WebSocket upgrade refused: origin not allowed")
	return false
}

// wsToken reads the token from the query string, where browsers have to put
// it, or from a bearer header sent by other clients
func wsToken(c echo.Context) string {
	if token := c.QueryParam("token"); token != "" {
		return token
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// HandleWS godoc
// @Summary Subscribe to requisition events
// @Description Upgrades to a WebSocket that receives requisition.created, requisition.approved, requisition.rejected and attachment.created events for the caller
// @Tags events
// @Param token query string false "API token or JWT"
// @Success 101 "Switching Protocols"
// @Failure 401 "Unauthorized"
// @Router /ws [get]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := wsToken(c)
	if token == "" {
		return NewUnauthorizedError(c, "Missing token")
	}
	userID, err := h.resolver.ResolveToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket upgrade refused: invalid token")
		return NewUnauthorizedError(c, "Invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the failure response
		log.Warn().Err(err).Int32("user_id", userID).Msg("WebSocket upgrade failed")
		return nil
	}

	client := websocket.NewClient(conn, userID)
	if err := h.hub.Register(client); err != nil {
		client.Close()
		return nil
	}
	log.Info().Int32("user_id", userID).Str("client_id", client.ID()).Msg("WebSocket client connected")

	go client.Serve(h.hub)
	return nil
}
