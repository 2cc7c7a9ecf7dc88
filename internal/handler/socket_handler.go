package handler

import (
	"net/http"

	appmw "github.com/Ro-otman/vroomvtr/internal/middleware"
	"github.com/Ro-otman/vroomvtr/internal/ws"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// SocketHandler upgrades HTTP connections and hands them to the relay.
// Identity is resolved once from the handshake credential; resolution
// failure leaves the connection anonymous rather than rejecting it.
type SocketHandler struct {
	auth     *appmw.AuthMiddleware
	relay    *ws.Relay
	upgrader websocket.Upgrader
}

func NewSocketHandler(auth *appmw.AuthMiddleware, relay *ws.Relay) *SocketHandler {
	return &SocketHandler{
		auth:  auth,
		relay: relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *SocketHandler) Handle(c echo.Context) error {
	uid := h.resolveIdentity(c)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return nil
	}

	client := ws.NewClient(conn, uid)
	h.relay.Connect(client)
	go client.WritePump()
	client.ReadPump(h.relay)
	return nil
}

func (h *SocketHandler) resolveIdentity(c echo.Context) string {
	token := ""
	if cookie, err := c.Cookie(appmw.AccessTokenCookie); err == nil {
		token = cookie.Value
	} else if q := c.QueryParam("token"); q != "" {
		token = q
	}
	if token == "" {
		return ""
	}
	uid, _, err := h.auth.Verify(token)
	if err != nil {
		return ""
	}
	return uid
}
