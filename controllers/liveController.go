package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"civiclens-be/logger"
	"civiclens-be/middlewares"
	"civiclens-be/ws"
)

type LiveController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewLiveController accepts same-host connections plus the configured origins.
func NewLiveController(hub *ws.Hub, allowedOrigins []string) *LiveController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &LiveController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// Stream upgrades to a websocket that receives issue events.
func (ctl *LiveController) Stream(c *gin.Context) {
	session, _ := middlewares.CurrentSession(c)

	conn, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warnf("ws: upgrade failed: %v", err)
		return
	}

	user := ""
	if session != nil {
		user = session.User
	}
	ws.NewClient(conn, ctl.hub, user).Serve()
}
