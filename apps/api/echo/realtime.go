package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	realtimesvc "github.com/fitsenior/backend/services/realtime"
)

type realtimeApi struct {
	hub *realtimesvc.Hub
}

// registerRealtimeAPI mounts the websocket. Browsers cannot set headers on the upgrade request,
// so the token is read from the query string.
func registerRealtimeAPI(g *echo.Group, auth *Auth, api *realtimeApi) {
	g.GET("/ws", api.serve, auth.Middleware("query:token"))
}

func (api *realtimeApi) serve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	conn, err := realtimesvc.Upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// the upgrader already replied
		return errors.Wrap(err, "upgrading connection")
	}
	api.hub.ServeClient(conn, claims.Subject)
	return nil
}
