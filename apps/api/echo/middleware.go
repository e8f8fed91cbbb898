package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core/session"
	metricsvc "github.com/fitsenior/backend/services/metrics"
)

const sessionContextKey = "session"

// sessionMiddleware resolves the session of the token subject once per request.
func sessionMiddleware(svc session.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			sess, err := svc.Resolve(ctx.Request().Context(), claims.Subject)
			if err != nil {
				return errors.Wrap(err, "resolving session")
			}
			ctx.Set(sessionContextKey, sess)
			return next(ctx)
		}
	}
}

func getContextSession(ctx echo.Context) session.Session {
	sess, _ := ctx.Get(sessionContextKey).(session.Session)
	return sess
}

// roleMiddleware only lets through the sessions holding role.
func roleMiddleware(role session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess := getContextSession(ctx)
			switch role {
			case session.RoleStudent:
				if sess.IsStudent() {
					return next(ctx)
				}
			case session.RoleProfessional:
				if sess.IsProfessional() {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

// metricsMiddleware records every request under its route pattern, so /classes/:id counts as one endpoint.
func metricsMiddleware(m *metricsvc.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				// let the error handler write the response so the status is known
				ctx.Error(err)
			}

			endpoint := ctx.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			m.ObserveHTTPRequest(endpoint, ctx.Request().Method, ctx.Response().Status, time.Since(start))
			return nil
		}
	}
}
