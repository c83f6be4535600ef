package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickserve/pos-system/internal/api/metrics"
	"github.com/quickserve/pos-system/internal/core/domain"
	"github.com/quickserve/pos-system/internal/core/ports"
)

// RequireSession rejects requests while no operator is signed in.
func RequireSession(sessions ports.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sessions.State() != domain.StateAuthenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// RequireCapability gates a route on the active session's permission
// snapshot. The request passes when the session grants any of the listed
// capabilities; without a session the check fails closed with 401.
func RequireCapability(sessions ports.Authorizer, caps ...domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sessions.State() != domain.StateAuthenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, cap := range caps {
				if sessions.HasPermission(cap) {
					return next(c)
				}
			}
			metrics.PermissionDeniedTotal.WithLabelValues(c.Path()).Inc()
			return c.JSON(http.StatusForbidden, map[string]string{"error": "restricted access"})
		}
	}
}
