package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/washhub/carwash-web/internal/core/domain"
)

// RBAC enforces role-based access control on JSON routes.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a := AccessFrom(c)
			if !a.Authenticated() {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
			}
			if !a.Allows(allowedRoles...) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
