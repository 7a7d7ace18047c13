package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crm/internal/models"
	"crm/internal/permissions"
)

// CapabilityForMethod maps an HTTP method onto the permission verb a CRUD
// route needs.
func CapabilityForMethod(method string) (models.Capability, bool) {
	switch method {
	case http.MethodGet, http.MethodHead:
		return models.CapabilityView, true
	case http.MethodPost:
		return models.CapabilityCreate, true
	case http.MethodPut, http.MethodPatch:
		return models.CapabilityEdit, true
	case http.MethodDelete:
		return models.CapabilityDelete, true
	default:
		return "", false
	}
}

// RequireCapability gates a route group on the capability implied by the
// request method for a fixed object type. Denial is a 403, not an error.
func RequireCapability(resolver *permissions.Resolver, objectType models.ObjectType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			capability, ok := CapabilityForMethod(c.Request().Method)
			if !ok {
				return echo.NewHTTPError(http.StatusMethodNotAllowed, "unsupported method")
			}

			user := CurrentUser(c)
			if !resolver.Resolve(c.Request().Context(), user, objectType, nil, capability) {
				return echo.NewHTTPError(http.StatusForbidden,
					"you do not have permission to "+string(capability)+" "+string(objectType)+" records")
			}
			return next(c)
		}
	}
}

// RequireAdmin restricts a route group to admin users.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil || !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			return next(c)
		}
	}
}

// RequireCustomObjectCapability is RequireCapability for custom-object
// routes, where the grant is scoped to the object definition named by the
// :id path parameter.
func RequireCustomObjectCapability(resolver *permissions.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			capability, ok := CapabilityForMethod(c.Request().Method)
			if !ok {
				return echo.NewHTTPError(http.StatusMethodNotAllowed, "unsupported method")
			}

			objectID := c.Param("id")
			if objectID == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "missing custom object id")
			}

			user := CurrentUser(c)
			if !resolver.Resolve(c.Request().Context(), user, models.ObjectTypeCustomObject, &objectID, capability) {
				return echo.NewHTTPError(http.StatusForbidden,
					"you do not have permission to "+string(capability)+" records of this custom object")
			}
			return next(c)
		}
	}
}
