package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"crm/internal/models"
	"crm/internal/services"
)

// BaseController provides generic CRUD handlers for any model backed by a
// BaseService. The permission middleware has already run by the time these
// execute; controllers only translate HTTP to service calls.
type BaseController[T any] struct {
	service services.BaseService[T]
}

// NewBaseController creates a new base controller.
func NewBaseController[T any](service services.BaseService[T]) *BaseController[T] {
	return &BaseController[T]{service: service}
}

func parseIncludes(ctx echo.Context) []string {
	include := ctx.QueryParam("include")
	if include == "" {
		return nil
	}
	return strings.Split(include, ",")
}

// Create handles creation of new entities.
func (c *BaseController[T]) Create(ctx echo.Context) error {
	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	if err := c.service.Create(ctx.Request().Context(), &entity, parseIncludes(ctx)...); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusCreated, entity)
}

// Get handles retrieval of a single entity.
func (c *BaseController[T]) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	entity, err := c.service.Get(ctx.Request().Context(), id, parseIncludes(ctx)...)
	if err != nil {
		if models.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "entity not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusOK, entity)
}

// List handles retrieval of multiple entities with pagination and
// query-parameter filtering.
func (c *BaseController[T]) List(ctx echo.Context) error {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}

	filters := make(map[string]interface{})
	for key, values := range ctx.QueryParams() {
		if key == "page" || key == "limit" || key == "include" || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}

	entities, total, err := c.service.List(ctx.Request().Context(), page, limit, filters, parseIncludes(ctx)...)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"data":  entities,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Update handles updating an existing entity.
func (c *BaseController[T]) Update(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	if err := c.service.Update(ctx.Request().Context(), id, &entity, parseIncludes(ctx)...); err != nil {
		if models.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "entity not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusOK, entity)
}

// Delete handles deletion of an entity.
func (c *BaseController[T]) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		if models.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "entity not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.NoContent(http.StatusNoContent)
}
