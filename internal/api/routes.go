package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crm/internal/api/controllers"
	apimiddleware "crm/internal/api/middleware"
	"crm/internal/handlers"
	"crm/internal/models"
	"crm/internal/services"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "CRM API")
	})
	s.echo.GET("/health", s.healthCheck)

	authHandler := handlers.NewAuthHandler(s.db, s.resolver, s.config.JWT.Secret)

	// Login is the only unauthenticated API route.
	s.echo.POST("/api/v1/auth/login", authHandler.Login)

	// API v1 group
	api := s.echo.Group("/api/v1")
	auth := apimiddleware.NewAuthMiddleware(s.db, s.config.JWT.Secret)
	api.Use(auth.Middleware())

	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.GetMe)

	dashboard := handlers.NewDashboardHandler(s.db)
	api.GET("/dashboard", dashboard.Stats)

	// User and permission-set administration rides on the user object
	// type, so only users granted that type (or admins) reach it.
	userHandler := handlers.NewUserHandler(s.db, s.resolver)
	users := api.Group("/users", apimiddleware.RequireCapability(s.resolver, models.ObjectTypeUser))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)
	users.GET("/:id/permissions", userHandler.GetPermissions)
	users.PUT("/:id/permissions", userHandler.UpdatePermissions)
	users.PUT("/:id/permission-sets", userHandler.AssignPermissionSets)

	setHandler := handlers.NewPermissionSetHandler(s.db)
	sets := api.Group("/permission-sets", apimiddleware.RequireCapability(s.resolver, models.ObjectTypeUser))
	sets.GET("", setHandler.List)
	sets.POST("", setHandler.Create)
	sets.GET("/:id", setHandler.Get)
	sets.PUT("/:id", setHandler.Update)
	sets.DELETE("/:id", setHandler.Delete)

	registerCRUDRoutes(api, s, &models.Contact{}, "/contacts", models.ObjectTypeContact)
	registerCRUDRoutes(api, s, &models.Account{}, "/accounts", models.ObjectTypeAccount)
	registerCRUDRoutes(api, s, &models.Opportunity{}, "/opportunities", models.ObjectTypeOpportunity)
	registerCRUDRoutes(api, s, &models.Lead{}, "/leads", models.ObjectTypeLead)

	// Browsing and defining custom objects only needs authentication;
	// record access is gated per object definition.
	objectHandler := handlers.NewCustomObjectHandler(s.db)
	objs := api.Group("/custom-objects")
	objs.GET("", objectHandler.List)
	objs.POST("", objectHandler.Create)
	objs.GET("/:id", objectHandler.Get)
	objs.DELETE("/:id", objectHandler.Delete, apimiddleware.RequireCustomObjectCapability(s.resolver))
	objs.GET("/:id/records", objectHandler.ListRecords, apimiddleware.RequireCustomObjectCapability(s.resolver))
	objs.POST("/:id/records", objectHandler.CreateRecord, apimiddleware.RequireCustomObjectCapability(s.resolver))
}

// registerCRUDRoutes wires the generic controller for one standard entity,
// gated on its object type.
func registerCRUDRoutes[T any](api *echo.Group, s *Server, model *T, prefix string, objectType models.ObjectType) {
	controller := controllers.NewBaseController(services.NewBaseService(s.db, *model))
	group := api.Group(prefix, apimiddleware.RequireCapability(s.resolver, objectType))
	group.GET("", controller.List)
	group.POST("", controller.Create)
	group.GET("/:id", controller.Get)
	group.PUT("/:id", controller.Update)
	group.DELETE("/:id", controller.Delete)
}
