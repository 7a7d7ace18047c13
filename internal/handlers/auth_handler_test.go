package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crm/internal/api/middleware"
	"crm/internal/api/validator"
	"crm/internal/db/testutil"
	"crm/internal/models"
	"crm/internal/permissions"
	"crm/internal/utils"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()

	dbConn := testutil.MustOpenTestDB(t)
	e := echo.New()
	e.Validator = validator.NewValidator()

	resolver := permissions.NewResolver(dbConn)
	authHandler := NewAuthHandler(dbConn, resolver, testSecret)
	e.POST("/api/v1/auth/login", authHandler.Login)

	api := e.Group("/api/v1")
	api.Use(middleware.NewAuthMiddleware(dbConn, testSecret).Middleware())
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.GetMe)

	userHandler := NewUserHandler(dbConn, resolver)
	users := api.Group("/users", middleware.RequireCapability(resolver, models.ObjectTypeUser))
	users.GET("", userHandler.List)
	users.GET("/:id/permissions", userHandler.GetPermissions)
	users.PUT("/:id/permissions", userHandler.UpdatePermissions)
	users.PUT("/:id/permission-sets", userHandler.AssignPermissionSets)

	setHandler := NewPermissionSetHandler(dbConn)
	sets := api.Group("/permission-sets", middleware.RequireCapability(resolver, models.ObjectTypeUser))
	sets.POST("", setHandler.Create)
	sets.PUT("/:id", setHandler.Update)

	objectHandler := NewCustomObjectHandler(dbConn)
	api.POST("/custom-objects", objectHandler.Create)
	api.POST("/custom-objects/:id/records", objectHandler.CreateRecord, middleware.RequireCustomObjectCapability(resolver))
	api.GET("/custom-objects/:id/records", objectHandler.ListRecords, middleware.RequireCustomObjectCapability(resolver))

	return e, dbConn
}

func createAccount(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	hashed, err := utils.HashPassword("secret123")
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, username string) string {
	t.Helper()

	rec := doJSON(e, http.MethodPost, "/api/v1/auth/login", "",
		`{"username":"`+username+`","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestLoginAndGetMe(t *testing.T) {
	e, dbConn := newTestRouter(t)
	createAccount(t, dbConn, "alice", models.UserRoleAdmin)

	token := login(t, e, "alice")

	rec := doJSON(e, http.MethodGet, "/api/v1/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Permissions map[string]map[string]models.CapabilitySet `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "alice", out.User.Username)
	// Admins get the full table.
	assert.True(t, out.Permissions["contact"][""].CanDelete)
}

func TestLoginWrongPassword(t *testing.T) {
	e, dbConn := newTestRouter(t)
	createAccount(t, dbConn, "alice", models.UserRoleAdmin)

	rec := doJSON(e, http.MethodPost, "/api/v1/auth/login", "",
		`{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	e, dbConn := newTestRouter(t)
	user := createAccount(t, dbConn, "alice", models.UserRoleAdmin)
	require.NoError(t, dbConn.Model(user).Update("is_active", false).Error)

	rec := doJSON(e, http.MethodPost, "/api/v1/auth/login", "",
		`{"username":"alice","password":"secret123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	e, dbConn := newTestRouter(t)
	createAccount(t, dbConn, "alice", models.UserRoleAdmin)

	token := login(t, e, "alice")

	rec := doJSON(e, http.MethodPost, "/api/v1/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserAdministrationForbiddenWithoutGrant(t *testing.T) {
	e, dbConn := newTestRouter(t)
	createAccount(t, dbConn, "bob", models.UserRoleUser)

	token := login(t, e, "bob")

	rec := doJSON(e, http.MethodGet, "/api/v1/users", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomObjectRecordFlow(t *testing.T) {
	e, dbConn := newTestRouter(t)
	createAccount(t, dbConn, "alice", models.UserRoleAdmin)

	token := login(t, e, "alice")

	rec := doJSON(e, http.MethodPost, "/api/v1/custom-objects", token, `{
		"name": "product",
		"label": "Product",
		"field_names": ["sku", "price"],
		"field_types": ["text", "number"],
		"field_labels": ["SKU", "Price"]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var obj struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obj))
	require.NotEmpty(t, obj.ID)

	rec = doJSON(e, http.MethodPost, "/api/v1/custom-objects/"+obj.ID+"/records", token,
		`{"values":{"sku":"SKU-1","price":"9.99","ignored":"x"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/custom-objects/"+obj.ID+"/records", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Records []struct {
			Document map[string]string `json:"document"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Records, 1)
	assert.Equal(t, "SKU-1", out.Records[0].Document["sku"])
	assert.Equal(t, "9.99", out.Records[0].Document["price"])
	// Keys outside the schema are dropped.
	assert.NotContains(t, out.Records[0].Document, "ignored")
}

func TestRecordAccessDeniedWithoutObjectGrant(t *testing.T) {
	e, dbConn := newTestRouter(t)
	createAccount(t, dbConn, "alice", models.UserRoleAdmin)
	createAccount(t, dbConn, "bob", models.UserRoleUser)

	adminToken := login(t, e, "alice")
	rec := doJSON(e, http.MethodPost, "/api/v1/custom-objects", adminToken, `{
		"name": "asset",
		"label": "Asset",
		"field_names": ["tag"],
		"field_types": ["text"],
		"field_labels": ["Tag"]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var obj struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obj))

	bobToken := login(t, e, "bob")
	rec = doJSON(e, http.MethodGet, "/api/v1/custom-objects/"+obj.ID+"/records", bobToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A grant scoped to this object definition opens it up.
	require.NoError(t, dbConn.Create(&models.UserPermission{
		UserID:     mustUserID(t, dbConn, "bob"),
		ObjectType: models.ObjectTypeCustomObject,
		ObjectID:   &obj.ID,
		CapabilitySet: models.CapabilitySet{
			CanView: true,
		},
	}).Error)

	rec = doJSON(e, http.MethodGet, "/api/v1/custom-objects/"+obj.ID+"/records", bobToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func mustUserID(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()
	user, err := models.UserByUsername(db, username)
	require.NoError(t, err)
	return user.ID
}
