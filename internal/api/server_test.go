package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/config"
	"crm/internal/db/testutil"
)

func newServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.LoadTestConfig()
	s := NewServer(cfg, testutil.MustOpenTestDB(t))
	require.NotNil(t, s, "server construction failed; admin panel setup errored")
	return s
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestServerHealth(t *testing.T) {
	s := newServer(t)

	rec := get(s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminPanelRequiresAuthentication(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/admin", "/admin/"} {
		rec := get(s, path)
		assert.NotEqual(t, http.StatusOK, rec.Code, path)
	}
}

func TestAPIRequiresAuthentication(t *testing.T) {
	s := newServer(t)

	rec := get(s, "/api/v1/users")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
