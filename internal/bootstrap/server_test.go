package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestMount_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	Mount(router, false, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	w := serve(router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok"}}`, w.Body.String())

	router = gin.New()
	Mount(router, false, map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("refused") },
	})
	w = serve(router, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"down"`)
}

func TestMount_MetricsAndDocs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	Mount(router, true, nil)

	assert.Equal(t, http.StatusOK, serve(router, "/metrics").Code)

	w := serve(router, openAPIPath)
	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, doc["paths"], "/api/v1/user/booking")

	assert.Equal(t, http.StatusOK, serve(router, "/docs/index.html").Code)
}

func TestMount_DocsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	Mount(router, false, nil)

	assert.Equal(t, http.StatusNotFound, serve(router, openAPIPath).Code)
}
