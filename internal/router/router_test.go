package router_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-clean-starter/config"
	"github.com/oksasatya/go-clean-starter/internal/container"
	"github.com/oksasatya/go-clean-starter/internal/router"
	"github.com/oksasatya/go-clean-starter/pkg/helpers"
	"github.com/oksasatya/go-clean-starter/pkg/httpclient"
)

func TestInitModules_RemoteDriver(t *testing.T) {
	gin.SetMode(gin.TestMode)
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":{"items":[],"total":0}}`)
	}))
	t.Cleanup(remote.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := config.Load()
	cfg.UserRepositoryDriver = config.DriverRemote
	cfg.DebugMetricsEnabled = true
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager("a", "r", time.Minute, time.Hour))
	container.SetAPIClient(httpclient.New(httpclient.Config{BaseURL: remote.URL, Timeout: time.Second, RetryAttempts: 1}))

	engine := gin.New()
	reg := router.NewRegistry(engine)
	router.InitModules(reg)
	reg.RegisterAll()

	routes := map[string]bool{}
	for _, rt := range engine.Routes() {
		routes[rt.Method+" "+rt.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/logout",
		"GET /api/auth/profile",
		"POST /api/users",
		"GET /api/users",
		"PATCH /api/users/:id",
		"POST /api/users/:id/avatar",
		"GET /api/products",
		"POST /api/products/:id/stock",
		"GET /api/debug/vars",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
	require.NotNil(t, container.GetUserService())
	require.NotNil(t, container.GetAuthService())
	assert.Nil(t, container.GetAuthService().Credentials)

	// public catalog read goes through to the remote API
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// user listing needs a token
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// login has no password store in remote mode
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@example.com","password":"Secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}
