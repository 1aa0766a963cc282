package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewEngine(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	engine := NewEngine(EngineConfig{
		ServiceName: "erp-ledger-test",
		CORS:        middleware.CORSConfig{AllowOrigins: []string{"*"}},
	}, zap.New(core))
	engine.GET("/boom", func(c *gin.Context) { panic("engine blew up") })
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("request id and cors on every response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, 1, logs.FilterMessage("HTTP Request").Len())
	})

	t.Run("panics are recovered", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
	})
}

func TestNewEngine_TrustedProxies(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	NewEngine(EngineConfig{TrustedProxies: []string{"not-an-ip"}}, zap.New(core))
	assert.Equal(t, 1, logs.FilterMessage("Failed to set trusted proxies").Len())

	logs.TakeAll()
	NewEngine(EngineConfig{TrustedProxies: []string{"10.0.0.0/8"}}, zap.New(core))
	assert.Zero(t, logs.Len())
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	assert.Equal(t, "v2", NewRouter(engine, WithAPIVersion("v2")).apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	system := NewDomainGroup("system", "/system")
	system.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	ledgerGroup := NewDomainGroup("ledger", "/ledger")
	ledgerGroup.POST("/refresh", func(c *gin.Context) {
		c.String(http.StatusOK, "refreshed")
	})

	r.Register(system).Register(ledgerGroup).Setup()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/system/ping", "pong"},
		{http.MethodPost, "/api/v1/ledger/refresh", "refreshed"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.body, w.Body.String())
	}
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("ledger", "/ledger")
		assert.Equal(t, "ledger", g.Name())
		assert.Equal(t, "/ledger", g.Prefix())
	})

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("ledger", "/ledger")
		g.Use(func(c *gin.Context) {
			c.Header("X-Ledger-Group", "applied")
			c.Next()
		})
		g.GET("/status", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/status", nil))
		assert.Equal(t, "applied", w.Header().Get("X-Ledger-Group"))
	})

	t.Run("subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("ledger", "/ledger")
		g.Group("reports", "/reports").GET("/:type", func(c *gin.Context) {
			c.String(http.StatusOK, c.Param("type"))
		})
		g.Group("orders", "/orders").GET("/:id/lines", func(c *gin.Context) {
			c.String(http.StatusOK, c.Param("id"))
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/reports/LEDGER", nil))
		assert.Equal(t, "LEDGER", w.Body.String())

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/orders/O1/lines", nil))
		assert.Equal(t, "O1", w.Body.String())
	})
}
