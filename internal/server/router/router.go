package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/metrics"
	"github.com/mamadbah2/salestracker/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Seller *handlers.SellerHandler
	Live   *handlers.LiveHandler
	Totals *handlers.TotalsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware(m))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.GET("/status", h.Auth.Status)
	auth.POST("/signup", h.Auth.SignUp)
	auth.POST("/signin", h.Auth.SignIn)
	auth.POST("/signout", h.Auth.SignOut)
	auth.GET("/me", h.Auth.Me)

	api.GET("/seller", h.Seller.Get)
	api.PUT("/seller", h.Seller.Set)
	api.DELETE("/seller", h.Seller.Clear)

	live := api.Group("/live")
	live.GET("", h.Live.List)
	live.POST("", h.Live.Add)
	live.GET("/:id", h.Live.Get)
	live.PUT("/:id", h.Live.Update)
	live.DELETE("/:id", h.Live.Delete)
	live.POST("/:id/checkout", h.Live.Checkout)

	gated := api.Group("", h.Auth.RequireSession())
	gated.DELETE("/live", h.Live.ClearAll)
	gated.GET("/totalsales", h.Totals.Get)
	gated.PUT("/totalsales/:id", h.Totals.Edit)
	gated.DELETE("/totalsales/:id", h.Totals.Delete)
	gated.POST("/totalsales/summary/rebuild", h.Totals.RebuildSummary)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
		}
		logger.Info("request completed", fields...)
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
