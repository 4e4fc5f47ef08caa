package handlers

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"queuely/internal/auth"
	"queuely/internal/logger"
	"queuely/internal/queue"
	"queuely/internal/registry"
	"queuely/internal/ws"
)

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	Service        *queue.Service
	Registry       *registry.Registry
	Issuer         *auth.Issuer
	Hub            *ws.Hub
	Log            *logger.Logger
	RequestTimeout time.Duration
}

// NewRouter builds the gin engine with every route
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	qh := NewQueueHandler(d.Service, d.Hub, d.Log)
	ah := NewAuthHandler(d.Registry, d.Service, d.Issuer, d.Log)
	requireAuth := auth.Middleware(d.Issuer)

	// long-lived, no request timeout
	r.GET("/queue/:code/ws", qh.Subscribe)

	api := r.Group("", timeout(d.RequestTimeout))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/provider/register", ah.Register)
		authGroup.POST("/provider/login", ah.Login)
		authGroup.POST("/refresh", ah.Refresh)
	}

	api.DELETE("/provider/delete/:id", requireAuth, ah.DeleteProvider)

	// public
	api.POST("/queue/join/:code", qh.Join)
	api.DELETE("/queue/leave/:code/:party_id", qh.Leave)
	api.GET("/queue/:code/status", qh.Status)

	owner := api.Group("", requireAuth)
	{
		owner.POST("/queue/create", qh.Create)
		owner.GET("/queue/:code", qh.Get)
		owner.GET("/queues", qh.List)
		owner.PATCH("/queue/update/:code", qh.Update)
		owner.PATCH("/queue/close/:code", qh.Close)
		owner.DELETE("/queue/delete/:code", qh.Delete)
		owner.POST("/queue/dispatch", qh.Dispatch)
	}

	return r
}

// timeout bounds the request context; store calls stop at the deadline
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requestLogger scopes a logger to the request and logs its outcome
func requestLogger(base *logger.Logger) gin.HandlerFunc {
	base = base.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-ID", reqID)
		log := base.With("request_id", reqID)
		c.Request = c.Request.WithContext(log.IntoContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"took", time.Since(start),
		}
		if code := c.Param("code"); code != "" {
			args = append(args, "code", code)
		}
		switch {
		case status >= 500:
			log.Error("request", args...)
		case status >= 400:
			log.Warn("request", args...)
		default:
			log.Debug("request", args...)
		}
	}
}
