package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/domain/models"
	"github.com/elmolle/eggtrack/internal/server/handlers"
	"github.com/elmolle/eggtrack/internal/service/auth"
)

// Handlers groups every HTTP handler the router wires.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Records *handlers.RecordsHandler
	Users   *handlers.UsersHandler
	Reports *handlers.ReportsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, authSvc *auth.Service, sectors int, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/auth/sign-in", h.Auth.SignIn)
	r.POST("/auth/recover", h.Auth.Recover)

	api := r.Group("/api")
	api.Use(authMiddleware(authSvc, logger))
	{
		api.GET("/sheds", h.Reports.Sheds(sectors))

		api.GET("/records/:farmId/:shedId", h.Records.List)
		api.GET("/records/:farmId/:shedId/:date", h.Records.GetDay)
		api.POST("/records/:farmId/:shedId/:date", h.Records.StartDay)
		api.PUT("/records/:farmId/:shedId/:date", h.Records.SaveCounts)
		api.POST("/records/:farmId/:shedId/:date/increment", h.Records.Increment)

		reports := api.Group("/reports")
		reports.Use(requireAdmin())
		{
			reports.GET("/:farmId/:shedId/summary", h.Reports.Summary)
			reports.GET("/:farmId/:shedId/export", h.Reports.Export)
		}

		admin := api.Group("/users")
		admin.Use(requireAdmin())
		{
			admin.GET("", h.Users.List)
			admin.POST("", h.Users.Create)
			admin.PATCH("/:uid/role", h.Users.UpdateRole)
			admin.DELETE("/:uid", h.Users.Delete)
		}
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString("requestID")),
			zap.String("client_ip", c.ClientIP()))
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// authMiddleware resolves the bearer idToken to a user profile and stores it
// in the request context. No operation proceeds without a resolved identity.
func authMiddleware(authSvc *auth.Service, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := authSvc.ResolveToken(c.Request.Context(), token)
		if err != nil {
			logger.Warn("token resolution failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.UserMessage(err)})
			return
		}

		c.Set(handlers.ContextUserKey, user)
		c.Next()
	}
}

// requireAdmin gates a route group to supervisors and encargados.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, _ := c.Get(handlers.ContextUserKey)
		user, _ := value.(*models.User)
		if user == nil || !user.Role.Admin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No tienes permisos de administrador para acceder a esta sección."})
			return
		}
		c.Next()
	}
}
