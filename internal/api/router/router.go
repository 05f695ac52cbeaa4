package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hr-ledger/config"
	"hr-ledger/internal/api/handler"
	"hr-ledger/internal/api/middleware"
	"hr-ledger/internal/model"
	"hr-ledger/pkg/jwt"
	"hr-ledger/pkg/redis"
)

// Setup builds the gin engine
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	const (
		admin  = model.RoleAdmin
		guard  = model.RoleGuard
		viewer = model.RoleViewer
	)
	bodyLimit := middleware.BodyLimit(cfg.Server.MaxBodyBytes)

	v1 := r.Group("/api/v1")
	{
		// public
		auth := v1.Group("/auth")
		{
			auth.POST("/login",
				bodyLimit,
				middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow),
				h.Auth.Login,
			)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// main and short-leave ledger
			commute := authorized.Group("/commute-logs", bodyLimit)
			{
				commute.POST("", middleware.RoleAuth(admin, guard), h.Commute.LogAction)
				commute.POST("/short-leave", middleware.RoleAuth(admin, guard), h.Commute.LogShortLeave)
				commute.GET("", h.Commute.ListLogs)
				commute.GET("/export", middleware.RoleAuth(admin, viewer), h.Export.ExportCommutes)
				commute.GET("/:id", h.Commute.GetLog)
				commute.PUT("/:id", middleware.RoleAuth(admin), h.Commute.UpdateLog)
				commute.DELETE("/:id", middleware.RoleAuth(admin), h.Commute.DeleteLog)
				commute.GET("/:id/edits", middleware.RoleAuth(admin), h.Commute.ListEdits)
			}

			// hourly exits
			hourly := authorized.Group("/hourly-logs", bodyLimit)
			{
				hourly.POST("", middleware.RoleAuth(admin, guard), h.Hourly.LogOut)
				hourly.PUT("/:id/return", middleware.RoleAuth(admin, guard), h.Hourly.LogReturn)
				hourly.GET("", h.Hourly.ListLogs)
				hourly.DELETE("/:id", middleware.RoleAuth(admin), h.Hourly.DeleteLog)
			}

			// snapshots have their own, larger body cap
			backup := authorized.Group("/backup", middleware.RoleAuth(admin))
			{
				backup.GET("", h.Backup.Export)
				backup.POST("", middleware.BodyLimit(cfg.Backup.MaxBodyBytes), h.Backup.Restore)
			}
		}
	}

	return r
}
