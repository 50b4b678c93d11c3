package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resitasrav/BookLab-System/config"
	"github.com/resitasrav/BookLab-System/internal/api/handler"
	"github.com/resitasrav/BookLab-System/internal/api/middleware"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/pkg/jwt"
	"github.com/resitasrav/BookLab-System/pkg/redis"
)

const (
	maxBodyBytes = 1 << 20

	authRateLimit  = 10
	authRateWindow = time.Minute
	mailRateLimit  = 3
	mailRateWindow = 10 * time.Minute
)

// Setup 初始化并返回 Gin 路由引擎；rdb 为 nil 时黑名单与限流均降级
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		checker middleware.TokenChecker
		limiter middleware.RateLimiter
	)
	if rdb != nil {
		checker, limiter = rdb, rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	staff := middleware.RoleAuth(model.RoleStaff, model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(limiter, authRateLimit, authRateWindow))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/verify-email", h.Auth.VerifyEmail)
			auth.POST("/resend-code", middleware.RateLimit(limiter, mailRateLimit, mailRateWindow), h.Auth.ResendCode)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 公告对未登录用户可见
		v1.GET("/announcements", h.Announcement.ListActive)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 学生档案
			profiles := authorized.Group("/profiles")
			{
				profiles.PUT("/me", h.Profile.UpdateMe)
				profiles.GET("", staff, h.Profile.List)
				profiles.GET("/:id", staff, h.Profile.GetProfile)
				profiles.POST("/:id/activate", staff, h.Profile.Activate)
				profiles.POST("/:id/deactivate", staff, h.Profile.Deactivate)
				profiles.POST("/:id/cancel", staff, h.Profile.Cancel)
				profiles.POST("/:id/role", middleware.RoleAuth(model.RoleAdmin), h.Profile.AssignRole)
			}

			// 实验室
			labs := authorized.Group("/labs")
			{
				labs.GET("", h.Lab.List)
				labs.GET("/:id", h.Lab.GetLab)
				labs.POST("", staff, h.Lab.Create)
				labs.PUT("/:id", staff, h.Lab.Update)
				labs.DELETE("/:id", staff, h.Lab.Delete)
			}

			// 设备
			devices := authorized.Group("/devices")
			{
				devices.GET("", h.Device.List)
				devices.GET("/:id", h.Device.GetDevice)
				devices.POST("", staff, h.Device.Create)
				devices.PUT("/:id", staff, h.Device.Update)
				devices.POST("/:id/deactivate", staff, h.Device.Deactivate)
				devices.POST("/:id/activate", staff, h.Device.Activate)
				devices.POST("/:id/reactivate", staff, h.Device.Reactivate)
				devices.DELETE("/:id", staff, h.Device.Delete)
			}

			// 预约
			reservations := authorized.Group("/reservations")
			{
				reservations.POST("", h.Reservation.Create)
				reservations.GET("/me", h.Reservation.ListMine)
				reservations.GET("/me/summary", h.Reservation.Summary)
				reservations.GET("/:id", h.Reservation.GetReservation)
				reservations.POST("/:id/cancel", h.Reservation.Cancel)
				reservations.GET("", staff, h.Reservation.List)
				reservations.POST("/:id/transition", staff, h.Reservation.Transition)
			}

			// 日历
			schedule := authorized.Group("/schedule")
			{
				schedule.GET("", h.Schedule.AllRange)
				schedule.GET("/statuses", h.Schedule.Statuses)
				schedule.GET("/devices/:id", h.Schedule.DeviceDay)
				schedule.GET("/devices/:id/availability", h.Reservation.Availability)
				schedule.GET("/labs/:id", h.Schedule.LabRange)
			}

			// 故障报告
			faults := authorized.Group("/faults")
			{
				faults.POST("", h.Fault.Report)
				faults.GET("", staff, h.Fault.List)
				faults.GET("/:id", staff, h.Fault.GetFault)
				faults.POST("/:id/resolve", staff, h.Fault.Resolve)
				faults.POST("/:id/reopen", staff, h.Fault.Reopen)
			}

			// 导出
			export := authorized.Group("/export")
			{
				export.GET("/me", h.Export.ExportMine)
				export.GET("/me/calendar.ics", h.Export.CalendarFeed)
				export.GET("/reservations", staff, h.Export.ExportReservations)
			}

			// 公告管理
			announcements := authorized.Group("/announcements", staff)
			{
				announcements.POST("", h.Announcement.Create)
				announcements.PUT("/:id", h.Announcement.Update)
				announcements.DELETE("/:id", h.Announcement.Delete)
			}

			// 工作人员后台
			admin := authorized.Group("/admin", staff)
			{
				admin.GET("/dashboard", h.Admin.Dashboard)
				admin.GET("/announcements", h.Announcement.ListAll)
				admin.POST("/mail", middleware.RateLimit(limiter, mailRateLimit, mailRateWindow), h.Admin.MassMail)
			}
		}
	}

	return r
}
