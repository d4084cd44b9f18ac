package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classconnect/backend/config"
	"classconnect/backend/internal/api/handler"
	"classconnect/backend/internal/api/middleware"
	"classconnect/backend/internal/model"
	"classconnect/backend/pkg/jwt"
	"classconnect/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录/注册附加限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Register)
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			authorized.PUT("/users/me", h.User.UpdateProfile)

			// 科目模块
			subjects := authorized.Group("/subjects")
			{
				subjects.GET("", h.Subject.List)
				subjects.POST("", middleware.RoleAuth(model.RoleAdmin), h.Subject.Create)
				subjects.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Subject.Update)
				subjects.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Subject.Delete)
			}

			// 导师模块
			tutors := authorized.Group("/tutors")
			{
				tutors.GET("", h.Tutor.Search)
				tutors.GET("/:id", h.Tutor.GetProfile)
				tutors.GET("/:id/slots", h.Availability.ResolveSlots)
				tutors.PUT("/me/profile", middleware.RoleAuth(model.RoleTutor), h.Tutor.UpsertProfile)
			}

			// 可用时间模块（导师维护）
			availability := authorized.Group("/availability")
			availability.Use(middleware.RoleAuth(model.RoleTutor))
			{
				availability.POST("/rules", h.Availability.CreateRule)
				availability.GET("/rules", h.Availability.ListRules)
				availability.PUT("/rules/:id", h.Availability.UpdateRule)
				availability.DELETE("/rules/:id", h.Availability.DeleteRule)
				availability.POST("/exceptions", h.Availability.CreateException)
				availability.GET("/exceptions", h.Availability.ListExceptions)
				availability.DELETE("/exceptions/:id", h.Availability.DeleteException)
			}

			// 预约模块
			requests := authorized.Group("/requests")
			{
				requests.POST("", middleware.RoleAuth(model.RoleStudent), h.Booking.Create)
				requests.GET("", h.Booking.List)
				requests.GET("/:id", h.Booking.Get)
				requests.POST("/:id/respond", middleware.RoleAuth(model.RoleTutor), h.Booking.Respond)
				requests.POST("/:id/cancel", middleware.RoleAuth(model.RoleStudent), h.Booking.Cancel)
			}

			// 课程模块
			lessons := authorized.Group("/lessons")
			{
				lessons.GET("", h.Lesson.List)
				lessons.GET("/:id", h.Lesson.Get)
				lessons.PATCH("/:id/status", h.Lesson.UpdateStatus)
			}

			// 作业模块
			homeworks := authorized.Group("/homeworks")
			{
				homeworks.GET("", h.Homework.List)
				homeworks.GET("/:id", h.Homework.Get)
				homeworks.POST("", middleware.RoleAuth(model.RoleTutor), h.Homework.Assign)
				homeworks.POST("/:id/submit", middleware.RoleAuth(model.RoleStudent), h.Homework.Submit)
				homeworks.POST("/:id/review", middleware.RoleAuth(model.RoleTutor), h.Homework.Review)
			}

			// 私信模块
			messages := authorized.Group("/messages")
			{
				messages.POST("", h.Message.Send)
				messages.GET("/conversations", h.Message.Conversations)
				messages.GET("/conversations/:peer_id", h.Message.Conversation)
				messages.GET("/unread_count", h.Message.UnreadCount)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.POST("/:id/read", h.Notification.MarkRead)
				notifications.POST("/read_all", h.Notification.MarkAllRead)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/lessons", middleware.RoleAuth(model.RoleTutor), h.Export.ExportLessons)
				export.GET("/calendar", h.Export.ExportCalendar)
			}
		}
	}

	return r
}
