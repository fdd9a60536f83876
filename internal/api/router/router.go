package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendly/backend/config"
	"attendly/backend/internal/api/handler"
	"attendly/backend/internal/api/middleware"
	"attendly/backend/internal/model"
	"attendly/backend/pkg/jwt"
	"attendly/backend/pkg/redis"
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
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	staffOnly := middleware.RoleAuth(model.RoleAdmin, model.RoleInstructor)
	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户模块
			users := authorized.Group("/users", adminOnly)
			{
				users.POST("", h.User.Create)
				users.GET("", h.User.List)
				users.GET("/:id", h.User.Get)
				users.PATCH("/:id", h.User.Update)
				users.PUT("/:id/role", h.User.UpdateRole)
				users.DELETE("/:id", h.User.Delete)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.POST("", adminOnly, h.Course.Create)
				courses.GET("", h.Course.List)
				courses.GET("/:id", h.Course.Get)
				courses.PATCH("/:id", staffOnly, h.Course.Update)
				courses.DELETE("/:id", adminOnly, h.Course.Delete)

				// 节次（课程维度）
				courses.POST("/:id/sessions", staffOnly, h.Session.Create)
				courses.GET("/:id/sessions", h.Session.List)
				courses.POST("/:id/sessions/generate", staffOnly, h.Session.Generate)
				courses.GET("/:id/sessions.ics", h.Session.ExportICS)

				// 考勤政策与出席分
				courses.GET("/:id/policy", staffOnly, h.Policy.Get)
				courses.PUT("/:id/policy", staffOnly, h.Policy.Upsert)
				courses.GET("/:id/score/attendance", staffOnly, h.Policy.Score)

				// 空闲时间投票（课程维度）
				courses.POST("/:id/polls", staffOnly, h.Poll.Create)
				courses.GET("/:id/polls", h.Poll.List)
			}

			// 选课（ADMIN 代注册）
			authorized.POST("/enrollments", adminOnly, h.Course.Enroll)

			// 节次模块
			sessions := authorized.Group("/sessions")
			{
				sessions.GET("/:id", h.Session.Get)
				sessions.POST("/:id/open", staffOnly, h.Session.Open)
				sessions.POST("/:id/pause", staffOnly, h.Session.Pause)
				sessions.POST("/:id/close", staffOnly, h.Session.Close)

				// 签到与点名
				sessions.POST("/:id/attend", middleware.RoleAuth(model.RoleStudent), h.Attendance.Attend)
				sessions.GET("/:id/summary", staffOnly, h.Attendance.Summary)
				sessions.GET("/:id/rollcall", staffOnly, h.Attendance.RollCallList)
				sessions.PATCH("/:id/rollcall", staffOnly, h.Attendance.RollCallUpdate)

				// 请假申请
				sessions.POST("/:id/excuses", middleware.RoleAuth(model.RoleStudent), h.Excuse.Create)
			}

			// 考勤记录模块
			attendance := authorized.Group("/attendance")
			{
				attendance.GET("/my", h.Attendance.MyAttendance)
				attendance.PATCH("/:id", staffOnly, h.Attendance.Correct)
				attendance.POST("/:id/appeals", middleware.RoleAuth(model.RoleStudent), h.Appeal.Create)
			}

			// 请假模块
			excuses := authorized.Group("/excuses")
			{
				excuses.GET("/my", h.Excuse.ListMine)
				excuses.GET("", staffOnly, h.Excuse.List)
				excuses.GET("/:id", h.Excuse.Get)
				excuses.PATCH("/:id", staffOnly, h.Excuse.Resolve)
			}

			// 申诉模块
			appeals := authorized.Group("/appeals")
			{
				appeals.GET("/my", h.Appeal.ListMine)
				appeals.GET("", staffOnly, h.Appeal.List)
				appeals.GET("/:id", h.Appeal.Get)
				appeals.PATCH("/:id", staffOnly, h.Appeal.Resolve)
			}

			// 报表模块
			reports := authorized.Group("/reports", staffOnly)
			{
				reports.GET("/attendance", h.Report.Attendance)
				reports.GET("/attendance.xlsx", h.Report.AttendanceXLSX)
				reports.GET("/risk", h.Report.Risk)
				reports.GET("/excuses", h.Report.Excuses)
				reports.GET("/audits", h.Report.Audits)
			}

			// 缺勤预警批处理
			authorized.POST("/warnings/run", staffOnly, h.Report.RunWarnings)

			// 原始审计列表
			authorized.GET("/audits", adminOnly, h.Report.AuditList)

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.PATCH("/:id/read", h.Notification.MarkRead)
				notifications.POST("/read", h.Notification.MarkReadBulk)
			}

			// 公告模块
			announcements := authorized.Group("/announcements")
			{
				announcements.POST("", staffOnly, h.Announcement.Create)
				announcements.GET("", h.Announcement.List)
				announcements.POST("/:id/read", h.Announcement.MarkRead)
			}

			// 私信模块
			messages := authorized.Group("/messages")
			{
				messages.POST("", h.Message.Send)
				messages.GET("/inbox", h.Message.Inbox)
				messages.GET("/sent", h.Message.Sent)
				messages.GET("/:id", h.Message.Read)
			}

			// 投票模块
			polls := authorized.Group("/polls")
			{
				polls.GET("/:id", h.Poll.Get)
				polls.POST("/:id/vote", middleware.RoleAuth(model.RoleStudent), h.Poll.Vote)
				polls.POST("/:id/close", staffOnly, h.Poll.Close)
				polls.GET("/:id/results", h.Poll.Results)
			}
		}
	}

	return r
}
