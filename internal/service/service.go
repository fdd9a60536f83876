package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"attendly/backend/config"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
	"attendly/backend/pkg/jwt"
	"attendly/backend/pkg/redis"
)

// Actor 当前请求的主体，由认证中间件解析后传入每个 Service 调用
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin 是否管理员
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// IsInstructor 是否教师
func (a Actor) IsInstructor() bool { return a.Role == model.RoleInstructor }

// IsStudent 是否学生
func (a Actor) IsStudent() bool { return a.Role == model.RoleStudent }

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Course       CourseService
	Session      SessionService
	Calendar     CalendarService
	Attendance   AttendanceService
	Excuse       ExcuseService
	Appeal       AppealService
	Policy       PolicyService
	Risk         RiskService
	Warning      WarningService
	Report       ReportService
	Notification NotificationService
	Announcement AnnouncementService
	Message      MessageService
	Poll         PollService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	notification := NewNotificationService(repo, logger)
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Course:       NewCourseService(repo, logger),
		Session:      NewSessionService(repo, rdb, logger),
		Calendar:     NewCalendarService(repo, logger),
		Attendance:   NewAttendanceService(repo, rdb, logger),
		Excuse:       NewExcuseService(repo, notification, logger),
		Appeal:       NewAppealService(repo, notification, logger),
		Policy:       NewPolicyService(repo, logger),
		Risk:         NewRiskService(repo, logger),
		Warning:      NewWarningService(repo, logger),
		Report:       NewReportService(&cfg.Report, repo, logger),
		Notification: notification,
		Announcement: NewAnnouncementService(repo, notification, logger),
		Message:      NewMessageService(repo, notification, logger),
		Poll:         NewPollService(repo, notification, logger),
	}
}

// ── 公共辅助 ──

// fmtTime RFC3339 时间串
func fmtTime(t time.Time) string { return t.Format(time.RFC3339) }

// fmtTimePtr 可空时间转可空字符串
func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

// writeAudit 追加审计日志，失败只记日志不中断主流程。
// 事务内调用需传入绑定事务的 repo。
func writeAudit(ctx context.Context, repo repository.AuditRepository, logger *zap.Logger,
	targetType, targetID, action, actorID string, before, after interface{}) {
	entry := &model.AuditLog{
		TargetType: targetType,
		TargetID:   targetID,
		Action:     action,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			entry.BeforeValue = b
		}
	}
	if after != nil {
		if b, err := json.Marshal(after); err == nil {
			entry.AfterValue = b
		}
	}
	if err := repo.Create(ctx, entry); err != nil {
		logger.Warn("写入审计日志失败",
			zap.String("target_type", targetType),
			zap.String("target_id", targetID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
