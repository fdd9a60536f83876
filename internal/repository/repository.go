package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Course       CourseRepository
	Enrollment   EnrollmentRepository
	Session      SessionRepository
	Attendance   AttendanceRepository
	Excuse       ExcuseRepository
	Appeal       AppealRepository
	Policy       PolicyRepository
	Audit        AuditRepository
	Notification NotificationRepository
	Announcement AnnouncementRepository
	Message      MessageRepository
	Poll         PollRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Course:       NewCourseRepo(db),
		Enrollment:   NewEnrollmentRepo(db),
		Session:      NewSessionRepo(db),
		Attendance:   NewAttendanceRepo(db),
		Excuse:       NewExcuseRepo(db),
		Appeal:       NewAppealRepo(db),
		Policy:       NewPolicyRepo(db),
		Audit:        NewAuditRepo(db),
		Notification: NewNotificationRepo(db),
		Announcement: NewAnnouncementRepo(db),
		Message:      NewMessageRepo(db),
		Poll:         NewPollRepo(db),
	}
}

// ErrRollback 从事务回调返回时强制回滚；Transaction 将其吞掉并返回 nil（试运行场景）
var ErrRollback = errors.New("rollback requested")

// Transaction 在单个数据库事务中执行 fn，fn 收到绑定事务连接的聚合。
// 测试场景下聚合可能没有真实连接（db 为 nil），此时直接执行 fn。
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	var err error
	if r.db == nil {
		err = fn(r)
	} else {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(NewRepository(tx))
		})
	}
	if errors.Is(err, ErrRollback) {
		return nil
	}
	return err
}
