package handler

import "attendly/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Course       *CourseHandler
	Session      *SessionHandler
	Attendance   *AttendanceHandler
	Excuse       *ExcuseHandler
	Appeal       *AppealHandler
	Policy       *PolicyHandler
	Report       *ReportHandler
	Notification *NotificationHandler
	Announcement *AnnouncementHandler
	Message      *MessageHandler
	Poll         *PollHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Course:       NewCourseHandler(svc.Course),
		Session:      NewSessionHandler(svc.Session, svc.Calendar),
		Attendance:   NewAttendanceHandler(svc.Attendance),
		Excuse:       NewExcuseHandler(svc.Excuse),
		Appeal:       NewAppealHandler(svc.Appeal),
		Policy:       NewPolicyHandler(svc.Policy),
		Report:       NewReportHandler(svc.Report, svc.Risk, svc.Warning),
		Notification: NewNotificationHandler(svc.Notification),
		Announcement: NewAnnouncementHandler(svc.Announcement),
		Message:      NewMessageHandler(svc.Message),
		Poll:         NewPollHandler(svc.Poll),
	}
}
