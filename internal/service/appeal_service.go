package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
)

var (
	ErrAppealNotFound         = errors.New("申诉不存在")
	ErrAppealPendingExists    = errors.New("已有待处理的申诉")
	ErrAppealAlreadyProcessed = errors.New("申诉已处理")
	ErrNotYourAttendance      = errors.New("只能对本人的考勤记录提出申诉")
)

// AppealService 考勤申诉业务接口
type AppealService interface {
	Create(ctx context.Context, actor Actor, attendanceID string, req *dto.CreateAppealRequest) (*dto.AppealResponse, error)
	// Resolve 处理申诉：apply_attendance_status 优先于学生请求的状态；驳回不改考勤
	Resolve(ctx context.Context, actor Actor, id string, req *dto.ResolveAppealRequest) (*dto.AppealResponse, error)
	Get(ctx context.Context, actor Actor, id string) (*dto.AppealResponse, error)
	List(ctx context.Context, actor Actor, req *dto.AppealListRequest) ([]dto.AppealResponse, int64, error)
	ListMine(ctx context.Context, actor Actor, req *dto.AppealListRequest) ([]dto.AppealResponse, int64, error)
}

type appealService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewAppealService 创建 AppealService 实例
func NewAppealService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) AppealService {
	return &appealService{repo: repo, notifier: notifier, logger: logger}
}

func toAppealResponse(a *model.Appeal) dto.AppealResponse {
	resp := dto.AppealResponse{
		ID:              a.ID,
		AttendanceID:    a.AttendanceID,
		StudentID:       a.StudentID,
		Message:         a.Message,
		RequestedStatus: a.RequestedStatus,
		Status:          a.Status,
		ReviewedBy:      a.ReviewedBy,
		ReviewedAt:      fmtTimePtr(a.ReviewedAt),
		ReplyText:       a.ReplyText,
		CreatedAt:       fmtTime(a.CreatedAt),
	}
	if a.Student != nil {
		resp.StudentName = a.Student.Name
	}
	return resp
}

func (s *appealService) Create(ctx context.Context, actor Actor, attendanceID string, req *dto.CreateAppealRequest) (*dto.AppealResponse, error) {
	att, err := s.repo.Attendance.GetByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	if att.StudentID != actor.UserID {
		return nil, ErrNotYourAttendance
	}
	if req.RequestedStatus != nil && !model.ValidCorrectionStatus(*req.RequestedStatus) {
		return nil, ErrInvalidStatusValue
	}

	if _, err := s.repo.Appeal.FindPending(ctx, attendanceID, actor.UserID); err == nil {
		return nil, ErrAppealPendingExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	appeal := &model.Appeal{
		AttendanceID:    attendanceID,
		StudentID:       actor.UserID,
		Message:         req.Message,
		RequestedStatus: req.RequestedStatus,
		Status:          model.AppealPending,
	}
	if err := s.repo.Appeal.Create(ctx, appeal); err != nil {
		s.logger.Error("创建申诉失败", zap.Error(err))
		return nil, err
	}

	// 旁路通知任课教师
	if att.Session != nil {
		if course, err := s.repo.Course.GetByID(ctx, att.Session.CourseID); err == nil {
			link := fmt.Sprintf("/appeals/%s", appeal.ID)
			s.notifier.Notify(ctx, course.InstructorID, model.NotifyAppealRequested,
				"收到新的考勤申诉",
				fmt.Sprintf("第 %d 周第 %d 次课收到考勤申诉", att.Session.Week, att.Session.Round),
				&link)
		}
	}

	resp := toAppealResponse(appeal)
	return &resp, nil
}

func (s *appealService) Resolve(ctx context.Context, actor Actor, id string, req *dto.ResolveAppealRequest) (*dto.AppealResponse, error) {
	var resolved *model.Appeal
	var session *model.ClassSession
	var course *model.Course

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		appeal, err := tx.Appeal.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppealNotFound
			}
			return err
		}
		if appeal.Status != model.AppealPending {
			return ErrAppealAlreadyProcessed
		}

		att, err := tx.Attendance.GetByID(ctx, appeal.AttendanceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAttendanceNotFound
			}
			return err
		}
		session, err = tx.Session.GetByID(ctx, att.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		course, err = courseForOwner(ctx, tx, actor, session.CourseID)
		if err != nil {
			return err
		}

		beforeStatus := appeal.Status
		beforeReply := appeal.ReplyText

		now := time.Now()
		actorID := actor.UserID
		appeal.Status = req.Status
		appeal.ReviewedBy = &actorID
		appeal.ReviewedAt = &now
		if req.ReplyText != nil {
			appeal.ReplyText = req.ReplyText
		}
		if err := tx.Appeal.Update(ctx, appeal); err != nil {
			return err
		}

		action := model.AuditActionReject
		if req.Status == model.AppealAccepted {
			action = model.AuditActionAccept
		}
		writeAudit(ctx, tx.Audit, s.logger,
			model.AuditTargetAppeal, appeal.ID, action, actor.UserID,
			map[string]interface{}{"status": beforeStatus, "reply_text": beforeReply},
			map[string]interface{}{"status": appeal.Status, "reply_text": appeal.ReplyText},
		)

		// 接受时才改考勤：处理人指定的状态优先，其次学生请求的状态
		if req.Status == model.AppealAccepted {
			target := req.ApplyAttendanceStatus
			if target == nil {
				target = appeal.RequestedStatus
			}
			if target != nil {
				if !model.ValidCorrectionStatus(*target) {
					return ErrInvalidStatusValue
				}
				if att.Status != *target {
					beforeAtt := att.Status
					att.Status = *target
					if att.CheckedAt == nil {
						att.CheckedAt = &now
					}
					att.UpdatedBy = &actorID
					if err := tx.Attendance.Update(ctx, att); err != nil {
						return err
					}
					writeAudit(ctx, tx.Audit, s.logger,
						model.AuditTargetAttendance, att.ID, model.AuditActionUpdate, actor.UserID,
						map[string]interface{}{"status": beforeAtt},
						map[string]interface{}{"status": att.Status},
					)
				}
			}
		}

		resolved = appeal
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 结果通知学生（事务外旁路）
	typ := model.NotifyAppealRejected
	title := "考勤申诉被驳回"
	if resolved.Status == model.AppealAccepted {
		typ = model.NotifyAppealAccepted
		title = "考勤申诉已受理"
	}
	msg := fmt.Sprintf("%s 第 %d 周第 %d 次课的考勤申诉已处理", course.Title, session.Week, session.Round)
	if req.ReplyText != nil && *req.ReplyText != "" {
		msg += "\n处理意见: " + *req.ReplyText
	}
	link := fmt.Sprintf("/appeals/%s", resolved.ID)
	s.notifier.Notify(ctx, resolved.StudentID, typ, title, msg, &link)

	resp := toAppealResponse(resolved)
	return &resp, nil
}

func (s *appealService) Get(ctx context.Context, actor Actor, id string) (*dto.AppealResponse, error) {
	appeal, err := s.repo.Appeal.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppealNotFound
		}
		return nil, err
	}

	if actor.IsStudent() && appeal.StudentID != actor.UserID {
		return nil, ErrAppealNotFound
	}
	if actor.IsInstructor() && appeal.Attendance != nil && appeal.Attendance.Session != nil {
		if _, err := courseForOwner(ctx, s.repo, actor, appeal.Attendance.Session.CourseID); err != nil {
			return nil, err
		}
	}

	resp := toAppealResponse(appeal)
	return &resp, nil
}

func (s *appealService) List(ctx context.Context, actor Actor, req *dto.AppealListRequest) ([]dto.AppealResponse, int64, error) {
	if req.CourseID == "" {
		return nil, 0, ErrCourseNotFound
	}
	if _, err := courseForOwner(ctx, s.repo, actor, req.CourseID); err != nil {
		return nil, 0, err
	}

	list, total, err := s.repo.Appeal.ListByCourse(ctx, req.CourseID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.AppealResponse, 0, len(list))
	for i := range list {
		out = append(out, toAppealResponse(&list[i]))
	}
	return out, total, nil
}

func (s *appealService) ListMine(ctx context.Context, actor Actor, req *dto.AppealListRequest) ([]dto.AppealResponse, int64, error) {
	list, total, err := s.repo.Appeal.ListByStudent(ctx, actor.UserID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.AppealResponse, 0, len(list))
	for i := range list {
		out = append(out, toAppealResponse(&list[i]))
	}
	return out, total, nil
}
