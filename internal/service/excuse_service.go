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
	ErrExcuseNotFound         = errors.New("请假单不存在")
	ErrExcusePendingExists    = errors.New("已有待处理的请假申请")
	ErrExcuseAlreadyProcessed = errors.New("请假申请已处理")
)

// ExcuseService 请假业务接口
type ExcuseService interface {
	Create(ctx context.Context, actor Actor, sessionID string, req *dto.CreateExcuseRequest) (*dto.ExcuseResponse, error)
	// Resolve 审批：行锁 + 仅 PENDING 可处理；批准会把考勤置为公假并审计
	Resolve(ctx context.Context, actor Actor, id string, req *dto.ResolveExcuseRequest) (*dto.ExcuseResponse, error)
	Get(ctx context.Context, actor Actor, id string) (*dto.ExcuseResponse, error)
	List(ctx context.Context, actor Actor, req *dto.ExcuseListRequest) ([]dto.ExcuseResponse, int64, error)
	ListMine(ctx context.Context, actor Actor, req *dto.ExcuseListRequest) ([]dto.ExcuseResponse, int64, error)
}

type excuseService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewExcuseService 创建 ExcuseService 实例
func NewExcuseService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) ExcuseService {
	return &excuseService{repo: repo, notifier: notifier, logger: logger}
}

func toExcuseResponse(e *model.ExcuseRequest) dto.ExcuseResponse {
	resp := dto.ExcuseResponse{
		ID:         e.ID,
		SessionID:  e.SessionID,
		StudentID:  e.StudentID,
		ReasonCode: e.ReasonCode,
		ReasonText: e.ReasonText,
		FilePath:   e.FilePath,
		Status:     e.Status,
		ReviewedBy: e.ReviewedBy,
		ReviewedAt: fmtTimePtr(e.ReviewedAt),
		ReplyText:  e.ReplyText,
		CreatedAt:  fmtTime(e.CreatedAt),
	}
	if e.Student != nil {
		resp.StudentName = e.Student.Name
	}
	return resp
}

func (s *excuseService) Create(ctx context.Context, actor Actor, sessionID string, req *dto.CreateExcuseRequest) (*dto.ExcuseResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if _, err := s.repo.Enrollment.Get(ctx, session.CourseID, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	if _, err := s.repo.Excuse.FindPending(ctx, sessionID, actor.UserID); err == nil {
		return nil, ErrExcusePendingExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	excuse := &model.ExcuseRequest{
		SessionID:  sessionID,
		StudentID:  actor.UserID,
		ReasonCode: req.ReasonCode,
		ReasonText: req.ReasonText,
		FilePath:   req.FilePath,
		Status:     model.ExcusePending,
	}
	if err := s.repo.Excuse.Create(ctx, excuse); err != nil {
		s.logger.Error("创建请假申请失败", zap.Error(err))
		return nil, err
	}

	// 旁路通知任课教师
	if course, err := s.repo.Course.GetByID(ctx, session.CourseID); err == nil {
		link := fmt.Sprintf("/excuses/%s", excuse.ID)
		s.notifier.Notify(ctx, course.InstructorID, model.NotifyExcuseRequested,
			"收到新的请假申请",
			fmt.Sprintf("第 %d 周第 %d 次课收到请假申请", session.Week, session.Round),
			&link)
	}

	resp := toExcuseResponse(excuse)
	return &resp, nil
}

func (s *excuseService) Resolve(ctx context.Context, actor Actor, id string, req *dto.ResolveExcuseRequest) (*dto.ExcuseResponse, error) {
	var resolved *model.ExcuseRequest
	var course *model.Course
	var session *model.ClassSession

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		excuse, err := tx.Excuse.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExcuseNotFound
			}
			return err
		}
		if excuse.Status != model.ExcusePending {
			return ErrExcuseAlreadyProcessed
		}

		session, err = tx.Session.GetByID(ctx, excuse.SessionID)
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

		beforeStatus := excuse.Status
		beforeReply := excuse.ReplyText

		now := time.Now()
		actorID := actor.UserID
		excuse.Status = req.Status
		excuse.ReviewedBy = &actorID
		excuse.ReviewedAt = &now
		if req.ReplyText != nil {
			excuse.ReplyText = req.ReplyText
		}
		if err := tx.Excuse.Update(ctx, excuse); err != nil {
			return err
		}

		action := model.AuditActionReject
		if req.Status == model.ExcuseApproved {
			action = model.AuditActionApprove
		}
		writeAudit(ctx, tx.Audit, s.logger,
			model.AuditTargetExcuse, excuse.ID, action, actor.UserID,
			map[string]interface{}{"status": beforeStatus, "reply_text": beforeReply},
			map[string]interface{}{"status": excuse.Status, "reply_text": excuse.ReplyText},
		)

		// 批准时把考勤置为公假；状态实际变化才写 ATTENDANCE 审计
		if req.Status == model.ExcuseApproved {
			att, err := tx.Attendance.GetBySessionStudent(ctx, session.ID, excuse.StudentID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				att = &model.Attendance{
					SessionID: session.ID,
					StudentID: excuse.StudentID,
					Status:    model.AttendanceExcused,
					CheckedAt: &now,
					UpdatedBy: &actorID,
				}
				if err := tx.Attendance.Create(ctx, att); err != nil {
					return err
				}
				writeAudit(ctx, tx.Audit, s.logger,
					model.AuditTargetAttendance, att.ID, model.AuditActionUpdate, actor.UserID,
					map[string]interface{}{"status": model.AttendanceUnknown},
					map[string]interface{}{"status": att.Status},
				)
			} else if att.Status != model.AttendanceExcused {
				beforeAtt := att.Status
				att.Status = model.AttendanceExcused
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

		resolved = excuse
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 结果通知学生（事务外旁路）
	typ := model.NotifyExcuseRejected
	title := "请假申请被驳回"
	if resolved.Status == model.ExcuseApproved {
		typ = model.NotifyExcuseApproved
		title = "请假申请已批准"
	}
	msg := fmt.Sprintf("%s 第 %d 周第 %d 次课的请假申请已处理", course.Title, session.Week, session.Round)
	if req.ReplyText != nil && *req.ReplyText != "" {
		msg += "\n处理意见: " + *req.ReplyText
	}
	link := fmt.Sprintf("/excuses/%s", resolved.ID)
	s.notifier.Notify(ctx, resolved.StudentID, typ, title, msg, &link)

	resp := toExcuseResponse(resolved)
	return &resp, nil
}

func (s *excuseService) Get(ctx context.Context, actor Actor, id string) (*dto.ExcuseResponse, error) {
	excuse, err := s.repo.Excuse.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExcuseNotFound
		}
		return nil, err
	}

	// 学生只能看本人；教师限本人课程
	if actor.IsStudent() && excuse.StudentID != actor.UserID {
		return nil, ErrExcuseNotFound
	}
	if actor.IsInstructor() && excuse.Session != nil {
		if _, err := courseForOwner(ctx, s.repo, actor, excuse.Session.CourseID); err != nil {
			return nil, err
		}
	}

	resp := toExcuseResponse(excuse)
	return &resp, nil
}

func (s *excuseService) List(ctx context.Context, actor Actor, req *dto.ExcuseListRequest) ([]dto.ExcuseResponse, int64, error) {
	if req.CourseID == "" {
		return nil, 0, ErrCourseNotFound
	}
	if _, err := courseForOwner(ctx, s.repo, actor, req.CourseID); err != nil {
		return nil, 0, err
	}

	list, total, err := s.repo.Excuse.ListByCourse(ctx, req.CourseID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.ExcuseResponse, 0, len(list))
	for i := range list {
		out = append(out, toExcuseResponse(&list[i]))
	}
	return out, total, nil
}

func (s *excuseService) ListMine(ctx context.Context, actor Actor, req *dto.ExcuseListRequest) ([]dto.ExcuseResponse, int64, error) {
	list, total, err := s.repo.Excuse.ListByStudent(ctx, actor.UserID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.ExcuseResponse, 0, len(list))
	for i := range list {
		out = append(out, toExcuseResponse(&list[i]))
	}
	return out, total, nil
}
