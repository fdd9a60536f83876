package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
	"attendly/backend/pkg/redis"
)

var (
	ErrSessionNotOpen      = errors.New("节次未开放签到")
	ErrRollCallSelfAttend  = errors.New("点名节次不支持学生自助签到")
	ErrWrongCode           = errors.New("签到码不正确")
	ErrNotRollCallSession  = errors.New("不是点名节次")
	ErrAttendanceNotFound  = errors.New("考勤记录不存在")
	ErrInvalidStatusValue  = errors.New("考勤状态取值不合法")
)

// AttendanceService 考勤业务接口
type AttendanceService interface {
	// Attend 学生自助签到，幂等：已有记录只做 0→1 提升与 checked_at 回填
	Attend(ctx context.Context, actor Actor, sessionID string, req *dto.AttendRequest) (*dto.AttendanceResponse, error)
	Summary(ctx context.Context, actor Actor, sessionID string) (*dto.SessionSummaryResponse, error)
	RollCallList(ctx context.Context, actor Actor, sessionID string) (*dto.RollCallListResponse, error)
	RollCallUpdate(ctx context.Context, actor Actor, sessionID string, req *dto.UpdateRollCallRequest) (*dto.RollCallResult, error)
	// Correct 教师修正为 1..4，始终写审计
	Correct(ctx context.Context, actor Actor, attendanceID string, req *dto.CorrectAttendanceRequest) (*dto.AttendanceResponse, error)
	MyAttendance(ctx context.Context, actor Actor, courseID string) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, rdb: rdb, logger: logger}
}

func toAttendanceResponse(a *model.Attendance) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		ID:        a.ID,
		SessionID: a.SessionID,
		StudentID: a.StudentID,
		Status:    a.Status,
		CheckedAt: fmtTimePtr(a.CheckedAt),
		UpdatedBy: a.UpdatedBy,
	}
}

func (s *attendanceService) Attend(ctx context.Context, actor Actor, sessionID string, req *dto.AttendRequest) (*dto.AttendanceResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if session.Status != model.SessionOpen {
		return nil, ErrSessionNotOpen
	}
	if session.AttendanceMethod == model.MethodRollCall {
		return nil, ErrRollCallSelfAttend
	}

	if _, err := s.repo.Enrollment.Get(ctx, session.CourseID, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	if session.AttendanceMethod == model.MethodCode {
		expected := ""
		if session.Code != nil {
			expected = *session.Code
		}
		// 优先走 Redis 缓存，未命中回退数据库中的码
		if s.rdb != nil {
			if cached, err := s.rdb.GetCheckInCode(ctx, session.ID); err == nil && cached != "" {
				expected = cached
			}
		}
		if expected == "" || req.Code != expected {
			return nil, ErrWrongCode
		}
	}

	now := time.Now()
	att, err := s.repo.Attendance.GetBySessionStudent(ctx, session.ID, actor.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		att = &model.Attendance{
			SessionID: session.ID,
			StudentID: actor.UserID,
			Status:    model.AttendancePresent,
			CheckedAt: &now,
		}
		if err := s.repo.Attendance.Create(ctx, att); err != nil {
			s.logger.Error("创建考勤失败", zap.Error(err))
			return nil, err
		}
	} else {
		changed := false
		if att.CheckedAt == nil {
			att.CheckedAt = &now
			changed = true
		}
		if att.Status == model.AttendanceUnknown {
			att.Status = model.AttendancePresent
			changed = true
		}
		if changed {
			if err := s.repo.Attendance.Update(ctx, att); err != nil {
				s.logger.Error("更新考勤失败", zap.Error(err))
				return nil, err
			}
		}
	}

	resp := toAttendanceResponse(att)
	return &resp, nil
}

func (s *attendanceService) Summary(ctx context.Context, actor Actor, sessionID string) (*dto.SessionSummaryResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if _, err := courseForOwner(ctx, s.repo, actor, session.CourseID); err != nil {
		return nil, err
	}

	list, err := s.repo.Attendance.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := &dto.SessionSummaryResponse{
		SessionID: sessionID,
		Count:     len(list),
		List:      make([]dto.AttendanceResponse, 0, len(list)),
	}
	for i := range list {
		switch list[i].Status {
		case model.AttendancePresent:
			resp.Summary.Present++
		case model.AttendanceLate:
			resp.Summary.Late++
		case model.AttendanceAbsent:
			resp.Summary.Absent++
		case model.AttendanceExcused:
			resp.Summary.Excused++
		default:
			resp.Summary.Unknown++
		}
		resp.List = append(resp.List, toAttendanceResponse(&list[i]))
	}
	return resp, nil
}

func (s *attendanceService) RollCallList(ctx context.Context, actor Actor, sessionID string) (*dto.RollCallListResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if _, err := courseForOwner(ctx, s.repo, actor, session.CourseID); err != nil {
		return nil, err
	}
	if session.AttendanceMethod != model.MethodRollCall {
		return nil, ErrNotRollCallSession
	}

	enrollments, err := s.repo.Enrollment.ListByCourse(ctx, session.CourseID)
	if err != nil {
		return nil, err
	}
	attends, err := s.repo.Attendance.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	attMap := make(map[string]*model.Attendance, len(attends))
	for i := range attends {
		attMap[attends[i].StudentID] = &attends[i]
	}

	rows := make([]dto.RollCallRow, 0, len(enrollments))
	for _, enr := range enrollments {
		row := dto.RollCallRow{StudentID: enr.StudentID}
		if enr.Student != nil {
			row.Name = enr.Student.Name
			row.Email = enr.Student.Email
			row.Department = enr.Student.Department
		}
		if a, ok := attMap[enr.StudentID]; ok {
			row.Status = a.Status
			row.CheckedAt = fmtTimePtr(a.CheckedAt)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StudentID < rows[j].StudentID })

	return &dto.RollCallListResponse{
		SessionID: sessionID,
		CourseID:  session.CourseID,
		Count:     len(rows),
		List:      rows,
	}, nil
}

// RollCallUpdate 批量保存点名结果。
// 非法状态或非选课学生跳过并计数；合法条目无条件覆盖；单事务；不写审计。
func (s *attendanceService) RollCallUpdate(ctx context.Context, actor Actor, sessionID string, req *dto.UpdateRollCallRequest) (*dto.RollCallResult, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if _, err := courseForOwner(ctx, s.repo, actor, session.CourseID); err != nil {
		return nil, err
	}
	if session.AttendanceMethod != model.MethodRollCall {
		return nil, ErrNotRollCallSession
	}

	enrollments, err := s.repo.Enrollment.ListByCourse(ctx, session.CourseID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]bool, len(enrollments))
	for _, enr := range enrollments {
		enrolled[enr.StudentID] = true
	}

	result := &dto.RollCallResult{}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		now := time.Now()
		for _, item := range req.Items {
			if !model.ValidAttendanceStatus(item.Status) || !enrolled[item.StudentID] {
				result.Skipped++
				continue
			}

			actorID := actor.UserID
			att, err := tx.Attendance.GetBySessionStudent(ctx, sessionID, item.StudentID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				att = &model.Attendance{
					SessionID: sessionID,
					StudentID: item.StudentID,
					Status:    item.Status,
					CheckedAt: &now,
					UpdatedBy: &actorID,
				}
				if err := tx.Attendance.Create(ctx, att); err != nil {
					return err
				}
				result.Created++
				continue
			}

			att.Status = item.Status
			if att.CheckedAt == nil {
				att.CheckedAt = &now
			}
			att.UpdatedBy = &actorID
			if err := tx.Attendance.Update(ctx, att); err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("批量点名失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (s *attendanceService) Correct(ctx context.Context, actor Actor, attendanceID string, req *dto.CorrectAttendanceRequest) (*dto.AttendanceResponse, error) {
	if !model.ValidCorrectionStatus(req.Status) {
		return nil, ErrInvalidStatusValue
	}

	att, err := s.repo.Attendance.GetByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	if att.Session == nil {
		return nil, ErrSessionNotFound
	}
	if _, err := courseForOwner(ctx, s.repo, actor, att.Session.CourseID); err != nil {
		return nil, err
	}

	before := att.Status
	actorID := actor.UserID
	att.Status = req.Status
	att.UpdatedBy = &actorID

	if err := s.repo.Attendance.Update(ctx, att); err != nil {
		s.logger.Error("修正考勤失败", zap.String("attendance_id", attendanceID), zap.Error(err))
		return nil, err
	}

	// 修正必须留痕，即使状态未变
	writeAudit(ctx, s.repo.Audit, s.logger,
		model.AuditTargetAttendance, att.ID, model.AuditActionUpdate, actor.UserID,
		map[string]interface{}{"status": before},
		map[string]interface{}{"status": att.Status},
	)

	resp := toAttendanceResponse(att)
	return &resp, nil
}

func (s *attendanceService) MyAttendance(ctx context.Context, actor Actor, courseID string) ([]dto.AttendanceResponse, error) {
	var (
		list []model.Attendance
		err  error
	)
	if courseID != "" {
		list, err = s.repo.Attendance.ListByStudentCourse(ctx, actor.UserID, courseID)
	} else {
		list, err = s.repo.Attendance.ListByStudent(ctx, actor.UserID)
	}
	if err != nil {
		return nil, err
	}

	out := make([]dto.AttendanceResponse, 0, len(list))
	for i := range list {
		out = append(out, toAttendanceResponse(&list[i]))
	}
	return out, nil
}
