package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
)

var ErrNoWarningTarget = errors.New("请指定 course_id 或 semester+department")

// WarningService 缺勤预警批处理业务接口
type WarningService interface {
	// Run 对选中课程逐生计算折算缺席并按阈值分级发通知；dry_run 只算不写
	Run(ctx context.Context, actor Actor, req *dto.WarningRunRequest) (*dto.WarningRunResponse, error)
}

type warningService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWarningService 创建 WarningService 实例
func NewWarningService(repo *repository.Repository, logger *zap.Logger) WarningService {
	return &warningService{repo: repo, logger: logger}
}

// decideLevel 最高档优先；未达 warn 阈值返回空串
func decideLevel(absEq int, p *model.AttendancePolicy) string {
	switch {
	case absEq >= p.FailAbsences:
		return "FAIL"
	case absEq >= p.DangerAbsences:
		return "DANGER"
	case absEq >= p.WarnAbsences:
		return "WARN"
	}
	return ""
}

func warningType(level string) string {
	switch level {
	case "WARN":
		return model.NotifyAbsenceWarn
	case "DANGER":
		return model.NotifyAbsenceDanger
	}
	return model.NotifyAbsenceFail
}

func warningTitle(level string) string {
	switch level {
	case "WARN":
		return "缺勤累计警告"
	case "DANGER":
		return "缺勤累计危险"
	}
	return "缺勤累计超限"
}

func (s *warningService) Run(ctx context.Context, actor Actor, req *dto.WarningRunRequest) (*dto.WarningRunResponse, error) {
	resp := &dto.WarningRunResponse{DryRun: req.DryRun, Items: []dto.WarningItem{}}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var courses []model.Course
		var err error
		switch {
		case req.CourseID != nil:
			course, gerr := courseForOwner(ctx, tx, actor, *req.CourseID)
			if gerr != nil {
				return gerr
			}
			courses = []model.Course{*course}
		case req.Semester != nil || req.Department != nil:
			semester, department := "", ""
			if req.Semester != nil {
				semester = *req.Semester
			}
			if req.Department != nil {
				department = *req.Department
			}
			if actor.IsInstructor() {
				courses, err = tx.Course.ListByInstructor(ctx, actor.UserID, semester, department)
			} else {
				courses, err = tx.Course.ListAll(ctx, semester, department)
			}
			if err != nil {
				return err
			}
		default:
			return ErrNoWarningTarget
		}
		resp.Courses = len(courses)

		for ci := range courses {
			course := &courses[ci]
			policy, _, err := effectivePolicy(ctx, tx, course.ID)
			if err != nil {
				return err
			}

			enrollments, err := tx.Enrollment.ListByCourse(ctx, course.ID)
			if err != nil {
				return err
			}
			atts, err := tx.Attendance.ListByCourse(ctx, course.ID)
			if err != nil {
				return err
			}
			counts := tallyByStudent(atts)

			for ei := range enrollments {
				e := &enrollments[ei]
				resp.Checked++
				c := counts[e.StudentID]
				if c == nil {
					continue
				}

				absEq := c.absent
				if policy.LateToAbsent > 0 {
					absEq += c.late / policy.LateToAbsent
				}
				level := decideLevel(absEq, policy)
				if level == "" {
					continue
				}

				item := dto.WarningItem{
					CourseID:      course.ID,
					CourseTitle:   course.Title,
					StudentID:     e.StudentID,
					Absent:        c.absent,
					Late:          c.late,
					AbsEquivalent: absEq,
					Level:         level,
				}
				if e.Student != nil {
					item.StudentName = e.Student.Name
				}

				typ := warningType(level)
				title := warningTitle(level)
				link := fmt.Sprintf("/courses/%s", course.ID)
				msg := fmt.Sprintf("%s (%s, %s)\n当前折算缺席 %d 次 (缺席 %d / 迟到 %d, 迟到 %d 次=缺席 1 次)\n等级: %s\n请联系任课教师。",
					course.Title, course.Semester, course.Department,
					absEq, c.absent, c.late, policy.LateToAbsent, level)

				// 同 (userId,type,title,linkUrl) 已存在则跳过
				exists, err := tx.Notification.Exists(ctx, e.StudentID, typ, title, &link)
				if err != nil {
					return err
				}
				if exists {
					resp.Deduped++
					continue
				}

				if err := tx.Notification.Create(ctx, &model.Notification{
					UserID:  e.StudentID,
					Type:    typ,
					Title:   title,
					Message: msg,
					LinkURL: &link,
				}); err != nil {
					return err
				}
				resp.Notified++
				resp.Items = append(resp.Items, item)
			}
		}

		// dry-run：整个事务回滚，计数照常返回
		if req.DryRun {
			return repository.ErrRollback
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
