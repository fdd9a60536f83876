package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
)

var (
	ErrCourseNotFound    = errors.New("课程不存在")
	ErrCourseInUse       = errors.New("课程存在选课或节次,不能删除")
	ErrNotAnInstructor   = errors.New("instructor_id 不是教师账号")
	ErrNotAStudent       = errors.New("student_id 不是学生账号")
	ErrAlreadyEnrolled   = errors.New("该学生已选此课程")
	ErrNotCourseOwner    = errors.New("只能操作本人课程")
	ErrNotEnrolled       = errors.New("未选该课程")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	Update(ctx context.Context, actor Actor, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Enroll(ctx context.Context, actor Actor, req *dto.EnrollRequest) error
	Get(ctx context.Context, actor Actor, id string) (*dto.CourseResponse, error)
	// List 按角色过滤：ADMIN 全部 / INSTRUCTOR 本人 / STUDENT 已选
	List(ctx context.Context, actor Actor, req *dto.CourseListRequest) ([]dto.CourseResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func courseSnapshot(c *model.Course) map[string]interface{} {
	return map[string]interface{}{
		"title":         c.Title,
		"section":       c.Section,
		"semester":      c.Semester,
		"department":    c.Department,
		"instructor_id": c.InstructorID,
	}
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:           c.ID,
		Title:        c.Title,
		Section:      c.Section,
		Semester:     c.Semester,
		Department:   c.Department,
		InstructorID: c.InstructorID,
		CreatedAt:    fmtTime(c.CreatedAt),
	}
	if c.Instructor != nil {
		resp.InstructorName = c.Instructor.Name
	}
	return resp
}

func (s *courseService) Create(ctx context.Context, actor Actor, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	instructor, err := s.repo.User.GetByID(ctx, req.InstructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAnInstructor
		}
		return nil, err
	}
	if instructor.Role != model.RoleInstructor {
		return nil, ErrNotAnInstructor
	}

	course := &model.Course{
		Title:        req.Title,
		Section:      req.Section,
		Semester:     req.Semester,
		Department:   req.Department,
		InstructorID: req.InstructorID,
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	writeAudit(ctx, s.repo.Audit, s.logger,
		model.AuditTargetCourse, course.ID, model.AuditActionCreate, actor.UserID, nil, courseSnapshot(course))

	course.Instructor = instructor
	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) Update(ctx context.Context, actor Actor, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	before := courseSnapshot(course)

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Section != nil {
		course.Section = req.Section
	}
	if req.Semester != nil {
		course.Semester = *req.Semester
	}
	if req.Department != nil {
		course.Department = *req.Department
	}
	if req.InstructorID != nil && *req.InstructorID != course.InstructorID {
		instructor, err := s.repo.User.GetByID(ctx, *req.InstructorID)
		if err != nil || instructor.Role != model.RoleInstructor {
			return nil, ErrNotAnInstructor
		}
		course.InstructorID = *req.InstructorID
		course.Instructor = instructor
	}

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}

	writeAudit(ctx, s.repo.Audit, s.logger,
		model.AuditTargetCourse, course.ID, model.AuditActionUpdate, actor.UserID, before, courseSnapshot(course))

	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) Delete(ctx context.Context, actor Actor, id string) error {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	enrolled, err := s.repo.Enrollment.CountByCourse(ctx, id)
	if err != nil {
		return err
	}
	sessions, err := s.repo.Session.CountByCourse(ctx, id)
	if err != nil {
		return err
	}
	if enrolled > 0 || sessions > 0 {
		return ErrCourseInUse
	}

	if err := s.repo.Course.Delete(ctx, id); err != nil {
		s.logger.Error("删除课程失败", zap.String("course_id", id), zap.Error(err))
		return err
	}

	writeAudit(ctx, s.repo.Audit, s.logger,
		model.AuditTargetCourse, id, model.AuditActionDelete, actor.UserID, courseSnapshot(course), nil)

	return nil
}

func (s *courseService) Enroll(ctx context.Context, actor Actor, req *dto.EnrollRequest) error {
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	student, err := s.repo.User.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAStudent
		}
		return err
	}
	if student.Role != model.RoleStudent {
		return ErrNotAStudent
	}

	if _, err := s.repo.Enrollment.Get(ctx, req.CourseID, req.StudentID); err == nil {
		return ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	enr := &model.Enrollment{CourseID: req.CourseID, StudentID: req.StudentID}
	if err := s.repo.Enrollment.Create(ctx, enr); err != nil {
		s.logger.Error("选课失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *courseService) Get(ctx context.Context, actor Actor, id string) (*dto.CourseResponse, error) {
	course, err := courseVisible(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) List(ctx context.Context, actor Actor, req *dto.CourseListRequest) ([]dto.CourseResponse, error) {
	var (
		courses []model.Course
		err     error
	)

	switch {
	case actor.IsAdmin():
		courses, err = s.repo.Course.ListAll(ctx, req.Semester, req.Department)
	case actor.IsInstructor():
		courses, err = s.repo.Course.ListByInstructor(ctx, actor.UserID, req.Semester, req.Department)
	default:
		courses, err = s.repo.Course.ListByStudent(ctx, actor.UserID, req.Semester, req.Department)
	}
	if err != nil {
		return nil, err
	}

	out := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, toCourseResponse(&courses[i]))
	}
	return out, nil
}
