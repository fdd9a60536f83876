package repository

import (
	"context"

	"gorm.io/gorm"

	"attendly/backend/internal/model"
)

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *model.Attendance) error
	GetByID(ctx context.Context, id string) (*model.Attendance, error)
	GetBySessionStudent(ctx context.Context, sessionID, studentID string) (*model.Attendance, error)
	Update(ctx context.Context, attendance *model.Attendance) error
	ListBySession(ctx context.Context, sessionID string) ([]model.Attendance, error)
	// ListByCourse 返回课程全部考勤，按节次 (week, round) 升序，连胜统计依赖该顺序
	ListByCourse(ctx context.Context, courseID string) ([]model.Attendance, error)
	ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]model.Attendance, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Attendance, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, attendance *model.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Session").
		Where("id = ?", id).
		First(&att).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attendanceRepo) GetBySessionStudent(ctx context.Context, sessionID, studentID string) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND student_id = ?", sessionID, studentID).
		First(&att).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attendanceRepo) Update(ctx context.Context, attendance *model.Attendance) error {
	return r.db.WithContext(ctx).Save(attendance).Error
}

func (r *attendanceRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *attendanceRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Joins("JOIN class_sessions ON class_sessions.id = attendances.session_id").
		Where("class_sessions.course_id = ?", courseID).
		Order("class_sessions.week ASC, class_sessions.round ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *attendanceRepo) ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Session").
		Joins("JOIN class_sessions ON class_sessions.id = attendances.session_id").
		Where("attendances.student_id = ? AND class_sessions.course_id = ?", studentID, courseID).
		Order("class_sessions.week ASC, class_sessions.round ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Session").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
