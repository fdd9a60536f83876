package repository

import (
	"context"

	"gorm.io/gorm"

	"attendly/backend/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context, semester, department string) ([]model.Course, error)
	ListByInstructor(ctx context.Context, instructorID, semester, department string) ([]model.Course, error)
	ListByStudent(ctx context.Context, studentID, semester, department string) ([]model.Course, error)
}

// courseRepo CourseRepository 的 GORM 实现
type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Course{}).Error
}

func courseFilter(db *gorm.DB, semester, department string) *gorm.DB {
	if semester != "" {
		db = db.Where("courses.semester = ?", semester)
	}
	if department != "" {
		db = db.Where("courses.department = ?", department)
	}
	return db
}

func (r *courseRepo) ListAll(ctx context.Context, semester, department string) ([]model.Course, error) {
	var courses []model.Course
	db := courseFilter(r.db.WithContext(ctx), semester, department)
	err := db.Preload("Instructor").Order("created_at DESC").Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) ListByInstructor(ctx context.Context, instructorID, semester, department string) ([]model.Course, error) {
	var courses []model.Course
	db := courseFilter(r.db.WithContext(ctx), semester, department).
		Where("courses.instructor_id = ?", instructorID)
	err := db.Preload("Instructor").Order("created_at DESC").Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) ListByStudent(ctx context.Context, studentID, semester, department string) ([]model.Course, error) {
	var courses []model.Course
	db := courseFilter(r.db.WithContext(ctx), semester, department).
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.student_id = ?", studentID)
	err := db.Preload("Instructor").Order("courses.created_at DESC").Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}
