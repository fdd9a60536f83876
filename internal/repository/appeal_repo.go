package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendly/backend/internal/model"
)

// AppealRepository 申诉数据访问接口
type AppealRepository interface {
	Create(ctx context.Context, appeal *model.Appeal) error
	GetByID(ctx context.Context, id string) (*model.Appeal, error)
	// GetByIDForUpdate 行锁读取，仅在事务内调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.Appeal, error)
	Update(ctx context.Context, appeal *model.Appeal) error
	FindPending(ctx context.Context, attendanceID, studentID string) (*model.Appeal, error)
	ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.Appeal, int64, error)
	ListByCourse(ctx context.Context, courseID, status string, offset, limit int) ([]model.Appeal, int64, error)
}

// appealRepo AppealRepository 的 GORM 实现
type appealRepo struct {
	db *gorm.DB
}

// NewAppealRepo 创建 AppealRepository 实例
func NewAppealRepo(db *gorm.DB) AppealRepository {
	return &appealRepo{db: db}
}

func (r *appealRepo) Create(ctx context.Context, appeal *model.Appeal) error {
	return r.db.WithContext(ctx).Create(appeal).Error
}

func (r *appealRepo) GetByID(ctx context.Context, id string) (*model.Appeal, error) {
	var appeal model.Appeal
	err := r.db.WithContext(ctx).
		Preload("Attendance").
		Preload("Attendance.Session").
		Preload("Student").
		Where("id = ?", id).
		First(&appeal).Error
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}

func (r *appealRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Appeal, error) {
	var appeal model.Appeal
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&appeal).Error
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}

func (r *appealRepo) Update(ctx context.Context, appeal *model.Appeal) error {
	return r.db.WithContext(ctx).Save(appeal).Error
}

func (r *appealRepo) FindPending(ctx context.Context, attendanceID, studentID string) (*model.Appeal, error) {
	var appeal model.Appeal
	err := r.db.WithContext(ctx).
		Where("attendance_id = ? AND student_id = ? AND status = ?", attendanceID, studentID, model.AppealPending).
		First(&appeal).Error
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}

func (r *appealRepo) ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.Appeal, int64, error) {
	var list []model.Appeal
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Appeal{}).
		Where("student_id = ?", studentID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Attendance").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *appealRepo) ListByCourse(ctx context.Context, courseID, status string, offset, limit int) ([]model.Appeal, int64, error) {
	var list []model.Appeal
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Appeal{}).
		Joins("JOIN attendances ON attendances.id = appeals.attendance_id").
		Joins("JOIN class_sessions ON class_sessions.id = attendances.session_id").
		Where("class_sessions.course_id = ?", courseID)
	if status != "" {
		db = db.Where("appeals.status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Attendance").Preload("Student").
		Offset(offset).Limit(limit).
		Order("appeals.created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
