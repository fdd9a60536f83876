package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendly/backend/internal/model"
)

// ExcuseRepository 请假数据访问接口
type ExcuseRepository interface {
	Create(ctx context.Context, excuse *model.ExcuseRequest) error
	GetByID(ctx context.Context, id string) (*model.ExcuseRequest, error)
	// GetByIDForUpdate 行锁读取，仅在事务内调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.ExcuseRequest, error)
	Update(ctx context.Context, excuse *model.ExcuseRequest) error
	FindPending(ctx context.Context, sessionID, studentID string) (*model.ExcuseRequest, error)
	ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.ExcuseRequest, int64, error)
	ListByCourse(ctx context.Context, courseID, status string, offset, limit int) ([]model.ExcuseRequest, int64, error)
}

// excuseRepo ExcuseRepository 的 GORM 实现
type excuseRepo struct {
	db *gorm.DB
}

// NewExcuseRepo 创建 ExcuseRepository 实例
func NewExcuseRepo(db *gorm.DB) ExcuseRepository {
	return &excuseRepo{db: db}
}

func (r *excuseRepo) Create(ctx context.Context, excuse *model.ExcuseRequest) error {
	return r.db.WithContext(ctx).Create(excuse).Error
}

func (r *excuseRepo) GetByID(ctx context.Context, id string) (*model.ExcuseRequest, error) {
	var excuse model.ExcuseRequest
	err := r.db.WithContext(ctx).
		Preload("Session").
		Preload("Student").
		Where("id = ?", id).
		First(&excuse).Error
	if err != nil {
		return nil, err
	}
	return &excuse, nil
}

func (r *excuseRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.ExcuseRequest, error) {
	var excuse model.ExcuseRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&excuse).Error
	if err != nil {
		return nil, err
	}
	return &excuse, nil
}

func (r *excuseRepo) Update(ctx context.Context, excuse *model.ExcuseRequest) error {
	return r.db.WithContext(ctx).Save(excuse).Error
}

func (r *excuseRepo) FindPending(ctx context.Context, sessionID, studentID string) (*model.ExcuseRequest, error) {
	var excuse model.ExcuseRequest
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND student_id = ? AND status = ?", sessionID, studentID, model.ExcusePending).
		First(&excuse).Error
	if err != nil {
		return nil, err
	}
	return &excuse, nil
}

func (r *excuseRepo) ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.ExcuseRequest, int64, error) {
	var list []model.ExcuseRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ExcuseRequest{}).
		Where("student_id = ?", studentID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Session").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *excuseRepo) ListByCourse(ctx context.Context, courseID, status string, offset, limit int) ([]model.ExcuseRequest, int64, error) {
	var list []model.ExcuseRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ExcuseRequest{}).
		Joins("JOIN class_sessions ON class_sessions.id = excuse_requests.session_id").
		Where("class_sessions.course_id = ?", courseID)
	if status != "" {
		db = db.Where("excuse_requests.status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Session").Preload("Student").
		Offset(offset).Limit(limit).
		Order("excuse_requests.created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
