package repository

import (
	"context"

	"gorm.io/gorm"

	"attendly/backend/internal/model"
)

// SessionRepository 节次数据访问接口
type SessionRepository interface {
	Create(ctx context.Context, session *model.ClassSession) error
	GetByID(ctx context.Context, id string) (*model.ClassSession, error)
	GetByCourseWeekRound(ctx context.Context, courseID string, week, round int) (*model.ClassSession, error)
	Update(ctx context.Context, session *model.ClassSession) error
	ListByCourse(ctx context.Context, courseID string, week int, status string) ([]model.ClassSession, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
	MaxRound(ctx context.Context, courseID string, week int) (int, error)
}

// sessionRepo SessionRepository 的 GORM 实现
type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.ClassSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.ClassSession, error) {
	var session model.ClassSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) GetByCourseWeekRound(ctx context.Context, courseID string, week, round int) (*model.ClassSession, error) {
	var session model.ClassSession
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND week = ? AND round = ?", courseID, week, round).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Update(ctx context.Context, session *model.ClassSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepo) ListByCourse(ctx context.Context, courseID string, week int, status string) ([]model.ClassSession, error) {
	var list []model.ClassSession
	db := r.db.WithContext(ctx).Where("course_id = ?", courseID)
	if week > 0 {
		db = db.Where("week = ?", week)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("week ASC, round ASC").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *sessionRepo) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.ClassSession{}).
		Where("course_id = ?", courseID).
		Count(&total).Error
	return total, err
}

func (r *sessionRepo) MaxRound(ctx context.Context, courseID string, week int) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&model.ClassSession{}).
		Select("MAX(round)").
		Where("course_id = ? AND week = ?", courseID, week).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
