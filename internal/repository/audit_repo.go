package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"attendly/backend/internal/model"
)

// AuditRepository 审计日志数据访问接口（只追加）
type AuditRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	List(ctx context.Context, targetType, targetID string, offset, limit int) ([]model.AuditLog, int64, error)
	// ListByTargets 按对象类型和一组对象 ID 查询，课程维度审计报表用
	ListByTargets(ctx context.Context, targetType string, targetIDs []string, action string, from, to *time.Time, limit int) ([]model.AuditLog, error)
}

// auditRepo AuditRepository 的 GORM 实现
type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepo 创建 AuditRepository 实例
func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, log *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditRepo) List(ctx context.Context, targetType, targetID string, offset, limit int) ([]model.AuditLog, int64, error) {
	var list []model.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if targetType != "" {
		db = db.Where("target_type = ?", targetType)
	}
	if targetID != "" {
		db = db.Where("target_id = ?", targetID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *auditRepo) ListByTargets(ctx context.Context, targetType string, targetIDs []string, action string, from, to *time.Time, limit int) ([]model.AuditLog, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}

	db := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id IN ?", targetType, targetIDs)
	if action != "" {
		db = db.Where("action = ?", action)
	}
	if from != nil {
		db = db.Where("created_at >= ?", *from)
	}
	if to != nil {
		db = db.Where("created_at <= ?", *to)
	}

	var list []model.AuditLog
	err := db.Order("created_at DESC").Limit(limit).Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
