package repository

import (
	"context"

	"gorm.io/gorm"

	"attendly/backend/internal/model"
)

// MessageRepository 私信数据访问接口
type MessageRepository interface {
	Create(ctx context.Context, m *model.PersonalMessage) error
	GetByID(ctx context.Context, id string) (*model.PersonalMessage, error)
	Update(ctx context.Context, m *model.PersonalMessage) error
	ListInbox(ctx context.Context, receiverID string, offset, limit int) ([]model.PersonalMessage, int64, error)
	ListSent(ctx context.Context, senderID string, offset, limit int) ([]model.PersonalMessage, int64, error)
}

// messageRepo MessageRepository 的 GORM 实现
type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建 MessageRepository 实例
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, m *model.PersonalMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepo) GetByID(ctx context.Context, id string) (*model.PersonalMessage, error) {
	var m model.PersonalMessage
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepo) Update(ctx context.Context, m *model.PersonalMessage) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *messageRepo) ListInbox(ctx context.Context, receiverID string, offset, limit int) ([]model.PersonalMessage, int64, error) {
	var list []model.PersonalMessage
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PersonalMessage{}).
		Where("receiver_id = ?", receiverID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Sender").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *messageRepo) ListSent(ctx context.Context, senderID string, offset, limit int) ([]model.PersonalMessage, int64, error) {
	var list []model.PersonalMessage
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PersonalMessage{}).
		Where("sender_id = ?", senderID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Receiver").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
