package repository

import (
	"context"

	"gorm.io/gorm"

	"attendly/backend/internal/model"
)

// AnnouncementRepository 公告数据访问接口
type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) error
	GetByID(ctx context.Context, id string) (*model.Announcement, error)
	// ListVisible 返回全局公告加指定课程范围的公告，置顶优先
	ListVisible(ctx context.Context, courseIDs []string) ([]model.Announcement, error)
	GetRead(ctx context.Context, announcementID, userID string) (*model.AnnouncementRead, error)
	CreateRead(ctx context.Context, read *model.AnnouncementRead) error
	ListReadIDs(ctx context.Context, userID string, announcementIDs []string) ([]string, error)
}

// announcementRepo AnnouncementRepository 的 GORM 实现
type announcementRepo struct {
	db *gorm.DB
}

// NewAnnouncementRepo 创建 AnnouncementRepository 实例
func NewAnnouncementRepo(db *gorm.DB) AnnouncementRepository {
	return &announcementRepo{db: db}
}

func (r *announcementRepo) Create(ctx context.Context, a *model.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *announcementRepo) GetByID(ctx context.Context, id string) (*model.Announcement, error) {
	var a model.Announcement
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepo) ListVisible(ctx context.Context, courseIDs []string) ([]model.Announcement, error) {
	var list []model.Announcement
	db := r.db.WithContext(ctx).Preload("Author")
	if len(courseIDs) > 0 {
		db = db.Where("scope = ? OR (scope = ? AND course_id IN ?)",
			model.AnnouncementGlobal, model.AnnouncementCourse, courseIDs)
	} else {
		db = db.Where("scope = ?", model.AnnouncementGlobal)
	}
	err := db.Order("pinned DESC, created_at DESC").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *announcementRepo) GetRead(ctx context.Context, announcementID, userID string) (*model.AnnouncementRead, error) {
	var read model.AnnouncementRead
	err := r.db.WithContext(ctx).
		Where("announcement_id = ? AND user_id = ?", announcementID, userID).
		First(&read).Error
	if err != nil {
		return nil, err
	}
	return &read, nil
}

func (r *announcementRepo) CreateRead(ctx context.Context, read *model.AnnouncementRead) error {
	return r.db.WithContext(ctx).Create(read).Error
}

func (r *announcementRepo) ListReadIDs(ctx context.Context, userID string, announcementIDs []string) ([]string, error) {
	if len(announcementIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.AnnouncementRead{}).
		Where("user_id = ? AND announcement_id IN ?", userID, announcementIDs).
		Pluck("announcement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
