package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
)

var ErrNotificationNotFound = errors.New("通知不存在")

// NotificationService 通知业务接口。
// Notify 是旁路写入：只记日志、永不向调用方返回错误，不影响主流程。
type NotificationService interface {
	Notify(ctx context.Context, userID, typ, title, message string, linkURL *string)
	List(ctx context.Context, actor Actor, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, actor Actor, id string) error
	MarkReadBulk(ctx context.Context, actor Actor, req *dto.MarkReadRequest) (int64, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) Notify(ctx context.Context, userID, typ, title, message string, linkURL *string) {
	n := &model.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		LinkURL: linkURL,
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("发送通知失败",
			zap.String("user_id", userID),
			zap.String("type", typ),
			zap.Error(err),
		)
	}
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		LinkURL:   n.LinkURL,
		IsRead:    n.IsRead,
		ReadAt:    fmtTimePtr(n.ReadAt),
		CreatedAt: fmtTime(n.CreatedAt),
	}
}

func (s *notificationService) List(ctx context.Context, actor Actor, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	list, total, err := s.repo.Notification.ListByUser(ctx, actor.UserID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		out = append(out, toNotificationResponse(&list[i]))
	}
	return out, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	n, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if n.UserID != actor.UserID {
		return ErrNotificationNotFound
	}
	if n.IsRead {
		return nil
	}

	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	return s.repo.Notification.Update(ctx, n)
}

func (s *notificationService) MarkReadBulk(ctx context.Context, actor Actor, req *dto.MarkReadRequest) (int64, error) {
	now := time.Now()
	if req.All {
		return s.repo.Notification.MarkAllRead(ctx, actor.UserID, now)
	}
	return s.repo.Notification.MarkRead(ctx, actor.UserID, req.IDs, now)
}
