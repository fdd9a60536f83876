package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
)

func setupTestNotificationService() (NotificationService, *mockRepos) {
	repo, m := newMockRepos()
	svc := NewNotificationService(repo, zap.NewNop())
	return svc, m
}

func seedNotifications(m *mockRepos) {
	m.notification.list = append(m.notification.list,
		&model.Notification{ID: "ntf-001", UserID: "stu-001", Type: model.NotifyMessage, Title: "一"},
		&model.Notification{ID: "ntf-002", UserID: "stu-001", Type: model.NotifyMessage, Title: "二"},
		&model.Notification{ID: "ntf-003", UserID: "stu-002", Type: model.NotifyMessage, Title: "三"},
	)
}

func TestNotificationService_List(t *testing.T) {
	svc, m := setupTestNotificationService()
	seedNotifications(m)

	list, total, err := svc.List(context.Background(), studentActor, &dto.NotificationListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("只应返回本人通知: total=%d", total)
	}
}

func TestNotificationService_List_UnreadOnly(t *testing.T) {
	svc, m := setupTestNotificationService()
	seedNotifications(m)
	m.notification.list[0].IsRead = true

	list, total, err := svc.List(context.Background(), studentActor, &dto.NotificationListRequest{
		UnreadOnly: true,
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != "ntf-002" {
		t.Errorf("未读过滤不符: total=%d list=%+v", total, list)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc, m := setupTestNotificationService()
	seedNotifications(m)

	ctx := context.Background()
	if err := svc.MarkRead(ctx, studentActor, "ntf-001"); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	if !m.notification.list[0].IsRead || m.notification.list[0].ReadAt == nil {
		t.Errorf("通知应置已读: %+v", m.notification.list[0])
	}
	// 重复标记幂等
	if err := svc.MarkRead(ctx, studentActor, "ntf-001"); err != nil {
		t.Errorf("重复 MarkRead 应成功: %v", err)
	}

	// 他人通知不可标记
	err := svc.MarkRead(ctx, studentActor, "ntf-003")
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("期望 ErrNotificationNotFound，实际: %v", err)
	}
}

func TestNotificationService_MarkReadBulk(t *testing.T) {
	svc, m := setupTestNotificationService()
	seedNotifications(m)

	ctx := context.Background()
	updated, err := svc.MarkReadBulk(ctx, studentActor, &dto.MarkReadRequest{
		IDs: []string{"ntf-001", "ntf-003"},
	})
	if err != nil {
		t.Fatalf("MarkReadBulk 应成功: %v", err)
	}
	// ntf-003 属于他人，不计入
	if updated != 1 {
		t.Errorf("期望 updated=1，实际=%d", updated)
	}

	all, err := svc.MarkReadBulk(ctx, studentActor, &dto.MarkReadRequest{All: true})
	if err != nil {
		t.Fatalf("MarkReadBulk(all) 应成功: %v", err)
	}
	if all != 1 {
		t.Errorf("期望全量补标 1 条，实际=%d", all)
	}
	if !m.notification.list[1].IsRead {
		t.Error("ntf-002 应被置已读")
	}
	if m.notification.list[2].IsRead {
		t.Error("他人通知不应被置已读")
	}
}
