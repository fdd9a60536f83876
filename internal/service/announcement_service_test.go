package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
)

func setupTestAnnouncementService() (AnnouncementService, *mockRepos) {
	repo, m := newMockRepos()
	notifier := NewNotificationService(repo, zap.NewNop())
	svc := NewAnnouncementService(repo, notifier, zap.NewNop())
	return svc, m
}

func TestAnnouncementService_Create_GlobalAdminOnly(t *testing.T) {
	svc, m := setupTestAnnouncementService()
	seedCourse(m)

	_, err := svc.Create(context.Background(), instructorActor, &dto.CreateAnnouncementRequest{
		Scope: model.AnnouncementGlobal, Title: "放假通知", Content: "国庆放假安排",
	})
	if !errors.Is(err, ErrGlobalAdminOnly) {
		t.Errorf("期望 ErrGlobalAdminOnly，实际: %v", err)
	}

	result, err := svc.Create(context.Background(), adminActor, &dto.CreateAnnouncementRequest{
		Scope: model.AnnouncementGlobal, Title: "放假通知", Content: "国庆放假安排", Pinned: true,
	})
	if err != nil {
		t.Fatalf("管理员发全局公告应成功: %v", err)
	}
	if result.Scope != model.AnnouncementGlobal || !result.Pinned {
		t.Errorf("公告内容不符: %+v", result)
	}
}

func TestAnnouncementService_Create_CourseNotifies(t *testing.T) {
	svc, m := setupTestAnnouncementService()
	courseID := seedCourse(m)
	m.enrollment.list = append(m.enrollment.list,
		model.Enrollment{ID: "enr-001", CourseID: courseID, StudentID: "stu-001"},
		model.Enrollment{ID: "enr-002", CourseID: courseID, StudentID: "stu-002"},
	)

	_, err := svc.Create(context.Background(), instructorActor, &dto.CreateAnnouncementRequest{
		Scope: model.AnnouncementCourse, CourseID: strPtr(courseID),
		Title: "调课通知", Content: "下周三课程改到周五",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if len(m.notification.list) != 2 {
		t.Errorf("应通知全部选课学生，实际=%d 条", len(m.notification.list))
	}
	if m.notification.list[0].Type != model.NotifyAnnouncement {
		t.Errorf("通知类型不符: %s", m.notification.list[0].Type)
	}
}

func TestAnnouncementService_Create_CourseIDRequired(t *testing.T) {
	svc, m := setupTestAnnouncementService()
	seedCourse(m)

	_, err := svc.Create(context.Background(), instructorActor, &dto.CreateAnnouncementRequest{
		Scope: model.AnnouncementCourse, Title: "无课程", Content: "……",
	})
	if !errors.Is(err, ErrCourseIDRequired) {
		t.Errorf("期望 ErrCourseIDRequired，实际: %v", err)
	}
}

func TestAnnouncementService_List_ScopeAndReadFlag(t *testing.T) {
	svc, m := setupTestAnnouncementService()
	courseID := seedCourse(m)
	m.enrollment.list = append(m.enrollment.list, model.Enrollment{
		ID: "enr-001", CourseID: courseID, StudentID: "stu-001",
	})
	// 另一门未选课程
	m.course.courses["course-002"] = &model.Course{
		ID: "course-002", Title: "操作系统", Semester: "2025-2",
		Department: "Software", InstructorID: "inst-002",
	}
	m.announcement.anns["ann-global"] = &model.Announcement{
		ID: "ann-global", Scope: model.AnnouncementGlobal, AuthorID: "admin-001",
		Title: "全局", Content: "……",
	}
	m.announcement.anns["ann-mine"] = &model.Announcement{
		ID: "ann-mine", Scope: model.AnnouncementCourse, CourseID: strPtr(courseID),
		AuthorID: "inst-001", Title: "本课程", Content: "……",
	}
	m.announcement.anns["ann-other"] = &model.Announcement{
		ID: "ann-other", Scope: model.AnnouncementCourse, CourseID: strPtr("course-002"),
		AuthorID: "inst-002", Title: "别的课程", Content: "……",
	}

	ctx := context.Background()
	if err := svc.MarkRead(ctx, studentActor, "ann-global"); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	// 重复标记幂等
	if err := svc.MarkRead(ctx, studentActor, "ann-global"); err != nil {
		t.Fatalf("重复 MarkRead 应成功: %v", err)
	}

	list, err := svc.List(ctx, studentActor)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("学生应只见全局与已选课程公告，实际=%d", len(list))
	}
	for _, a := range list {
		if a.ID == "ann-other" {
			t.Error("未选课程公告不应可见")
		}
		if a.ID == "ann-global" && !a.IsRead {
			t.Error("已读公告应带 is_read")
		}
		if a.ID == "ann-mine" && a.IsRead {
			t.Error("未读公告不应带 is_read")
		}
	}
}

func TestAnnouncementService_MarkRead_NotFound(t *testing.T) {
	svc, _ := setupTestAnnouncementService()

	err := svc.MarkRead(context.Background(), studentActor, "ann-404")
	if !errors.Is(err, ErrAnnouncementNotFound) {
		t.Errorf("期望 ErrAnnouncementNotFound，实际: %v", err)
	}
}
