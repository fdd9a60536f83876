package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
)

func setupTestWarningService() (WarningService, *mockRepos) {
	repo, m := newMockRepos()
	svc := NewWarningService(repo, zap.NewNop())
	return svc, m
}

// seedWarningFixture stu-001 缺席 2 次（达 WARN），stu-002 缺席 1 次（未达）
func seedWarningFixture(m *mockRepos) string {
	courseID := seedCourse(m)
	m.enrollment.list = append(m.enrollment.list,
		model.Enrollment{ID: "enr-001", CourseID: courseID, StudentID: "stu-001"},
		model.Enrollment{ID: "enr-002", CourseID: courseID, StudentID: "stu-002"},
	)
	for i := 1; i <= 3; i++ {
		sid := fmt.Sprintf("sess-%02d", i)
		m.session.sessions[sid] = &model.ClassSession{
			ID: sid, CourseID: courseID, Week: i, Round: 1,
			AttendanceMethod: model.MethodElectronic, Status: model.SessionClosed,
		}
	}
	m.attendance.atts = append(m.attendance.atts,
		&model.Attendance{ID: "att-1", SessionID: "sess-01", StudentID: "stu-001", Status: model.AttendanceAbsent},
		&model.Attendance{ID: "att-2", SessionID: "sess-02", StudentID: "stu-001", Status: model.AttendanceAbsent},
		&model.Attendance{ID: "att-3", SessionID: "sess-03", StudentID: "stu-001", Status: model.AttendancePresent},
		&model.Attendance{ID: "att-4", SessionID: "sess-01", StudentID: "stu-002", Status: model.AttendanceAbsent},
		&model.Attendance{ID: "att-5", SessionID: "sess-02", StudentID: "stu-002", Status: model.AttendancePresent},
	)
	return courseID
}

func TestWarningService_Run(t *testing.T) {
	svc, m := setupTestWarningService()
	courseID := seedWarningFixture(m)

	result, err := svc.Run(context.Background(), instructorActor, &dto.WarningRunRequest{
		CourseID: strPtr(courseID),
	})
	if err != nil {
		t.Fatalf("Run 应成功: %v", err)
	}
	if result.Courses != 1 || result.Checked != 2 {
		t.Errorf("期望 courses=1 checked=2，实际=%+v", result)
	}
	if result.Notified != 1 || result.Deduped != 0 {
		t.Fatalf("期望 notified=1 deduped=0，实际=%+v", result)
	}

	item := result.Items[0]
	if item.StudentID != "stu-001" || item.Level != "WARN" || item.AbsEquivalent != 2 {
		t.Errorf("预警条目不符: %+v", item)
	}

	if len(m.notification.list) != 1 {
		t.Fatalf("应发出 1 条通知，实际=%d", len(m.notification.list))
	}
	n := m.notification.list[0]
	if n.UserID != "stu-001" || n.Type != model.NotifyAbsenceWarn || n.Title != "缺勤累计警告" {
		t.Errorf("通知内容不符: %+v", n)
	}
	if n.LinkURL == nil || *n.LinkURL != "/courses/"+courseID {
		t.Errorf("link_url 不符: %v", n.LinkURL)
	}
}

func TestWarningService_Run_Dedup(t *testing.T) {
	svc, m := setupTestWarningService()
	courseID := seedWarningFixture(m)

	ctx := context.Background()
	req := &dto.WarningRunRequest{CourseID: strPtr(courseID)}
	if _, err := svc.Run(ctx, instructorActor, req); err != nil {
		t.Fatalf("首次 Run 应成功: %v", err)
	}

	second, err := svc.Run(ctx, instructorActor, req)
	if err != nil {
		t.Fatalf("二次 Run 应成功: %v", err)
	}
	if second.Notified != 0 || second.Deduped != 1 {
		t.Errorf("二次运行应全部去重: %+v", second)
	}
	if len(m.notification.list) != 1 {
		t.Errorf("不应重复发通知，实际=%d", len(m.notification.list))
	}
}

func TestWarningService_Run_Levels(t *testing.T) {
	svc, m := setupTestWarningService()
	courseID := seedCourse(m)
	m.enrollment.list = append(m.enrollment.list,
		model.Enrollment{ID: "enr-001", CourseID: courseID, StudentID: "stu-001"},
	)
	// 缺席 3 + 迟到 3（折 1）= 折算 4，达 DANGER
	for i := 1; i <= 6; i++ {
		sid := fmt.Sprintf("sess-%02d", i)
		m.session.sessions[sid] = &model.ClassSession{
			ID: sid, CourseID: courseID, Week: i, Round: 1,
			AttendanceMethod: model.MethodElectronic, Status: model.SessionClosed,
		}
		status := model.AttendanceAbsent
		if i > 3 {
			status = model.AttendanceLate
		}
		m.attendance.atts = append(m.attendance.atts, &model.Attendance{
			ID: "att-" + sid, SessionID: sid, StudentID: "stu-001", Status: status,
		})
	}

	result, err := svc.Run(context.Background(), instructorActor, &dto.WarningRunRequest{
		CourseID: strPtr(courseID),
	})
	if err != nil {
		t.Fatalf("Run 应成功: %v", err)
	}
	if result.Notified != 1 {
		t.Fatalf("期望 notified=1，实际=%+v", result)
	}
	if result.Items[0].Level != "DANGER" || result.Items[0].AbsEquivalent != 4 {
		t.Errorf("期望 DANGER/折算 4，实际=%+v", result.Items[0])
	}
	if m.notification.list[0].Type != model.NotifyAbsenceDanger || m.notification.list[0].Title != "缺勤累计危险" {
		t.Errorf("通知级别不符: %+v", m.notification.list[0])
	}
}

func TestWarningService_Run_DryRun(t *testing.T) {
	svc, m := setupTestWarningService()
	courseID := seedWarningFixture(m)

	result, err := svc.Run(context.Background(), instructorActor, &dto.WarningRunRequest{
		CourseID: strPtr(courseID),
		DryRun:   true,
	})
	if err != nil {
		t.Fatalf("dry-run 应成功: %v", err)
	}
	if !result.DryRun {
		t.Error("响应应标记 dry_run")
	}
	if result.Notified != 1 || len(result.Items) != 1 {
		t.Errorf("dry-run 仍应返回计数: %+v", result)
	}
}

func TestWarningService_Run_SemesterScope(t *testing.T) {
	svc, m := setupTestWarningService()
	seedWarningFixture(m)
	// 另一位教师的同学期课程，对 inst-001 不可见
	m.course.courses["course-002"] = &model.Course{
		ID: "course-002", Title: "操作系统", Semester: "2025-2",
		Department: "Software", InstructorID: "inst-002",
	}

	result, err := svc.Run(context.Background(), instructorActor, &dto.WarningRunRequest{
		Semester: strPtr("2025-2"),
	})
	if err != nil {
		t.Fatalf("Run 应成功: %v", err)
	}
	if result.Courses != 1 {
		t.Errorf("教师按学期运行只应覆盖本人课程，实际=%d", result.Courses)
	}

	asAdmin, err := svc.Run(context.Background(), adminActor, &dto.WarningRunRequest{
		Semester: strPtr("2025-2"),
	})
	if err != nil {
		t.Fatalf("Run 应成功: %v", err)
	}
	if asAdmin.Courses != 2 {
		t.Errorf("管理员按学期运行应覆盖全部课程，实际=%d", asAdmin.Courses)
	}
}

func TestWarningService_Run_NoTarget(t *testing.T) {
	svc, _ := setupTestWarningService()

	_, err := svc.Run(context.Background(), adminActor, &dto.WarningRunRequest{})
	if !errors.Is(err, ErrNoWarningTarget) {
		t.Errorf("期望 ErrNoWarningTarget，实际: %v", err)
	}
}
