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

func setupTestRiskService() (RiskService, *mockRepos) {
	repo, m := newMockRepos()
	svc := NewRiskService(repo, zap.NewNop())
	return svc, m
}

// seedRiskFixture 5 个节次：stu-001 状态序列 [缺,缺,出,缺,缺]；stu-002 全勤
func seedRiskFixture(m *mockRepos) string {
	courseID := seedCourse(m)
	m.enrollment.list = append(m.enrollment.list,
		model.Enrollment{ID: "enr-001", CourseID: courseID, StudentID: "stu-001"},
		model.Enrollment{ID: "enr-002", CourseID: courseID, StudentID: "stu-002"},
	)
	seq := []int{
		model.AttendanceAbsent, model.AttendanceAbsent, model.AttendancePresent,
		model.AttendanceAbsent, model.AttendanceAbsent,
	}
	for i, status := range seq {
		sid := fmt.Sprintf("sess-%02d", i+1)
		m.session.sessions[sid] = &model.ClassSession{
			ID: sid, CourseID: courseID, Week: i + 1, Round: 1,
			AttendanceMethod: model.MethodElectronic, Status: model.SessionClosed,
		}
		m.attendance.atts = append(m.attendance.atts,
			&model.Attendance{ID: "att-a-" + sid, SessionID: sid, StudentID: "stu-001", Status: status},
			&model.Attendance{ID: "att-b-" + sid, SessionID: sid, StudentID: "stu-002", Status: model.AttendancePresent},
		)
	}
	return courseID
}

func TestRiskService_Detect(t *testing.T) {
	svc, m := setupTestRiskService()
	courseID := seedRiskFixture(m)

	result, err := svc.Detect(context.Background(), instructorActor, &dto.RiskRequest{CourseID: courseID})
	if err != nil {
		t.Fatalf("Detect 应成功: %v", err)
	}
	if result.Flagged != 1 || len(result.Rows) != 1 {
		t.Fatalf("全勤学生不应入选，期望 1 行，实际=%d", result.Flagged)
	}

	row := result.Rows[0]
	if row.StudentID != "stu-001" {
		t.Fatalf("期望 stu-001 入选，实际=%s", row.StudentID)
	}
	if row.Absent != 4 || row.Present != 1 {
		t.Errorf("计数不符: absent=%d present=%d", row.Absent, row.Present)
	}
	if row.AbsentStreak.Max != 2 || row.AbsentStreak.Current != 2 {
		t.Errorf("缺席连击不符: %+v", row.AbsentStreak)
	}
	// 4*10 + LA连击2*3 + 迟到0*2
	if row.RiskScore != 46 {
		t.Errorf("期望 risk_score=46，实际=%d", row.RiskScore)
	}

	hasFlag := func(want string) bool {
		for _, f := range row.Flags {
			if f == want {
				return true
			}
		}
		return false
	}
	if !hasFlag("ABSENT_TOTAL") || !hasFlag("ABSENT_STREAK") {
		t.Errorf("期望命中 ABSENT_TOTAL/ABSENT_STREAK，实际=%v", row.Flags)
	}
	// LA 连击最长 2，不到默认阈值 3
	if hasFlag("LATE_OR_ABSENT_STREAK") {
		t.Errorf("不应命中 LATE_OR_ABSENT_STREAK: %v", row.Flags)
	}

	if result.Criteria["absent_min"] != 3 || result.Criteria["absent_streak_min"] != 2 ||
		result.Criteria["late_streak_min"] != 3 || result.Criteria["late_or_absent_streak_min"] != 3 {
		t.Errorf("默认阈值不符: %v", result.Criteria)
	}
}

func TestRiskService_Detect_CustomCriteria(t *testing.T) {
	svc, m := setupTestRiskService()
	courseID := seedRiskFixture(m)

	// 阈值拉高后无人入选
	result, err := svc.Detect(context.Background(), instructorActor, &dto.RiskRequest{
		CourseID:              courseID,
		AbsentMin:             intPtr(5),
		AbsentStreakMin:       intPtr(3),
		LateOrAbsentStreakMin: intPtr(5),
	})
	if err != nil {
		t.Fatalf("Detect 应成功: %v", err)
	}
	if result.Flagged != 0 {
		t.Errorf("阈值拉高后不应有人入选: %+v", result.Rows)
	}
}

func TestRiskService_Detect_IncludeUnknown(t *testing.T) {
	svc, m := setupTestRiskService()
	courseID := seedCourse(m)
	m.enrollment.list = append(m.enrollment.list,
		model.Enrollment{ID: "enr-001", CourseID: courseID, StudentID: "stu-001"},
	)
	// 3 个节次都没有考勤行，序列按未知处理
	for i := 1; i <= 3; i++ {
		sid := fmt.Sprintf("sess-%02d", i)
		m.session.sessions[sid] = &model.ClassSession{
			ID: sid, CourseID: courseID, Week: i, Round: 1,
			AttendanceMethod: model.MethodElectronic, Status: model.SessionClosed,
		}
	}

	plain, err := svc.Detect(context.Background(), instructorActor, &dto.RiskRequest{CourseID: courseID})
	if err != nil {
		t.Fatalf("Detect 应成功: %v", err)
	}
	if plain.Flagged != 0 {
		t.Errorf("默认不计未知，不应入选: %+v", plain.Rows)
	}

	withUnknown, err := svc.Detect(context.Background(), instructorActor, &dto.RiskRequest{
		CourseID:       courseID,
		IncludeUnknown: true,
	})
	if err != nil {
		t.Fatalf("Detect 应成功: %v", err)
	}
	if withUnknown.Flagged != 1 {
		t.Fatalf("计入未知后应入选，实际=%d", withUnknown.Flagged)
	}
	row := withUnknown.Rows[0]
	if row.Unknown != 3 || row.AbsentStreak.Max != 3 {
		t.Errorf("未知折算不符: unknown=%d streak=%+v", row.Unknown, row.AbsentStreak)
	}
}

func TestRiskService_Detect_NotOwner(t *testing.T) {
	svc, m := setupTestRiskService()
	courseID := seedRiskFixture(m)

	_, err := svc.Detect(context.Background(), otherInstructor, &dto.RiskRequest{CourseID: courseID})
	if !errors.Is(err, ErrNotCourseOwner) {
		t.Errorf("期望 ErrNotCourseOwner，实际: %v", err)
	}
}
