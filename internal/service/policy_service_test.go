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

func setupTestPolicyService() (PolicyService, *mockRepos) {
	repo, m := newMockRepos()
	svc := NewPolicyService(repo, zap.NewNop())
	return svc, m
}

// ── 政策读写 ──

func TestPolicyService_Get_Default(t *testing.T) {
	svc, m := setupTestPolicyService()
	courseID := seedCourse(m)

	result, err := svc.Get(context.Background(), instructorActor, courseID)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if !result.IsDefault {
		t.Error("未配置课程应返回默认政策")
	}
	if result.LateToAbsent != 3 || result.MaxScore != 20 || !result.MissingAsAbsent {
		t.Errorf("默认政策取值不符: %+v", result)
	}
}

func TestPolicyService_Upsert_PartialPatch(t *testing.T) {
	svc, m := setupTestPolicyService()
	courseID := seedCourse(m)

	result, err := svc.Upsert(context.Background(), instructorActor, courseID, &dto.UpsertPolicyRequest{
		LateToAbsent: intPtr(2),
		WLate:        floatPtr(0.8),
	})
	if err != nil {
		t.Fatalf("Upsert 应成功: %v", err)
	}
	if result.IsDefault {
		t.Error("写入后不应再是默认政策")
	}
	if result.LateToAbsent != 2 || result.WLate != 0.8 {
		t.Errorf("补丁字段未生效: %+v", result)
	}
	// 未携带的字段保持默认
	if result.MaxScore != 20 || result.WPresent != 1.0 {
		t.Errorf("未补丁字段被改动: %+v", result)
	}

	saved := m.policy.policies[courseID]
	if saved == nil || saved.LateToAbsent != 2 {
		t.Errorf("政策应持久化，实际=%+v", saved)
	}
}

func TestPolicyService_Upsert_NotOwner(t *testing.T) {
	svc, m := setupTestPolicyService()
	courseID := seedCourse(m)

	_, err := svc.Upsert(context.Background(), otherInstructor, courseID, &dto.UpsertPolicyRequest{})
	if !errors.Is(err, ErrNotCourseOwner) {
		t.Errorf("期望 ErrNotCourseOwner，实际: %v", err)
	}
}

// ── 出席分 ──

// seedScoreFixture 10 个节次：stu-001 6 次出席 3 次迟到 1 次请假；stu-002 仅 5 次出席
func seedScoreFixture(m *mockRepos) string {
	courseID := seedCourse(m)
	m.enrollment.list = append(m.enrollment.list,
		model.Enrollment{ID: "enr-001", CourseID: courseID, StudentID: "stu-001"},
		model.Enrollment{ID: "enr-002", CourseID: courseID, StudentID: "stu-002"},
	)
	for i := 1; i <= 10; i++ {
		sid := fmt.Sprintf("sess-%02d", i)
		m.session.sessions[sid] = &model.ClassSession{
			ID: sid, CourseID: courseID, Week: i, Round: 1,
			AttendanceMethod: model.MethodElectronic, Status: model.SessionClosed,
		}

		status := model.AttendancePresent
		switch {
		case i >= 7 && i <= 9:
			status = model.AttendanceLate
		case i == 10:
			status = model.AttendanceExcused
		}
		m.attendance.atts = append(m.attendance.atts, &model.Attendance{
			ID: "att-a-" + sid, SessionID: sid, StudentID: "stu-001", Status: status,
		})

		if i <= 5 {
			m.attendance.atts = append(m.attendance.atts, &model.Attendance{
				ID: "att-b-" + sid, SessionID: sid, StudentID: "stu-002", Status: model.AttendancePresent,
			})
		}
	}
	return courseID
}

func TestPolicyService_Score(t *testing.T) {
	svc, m := setupTestPolicyService()
	courseID := seedScoreFixture(m)

	result, err := svc.Score(context.Background(), instructorActor, courseID)
	if err != nil {
		t.Fatalf("Score 应成功: %v", err)
	}
	if result.TotalSessions != 10 {
		t.Fatalf("期望 total_sessions=10，实际=%d", result.TotalSessions)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("期望 2 行，实际=%d", len(result.Rows))
	}

	// 分数降序：stu-001 (14.00) 在 stu-002 (10.00) 之前
	top := result.Rows[0]
	if top.StudentID != "stu-001" {
		t.Fatalf("期望 stu-001 居首，实际=%s", top.StudentID)
	}
	// 3 次迟到折 1 次缺席，余 0 次迟到；raw=6*1+1*1=7，score=7/10*20
	if top.ConvertedAbs != 1 || top.LateRemainder != 0 || top.AbsentFinal != 1 {
		t.Errorf("迟到折算不符: converted=%d remainder=%d absent_final=%d",
			top.ConvertedAbs, top.LateRemainder, top.AbsentFinal)
	}
	if top.Score != 14.00 {
		t.Errorf("期望 score=14.00，实际=%.2f", top.Score)
	}

	// stu-002 缺 5 条记录，默认 missing_as_absent 折入缺席
	second := result.Rows[1]
	if second.StudentID != "stu-002" || second.Absent != 5 || second.AbsentFinal != 5 {
		t.Errorf("缺失记录折算不符: %+v", second)
	}
	if second.Score != 10.00 {
		t.Errorf("期望 score=10.00，实际=%.2f", second.Score)
	}
}

func TestPolicyService_Score_MissingAsUnknown(t *testing.T) {
	svc, m := setupTestPolicyService()
	courseID := seedScoreFixture(m)
	policy := model.DefaultPolicy(courseID)
	policy.MissingAsAbsent = false
	m.policy.policies[courseID] = policy

	result, err := svc.Score(context.Background(), instructorActor, courseID)
	if err != nil {
		t.Fatalf("Score 应成功: %v", err)
	}
	second := result.Rows[1]
	if second.Absent != 0 || second.Unknown != 5 {
		t.Errorf("关闭 missing_as_absent 后缺失应计入未知: %+v", second)
	}
}
