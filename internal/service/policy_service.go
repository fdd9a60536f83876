package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
)

// PolicyService 考勤政策与出席分业务接口
type PolicyService interface {
	Get(ctx context.Context, actor Actor, courseID string) (*dto.PolicyResponse, error)
	Upsert(ctx context.Context, actor Actor, courseID string, req *dto.UpsertPolicyRequest) (*dto.PolicyResponse, error)
	// Score 计算全员出席分：迟到按 late_to_absent 折算缺席，余数按迟到计
	Score(ctx context.Context, actor Actor, courseID string) (*dto.ScoreResponse, error)
}

type policyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPolicyService 创建 PolicyService 实例
func NewPolicyService(repo *repository.Repository, logger *zap.Logger) PolicyService {
	return &policyService{repo: repo, logger: logger}
}

func toPolicyResponse(p *model.AttendancePolicy, isDefault bool) dto.PolicyResponse {
	return dto.PolicyResponse{
		CourseID:        p.CourseID,
		LateToAbsent:    p.LateToAbsent,
		WPresent:        p.WPresent,
		WLate:           p.WLate,
		WAbsent:         p.WAbsent,
		WExcused:        p.WExcused,
		MaxScore:        p.MaxScore,
		MissingAsAbsent: p.MissingAsAbsent,
		WarnAbsences:    p.WarnAbsences,
		DangerAbsences:  p.DangerAbsences,
		FailAbsences:    p.FailAbsences,
		IsDefault:       isDefault,
	}
}

// effectivePolicy 读取课程政策，未配置时回退默认值
func effectivePolicy(ctx context.Context, repo *repository.Repository, courseID string) (*model.AttendancePolicy, bool, error) {
	policy, err := repo.Policy.GetByCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultPolicy(courseID), true, nil
		}
		return nil, false, err
	}
	return policy, false, nil
}

func (s *policyService) Get(ctx context.Context, actor Actor, courseID string) (*dto.PolicyResponse, error) {
	if _, err := courseForOwner(ctx, s.repo, actor, courseID); err != nil {
		return nil, err
	}

	policy, isDefault, err := effectivePolicy(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}
	resp := toPolicyResponse(policy, isDefault)
	return &resp, nil
}

func (s *policyService) Upsert(ctx context.Context, actor Actor, courseID string, req *dto.UpsertPolicyRequest) (*dto.PolicyResponse, error) {
	if _, err := courseForOwner(ctx, s.repo, actor, courseID); err != nil {
		return nil, err
	}

	policy, err := s.repo.Policy.GetByCourse(ctx, courseID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		policy = model.DefaultPolicy(courseID)
	}

	if req.LateToAbsent != nil {
		policy.LateToAbsent = *req.LateToAbsent
	}
	if req.WPresent != nil {
		policy.WPresent = *req.WPresent
	}
	if req.WLate != nil {
		policy.WLate = *req.WLate
	}
	if req.WAbsent != nil {
		policy.WAbsent = *req.WAbsent
	}
	if req.WExcused != nil {
		policy.WExcused = *req.WExcused
	}
	if req.MaxScore != nil {
		policy.MaxScore = *req.MaxScore
	}
	if req.MissingAsAbsent != nil {
		policy.MissingAsAbsent = *req.MissingAsAbsent
	}
	if req.WarnAbsences != nil {
		policy.WarnAbsences = *req.WarnAbsences
	}
	if req.DangerAbsences != nil {
		policy.DangerAbsences = *req.DangerAbsences
	}
	if req.FailAbsences != nil {
		policy.FailAbsences = *req.FailAbsences
	}

	if err := s.repo.Policy.Save(ctx, policy); err != nil {
		s.logger.Error("保存考勤政策失败", zap.Error(err))
		return nil, err
	}

	resp := toPolicyResponse(policy, false)
	return &resp, nil
}

// statusCounts 按学生聚合的各状态计数
type statusCounts struct {
	present int
	late    int
	absent  int
	excused int
	unknown int
}

// tallyByStudent 按学生聚合课程内全部考勤记录
func tallyByStudent(atts []model.Attendance) map[string]*statusCounts {
	out := make(map[string]*statusCounts)
	for i := range atts {
		c, ok := out[atts[i].StudentID]
		if !ok {
			c = &statusCounts{}
			out[atts[i].StudentID] = c
		}
		switch atts[i].Status {
		case model.AttendancePresent:
			c.present++
		case model.AttendanceLate:
			c.late++
		case model.AttendanceAbsent:
			c.absent++
		case model.AttendanceExcused:
			c.excused++
		default:
			c.unknown++
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *policyService) Score(ctx context.Context, actor Actor, courseID string) (*dto.ScoreResponse, error) {
	if _, err := courseForOwner(ctx, s.repo, actor, courseID); err != nil {
		return nil, err
	}

	policy, isDefault, err := effectivePolicy(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}

	totalSessions, err := s.repo.Session.CountByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.repo.Enrollment.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	atts, err := s.repo.Attendance.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	counts := tallyByStudent(atts)

	rows := make([]dto.ScoreRow, 0, len(enrollments))
	for i := range enrollments {
		e := &enrollments[i]
		c := counts[e.StudentID]
		if c == nil {
			c = &statusCounts{}
		}

		// 没有考勤行的节次按 missing_as_absent 折入缺席或未知；已有的 0 状态行保持未知
		recorded := c.present + c.late + c.absent + c.excused + c.unknown
		missing := int(totalSessions) - recorded
		if missing < 0 {
			missing = 0
		}
		absent := c.absent
		unknown := c.unknown
		if policy.MissingAsAbsent {
			absent += missing
		} else {
			unknown += missing
		}

		convertedAbs := 0
		lateRemainder := c.late
		if policy.LateToAbsent > 0 {
			convertedAbs = c.late / policy.LateToAbsent
			lateRemainder = c.late % policy.LateToAbsent
		}
		absentFinal := absent + convertedAbs

		raw := float64(c.present)*policy.WPresent +
			float64(lateRemainder)*policy.WLate +
			float64(absentFinal)*policy.WAbsent +
			float64(c.excused)*policy.WExcused

		score := 0.0
		if totalSessions > 0 {
			score = round2(raw / float64(totalSessions) * float64(policy.MaxScore))
		}

		row := dto.ScoreRow{
			StudentID:     e.StudentID,
			Present:       c.present,
			Late:          c.late,
			Absent:        absent,
			Excused:       c.excused,
			Unknown:       unknown,
			ConvertedAbs:  convertedAbs,
			LateRemainder: lateRemainder,
			AbsentFinal:   absentFinal,
			RawScore:      round2(raw),
			Score:         score,
		}
		if e.Student != nil {
			row.Name = e.Student.Name
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].StudentID < rows[j].StudentID
	})

	return &dto.ScoreResponse{
		CourseID:      courseID,
		TotalSessions: int(totalSessions),
		Policy:        toPolicyResponse(policy, isDefault),
		Rows:          rows,
	}, nil
}
