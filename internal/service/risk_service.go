package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
)

// 风险筛查默认阈值
const (
	defaultAbsentMin       = 3
	defaultLateStreakMin   = 3
	defaultAbsentStreakMin = 2
	defaultLAStreakMin     = 3
)

// RiskService 风险学生筛查业务接口
type RiskService interface {
	// Detect 按节次时间序扫描各学生状态序列，命中任一阈值即入选
	Detect(ctx context.Context, actor Actor, req *dto.RiskRequest) (*dto.RiskResponse, error)
}

type riskService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRiskService 创建 RiskService 实例
func NewRiskService(repo *repository.Repository, logger *zap.Logger) RiskService {
	return &riskService{repo: repo, logger: logger}
}

// streakScan 扫描一遍布尔序列，返回最长连续与末尾连续长度
func streakScan(seq []int, hit func(int) bool) dto.StreakPair {
	var pair dto.StreakPair
	run := 0
	for _, st := range seq {
		if hit(st) {
			run++
			if run > pair.Max {
				pair.Max = run
			}
		} else {
			run = 0
		}
	}
	pair.Current = run
	return pair
}

func (s *riskService) Detect(ctx context.Context, actor Actor, req *dto.RiskRequest) (*dto.RiskResponse, error) {
	if _, err := courseForOwner(ctx, s.repo, actor, req.CourseID); err != nil {
		return nil, err
	}

	absentMin := defaultAbsentMin
	if req.AbsentMin != nil {
		absentMin = *req.AbsentMin
	}
	lateStreakMin := defaultLateStreakMin
	if req.LateStreakMin != nil {
		lateStreakMin = *req.LateStreakMin
	}
	absentStreakMin := defaultAbsentStreakMin
	if req.AbsentStreakMin != nil {
		absentStreakMin = *req.AbsentStreakMin
	}
	laStreakMin := defaultLAStreakMin
	if req.LateOrAbsentStreakMin != nil {
		laStreakMin = *req.LateOrAbsentStreakMin
	}

	sessions, err := s.repo.Session.ListByCourse(ctx, req.CourseID, 0, "")
	if err != nil {
		return nil, err
	}
	enrollments, err := s.repo.Enrollment.ListByCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	atts, err := s.repo.Attendance.ListByCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	// (sessionID, studentID) → status
	byKey := make(map[string]map[string]int, len(sessions))
	for i := range atts {
		m, ok := byKey[atts[i].SessionID]
		if !ok {
			m = make(map[string]int)
			byKey[atts[i].SessionID] = m
		}
		m[atts[i].StudentID] = atts[i].Status
	}

	isAbsent := func(st int) bool {
		return st == model.AttendanceAbsent || (req.IncludeUnknown && st == model.AttendanceUnknown)
	}
	isLate := func(st int) bool { return st == model.AttendanceLate }
	isLA := func(st int) bool { return isLate(st) || isAbsent(st) }

	rows := make([]dto.RiskRow, 0)
	for i := range enrollments {
		e := &enrollments[i]

		// 无记录的节次按 0 处理，序列与节次时间序对齐
		seq := make([]int, len(sessions))
		for j := range sessions {
			if m := byKey[sessions[j].ID]; m != nil {
				seq[j] = m[e.StudentID]
			}
		}

		row := dto.RiskRow{StudentID: e.StudentID}
		if e.Student != nil {
			row.Name = e.Student.Name
		}
		for _, st := range seq {
			switch st {
			case model.AttendancePresent:
				row.Present++
			case model.AttendanceLate:
				row.Late++
			case model.AttendanceAbsent:
				row.Absent++
			case model.AttendanceExcused:
				row.Excused++
			default:
				row.Unknown++
			}
		}
		absences := row.Absent
		if req.IncludeUnknown {
			absences += row.Unknown
		}

		row.LateStreak = streakScan(seq, isLate)
		row.AbsentStreak = streakScan(seq, isAbsent)
		row.LAStreak = streakScan(seq, isLA)

		if absences >= absentMin {
			row.Flags = append(row.Flags, "ABSENT_TOTAL")
		}
		if row.LateStreak.Max >= lateStreakMin {
			row.Flags = append(row.Flags, "LATE_STREAK")
		}
		if row.AbsentStreak.Max >= absentStreakMin {
			row.Flags = append(row.Flags, "ABSENT_STREAK")
		}
		if row.LAStreak.Max >= laStreakMin {
			row.Flags = append(row.Flags, "LATE_OR_ABSENT_STREAK")
		}
		if len(row.Flags) == 0 {
			continue
		}

		row.RiskScore = absences*10 + row.LAStreak.Max*3 + row.Late*2
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RiskScore != rows[j].RiskScore {
			return rows[i].RiskScore > rows[j].RiskScore
		}
		return rows[i].Absent > rows[j].Absent
	})

	return &dto.RiskResponse{
		CourseID: req.CourseID,
		Criteria: map[string]int{
			"absent_min":                absentMin,
			"late_streak_min":           lateStreakMin,
			"absent_streak_min":         absentStreakMin,
			"late_or_absent_streak_min": laStreakMin,
		},
		Flagged: len(rows),
		Rows:    rows,
	}, nil
}
