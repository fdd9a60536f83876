package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"attendly/backend/config"
	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
)

const defaultAuditQueryLimit = 200

// ReportService 报表与审计查询业务接口
type ReportService interface {
	Attendance(ctx context.Context, actor Actor, req *dto.AttendanceReportRequest) (*dto.AttendanceReportResponse, error)
	// AttendanceXLSX 导出出席报表工作簿
	AttendanceXLSX(ctx context.Context, actor Actor, req *dto.AttendanceReportRequest) (*excelize.File, error)
	Excuses(ctx context.Context, actor Actor, req *dto.ExcuseReportRequest) (*dto.ExcuseReportResponse, error)
	// Audits 课程维度审计：沿目标链收敛到课程下的所有审计记录
	Audits(ctx context.Context, actor Actor, req *dto.AuditReportRequest) (*dto.AuditReportResponse, error)
	// AuditList 原始审计列表，仅 ADMIN
	AuditList(ctx context.Context, actor Actor, req *dto.AuditListRequest) ([]dto.AuditRow, int64, error)
}

type reportService struct {
	cfg    *config.ReportConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(cfg *config.ReportConfig, repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{cfg: cfg, repo: repo, logger: logger}
}

func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return round2(float64(n) / float64(d) * 100)
}

func (s *reportService) Attendance(ctx context.Context, actor Actor, req *dto.AttendanceReportRequest) (*dto.AttendanceReportResponse, error) {
	if _, err := courseForOwner(ctx, s.repo, actor, req.CourseID); err != nil {
		return nil, err
	}

	week := 0
	if req.Week != nil {
		week = *req.Week
	}
	sessions, err := s.repo.Session.ListByCourse(ctx, req.CourseID, week, "")
	if err != nil {
		return nil, err
	}
	enrolled, err := s.repo.Enrollment.CountByCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	atts, err := s.repo.Attendance.ListByCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	bySession := make(map[string]*dto.SessionReportRow, len(sessions))
	perSession := make([]dto.SessionReportRow, 0, len(sessions))
	for i := range sessions {
		perSession = append(perSession, dto.SessionReportRow{
			SessionID: sessions[i].ID,
			Week:      sessions[i].Week,
			Round:     sessions[i].Round,
		})
	}
	for i := range perSession {
		bySession[perSession[i].SessionID] = &perSession[i]
	}

	for i := range atts {
		row, ok := bySession[atts[i].SessionID]
		if !ok {
			continue
		}
		switch atts[i].Status {
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

	weekRows := make(map[int]*dto.WeekReportRow)
	weekOrder := make([]int, 0)
	for i := range perSession {
		row := &perSession[i]
		// 未建考勤行的学生计入未知
		recorded := row.Present + row.Late + row.Absent + row.Excused + row.Unknown
		if missing := int(enrolled) - recorded; missing > 0 {
			row.Unknown += missing
		}
		row.AttendanceRate = pct(row.Present+row.Late+row.Excused, int(enrolled))
		row.AbsenceRate = pct(row.Absent, int(enrolled))

		w, ok := weekRows[row.Week]
		if !ok {
			w = &dto.WeekReportRow{Week: row.Week}
			weekRows[row.Week] = w
			weekOrder = append(weekOrder, row.Week)
		}
		w.Sessions++
		w.Present += row.Present
		w.Late += row.Late
		w.Absent += row.Absent
		w.Excused += row.Excused
		w.Unknown += row.Unknown
	}

	sort.Ints(weekOrder)
	perWeek := make([]dto.WeekReportRow, 0, len(weekOrder))
	for _, wk := range weekOrder {
		w := weekRows[wk]
		w.AttendanceRate = pct(w.Present+w.Late+w.Excused, w.Sessions*int(enrolled))
		perWeek = append(perWeek, *w)
	}

	return &dto.AttendanceReportResponse{
		CourseID:   req.CourseID,
		Enrolled:   int(enrolled),
		PerSession: perSession,
		PerWeek:    perWeek,
	}, nil
}

func (s *reportService) AttendanceXLSX(ctx context.Context, actor Actor, req *dto.AttendanceReportRequest) (*excelize.File, error) {
	report, err := s.Attendance(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "出席报表"
	f.SetSheetName("Sheet1", sheet)

	headers := []interface{}{"周次", "轮次", "出席", "迟到", "缺席", "公假", "未知", "出席率(%)", "缺席率(%)"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	for i, row := range report.PerSession {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.Week, row.Round,
			row.Present, row.Late, row.Absent, row.Excused, row.Unknown,
			row.AttendanceRate, row.AbsenceRate,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	const weekSheet = "按周汇总"
	if _, err := f.NewSheet(weekSheet); err != nil {
		return nil, err
	}
	weekHeaders := []interface{}{"周次", "节次数", "出席", "迟到", "缺席", "公假", "未知", "出席率(%)"}
	if err := f.SetSheetRow(weekSheet, "A1", &weekHeaders); err != nil {
		return nil, err
	}
	for i, row := range report.PerWeek {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.Week, row.Sessions,
			row.Present, row.Late, row.Absent, row.Excused, row.Unknown,
			row.AttendanceRate,
		}
		if err := f.SetSheetRow(weekSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func (s *reportService) Excuses(ctx context.Context, actor Actor, req *dto.ExcuseReportRequest) (*dto.ExcuseReportResponse, error) {
	if _, err := courseForOwner(ctx, s.repo, actor, req.CourseID); err != nil {
		return nil, err
	}

	list, _, err := s.repo.Excuse.ListByCourse(ctx, req.CourseID, req.Status, 0, 10000)
	if err != nil {
		return nil, err
	}

	byStatus := map[string]int{}
	byWeek := map[int]int{}
	approved, resolvedCount := 0, 0
	out := make([]dto.ExcuseResponse, 0, len(list))
	for i := range list {
		e := &list[i]
		if req.Week != nil && (e.Session == nil || e.Session.Week != *req.Week) {
			continue
		}
		byStatus[e.Status]++
		if e.Session != nil {
			byWeek[e.Session.Week]++
		}
		if e.Status != model.ExcusePending {
			resolvedCount++
			if e.Status == model.ExcuseApproved {
				approved++
			}
		}
		out = append(out, toExcuseResponse(e))
	}

	return &dto.ExcuseReportResponse{
		CourseID:     req.CourseID,
		Count:        len(out),
		ByStatus:     byStatus,
		ByWeek:       byWeek,
		ApprovedRate: pct(approved, resolvedCount),
		List:         out,
	}, nil
}

func toAuditRow(l *model.AuditLog) dto.AuditRow {
	row := dto.AuditRow{
		ID:         l.ID,
		TargetType: l.TargetType,
		TargetID:   l.TargetID,
		Action:     l.Action,
		ActorID:    l.ActorID,
		CreatedAt:  fmtTime(l.CreatedAt),
	}
	if len(l.BeforeValue) > 0 {
		var v interface{}
		if err := json.Unmarshal(l.BeforeValue, &v); err == nil {
			row.BeforeValue = v
		}
	}
	if len(l.AfterValue) > 0 {
		var v interface{}
		if err := json.Unmarshal(l.AfterValue, &v); err == nil {
			row.AfterValue = v
		}
	}
	return row
}

// courseAuditTargets 收集课程下各类审计目标的 ID 集合
func (s *reportService) courseAuditTargets(ctx context.Context, courseID string) (map[string][]string, error) {
	sessions, err := s.repo.Session.ListByCourse(ctx, courseID, 0, "")
	if err != nil {
		return nil, err
	}
	sessionIDs := make([]string, 0, len(sessions))
	for i := range sessions {
		sessionIDs = append(sessionIDs, sessions[i].ID)
	}

	atts, err := s.repo.Attendance.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	attIDs := make([]string, 0, len(atts))
	for i := range atts {
		attIDs = append(attIDs, atts[i].ID)
	}

	excuses, _, err := s.repo.Excuse.ListByCourse(ctx, courseID, "", 0, 10000)
	if err != nil {
		return nil, err
	}
	excuseIDs := make([]string, 0, len(excuses))
	for i := range excuses {
		excuseIDs = append(excuseIDs, excuses[i].ID)
	}

	appeals, _, err := s.repo.Appeal.ListByCourse(ctx, courseID, "", 0, 10000)
	if err != nil {
		return nil, err
	}
	appealIDs := make([]string, 0, len(appeals))
	for i := range appeals {
		appealIDs = append(appealIDs, appeals[i].ID)
	}

	return map[string][]string{
		model.AuditTargetSession:    sessionIDs,
		model.AuditTargetAttendance: attIDs,
		model.AuditTargetExcuse:     excuseIDs,
		model.AuditTargetAppeal:     appealIDs,
	}, nil
}

func (s *reportService) Audits(ctx context.Context, actor Actor, req *dto.AuditReportRequest) (*dto.AuditReportResponse, error) {
	if _, err := courseForOwner(ctx, s.repo, actor, req.CourseID); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.AuditQueryLimit
	}
	if limit <= 0 {
		limit = defaultAuditQueryLimit
	}

	var from, to *time.Time
	if req.From != "" {
		t, err := time.ParseInLocation("2006-01-02", req.From, time.Local)
		if err != nil {
			return nil, fmt.Errorf("from 日期格式错误: %w", err)
		}
		from = &t
	}
	if req.To != "" {
		t, err := time.ParseInLocation("2006-01-02", req.To, time.Local)
		if err != nil {
			return nil, fmt.Errorf("to 日期格式错误: %w", err)
		}
		// 含当天
		end := t.Add(24 * time.Hour)
		to = &end
	}

	targets, err := s.courseAuditTargets(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	types := []string{model.AuditTargetAttendance, model.AuditTargetExcuse, model.AuditTargetAppeal, model.AuditTargetSession}
	if req.TargetType != "" {
		types = []string{req.TargetType}
	}

	logs := make([]model.AuditLog, 0)
	for _, typ := range types {
		ids := targets[typ]
		if len(ids) == 0 {
			continue
		}
		part, err := s.repo.Audit.ListByTargets(ctx, typ, ids, req.Action, from, to, limit)
		if err != nil {
			return nil, err
		}
		logs = append(logs, part...)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	if len(logs) > limit {
		logs = logs[:limit]
	}

	byTargetType := map[string]int{}
	byAction := map[string]int{}
	rows := make([]dto.AuditRow, 0, len(logs))
	for i := range logs {
		byTargetType[logs[i].TargetType]++
		byAction[logs[i].Action]++
		rows = append(rows, toAuditRow(&logs[i]))
	}

	return &dto.AuditReportResponse{
		CourseID:     req.CourseID,
		Count:        len(rows),
		ByTargetType: byTargetType,
		ByAction:     byAction,
		List:         rows,
	}, nil
}

func (s *reportService) AuditList(ctx context.Context, actor Actor, req *dto.AuditListRequest) ([]dto.AuditRow, int64, error) {
	logs, total, err := s.repo.Audit.List(ctx, req.TargetType, req.TargetID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	rows := make([]dto.AuditRow, 0, len(logs))
	for i := range logs {
		rows = append(rows, toAuditRow(&logs[i]))
	}
	return rows, total, nil
}
