package dto

// ── 报表模块 DTO ──

// RiskRequest 危险学生筛查参数
type RiskRequest struct {
	CourseID              string `form:"course_id"                 binding:"required,uuid"`
	AbsentMin             *int   `form:"absent_min"                binding:"omitempty,min=1"`
	LateStreakMin         *int   `form:"late_streak_min"           binding:"omitempty,min=1"`
	AbsentStreakMin       *int   `form:"absent_streak_min"         binding:"omitempty,min=1"`
	LateOrAbsentStreakMin *int   `form:"late_or_absent_streak_min" binding:"omitempty,min=1"`
	IncludeUnknown        bool   `form:"include_unknown"`
}

// StreakPair 最长连续与当前（末尾）连续次数
type StreakPair struct {
	Max     int `json:"max"`
	Current int `json:"current"`
}

// RiskRow 单个学生的风险画像
type RiskRow struct {
	StudentID    string     `json:"student_id"`
	Name         string     `json:"name"`
	Present      int        `json:"present"`
	Late         int        `json:"late"`
	Absent       int        `json:"absent"`
	Excused      int        `json:"excused"`
	Unknown      int        `json:"unknown"`
	LateStreak   StreakPair `json:"late_streak"`
	AbsentStreak StreakPair `json:"absent_streak"`
	LAStreak     StreakPair `json:"late_or_absent_streak"`
	Flags        []string   `json:"flags"`
	RiskScore    int        `json:"risk_score"`
}

// RiskResponse 危险学生筛查响应，riskScore 降序、absent 次序
type RiskResponse struct {
	CourseID  string         `json:"course_id"`
	Criteria  map[string]int `json:"criteria"`
	Flagged   int            `json:"flagged"`
	Rows      []RiskRow      `json:"rows"`
}

// ── 出席报表 ──

// AttendanceReportRequest 出席报表参数
type AttendanceReportRequest struct {
	CourseID string `form:"course_id" binding:"required,uuid"`
	Week     *int   `form:"week"      binding:"omitempty,min=1"`
}

// SessionReportRow 单节次出席统计
type SessionReportRow struct {
	SessionID      string  `json:"session_id"`
	Week           int     `json:"week"`
	Round          int     `json:"round"`
	Present        int     `json:"present"`
	Late           int     `json:"late"`
	Absent         int     `json:"absent"`
	Excused        int     `json:"excused"`
	Unknown        int     `json:"unknown"`
	AttendanceRate float64 `json:"attendance_rate"` // (present+late+excused)/enrolled，百分比 2 位小数
	AbsenceRate    float64 `json:"absence_rate"`
}

// WeekReportRow 按周聚合统计
type WeekReportRow struct {
	Week           int     `json:"week"`
	Sessions       int     `json:"sessions"`
	Present        int     `json:"present"`
	Late           int     `json:"late"`
	Absent         int     `json:"absent"`
	Excused        int     `json:"excused"`
	Unknown        int     `json:"unknown"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// AttendanceReportResponse 出席报表响应
type AttendanceReportResponse struct {
	CourseID   string             `json:"course_id"`
	Enrolled   int                `json:"enrolled"`
	PerSession []SessionReportRow `json:"per_session"`
	PerWeek    []WeekReportRow    `json:"per_week"`
}

// ── 请假报表 ──

// ExcuseReportRequest 请假报表参数
type ExcuseReportRequest struct {
	CourseID string `form:"course_id" binding:"required,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Week     *int   `form:"week"      binding:"omitempty,min=1"`
}

// ExcuseReportResponse 请假报表响应
type ExcuseReportResponse struct {
	CourseID     string           `json:"course_id"`
	Count        int              `json:"count"`
	ByStatus     map[string]int   `json:"by_status"`
	ByWeek       map[int]int      `json:"by_week"`
	ApprovedRate float64          `json:"approved_rate"` // 已处理中获批比例，百分比 2 位小数
	List         []ExcuseResponse `json:"list"`
}

// ── 审计报表 ──

// AuditReportRequest 课程维度审计查询参数
type AuditReportRequest struct {
	CourseID   string `form:"course_id"   binding:"required,uuid"`
	TargetType string `form:"target_type" binding:"omitempty,oneof=ATTENDANCE EXCUSE APPEAL SESSION"`
	Action     string `form:"action"`
	From       string `form:"from"` // YYYY-MM-DD
	To         string `form:"to"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// AuditRow 审计日志行
type AuditRow struct {
	ID          string      `json:"id"`
	TargetType  string      `json:"target_type"`
	TargetID    string      `json:"target_id"`
	Action      string      `json:"action"`
	ActorID     *string     `json:"actor_id,omitempty"`
	BeforeValue interface{} `json:"before_value,omitempty"`
	AfterValue  interface{} `json:"after_value,omitempty"`
	CreatedAt   string      `json:"created_at"`
}

// AuditReportResponse 课程维度审计响应
type AuditReportResponse struct {
	CourseID     string         `json:"course_id"`
	Count        int            `json:"count"`
	ByTargetType map[string]int `json:"by_target_type"`
	ByAction     map[string]int `json:"by_action"`
	List         []AuditRow     `json:"list"`
}

// AuditListRequest 原始审计列表查询参数
type AuditListRequest struct {
	TargetType string `form:"target_type" binding:"omitempty,oneof=ATTENDANCE EXCUSE APPEAL SESSION USER COURSE"`
	TargetID   string `form:"target_id"   binding:"omitempty,uuid"`
	PaginationRequest
}
