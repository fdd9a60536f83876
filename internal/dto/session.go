package dto

// ── 节次模块 DTO ──

// CreateSessionRequest 手动创建节次请求
type CreateSessionRequest struct {
	Week             int     `json:"week"              binding:"required,min=1"`
	Round            int     `json:"round"             binding:"omitempty,min=1"`
	StartAt          *string `json:"start_at"          binding:"omitempty"` // RFC3339
	EndAt            *string `json:"end_at"            binding:"omitempty"`
	Room             *string `json:"room"              binding:"omitempty,max=100"`
	AttendanceMethod string  `json:"attendance_method" binding:"omitempty,oneof=ELECTRONIC CODE ROLL_CALL"`
}

// SessionListRequest 节次列表查询参数
type SessionListRequest struct {
	Week   int    `form:"week"   binding:"omitempty,min=1"`
	Status string `form:"status" binding:"omitempty"`
}

// ── 批量生成 ──

// TimeSpec 每个上课日内的时间段
type TimeSpec struct {
	Start           string `json:"start"            binding:"required"` // HH:MM
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=10,max=300"`
}

// MakeupSpec 补课节次；week/round 缺省时自动推导
type MakeupSpec struct {
	Date             string  `json:"date"              binding:"required"` // YYYY-MM-DD
	Start            string  `json:"start"             binding:"required"` // HH:MM
	DurationMinutes  int     `json:"duration_minutes"  binding:"omitempty,min=10,max=300"`
	Week             int     `json:"week"              binding:"omitempty,min=1"`
	Round            int     `json:"round"             binding:"omitempty,min=1"`
	Room             *string `json:"room"              binding:"omitempty,max=100"`
	AttendanceMethod string  `json:"attendance_method" binding:"omitempty,oneof=ELECTRONIC CODE ROLL_CALL"`
	Status           string  `json:"status"            binding:"omitempty,oneof=OPEN PAUSED CLOSED"`
}

// GenerateSessionsRequest 批量生成节次请求
// meeting_days 接受星期名（MON..SUN）或数字 0..6（0=周日）
type GenerateSessionsRequest struct {
	BaseDate         string        `json:"base_date"         binding:"required"` // YYYY-MM-DD，第 1 周起点
	Weeks            int           `json:"weeks"             binding:"required,min=1,max=30"`
	MeetingDays      []interface{} `json:"meeting_days"      binding:"required,min=1"`
	Times            []TimeSpec    `json:"times"             binding:"required,min=1,dive"`
	Room             *string       `json:"room"              binding:"omitempty,max=100"`
	AttendanceMethod string        `json:"attendance_method" binding:"omitempty,oneof=ELECTRONIC CODE ROLL_CALL"`
	DefaultStatus    string        `json:"default_status"    binding:"omitempty,oneof=OPEN PAUSED CLOSED"`
	Holidays         []string      `json:"holidays"          binding:"omitempty"`
	Makeups          []MakeupSpec  `json:"makeups"           binding:"omitempty,dive"`
	Mode             string        `json:"mode"              binding:"omitempty,oneof=skipExisting errorOnConflict overwrite"`
}

// SkippedHoliday 因公休日被跳过的槽位
type SkippedHoliday struct {
	Week  int    `json:"week"`
	Round int    `json:"round"`
	Date  string `json:"date"`
}

// GenerateAction 单个节次的生成结果
type GenerateAction struct {
	Action    string `json:"action"` // created / updated / skipped / *_makeup
	SessionID string `json:"session_id,omitempty"`
	Week      int    `json:"week"`
	Round     int    `json:"round"`
}

// GenerateSessionsResponse 批量生成结果
type GenerateSessionsResponse struct {
	CourseID        string           `json:"course_id"`
	Created         int              `json:"created"`
	Updated         int              `json:"updated"`
	Skipped         int              `json:"skipped"`
	SkippedHolidays []SkippedHoliday `json:"skipped_holidays"`
	AppliedMakeups  []GenerateAction `json:"applied_makeups"`
	MissingSummary  map[int][]int    `json:"missing_summary"` // week → 仍缺的 round 列表
	Sample          []GenerateAction `json:"sample"`          // 前 30 条
}

// SessionResponse 节次响应
type SessionResponse struct {
	ID               string  `json:"id"`
	CourseID         string  `json:"course_id"`
	Week             int     `json:"week"`
	Round            int     `json:"round"`
	StartAt          *string `json:"start_at,omitempty"`
	EndAt            *string `json:"end_at,omitempty"`
	Room             *string `json:"room,omitempty"`
	AttendanceMethod string  `json:"attendance_method"`
	Status           string  `json:"status"`
	Code             *string `json:"code,omitempty"` // 仅教师/ADMIN 可见
}
