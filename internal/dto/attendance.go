package dto

// ── 考勤模块 DTO ──

// AttendRequest 学生自助签到请求；CODE 节次必须携带签到码
type AttendRequest struct {
	Code string `json:"code" binding:"omitempty,len=6"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	ID        string  `json:"id"`
	SessionID string  `json:"session_id"`
	StudentID string  `json:"student_id"`
	Status    int     `json:"status"`
	CheckedAt *string `json:"checked_at,omitempty"`
	UpdatedBy *string `json:"updated_by,omitempty"`
}

// AttendanceSummary 节次出席统计
type AttendanceSummary struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	Excused int `json:"excused"`
	Unknown int `json:"unknown"`
}

// SessionSummaryResponse 节次出席汇总响应
type SessionSummaryResponse struct {
	SessionID string               `json:"session_id"`
	Count     int                  `json:"count"`
	Summary   AttendanceSummary    `json:"summary"`
	List      []AttendanceResponse `json:"list"`
}

// ── 点名 ──

// RollCallRow 点名名单中的一行
type RollCallRow struct {
	StudentID  string  `json:"student_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department *string `json:"department,omitempty"`
	Status     int     `json:"status"`
	CheckedAt  *string `json:"checked_at,omitempty"`
}

// RollCallListResponse 点名名单响应
type RollCallListResponse struct {
	SessionID string        `json:"session_id"`
	CourseID  string        `json:"course_id"`
	Count     int           `json:"count"`
	List      []RollCallRow `json:"list"`
}

// RollCallItem 批量点名的单条记录
type RollCallItem struct {
	StudentID string `json:"student_id" binding:"required"`
	Status    int    `json:"status"` // 0..4，越界条目被跳过并计数
}

// UpdateRollCallRequest 批量点名请求
type UpdateRollCallRequest struct {
	Items []RollCallItem `json:"items" binding:"required,min=1,dive"`
}

// RollCallResult 批量点名结果
type RollCallResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ── 修正 ──

// CorrectAttendanceRequest 教师修正考勤请求；只允许 1..4
type CorrectAttendanceRequest struct {
	Status int `json:"status" binding:"required,min=1,max=4"`
}

// MyAttendanceRequest 学生查询本人考勤参数
type MyAttendanceRequest struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
}
