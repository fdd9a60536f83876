package dto

// ── 申诉模块 DTO ──

// CreateAppealRequest 学生提交申诉请求
type CreateAppealRequest struct {
	Message         string `json:"message"          binding:"required,min=2,max=2000"`
	RequestedStatus *int   `json:"requested_status" binding:"omitempty,min=1,max=4"`
}

// ResolveAppealRequest 处理申诉请求
// apply_attendance_status 优先于学生的 requested_status
type ResolveAppealRequest struct {
	Status                string  `json:"status"                  binding:"required,oneof=ACCEPTED REJECTED"`
	ReplyText             *string `json:"reply_text"              binding:"omitempty,max=2000"`
	ApplyAttendanceStatus *int    `json:"apply_attendance_status" binding:"omitempty,min=1,max=4"`
}

// AppealListRequest 申诉列表查询参数
type AppealListRequest struct {
	Status   string `form:"status"    binding:"omitempty,oneof=PENDING ACCEPTED REJECTED"`
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
	PaginationRequest
}

// AppealResponse 申诉响应
type AppealResponse struct {
	ID              string  `json:"id"`
	AttendanceID    string  `json:"attendance_id"`
	StudentID       string  `json:"student_id"`
	StudentName     string  `json:"student_name,omitempty"`
	Message         string  `json:"message"`
	RequestedStatus *int    `json:"requested_status,omitempty"`
	Status          string  `json:"status"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	ReplyText       *string `json:"reply_text,omitempty"`
	CreatedAt       string  `json:"created_at"`
}
