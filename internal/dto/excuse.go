package dto

// ── 请假模块 DTO ──

// CreateExcuseRequest 学生提交请假请求
type CreateExcuseRequest struct {
	ReasonCode string  `json:"reason_code" binding:"required,oneof=SICK OFFICIAL ETC"`
	ReasonText *string `json:"reason_text" binding:"omitempty,max=2000"`
	FilePath   *string `json:"file_path"   binding:"omitempty,max=500"`
}

// ResolveExcuseRequest 审批请假请求
type ResolveExcuseRequest struct {
	Status    string  `json:"status"     binding:"required,oneof=APPROVED REJECTED"`
	ReplyText *string `json:"reply_text" binding:"omitempty,max=2000"`
}

// ExcuseListRequest 请假列表查询参数
type ExcuseListRequest struct {
	Status   string `form:"status"    binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
	PaginationRequest
}

// ExcuseResponse 请假单响应
type ExcuseResponse struct {
	ID          string  `json:"id"`
	SessionID   string  `json:"session_id"`
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name,omitempty"`
	ReasonCode  string  `json:"reason_code"`
	ReasonText  *string `json:"reason_text,omitempty"`
	FilePath    *string `json:"file_path,omitempty"`
	Status      string  `json:"status"`
	ReviewedBy  *string `json:"reviewed_by,omitempty"`
	ReviewedAt  *string `json:"reviewed_at,omitempty"`
	ReplyText   *string `json:"reply_text,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
