package dto

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	UnreadOnly bool `form:"unread_only"`
	PaginationRequest
}

// MarkReadRequest 批量标记已读请求；all=true 时忽略 ids
type MarkReadRequest struct {
	IDs []string `json:"ids" binding:"omitempty,dive,uuid"`
	All bool     `json:"all"`
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	LinkURL   *string `json:"link_url,omitempty"`
	IsRead    bool    `json:"is_read"`
	ReadAt    *string `json:"read_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}
