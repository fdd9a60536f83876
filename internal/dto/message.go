package dto

// ── 私信模块 DTO ──

// SendMessageRequest 发送私信请求
// 学生只能给已选课程的教师发信
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required,uuid"`
	Title      string `json:"title"       binding:"required,min=1,max=200"`
	Content    string `json:"content"     binding:"required,min=1"`
}

// MessageResponse 私信响应
type MessageResponse struct {
	ID           string  `json:"id"`
	SenderID     string  `json:"sender_id"`
	SenderName   string  `json:"sender_name,omitempty"`
	ReceiverID   string  `json:"receiver_id"`
	ReceiverName string  `json:"receiver_name,omitempty"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	IsRead       bool    `json:"is_read"`
	ReadAt       *string `json:"read_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}
