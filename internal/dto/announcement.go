package dto

// ── 公告模块 DTO ──

// CreateAnnouncementRequest 发布公告请求
// GLOBAL 仅 ADMIN；COURSE 需 course_id 且为课程教师或 ADMIN
type CreateAnnouncementRequest struct {
	Scope    string  `json:"scope"     binding:"required,oneof=GLOBAL COURSE"`
	CourseID *string `json:"course_id" binding:"omitempty,uuid"`
	Title    string  `json:"title"     binding:"required,min=1,max=200"`
	Content  string  `json:"content"   binding:"required,min=1"`
	Pinned   bool    `json:"pinned"`
}

// AnnouncementResponse 公告响应
type AnnouncementResponse struct {
	ID         string  `json:"id"`
	Scope      string  `json:"scope"`
	CourseID   *string `json:"course_id,omitempty"`
	AuthorID   string  `json:"author_id"`
	AuthorName string  `json:"author_name,omitempty"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Pinned     bool    `json:"pinned"`
	IsRead     bool    `json:"is_read"`
	CreatedAt  string  `json:"created_at"`
}
