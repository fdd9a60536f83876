package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求（ADMIN）
type CreateCourseRequest struct {
	Title        string  `json:"title"         binding:"required,min=1,max=200"`
	Section      *string `json:"section"       binding:"omitempty,max=50"`
	Semester     string  `json:"semester"      binding:"required,max=20"`
	Department   string  `json:"department"    binding:"required,max=100"`
	InstructorID string  `json:"instructor_id" binding:"required,uuid"`
}

// UpdateCourseRequest 更新课程请求（部分更新）
type UpdateCourseRequest struct {
	Title        *string `json:"title"         binding:"omitempty,min=1,max=200"`
	Section      *string `json:"section"       binding:"omitempty,max=50"`
	Semester     *string `json:"semester"      binding:"omitempty,max=20"`
	Department   *string `json:"department"    binding:"omitempty,max=100"`
	InstructorID *string `json:"instructor_id" binding:"omitempty,uuid"`
}

// EnrollRequest 选课请求（ADMIN）
type EnrollRequest struct {
	CourseID  string `json:"course_id"  binding:"required,uuid"`
	StudentID string `json:"student_id" binding:"required,uuid"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	Semester   string `form:"semester"`
	Department string `form:"department"`
}

// CourseResponse 课程响应
type CourseResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Section        *string `json:"section,omitempty"`
	Semester       string  `json:"semester"`
	Department     string  `json:"department"`
	InstructorID   string  `json:"instructor_id"`
	InstructorName string  `json:"instructor_name,omitempty"`
	CreatedAt      string  `json:"created_at"`
}
