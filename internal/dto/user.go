package dto

// ── 用户管理模块 DTO（ADMIN） ──

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Email      string  `json:"email"      binding:"required,email"`
	Name       string  `json:"name"       binding:"required,min=1,max=100"`
	Password   string  `json:"password"   binding:"required,min=8,max=72"`
	Role       string  `json:"role"       binding:"required,oneof=ADMIN INSTRUCTOR STUDENT"`
	Department *string `json:"department" binding:"omitempty,max=100"`
}

// UpdateUserRequest 更新用户请求（部分更新）
type UpdateUserRequest struct {
	Email      *string `json:"email"      binding:"omitempty,email"`
	Name       *string `json:"name"       binding:"omitempty,min=1,max=100"`
	Password   *string `json:"password"   binding:"omitempty,min=8,max=72"`
	Department *string `json:"department" binding:"omitempty,max=100"`
}

// UpdateRoleRequest 变更角色请求
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN INSTRUCTOR STUDENT"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Role       string `form:"role"       binding:"omitempty,oneof=ADMIN INSTRUCTOR STUDENT"`
	Department string `form:"department"`
	Keyword    string `form:"keyword"` // 按姓名或邮箱模糊匹配
	PaginationRequest
}
