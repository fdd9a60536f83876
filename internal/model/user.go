package model

// 用户角色
const (
	RoleAdmin      = "ADMIN"
	RoleInstructor = "INSTRUCTOR"
	RoleStudent    = "STUDENT"
)

// ValidRole 校验角色取值
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleInstructor || role == RoleStudent
}

// User 用户表 — 对应 users
type User struct {
	ID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Role         string  `gorm:"type:varchar(20);not null"                      json:"role"`
	Department   *string `gorm:"type:varchar(100)"                              json:"department,omitempty"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
