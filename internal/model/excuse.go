package model

import "time"

// 请假事由
const (
	ReasonSick     = "SICK"
	ReasonOfficial = "OFFICIAL"
	ReasonEtc      = "ETC"
)

// ValidReasonCode 校验请假事由取值
func ValidReasonCode(c string) bool {
	return c == ReasonSick || c == ReasonOfficial || c == ReasonEtc
}

// 请假单状态
const (
	ExcusePending  = "PENDING"
	ExcuseApproved = "APPROVED"
	ExcuseRejected = "REJECTED"
)

// ExcuseRequest 请假申请 — 对应 excuse_requests
type ExcuseRequest struct {
	ID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID  string     `gorm:"type:uuid;not null"                             json:"session_id"`
	StudentID  string     `gorm:"type:uuid;not null"                             json:"student_id"`
	ReasonCode string     `gorm:"type:varchar(20);not null"                      json:"reason_code"`
	ReasonText *string    `gorm:"type:text"                                      json:"reason_text,omitempty"`
	FilePath   *string    `gorm:"type:varchar(500)"                              json:"file_path,omitempty"`
	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	ReviewedBy *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `gorm:""                                               json:"reviewed_at,omitempty"`
	ReplyText  *string    `gorm:"type:text"                                      json:"reply_text,omitempty"`
	BaseModel

	Session *ClassSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	Student *User         `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (ExcuseRequest) TableName() string { return "excuse_requests" }
