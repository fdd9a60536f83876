package model

import "time"

// 申诉状态
const (
	AppealPending  = "PENDING"
	AppealAccepted = "ACCEPTED"
	AppealRejected = "REJECTED"
)

// Appeal 考勤申诉 — 对应 appeals
type Appeal struct {
	ID              string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AttendanceID    string     `gorm:"type:uuid;not null"                             json:"attendance_id"`
	StudentID       string     `gorm:"type:uuid;not null"                             json:"student_id"`
	Message         string     `gorm:"type:text;not null"                             json:"message"`
	RequestedStatus *int       `gorm:""                                               json:"requested_status,omitempty"`
	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	ReviewedBy      *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `gorm:""                                               json:"reviewed_at,omitempty"`
	ReplyText       *string    `gorm:"type:text"                                      json:"reply_text,omitempty"`
	BaseModel

	Attendance *Attendance `gorm:"foreignKey:AttendanceID" json:"attendance,omitempty"`
	Student    *User       `gorm:"foreignKey:StudentID"    json:"student,omitempty"`
}

// TableName 指定表名
func (Appeal) TableName() string { return "appeals" }
