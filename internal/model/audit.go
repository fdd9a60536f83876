package model

import "gorm.io/datatypes"

// 审计对象类型（规范化判别值，查询与写入统一使用）
const (
	AuditTargetAttendance = "ATTENDANCE"
	AuditTargetExcuse     = "EXCUSE"
	AuditTargetAppeal     = "APPEAL"
	AuditTargetSession    = "SESSION"
	AuditTargetUser       = "USER"
	AuditTargetCourse     = "COURSE"
)

// 审计动作
const (
	AuditActionCreate  = "CREATE"
	AuditActionUpdate  = "UPDATE"
	AuditActionDelete  = "DELETE"
	AuditActionApprove = "APPROVE"
	AuditActionReject  = "REJECT"
	AuditActionAccept  = "ACCEPT"
)

// AuditLog 审计日志 — 对应 audit_logs，只追加不修改
type AuditLog struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TargetType  string         `gorm:"type:varchar(20);not null;index:idx_audit_target,priority:1" json:"target_type"`
	TargetID    string         `gorm:"type:uuid;not null;index:idx_audit_target,priority:2"        json:"target_id"`
	Action      string         `gorm:"type:varchar(20);not null"                      json:"action"`
	ActorID     *string        `gorm:"type:uuid"                                      json:"actor_id,omitempty"`
	BeforeValue datatypes.JSON `gorm:"type:jsonb"                                     json:"before_value,omitempty"`
	AfterValue  datatypes.JSON `gorm:"type:jsonb"                                     json:"after_value,omitempty"`
	BaseModel
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }
