package model

import "time"

// 通知类型
const (
	NotifyExcuseRequested = "EXCUSE_REQUESTED"
	NotifyExcuseApproved  = "EXCUSE_APPROVED"
	NotifyExcuseRejected  = "EXCUSE_REJECTED"
	NotifyAppealRequested = "APPEAL_REQUESTED"
	NotifyAppealAccepted  = "APPEAL_ACCEPTED"
	NotifyAppealRejected  = "APPEAL_REJECTED"
	NotifyAbsenceWarn     = "ABSENCE_WARN"
	NotifyAbsenceDanger   = "ABSENCE_DANGER"
	NotifyAbsenceFail     = "ABSENCE_FAIL"
	NotifyAnnouncement    = "ANNOUNCEMENT_POSTED"
	NotifyMessage         = "MESSAGE_RECEIVED"
	NotifyPollOpened      = "POLL_OPENED"
	NotifyPollClosed      = "POLL_CLOSED"
)

// Notification 站内通知 — 对应 notifications
type Notification struct {
	ID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string     `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type      string     `gorm:"type:varchar(30);not null"                      json:"type"`
	Title     string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Message   string     `gorm:"type:text;not null;default:''"                  json:"message"`
	LinkURL   *string    `gorm:"type:varchar(500)"                              json:"link_url,omitempty"`
	IsRead    bool       `gorm:"not null;default:false"                         json:"is_read"`
	ReadAt    *time.Time `gorm:""                                               json:"read_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
