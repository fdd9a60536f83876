package model

import "time"

// PersonalMessage 私信 — 对应 personal_messages
type PersonalMessage struct {
	ID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SenderID   string     `gorm:"type:uuid;not null;index"                       json:"sender_id"`
	ReceiverID string     `gorm:"type:uuid;not null;index"                       json:"receiver_id"`
	Title      string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Content    string     `gorm:"type:text;not null"                             json:"content"`
	IsRead     bool       `gorm:"not null;default:false"                         json:"is_read"`
	ReadAt     *time.Time `gorm:""                                               json:"read_at,omitempty"`
	BaseModel

	Sender   *User `gorm:"foreignKey:SenderID"   json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

// TableName 指定表名
func (PersonalMessage) TableName() string { return "personal_messages" }
