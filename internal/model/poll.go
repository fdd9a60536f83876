package model

import "time"

// 投票状态
const (
	PollOpen   = "OPEN"
	PollClosed = "CLOSED"
)

// FreeTimePoll 空闲时间投票 — 对应 free_time_polls
type FreeTimePoll struct {
	ID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID    string     `gorm:"type:uuid;not null;index"                       json:"course_id"`
	CreatorID   string     `gorm:"type:uuid;not null"                             json:"creator_id"`
	Title       string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string     `gorm:"type:text;not null;default:''"                  json:"description"`
	Status      string     `gorm:"type:varchar(20);not null;default:'OPEN'"       json:"status"`
	DeadlineAt  *time.Time `gorm:""                                               json:"deadline_at,omitempty"`
	BaseModel

	Options []PollOption `gorm:"foreignKey:PollID" json:"options,omitempty"`
}

// TableName 指定表名
func (FreeTimePoll) TableName() string { return "free_time_polls" }

// PollOption 投票选项 — 对应 poll_options
type PollOption struct {
	ID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PollID  string     `gorm:"type:uuid;not null;index"                       json:"poll_id"`
	Label   string     `gorm:"type:varchar(200);not null"                     json:"label"`
	StartAt *time.Time `gorm:""                                               json:"start_at,omitempty"`
	EndAt   *time.Time `gorm:""                                               json:"end_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (PollOption) TableName() string { return "poll_options" }

// PollVote 投票记录 — 对应 poll_votes，(poll_id, voter_id) 唯一，OPEN 期间可改投
type PollVote struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"id"`
	PollID   string `gorm:"type:uuid;not null;uniqueIndex:uniq_vote,priority:1" json:"poll_id"`
	OptionID string `gorm:"type:uuid;not null"                                  json:"option_id"`
	VoterID  string `gorm:"type:uuid;not null;uniqueIndex:uniq_vote,priority:2" json:"voter_id"`
	BaseModel
}

// TableName 指定表名
func (PollVote) TableName() string { return "poll_votes" }
