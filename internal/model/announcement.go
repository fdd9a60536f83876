package model

import "time"

// 公告范围
const (
	AnnouncementGlobal = "GLOBAL"
	AnnouncementCourse = "COURSE"
)

// Announcement 公告 — 对应 announcements
type Announcement struct {
	ID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Scope    string  `gorm:"type:varchar(20);not null"                      json:"scope"`
	CourseID *string `gorm:"type:uuid;index"                                json:"course_id,omitempty"`
	AuthorID string  `gorm:"type:uuid;not null"                             json:"author_id"`
	Title    string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content  string  `gorm:"type:text;not null"                             json:"content"`
	Pinned   bool    `gorm:"not null;default:false"                         json:"pinned"`
	BaseModel

	Author *User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Announcement) TableName() string { return "announcements" }

// AnnouncementRead 公告已读标记 — 对应 announcement_reads，(announcement_id, user_id) 唯一
type AnnouncementRead struct {
	ID             string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"id"`
	AnnouncementID string    `gorm:"type:uuid;not null;uniqueIndex:uniq_ann_read,priority:1" json:"announcement_id"`
	UserID         string    `gorm:"type:uuid;not null;uniqueIndex:uniq_ann_read,priority:2" json:"user_id"`
	ReadAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                      json:"read_at"`
	BaseModel
}

// TableName 指定表名
func (AnnouncementRead) TableName() string { return "announcement_reads" }
