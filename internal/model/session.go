package model

import "time"

// 签到方式
const (
	MethodElectronic = "ELECTRONIC" // 电子签到，学生自助
	MethodCode       = "CODE"       // 签到码，需输入 6 位数字
	MethodRollCall   = "ROLL_CALL"  // 教师点名，学生不可自助签到
)

// ValidAttendanceMethod 校验签到方式取值
func ValidAttendanceMethod(m string) bool {
	return m == MethodElectronic || m == MethodCode || m == MethodRollCall
}

// 节次状态
const (
	SessionOpen   = "OPEN"
	SessionPaused = "PAUSED"
	SessionClosed = "CLOSED"
)

// ClassSession 上课节次 — 对应 class_sessions，(course_id, week, round) 唯一
type ClassSession struct {
	ID               string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"         json:"id"`
	CourseID         string     `gorm:"type:uuid;not null;uniqueIndex:uniq_session,priority:1" json:"course_id"`
	Week             int        `gorm:"not null;uniqueIndex:uniq_session,priority:2"           json:"week"`
	Round            int        `gorm:"not null;uniqueIndex:uniq_session,priority:3"           json:"round"`
	StartAt          *time.Time `gorm:""                                                       json:"start_at,omitempty"`
	EndAt            *time.Time `gorm:""                                                       json:"end_at,omitempty"`
	Room             *string    `gorm:"type:varchar(100)"                                      json:"room,omitempty"`
	AttendanceMethod string     `gorm:"type:varchar(20);not null;default:'ELECTRONIC'"         json:"attendance_method"`
	Status           string     `gorm:"type:varchar(20);not null;default:'CLOSED'"             json:"status"`
	Code             *string    `gorm:"type:varchar(6)"                                        json:"-"`
	BaseModel

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (ClassSession) TableName() string { return "class_sessions" }
