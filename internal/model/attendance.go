package model

import "time"

// 考勤状态
const (
	AttendanceUnknown = 0 // 未知（未记录）
	AttendancePresent = 1 // 出席
	AttendanceLate    = 2 // 迟到
	AttendanceAbsent  = 3 // 缺席
	AttendanceExcused = 4 // 公假
)

// ValidAttendanceStatus 校验考勤状态（含未知）
func ValidAttendanceStatus(s int) bool {
	return s >= AttendanceUnknown && s <= AttendanceExcused
}

// ValidCorrectionStatus 教师修正只允许 1..4，不允许改回未知
func ValidCorrectionStatus(s int) bool {
	return s >= AttendancePresent && s <= AttendanceExcused
}

// Attendance 考勤记录 — 对应 attendances，(session_id, student_id) 唯一
type Attendance struct {
	ID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"            json:"id"`
	SessionID string     `gorm:"type:uuid;not null;uniqueIndex:uniq_attendance,priority:1" json:"session_id"`
	StudentID string     `gorm:"type:uuid;not null;uniqueIndex:uniq_attendance,priority:2" json:"student_id"`
	Status    int        `gorm:"not null;default:0"                                        json:"status"`
	CheckedAt *time.Time `gorm:""                                                          json:"checked_at,omitempty"`
	UpdatedBy *string    `gorm:"type:uuid"                                                 json:"updated_by,omitempty"`
	BaseModel

	Session *ClassSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	Student *User         `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }
