package model

// AttendancePolicy 课程考勤政策 — 对应 attendance_policies，course_id 唯一
type AttendancePolicy struct {
	ID              string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID        string  `gorm:"type:uuid;not null;uniqueIndex"                 json:"course_id"`
	LateToAbsent    int     `gorm:"not null;default:3"                             json:"late_to_absent"`
	WPresent        float64 `gorm:"column:w_present;not null;default:1.0"          json:"w_present"`
	WLate           float64 `gorm:"column:w_late;not null;default:0.5"             json:"w_late"`
	WAbsent         float64 `gorm:"column:w_absent;not null;default:0.0"           json:"w_absent"`
	WExcused        float64 `gorm:"column:w_excused;not null;default:1.0"          json:"w_excused"`
	MaxScore        int     `gorm:"not null;default:20"                            json:"max_score"`
	MissingAsAbsent bool    `gorm:"not null;default:true"                          json:"missing_as_absent"`
	WarnAbsences    int     `gorm:"not null;default:2"                             json:"warn_absences"`
	DangerAbsences  int     `gorm:"not null;default:4"                             json:"danger_absences"`
	FailAbsences    int     `gorm:"not null;default:6"                             json:"fail_absences"`
	BaseModel
}

// TableName 指定表名
func (AttendancePolicy) TableName() string { return "attendance_policies" }

// DefaultPolicy 返回课程未配置政策时使用的默认值
func DefaultPolicy(courseID string) *AttendancePolicy {
	return &AttendancePolicy{
		CourseID:        courseID,
		LateToAbsent:    3,
		WPresent:        1.0,
		WLate:           0.5,
		WAbsent:         0.0,
		WExcused:        1.0,
		MaxScore:        20,
		MissingAsAbsent: true,
		WarnAbsences:    2,
		DangerAbsences:  4,
		FailAbsences:    6,
	}
}
