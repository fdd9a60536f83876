package model

// Course 课程表 — 对应 courses
type Course struct {
	ID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title        string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Section      *string `gorm:"type:varchar(50)"                               json:"section,omitempty"`
	Semester     string  `gorm:"type:varchar(20);not null"                      json:"semester"`
	Department   string  `gorm:"type:varchar(100);not null"                     json:"department"`
	InstructorID string  `gorm:"type:uuid;not null"                             json:"instructor_id"`
	BaseModel

	// 关联
	Instructor *User `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// Enrollment 选课记录 — 对应 enrollments，(course_id, student_id) 唯一
type Enrollment struct {
	ID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"            json:"id"`
	CourseID  string `gorm:"type:uuid;not null;uniqueIndex:uniq_enrollment,priority:1" json:"course_id"`
	StudentID string `gorm:"type:uuid;not null;uniqueIndex:uniq_enrollment,priority:2" json:"student_id"`
	BaseModel

	Course  *Course `gorm:"foreignKey:CourseID"  json:"course,omitempty"`
	Student *User   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
