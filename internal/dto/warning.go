package dto

// ── 缺勤预警模块 DTO ──

// WarningRunRequest 预警批处理请求
// course_id 与 (semester, department) 二选一
type WarningRunRequest struct {
	CourseID   *string `json:"course_id"  binding:"omitempty,uuid"`
	Semester   *string `json:"semester"   binding:"omitempty,max=20"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	DryRun     bool    `json:"dry_run"`
}

// WarningItem 单个学生的预警结果
type WarningItem struct {
	CourseID      string `json:"course_id"`
	CourseTitle   string `json:"course_title"`
	StudentID     string `json:"student_id"`
	StudentName   string `json:"student_name"`
	Absent        int    `json:"absent"`
	Late          int    `json:"late"`
	AbsEquivalent int    `json:"abs_equivalent"` // absent + floor(late/late_to_absent)
	Level         string `json:"level"`          // WARN / DANGER / FAIL
}

// WarningRunResponse 预警批处理结果
type WarningRunResponse struct {
	DryRun        bool          `json:"dry_run"`
	Courses       int           `json:"courses"`
	Checked       int           `json:"checked"`
	Notified      int           `json:"notified"` // dry-run 时为本应发送的条数
	Deduped       int           `json:"deduped"`
	Items         []WarningItem `json:"items"`
}
