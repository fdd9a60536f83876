package dto

// ── 考勤政策与算分模块 DTO ──

// UpsertPolicyRequest 政策创建/部分更新请求
type UpsertPolicyRequest struct {
	LateToAbsent    *int     `json:"late_to_absent"    binding:"omitempty,min=1"`
	WPresent        *float64 `json:"w_present"`
	WLate           *float64 `json:"w_late"`
	WAbsent         *float64 `json:"w_absent"`
	WExcused        *float64 `json:"w_excused"`
	MaxScore        *int     `json:"max_score"         binding:"omitempty,min=1"`
	MissingAsAbsent *bool    `json:"missing_as_absent"`
	WarnAbsences    *int     `json:"warn_absences"     binding:"omitempty,min=0"`
	DangerAbsences  *int     `json:"danger_absences"   binding:"omitempty,min=0"`
	FailAbsences    *int     `json:"fail_absences"     binding:"omitempty,min=0"`
}

// PolicyResponse 政策响应
type PolicyResponse struct {
	CourseID        string  `json:"course_id"`
	LateToAbsent    int     `json:"late_to_absent"`
	WPresent        float64 `json:"w_present"`
	WLate           float64 `json:"w_late"`
	WAbsent         float64 `json:"w_absent"`
	WExcused        float64 `json:"w_excused"`
	MaxScore        int     `json:"max_score"`
	MissingAsAbsent bool    `json:"missing_as_absent"`
	WarnAbsences    int     `json:"warn_absences"`
	DangerAbsences  int     `json:"danger_absences"`
	FailAbsences    int     `json:"fail_absences"`
	IsDefault       bool    `json:"is_default"` // 课程未配置时返回默认政策
}

// ScoreRow 单个学生的出席分
type ScoreRow struct {
	StudentID     string  `json:"student_id"`
	Name          string  `json:"name"`
	Present       int     `json:"present"`
	Late          int     `json:"late"`
	Absent        int     `json:"absent"`
	Excused       int     `json:"excused"`
	Unknown       int     `json:"unknown"`
	ConvertedAbs  int     `json:"converted_absent"` // 迟到折算出的缺席数
	LateRemainder int     `json:"late_remainder"`
	AbsentFinal   int     `json:"absent_final"`
	RawScore      float64 `json:"raw_score"`
	Score         float64 `json:"score"` // 折算到 max_score，保留 2 位小数
}

// ScoreResponse 课程出席分响应，按 score 降序
type ScoreResponse struct {
	CourseID      string         `json:"course_id"`
	TotalSessions int            `json:"total_sessions"`
	Policy        PolicyResponse `json:"policy"`
	Rows          []ScoreRow     `json:"rows"`
}
