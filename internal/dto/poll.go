package dto

// ── 空闲时间投票模块 DTO ──

// PollOptionInput 创建投票时的选项
type PollOptionInput struct {
	Label   string  `json:"label"    binding:"required,min=1,max=200"`
	StartAt *string `json:"start_at" binding:"omitempty"` // RFC3339
	EndAt   *string `json:"end_at"   binding:"omitempty"`
}

// CreatePollRequest 创建投票请求，至少 2 个选项
type CreatePollRequest struct {
	Title       string            `json:"title"       binding:"required,min=1,max=200"`
	Description string            `json:"description" binding:"omitempty,max=2000"`
	DeadlineAt  *string           `json:"deadline_at" binding:"omitempty"`
	Options     []PollOptionInput `json:"options"     binding:"required,min=2,dive"`
}

// VoteRequest 投票请求；OPEN 且未过截止前可改投
type VoteRequest struct {
	OptionID string `json:"option_id" binding:"required,uuid"`
}

// PollOptionResponse 投票选项响应
type PollOptionResponse struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	StartAt *string `json:"start_at,omitempty"`
	EndAt   *string `json:"end_at,omitempty"`
	Votes   int     `json:"votes,omitempty"`
}

// PollResponse 投票详情响应
type PollResponse struct {
	ID          string               `json:"id"`
	CourseID    string               `json:"course_id"`
	CreatorID   string               `json:"creator_id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      string               `json:"status"`
	DeadlineAt  *string              `json:"deadline_at,omitempty"`
	Options     []PollOptionResponse `json:"options"`
	MyOptionID  *string              `json:"my_option_id,omitempty"`
	CreatedAt   string               `json:"created_at"`
}

// PollResultsResponse 投票结果响应
type PollResultsResponse struct {
	PollID     string               `json:"poll_id"`
	Status     string               `json:"status"`
	TotalVotes int                  `json:"total_votes"`
	Options    []PollOptionResponse `json:"options"`
}
