package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendly/backend/internal/model"
)

// PollRepository 空闲时间投票数据访问接口
type PollRepository interface {
	Create(ctx context.Context, poll *model.FreeTimePoll) error
	GetByID(ctx context.Context, id string) (*model.FreeTimePoll, error)
	// GetByIDForUpdate 行锁读取，投票与关闭在事务内调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.FreeTimePoll, error)
	Update(ctx context.Context, poll *model.FreeTimePoll) error
	ListByCourse(ctx context.Context, courseID string) ([]model.FreeTimePoll, error)
	GetOption(ctx context.Context, optionID string) (*model.PollOption, error)
	GetVote(ctx context.Context, pollID, voterID string) (*model.PollVote, error)
	CreateVote(ctx context.Context, vote *model.PollVote) error
	UpdateVote(ctx context.Context, vote *model.PollVote) error
	// CountVotes 返回 optionID → 票数
	CountVotes(ctx context.Context, pollID string) (map[string]int, error)
}

// pollRepo PollRepository 的 GORM 实现
type pollRepo struct {
	db *gorm.DB
}

// NewPollRepo 创建 PollRepository 实例
func NewPollRepo(db *gorm.DB) PollRepository {
	return &pollRepo{db: db}
}

func (r *pollRepo) Create(ctx context.Context, poll *model.FreeTimePoll) error {
	return r.db.WithContext(ctx).Create(poll).Error
}

func (r *pollRepo) GetByID(ctx context.Context, id string) (*model.FreeTimePoll, error) {
	var poll model.FreeTimePoll
	err := r.db.WithContext(ctx).
		Preload("Options").
		Where("id = ?", id).
		First(&poll).Error
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *pollRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.FreeTimePoll, error) {
	var poll model.FreeTimePoll
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&poll).Error
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *pollRepo) Update(ctx context.Context, poll *model.FreeTimePoll) error {
	return r.db.WithContext(ctx).Save(poll).Error
}

func (r *pollRepo) ListByCourse(ctx context.Context, courseID string) ([]model.FreeTimePoll, error) {
	var list []model.FreeTimePoll
	err := r.db.WithContext(ctx).
		Preload("Options").
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *pollRepo) GetOption(ctx context.Context, optionID string) (*model.PollOption, error) {
	var opt model.PollOption
	err := r.db.WithContext(ctx).Where("id = ?", optionID).First(&opt).Error
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

func (r *pollRepo) GetVote(ctx context.Context, pollID, voterID string) (*model.PollVote, error) {
	var vote model.PollVote
	err := r.db.WithContext(ctx).
		Where("poll_id = ? AND voter_id = ?", pollID, voterID).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *pollRepo) CreateVote(ctx context.Context, vote *model.PollVote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *pollRepo) UpdateVote(ctx context.Context, vote *model.PollVote) error {
	return r.db.WithContext(ctx).Save(vote).Error
}

func (r *pollRepo) CountVotes(ctx context.Context, pollID string) (map[string]int, error) {
	type row struct {
		OptionID string
		Cnt      int
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.PollVote{}).
		Select("option_id, COUNT(*) AS cnt").
		Where("poll_id = ?", pollID).
		Group("option_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.OptionID] = r.Cnt
	}
	return out, nil
}
