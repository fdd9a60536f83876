package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
)

var (
	ErrPollNotFound      = errors.New("投票不存在")
	ErrPollNotOpen       = errors.New("投票未开放")
	ErrPollDeadlinePast  = errors.New("投票已过截止时间")
	ErrPollAlreadyClosed = errors.New("投票已关闭")
	ErrOptionNotFound    = errors.New("投票选项不存在")
)

// PollService 空闲时间投票业务接口
type PollService interface {
	Create(ctx context.Context, actor Actor, courseID string, req *dto.CreatePollRequest) (*dto.PollResponse, error)
	Get(ctx context.Context, actor Actor, id string) (*dto.PollResponse, error)
	List(ctx context.Context, actor Actor, courseID string) ([]dto.PollResponse, error)
	// Vote 行锁串行化改投：OPEN 且未过截止前可重复投票，新票覆盖旧票
	Vote(ctx context.Context, actor Actor, id string, req *dto.VoteRequest) error
	Close(ctx context.Context, actor Actor, id string) (*dto.PollResponse, error)
	Results(ctx context.Context, actor Actor, id string) (*dto.PollResultsResponse, error)
}

type pollService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewPollService 创建 PollService 实例
func NewPollService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) PollService {
	return &pollService{repo: repo, notifier: notifier, logger: logger}
}

func toPollResponse(p *model.FreeTimePoll, counts map[string]int, myOptionID *string) dto.PollResponse {
	resp := dto.PollResponse{
		ID:          p.ID,
		CourseID:    p.CourseID,
		CreatorID:   p.CreatorID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		DeadlineAt:  fmtTimePtr(p.DeadlineAt),
		MyOptionID:  myOptionID,
		CreatedAt:   fmtTime(p.CreatedAt),
	}
	resp.Options = make([]dto.PollOptionResponse, 0, len(p.Options))
	for i := range p.Options {
		opt := &p.Options[i]
		out := dto.PollOptionResponse{
			ID:      opt.ID,
			Label:   opt.Label,
			StartAt: fmtTimePtr(opt.StartAt),
			EndAt:   fmtTimePtr(opt.EndAt),
		}
		if counts != nil {
			out.Votes = counts[opt.ID]
		}
		resp.Options = append(resp.Options, out)
	}
	return resp
}

func (s *pollService) Create(ctx context.Context, actor Actor, courseID string, req *dto.CreatePollRequest) (*dto.PollResponse, error) {
	if _, err := courseForOwner(ctx, s.repo, actor, courseID); err != nil {
		return nil, err
	}

	deadline, err := parseRFC3339Ptr(req.DeadlineAt)
	if err != nil {
		return nil, fmt.Errorf("deadline_at 解析失败: %w", err)
	}

	poll := &model.FreeTimePoll{
		CourseID:    courseID,
		CreatorID:   actor.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.PollOpen,
		DeadlineAt:  deadline,
	}
	for _, in := range req.Options {
		startAt, err := parseRFC3339Ptr(in.StartAt)
		if err != nil {
			return nil, fmt.Errorf("选项 start_at 解析失败: %w", err)
		}
		endAt, err := parseRFC3339Ptr(in.EndAt)
		if err != nil {
			return nil, fmt.Errorf("选项 end_at 解析失败: %w", err)
		}
		poll.Options = append(poll.Options, model.PollOption{
			Label:   in.Label,
			StartAt: startAt,
			EndAt:   endAt,
		})
	}

	if err := s.repo.Poll.Create(ctx, poll); err != nil {
		s.logger.Error("创建投票失败", zap.Error(err))
		return nil, err
	}

	// 旁路通知选课学生
	if enrollments, err := s.repo.Enrollment.ListByCourse(ctx, courseID); err != nil {
		s.logger.Warn("投票通知收件人查询失败", zap.Error(err))
	} else {
		link := fmt.Sprintf("/polls/%s", poll.ID)
		for i := range enrollments {
			s.notifier.Notify(ctx, enrollments[i].StudentID, model.NotifyPollOpened,
				"新的空闲时间投票: "+poll.Title, poll.Description, &link)
		}
	}

	resp := toPollResponse(poll, nil, nil)
	return &resp, nil
}

func (s *pollService) loadPoll(ctx context.Context, actor Actor, id string) (*model.FreeTimePoll, error) {
	poll, err := s.repo.Poll.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	if _, err := courseVisible(ctx, s.repo, actor, poll.CourseID); err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *pollService) Get(ctx context.Context, actor Actor, id string) (*dto.PollResponse, error) {
	poll, err := s.loadPoll(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.Poll.CountVotes(ctx, id)
	if err != nil {
		return nil, err
	}
	var myOptionID *string
	if vote, err := s.repo.Poll.GetVote(ctx, id, actor.UserID); err == nil {
		myOptionID = &vote.OptionID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	resp := toPollResponse(poll, counts, myOptionID)
	return &resp, nil
}

func (s *pollService) List(ctx context.Context, actor Actor, courseID string) ([]dto.PollResponse, error) {
	if _, err := courseVisible(ctx, s.repo, actor, courseID); err != nil {
		return nil, err
	}

	polls, err := s.repo.Poll.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PollResponse, 0, len(polls))
	for i := range polls {
		out = append(out, toPollResponse(&polls[i], nil, nil))
	}
	return out, nil
}

func (s *pollService) Vote(ctx context.Context, actor Actor, id string, req *dto.VoteRequest) error {
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		poll, err := tx.Poll.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPollNotFound
			}
			return err
		}
		if poll.Status != model.PollOpen {
			return ErrPollNotOpen
		}
		if poll.DeadlineAt != nil && time.Now().After(*poll.DeadlineAt) {
			return ErrPollDeadlinePast
		}
		if _, err := tx.Enrollment.Get(ctx, poll.CourseID, actor.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotEnrolled
			}
			return err
		}

		opt, err := tx.Poll.GetOption(ctx, req.OptionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOptionNotFound
			}
			return err
		}
		if opt.PollID != poll.ID {
			return ErrOptionNotFound
		}

		vote, err := tx.Poll.GetVote(ctx, poll.ID, actor.UserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return tx.Poll.CreateVote(ctx, &model.PollVote{
				PollID:   poll.ID,
				OptionID: opt.ID,
				VoterID:  actor.UserID,
			})
		}
		if vote.OptionID == opt.ID {
			return nil
		}
		vote.OptionID = opt.ID
		return tx.Poll.UpdateVote(ctx, vote)
	})
}

func (s *pollService) Close(ctx context.Context, actor Actor, id string) (*dto.PollResponse, error) {
	var closed *model.FreeTimePoll
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		poll, err := tx.Poll.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPollNotFound
			}
			return err
		}
		if _, err := courseForOwner(ctx, tx, actor, poll.CourseID); err != nil {
			return err
		}
		if poll.Status == model.PollClosed {
			return ErrPollAlreadyClosed
		}
		poll.Status = model.PollClosed
		if err := tx.Poll.Update(ctx, poll); err != nil {
			return err
		}
		closed = poll
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 旁路通知选课学生结果已出
	if enrollments, err := s.repo.Enrollment.ListByCourse(ctx, closed.CourseID); err == nil {
		link := fmt.Sprintf("/polls/%s/results", closed.ID)
		for i := range enrollments {
			s.notifier.Notify(ctx, enrollments[i].StudentID, model.NotifyPollClosed,
				"投票已结束: "+closed.Title, "可以查看投票结果了", &link)
		}
	}

	resp := toPollResponse(closed, nil, nil)
	return &resp, nil
}

func (s *pollService) Results(ctx context.Context, actor Actor, id string) (*dto.PollResultsResponse, error) {
	poll, err := s.loadPoll(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.Poll.CountVotes(ctx, id)
	if err != nil {
		return nil, err
	}

	total := 0
	options := make([]dto.PollOptionResponse, 0, len(poll.Options))
	for i := range poll.Options {
		opt := &poll.Options[i]
		votes := counts[opt.ID]
		total += votes
		options = append(options, dto.PollOptionResponse{
			ID:      opt.ID,
			Label:   opt.Label,
			StartAt: fmtTimePtr(opt.StartAt),
			EndAt:   fmtTimePtr(opt.EndAt),
			Votes:   votes,
		})
	}

	return &dto.PollResultsResponse{
		PollID:     poll.ID,
		Status:     poll.Status,
		TotalVotes: total,
		Options:    options,
	}, nil
}
