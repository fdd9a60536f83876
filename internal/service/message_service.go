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
	ErrMessageNotFound    = errors.New("私信不存在")
	ErrReceiverNotFound   = errors.New("收件人不存在")
	ErrReceiverNotAllowed = errors.New("只能给已选课程的教师发私信")
	ErrSelfMessage        = errors.New("不能给自己发私信")
)

// MessageService 私信业务接口
type MessageService interface {
	Send(ctx context.Context, actor Actor, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	Inbox(ctx context.Context, actor Actor, req *dto.PaginationRequest) ([]dto.MessageResponse, int64, error)
	Sent(ctx context.Context, actor Actor, req *dto.PaginationRequest) ([]dto.MessageResponse, int64, error)
	// Read 收件人打开私信，置已读
	Read(ctx context.Context, actor Actor, id string) (*dto.MessageResponse, error)
}

type messageService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewMessageService 创建 MessageService 实例
func NewMessageService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) MessageService {
	return &messageService{repo: repo, notifier: notifier, logger: logger}
}

func toMessageResponse(m *model.PersonalMessage) dto.MessageResponse {
	resp := dto.MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Title:      m.Title,
		Content:    m.Content,
		IsRead:     m.IsRead,
		ReadAt:     fmtTimePtr(m.ReadAt),
		CreatedAt:  fmtTime(m.CreatedAt),
	}
	if m.Sender != nil {
		resp.SenderName = m.Sender.Name
	}
	if m.Receiver != nil {
		resp.ReceiverName = m.Receiver.Name
	}
	return resp
}

// studentMayMessage 学生发信范围限定为已选课程的任课教师
func (s *messageService) studentMayMessage(ctx context.Context, studentID, receiverID string) (bool, error) {
	courses, err := s.repo.Course.ListByStudent(ctx, studentID, "", "")
	if err != nil {
		return false, err
	}
	for i := range courses {
		if courses[i].InstructorID == receiverID {
			return true, nil
		}
	}
	return false, nil
}

func (s *messageService) Send(ctx context.Context, actor Actor, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if req.ReceiverID == actor.UserID {
		return nil, ErrSelfMessage
	}
	if _, err := s.repo.User.GetByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}

	if actor.IsStudent() {
		ok, err := s.studentMayMessage(ctx, actor.UserID, req.ReceiverID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrReceiverNotAllowed
		}
	}

	msg := &model.PersonalMessage{
		SenderID:   actor.UserID,
		ReceiverID: req.ReceiverID,
		Title:      req.Title,
		Content:    req.Content,
	}
	if err := s.repo.Message.Create(ctx, msg); err != nil {
		s.logger.Error("发送私信失败", zap.Error(err))
		return nil, err
	}

	link := fmt.Sprintf("/messages/%s", msg.ID)
	s.notifier.Notify(ctx, msg.ReceiverID, model.NotifyMessage, "收到新私信: "+msg.Title, msg.Content, &link)

	resp := toMessageResponse(msg)
	return &resp, nil
}

func (s *messageService) Inbox(ctx context.Context, actor Actor, req *dto.PaginationRequest) ([]dto.MessageResponse, int64, error) {
	list, total, err := s.repo.Message.ListInbox(ctx, actor.UserID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.MessageResponse, 0, len(list))
	for i := range list {
		out = append(out, toMessageResponse(&list[i]))
	}
	return out, total, nil
}

func (s *messageService) Sent(ctx context.Context, actor Actor, req *dto.PaginationRequest) ([]dto.MessageResponse, int64, error) {
	list, total, err := s.repo.Message.ListSent(ctx, actor.UserID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.MessageResponse, 0, len(list))
	for i := range list {
		out = append(out, toMessageResponse(&list[i]))
	}
	return out, total, nil
}

func (s *messageService) Read(ctx context.Context, actor Actor, id string) (*dto.MessageResponse, error) {
	msg, err := s.repo.Message.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	// 非收发双方不可见
	if msg.ReceiverID != actor.UserID && msg.SenderID != actor.UserID {
		return nil, ErrMessageNotFound
	}

	// 只有收件人打开才置已读
	if msg.ReceiverID == actor.UserID && !msg.IsRead {
		now := time.Now()
		msg.IsRead = true
		msg.ReadAt = &now
		if err := s.repo.Message.Update(ctx, msg); err != nil {
			return nil, err
		}
	}

	resp := toMessageResponse(msg)
	return &resp, nil
}
