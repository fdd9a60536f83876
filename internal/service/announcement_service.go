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
	ErrAnnouncementNotFound = errors.New("公告不存在")
	ErrGlobalAdminOnly      = errors.New("仅管理员可发布全局公告")
	ErrCourseIDRequired     = errors.New("课程公告需指定 course_id")
)

// AnnouncementService 公告业务接口
type AnnouncementService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error)
	// List 全局公告加已选/所授课程公告，置顶优先并标注已读
	List(ctx context.Context, actor Actor) ([]dto.AnnouncementResponse, error)
	// MarkRead 记已读标记，重复标记幂等
	MarkRead(ctx context.Context, actor Actor, id string) error
}

type announcementService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewAnnouncementService 创建 AnnouncementService 实例
func NewAnnouncementService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) AnnouncementService {
	return &announcementService{repo: repo, notifier: notifier, logger: logger}
}

func toAnnouncementResponse(a *model.Announcement, isRead bool) dto.AnnouncementResponse {
	resp := dto.AnnouncementResponse{
		ID:        a.ID,
		Scope:     a.Scope,
		CourseID:  a.CourseID,
		AuthorID:  a.AuthorID,
		Title:     a.Title,
		Content:   a.Content,
		Pinned:    a.Pinned,
		IsRead:    isRead,
		CreatedAt: fmtTime(a.CreatedAt),
	}
	if a.Author != nil {
		resp.AuthorName = a.Author.Name
	}
	return resp
}

func (s *announcementService) Create(ctx context.Context, actor Actor, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error) {
	ann := &model.Announcement{
		Scope:    req.Scope,
		AuthorID: actor.UserID,
		Title:    req.Title,
		Content:  req.Content,
		Pinned:   req.Pinned,
	}

	switch req.Scope {
	case model.AnnouncementGlobal:
		if !actor.IsAdmin() {
			return nil, ErrGlobalAdminOnly
		}
	case model.AnnouncementCourse:
		if req.CourseID == nil {
			return nil, ErrCourseIDRequired
		}
		if _, err := courseForOwner(ctx, s.repo, actor, *req.CourseID); err != nil {
			return nil, err
		}
		ann.CourseID = req.CourseID
	}

	if err := s.repo.Announcement.Create(ctx, ann); err != nil {
		s.logger.Error("创建公告失败", zap.Error(err))
		return nil, err
	}

	// 课程公告旁路通知选课学生
	if ann.Scope == model.AnnouncementCourse && ann.CourseID != nil {
		enrollments, err := s.repo.Enrollment.ListByCourse(ctx, *ann.CourseID)
		if err != nil {
			s.logger.Warn("公告通知收件人查询失败", zap.Error(err))
		} else {
			link := fmt.Sprintf("/announcements/%s", ann.ID)
			for i := range enrollments {
				s.notifier.Notify(ctx, enrollments[i].StudentID, model.NotifyAnnouncement,
					"新课程公告: "+ann.Title, ann.Content, &link)
			}
		}
	}

	resp := toAnnouncementResponse(ann, false)
	return &resp, nil
}

// visibleCourseIDs 当前用户可见的课程范围
func (s *announcementService) visibleCourseIDs(ctx context.Context, actor Actor) ([]string, error) {
	var courses []model.Course
	var err error
	switch {
	case actor.IsAdmin():
		courses, err = s.repo.Course.ListAll(ctx, "", "")
	case actor.IsInstructor():
		courses, err = s.repo.Course.ListByInstructor(ctx, actor.UserID, "", "")
	default:
		courses, err = s.repo.Course.ListByStudent(ctx, actor.UserID, "", "")
	}
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(courses))
	for i := range courses {
		ids = append(ids, courses[i].ID)
	}
	return ids, nil
}

func (s *announcementService) List(ctx context.Context, actor Actor) ([]dto.AnnouncementResponse, error) {
	courseIDs, err := s.visibleCourseIDs(ctx, actor)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.Announcement.ListVisible(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	annIDs := make([]string, 0, len(list))
	for i := range list {
		annIDs = append(annIDs, list[i].ID)
	}
	readIDs, err := s.repo.Announcement.ListReadIDs(ctx, actor.UserID, annIDs)
	if err != nil {
		return nil, err
	}
	readSet := make(map[string]bool, len(readIDs))
	for _, id := range readIDs {
		readSet[id] = true
	}

	out := make([]dto.AnnouncementResponse, 0, len(list))
	for i := range list {
		out = append(out, toAnnouncementResponse(&list[i], readSet[list[i].ID]))
	}
	return out, nil
}

func (s *announcementService) MarkRead(ctx context.Context, actor Actor, id string) error {
	if _, err := s.repo.Announcement.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnnouncementNotFound
		}
		return err
	}

	if _, err := s.repo.Announcement.GetRead(ctx, id, actor.UserID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return s.repo.Announcement.CreateRead(ctx, &model.AnnouncementRead{
		AnnouncementID: id,
		UserID:         actor.UserID,
		ReadAt:         time.Now(),
	})
}
