package service

import (
	"context"
	"fmt"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"attendly/backend/internal/repository"
)

// CalendarService 课程节次日历导出接口
type CalendarService interface {
	// SessionsICS 把课程全部节次导出为 iCalendar 文本
	SessionsICS(ctx context.Context, actor Actor, courseID string) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger}
}

func (s *calendarService) SessionsICS(ctx context.Context, actor Actor, courseID string) (string, error) {
	course, err := courseVisible(ctx, s.repo, actor, courseID)
	if err != nil {
		return "", err
	}

	sessions, err := s.repo.Session.ListByCourse(ctx, courseID, 0, "")
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//attendly//course-sessions//CN")
	cal.SetName(course.Title)

	for i := range sessions {
		sess := &sessions[i]
		// 未排时间的节次无法成为日历事件
		if sess.StartAt == nil || sess.EndAt == nil {
			continue
		}
		evt := cal.AddEvent(fmt.Sprintf("session-%s@attendly", sess.ID))
		evt.SetSummary(fmt.Sprintf("%s 第%d周第%d次", course.Title, sess.Week, sess.Round))
		evt.SetStartAt(*sess.StartAt)
		evt.SetEndAt(*sess.EndAt)
		evt.SetDtStampTime(sess.CreatedAt)
		if sess.Room != nil && *sess.Room != "" {
			evt.SetLocation(*sess.Room)
		}
		evt.SetDescription(fmt.Sprintf("考勤方式: %s", sess.AttendanceMethod))
	}

	return cal.Serialize(), nil
}
