package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
	"attendly/backend/pkg/redis"
)

var (
	ErrSessionNotFound      = errors.New("节次不存在")
	ErrSessionConflict      = errors.New("节次已存在")
	ErrSessionAlreadyOpen   = errors.New("节次已处于 OPEN 状态")
	ErrSessionAlreadyPaused = errors.New("节次已处于 PAUSED 状态")
	ErrSessionAlreadyClosed = errors.New("节次已处于 CLOSED 状态")
	ErrPauseClosedSession   = errors.New("CLOSED 状态的节次不能暂停")
	ErrBadBaseDate          = errors.New("base_date 必须是 YYYY-MM-DD 格式")
	ErrBadMeetingDays       = errors.New("meeting_days 必须是星期名或 0..6 的数字")
	ErrBadTimeSpec          = errors.New("times 的 start(HH:MM) 或 duration_minutes(10~300) 不合法")
	ErrBadMakeup            = errors.New("makeups 需要 date(YYYY-MM-DD) 与 start(HH:MM)")
)

// SessionService 节次业务接口
type SessionService interface {
	Create(ctx context.Context, actor Actor, courseID string, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error)
	List(ctx context.Context, actor Actor, courseID string, req *dto.SessionListRequest) ([]dto.SessionResponse, error)
	Open(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error)
	Pause(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error)
	Close(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error)
	Generate(ctx context.Context, actor Actor, courseID string, req *dto.GenerateSessionsRequest) (*dto.GenerateSessionsResponse, error)
}

type sessionService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) SessionService {
	return &sessionService{repo: repo, rdb: rdb, logger: logger}
}

// ── 公共辅助 ──

// courseForOwner 载入课程并校验归属：教师只能操作本人课程，ADMIN 放行
func courseForOwner(ctx context.Context, repo *repository.Repository, actor Actor, courseID string) (*model.Course, error) {
	course, err := repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if actor.IsInstructor() && course.InstructorID != actor.UserID {
		return nil, ErrNotCourseOwner
	}
	return course, nil
}

// courseVisible 载入课程并校验可见性：学生须已选课，教师须为本人课程，ADMIN 放行
func courseVisible(ctx context.Context, repo *repository.Repository, actor Actor, courseID string) (*model.Course, error) {
	course, err := repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	switch {
	case actor.IsInstructor() && course.InstructorID != actor.UserID:
		return nil, ErrNotCourseOwner
	case actor.IsStudent():
		if _, err := repo.Enrollment.Get(ctx, courseID, actor.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotEnrolled
			}
			return nil, err
		}
	}
	return course, nil
}

// genCode 生成 6 位数字签到码
func genCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

func toSessionResponse(s *model.ClassSession, withCode bool) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:               s.ID,
		CourseID:         s.CourseID,
		Week:             s.Week,
		Round:            s.Round,
		StartAt:          fmtTimePtr(s.StartAt),
		EndAt:            fmtTimePtr(s.EndAt),
		Room:             s.Room,
		AttendanceMethod: s.AttendanceMethod,
		Status:           s.Status,
	}
	if withCode {
		resp.Code = s.Code
	}
	return resp
}

func parseRFC3339Ptr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ── 手动创建 / 查询 ──

func (s *sessionService) Create(ctx context.Context, actor Actor, courseID string, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if _, err := courseForOwner(ctx, s.repo, actor, courseID); err != nil {
		return nil, err
	}

	method := req.AttendanceMethod
	if method == "" {
		method = model.MethodElectronic
	}

	round := req.Round
	if round <= 0 {
		round = 1
	}

	startAt, err := parseRFC3339Ptr(req.StartAt)
	if err != nil {
		return nil, fmt.Errorf("start_at 解析失败: %w", err)
	}
	endAt, err := parseRFC3339Ptr(req.EndAt)
	if err != nil {
		return nil, fmt.Errorf("end_at 解析失败: %w", err)
	}

	session := &model.ClassSession{
		CourseID:         courseID,
		Week:             req.Week,
		Round:            round,
		StartAt:          startAt,
		EndAt:            endAt,
		Room:             req.Room,
		AttendanceMethod: method,
		Status:           model.SessionClosed,
	}
	if method == model.MethodCode {
		code := genCode()
		session.Code = &code
	}

	if _, err := s.repo.Session.GetByCourseWeekRound(ctx, courseID, req.Week, round); err == nil {
		return nil, fmt.Errorf("%w: week=%d round=%d", ErrSessionConflict, req.Week, round)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.logger.Error("创建节次失败", zap.Error(err))
		return nil, err
	}

	resp := toSessionResponse(session, true)
	return &resp, nil
}

func (s *sessionService) Get(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	resp := toSessionResponse(session, !actor.IsStudent())
	return &resp, nil
}

func (s *sessionService) List(ctx context.Context, actor Actor, courseID string, req *dto.SessionListRequest) ([]dto.SessionResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if actor.IsInstructor() && course.InstructorID != actor.UserID {
		return nil, ErrNotCourseOwner
	}
	if actor.IsStudent() {
		if _, err := s.repo.Enrollment.Get(ctx, courseID, actor.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotEnrolled
			}
			return nil, err
		}
	}

	status := strings.ToUpper(req.Status)
	list, err := s.repo.Session.ListByCourse(ctx, courseID, req.Week, status)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SessionResponse, 0, len(list))
	for i := range list {
		out = append(out, toSessionResponse(&list[i], !actor.IsStudent()))
	}
	return out, nil
}

// ── 状态流转 ──

func (s *sessionService) transition(ctx context.Context, actor Actor, id, target string) (*dto.SessionResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if _, err := courseForOwner(ctx, s.repo, actor, session.CourseID); err != nil {
		return nil, err
	}

	switch target {
	case model.SessionOpen:
		if session.Status == model.SessionOpen {
			return nil, ErrSessionAlreadyOpen
		}
	case model.SessionPaused:
		if session.Status == model.SessionClosed {
			return nil, ErrPauseClosedSession
		}
		if session.Status == model.SessionPaused {
			return nil, ErrSessionAlreadyPaused
		}
	case model.SessionClosed:
		if session.Status == model.SessionClosed {
			return nil, ErrSessionAlreadyClosed
		}
	}

	session.Status = target
	if err := s.repo.Session.Update(ctx, session); err != nil {
		s.logger.Error("节次状态流转失败", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	// 签到码缓存跟随状态，失败不影响主流程
	if s.rdb != nil && session.AttendanceMethod == model.MethodCode && session.Code != nil {
		if target == model.SessionOpen {
			ttl := 3 * time.Hour
			if session.EndAt != nil {
				if until := time.Until(*session.EndAt); until > 0 {
					ttl = until
				}
			}
			if err := s.rdb.CacheCheckInCode(ctx, session.ID, *session.Code, ttl); err != nil {
				s.logger.Warn("缓存签到码失败", zap.String("session_id", id), zap.Error(err))
			}
		} else {
			if err := s.rdb.DropCheckInCode(ctx, session.ID); err != nil {
				s.logger.Warn("清除签到码缓存失败", zap.String("session_id", id), zap.Error(err))
			}
		}
	}

	resp := toSessionResponse(session, true)
	return &resp, nil
}

func (s *sessionService) Open(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error) {
	return s.transition(ctx, actor, id, model.SessionOpen)
}

func (s *sessionService) Pause(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error) {
	return s.transition(ctx, actor, id, model.SessionPaused)
}

func (s *sessionService) Close(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error) {
	return s.transition(ctx, actor, id, model.SessionClosed)
}

// ── 批量生成 ──

var dayNames = map[string]int{
	"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6,
}

// normalizeMeetingDays 接受星期名或 0..6 数字，去重并升序
func normalizeMeetingDays(raw []interface{}) ([]int, error) {
	if len(raw) == 0 {
		return nil, ErrBadMeetingDays
	}
	seen := make(map[int]bool)
	for _, x := range raw {
		switch v := x.(type) {
		case float64: // JSON 数字
			n := int(v)
			if n < 0 || n > 6 || float64(n) != v {
				return nil, ErrBadMeetingDays
			}
			seen[n] = true
		case string:
			n, ok := dayNames[strings.ToUpper(v)]
			if !ok {
				return nil, ErrBadMeetingDays
			}
			seen[n] = true
		default:
			return nil, ErrBadMeetingDays
		}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

func parseYmd(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

type hm struct{ h, m int }

func parseHm(s string) (hm, error) {
	var out hm
	if _, err := fmt.Sscanf(s, "%d:%d", &out.h, &out.m); err != nil {
		return out, err
	}
	if out.h < 0 || out.h > 23 || out.m < 0 || out.m > 59 {
		return out, fmt.Errorf("时间越界: %s", s)
	}
	return out, nil
}

func at(day time.Time, t hm) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.h, t.m, 0, 0, day.Location())
}

type timeSpec struct {
	start    hm
	duration int
}

func (s *sessionService) Generate(ctx context.Context, actor Actor, courseID string, req *dto.GenerateSessionsRequest) (*dto.GenerateSessionsResponse, error) {
	if _, err := courseForOwner(ctx, s.repo, actor, courseID); err != nil {
		return nil, err
	}

	base, err := parseYmd(req.BaseDate)
	if err != nil {
		return nil, ErrBadBaseDate
	}

	dows, err := normalizeMeetingDays(req.MeetingDays)
	if err != nil {
		return nil, err
	}

	specs := make([]timeSpec, 0, len(req.Times))
	for _, t := range req.Times {
		start, err := parseHm(t.Start)
		if err != nil || t.DurationMinutes < 10 || t.DurationMinutes > 300 {
			return nil, ErrBadTimeSpec
		}
		specs = append(specs, timeSpec{start: start, duration: t.DurationMinutes})
	}

	method := req.AttendanceMethod
	if method == "" {
		method = model.MethodCode
	}
	defaultStatus := req.DefaultStatus
	if defaultStatus == "" {
		defaultStatus = model.SessionClosed
	}
	mode := req.Mode
	if mode == "" {
		mode = "skipExisting"
	}

	holidaySet := make(map[string]bool, len(req.Holidays))
	for _, h := range req.Holidays {
		holidaySet[h] = true
	}

	resp := &dto.GenerateSessionsResponse{
		CourseID:        courseID,
		SkippedHolidays: []dto.SkippedHoliday{},
		AppliedMakeups:  []dto.GenerateAction{},
		MissingSummary:  map[int][]int{},
		Sample:          []dto.GenerateAction{},
	}

	var overwritten []string

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var results []dto.GenerateAction
		missingByWeek := make(map[int]map[int]bool)

		// 固定槽位：每周按 (星期, 时间段) 笛卡尔积排序后定 round
		for w := 0; w < req.Weeks; w++ {
			week := w + 1

			type slot struct{ startAt, endAt time.Time }
			var slots []slot
			for _, dow := range dows {
				delta := (dow - int(base.Weekday()) + 7) % 7
				day := base.AddDate(0, 0, w*7+delta)
				for _, ts := range specs {
					startAt := at(day, ts.start)
					slots = append(slots, slot{
						startAt: startAt,
						endAt:   startAt.Add(time.Duration(ts.duration) * time.Minute),
					})
				}
			}
			sort.Slice(slots, func(i, j int) bool { return slots[i].startAt.Before(slots[j].startAt) })

			for i, sl := range slots {
				round := i + 1
				ymd := sl.startAt.Format("2006-01-02")

				if holidaySet[ymd] {
					resp.SkippedHolidays = append(resp.SkippedHolidays,
						dto.SkippedHoliday{Week: week, Round: round, Date: ymd})
					if missingByWeek[week] == nil {
						missingByWeek[week] = make(map[int]bool)
					}
					missingByWeek[week][round] = true
					continue
				}

				action, err := upsertGenerated(ctx, tx, courseID, week, round, sl.startAt, sl.endAt,
					req.Room, method, defaultStatus, mode, false)
				if err != nil {
					return err
				}
				switch action.Action {
				case "created":
					resp.Created++
				case "updated":
					resp.Updated++
					overwritten = append(overwritten, action.SessionID)
				case "skipped":
					resp.Skipped++
				}
				results = append(results, action)
			}
		}

		// 补课：优先填充该周缺失的最小 round，否则 maxRound+1
		for _, m := range req.Makeups {
			d, err := parseYmd(m.Date)
			if err != nil {
				return ErrBadMakeup
			}
			start, err := parseHm(m.Start)
			if err != nil {
				return ErrBadMakeup
			}
			dur := m.DurationMinutes
			if dur == 0 {
				dur = specs[0].duration
			}

			startAt := at(d, start)
			endAt := startAt.Add(time.Duration(dur) * time.Minute)

			week := m.Week
			if week == 0 {
				diffDays := int(d.Sub(base).Hours() / 24)
				week = diffDays/7 + 1
			}

			round := m.Round
			if round == 0 {
				if missing := missingByWeek[week]; len(missing) > 0 {
					min := 0
					for r := range missing {
						if min == 0 || r < min {
							min = r
						}
					}
					round = min
					delete(missing, round)
				} else {
					maxRound, err := tx.Session.MaxRound(ctx, courseID, week)
					if err != nil {
						return err
					}
					round = maxRound + 1
				}
			}

			mkMethod := m.AttendanceMethod
			if mkMethod == "" {
				mkMethod = method
			}
			mkStatus := m.Status
			if mkStatus == "" {
				mkStatus = defaultStatus
			}
			room := m.Room
			if room == nil {
				room = req.Room
			}

			action, err := upsertGenerated(ctx, tx, courseID, week, round, startAt, endAt,
				room, mkMethod, mkStatus, mode, true)
			if err != nil {
				return err
			}
			switch action.Action {
			case "created_makeup":
				resp.Created++
			case "updated_makeup":
				resp.Updated++
				overwritten = append(overwritten, action.SessionID)
			case "skipped_makeup":
				resp.Skipped++
			}
			resp.AppliedMakeups = append(resp.AppliedMakeups, action)
		}

		for week, missing := range missingByWeek {
			if len(missing) == 0 {
				continue
			}
			rounds := make([]int, 0, len(missing))
			for r := range missing {
				rounds = append(rounds, r)
			}
			sort.Ints(rounds)
			resp.MissingSummary[week] = rounds
		}

		if len(results) > 30 {
			results = results[:30]
		}
		resp.Sample = results
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 被覆盖节次的签到码已换新，缓存里的旧码必须清掉
	if s.rdb != nil {
		for _, id := range overwritten {
			if err := s.rdb.DropCheckInCode(ctx, id); err != nil {
				s.logger.Warn("清除签到码缓存失败", zap.String("session_id", id), zap.Error(err))
			}
		}
	}

	s.logger.Info("批量生成节次完成",
		zap.String("course_id", courseID),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// upsertGenerated 生成单个节次（按 mode 处理冲突）
func upsertGenerated(ctx context.Context, tx *repository.Repository, courseID string,
	week, round int, startAt, endAt time.Time, room *string, method, status, mode string, makeup bool) (dto.GenerateAction, error) {

	suffix := ""
	if makeup {
		suffix = "_makeup"
	}

	var code *string
	if method == model.MethodCode {
		c := genCode()
		code = &c
	}

	existing, err := tx.Session.GetByCourseWeekRound(ctx, courseID, week, round)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.GenerateAction{}, err
	}

	if existing != nil {
		switch mode {
		case "errorOnConflict":
			return dto.GenerateAction{}, fmt.Errorf("%w: week=%d round=%d", ErrSessionConflict, week, round)
		case "overwrite":
			existing.StartAt = &startAt
			existing.EndAt = &endAt
			existing.Room = room
			existing.AttendanceMethod = method
			existing.Status = status
			existing.Code = code
			if err := tx.Session.Update(ctx, existing); err != nil {
				return dto.GenerateAction{}, err
			}
			return dto.GenerateAction{Action: "updated" + suffix, SessionID: existing.ID, Week: week, Round: round}, nil
		default: // skipExisting
			return dto.GenerateAction{Action: "skipped" + suffix, SessionID: existing.ID, Week: week, Round: round}, nil
		}
	}

	session := &model.ClassSession{
		CourseID:         courseID,
		Week:             week,
		Round:            round,
		StartAt:          &startAt,
		EndAt:            &endAt,
		Room:             room,
		AttendanceMethod: method,
		Status:           status,
		Code:             code,
	}
	if err := tx.Session.Create(ctx, session); err != nil {
		return dto.GenerateAction{}, err
	}
	return dto.GenerateAction{Action: "created" + suffix, SessionID: session.ID, Week: week, Round: round}, nil
}
