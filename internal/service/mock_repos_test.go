package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
)

// page 内存分页，limit<=0 时返回全部
func page[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return nil
	}
	if limit <= 0 {
		return list[offset:]
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User
	idCounter int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == "" {
		m.idCounter++
		user.ID = fmt.Sprintf("user-%d", m.idCounter)
	}
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role, department, keyword string, offset, limit int) ([]model.User, int64, error) {
	var filtered []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if department != "" && (u.Department == nil || *u.Department != department) {
			continue
		}
		filtered = append(filtered, *u)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return page(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses     map[string]*model.Course
	enrollments *mockEnrollmentRepo
	idCounter   int
}

func newMockCourseRepo(enrollments *mockEnrollmentRepo) *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course), enrollments: enrollments}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.ID == "" {
		m.idCounter++
		course.ID = fmt.Sprintf("course-%d", m.idCounter)
	}
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) matchFilter(c *model.Course, semester, department string) bool {
	if semester != "" && c.Semester != semester {
		return false
	}
	if department != "" && c.Department != department {
		return false
	}
	return true
}

func (m *mockCourseRepo) ListAll(_ context.Context, semester, department string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if m.matchFilter(c, semester, department) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockCourseRepo) ListByInstructor(_ context.Context, instructorID, semester, department string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.InstructorID == instructorID && m.matchFilter(c, semester, department) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockCourseRepo) ListByStudent(_ context.Context, studentID, semester, department string) ([]model.Course, error) {
	var result []model.Course
	for _, e := range m.enrollments.list {
		if e.StudentID != studentID {
			continue
		}
		if c, ok := m.courses[e.CourseID]; ok && m.matchFilter(c, semester, department) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	list      []model.Enrollment
	idCounter int
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.Enrollment) error {
	for _, e := range m.list {
		if e.CourseID == enrollment.CourseID && e.StudentID == enrollment.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if enrollment.ID == "" {
		m.idCounter++
		enrollment.ID = fmt.Sprintf("enr-%d", m.idCounter)
	}
	m.list = append(m.list, *enrollment)
	return nil
}

func (m *mockEnrollmentRepo) Get(_ context.Context, courseID, studentID string) (*model.Enrollment, error) {
	for i, e := range m.list {
		if e.CourseID == courseID && e.StudentID == studentID {
			return &m.list[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListByCourse(_ context.Context, courseID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.list {
		if e.CourseID == courseID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result, nil
}

func (m *mockEnrollmentRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	var count int64
	for _, e := range m.list {
		if e.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions  map[string]*model.ClassSession
	idCounter int
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.ClassSession)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.ClassSession) error {
	if session.ID == "" {
		m.idCounter++
		session.ID = fmt.Sprintf("sess-%d", m.idCounter)
	}
	session.CreatedAt = time.Now()
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.ClassSession, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) GetByCourseWeekRound(_ context.Context, courseID string, week, round int) (*model.ClassSession, error) {
	for _, s := range m.sessions {
		if s.CourseID == courseID && s.Week == week && s.Round == round {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.ClassSession) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionRepo) ListByCourse(_ context.Context, courseID string, week int, status string) ([]model.ClassSession, error) {
	var result []model.ClassSession
	for _, s := range m.sessions {
		if s.CourseID != courseID {
			continue
		}
		if week > 0 && s.Week != week {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Week != result[j].Week {
			return result[i].Week < result[j].Week
		}
		return result[i].Round < result[j].Round
	})
	return result, nil
}

func (m *mockSessionRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	var count int64
	for _, s := range m.sessions {
		if s.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (m *mockSessionRepo) MaxRound(_ context.Context, courseID string, week int) (int, error) {
	max := 0
	for _, s := range m.sessions {
		if s.CourseID == courseID && s.Week == week && s.Round > max {
			max = s.Round
		}
	}
	return max, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	atts      []*model.Attendance
	sessions  *mockSessionRepo
	idCounter int
}

func newMockAttendanceRepo(sessions *mockSessionRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{sessions: sessions}
}

func (m *mockAttendanceRepo) Create(_ context.Context, attendance *model.Attendance) error {
	if attendance.ID == "" {
		m.idCounter++
		attendance.ID = fmt.Sprintf("att-%d", m.idCounter)
	}
	attendance.CreatedAt = time.Now()
	m.atts = append(m.atts, attendance)
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.Attendance, error) {
	for _, a := range m.atts {
		if a.ID == id {
			if a.Session == nil {
				a.Session = m.sessions.sessions[a.SessionID]
			}
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetBySessionStudent(_ context.Context, sessionID, studentID string) (*model.Attendance, error) {
	for _, a := range m.atts {
		if a.SessionID == sessionID && a.StudentID == studentID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Update(_ context.Context, attendance *model.Attendance) error {
	for i, a := range m.atts {
		if a.ID == attendance.ID {
			m.atts[i] = attendance
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) ListBySession(_ context.Context, sessionID string) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, a := range m.atts {
		if a.SessionID == sessionID {
			result = append(result, *a)
		}
	}
	return result, nil
}

// sessionOrder 按 (week, round) 排序，连胜统计依赖该顺序
func (m *mockAttendanceRepo) sessionOrder(result []model.Attendance) {
	sort.Slice(result, func(i, j int) bool {
		si, sj := m.sessions.sessions[result[i].SessionID], m.sessions.sessions[result[j].SessionID]
		if si == nil || sj == nil {
			return result[i].SessionID < result[j].SessionID
		}
		if si.Week != sj.Week {
			return si.Week < sj.Week
		}
		if si.Round != sj.Round {
			return si.Round < sj.Round
		}
		return result[i].StudentID < result[j].StudentID
	})
}

func (m *mockAttendanceRepo) ListByCourse(_ context.Context, courseID string) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, a := range m.atts {
		if s, ok := m.sessions.sessions[a.SessionID]; ok && s.CourseID == courseID {
			result = append(result, *a)
		}
	}
	m.sessionOrder(result)
	return result, nil
}

func (m *mockAttendanceRepo) ListByStudentCourse(_ context.Context, studentID, courseID string) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, a := range m.atts {
		if a.StudentID != studentID {
			continue
		}
		if s, ok := m.sessions.sessions[a.SessionID]; ok && s.CourseID == courseID {
			result = append(result, *a)
		}
	}
	m.sessionOrder(result)
	return result, nil
}

func (m *mockAttendanceRepo) ListByStudent(_ context.Context, studentID string) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, a := range m.atts {
		if a.StudentID == studentID {
			result = append(result, *a)
		}
	}
	return result, nil
}

// ── Mock ExcuseRepository ──

type mockExcuseRepo struct {
	excuses   map[string]*model.ExcuseRequest
	sessions  *mockSessionRepo
	idCounter int
}

func newMockExcuseRepo(sessions *mockSessionRepo) *mockExcuseRepo {
	return &mockExcuseRepo{excuses: make(map[string]*model.ExcuseRequest), sessions: sessions}
}

func (m *mockExcuseRepo) withSession(e *model.ExcuseRequest) *model.ExcuseRequest {
	if e.Session == nil {
		e.Session = m.sessions.sessions[e.SessionID]
	}
	return e
}

func (m *mockExcuseRepo) Create(_ context.Context, excuse *model.ExcuseRequest) error {
	if excuse.ID == "" {
		m.idCounter++
		excuse.ID = fmt.Sprintf("exc-%d", m.idCounter)
	}
	excuse.CreatedAt = time.Now()
	m.excuses[excuse.ID] = excuse
	return nil
}

func (m *mockExcuseRepo) GetByID(_ context.Context, id string) (*model.ExcuseRequest, error) {
	if e, ok := m.excuses[id]; ok {
		return m.withSession(e), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExcuseRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.ExcuseRequest, error) {
	return m.GetByID(ctx, id)
}

func (m *mockExcuseRepo) Update(_ context.Context, excuse *model.ExcuseRequest) error {
	m.excuses[excuse.ID] = excuse
	return nil
}

func (m *mockExcuseRepo) FindPending(_ context.Context, sessionID, studentID string) (*model.ExcuseRequest, error) {
	for _, e := range m.excuses {
		if e.SessionID == sessionID && e.StudentID == studentID && e.Status == model.ExcusePending {
			return m.withSession(e), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExcuseRepo) sortedFiltered(match func(*model.ExcuseRequest) bool) []model.ExcuseRequest {
	var result []model.ExcuseRequest
	for _, e := range m.excuses {
		if match(e) {
			result = append(result, *m.withSession(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *mockExcuseRepo) ListByStudent(_ context.Context, studentID, status string, offset, limit int) ([]model.ExcuseRequest, int64, error) {
	filtered := m.sortedFiltered(func(e *model.ExcuseRequest) bool {
		return e.StudentID == studentID && (status == "" || e.Status == status)
	})
	return page(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockExcuseRepo) ListByCourse(_ context.Context, courseID, status string, offset, limit int) ([]model.ExcuseRequest, int64, error) {
	filtered := m.sortedFiltered(func(e *model.ExcuseRequest) bool {
		s := m.sessions.sessions[e.SessionID]
		return s != nil && s.CourseID == courseID && (status == "" || e.Status == status)
	})
	return page(filtered, offset, limit), int64(len(filtered)), nil
}

// ── Mock AppealRepository ──

type mockAppealRepo struct {
	appeals    map[string]*model.Appeal
	attendance *mockAttendanceRepo
	idCounter  int
}

func newMockAppealRepo(attendance *mockAttendanceRepo) *mockAppealRepo {
	return &mockAppealRepo{appeals: make(map[string]*model.Appeal), attendance: attendance}
}

func (m *mockAppealRepo) withAttendance(a *model.Appeal) *model.Appeal {
	if a.Attendance == nil {
		att, err := m.attendance.GetByID(context.Background(), a.AttendanceID)
		if err == nil {
			a.Attendance = att
		}
	}
	return a
}

func (m *mockAppealRepo) Create(_ context.Context, appeal *model.Appeal) error {
	if appeal.ID == "" {
		m.idCounter++
		appeal.ID = fmt.Sprintf("apl-%d", m.idCounter)
	}
	appeal.CreatedAt = time.Now()
	m.appeals[appeal.ID] = appeal
	return nil
}

func (m *mockAppealRepo) GetByID(_ context.Context, id string) (*model.Appeal, error) {
	if a, ok := m.appeals[id]; ok {
		return m.withAttendance(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppealRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Appeal, error) {
	return m.GetByID(ctx, id)
}

func (m *mockAppealRepo) Update(_ context.Context, appeal *model.Appeal) error {
	m.appeals[appeal.ID] = appeal
	return nil
}

func (m *mockAppealRepo) FindPending(_ context.Context, attendanceID, studentID string) (*model.Appeal, error) {
	for _, a := range m.appeals {
		if a.AttendanceID == attendanceID && a.StudentID == studentID && a.Status == model.AppealPending {
			return m.withAttendance(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppealRepo) ListByStudent(_ context.Context, studentID, status string, offset, limit int) ([]model.Appeal, int64, error) {
	var filtered []model.Appeal
	for _, a := range m.appeals {
		if a.StudentID == studentID && (status == "" || a.Status == status) {
			filtered = append(filtered, *m.withAttendance(a))
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return page(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockAppealRepo) ListByCourse(_ context.Context, courseID, status string, offset, limit int) ([]model.Appeal, int64, error) {
	var filtered []model.Appeal
	for _, a := range m.appeals {
		full := m.withAttendance(a)
		if full.Attendance == nil || full.Attendance.Session == nil || full.Attendance.Session.CourseID != courseID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		filtered = append(filtered, *full)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return page(filtered, offset, limit), int64(len(filtered)), nil
}

// ── Mock PolicyRepository ──

type mockPolicyRepo struct {
	policies map[string]*model.AttendancePolicy
}

func newMockPolicyRepo() *mockPolicyRepo {
	return &mockPolicyRepo{policies: make(map[string]*model.AttendancePolicy)}
}

func (m *mockPolicyRepo) GetByCourse(_ context.Context, courseID string) (*model.AttendancePolicy, error) {
	if p, ok := m.policies[courseID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPolicyRepo) Save(_ context.Context, policy *model.AttendancePolicy) error {
	if policy.ID == "" {
		policy.ID = "policy-" + policy.CourseID
	}
	m.policies[policy.CourseID] = policy
	return nil
}

// ── Mock AuditRepository ──

type mockAuditRepo struct {
	logs      []model.AuditLog
	idCounter int
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) Create(_ context.Context, log *model.AuditLog) error {
	m.idCounter++
	if log.ID == "" {
		log.ID = fmt.Sprintf("audit-%d", m.idCounter)
	}
	log.CreatedAt = time.Now()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, targetType, targetID string, offset, limit int) ([]model.AuditLog, int64, error) {
	var filtered []model.AuditLog
	for _, l := range m.logs {
		if targetType != "" && l.TargetType != targetType {
			continue
		}
		if targetID != "" && l.TargetID != targetID {
			continue
		}
		filtered = append(filtered, l)
	}
	return page(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockAuditRepo) ListByTargets(_ context.Context, targetType string, targetIDs []string, action string, from, to *time.Time, limit int) ([]model.AuditLog, error) {
	idSet := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		idSet[id] = true
	}
	var result []model.AuditLog
	for _, l := range m.logs {
		if l.TargetType != targetType || !idSet[l.TargetID] {
			continue
		}
		if action != "" && l.Action != action {
			continue
		}
		if from != nil && l.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !l.CreatedAt.Before(*to) {
			continue
		}
		result = append(result, l)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	list      []*model.Notification
	idCounter int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.ID == "" {
		m.idCounter++
		n.ID = fmt.Sprintf("notif-%d", m.idCounter)
	}
	n.CreatedAt = time.Now()
	m.list = append(m.list, n)
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	for _, n := range m.list {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) Update(_ context.Context, n *model.Notification) error {
	for i, x := range m.list {
		if x.ID == n.ID {
			m.list[i] = n
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var filtered []model.Notification
	for _, n := range m.list {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		filtered = append(filtered, *n)
	}
	return page(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockNotificationRepo) Exists(_ context.Context, userID, typ, title string, linkURL *string) (bool, error) {
	for _, n := range m.list {
		if n.UserID != userID || n.Type != typ || n.Title != title {
			continue
		}
		if linkURL == nil && n.LinkURL == nil {
			return true, nil
		}
		if linkURL != nil && n.LinkURL != nil && *linkURL == *n.LinkURL {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, userID string, ids []string, at time.Time) (int64, error) {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var updated int64
	for _, n := range m.list {
		if n.UserID == userID && idSet[n.ID] && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			updated++
		}
	}
	return updated, nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string, at time.Time) (int64, error) {
	var updated int64
	for _, n := range m.list {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			updated++
		}
	}
	return updated, nil
}

// ── Mock AnnouncementRepository ──

type mockAnnouncementRepo struct {
	anns      map[string]*model.Announcement
	reads     []model.AnnouncementRead
	idCounter int
}

func newMockAnnouncementRepo() *mockAnnouncementRepo {
	return &mockAnnouncementRepo{anns: make(map[string]*model.Announcement)}
}

func (m *mockAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	if a.ID == "" {
		m.idCounter++
		a.ID = fmt.Sprintf("ann-%d", m.idCounter)
	}
	a.CreatedAt = time.Now()
	m.anns[a.ID] = a
	return nil
}

func (m *mockAnnouncementRepo) GetByID(_ context.Context, id string) (*model.Announcement, error) {
	if a, ok := m.anns[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAnnouncementRepo) ListVisible(_ context.Context, courseIDs []string) ([]model.Announcement, error) {
	courseSet := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		courseSet[id] = true
	}
	var result []model.Announcement
	for _, a := range m.anns {
		if a.Scope == model.AnnouncementGlobal || (a.CourseID != nil && courseSet[*a.CourseID]) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Pinned != result[j].Pinned {
			return result[i].Pinned
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockAnnouncementRepo) GetRead(_ context.Context, announcementID, userID string) (*model.AnnouncementRead, error) {
	for i, r := range m.reads {
		if r.AnnouncementID == announcementID && r.UserID == userID {
			return &m.reads[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAnnouncementRepo) CreateRead(_ context.Context, read *model.AnnouncementRead) error {
	if read.ID == "" {
		read.ID = fmt.Sprintf("read-%d", len(m.reads)+1)
	}
	m.reads = append(m.reads, *read)
	return nil
}

func (m *mockAnnouncementRepo) ListReadIDs(_ context.Context, userID string, announcementIDs []string) ([]string, error) {
	idSet := make(map[string]bool, len(announcementIDs))
	for _, id := range announcementIDs {
		idSet[id] = true
	}
	var result []string
	for _, r := range m.reads {
		if r.UserID == userID && idSet[r.AnnouncementID] {
			result = append(result, r.AnnouncementID)
		}
	}
	return result, nil
}

// ── Mock MessageRepository ──

type mockMessageRepo struct {
	msgs      map[string]*model.PersonalMessage
	idCounter int
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{msgs: make(map[string]*model.PersonalMessage)}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.PersonalMessage) error {
	if msg.ID == "" {
		m.idCounter++
		msg.ID = fmt.Sprintf("msg-%d", m.idCounter)
	}
	msg.CreatedAt = time.Now()
	m.msgs[msg.ID] = msg
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id string) (*model.PersonalMessage, error) {
	if msg, ok := m.msgs[id]; ok {
		return msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) Update(_ context.Context, msg *model.PersonalMessage) error {
	m.msgs[msg.ID] = msg
	return nil
}

func (m *mockMessageRepo) listSorted(match func(*model.PersonalMessage) bool) []model.PersonalMessage {
	var result []model.PersonalMessage
	for _, msg := range m.msgs {
		if match(msg) {
			result = append(result, *msg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *mockMessageRepo) ListInbox(_ context.Context, receiverID string, offset, limit int) ([]model.PersonalMessage, int64, error) {
	filtered := m.listSorted(func(msg *model.PersonalMessage) bool { return msg.ReceiverID == receiverID })
	return page(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockMessageRepo) ListSent(_ context.Context, senderID string, offset, limit int) ([]model.PersonalMessage, int64, error) {
	filtered := m.listSorted(func(msg *model.PersonalMessage) bool { return msg.SenderID == senderID })
	return page(filtered, offset, limit), int64(len(filtered)), nil
}

// ── Mock PollRepository ──

type mockPollRepo struct {
	polls     map[string]*model.FreeTimePoll
	votes     []*model.PollVote
	idCounter int
}

func newMockPollRepo() *mockPollRepo {
	return &mockPollRepo{polls: make(map[string]*model.FreeTimePoll)}
}

func (m *mockPollRepo) Create(_ context.Context, poll *model.FreeTimePoll) error {
	m.idCounter++
	if poll.ID == "" {
		poll.ID = fmt.Sprintf("poll-%d", m.idCounter)
	}
	for i := range poll.Options {
		if poll.Options[i].ID == "" {
			poll.Options[i].ID = fmt.Sprintf("%s-opt-%d", poll.ID, i+1)
		}
		poll.Options[i].PollID = poll.ID
	}
	poll.CreatedAt = time.Now()
	m.polls[poll.ID] = poll
	return nil
}

func (m *mockPollRepo) GetByID(_ context.Context, id string) (*model.FreeTimePoll, error) {
	if p, ok := m.polls[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPollRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.FreeTimePoll, error) {
	return m.GetByID(ctx, id)
}

func (m *mockPollRepo) Update(_ context.Context, poll *model.FreeTimePoll) error {
	m.polls[poll.ID] = poll
	return nil
}

func (m *mockPollRepo) ListByCourse(_ context.Context, courseID string) ([]model.FreeTimePoll, error) {
	var result []model.FreeTimePoll
	for _, p := range m.polls {
		if p.CourseID == courseID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockPollRepo) GetOption(_ context.Context, optionID string) (*model.PollOption, error) {
	for _, p := range m.polls {
		for i := range p.Options {
			if p.Options[i].ID == optionID {
				return &p.Options[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPollRepo) GetVote(_ context.Context, pollID, voterID string) (*model.PollVote, error) {
	for _, v := range m.votes {
		if v.PollID == pollID && v.VoterID == voterID {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPollRepo) CreateVote(_ context.Context, vote *model.PollVote) error {
	if vote.ID == "" {
		vote.ID = fmt.Sprintf("vote-%d", len(m.votes)+1)
	}
	m.votes = append(m.votes, vote)
	return nil
}

func (m *mockPollRepo) UpdateVote(_ context.Context, vote *model.PollVote) error {
	for i, v := range m.votes {
		if v.ID == vote.ID {
			m.votes[i] = vote
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockPollRepo) CountVotes(_ context.Context, pollID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, v := range m.votes {
		if v.PollID == pollID {
			counts[v.OptionID]++
		}
	}
	return counts, nil
}

// ── 聚合 ──

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func floatPtr(f float64) *float64 { return &f }

// mockRepos 持有全部 mock，便于测试直接检查内部状态
type mockRepos struct {
	user         *mockUserRepo
	course       *mockCourseRepo
	enrollment   *mockEnrollmentRepo
	session      *mockSessionRepo
	attendance   *mockAttendanceRepo
	excuse       *mockExcuseRepo
	appeal       *mockAppealRepo
	policy       *mockPolicyRepo
	audit        *mockAuditRepo
	notification *mockNotificationRepo
	announcement *mockAnnouncementRepo
	message      *mockMessageRepo
	poll         *mockPollRepo
}

// newMockRepos 组装无数据库连接的 Repository 聚合；
// Transaction 在 db 为 nil 时直接执行回调。
func newMockRepos() (*repository.Repository, *mockRepos) {
	enrollment := newMockEnrollmentRepo()
	session := newMockSessionRepo()
	attendance := newMockAttendanceRepo(session)
	m := &mockRepos{
		user:         newMockUserRepo(),
		course:       newMockCourseRepo(enrollment),
		enrollment:   enrollment,
		session:      session,
		attendance:   attendance,
		excuse:       newMockExcuseRepo(session),
		appeal:       newMockAppealRepo(attendance),
		policy:       newMockPolicyRepo(),
		audit:        newMockAuditRepo(),
		notification: newMockNotificationRepo(),
		announcement: newMockAnnouncementRepo(),
		message:      newMockMessageRepo(),
		poll:         newMockPollRepo(),
	}
	repo := &repository.Repository{
		User:         m.user,
		Course:       m.course,
		Enrollment:   m.enrollment,
		Session:      m.session,
		Attendance:   m.attendance,
		Excuse:       m.excuse,
		Appeal:       m.appeal,
		Policy:       m.policy,
		Audit:        m.audit,
		Notification: m.notification,
		Announcement: m.announcement,
		Message:      m.message,
		Poll:         m.poll,
	}
	return repo, m
}
