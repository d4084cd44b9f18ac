package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"classconnect/backend/config"
	"classconnect/backend/internal/model"
	"classconnect/backend/internal/repository"
)

// testConfig 单元测试用配置
func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  7 * 24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
		},
		Booking: config.BookingConfig{
			SlotMinutes:    60,
			MaxAdvanceDays: 30,
			MinLeadMinutes: 15,
			HoldTTL:        2 * time.Minute,
		},
	}
}

// ── Mock Repositories ──
// 基于内存 map 的轻量实现，聚合 db 为 nil 时 Transaction 直接透传

type mockUserRepo struct {
	users map[string]*model.User // key: user_id 或 "email:"+email
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	if user.Email != "" {
		m.users["email:"+user.Email] = user
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := m.users["email:"+email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	if user.Email != "" {
		m.users["email:"+user.Email] = user
	}
	return nil
}

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
	seq      int
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		m.seq++
		subject.SubjectID = fmt.Sprintf("subject-%d", m.seq)
	}
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByName(_ context.Context, name string) (*model.Subject, error) {
	for _, s := range m.subjects {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) List(_ context.Context, activeOnly bool) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		if activeOnly && !s.IsActive {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.subjects, id)
	return nil
}

type mockTutorProfileRepo struct {
	profiles map[string]*model.TutorProfile
}

func newMockTutorProfileRepo() *mockTutorProfileRepo {
	return &mockTutorProfileRepo{profiles: make(map[string]*model.TutorProfile)}
}

func (m *mockTutorProfileRepo) Upsert(_ context.Context, profile *model.TutorProfile) error {
	m.profiles[profile.TutorID] = profile
	return nil
}

func (m *mockTutorProfileRepo) GetByID(_ context.Context, tutorID string) (*model.TutorProfile, error) {
	if p, ok := m.profiles[tutorID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTutorProfileRepo) Search(_ context.Context, filter repository.TutorSearchFilter, offset, limit int) ([]model.TutorProfile, int64, error) {
	var all []model.TutorProfile
	for _, p := range m.profiles {
		if !p.IsPublished {
			continue
		}
		if filter.City != "" && p.City != filter.City {
			continue
		}
		if filter.MaxRate != nil && p.HourlyRate > *filter.MaxRate {
			continue
		}
		if filter.MinRating != nil && p.Rating < *filter.MinRating {
			continue
		}
		if filter.SubjectID != "" {
			found := false
			for _, sub := range p.Subjects {
				if sub.SubjectID == filter.SubjectID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		all = append(all, *p)
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockTutorProfileRepo) ReplaceSubjects(_ context.Context, tutorID string, subjects []model.Subject) error {
	if p, ok := m.profiles[tutorID]; ok {
		p.Subjects = subjects
	}
	return nil
}

type mockAvailabilityRuleRepo struct {
	rules map[string]*model.WeeklyAvailabilityRule
	seq   int
}

func newMockAvailabilityRuleRepo() *mockAvailabilityRuleRepo {
	return &mockAvailabilityRuleRepo{rules: make(map[string]*model.WeeklyAvailabilityRule)}
}

func (m *mockAvailabilityRuleRepo) Create(_ context.Context, rule *model.WeeklyAvailabilityRule) error {
	if rule.RuleID == "" {
		m.seq++
		rule.RuleID = fmt.Sprintf("rule-%d", m.seq)
	}
	m.rules[rule.RuleID] = rule
	return nil
}

func (m *mockAvailabilityRuleRepo) GetByID(_ context.Context, id string) (*model.WeeklyAvailabilityRule, error) {
	if r, ok := m.rules[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAvailabilityRuleRepo) ListByTutor(_ context.Context, tutorID string) ([]model.WeeklyAvailabilityRule, error) {
	var result []model.WeeklyAvailabilityRule
	for _, r := range m.rules {
		if r.TutorID == tutorID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAvailabilityRuleRepo) ListActiveByTutorAndDay(_ context.Context, tutorID string, dayOfWeek int) ([]model.WeeklyAvailabilityRule, error) {
	var result []model.WeeklyAvailabilityRule
	for _, r := range m.rules {
		if r.TutorID == tutorID && r.DayOfWeek == dayOfWeek && r.IsActive {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAvailabilityRuleRepo) Update(_ context.Context, rule *model.WeeklyAvailabilityRule) error {
	m.rules[rule.RuleID] = rule
	return nil
}

func (m *mockAvailabilityRuleRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.rules, id)
	return nil
}

type mockScheduleExceptionRepo struct {
	exceptions map[string]*model.ScheduleException
	seq        int
}

func newMockScheduleExceptionRepo() *mockScheduleExceptionRepo {
	return &mockScheduleExceptionRepo{exceptions: make(map[string]*model.ScheduleException)}
}

func (m *mockScheduleExceptionRepo) Create(_ context.Context, exc *model.ScheduleException) error {
	if exc.ExceptionID == "" {
		m.seq++
		exc.ExceptionID = fmt.Sprintf("exc-%d", m.seq)
	}
	m.exceptions[exc.ExceptionID] = exc
	return nil
}

func (m *mockScheduleExceptionRepo) GetByID(_ context.Context, id string) (*model.ScheduleException, error) {
	if e, ok := m.exceptions[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleExceptionRepo) ListByTutor(_ context.Context, tutorID string, from time.Time) ([]model.ScheduleException, error) {
	var result []model.ScheduleException
	for _, e := range m.exceptions {
		if e.TutorID == tutorID && !e.Date.Before(from) {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockScheduleExceptionRepo) ListByTutorAndDate(_ context.Context, tutorID string, date time.Time) ([]model.ScheduleException, error) {
	var result []model.ScheduleException
	for _, e := range m.exceptions {
		if e.TutorID == tutorID && sameDate(e.Date, date) {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockScheduleExceptionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.exceptions, id)
	return nil
}

type mockLessonRepo struct {
	lessons map[string]*model.Lesson
	seq     int
}

func newMockLessonRepo() *mockLessonRepo {
	return &mockLessonRepo{lessons: make(map[string]*model.Lesson)}
}

func (m *mockLessonRepo) Create(_ context.Context, lesson *model.Lesson) error {
	if lesson.LessonID == "" {
		m.seq++
		lesson.LessonID = fmt.Sprintf("lesson-%d", m.seq)
	}
	m.lessons[lesson.LessonID] = lesson
	return nil
}

func (m *mockLessonRepo) GetByID(_ context.Context, id string) (*model.Lesson, error) {
	if l, ok := m.lessons[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLessonRepo) ListOccupyingByTutorAndDate(_ context.Context, tutorID string, date time.Time) ([]model.Lesson, error) {
	var result []model.Lesson
	for _, l := range m.lessons {
		if l.TutorID == tutorID && sameDate(l.Date, date) && l.Status != model.LessonStatusCancelled {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockLessonRepo) ListByTutor(_ context.Context, tutorID string, filter repository.LessonFilter, offset, limit int) ([]model.Lesson, int64, error) {
	return m.list(func(l *model.Lesson) bool { return l.TutorID == tutorID }, filter, offset, limit)
}

func (m *mockLessonRepo) ListByStudent(_ context.Context, studentID string, filter repository.LessonFilter, offset, limit int) ([]model.Lesson, int64, error) {
	return m.list(func(l *model.Lesson) bool { return l.StudentID == studentID }, filter, offset, limit)
}

func (m *mockLessonRepo) list(match func(*model.Lesson) bool, filter repository.LessonFilter, offset, limit int) ([]model.Lesson, int64, error) {
	var all []model.Lesson
	for _, l := range m.lessons {
		if !match(l) {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.From != nil && l.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.Date.After(*filter.To) {
			continue
		}
		all = append(all, *l)
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockLessonRepo) Update(_ context.Context, lesson *model.Lesson) error {
	m.lessons[lesson.LessonID] = lesson
	return nil
}

type mockLessonRequestRepo struct {
	requests map[string]*model.LessonRequest
	seq      int
}

func newMockLessonRequestRepo() *mockLessonRequestRepo {
	return &mockLessonRequestRepo{requests: make(map[string]*model.LessonRequest)}
}

func (m *mockLessonRequestRepo) Create(_ context.Context, req *model.LessonRequest) error {
	if req.RequestID == "" {
		m.seq++
		req.RequestID = fmt.Sprintf("request-%d", m.seq)
	}
	m.requests[req.RequestID] = req
	return nil
}

func (m *mockLessonRequestRepo) GetByID(_ context.Context, id string) (*model.LessonRequest, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLessonRequestRepo) ListPendingByTutorAndDate(_ context.Context, tutorID string, date time.Time) ([]model.LessonRequest, error) {
	var result []model.LessonRequest
	for _, r := range m.requests {
		if r.TutorID == tutorID && sameDate(r.RequestedDate, date) && r.Status == model.RequestStatusPending {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockLessonRequestRepo) ListByTutor(_ context.Context, tutorID, status string, offset, limit int) ([]model.LessonRequest, int64, error) {
	return m.list(func(r *model.LessonRequest) bool { return r.TutorID == tutorID }, status, offset, limit)
}

func (m *mockLessonRequestRepo) ListByStudent(_ context.Context, studentID, status string, offset, limit int) ([]model.LessonRequest, int64, error) {
	return m.list(func(r *model.LessonRequest) bool { return r.StudentID == studentID }, status, offset, limit)
}

func (m *mockLessonRequestRepo) list(match func(*model.LessonRequest) bool, status string, offset, limit int) ([]model.LessonRequest, int64, error) {
	var all []model.LessonRequest
	for _, r := range m.requests {
		if !match(r) {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		all = append(all, *r)
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockLessonRequestRepo) Update(_ context.Context, req *model.LessonRequest) error {
	m.requests[req.RequestID] = req
	return nil
}

type mockHomeworkRepo struct {
	homeworks map[string]*model.Homework
	seq       int
}

func newMockHomeworkRepo() *mockHomeworkRepo {
	return &mockHomeworkRepo{homeworks: make(map[string]*model.Homework)}
}

func (m *mockHomeworkRepo) Create(_ context.Context, hw *model.Homework) error {
	if hw.HomeworkID == "" {
		m.seq++
		hw.HomeworkID = fmt.Sprintf("hw-%d", m.seq)
	}
	m.homeworks[hw.HomeworkID] = hw
	return nil
}

func (m *mockHomeworkRepo) GetByID(_ context.Context, id string) (*model.Homework, error) {
	if h, ok := m.homeworks[id]; ok {
		return h, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHomeworkRepo) ListByTutor(_ context.Context, tutorID, status string, offset, limit int) ([]model.Homework, int64, error) {
	return m.list(func(h *model.Homework) bool { return h.TutorID == tutorID }, status, offset, limit)
}

func (m *mockHomeworkRepo) ListByStudent(_ context.Context, studentID, status string, offset, limit int) ([]model.Homework, int64, error) {
	return m.list(func(h *model.Homework) bool { return h.StudentID == studentID }, status, offset, limit)
}

func (m *mockHomeworkRepo) list(match func(*model.Homework) bool, status string, offset, limit int) ([]model.Homework, int64, error) {
	var all []model.Homework
	for _, h := range m.homeworks {
		if !match(h) {
			continue
		}
		if status != "" && h.Status != status {
			continue
		}
		all = append(all, *h)
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockHomeworkRepo) Update(_ context.Context, hw *model.Homework) error {
	m.homeworks[hw.HomeworkID] = hw
	return nil
}

type mockMessageRepo struct {
	messages []*model.Message
	seq      int
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	if msg.MessageID == "" {
		m.seq++
		msg.MessageID = fmt.Sprintf("msg-%d", m.seq)
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessageRepo) ListConversation(_ context.Context, userID, peerID string, offset, limit int) ([]model.Message, int64, error) {
	var all []model.Message
	for _, msg := range m.messages {
		if (msg.SenderID == userID && msg.RecipientID == peerID) ||
			(msg.SenderID == peerID && msg.RecipientID == userID) {
			all = append(all, *msg)
		}
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockMessageRepo) ListConversations(_ context.Context, userID string) ([]repository.ConversationSummary, error) {
	return nil, nil
}

func (m *mockMessageRepo) MarkConversationRead(_ context.Context, userID, peerID string) error {
	for _, msg := range m.messages {
		if msg.SenderID == peerID && msg.RecipientID == userID {
			msg.IsRead = true
		}
	}
	return nil
}

func (m *mockMessageRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, msg := range m.messages {
		if msg.RecipientID == userID && !msg.IsRead {
			count++
		}
	}
	return count, nil
}

type mockNotificationRepo struct {
	notifications []*model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.NotificationID == "" {
		m.seq++
		n.NotificationID = fmt.Sprintf("notif-%d", m.seq)
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		all = append(all, *n)
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) (int64, error) {
	for _, n := range m.notifications {
		if n.NotificationID == id && n.UserID == userID {
			n.IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// countFor 统计指定用户收到的通知数
func (m *mockNotificationRepo) countFor(userID string) int {
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID {
			count++
		}
	}
	return count
}

// sameDate 按日期（忽略时分秒）比较
func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// testRepos 聚合全部 mock，便于测试直接访问底层数据
type testRepos struct {
	user          *mockUserRepo
	subject       *mockSubjectRepo
	tutorProfile  *mockTutorProfileRepo
	rule          *mockAvailabilityRuleRepo
	exception     *mockScheduleExceptionRepo
	lesson        *mockLessonRepo
	lessonRequest *mockLessonRequestRepo
	homework      *mockHomeworkRepo
	message       *mockMessageRepo
	notification  *mockNotificationRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	mocks := &testRepos{
		user:          newMockUserRepo(),
		subject:       newMockSubjectRepo(),
		tutorProfile:  newMockTutorProfileRepo(),
		rule:          newMockAvailabilityRuleRepo(),
		exception:     newMockScheduleExceptionRepo(),
		lesson:        newMockLessonRepo(),
		lessonRequest: newMockLessonRequestRepo(),
		homework:      newMockHomeworkRepo(),
		message:       newMockMessageRepo(),
		notification:  newMockNotificationRepo(),
	}
	repo := &repository.Repository{
		User:              mocks.user,
		Subject:           mocks.subject,
		TutorProfile:      mocks.tutorProfile,
		AvailabilityRule:  mocks.rule,
		ScheduleException: mocks.exception,
		Lesson:            mocks.lesson,
		LessonRequest:     mocks.lessonRequest,
		Homework:          mocks.homework,
		Message:           mocks.message,
		Notification:      mocks.notification,
	}
	return repo, mocks
}
