package services_test

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"strings"
	"time"

	"coursehub/models"
	"coursehub/repository"

	"github.com/google/uuid"
)

// --- Mock Payment Store ---

type mockPaymentStore struct {
	payments  map[uuid.UUID]*models.Payment
	createErr error
	// markDecidedHook runs before MarkDecided applies, to simulate a
	// concurrent decider winning the race.
	markDecidedHook func()
}

func newMockPaymentStore() *mockPaymentStore {
	return &mockPaymentStore{payments: make(map[uuid.UUID]*models.Payment)}
}

func (m *mockPaymentStore) Create(_ context.Context, p *models.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *mockPaymentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentStore) FindPending(_ context.Context, studentID, courseID uuid.UUID) (*models.Payment, error) {
	for _, p := range m.payments {
		if p.StudentID == studentID && p.CourseID == courseID && p.Status == models.PaymentPending {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockPaymentStore) FindByReference(_ context.Context, reference string) (*models.Payment, error) {
	for _, p := range m.payments {
		if p.TransactionReference != nil && *p.TransactionReference == reference {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockPaymentStore) MarkDecided(_ context.Context, id uuid.UUID, status models.PaymentStatus, decidedBy string, reason *string, decidedAt time.Time) (bool, error) {
	if m.markDecidedHook != nil {
		m.markDecidedHook()
	}
	p, ok := m.payments[id]
	if !ok || p.Status != models.PaymentPending {
		return false, nil
	}
	p.Status = status
	p.DecidedAt = &decidedAt
	p.DecidedBy = &decidedBy
	p.RejectionReason = reason
	p.UpdatedAt = decidedAt
	return true, nil
}

func (m *mockPaymentStore) List(_ context.Context, filter repository.ListFilter) ([]models.Payment, models.PaymentCounters, error) {
	var counters models.PaymentCounters
	matches := []models.Payment{}
	for _, p := range m.payments {
		if !m.inWindow(p, filter) {
			continue
		}
		counters.Total++
		switch p.Status {
		case models.PaymentPending:
			counters.Pending++
		case models.PaymentAccepted:
			counters.Accepted++
		case models.PaymentRejected:
			counters.Rejected++
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		matches = append(matches, *p)
	}

	sort.Slice(matches, func(i, j int) bool {
		if filter.SortDesc {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset > len(matches) {
		offset = len(matches)
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], counters, nil
}

func (m *mockPaymentStore) inWindow(p *models.Payment, filter repository.ListFilter) bool {
	if filter.From != nil && p.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && !p.CreatedAt.Before(*filter.To) {
		return false
	}
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		ref := ""
		if p.TransactionReference != nil {
			ref = *p.TransactionReference
		}
		if !strings.Contains(strings.ToLower(p.StudentName), s) &&
			!strings.Contains(strings.ToLower(p.StudentPhone), s) &&
			!strings.Contains(strings.ToLower(ref), s) {
			return false
		}
	}
	return true
}

func (m *mockPaymentStore) Aggregate(_ context.Context, from, to *time.Time) (models.StatusAggregate, models.StatusAggregate, models.StatusAggregate, error) {
	var pending, accepted, rejected models.StatusAggregate
	for _, p := range m.payments {
		if from != nil && p.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !p.CreatedAt.Before(*to) {
			continue
		}
		switch p.Status {
		case models.PaymentPending:
			pending.Count++
			pending.Amount += p.Amount
		case models.PaymentAccepted:
			accepted.Count++
			accepted.Amount += p.Amount
		case models.PaymentRejected:
			rejected.Count++
			rejected.Amount += p.Amount
		}
	}
	return pending, accepted, rejected, nil
}

func (m *mockPaymentStore) DailySeries(_ context.Context, from, to *time.Time) ([]models.DailyPoint, error) {
	byDay := map[string]*models.DailyPoint{}
	for _, p := range m.payments {
		if from != nil && p.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !p.CreatedAt.Before(*to) {
			continue
		}
		day := p.CreatedAt.UTC().Format("2006-01-02")
		point, ok := byDay[day]
		if !ok {
			point = &models.DailyPoint{Date: day}
			byDay[day] = point
		}
		point.Count++
		point.Amount += p.Amount
		if p.Status == models.PaymentAccepted {
			point.ApprovedAmount += p.Amount
		}
	}

	series := []models.DailyPoint{}
	for _, point := range byDay {
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series, nil
}

// --- Mock Enrollment Store ---

type mockEnrollmentStore struct {
	entries map[string]*models.Enrollment
}

func newMockEnrollmentStore() *mockEnrollmentStore {
	return &mockEnrollmentStore{entries: make(map[string]*models.Enrollment)}
}

func pairKey(studentID, courseID uuid.UUID) string {
	return studentID.String() + "|" + courseID.String()
}

func (m *mockEnrollmentStore) Get(_ context.Context, studentID, courseID uuid.UUID) (*models.Enrollment, error) {
	e, ok := m.entries[pairKey(studentID, courseID)]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *mockEnrollmentStore) ensure(studentID, courseID uuid.UUID) *models.Enrollment {
	key := pairKey(studentID, courseID)
	e, ok := m.entries[key]
	if !ok {
		e = &models.Enrollment{StudentID: studentID, CourseID: courseID, CreatedAt: time.Now().UTC()}
		m.entries[key] = e
	}
	return e
}

func (m *mockEnrollmentStore) UpsertPending(_ context.Context, studentID, courseID, paymentID uuid.UUID, proofRef string) error {
	e := m.ensure(studentID, courseID)
	e.PaymentStatus = models.PaymentPending
	e.ProofRef = &proofRef
	e.PaymentID = &paymentID
	e.RejectedAt = nil
	return nil
}

func (m *mockEnrollmentStore) MarkApproved(_ context.Context, studentID, courseID, paymentID uuid.UUID, approvedAt time.Time) error {
	e := m.ensure(studentID, courseID)
	e.PaymentStatus = models.PaymentAccepted
	if e.ApprovedAt == nil {
		e.ApprovedAt = &approvedAt
	}
	e.PaymentID = &paymentID
	return nil
}

func (m *mockEnrollmentStore) MarkRejected(_ context.Context, studentID, courseID, paymentID uuid.UUID, rejectedAt time.Time) error {
	e := m.ensure(studentID, courseID)
	e.PaymentStatus = models.PaymentRejected
	if e.RejectedAt == nil {
		e.RejectedAt = &rejectedAt
	}
	e.PaymentID = &paymentID
	return nil
}

func (m *mockEnrollmentStore) GrantAccess(_ context.Context, studentID, courseID uuid.UUID) error {
	if e, ok := m.entries[pairKey(studentID, courseID)]; ok {
		e.HasAccess = true
	}
	return nil
}

// --- Mock Course Store ---

type mockCourseStore struct {
	courses map[uuid.UUID]*models.Course
	roster  map[string]bool
}

func newMockCourseStore() *mockCourseStore {
	return &mockCourseStore{
		courses: make(map[uuid.UUID]*models.Course),
		roster:  make(map[string]bool),
	}
}

func (m *mockCourseStore) GetByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *mockCourseStore) AddToRoster(_ context.Context, courseID, studentID uuid.UUID) (bool, error) {
	key := pairKey(studentID, courseID)
	if m.roster[key] {
		return false, nil
	}
	m.roster[key] = true
	return true, nil
}

func (m *mockCourseStore) IncrementEnrolled(_ context.Context, courseID uuid.UUID) error {
	if c, ok := m.courses[courseID]; ok {
		c.EnrolledCount++
	}
	return nil
}

func (m *mockCourseStore) IsOnRoster(_ context.Context, courseID, studentID uuid.UUID) (bool, error) {
	return m.roster[pairKey(studentID, courseID)], nil
}

// --- Mock Student / Admin Stores ---

type mockStudentStore struct {
	students map[uuid.UUID]*models.Student
}

func newMockStudentStore() *mockStudentStore {
	return &mockStudentStore{students: make(map[uuid.UUID]*models.Student)}
}

func (m *mockStudentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *mockStudentStore) Upsert(_ context.Context, student *models.Student) error {
	cp := *student
	m.students[student.ID] = &cp
	return nil
}

type mockAdminStore struct {
	admins []models.Admin
}

func (m *mockAdminStore) List(_ context.Context) ([]models.Admin, error) {
	return m.admins, nil
}

// --- Mock Screenshot Store ---

type mockScreenshotStore struct {
	saved   []string
	saveErr error
}

func (m *mockScreenshotStore) Save(paymentID, filename string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	io.Copy(io.Discard, r)
	ref := paymentID + "_" + filename
	m.saved = append(m.saved, ref)
	return ref, nil
}

// listAll is the unfiltered listing used by tests.
func listAll() repository.ListFilter {
	return repository.ListFilter{Limit: 100}
}

// --- Mock Notifier ---

type mockNotifier struct {
	submitted []uuid.UUID
	decided   []uuid.UUID
}

func (m *mockNotifier) PaymentSubmitted(p *models.Payment, _ *models.Course) {
	m.submitted = append(m.submitted, p.ID)
}

func (m *mockNotifier) PaymentDecided(p *models.Payment, _ *models.Course) {
	m.decided = append(m.decided, p.ID)
}
