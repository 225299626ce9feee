package logbook

import (
	"context"
	"crypto/ecdsa"
	"sync"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/internal/notify"
)

// Hand-written mocks with func fields, overridable per test.

var _ logbookRepo = &logbookRepoMock{}

type logbookRepoMock struct {
	CreateFunc            func(ctx context.Context, internshipID uuid.UUID) (*domain.Logbook, error)
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (*domain.Logbook, error)
	GetByInternshipIDFunc func(ctx context.Context, internshipID uuid.UUID) (*domain.Logbook, error)
	SetStatusFunc         func(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus) error
}

func (m *logbookRepoMock) Create(ctx context.Context, internshipID uuid.UUID) (*domain.Logbook, error) {
	return m.CreateFunc(ctx, internshipID)
}

func (m *logbookRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Logbook, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *logbookRepoMock) GetByInternshipID(ctx context.Context, internshipID uuid.UUID) (*domain.Logbook, error) {
	return m.GetByInternshipIDFunc(ctx, internshipID)
}

func (m *logbookRepoMock) SetStatus(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus) error {
	return m.SetStatusFunc(ctx, id, status)
}

var _ weeklyLogRepo = &weeklyLogRepoMock{}

type weeklyLogRepoMock struct {
	CreateFunc           func(ctx context.Context, logbookID uuid.UUID, weekNo int) (*domain.WeeklyLog, error)
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.WeeklyLog, error)
	GetByIDForUpdateFunc func(ctx context.Context, id uuid.UUID) (*domain.WeeklyLog, error)
	ListByLogbookIDFunc  func(ctx context.Context, logbookID uuid.UUID) ([]domain.WeeklyLog, error)
	SetStatusFunc        func(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus, comment string) error
}

func (m *weeklyLogRepoMock) Create(ctx context.Context, logbookID uuid.UUID, weekNo int) (*domain.WeeklyLog, error) {
	return m.CreateFunc(ctx, logbookID, weekNo)
}

func (m *weeklyLogRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.WeeklyLog, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *weeklyLogRepoMock) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.WeeklyLog, error) {
	return m.GetByIDForUpdateFunc(ctx, id)
}

func (m *weeklyLogRepoMock) ListByLogbookID(ctx context.Context, logbookID uuid.UUID) ([]domain.WeeklyLog, error) {
	return m.ListByLogbookIDFunc(ctx, logbookID)
}

func (m *weeklyLogRepoMock) SetStatus(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus, comment string) error {
	return m.SetStatusFunc(ctx, id, status, comment)
}

var _ entryRepo = &entryRepoMock{}

type entryRepoMock struct {
	CreateFunc                    func(ctx context.Context, entry *domain.LogbookEntry) (*domain.LogbookEntry, error)
	GetByIDFunc                   func(ctx context.Context, id uuid.UUID) (*domain.LogbookEntry, error)
	GetByIDForUpdateFunc          func(ctx context.Context, id uuid.UUID) (*domain.LogbookEntry, error)
	ListByWeeklyLogIDFunc         func(ctx context.Context, weeklyLogID uuid.UUID) ([]domain.LogbookEntry, error)
	CountByWeeklyLogIDFunc        func(ctx context.Context, weeklyLogID uuid.UUID) (int, error)
	CountMutableByWeeklyLogIDFunc func(ctx context.Context, weeklyLogID uuid.UUID) (int, error)
	UpdateContentFunc             func(ctx context.Context, id uuid.UUID, description, feedback, signature string) (*domain.LogbookEntry, error)
	SealFunc                      func(ctx context.Context, id uuid.UUID) error
	DeleteFunc                    func(ctx context.Context, id uuid.UUID) error
}

func (m *entryRepoMock) Create(ctx context.Context, entry *domain.LogbookEntry) (*domain.LogbookEntry, error) {
	return m.CreateFunc(ctx, entry)
}

func (m *entryRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.LogbookEntry, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *entryRepoMock) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.LogbookEntry, error) {
	return m.GetByIDForUpdateFunc(ctx, id)
}

func (m *entryRepoMock) ListByWeeklyLogID(ctx context.Context, weeklyLogID uuid.UUID) ([]domain.LogbookEntry, error) {
	return m.ListByWeeklyLogIDFunc(ctx, weeklyLogID)
}

func (m *entryRepoMock) CountByWeeklyLogID(ctx context.Context, weeklyLogID uuid.UUID) (int, error) {
	return m.CountByWeeklyLogIDFunc(ctx, weeklyLogID)
}

func (m *entryRepoMock) CountMutableByWeeklyLogID(ctx context.Context, weeklyLogID uuid.UUID) (int, error) {
	return m.CountMutableByWeeklyLogIDFunc(ctx, weeklyLogID)
}

func (m *entryRepoMock) UpdateContent(ctx context.Context, id uuid.UUID, description, feedback, signature string) (*domain.LogbookEntry, error) {
	return m.UpdateContentFunc(ctx, id, description, feedback, signature)
}

func (m *entryRepoMock) Seal(ctx context.Context, id uuid.UUID) error {
	return m.SealFunc(ctx, id)
}

func (m *entryRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}

var _ internshipRepo = &internshipRepoMock{}

type internshipRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Internship, error)
}

func (m *internshipRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Internship, error) {
	return m.GetByIDFunc(ctx, id)
}

var _ studentRepo = &studentRepoMock{}

type studentRepoMock struct {
	GetByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*domain.Student, error)
}

func (m *studentRepoMock) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Student, error) {
	return m.GetByUserIDFunc(ctx, userID)
}

var _ supervisorRepo = &supervisorRepoMock{}

type supervisorRepoMock struct {
	GetByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*domain.Supervisor, error)
}

func (m *supervisorRepoMock) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Supervisor, error) {
	return m.GetByUserIDFunc(ctx, userID)
}

var _ keyCustody = &custodyMock{}

type custodyMock struct {
	WithPrivateKeyFunc func(ctx context.Context, studentID uuid.UUID, fn func(priv *ecdsa.PrivateKey) error) error
	PublicKeyFunc      func(ctx context.Context, studentID uuid.UUID) (*ecdsa.PublicKey, error)
}

func (m *custodyMock) WithPrivateKey(ctx context.Context, studentID uuid.UUID, fn func(priv *ecdsa.PrivateKey) error) error {
	return m.WithPrivateKeyFunc(ctx, studentID, fn)
}

func (m *custodyMock) PublicKey(ctx context.Context, studentID uuid.UUID) (*ecdsa.PublicKey, error) {
	return m.PublicKeyFunc(ctx, studentID)
}

var _ notify.Notifier = &notifierMock{}

type notifierMock struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (m *notifierMock) Notify(ctx context.Context, n notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, n)
	return nil
}

func (m *notifierMock) Sent() []notify.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Notification(nil), m.sent...)
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}
