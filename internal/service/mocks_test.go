package service_test

import (
	"context"
	"time"

	"adspace-backend/internal/domain"
	"adspace-backend/internal/repository"
	"adspace-backend/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockUnitRepo
type MockUnitRepo struct {
	mock.Mock
}

func (m *MockUnitRepo) Create(ctx context.Context, unit *domain.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}
func (m *MockUnitRepo) GetByID(ctx context.Context, id string) (*domain.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Unit), args.Error(1)
}
func (m *MockUnitRepo) UpdateStatus(ctx context.Context, id string, status domain.UnitStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockUnitRepo) ClaimForProcessing(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockUnitRepo) FinalizeBooked(ctx context.Context, id, actorID string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, actorID, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockUnitRepo) SetWorkflowState(ctx context.Context, id string, state *string) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}
func (m *MockUnitRepo) SetLive(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockClaimRepo
type MockClaimRepo struct {
	mock.Mock
}

func (m *MockClaimRepo) Create(ctx context.Context, claim *domain.Claim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}
func (m *MockClaimRepo) GetByID(ctx context.Context, id string) (*domain.Claim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}
func (m *MockClaimRepo) FindActiveByUnitAndAgent(ctx context.Context, unitID, agentID string) (*domain.Claim, error) {
	args := m.Called(ctx, unitID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}
func (m *MockClaimRepo) ListOverlapping(ctx context.Context, unitID string, from, to time.Time, statuses []domain.ClaimStatus) ([]domain.Claim, error) {
	args := m.Called(ctx, unitID, from, to, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}
func (m *MockClaimRepo) ListActiveByUnit(ctx context.Context, unitID string) ([]domain.Claim, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}
func (m *MockClaimRepo) ListExpiredActive(ctx context.Context, now time.Time) ([]domain.Claim, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}
func (m *MockClaimRepo) ListByAgent(ctx context.Context, agentID string) ([]domain.Claim, error) {
	args := m.Called(ctx, agentID)
	return args.Get(0).([]domain.Claim), args.Error(1)
}
func (m *MockClaimRepo) ListByDesigner(ctx context.Context, designerID string) ([]domain.Claim, error) {
	args := m.Called(ctx, designerID)
	return args.Get(0).([]domain.Claim), args.Error(1)
}
func (m *MockClaimRepo) ListByFitter(ctx context.Context, fitterID string) ([]domain.Claim, error) {
	args := m.Called(ctx, fitterID)
	return args.Get(0).([]domain.Claim), args.Error(1)
}
func (m *MockClaimRepo) ListRecent(ctx context.Context, filter repository.ClaimFilter) ([]domain.Claim, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Claim), args.Error(1)
}
func (m *MockClaimRepo) SetQueuePosition(ctx context.Context, id string, position int32) error {
	args := m.Called(ctx, id, position)
	return args.Error(0)
}
func (m *MockClaimRepo) UpdateStatus(ctx context.Context, id string, status domain.ClaimStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockClaimRepo) CancelMany(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
func (m *MockClaimRepo) ExpireIfActive(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockClaimRepo) ConfirmWithDesigner(ctx context.Context, id, designerID string) error {
	args := m.Called(ctx, id, designerID)
	return args.Error(0)
}
func (m *MockClaimRepo) BindFitter(ctx context.Context, id, fitterID string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, fitterID, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockClaimRepo) SetDesignStatus(ctx context.Context, id string, status domain.StageStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockClaimRepo) SetFitterStatus(ctx context.Context, id string, status domain.StageStatus, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}
func (m *MockClaimRepo) CompleteInstallation(ctx context.Context, id string, proofs []domain.ProofImage, at time.Time) error {
	args := m.Called(ctx, id, proofs, at)
	return args.Error(0)
}

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}
func (m *MockBookingRepo) FindLatestByUnitAndStatus(ctx context.Context, unitID string, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, unitID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByUnit(ctx context.Context, unitID string) ([]domain.Booking, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockClientRepo
type MockClientRepo struct {
	mock.Mock
}

func (m *MockClientRepo) Create(ctx context.Context, client *domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}
func (m *MockClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientRepo) FindByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) ListActiveByRoles(ctx context.Context, roles ...domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) (bool, error) {
	args := m.Called(ctx, note)
	return args.Bool(0), args.Error(1)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), int32(args.Int(1)), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockStore bundles the repo mocks and runs ExecTx callbacks against itself,
// so transactional flows exercise the same expectations as direct calls.
type MockStore struct {
	UnitRepo   *MockUnitRepo
	ClaimRepo  *MockClaimRepo
	Book       *MockBookingRepo
	ClientRepo *MockClientRepo
	UserRepo   *MockUserRepo
	NoteRepo   *MockNotificationRepo
}

func NewMockStore() *MockStore {
	return &MockStore{
		UnitRepo:   new(MockUnitRepo),
		ClaimRepo:  new(MockClaimRepo),
		Book:       new(MockBookingRepo),
		ClientRepo: new(MockClientRepo),
		UserRepo:   new(MockUserRepo),
		NoteRepo:   new(MockNotificationRepo),
	}
}

func (m *MockStore) Units() repository.UnitRepository                 { return m.UnitRepo }
func (m *MockStore) Claims() repository.ClaimRepository               { return m.ClaimRepo }
func (m *MockStore) Bookings() repository.BookingRepository           { return m.Book }
func (m *MockStore) Clients() repository.ClientRepository             { return m.ClientRepo }
func (m *MockStore) Users() repository.UserRepository                 { return m.UserRepo }
func (m *MockStore) Notifications() repository.NotificationRepository { return m.NoteRepo }

func (m *MockStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NotifyUsers(ctx context.Context, userIDs []string, title, body, link string) {
	m.Called(ctx, userIDs, title, body, link)
}
func (m *MockNotificationService) NotifyUsersIdempotent(ctx context.Context, userIDs []string, title, body, link, dedupeBase string) {
	m.Called(ctx, userIDs, title, body, link, dedupeBase)
}
func (m *MockNotificationService) GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), int32(args.Int(1)), args.Error(2)
}
func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

// MockUnitService
type MockUnitService struct {
	mock.Mock
}

func (m *MockUnitService) FinalizeStatus(ctx context.Context, unitID string, actor service.Actor, next domain.UnitStatus) error {
	args := m.Called(ctx, unitID, actor, next)
	return args.Error(0)
}
func (m *MockUnitService) RecomputeStatus(ctx context.Context, unitID string) error {
	args := m.Called(ctx, unitID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendNotificationEmail(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}
