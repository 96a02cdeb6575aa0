package services

import (
	"context"
	"testing"

	"github.com/Arpita030/deals-App/backend/services/user-service/models"
	"github.com/Arpita030/deals-App/backend/services/user-service/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks for Dependencies ---

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

type MockTokenService struct{ mock.Mock }

func (m *MockTokenService) IssueToken(userID, email, role string) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}

func registerRequest(role string) *models.RegisterRequest {
	return &models.RegisterRequest{Name: "Arpita", Email: "arpita@gmail.com", Password: "Passw0rd!", Role: role}
}

// --- Tests ---

func TestRegister(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, new(MockTokenService), zap.NewNop())
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "arpita@gmail.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Register(ctx, registerRequest("user"))
	require.NoError(t, err)
	assert.Equal(t, "USER", user.Role)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Passw0rd!")))
	repo.AssertExpectations(t)
}

func TestRegister_InvalidRole(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, new(MockTokenService), zap.NewNop())

	_, err := svc.Register(context.Background(), registerRequest("superuser"))
	assert.ErrorIs(t, err, ErrInvalidRole)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, new(MockTokenService), zap.NewNop())
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "arpita@gmail.com").Return(&models.User{Email: "arpita@gmail.com"}, nil)

	_, err := svc.Register(ctx, registerRequest("ADMIN"))
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	repo := new(MockUserRepository)
	tokens := new(MockTokenService)
	svc := NewUserService(repo, tokens, zap.NewNop())
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	user := &models.User{ID: uuid.New(), Email: "arpita@gmail.com", Password: string(hashed), Role: "USER"}

	repo.On("FindByEmail", ctx, "arpita@gmail.com").Return(user, nil)
	tokens.On("IssueToken", user.ID.String(), "arpita@gmail.com", "USER").Return("fake-jwt-token", nil)

	token, err := svc.Login(ctx, "arpita@gmail.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, "fake-jwt-token", token)

	_, err = svc.Login(ctx, "arpita@gmail.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, new(MockTokenService), zap.NewNop())
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "ghost@gmail.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, "ghost@gmail.com", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
