package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/Arpita030/deals-App/backend/services/user-service/models"
	"github.com/Arpita030/deals-App/backend/services/user-service/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type IUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	FindAll(ctx context.Context) ([]models.User, error)
}

type ITokenService interface {
	IssueToken(userID, email, role string) (string, error)
}

// TokenService signs access tokens with the shared JWT secret.
type TokenService struct {
	ttl time.Duration
}

func NewTokenService(ttl time.Duration) *TokenService {
	return &TokenService{ttl: ttl}
}

func (t *TokenService) IssueToken(userID, email, role string) (string, error) {
	return auth.IssueToken(userID, email, role, t.ttl)
}

type UserService struct {
	userRepo     IUserRepository
	tokenService ITokenService
	logger       *zap.Logger
}

func NewUserService(ur IUserRepository, ts ITokenService, logger *zap.Logger) *UserService {
	return &UserService{userRepo: ur, tokenService: ts, logger: logger}
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return nil, ErrInvalidRole
	}

	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, repository.ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("email", user.Email), zap.String("role", user.Role))
	return user, nil
}

// Login returns a signed token for valid credentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokenService.IssueToken(user.ID.String(), user.Email, user.Role)
}

func (s *UserService) Profile(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
