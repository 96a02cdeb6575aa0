package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Arpita030/deals-App/backend/services/common/auth"
	apperrors "github.com/Arpita030/deals-App/backend/services/common/errors"
	"github.com/Arpita030/deals-App/backend/services/user-service/models"
	"github.com/Arpita030/deals-App/backend/services/user-service/repository"
	"github.com/Arpita030/deals-App/backend/services/user-service/services"
	"github.com/Arpita030/deals-App/backend/services/user-service/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type userService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type UserController struct {
	userService userService
	logger      *zap.Logger
}

func NewUserController(us userService, logger *zap.Logger) *UserController {
	return &UserController{userService: us, logger: logger}
}

// Register handles POST /auth/register.
func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, validation.FieldErrors(err))
		return
	}

	user, err := uc.userService.Register(c.Request.Context(), &req)
	switch {
	case errors.Is(err, services.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"role": "Invalid role. Allowed roles are USER or ADMIN."})
	case errors.Is(err, repository.ErrEmailTaken):
		apperrors.Respond(c, apperrors.Conflict("Email already registered"))
	case err != nil:
		uc.logger.Error("Registration failed", zap.String("email", req.Email), zap.Error(err))
		apperrors.Respond(c, apperrors.Internal(err))
	default:
		c.JSON(http.StatusOK, user)
	}
}

// Login handles POST /auth/login.
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, validation.FieldErrors(err))
		return
	}

	token, err := uc.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		uc.logger.Error("Login failed", zap.String("email", req.Email), zap.Error(err))
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetProfile handles GET /users/profile for the authenticated user.
func (uc *UserController) GetProfile(c *gin.Context) {
	email := auth.Email(c)

	user, err := uc.userService.Profile(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("User with email %s not found", email)})
			return
		}
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}

// ListUsers handles GET /users/admin/all.
func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.userService.ListUsers(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	profiles := make([]models.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	c.JSON(http.StatusOK, profiles)
}
