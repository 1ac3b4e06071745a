package service

import (
	"context"
	"strings"
	"time"

	"quietblock-api/core/cache"
	"quietblock-api/core/config"
	"quietblock-api/core/constants"
	"quietblock-api/core/errors"
	"quietblock-api/core/logger"
	"quietblock-api/core/utils"
	"quietblock-api/modules/user/dto"
	"quietblock-api/modules/user/entity"
	"quietblock-api/modules/user/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo  repository.UserRepositoryInterface
	cache cache.Cache
}

type UserServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, *errors.AppError)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, *errors.AppError)
	Logout(ctx context.Context, token string, expiresAt time.Time) *errors.AppError
	GetMe(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, *errors.AppError)
	UpdateSettings(ctx context.Context, userID uuid.UUID, req *dto.UpdateSettingsRequest) (*dto.UserResponse, *errors.AppError)
}

func NewUserService(repo repository.UserRepositoryInterface, c cache.Cache) UserServiceInterface {
	return &UserService{repo: repo, cache: c}
}

func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.IsValidEmail(email) {
		return nil, errors.NewAppError(errors.ErrInvalidRequestData, "invalid email address", nil)
	}
	if req.Name == "" {
		return nil, errors.NewAppError(errors.ErrInvalidRequestData, "name is required", nil)
	}
	if len(req.Password) < 8 {
		return nil, errors.NewAppError(errors.ErrInvalidRequestData, "password must be at least 8 characters", nil)
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check existing user", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "an account with this email already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to hash password", err)
	}

	user := &entity.User{
		Name:            req.Name,
		Email:           email,
		PasswordHash:    string(hash),
		DisplayTimezone: constants.DefaultDisplayTimezone,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create user", err)
	}

	logger.Info("UserService:Register:Success", "user_id", created.ID, "email", email)
	return dto.ToUserResponse(created), nil
}

func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to look up user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid email or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid email or password", nil)
	}

	ttl := 24 * time.Hour
	if cfg, ok := config.GetSafe(); ok && cfg.JWT.ExpiryMinutes > 0 {
		ttl = time.Duration(cfg.JWT.ExpiryMinutes) * time.Minute
	}

	token, err := utils.GenerateToken(user.ID, user.Email, ttl)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to issue token", err)
	}

	return &dto.LoginResponse{
		Token: token,
		User:  *dto.ToUserResponse(user),
	}, nil
}

// Logout blacklists the token for its remaining lifetime.
func (s *UserService) Logout(ctx context.Context, token string, expiresAt time.Time) *errors.AppError {
	ttl := time.Until(expiresAt)
	if err := s.cache.BlacklistToken(ctx, token, ttl); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to revoke token", err)
	}
	return nil
}

func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, *errors.AppError) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
	}
	return dto.ToUserResponse(user), nil
}

func (s *UserService) UpdateSettings(ctx context.Context, userID uuid.UUID, req *dto.UpdateSettingsRequest) (*dto.UserResponse, *errors.AppError) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
	}

	if req.NotificationEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*req.NotificationEmail))
		if email == "" {
			user.NotificationEmail = nil
		} else {
			if !utils.IsValidEmail(email) {
				return nil, errors.NewAppError(errors.ErrInvalidRequestData, "invalid notification email", nil)
			}
			user.NotificationEmail = &email
		}
	}
	if req.DisplayTimezone != nil {
		if !utils.IsValidTimezone(*req.DisplayTimezone) {
			return nil, errors.NewAppError(errors.ErrInvalidRequestData, "unknown timezone", nil)
		}
		user.DisplayTimezone = *req.DisplayTimezone
	}

	if err := s.repo.UpdateSettings(ctx, user); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to update settings", err)
	}

	logger.Info("UserService:UpdateSettings:Success", "user_id", userID)
	return dto.ToUserResponse(user), nil
}
