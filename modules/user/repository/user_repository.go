package repository

import (
	"context"
	"database/sql"

	"quietblock-api/core/database"
	"quietblock-api/core/logger"
	"quietblock-api/modules/user/entity"

	"github.com/google/uuid"
)

const userColumns = `id, name, email, password_hash, notification_email, display_timezone, created_at, updated_at`

type UserRepository struct {
	DB database.IDatabase
}

func NewUserRepository(db database.IDatabase) *UserRepository {
	return &UserRepository{DB: db}
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateSettings(ctx context.Context, user *entity.User) error
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, display_timezone)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	var created entity.User
	err := r.DB.GetContext(ctx, &created, query,
		user.Name, user.Email, user.PasswordHash, user.DisplayTimezone)
	if err != nil {
		logger.Error("UserRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("UserRepository:GetByID", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("UserRepository:GetByEmail", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateSettings(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET notification_email = $2, display_timezone = $3, updated_at = NOW()
		WHERE id = $1
	`
	err := r.DB.ExecContext(ctx, query, user.ID, user.NotificationEmail, user.DisplayTimezone)
	if err != nil {
		logger.Error("UserRepository:UpdateSettings", err)
		return err
	}
	return nil
}
