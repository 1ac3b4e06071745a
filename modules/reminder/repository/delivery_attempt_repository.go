package repository

import (
	"context"

	"quietblock-api/core/database"
	"quietblock-api/core/logger"
	"quietblock-api/modules/reminder/entity"

	"github.com/google/uuid"
)

type DeliveryAttemptRepository struct {
	DB database.IDatabase
}

func NewDeliveryAttemptRepository(db database.IDatabase) *DeliveryAttemptRepository {
	return &DeliveryAttemptRepository{DB: db}
}

type DeliveryAttemptRepositoryInterface interface {
	Record(ctx context.Context, attempt *entity.DeliveryAttempt) error
	CountByBlock(ctx context.Context, blockID uuid.UUID) (int, error)
}

func (r *DeliveryAttemptRepository) Record(ctx context.Context, attempt *entity.DeliveryAttempt) error {
	query := `
		INSERT INTO delivery_attempts (id, block_id, attempt_no, recipient, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	err := r.DB.ExecContext(ctx, query,
		attempt.ID, attempt.BlockID, attempt.AttemptNo,
		attempt.Recipient, attempt.Status, attempt.ErrorMessage)
	if err != nil {
		logger.Error("DeliveryAttemptRepository:Record", err)
		return err
	}
	return nil
}

func (r *DeliveryAttemptRepository) CountByBlock(ctx context.Context, blockID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM delivery_attempts WHERE block_id = $1`
	if err := r.DB.GetContext(ctx, &count, query, blockID); err != nil {
		logger.Error("DeliveryAttemptRepository:CountByBlock", err)
		return 0, err
	}
	return count, nil
}
