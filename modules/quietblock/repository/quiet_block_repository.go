package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quietblock-api/core/database"
	"quietblock-api/core/logger"
	"quietblock-api/core/params"
	"quietblock-api/modules/quietblock/entity"

	"github.com/google/uuid"
)

const blockColumns = `id, user_id, title, description, start_time, end_time, status,
	       reminder, reminder_scheduled_at, reminder_sent, reminder_sent_at,
	       is_deleted, created_at, updated_at`

// ListFilter narrows GetByUserID results.
type ListFilter struct {
	Status *entity.BlockStatus
	From   *time.Time
	To     *time.Time
}

// QuietBlockRepository handles quiet_blocks database operations.
type QuietBlockRepository struct {
	DB database.IDatabase
}

func NewQuietBlockRepository(db database.IDatabase) *QuietBlockRepository {
	return &QuietBlockRepository{DB: db}
}

// QuietBlockRepositoryInterface defines the repository contract.
type QuietBlockRepositoryInterface interface {
	Create(ctx context.Context, block *entity.QuietBlock) (*entity.QuietBlock, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.QuietBlock, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, p params.QueryParams, filter ListFilter) (*entity.PaginatedQuietBlockEntity, error)
	GetActiveInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.QuietBlock, error)
	Update(ctx context.Context, block *entity.QuietBlock) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	FindReminderCandidates(ctx context.Context, dueBefore time.Time, limit int) ([]entity.QuietBlock, error)
	ClaimReminder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	ReleaseReminder(ctx context.Context, id uuid.UUID) error

	SweepActivate(ctx context.Context, now time.Time) (int64, error)
	SweepComplete(ctx context.Context, now time.Time) (int64, error)
}

func (r *QuietBlockRepository) Create(ctx context.Context, block *entity.QuietBlock) (*entity.QuietBlock, error) {
	query := `
		INSERT INTO quiet_blocks (user_id, title, description, start_time, end_time, status,
		                          reminder, reminder_scheduled_at, reminder_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + blockColumns

	var created entity.QuietBlock
	err := r.DB.GetContext(ctx, &created, query,
		block.UserID, block.Title, block.Description, block.StartTime, block.EndTime,
		block.Status, block.Reminder, block.ReminderScheduledAt, block.ReminderSent)
	if err != nil {
		logger.Error("QuietBlockRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *QuietBlockRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.QuietBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM quiet_blocks WHERE id = $1`

	var block entity.QuietBlock
	err := r.DB.GetContext(ctx, &block, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("QuietBlockRepository:GetByID", err)
		return nil, err
	}
	return &block, nil
}

func (r *QuietBlockRepository) GetByUserID(ctx context.Context, userID uuid.UUID, p params.QueryParams, filter ListFilter) (*entity.PaginatedQuietBlockEntity, error) {
	where := `FROM quiet_blocks WHERE user_id = $1 AND is_deleted = false`
	args := []any{userID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND end_time > $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND start_time < $%d", len(args))
	}

	var totalItems int
	if err := r.DB.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+where, args...); err != nil {
		logger.Error("QuietBlockRepository:GetByUserID:Count", err)
		return nil, err
	}

	offset := (p.PageNumber - 1) * p.PageSize
	args = append(args, p.PageSize, offset)
	query := fmt.Sprintf("SELECT %s %s ORDER BY start_time ASC LIMIT $%d OFFSET $%d",
		blockColumns, where, len(args)-1, len(args))

	var blocks []entity.QuietBlock
	if err := r.DB.SelectContext(ctx, &blocks, query, args...); err != nil {
		logger.Error("QuietBlockRepository:GetByUserID:Select", err)
		return nil, err
	}

	return &entity.PaginatedQuietBlockEntity{
		Items:      blocks,
		TotalItems: totalItems,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

// GetActiveInRange returns the owner's conflict-relevant blocks whose
// interval touches [from, to), ordered by start time.
func (r *QuietBlockRepository) GetActiveInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.QuietBlock, error) {
	query := `
		SELECT ` + blockColumns + `
		FROM quiet_blocks
		WHERE user_id = $1
		  AND is_deleted = false
		  AND status IN ('scheduled', 'active')
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time ASC
	`

	var blocks []entity.QuietBlock
	if err := r.DB.SelectContext(ctx, &blocks, query, userID, from, to); err != nil {
		logger.Error("QuietBlockRepository:GetActiveInRange", err)
		return nil, err
	}
	return blocks, nil
}

func (r *QuietBlockRepository) Update(ctx context.Context, block *entity.QuietBlock) error {
	query := `
		UPDATE quiet_blocks
		SET title = $2, description = $3, start_time = $4, end_time = $5, status = $6,
		    reminder = $7, reminder_scheduled_at = $8, reminder_sent = $9,
		    reminder_sent_at = $10, updated_at = NOW()
		WHERE id = $1
	`
	err := r.DB.ExecContext(ctx, query,
		block.ID, block.Title, block.Description, block.StartTime, block.EndTime,
		block.Status, block.Reminder, block.ReminderScheduledAt, block.ReminderSent,
		block.ReminderSentAt)
	if err != nil {
		logger.Error("QuietBlockRepository:Update", err)
		return err
	}
	return nil
}

// SoftDelete cancels the block and hides it from active queries. The row
// is kept for history.
func (r *QuietBlockRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE quiet_blocks
		SET status = 'cancelled', is_deleted = true, updated_at = NOW()
		WHERE id = $1
	`
	if err := r.DB.ExecContext(ctx, query, id); err != nil {
		logger.Error("QuietBlockRepository:SoftDelete", err)
		return err
	}
	return nil
}

// FindReminderCandidates fetches blocks whose reminder could fire by
// dueBefore. The precise due-window test happens in the service; this
// query only narrows the set.
func (r *QuietBlockRepository) FindReminderCandidates(ctx context.Context, dueBefore time.Time, limit int) ([]entity.QuietBlock, error) {
	query := `
		SELECT ` + blockColumns + `
		FROM quiet_blocks
		WHERE status = 'scheduled'
		  AND is_deleted = false
		  AND reminder_sent = false
		  AND (reminder->>'enabled')::boolean = true
		  AND (reminder->>'email_enabled')::boolean = true
		  AND reminder_scheduled_at IS NOT NULL
		  AND reminder_scheduled_at <= $1
		ORDER BY start_time ASC
		LIMIT $2
	`

	var blocks []entity.QuietBlock
	if err := r.DB.SelectContext(ctx, &blocks, query, dueBefore, limit); err != nil {
		logger.Error("QuietBlockRepository:FindReminderCandidates", err)
		return nil, err
	}
	return blocks, nil
}

// ClaimReminder flips reminder_sent false->true atomically. Returns false
// when another invocation already claimed the block, which is the
// mutual-exclusion gate for concurrent trigger ticks.
func (r *QuietBlockRepository) ClaimReminder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE quiet_blocks
		SET reminder_sent = true, reminder_sent_at = $2, updated_at = NOW()
		WHERE id = $1 AND reminder_sent = false
	`
	res, err := r.DB.ExecWithResultContext(ctx, query, id, at)
	if err != nil {
		logger.Error("QuietBlockRepository:ClaimReminder", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseReminder returns a claimed block to the pending state after a
// failed dispatch so the next tick retries it.
func (r *QuietBlockRepository) ReleaseReminder(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE quiet_blocks
		SET reminder_sent = false, reminder_sent_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	if err := r.DB.ExecContext(ctx, query, id); err != nil {
		logger.Error("QuietBlockRepository:ReleaseReminder", err)
		return err
	}
	return nil
}

func (r *QuietBlockRepository) SweepActivate(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE quiet_blocks
		SET status = 'active', updated_at = NOW()
		WHERE status = 'scheduled' AND is_deleted = false
		  AND start_time <= $1 AND end_time > $1
	`
	res, err := r.DB.ExecWithResultContext(ctx, query, now)
	if err != nil {
		logger.Error("QuietBlockRepository:SweepActivate", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *QuietBlockRepository) SweepComplete(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE quiet_blocks
		SET status = 'completed', updated_at = NOW()
		WHERE status IN ('scheduled', 'active') AND is_deleted = false
		  AND end_time <= $1
	`
	res, err := r.DB.ExecWithResultContext(ctx, query, now)
	if err != nil {
		logger.Error("QuietBlockRepository:SweepComplete", err)
		return 0, err
	}
	return res.RowsAffected()
}
