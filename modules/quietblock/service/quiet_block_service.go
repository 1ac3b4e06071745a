package service

import (
	"context"
	"time"

	"quietblock-api/core/cache"
	"quietblock-api/core/constants"
	"quietblock-api/core/errors"
	"quietblock-api/core/logger"
	"quietblock-api/core/params"
	"quietblock-api/core/utils"
	"quietblock-api/modules/quietblock/dto"
	"quietblock-api/modules/quietblock/entity"
	"quietblock-api/modules/quietblock/repository"
	userentity "quietblock-api/modules/user/entity"

	"github.com/google/uuid"
)

// UserStore is the slice of the user repository this service needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userentity.User, error)
}

// QuietBlockService handles quiet block business logic.
type QuietBlockService struct {
	repo  repository.QuietBlockRepositoryInterface
	users UserStore
	cache cache.Cache
	now   func() time.Time
}

// QuietBlockServiceInterface defines the service contract.
type QuietBlockServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateBlockRequest) (*dto.BlockResponse, *errors.AppError)
	GetByID(ctx context.Context, userID, blockID uuid.UUID) (*dto.BlockResponse, *errors.AppError)
	List(ctx context.Context, userID uuid.UUID, p params.QueryParams, filter repository.ListFilter) (*dto.PaginatedBlocksResponse, *errors.AppError)
	Update(ctx context.Context, userID, blockID uuid.UUID, req *dto.UpdateBlockRequest) (*dto.BlockResponse, *errors.AppError)
	Delete(ctx context.Context, userID, blockID uuid.UUID) *errors.AppError
	Complete(ctx context.Context, userID, blockID uuid.UUID) (*dto.BlockResponse, *errors.AppError)
	Cancel(ctx context.Context, userID, blockID uuid.UUID) (*dto.BlockResponse, *errors.AppError)
	SweepStatuses(ctx context.Context) *errors.AppError
}

func NewQuietBlockService(repo repository.QuietBlockRepositoryInterface, users UserStore, c cache.Cache) QuietBlockServiceInterface {
	return &QuietBlockService{
		repo:  repo,
		users: users,
		cache: c,
		now:   time.Now,
	}
}

func (s *QuietBlockService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateBlockRequest) (*dto.BlockResponse, *errors.AppError) {
	now := s.now().UTC()
	start := req.StartTime.UTC()
	end := req.EndTime.UTC()

	if req.Title == "" {
		return nil, errors.NewAppError(errors.ErrInvalidRequestData, "title is required", nil)
	}
	if appErr := ValidateTimeRange(start, end, now); appErr != nil {
		return nil, appErr
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrStorageUnavailable, "failed to load user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
	}

	loc := utils.LocationOrUTC(user.DisplayTimezone)
	if !SameCalendarDay(start, end, loc) {
		return nil, errors.NewAppError(errors.ErrCrossesMidnight, "block must start and end on the same calendar day", nil)
	}

	reminder := entity.DefaultReminderConfig()
	if req.Reminder != nil {
		reminder = entity.ReminderConfig(*req.Reminder)
		if appErr := validateReminderConfig(reminder); appErr != nil {
			return nil, appErr
		}
	}

	unlock, appErr := s.lockOwner(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}
	defer unlock()

	conflict, appErr := s.checkConflicts(ctx, userID, entity.TimeRange{Start: start, End: end}, uuid.Nil)
	if appErr != nil {
		return nil, appErr
	}
	if conflict != nil {
		return nil, conflict
	}

	block := &entity.QuietBlock{
		UserID:    userID,
		Title:     req.Title,
		StartTime: start,
		EndTime:   end,
		Status:    entity.BlockStatusScheduled,
		Reminder:  reminder,
	}
	if req.Description != "" {
		block.Description = &req.Description
	}
	reminderAt := reminderScheduledAt(start, reminder)
	block.ReminderScheduledAt = &reminderAt

	created, err := s.repo.Create(ctx, block)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create quiet block", err)
	}

	logger.Info("QuietBlockService:Create:Success",
		"block_id", created.ID, "user_id", userID,
		"start", created.StartTime, "end", created.EndTime)
	return dto.ToBlockResponse(created), nil
}

func (s *QuietBlockService) GetByID(ctx context.Context, userID, blockID uuid.UUID) (*dto.BlockResponse, *errors.AppError) {
	block, appErr := s.ownedBlock(ctx, userID, blockID)
	if appErr != nil {
		return nil, appErr
	}
	return dto.ToBlockResponse(block), nil
}

func (s *QuietBlockService) List(ctx context.Context, userID uuid.UUID, p params.QueryParams, filter repository.ListFilter) (*dto.PaginatedBlocksResponse, *errors.AppError) {
	page, err := s.repo.GetByUserID(ctx, userID, p, filter)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list quiet blocks", err)
	}

	items := make([]dto.BlockResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *dto.ToBlockResponse(&page.Items[i]))
	}
	return &dto.PaginatedBlocksResponse{
		Items:      items,
		TotalItems: page.TotalItems,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}, nil
}

func (s *QuietBlockService) Update(ctx context.Context, userID, blockID uuid.UUID, req *dto.UpdateBlockRequest) (*dto.BlockResponse, *errors.AppError) {
	block, appErr := s.ownedBlock(ctx, userID, blockID)
	if appErr != nil {
		return nil, appErr
	}
	if block.Status != entity.BlockStatusScheduled {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "only scheduled blocks can be updated", nil)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, errors.NewAppError(errors.ErrInvalidRequestData, "title cannot be empty", nil)
		}
		block.Title = *req.Title
	}
	if req.Description != nil {
		block.Description = req.Description
	}

	timesChanged := req.StartTime != nil || req.EndTime != nil
	if req.StartTime != nil {
		block.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		block.EndTime = req.EndTime.UTC()
	}

	offsetChanged := false
	if req.Reminder != nil {
		newCfg := entity.ReminderConfig(*req.Reminder)
		if appErr := validateReminderConfig(newCfg); appErr != nil {
			return nil, appErr
		}
		offsetChanged = newCfg.MinutesBefore != block.Reminder.MinutesBefore
		block.Reminder = newCfg
	}

	if timesChanged {
		now := s.now().UTC()
		if appErr := ValidateTimeRange(block.StartTime, block.EndTime, now); appErr != nil {
			return nil, appErr
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil || user == nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load user", err)
		}
		loc := utils.LocationOrUTC(user.DisplayTimezone)
		if !SameCalendarDay(block.StartTime, block.EndTime, loc) {
			return nil, errors.NewAppError(errors.ErrCrossesMidnight, "block must start and end on the same calendar day", nil)
		}

		unlock, appErr := s.lockOwner(ctx, userID)
		if appErr != nil {
			return nil, appErr
		}
		defer unlock()

		// excludeID keeps the block from conflicting with itself
		conflict, appErr := s.checkConflicts(ctx, userID, block.Range(), block.ID)
		if appErr != nil {
			return nil, appErr
		}
		if conflict != nil {
			return nil, conflict
		}
	}

	// A moved start or changed offset re-arms the reminder.
	if timesChanged || offsetChanged {
		reminderAt := reminderScheduledAt(block.StartTime, block.Reminder)
		block.ReminderScheduledAt = &reminderAt
		block.ReminderSent = false
		block.ReminderSentAt = nil
	}

	if err := s.repo.Update(ctx, block); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to update quiet block", err)
	}

	logger.Info("QuietBlockService:Update:Success", "block_id", block.ID, "user_id", userID)
	return dto.ToBlockResponse(block), nil
}

func (s *QuietBlockService) Delete(ctx context.Context, userID, blockID uuid.UUID) *errors.AppError {
	block, appErr := s.ownedBlock(ctx, userID, blockID)
	if appErr != nil {
		return appErr
	}
	if err := s.repo.SoftDelete(ctx, block.ID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to delete quiet block", err)
	}
	logger.Info("QuietBlockService:Delete:Success", "block_id", blockID, "user_id", userID)
	return nil
}

func (s *QuietBlockService) Complete(ctx context.Context, userID, blockID uuid.UUID) (*dto.BlockResponse, *errors.AppError) {
	block, appErr := s.ownedBlock(ctx, userID, blockID)
	if appErr != nil {
		return nil, appErr
	}
	if block.Status != entity.BlockStatusActive {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "only active blocks can be completed", nil)
	}
	block.Status = entity.BlockStatusCompleted
	if err := s.repo.Update(ctx, block); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to complete quiet block", err)
	}
	return dto.ToBlockResponse(block), nil
}

func (s *QuietBlockService) Cancel(ctx context.Context, userID, blockID uuid.UUID) (*dto.BlockResponse, *errors.AppError) {
	block, appErr := s.ownedBlock(ctx, userID, blockID)
	if appErr != nil {
		return nil, appErr
	}
	if !block.Status.ConflictRelevant() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "block is already finished", nil)
	}
	block.Status = entity.BlockStatusCancelled
	if err := s.repo.Update(ctx, block); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to cancel quiet block", err)
	}
	return dto.ToBlockResponse(block), nil
}

// SweepStatuses advances block lifecycles past their boundaries:
// scheduled blocks whose window has passed complete, blocks inside
// their window activate. Completion runs first so an expired scheduled
// block never briefly turns active.
func (s *QuietBlockService) SweepStatuses(ctx context.Context) *errors.AppError {
	now := s.now().UTC()

	completed, err := s.repo.SweepComplete(ctx, now)
	if err != nil {
		return errors.NewAppError(errors.ErrStorageUnavailable, "status sweep failed", err)
	}
	activated, err := s.repo.SweepActivate(ctx, now)
	if err != nil {
		return errors.NewAppError(errors.ErrStorageUnavailable, "status sweep failed", err)
	}

	if completed > 0 || activated > 0 {
		logger.Info("QuietBlockService:SweepStatuses", "activated", activated, "completed", completed)
	}
	return nil
}

// ownedBlock loads a block and verifies visibility and ownership.
func (s *QuietBlockService) ownedBlock(ctx context.Context, userID, blockID uuid.UUID) (*entity.QuietBlock, *errors.AppError) {
	block, err := s.repo.GetByID(ctx, blockID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get quiet block", err)
	}
	if block == nil || block.IsDeleted {
		return nil, errors.NewAppError(errors.ErrNotFound, "quiet block not found", nil)
	}
	if block.UserID != userID {
		return nil, errors.NewAppError(errors.ErrForbidden, "not authorized", nil)
	}
	return block, nil
}

// checkConflicts fetches the owner's surrounding blocks and runs the
// overlap checker. Returns a SCHEDULE_CONFLICT error listing every
// conflicting block, or nil when the candidate is acceptable.
func (s *QuietBlockService) checkConflicts(ctx context.Context, userID uuid.UUID, candidate entity.TimeRange, excludeID uuid.UUID) (*errors.AppError, *errors.AppError) {
	// Any block overlapping the candidate starts within one max
	// duration of it, so this window covers all possible conflicts.
	from := candidate.Start.Add(-constants.MaxBlockDuration)
	to := candidate.End.Add(constants.MaxBlockDuration)

	existing, err := s.repo.GetActiveInRange(ctx, userID, from, to)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrStorageUnavailable, "failed to check for conflicts", err)
	}

	result := CheckOverlap(candidate, excludeID, existing)
	if result.HasConflict {
		return errors.NewAppErrorWithDetails(
			errors.ErrScheduleConflict,
			"the requested time overlaps existing quiet blocks",
			dto.ToConflictBlocks(result.Conflicts),
			nil,
		), nil
	}
	return nil, nil
}

// lockOwner serializes scheduling writes per owner. Without it two
// concurrent requests could both pass the overlap check against a stale
// read and create colliding blocks.
func (s *QuietBlockService) lockOwner(ctx context.Context, userID uuid.UUID) (func(), *errors.AppError) {
	acquired, err := s.cache.AcquireOwnerLock(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to acquire scheduling lock", err)
	}
	if !acquired {
		return nil, errors.NewAppError(errors.ErrConcurrentUpdate, "another scheduling request is in progress, try again", nil)
	}
	return func() {
		if err := s.cache.ReleaseOwnerLock(context.WithoutCancel(ctx), userID); err != nil {
			logger.Error("QuietBlockService:ReleaseOwnerLock:Error:", err)
		}
	}, nil
}

func validateReminderConfig(cfg entity.ReminderConfig) *errors.AppError {
	if cfg.MinutesBefore < constants.MinReminderOffset || cfg.MinutesBefore > constants.MaxReminderOffset {
		return errors.NewAppError(errors.ErrInvalidRequestData, "reminder minutes_before must be between 1 and 1440", nil)
	}
	return nil
}

func reminderScheduledAt(start time.Time, cfg entity.ReminderConfig) time.Time {
	return start.Add(-time.Duration(cfg.MinutesBefore) * time.Minute)
}
