package service

import (
	"context"
	"time"

	"quietblock-api/core/constants"
	"quietblock-api/core/errors"
	"quietblock-api/core/logger"
	"quietblock-api/core/utils"
	notifdto "quietblock-api/modules/notification/dto"
	notifentity "quietblock-api/modules/notification/entity"
	qbentity "quietblock-api/modules/quietblock/entity"
	"quietblock-api/modules/reminder/dto"
	"quietblock-api/modules/reminder/entity"
	userentity "quietblock-api/modules/user/entity"

	"github.com/google/uuid"
)

// BlockStore is the slice of the quiet block repository the scheduler
// needs: a coarse candidate fetch plus the atomic sent-flag operations.
type BlockStore interface {
	FindReminderCandidates(ctx context.Context, dueBefore time.Time, limit int) ([]qbentity.QuietBlock, error)
	ClaimReminder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	ReleaseReminder(ctx context.Context, id uuid.UUID) error
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userentity.User, error)
}

type AttemptStore interface {
	Record(ctx context.Context, attempt *entity.DeliveryAttempt) error
	CountByBlock(ctx context.Context, blockID uuid.UUID) (int, error)
}

// PushSender creates in-app notifications; the notification service
// implements it.
type PushSender interface {
	Create(ctx context.Context, req *notifdto.CreateNotificationRequest) error
}

// ReminderService decides which blocks need a reminder on each trigger
// tick and dispatches each exactly once.
type ReminderService struct {
	blocks       BlockStore
	users        UserStore
	attempts     AttemptStore
	notifier     Notifier
	push         PushSender
	lookahead    time.Duration
	tolerance    time.Duration
	dashboardURL string
	now          func() time.Time
}

type ReminderServiceInterface interface {
	CheckDue(ctx context.Context) (*dto.CheckSummary, *errors.AppError)
}

func NewReminderService(
	blocks BlockStore,
	users UserStore,
	attempts AttemptStore,
	notifier Notifier,
	push PushSender,
	lookahead, tolerance time.Duration,
	dashboardURL string,
) *ReminderService {
	if lookahead <= 0 {
		lookahead = constants.DefaultReminderLookahead
	}
	if tolerance <= 0 {
		tolerance = constants.DefaultReminderTolerance
	}
	return &ReminderService{
		blocks:       blocks,
		users:        users,
		attempts:     attempts,
		notifier:     notifier,
		push:         push,
		lookahead:    lookahead,
		tolerance:    tolerance,
		dashboardURL: dashboardURL,
		now:          time.Now,
	}
}

// CheckDue runs one reminder check. The candidate fetch is a coarse
// window; the precise due test is done here so the decision is
// reproducible for a fixed now. Per-block failures are counted and
// logged, never raised; only a failed candidate fetch aborts the run.
//
// A block is claimed (reminder_sent flipped true under an atomic
// conditional write) before its email goes out, so overlapping trigger
// ticks can never both dispatch the same block. A failed dispatch
// releases the claim and the block is retried on the next tick.
func (s *ReminderService) CheckDue(ctx context.Context) (*dto.CheckSummary, *errors.AppError) {
	now := s.now().UTC()

	candidates, err := s.blocks.FindReminderCandidates(ctx, now.Add(s.lookahead), constants.ReminderCandidateLimit)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrStorageUnavailable, "failed to fetch reminder candidates", err)
	}

	summary := &dto.CheckSummary{}
	for i := range candidates {
		block := &candidates[i]
		summary.Checked++

		reminderAt := block.ReminderTime()
		if now.Before(reminderAt) {
			continue
		}
		if now.After(reminderAt.Add(s.tolerance)) {
			// Outside the due window: the trigger missed too many
			// ticks. Leave it pending and let the status sweep
			// retire the block once it starts.
			summary.Skipped++
			logger.Warn("ReminderService:CheckDue:MissedWindow",
				"block_id", block.ID, "reminder_at", reminderAt, "now", now)
			continue
		}

		summary.Due++
		s.dispatch(ctx, now, block, summary)
	}

	logger.Info("ReminderService:CheckDue:Done",
		"checked", summary.Checked, "due", summary.Due,
		"sent", summary.Sent, "failed", summary.Failed, "skipped", summary.Skipped)
	return summary, nil
}

func (s *ReminderService) dispatch(ctx context.Context, now time.Time, block *qbentity.QuietBlock, summary *dto.CheckSummary) {
	user, err := s.users.GetByID(ctx, block.UserID)
	if err != nil || user == nil {
		summary.Failed++
		logger.Error("ReminderService:Dispatch:LoadUser:Error:",
			"block_id", block.ID, "user_id", block.UserID, "error", err)
		return
	}

	recipient := user.RecipientEmail()
	if !utils.IsValidEmail(recipient) {
		summary.Failed++
		s.recordAttempt(ctx, block.ID, recipient, entity.AttemptStatusFailed, "no valid recipient email")
		logger.Error("ReminderService:Dispatch:NoRecipient", "block_id", block.ID, "user_id", user.ID)
		return
	}

	claimed, err := s.blocks.ClaimReminder(ctx, block.ID, now)
	if err != nil {
		summary.Failed++
		logger.Error("ReminderService:Dispatch:Claim:Error:", "block_id", block.ID, "error", err)
		return
	}
	if !claimed {
		// Another invocation got there first.
		summary.Skipped++
		return
	}

	email := ReminderEmail{
		RecipientEmail:    recipient,
		RecipientName:     user.Name,
		BlockTitle:        block.Title,
		StartTime:         block.StartTime,
		EndTime:           block.EndTime,
		DisplayTimezone:   user.DisplayTimezone,
		DurationMinutes:   block.DurationMinutes(),
		MinutesUntilStart: int(block.StartTime.Sub(now) / time.Minute),
		DashboardURL:      s.dashboardURL,
	}

	if err := s.notifier.Send(ctx, email); err != nil {
		summary.Failed++
		s.recordAttempt(ctx, block.ID, recipient, entity.AttemptStatusFailed, err.Error())
		// Return the block to pending so the next tick retries it.
		if relErr := s.blocks.ReleaseReminder(ctx, block.ID); relErr != nil {
			logger.Error("ReminderService:Dispatch:Release:Error:", "block_id", block.ID, "error", relErr)
		}
		logger.Error("ReminderService:Dispatch:Send:Error:", "block_id", block.ID, "error", err)
		return
	}

	summary.Sent++
	s.recordAttempt(ctx, block.ID, recipient, entity.AttemptStatusSent, "")

	if block.Reminder.PushEnabled && s.push != nil {
		s.sendPush(ctx, user, block, email.MinutesUntilStart)
	}
}

func (s *ReminderService) recordAttempt(ctx context.Context, blockID uuid.UUID, recipient string, status entity.AttemptStatus, errMsg string) {
	prior, err := s.attempts.CountByBlock(ctx, blockID)
	if err != nil {
		logger.Error("ReminderService:RecordAttempt:Count:Error:", "block_id", blockID, "error", err)
		prior = 0
	}

	attempt := &entity.DeliveryAttempt{
		ID:        utils.GenerateID(),
		BlockID:   blockID,
		AttemptNo: prior + 1,
		Recipient: recipient,
		Status:    status,
	}
	if errMsg != "" {
		attempt.ErrorMessage = &errMsg
	}
	if err := s.attempts.Record(ctx, attempt); err != nil {
		logger.Error("ReminderService:RecordAttempt:Error:", "block_id", blockID, "error", err)
	}
}

func (s *ReminderService) sendPush(ctx context.Context, user *userentity.User, block *qbentity.QuietBlock, minutesUntil int) {
	req := &notifdto.CreateNotificationRequest{
		UserID:  user.ID,
		Title:   "Quiet block starting soon",
		Message: block.Title,
		Type:    notifentity.TypeReminder,
		Data: map[string]interface{}{
			"block_id":            block.ID.String(),
			"start_time":          block.StartTime,
			"minutes_until_start": minutesUntil,
		},
	}
	if err := s.push.Create(ctx, req); err != nil {
		logger.Error("ReminderService:SendPush:Error:", "block_id", block.ID, "error", err)
	}
}
