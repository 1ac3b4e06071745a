package service

import (
	"context"
	"testing"
	"time"

	coreEntity "quietblock-api/core/entity"
	"quietblock-api/core/errors"
	"quietblock-api/core/params"
	"quietblock-api/modules/quietblock/dto"
	"quietblock-api/modules/quietblock/entity"
	"quietblock-api/modules/quietblock/repository"
	userentity "quietblock-api/modules/user/entity"

	"github.com/google/uuid"
)

type fakeBlockRepo struct {
	blocks map[uuid.UUID]*entity.QuietBlock
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{blocks: make(map[uuid.UUID]*entity.QuietBlock)}
}

func (f *fakeBlockRepo) Create(_ context.Context, block *entity.QuietBlock) (*entity.QuietBlock, error) {
	stored := *block
	stored.ID = uuid.New()
	f.blocks[stored.ID] = &stored
	copy := stored
	return &copy, nil
}

func (f *fakeBlockRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.QuietBlock, error) {
	b, ok := f.blocks[id]
	if !ok {
		return nil, nil
	}
	copy := *b
	return &copy, nil
}

func (f *fakeBlockRepo) GetByUserID(_ context.Context, userID uuid.UUID, p params.QueryParams, _ repository.ListFilter) (*entity.PaginatedQuietBlockEntity, error) {
	var items []entity.QuietBlock
	for _, b := range f.blocks {
		if b.UserID == userID && !b.IsDeleted {
			items = append(items, *b)
		}
	}
	return &entity.PaginatedQuietBlockEntity{
		Items:      items,
		TotalItems: len(items),
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

func (f *fakeBlockRepo) GetActiveInRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]entity.QuietBlock, error) {
	var out []entity.QuietBlock
	for _, b := range f.blocks {
		if b.UserID != userID || b.IsDeleted || !b.Status.ConflictRelevant() {
			continue
		}
		if b.StartTime.Before(to) && b.EndTime.After(from) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBlockRepo) Update(_ context.Context, block *entity.QuietBlock) error {
	stored := *block
	f.blocks[block.ID] = &stored
	return nil
}

func (f *fakeBlockRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if b, ok := f.blocks[id]; ok {
		b.IsDeleted = true
		b.Status = entity.BlockStatusCancelled
	}
	return nil
}

func (f *fakeBlockRepo) FindReminderCandidates(_ context.Context, dueBefore time.Time, limit int) ([]entity.QuietBlock, error) {
	var out []entity.QuietBlock
	for _, b := range f.blocks {
		if b.Status != entity.BlockStatusScheduled || b.IsDeleted || b.ReminderSent {
			continue
		}
		if !b.Reminder.Enabled || !b.Reminder.EmailEnabled {
			continue
		}
		if b.ReminderScheduledAt != nil && !b.ReminderScheduledAt.After(dueBefore) {
			out = append(out, *b)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeBlockRepo) ClaimReminder(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	b, ok := f.blocks[id]
	if !ok || b.ReminderSent {
		return false, nil
	}
	b.ReminderSent = true
	sentAt := at
	b.ReminderSentAt = &sentAt
	return true, nil
}

func (f *fakeBlockRepo) ReleaseReminder(_ context.Context, id uuid.UUID) error {
	if b, ok := f.blocks[id]; ok {
		b.ReminderSent = false
		b.ReminderSentAt = nil
	}
	return nil
}

func (f *fakeBlockRepo) SweepActivate(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range f.blocks {
		if b.Status == entity.BlockStatusScheduled && !b.IsDeleted &&
			!b.StartTime.After(now) && b.EndTime.After(now) {
			b.Status = entity.BlockStatusActive
			n++
		}
	}
	return n, nil
}

func (f *fakeBlockRepo) SweepComplete(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range f.blocks {
		if b.Status.ConflictRelevant() && !b.IsDeleted && !b.EndTime.After(now) {
			b.Status = entity.BlockStatusCompleted
			n++
		}
	}
	return n, nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*userentity.User
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*userentity.User, error) {
	return f.users[id], nil
}

type fakeCache struct {
	locked map[uuid.UUID]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{locked: make(map[uuid.UUID]bool)}
}

func (f *fakeCache) BlacklistToken(context.Context, string, time.Duration) error { return nil }
func (f *fakeCache) IsTokenBlacklisted(context.Context, string) (bool, error)   { return false, nil }

func (f *fakeCache) AcquireOwnerLock(_ context.Context, ownerID uuid.UUID) (bool, error) {
	if f.locked[ownerID] {
		return false, nil
	}
	f.locked[ownerID] = true
	return true, nil
}

func (f *fakeCache) ReleaseOwnerLock(_ context.Context, ownerID uuid.UUID) error {
	delete(f.locked, ownerID)
	return nil
}

func (f *fakeCache) Close() error { return nil }

type serviceFixture struct {
	svc    *QuietBlockService
	repo   *fakeBlockRepo
	cache  *fakeCache
	userID uuid.UUID
	now    time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	repo := newFakeBlockRepo()
	cache := newFakeCache()
	users := &fakeUserStore{users: map[uuid.UUID]*userentity.User{
		userID: {
			BaseEntity:      coreEntity.BaseEntity{ID: userID},
			Name:            "Asha",
			Email:           "asha@example.com",
			DisplayTimezone: "UTC",
		},
	}}

	return &serviceFixture{
		svc: &QuietBlockService{
			repo:  repo,
			users: users,
			cache: cache,
			now:   func() time.Time { return now },
		},
		repo:   repo,
		cache:  cache,
		userID: userID,
		now:    now,
	}
}

func (fx *serviceFixture) seedBlock(start, end time.Time, status entity.BlockStatus) *entity.QuietBlock {
	block := &entity.QuietBlock{
		BaseEntity: coreEntity.BaseEntity{ID: uuid.New()},
		UserID:     fx.userID,
		Title:      "seeded",
		StartTime:  start,
		EndTime:    end,
		Status:     status,
		Reminder:   entity.DefaultReminderConfig(),
	}
	at := block.StartTime.Add(-15 * time.Minute)
	block.ReminderScheduledAt = &at
	fx.repo.blocks[block.ID] = block
	return block
}

func TestCreateBlock(t *testing.T) {
	fx := newServiceFixture(t)

	req := &dto.CreateBlockRequest{
		Title:     "deep work",
		StartTime: fx.now.Add(2 * time.Hour),
		EndTime:   fx.now.Add(3 * time.Hour),
	}

	resp, appErr := fx.svc.Create(context.Background(), fx.userID, req)
	if appErr != nil {
		t.Fatalf("Create() error = %v", appErr)
	}
	if resp.Status != entity.BlockStatusScheduled {
		t.Errorf("status = %s, want scheduled", resp.Status)
	}
	wantReminderAt := req.StartTime.Add(-15 * time.Minute)
	if resp.ReminderScheduledAt == nil || !resp.ReminderScheduledAt.Equal(wantReminderAt) {
		t.Errorf("reminder_scheduled_at = %v, want %v", resp.ReminderScheduledAt, wantReminderAt)
	}
	if len(fx.cache.locked) != 0 {
		t.Error("owner lock was not released")
	}
}

func TestCreateBlockConflictListsAllOverlaps(t *testing.T) {
	fx := newServiceFixture(t)

	first := fx.seedBlock(fx.now.Add(time.Hour), fx.now.Add(2*time.Hour), entity.BlockStatusScheduled)
	second := fx.seedBlock(fx.now.Add(150*time.Minute), fx.now.Add(3*time.Hour), entity.BlockStatusActive)

	req := &dto.CreateBlockRequest{
		Title:     "spans both",
		StartTime: fx.now.Add(90 * time.Minute),
		EndTime:   fx.now.Add(160 * time.Minute),
	}

	_, appErr := fx.svc.Create(context.Background(), fx.userID, req)
	if appErr == nil || appErr.Code != errors.ErrScheduleConflict {
		t.Fatalf("Create() = %v, want %s", appErr, errors.ErrScheduleConflict)
	}

	conflicts, ok := appErr.Details.([]dto.ConflictBlock)
	if !ok {
		t.Fatalf("Details type = %T, want []dto.ConflictBlock", appErr.Details)
	}
	if len(conflicts) != 2 {
		t.Fatalf("got %d conflicts, want 2", len(conflicts))
	}
	if conflicts[0].ID != first.ID || conflicts[1].ID != second.ID {
		t.Error("conflicts not sorted by start time")
	}
}

func TestCreateBlockValidation(t *testing.T) {
	fx := newServiceFixture(t)

	tests := []struct {
		name     string
		req      *dto.CreateBlockRequest
		wantCode errors.ErrorCode
	}{
		{
			"missing title",
			&dto.CreateBlockRequest{StartTime: fx.now.Add(time.Hour), EndTime: fx.now.Add(2 * time.Hour)},
			errors.ErrInvalidRequestData,
		},
		{
			"too short",
			&dto.CreateBlockRequest{Title: "t", StartTime: fx.now.Add(time.Hour), EndTime: fx.now.Add(time.Hour + 10*time.Minute)},
			errors.ErrTooShort,
		},
		{
			"crosses midnight",
			&dto.CreateBlockRequest{
				Title:     "t",
				StartTime: time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC),
				EndTime:   time.Date(2025, 6, 11, 0, 30, 0, 0, time.UTC),
			},
			errors.ErrCrossesMidnight,
		},
		{
			"bad reminder offset",
			&dto.CreateBlockRequest{
				Title:     "t",
				StartTime: fx.now.Add(time.Hour),
				EndTime:   fx.now.Add(2 * time.Hour),
				Reminder:  &dto.ReminderConfigDTO{Enabled: true, MinutesBefore: 0, EmailEnabled: true},
			},
			errors.ErrInvalidRequestData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, appErr := fx.svc.Create(context.Background(), fx.userID, tt.req)
			if appErr == nil || appErr.Code != tt.wantCode {
				t.Errorf("Create() = %v, want %s", appErr, tt.wantCode)
			}
		})
	}
}

func TestCreateBlockWhileLockHeld(t *testing.T) {
	fx := newServiceFixture(t)
	fx.cache.locked[fx.userID] = true

	req := &dto.CreateBlockRequest{
		Title:     "deep work",
		StartTime: fx.now.Add(time.Hour),
		EndTime:   fx.now.Add(2 * time.Hour),
	}

	_, appErr := fx.svc.Create(context.Background(), fx.userID, req)
	if appErr == nil || appErr.Code != errors.ErrConcurrentUpdate {
		t.Fatalf("Create() = %v, want %s", appErr, errors.ErrConcurrentUpdate)
	}
}

func TestUpdateBlockReArmsReminder(t *testing.T) {
	fx := newServiceFixture(t)

	block := fx.seedBlock(fx.now.Add(time.Hour), fx.now.Add(2*time.Hour), entity.BlockStatusScheduled)
	block.ReminderSent = true
	sentAt := fx.now
	block.ReminderSentAt = &sentAt

	newStart := fx.now.Add(3 * time.Hour)
	newEnd := fx.now.Add(4 * time.Hour)
	resp, appErr := fx.svc.Update(context.Background(), fx.userID, block.ID, &dto.UpdateBlockRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	if appErr != nil {
		t.Fatalf("Update() error = %v", appErr)
	}

	if resp.ReminderSent {
		t.Error("moving the block should reset reminder_sent")
	}
	wantReminderAt := newStart.Add(-15 * time.Minute)
	if resp.ReminderScheduledAt == nil || !resp.ReminderScheduledAt.Equal(wantReminderAt) {
		t.Errorf("reminder_scheduled_at = %v, want %v", resp.ReminderScheduledAt, wantReminderAt)
	}
}

func TestUpdateBlockConflictExcludesSelf(t *testing.T) {
	fx := newServiceFixture(t)
	block := fx.seedBlock(fx.now.Add(time.Hour), fx.now.Add(2*time.Hour), entity.BlockStatusScheduled)

	// shift by 30 minutes, still overlapping its own old window
	newStart := fx.now.Add(90 * time.Minute)
	newEnd := fx.now.Add(150 * time.Minute)
	_, appErr := fx.svc.Update(context.Background(), fx.userID, block.ID, &dto.UpdateBlockRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	if appErr != nil {
		t.Fatalf("Update() error = %v", appErr)
	}
}

func TestUpdateBlockRejectsNonScheduled(t *testing.T) {
	fx := newServiceFixture(t)
	block := fx.seedBlock(fx.now.Add(-time.Hour), fx.now.Add(time.Hour), entity.BlockStatusActive)

	title := "renamed"
	_, appErr := fx.svc.Update(context.Background(), fx.userID, block.ID, &dto.UpdateBlockRequest{Title: &title})
	if appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Fatalf("Update() = %v, want %s", appErr, errors.ErrInvalidInput)
	}
}

func TestBlockOwnership(t *testing.T) {
	fx := newServiceFixture(t)
	block := fx.seedBlock(fx.now.Add(time.Hour), fx.now.Add(2*time.Hour), entity.BlockStatusScheduled)

	stranger := uuid.New()
	_, appErr := fx.svc.GetByID(context.Background(), stranger, block.ID)
	if appErr == nil || appErr.Code != errors.ErrForbidden {
		t.Fatalf("GetByID() = %v, want %s", appErr, errors.ErrForbidden)
	}

	_, appErr = fx.svc.GetByID(context.Background(), fx.userID, uuid.New())
	if appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("GetByID() = %v, want %s", appErr, errors.ErrNotFound)
	}
}

func TestDeleteBlockHidesIt(t *testing.T) {
	fx := newServiceFixture(t)
	block := fx.seedBlock(fx.now.Add(time.Hour), fx.now.Add(2*time.Hour), entity.BlockStatusScheduled)

	if appErr := fx.svc.Delete(context.Background(), fx.userID, block.ID); appErr != nil {
		t.Fatalf("Delete() error = %v", appErr)
	}
	_, appErr := fx.svc.GetByID(context.Background(), fx.userID, block.ID)
	if appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("GetByID() after delete = %v, want %s", appErr, errors.ErrNotFound)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	fx := newServiceFixture(t)

	scheduled := fx.seedBlock(fx.now.Add(time.Hour), fx.now.Add(2*time.Hour), entity.BlockStatusScheduled)
	if _, appErr := fx.svc.Complete(context.Background(), fx.userID, scheduled.ID); appErr == nil {
		t.Error("completing a scheduled block should fail")
	}

	active := fx.seedBlock(fx.now.Add(-time.Hour), fx.now.Add(time.Hour), entity.BlockStatusActive)
	resp, appErr := fx.svc.Complete(context.Background(), fx.userID, active.ID)
	if appErr != nil {
		t.Fatalf("Complete() error = %v", appErr)
	}
	if resp.Status != entity.BlockStatusCompleted {
		t.Errorf("status = %s, want completed", resp.Status)
	}

	if _, appErr := fx.svc.Cancel(context.Background(), fx.userID, active.ID); appErr == nil {
		t.Error("cancelling a completed block should fail")
	}
}

func TestSweepStatuses(t *testing.T) {
	fx := newServiceFixture(t)

	expired := fx.seedBlock(fx.now.Add(-3*time.Hour), fx.now.Add(-2*time.Hour), entity.BlockStatusScheduled)
	running := fx.seedBlock(fx.now.Add(-30*time.Minute), fx.now.Add(30*time.Minute), entity.BlockStatusScheduled)
	future := fx.seedBlock(fx.now.Add(time.Hour), fx.now.Add(2*time.Hour), entity.BlockStatusScheduled)

	if appErr := fx.svc.SweepStatuses(context.Background()); appErr != nil {
		t.Fatalf("SweepStatuses() error = %v", appErr)
	}

	if got := fx.repo.blocks[expired.ID].Status; got != entity.BlockStatusCompleted {
		t.Errorf("expired block status = %s, want completed", got)
	}
	if got := fx.repo.blocks[running.ID].Status; got != entity.BlockStatusActive {
		t.Errorf("running block status = %s, want active", got)
	}
	if got := fx.repo.blocks[future.ID].Status; got != entity.BlockStatusScheduled {
		t.Errorf("future block status = %s, want scheduled", got)
	}
}
