package service

import (
	"context"
	"testing"
	"time"

	coreEntity "quietblock-api/core/entity"
	"quietblock-api/core/errors"
	"quietblock-api/modules/user/dto"
	"quietblock-api/modules/user/entity"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byID    map[uuid.UUID]*entity.User
	byEmail map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[uuid.UUID]*entity.User),
		byEmail: make(map[string]*entity.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) (*entity.User, error) {
	stored := *user
	stored.ID = uuid.New()
	f.byID[stored.ID] = &stored
	f.byEmail[stored.Email] = &stored
	copy := stored
	return &copy, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	copy := *u
	return &copy, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	copy := *u
	return &copy, nil
}

func (f *fakeUserRepo) UpdateSettings(_ context.Context, user *entity.User) error {
	stored := *user
	f.byID[user.ID] = &stored
	return nil
}

type noopCache struct {
	blacklisted map[string]time.Duration
}

func (c *noopCache) BlacklistToken(_ context.Context, token string, ttl time.Duration) error {
	if c.blacklisted == nil {
		c.blacklisted = make(map[string]time.Duration)
	}
	c.blacklisted[token] = ttl
	return nil
}
func (c *noopCache) IsTokenBlacklisted(context.Context, string) (bool, error)    { return false, nil }
func (c *noopCache) AcquireOwnerLock(context.Context, uuid.UUID) (bool, error)   { return true, nil }
func (c *noopCache) ReleaseOwnerLock(context.Context, uuid.UUID) error           { return nil }
func (c *noopCache) Close() error                                                { return nil }

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &noopCache{})

	resp, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Asha",
		Email:    "  Asha@Example.com ",
		Password: "correct-horse",
	})
	if appErr != nil {
		t.Fatalf("Register() error = %v", appErr)
	}
	if resp.Email != "asha@example.com" {
		t.Errorf("email = %s, want normalized asha@example.com", resp.Email)
	}
	if resp.DisplayTimezone != "Asia/Kolkata" {
		t.Errorf("display timezone = %s, want default Asia/Kolkata", resp.DisplayTimezone)
	}

	stored := repo.byEmail["asha@example.com"]
	if stored == nil {
		t.Fatal("user was not persisted")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")); err != nil {
		t.Error("stored hash does not match the password")
	}
}

func TestRegisterValidation(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &noopCache{})

	if _, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Asha", Email: "asha@example.com", Password: "ok-password",
	}); appErr != nil {
		t.Fatalf("seed Register() error = %v", appErr)
	}

	tests := []struct {
		name     string
		req      *dto.RegisterRequest
		wantCode errors.ErrorCode
	}{
		{"duplicate email", &dto.RegisterRequest{Name: "B", Email: "asha@example.com", Password: "ok-password"}, errors.ErrAlreadyExists},
		{"bad email", &dto.RegisterRequest{Name: "B", Email: "not-an-email", Password: "ok-password"}, errors.ErrInvalidRequestData},
		{"short password", &dto.RegisterRequest{Name: "B", Email: "b@example.com", Password: "short"}, errors.ErrInvalidRequestData},
		{"missing name", &dto.RegisterRequest{Email: "b@example.com", Password: "ok-password"}, errors.ErrInvalidRequestData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, appErr := svc.Register(context.Background(), tt.req)
			if appErr == nil || appErr.Code != tt.wantCode {
				t.Errorf("Register() = %v, want %s", appErr, tt.wantCode)
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &noopCache{})

	if _, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Asha", Email: "asha@example.com", Password: "ok-password",
	}); appErr != nil {
		t.Fatalf("Register() error = %v", appErr)
	}

	_, appErr := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "asha@example.com", Password: "wrong",
	})
	if appErr == nil || appErr.Code != errors.ErrUnauthorized {
		t.Fatalf("Login() = %v, want %s", appErr, errors.ErrUnauthorized)
	}

	_, appErr = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "wrong",
	})
	if appErr == nil || appErr.Code != errors.ErrUnauthorized {
		t.Fatalf("Login() unknown user = %v, want %s", appErr, errors.ErrUnauthorized)
	}
}

func TestLogoutBlacklistsToken(t *testing.T) {
	cache := &noopCache{}
	svc := NewUserService(newFakeUserRepo(), cache)

	expiresAt := time.Now().Add(time.Hour)
	if appErr := svc.Logout(context.Background(), "some-token", expiresAt); appErr != nil {
		t.Fatalf("Logout() error = %v", appErr)
	}
	if _, ok := cache.blacklisted["some-token"]; !ok {
		t.Fatal("token was not blacklisted")
	}
}

func TestUpdateSettings(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &noopCache{})

	userID := uuid.New()
	repo.byID[userID] = &entity.User{
		BaseEntity:      coreEntity.BaseEntity{ID: userID},
		Name:            "Asha",
		Email:           "asha@example.com",
		DisplayTimezone: "Asia/Kolkata",
	}

	alt := "Alerts@Example.com"
	tz := "UTC"
	resp, appErr := svc.UpdateSettings(context.Background(), userID, &dto.UpdateSettingsRequest{
		NotificationEmail: &alt,
		DisplayTimezone:   &tz,
	})
	if appErr != nil {
		t.Fatalf("UpdateSettings() error = %v", appErr)
	}
	if resp.NotificationEmail != "alerts@example.com" {
		t.Errorf("notification email = %s, want alerts@example.com", resp.NotificationEmail)
	}
	if resp.DisplayTimezone != "UTC" {
		t.Errorf("display timezone = %s, want UTC", resp.DisplayTimezone)
	}

	// clearing the override falls back to the account email
	empty := ""
	resp, appErr = svc.UpdateSettings(context.Background(), userID, &dto.UpdateSettingsRequest{
		NotificationEmail: &empty,
	})
	if appErr != nil {
		t.Fatalf("UpdateSettings() clear error = %v", appErr)
	}
	if resp.NotificationEmail != "" {
		t.Errorf("notification email = %s, want cleared", resp.NotificationEmail)
	}

	badTZ := "Not/AZone"
	if _, appErr := svc.UpdateSettings(context.Background(), userID, &dto.UpdateSettingsRequest{
		DisplayTimezone: &badTZ,
	}); appErr == nil || appErr.Code != errors.ErrInvalidRequestData {
		t.Errorf("UpdateSettings() bad timezone = %v, want %s", appErr, errors.ErrInvalidRequestData)
	}
}

func TestRecipientEmailFallback(t *testing.T) {
	u := &entity.User{Email: "asha@example.com"}
	if got := u.RecipientEmail(); got != "asha@example.com" {
		t.Errorf("RecipientEmail() = %s, want account email", got)
	}

	alt := "alerts@example.com"
	u.NotificationEmail = &alt
	if got := u.RecipientEmail(); got != alt {
		t.Errorf("RecipientEmail() = %s, want %s", got, alt)
	}
}
