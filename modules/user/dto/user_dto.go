package dto

import (
	"time"

	"quietblock-api/modules/user/entity"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	NotificationEmail string    `json:"notification_email,omitempty"`
	DisplayTimezone   string    `json:"display_timezone"`
	CreatedAt         time.Time `json:"created_at"`
}

// UpdateSettingsRequest is a partial update: nil fields stay unchanged.
type UpdateSettingsRequest struct {
	NotificationEmail *string `json:"notification_email,omitempty"`
	DisplayTimezone   *string `json:"display_timezone,omitempty"`
}

func ToUserResponse(u *entity.User) *UserResponse {
	resp := &UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		DisplayTimezone: u.DisplayTimezone,
		CreatedAt:       u.CreatedAt,
	}
	if u.NotificationEmail != nil {
		resp.NotificationEmail = *u.NotificationEmail
	}
	return resp
}
