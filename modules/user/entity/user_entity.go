package entity

import (
	"quietblock-api/core/entity"
)

type User struct {
	Name              string  `db:"name" json:"name"`
	Email             string  `db:"email" json:"email"`
	PasswordHash      string  `db:"password_hash" json:"-"`
	NotificationEmail *string `db:"notification_email" json:"notification_email,omitempty"`
	DisplayTimezone   string  `db:"display_timezone" json:"display_timezone"`
	entity.BaseEntity
}

// RecipientEmail resolves where reminders go: the configured
// notification email when present, the account email otherwise.
func (u *User) RecipientEmail() string {
	if u.NotificationEmail != nil && *u.NotificationEmail != "" {
		return *u.NotificationEmail
	}
	return u.Email
}
