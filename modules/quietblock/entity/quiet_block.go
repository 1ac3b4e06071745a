package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"quietblock-api/core/entity"

	"github.com/google/uuid"
)

// BlockStatus is the lifecycle status of a quiet block.
type BlockStatus string

const (
	BlockStatusScheduled BlockStatus = "scheduled"
	BlockStatusActive    BlockStatus = "active"
	BlockStatusCompleted BlockStatus = "completed"
	BlockStatusCancelled BlockStatus = "cancelled"
)

// ConflictRelevant reports whether a block in this status can collide
// with a candidate interval. Completed and cancelled blocks never conflict.
func (s BlockStatus) ConflictRelevant() bool {
	return s == BlockStatusScheduled || s == BlockStatusActive
}

// ReminderConfig is the per-block reminder sub-record, stored as JSONB.
type ReminderConfig struct {
	Enabled       bool `json:"enabled"`
	MinutesBefore int  `json:"minutes_before"`
	EmailEnabled  bool `json:"email_enabled"`
	PushEnabled   bool `json:"push_enabled"`
}

func (r ReminderConfig) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *ReminderConfig) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, r)
}

// DefaultReminderConfig is applied when a create request omits the
// reminder sub-record.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		Enabled:       true,
		MinutesBefore: 15,
		EmailEnabled:  true,
		PushEnabled:   false,
	}
}

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// QuietBlock is a user-reserved private time interval.
type QuietBlock struct {
	UserID              uuid.UUID      `db:"user_id" json:"user_id"`
	Title               string         `db:"title" json:"title"`
	Description         *string        `db:"description" json:"description,omitempty"`
	StartTime           time.Time      `db:"start_time" json:"start_time"`
	EndTime             time.Time      `db:"end_time" json:"end_time"`
	Status              BlockStatus    `db:"status" json:"status"`
	Reminder            ReminderConfig `db:"reminder" json:"reminder"`
	ReminderScheduledAt *time.Time     `db:"reminder_scheduled_at" json:"reminder_scheduled_at,omitempty"`
	ReminderSent        bool           `db:"reminder_sent" json:"reminder_sent"`
	ReminderSentAt      *time.Time     `db:"reminder_sent_at" json:"reminder_sent_at,omitempty"`
	IsDeleted           bool           `db:"is_deleted" json:"-"`
	entity.BaseEntity
}

func (b *QuietBlock) Range() TimeRange {
	return TimeRange{Start: b.StartTime, End: b.EndTime}
}

func (b *QuietBlock) DurationMinutes() int {
	return int(b.EndTime.Sub(b.StartTime) / time.Minute)
}

// ReminderTime returns the instant the reminder becomes due. Falls back
// to computing from the config when the derived column is missing.
func (b *QuietBlock) ReminderTime() time.Time {
	if b.ReminderScheduledAt != nil {
		return *b.ReminderScheduledAt
	}
	return b.StartTime.Add(-time.Duration(b.Reminder.MinutesBefore) * time.Minute)
}

type PaginatedQuietBlockEntity = entity.Pagination[QuietBlock]
