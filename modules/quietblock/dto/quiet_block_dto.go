package dto

import (
	"time"

	"quietblock-api/modules/quietblock/entity"

	"github.com/google/uuid"
)

type ReminderConfigDTO struct {
	Enabled       bool `json:"enabled"`
	MinutesBefore int  `json:"minutes_before"`
	EmailEnabled  bool `json:"email_enabled"`
	PushEnabled   bool `json:"push_enabled"`
}

type CreateBlockRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Reminder    *ReminderConfigDTO `json:"reminder,omitempty"`
}

// UpdateBlockRequest is a partial update: nil fields are left untouched.
type UpdateBlockRequest struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	StartTime   *time.Time         `json:"start_time,omitempty"`
	EndTime     *time.Time         `json:"end_time,omitempty"`
	Reminder    *ReminderConfigDTO `json:"reminder,omitempty"`
}

type BlockResponse struct {
	ID                  uuid.UUID          `json:"id"`
	Title               string             `json:"title"`
	Description         string             `json:"description,omitempty"`
	StartTime           time.Time          `json:"start_time"`
	EndTime             time.Time          `json:"end_time"`
	DurationMinutes     int                `json:"duration_minutes"`
	Status              entity.BlockStatus `json:"status"`
	Reminder            ReminderConfigDTO  `json:"reminder"`
	ReminderScheduledAt *time.Time         `json:"reminder_scheduled_at,omitempty"`
	ReminderSent        bool               `json:"reminder_sent"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// ConflictBlock is the summary surfaced on SCHEDULE_CONFLICT responses.
type ConflictBlock struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type PaginatedBlocksResponse struct {
	Items      []BlockResponse `json:"items"`
	TotalItems int             `json:"total_items"`
	PageNumber int             `json:"page_number"`
	PageSize   int             `json:"page_size"`
}

func ToBlockResponse(b *entity.QuietBlock) *BlockResponse {
	resp := &BlockResponse{
		ID:                  b.ID,
		Title:               b.Title,
		StartTime:           b.StartTime,
		EndTime:             b.EndTime,
		DurationMinutes:     b.DurationMinutes(),
		Status:              b.Status,
		Reminder:            ReminderConfigDTO(b.Reminder),
		ReminderScheduledAt: b.ReminderScheduledAt,
		ReminderSent:        b.ReminderSent,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
	if b.Description != nil {
		resp.Description = *b.Description
	}
	return resp
}

func ToConflictBlocks(blocks []entity.QuietBlock) []ConflictBlock {
	out := make([]ConflictBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, ConflictBlock{
			ID:        b.ID,
			Title:     b.Title,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		})
	}
	return out
}
