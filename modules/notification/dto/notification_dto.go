package dto

import (
	"github.com/google/uuid"
)

type CreateNotificationRequest struct {
	UserID  uuid.UUID              `json:"user_id"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Type    string                 `json:"type"`
	Data    map[string]interface{} `json:"data"`
}

type MarkAsReadRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required"`
}
