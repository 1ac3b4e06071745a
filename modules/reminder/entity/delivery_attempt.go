package entity

import (
	"time"

	"github.com/google/uuid"
)

type AttemptStatus string

const (
	AttemptStatusSent   AttemptStatus = "sent"
	AttemptStatusFailed AttemptStatus = "failed"
)

// DeliveryAttempt records one reminder dispatch try, keyed by
// (block_id, attempt_no). Kept separate from the block so delivery
// auditing never touches lifecycle fields.
type DeliveryAttempt struct {
	ID           string        `db:"id" json:"id"`
	BlockID      uuid.UUID     `db:"block_id" json:"block_id"`
	AttemptNo    int           `db:"attempt_no" json:"attempt_no"`
	Recipient    string        `db:"recipient" json:"recipient"`
	Status       AttemptStatus `db:"status" json:"status"`
	ErrorMessage *string       `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}
