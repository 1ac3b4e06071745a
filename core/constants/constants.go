package constants

import "time"

// Database pool settings
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Redis key prefixes
const (
	RedisKeyTokenBlacklist = "quietblock:token:blacklist:"
	RedisKeyOwnerLock      = "quietblock:owner:lock:"
)

// Quiet block duration bounds
const (
	MinBlockDuration = 15 * time.Minute
	MaxBlockDuration = 8 * time.Hour
)

// Reminder offset bounds (minutes before start)
const (
	MinReminderOffset = 1
	MaxReminderOffset = 1440
)

// Reminder scheduler defaults. Lookahead sizes the candidate fetch window,
// tolerance absorbs polling drift between trigger ticks.
const (
	DefaultReminderLookahead = 5 * time.Minute
	DefaultReminderTolerance = 5 * time.Minute
	ReminderCandidateLimit   = 500
)

// Background task types
const (
	TaskReminderCheck = "reminder:check"
	TaskBlockSweep    = "block:sweep"
)

// DefaultDisplayTimezone is the display timezone assigned to new accounts.
// Kept as IST to match the product's original audience; users can change it
// in their settings.
const DefaultDisplayTimezone = "Asia/Kolkata"

// OwnerLockTTL bounds how long a create/update request may hold the
// per-owner scheduling lock.
const OwnerLockTTL = 5 * time.Second
