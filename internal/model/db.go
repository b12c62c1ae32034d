package model

import (
	"time"

	"gorm.io/datatypes"
)

// Moment is a capacity-limited, time-boxed social event. Read-mostly here:
// the payment subsystem only flips the OverCapacity flag.
type Moment struct {
	ID                    string `gorm:"primaryKey;size:64;not null"`
	Title                 string `gorm:"size:255;not null"`
	HostID                string `gorm:"size:64;index;not null"`
	BasePriceCents        int64  `gorm:"not null"`
	Currency              string `gorm:"size:8;not null"`
	MaxParticipants       int    `gorm:"not null"` // 0 = unbounded
	PlatformFeePercentage int    `gorm:"not null"` // 0..100
	PaymentRequired       bool   `gorm:"not null"`
	OverCapacity          bool   `gorm:"not null;default:false"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

const (
	SessionStatusPending   = "pending"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
	SessionStatusExpired   = "expired"
)

// PaymentSession tracks one checkout attempt for one (moment, user) pair,
// keyed by the gateway's session id. Metadata carries the context handed to
// the gateway at session creation; confirmation trusts only this row.
type PaymentSession struct {
	GatewaySessionID  string `gorm:"primaryKey;size:128;not null"`
	UserID            string `gorm:"size:64;index;not null"`
	MomentID          string `gorm:"size:64;index;not null"`
	AmountCents       int64  `gorm:"not null"`
	Currency          string `gorm:"size:8;not null"`
	PlatformFeeCents  int64  `gorm:"not null"`
	OrganizerFeeCents int64  `gorm:"not null"`
	Status            string `gorm:"size:16;index;not null"` // pending, completed, failed, expired
	Metadata          datatypes.JSONMap
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const (
	ParticipantStatusConfirmed = "confirmed"
	ParticipantPaymentPaid     = "paid"
)

// MomentParticipant is the durable proof of a confirmed paid registration.
// The composite primary key enforces at most one row per (moment, user) at
// the database level, which is what makes confirmation at-most-once.
type MomentParticipant struct {
	MomentID          string `gorm:"primaryKey;size:64;not null"`
	UserID            string `gorm:"primaryKey;size:64;not null"`
	Status            string `gorm:"size:16;not null"`
	PaymentStatus     string `gorm:"size:16;not null"`
	GatewayPaymentID  string `gorm:"size:128"`
	GatewaySessionID  string `gorm:"size:128;index"`
	AmountPaidCents   int64  `gorm:"not null"`
	PlatformFeeCents  int64  `gorm:"not null"`
	OrganizerFeeCents int64  `gorm:"not null"`
	Currency          string `gorm:"size:8;not null"`
	CreatedAt         time.Time
}

// WebhookEvent records gateway event ids already processed so redelivered
// events short-circuit to a no-op.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
