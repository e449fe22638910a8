package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration links a user to an event, unique per (user, event).
type Registration struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	EventID   uuid.UUID `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailLog records a registration-confirmation email attempt.
type EmailLog struct {
	ID             uuid.UUID `json:"id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	Recipient      string    `json:"recipient"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status"` // sent | skipped | failed
	CreatedAt      time.Time `json:"created_at"`
}
