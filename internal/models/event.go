package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a club-owned happening students can register for. OrganizerName
// is a denormalized copy of the owning club's name, refreshed on every write.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	ClubID        uuid.UUID `json:"club_id"`
	OrganizerName string    `json:"organizer_name"`
	ImageURL      string    `json:"image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
