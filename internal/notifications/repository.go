package notifications

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-hub/backend/internal/models"
)

// Repository persists the email audit log.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notifications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Log inserts an email_logs row recording a confirmation attempt.
func (r *Repository) Log(ctx context.Context, entry *models.EmailLog) error {
	const q = `INSERT INTO email_logs (registration_id, recipient, subject, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, entry.RegistrationID, entry.Recipient, entry.Subject, entry.Status).
		Scan(&entry.ID, &entry.CreatedAt)
}
