package registrations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-hub/backend/internal/models"
)

// Repository handles registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Register inserts a registration for (user, event). Idempotent: a second
// call finds the existing row and reports created=false instead of
// creating a duplicate.
func (r *Repository) Register(ctx context.Context, userID, eventID uuid.UUID) (*models.Registration, bool, error) {
	const q = `INSERT INTO registrations (user_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING
		RETURNING id, user_id, event_id, created_at`
	var reg models.Registration
	err := r.pool.QueryRow(ctx, q, userID, eventID).
		Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := r.Get(ctx, userID, eventID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &reg, true, nil
}

// Unregister removes the (user, event) registration. Removing an absent
// registration is a no-op, not an error.
func (r *Repository) Unregister(ctx context.Context, userID, eventID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM registrations WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	return err
}

// Get returns the registration for (user, event), or (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, userID, eventID uuid.UUID) (*models.Registration, error) {
	const q = `SELECT id, user_id, event_id, created_at FROM registrations WHERE user_id = $1 AND event_id = $2`
	var reg models.Registration
	err := r.pool.QueryRow(ctx, q, userID, eventID).
		Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// ListForUser returns a user's registrations, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, event_id, created_at
		FROM registrations WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// ListUsersForEvent returns the registered users for an event.
func (r *Repository) ListUsersForEvent(ctx context.Context, eventID uuid.UUID) ([]models.UserPublic, error) {
	const q = `SELECT u.id, u.email, u.display_name, u.role, u.club_id, u.created_at
		FROM registrations reg
		INNER JOIN users u ON u.id = reg.user_id
		WHERE reg.event_id = $1
		ORDER BY u.display_name, u.email`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.ClubID, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
