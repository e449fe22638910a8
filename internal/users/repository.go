package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-hub/backend/internal/models"
)

const userColumns = `id, email, display_name, role, club_id, COALESCE(password_hash, ''), created_at, updated_at`

// Repository is the user directory store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.ClubID, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// FindByEmail returns the user with the email, or (nil, nil) when absent.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateStudent inserts a student user with no club for a first-seen
// identity. Concurrent creations for the same email are resolved by the
// unique constraint: the loser gets no row back and adopts the winner.
func (r *Repository) CreateStudent(ctx context.Context, email, displayName string) (*models.User, error) {
	const q = `INSERT INTO users (email, display_name, role)
		VALUES ($1, $2, 'student')
		ON CONFLICT (email) DO NOTHING
		RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, q, email, displayName))
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost a duplicate-creation race; the winner's record is authoritative.
		return r.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// List returns all users ordered by name then email.
func (r *Repository) List(ctx context.Context) ([]models.UserPublic, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, display_name, role, club_id, created_at
		FROM users ORDER BY display_name, email`)
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

// UpdateRoleAndClub changes a user's role in one statement that also clears
// the club assignment whenever the new role is not club_staff, so the
// role/club invariant holds after every role mutation.
func (r *Repository) UpdateRoleAndClub(ctx context.Context, id uuid.UUID, role models.Role, clubID *uuid.UUID) (*models.User, error) {
	const q = `UPDATE users
		SET role = $2,
		    club_id = CASE WHEN $2 = 'club_staff' THEN $3 ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, id, string(role), clubID))
}
