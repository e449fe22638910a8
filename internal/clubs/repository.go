package clubs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-hub/backend/internal/models"
)

// Repository handles club persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a clubs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a club.
func (r *Repository) Create(ctx context.Context, club *models.Club) error {
	const q = `INSERT INTO clubs (name, description, image_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, club.Name, club.Description, club.ImageURL).
		Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt)
}

// GetByID returns a club by ID, or (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	const q = `SELECT id, name, description, image_url, created_at, updated_at FROM clubs WHERE id = $1`
	var club models.Club
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&club.ID, &club.Name, &club.Description, &club.ImageURL, &club.CreatedAt, &club.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// List returns all clubs ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Club, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, image_url, created_at, updated_at
		FROM clubs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Club
	for rows.Next() {
		var club models.Club
		if err := rows.Scan(&club.ID, &club.Name, &club.Description, &club.ImageURL, &club.CreatedAt, &club.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, club)
	}
	return list, rows.Err()
}

// Update writes name, description, and image URL.
func (r *Repository) Update(ctx context.Context, club *models.Club) error {
	const q = `UPDATE clubs SET name = $2, description = $3, image_url = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, club.ID, club.Name, club.Description, club.ImageURL).
		Scan(&club.UpdatedAt)
}

// SetImageURL updates only the image URL.
func (r *Repository) SetImageURL(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.pool.Exec(ctx, `UPDATE clubs SET image_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

// Delete removes a club. Events cascade; staff assignments are detached by
// the users.club_id foreign key.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	return err
}
