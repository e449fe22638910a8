package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-hub/backend/internal/models"
)

const eventColumns = `id, name, description, date, location, club_id, organizer_name, image_url, created_at, updated_at`

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.Location, &e.ClubID,
		&e.OrganizerName, &e.ImageURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event, copying the owning club's name into
// organizer_name at write time.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (name, description, date, location, club_id, organizer_name, image_url)
		VALUES ($1, $2, $3, $4, $5, (SELECT name FROM clubs WHERE id = $5), $6)
		RETURNING id, organizer_name, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Name, e.Description, e.Date, e.Location, e.ClubID, e.ImageURL).
		Scan(&e.ID, &e.OrganizerName, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event by ID, or (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List returns events, optionally filtered to one club, soonest first.
func (r *Repository) List(ctx context.Context, clubID *uuid.UUID) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events ORDER BY date`
	args := []interface{}{}
	if clubID != nil {
		q = `SELECT ` + eventColumns + ` FROM events WHERE club_id = $1 ORDER BY date`
		args = append(args, *clubID)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// Update writes the mutable fields and refreshes organizer_name from the
// owning club.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events
		SET name = $2, description = $3, date = $4, location = $5, image_url = $6,
		    organizer_name = (SELECT name FROM clubs WHERE id = events.club_id),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING organizer_name, updated_at`
	return r.pool.QueryRow(ctx, q, e.ID, e.Name, e.Description, e.Date, e.Location, e.ImageURL).
		Scan(&e.OrganizerName, &e.UpdatedAt)
}

// SetImageURL updates only the image URL.
func (r *Repository) SetImageURL(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.pool.Exec(ctx, `UPDATE events SET image_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

// Delete removes an event. Registrations cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}
