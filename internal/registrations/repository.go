package registrations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/detske-trhy/backend/internal/models"
)

const registrationColumns = `id, parent_name, parent_email, parent_phone, parent_address, city,
	child_name, child_age, stall_name, products, consent_given, presentation_url,
	status, theme_approved_at, video_approved_at, emails_sent, upload_token, created_at`

// Repository persists registrations in PostgreSQL. It implements Store; the
// transition methods are conditional updates so the state machine precondition
// and the write are a single atomic statement.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a registration and fills in the generated ID and created_at.
func (r *Repository) Create(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO registrations
		(id, parent_name, parent_email, parent_phone, parent_address, city,
		 child_name, child_age, stall_name, products, consent_given, presentation_url,
		 status, emails_sent, upload_token)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q,
		reg.ParentName, reg.ParentEmail, reg.ParentPhone, reg.ParentAddress, reg.City,
		reg.ChildName, reg.ChildAge, reg.StallName, reg.Products, reg.ConsentGiven,
		reg.PresentationURL, reg.Status, reg.EmailsSent, reg.UploadToken,
	).Scan(&reg.ID, &reg.CreatedAt)
}

// GetByID returns a registration by ID, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)
	return scanRegistration(row)
}

// GetByToken returns a registration by its upload token, or nil.
func (r *Repository) GetByToken(ctx context.Context, token string) (*models.Registration, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE upload_token = $1`, token)
	return scanRegistration(row)
}

// List returns all registrations, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Registration, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+registrationColumns+` FROM registrations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		reg, err := scanRegistrationRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *reg)
	}
	return list, rows.Err()
}

// Delete removes a registration. Returns false when the ID did not resolve.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ApproveTheme moves pending -> theme_approved. Returns nil when the row is
// missing or not pending.
func (r *Repository) ApproveTheme(ctx context.Context, id uuid.UUID, now time.Time) (*models.Registration, error) {
	const q = `UPDATE registrations
		SET status = 'theme_approved',
		    theme_approved_at = $2,
		    emails_sent = array_append(emails_sent, 'theme_approved')
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + registrationColumns
	row := r.pool.QueryRow(ctx, q, id, now)
	return scanRegistration(row)
}

// ApproveVideo moves theme_approved -> video_approved.
func (r *Repository) ApproveVideo(ctx context.Context, id uuid.UUID, now time.Time) (*models.Registration, error) {
	const q = `UPDATE registrations
		SET status = 'video_approved',
		    video_approved_at = $2,
		    emails_sent = array_append(emails_sent, 'video_approved')
		WHERE id = $1 AND status = 'theme_approved'
		RETURNING ` + registrationColumns
	row := r.pool.QueryRow(ctx, q, id, now)
	return scanRegistration(row)
}

// ApproveAll moves pending -> video_approved in one step. Only fires when a
// presentation was already attached at intake; both timestamps get the same
// instant and only the video_approved marker is appended.
func (r *Repository) ApproveAll(ctx context.Context, id uuid.UUID, now time.Time) (*models.Registration, error) {
	const q = `UPDATE registrations
		SET status = 'video_approved',
		    theme_approved_at = $2,
		    video_approved_at = $2,
		    emails_sent = array_append(emails_sent, 'video_approved')
		WHERE id = $1 AND status = 'pending' AND presentation_url IS NOT NULL
		RETURNING ` + registrationColumns
	row := r.pool.QueryRow(ctx, q, id, now)
	return scanRegistration(row)
}

// SetPresentationURL redeems an upload token. The null check is part of the
// update, so at most one redemption wins under concurrency.
func (r *Repository) SetPresentationURL(ctx context.Context, token, url string) (*models.Registration, error) {
	const q = `UPDATE registrations
		SET presentation_url = $2
		WHERE upload_token = $1 AND presentation_url IS NULL
		RETURNING ` + registrationColumns
	row := r.pool.QueryRow(ctx, q, token, url)
	return scanRegistration(row)
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	reg, err := scanRegistrationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return reg, err
}

func scanRegistrationRow(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(
		&reg.ID, &reg.ParentName, &reg.ParentEmail, &reg.ParentPhone, &reg.ParentAddress, &reg.City,
		&reg.ChildName, &reg.ChildAge, &reg.StallName, &reg.Products, &reg.ConsentGiven, &reg.PresentationURL,
		&reg.Status, &reg.ThemeApprovedAt, &reg.VideoApprovedAt, &reg.EmailsSent, &reg.UploadToken, &reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
