package emaillogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/detske-trhy/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts one notification attempt.
func (r *Repository) Record(ctx context.Context, log *models.EmailLog) error {
	const q = `INSERT INTO email_logs (id, registration_id, email_type, recipient_email, subject, status, error_message)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q,
		log.RegistrationID, log.EmailType, log.RecipientEmail, log.Subject, log.Status, log.ErrorMessage,
	).Scan(&log.ID, &log.CreatedAt)
}

// ListByRegistration returns email logs for one registration, newest first.
func (r *Repository) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]models.EmailLog, error) {
	const q = `SELECT id, registration_id, email_type, recipient_email, subject, status, COALESCE(error_message, ''), created_at
		FROM email_logs
		WHERE registration_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		if err := rows.Scan(&el.ID, &el.RegistrationID, &el.EmailType, &el.RecipientEmail, &el.Subject, &el.Status, &el.ErrorMessage, &el.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, el)
	}
	return list, rows.Err()
}
