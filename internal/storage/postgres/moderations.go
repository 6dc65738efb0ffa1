package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/iskra/internal/domain"
)

// Moderations implements domain.ModerationRepository.
type Moderations struct {
	db *sqlx.DB
}

const moderationColumns = `id, user_id, display_name, bio, photo_file_id, city, goal, preference, status, reason, created_at, closed_at`

func (r *Moderations) CreatePending(ctx context.Context, m domain.ModerationRequest) error {
	m.Status = domain.ModerationPending
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO moderation_requests (`+moderationColumns+`)
		VALUES (:id, :user_id, :display_name, :bio, :photo_file_id, :city, :goal, :preference,
			:status, :reason, :created_at, :closed_at)`, m)
	return mapError("moderation request", m.ID, err)
}

func (r *Moderations) Find(ctx context.Context, id uuid.UUID) (domain.ModerationRequest, error) {
	var m domain.ModerationRequest
	err := r.db.GetContext(ctx, &m, `SELECT `+moderationColumns+` FROM moderation_requests WHERE id = $1`, id)
	return m, mapError("moderation request", id, err)
}

// Close settles a pending request; a request that is already closed is
// reported as not found.
func (r *Moderations) Close(ctx context.Context, id uuid.UUID, status domain.ModerationStatus, reason string, at time.Time) (domain.ModerationRequest, error) {
	var m domain.ModerationRequest
	err := r.db.GetContext(ctx, &m, `
		UPDATE moderation_requests
		SET status = $2, reason = $3, closed_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING `+moderationColumns, id, status, reason, at)
	return m, mapError("pending moderation request", id, err)
}

func (r *Moderations) Reopen(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE moderation_requests
		SET status = 'pending', reason = '', closed_at = NULL
		WHERE id = $1 AND status <> 'pending'`, id)
	if err != nil {
		return mapError("moderation request", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("closed moderation request", id)
	}
	return nil
}

func (r *Moderations) ListPending(ctx context.Context, limit int) ([]domain.ModerationRequest, error) {
	var out []domain.ModerationRequest
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+moderationColumns+` FROM moderation_requests
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, mapError("moderation request", "pending", err)
	}
	return out, nil
}

func (r *Moderations) PendingFor(ctx context.Context, userID int64) (domain.ModerationRequest, error) {
	var m domain.ModerationRequest
	err := r.db.GetContext(ctx, &m, `
		SELECT `+moderationColumns+` FROM moderation_requests
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`, userID)
	return m, mapError("pending moderation request", userID, err)
}
