package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/iskra/internal/domain"
)

// Interactions implements domain.InteractionRepository. The unique
// (actor_id, target_id) constraint makes Upsert a single statement.
type Interactions struct {
	db *sqlx.DB
}

const interactionColumns = `id, actor_id, target_id, action, message, is_hidden, created_at, updated_at`

func (r *Interactions) Upsert(ctx context.Context, in domain.Interaction) (domain.Interaction, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	var out domain.Interaction
	err := r.db.GetContext(ctx, &out, `
		INSERT INTO interactions (`+interactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)
		ON CONFLICT (actor_id, target_id) DO UPDATE SET
			action     = EXCLUDED.action,
			message    = EXCLUDED.message,
			is_hidden  = FALSE,
			updated_at = EXCLUDED.updated_at
		RETURNING `+interactionColumns,
		in.ID, in.ActorID, in.TargetID, in.Action, in.Message, in.CreatedAt, in.UpdatedAt)
	if err != nil {
		return domain.Interaction{}, mapError("interaction", in.ID, err)
	}
	return out, nil
}

func (r *Interactions) Find(ctx context.Context, actorID, targetID int64) (domain.Interaction, error) {
	var in domain.Interaction
	err := r.db.GetContext(ctx, &in, `
		SELECT `+interactionColumns+` FROM interactions
		WHERE actor_id = $1 AND target_id = $2`, actorID, targetID)
	return in, mapError("interaction", [2]int64{actorID, targetID}, err)
}

func (r *Interactions) FindByID(ctx context.Context, id uuid.UUID) (domain.Interaction, error) {
	var in domain.Interaction
	err := r.db.GetContext(ctx, &in, `SELECT `+interactionColumns+` FROM interactions WHERE id = $1`, id)
	return in, mapError("interaction", id, err)
}

// HasLiked reports a visible like from actor to target.
func (r *Interactions) HasLiked(ctx context.Context, actorID, targetID int64) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `
		SELECT EXISTS (
			SELECT 1 FROM interactions
			WHERE actor_id = $1 AND target_id = $2 AND action = 'like' AND NOT is_hidden
		)`, actorID, targetID)
	if err != nil {
		return false, mapError("interaction", [2]int64{actorID, targetID}, err)
	}
	return ok, nil
}

func (r *Interactions) Targets(ctx context.Context, actorID int64) (map[int64]struct{}, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT target_id FROM interactions WHERE actor_id = $1`, actorID); err != nil {
		return nil, mapError("interaction", actorID, err)
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *Interactions) Incoming(ctx context.Context, targetID int64, actions []domain.Action) ([]domain.Interaction, error) {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	var out []domain.Interaction
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+interactionColumns+` FROM interactions
		WHERE target_id = $1 AND NOT is_hidden AND action = ANY($2)
		ORDER BY updated_at DESC`, targetID, pq.Array(names))
	if err != nil {
		return nil, mapError("interaction", targetID, err)
	}
	return out, nil
}

func (r *Interactions) HidePair(ctx context.Context, actorID, targetID int64) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE interactions SET is_hidden = TRUE
		WHERE actor_id = $1 AND target_id = $2`, actorID, targetID)
	if err != nil {
		return 0, mapError("interaction", [2]int64{actorID, targetID}, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *Interactions) Hide(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE interactions SET is_hidden = TRUE WHERE id = $1`, id)
	if err != nil {
		return mapError("interaction", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("interaction", id)
	}
	return nil
}
