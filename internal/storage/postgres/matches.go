package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/iskra/internal/domain"
)

// Matches implements domain.MatchRepository over the unique
// (user_low, user_high) constraint.
type Matches struct {
	db *sqlx.DB
}

const matchColumns = `id, user_low, user_high, kind, created_at`

func (r *Matches) FindPair(ctx context.Context, low, high int64) (domain.Match, error) {
	var m domain.Match
	err := r.db.GetContext(ctx, &m, `
		SELECT `+matchColumns+` FROM matches
		WHERE user_low = $1 AND user_high = $2`, low, high)
	return m, mapError("match", [2]int64{low, high}, err)
}

// Insert fails with domain.ErrConflict when the pair exists.
func (r *Matches) Insert(ctx context.Context, m domain.Match) error {
	if m.UserLow >= m.UserHigh {
		return domain.Validation("match pair is not canonical")
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES (:id, :user_low, :user_high, :kind, :created_at)`, m)
	return mapError("match", m.ID, err)
}

func (r *Matches) ListFor(ctx context.Context, userID int64) ([]domain.Match, error) {
	var out []domain.Match
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+matchColumns+` FROM matches
		WHERE user_low = $1 OR user_high = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, mapError("match", userID, err)
	}
	return out, nil
}
