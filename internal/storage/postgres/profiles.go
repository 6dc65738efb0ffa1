package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/iskra/internal/domain"
)

// Profiles implements domain.ProfileRepository.
type Profiles struct {
	db *sqlx.DB
}

const profileColumns = `user_id, display_name, bio, photo_file_id, city, goal, preference, created_at, updated_at`

func (r *Profiles) Find(ctx context.Context, userID int64) (domain.Profile, error) {
	var p domain.Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	return p, mapError("profile", userID, err)
}

func (r *Profiles) Upsert(ctx context.Context, p domain.Profile) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (:user_id, :display_name, :bio, :photo_file_id, :city, :goal, :preference, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name  = EXCLUDED.display_name,
			bio           = EXCLUDED.bio,
			photo_file_id = EXCLUDED.photo_file_id,
			city          = EXCLUDED.city,
			goal          = EXCLUDED.goal,
			preference    = EXCLUDED.preference,
			updated_at    = EXCLUDED.updated_at`, p)
	return mapError("profile", p.UserID, err)
}

// candidatesSQL aliases columns as "user.x" and "profile.x" so sqlx fills the
// nested structs of domain.Candidate.
const candidatesSQL = `
	SELECT
		u.id AS "user.id", u.username AS "user.username", u.birth_date AS "user.birth_date",
		u.gender AS "user.gender", u.status AS "user.status", u.is_muted AS "user.is_muted",
		u.created_at AS "user.created_at",
		p.user_id AS "profile.user_id", p.display_name AS "profile.display_name", p.bio AS "profile.bio",
		p.photo_file_id AS "profile.photo_file_id", p.city AS "profile.city", p.goal AS "profile.goal",
		p.preference AS "profile.preference", p.created_at AS "profile.created_at",
		p.updated_at AS "profile.updated_at"
	FROM users u
	JOIN profiles p ON p.user_id = u.id
	WHERE u.status = 'active'
		AND u.id <> $1
		AND u.gender = ANY($2)
		AND u.birth_date > $3
		AND u.birth_date <= $4
		AND NOT (u.id = ANY($5))
	ORDER BY u.id`

func (r *Profiles) Candidates(ctx context.Context, q domain.CandidateQuery) ([]domain.Candidate, error) {
	genders := make([]string, len(q.Genders))
	for i, g := range q.Genders {
		genders[i] = string(g)
	}
	excluded := make([]int64, 0, len(q.Exclude))
	for id := range q.Exclude {
		excluded = append(excluded, id)
	}

	var b strings.Builder
	b.WriteString(candidatesSQL)
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}

	var out []domain.Candidate
	err := r.db.SelectContext(ctx, &out, b.String(),
		q.Requester,
		pq.Array(genders),
		q.BornAfter,
		q.BornThrough,
		pq.Array(excluded),
	)
	if err != nil {
		return nil, mapError("candidate", q.Requester, err)
	}
	return out, nil
}
