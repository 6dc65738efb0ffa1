package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/iskra/internal/domain"
)

// Filters implements domain.FilterRepository.
type Filters struct {
	db *sqlx.DB
}

type filterRow struct {
	UserID        int64          `db:"user_id"`
	TargetGenders pq.StringArray `db:"target_genders"`
	AgeMin        int            `db:"age_min"`
	AgeMax        int            `db:"age_max"`
	LookingFor    pq.StringArray `db:"looking_for"`
}

func (row filterRow) toDomain() domain.Filter {
	f := domain.Filter{UserID: row.UserID, AgeMin: row.AgeMin, AgeMax: row.AgeMax}
	for _, g := range row.TargetGenders {
		f.TargetGenders = append(f.TargetGenders, domain.Gender(g))
	}
	for _, k := range row.LookingFor {
		f.LookingFor = append(f.LookingFor, domain.RelationKind(k))
	}
	return f
}

func rowFromFilter(f domain.Filter) filterRow {
	row := filterRow{UserID: f.UserID, AgeMin: f.AgeMin, AgeMax: f.AgeMax, LookingFor: pq.StringArray{}}
	for _, g := range f.TargetGenders {
		row.TargetGenders = append(row.TargetGenders, string(g))
	}
	for _, k := range f.LookingFor {
		row.LookingFor = append(row.LookingFor, string(k))
	}
	return row
}

func (r *Filters) Find(ctx context.Context, userID int64) (domain.Filter, error) {
	var row filterRow
	err := r.db.GetContext(ctx, &row, `
		SELECT user_id, target_genders, age_min, age_max, looking_for
		FROM filters WHERE user_id = $1`, userID)
	if err != nil {
		return domain.Filter{}, mapError("filter", userID, err)
	}
	return row.toDomain(), nil
}

func (r *Filters) Save(ctx context.Context, f domain.Filter) error {
	if len(f.TargetGenders) == 0 {
		return domain.Validation("filter needs at least one target gender")
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO filters (user_id, target_genders, age_min, age_max, looking_for)
		VALUES (:user_id, :target_genders, :age_min, :age_max, :looking_for)
		ON CONFLICT (user_id) DO UPDATE SET
			target_genders = EXCLUDED.target_genders,
			age_min        = EXCLUDED.age_min,
			age_max        = EXCLUDED.age_max,
			looking_for    = EXCLUDED.looking_for`, rowFromFilter(f))
	return mapError("filter", f.UserID, err)
}
