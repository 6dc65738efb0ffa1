package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/iskra/internal/domain"
)

// Users implements domain.UserRepository.
type Users struct {
	db *sqlx.DB
}

const userColumns = `id, username, birth_date, gender, status, is_muted, created_at`

func (r *Users) Find(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return domain.User{}, mapError("user", id, err)
	}
	u.BirthDate = u.BirthDate.UTC()
	return u, nil
}

func (r *Users) Create(ctx context.Context, u domain.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :username, :birth_date, :gender, :status, :is_muted, :created_at)`, u)
	return mapError("user", u.ID, err)
}

func (r *Users) SetStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return mapError("user", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("user", id)
	}
	return nil
}
