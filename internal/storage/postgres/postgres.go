// Package postgres implements the domain repositories with sqlx over lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/iskra/internal/domain"
)

const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

// Repositories builds every repository over one connection pool.
func Repositories(db *sqlx.DB) domain.Repositories {
	return domain.Repositories{
		Users:        &Users{db: db},
		Profiles:     &Profiles{db: db},
		Moderations:  &Moderations{db: db},
		Filters:      &Filters{db: db},
		Interactions: &Interactions{db: db},
		Matches:      &Matches{db: db},
	}
}

// Ping checks the pool; it backs the health endpoint.
func Ping(db *sqlx.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}

// mapError converts driver errors into domain errors.
func mapError(entity string, id any, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(entity, id)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return domain.Conflict(entity, err)
		case foreignKeyViolation:
			// The referenced user is gone.
			return domain.Wrap(domain.KindNotFound, fmt.Sprintf("%s %v references a missing user", entity, id), err)
		}
	}
	return domain.Wrap(domain.KindInternal, fmt.Sprintf("%s query failed", entity), err)
}
