package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/iskra/internal/domain"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("match", 1, nil))
	assert.ErrorIs(t, mapError("match", 1, sql.ErrNoRows), domain.ErrNotFound)

	dup := fmt.Errorf("exec: %w", &pq.Error{Code: "23505", Constraint: "uq_matches_pair"})
	err := mapError("match", 1, dup)
	assert.ErrorIs(t, err, domain.ErrConflict)
	var pqErr *pq.Error
	assert.True(t, errors.As(err, &pqErr), "driver error stays reachable")

	orphan := fmt.Errorf("exec: %w", &pq.Error{Code: "23503", Constraint: "interactions_target_id_fkey"})
	err = mapError("interaction", "10->424242", orphan)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	other := mapError("match", 1, errors.New("connection reset"))
	assert.Equal(t, domain.KindInternal, domain.KindOf(other))
}

func TestFilterRowRoundTrip(t *testing.T) {
	f := domain.Filter{
		UserID:        3,
		TargetGenders: []domain.Gender{domain.GenderFemale},
		AgeMin:        20,
		AgeMax:        30,
	}
	row := rowFromFilter(f)
	assert.Equal(t, pq.StringArray{"female"}, row.TargetGenders)
	assert.NotNil(t, row.LookingFor)
	back := row.toDomain()
	assert.Equal(t, f.TargetGenders, back.TargetGenders)
	assert.Equal(t, 30, back.AgeMax)
}
