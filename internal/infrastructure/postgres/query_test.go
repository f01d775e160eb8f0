package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	repo "github.com/oksasatya/go-clean-starter/internal/domain/repository"
)

func TestWhereBuilder(t *testing.T) {
	w := &where{}
	assert.Equal(t, "", w.String())

	w.add("deleted_at IS NULL")
	w.add("email = " + w.arg("a@b.co"))
	w.add(w.arg("admin") + " = ANY(roles)")

	assert.Equal(t, " WHERE deleted_at IS NULL AND email = $1 AND $2 = ANY(roles)", w.String())
	assert.Equal(t, []any{"a@b.co", "admin"}, w.args)
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, " ORDER BY first_name ASC, id ASC", orderBy(userSortColumns, "firstName", repo.SortAsc))
	assert.Equal(t, " ORDER BY created_at DESC, id DESC", orderBy(userSortColumns, "password_hash; DROP", repo.SortDesc))
	assert.Equal(t, " ORDER BY price DESC, id DESC", orderBy(productSortColumns, "price", ""))
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%jane%`, likePattern("jane"))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func TestUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(dup))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))

	assert.True(t, errs.IsConflict(emailTaken("a@b.co")))
}

func TestValidUUID(t *testing.T) {
	assert.True(t, validUUID("7f9c24e8-3b12-4fef-91e0-6b1b6c3c1f2a"))
	assert.False(t, validUUID("42"))
}
