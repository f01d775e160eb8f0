package postgres

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	repo "github.com/oksasatya/go-clean-starter/internal/domain/repository"
)

const uniqueViolation = "23505"

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	conds []string
	args  []any
}

// arg registers v and returns its placeholder.
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) add(cond string) { w.conds = append(w.conds, cond) }

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func orderBy(columns map[string]string, sortBy, order string) string {
	col, ok := columns[sortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if order == repo.SortAsc {
		dir = "ASC"
	}
	return " ORDER BY " + col + " " + dir + ", id " + dir
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// validUUID filters ids that could never match a uuid column.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func emailTaken(email string) error {
	return errs.Conflict(errs.CodeEmailAlreadyExists, "email already registered").With("email", email)
}
