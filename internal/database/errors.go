package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/tourdesk/backoffice-api/internal/models"
)

// Postgres error codes the API reacts to
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// translate maps driver errors onto domain errors. notFound replaces
// sql.ErrNoRows when non-nil.
func translate(err error, notFound error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return notFound
	}
	switch pgCode(err) {
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", models.ErrReferenced, action)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", models.ErrDuplicate, action)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
