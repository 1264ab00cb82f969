package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"library/internal/domain"
)

// SQLSTATE codes the library repositories react to
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// IsPgDuplicateError reports a unique violation (slug or folder display order)
func IsPgDuplicateError(err error) bool {
	code, _ := pgCode(err)
	return code == codeUniqueViolation
}

// IsPgNoRowsError reports an empty single-row result
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError reports a missing folder or parent folder
func IsPgForeignKeyError(err error) bool {
	code, _ := pgCode(err)
	return code == codeForeignKeyViolation
}

// CheckViolation converts a row-level CHECK failure into a validation error, so a
// constraint the service layer missed still surfaces as 400 rather than 500.
// Returns nil when err is not a check violation.
func CheckViolation(err error, field string) *domain.ValidationError {
	code, constraint := pgCode(err)
	if code != codeCheckViolation {
		return nil
	}
	msg := "value rejected by the database"
	if constraint != "" {
		msg += " (" + constraint + ")"
	}
	return &domain.ValidationError{Field: field, Message: msg}
}
