package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for the service error taxonomy. Handlers map these to
// HTTP status codes; callers match with errors.Is.
var (
	// ErrNotFound covers both a missing id and an id outside the caller's
	// visibility, so existence is not leaked.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks a visible entity the caller may not mutate.
	ErrForbidden = errors.New("forbidden")

	// ErrMailingFinished rejects dispatch of a terminal-status mailing.
	ErrMailingFinished = errors.New("mailing already finished")

	// ErrDispatchInProgress rejects a concurrent dispatch of the same
	// mailing; exactly one caller wins the per-mailing guard.
	ErrDispatchInProgress = errors.New("mailing dispatch already in progress")
)

// ValidationError reports a malformed or duplicate field on create/update.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
