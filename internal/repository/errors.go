package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	// ErrUsernameTaken is returned when the unique username constraint rejects an insert.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUnknownOwner is returned when a ticket references a user that does not exist.
	ErrUnknownOwner = errors.New("ticket owner does not exist")
)

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
