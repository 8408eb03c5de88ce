package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
	pgUniqueViolation = "23505"
	// emailConstraint is the unique index created by migrations/000001_create_users.up.sql.
	emailConstraint = "users_email_key"
	// pgInvalidTextRepresentation is raised when a non-UUID is compared to the id column.
	pgInvalidTextRepresentation = "22P02"
)

// DBTX is the subset of pgxpool.Pool the store needs.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is a Store backed by the `users` table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a PostgresStore on db (usually a *pgxpool.Pool).
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectUser = `SELECT id::text, name, email, avatar, password, date FROM users`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.PasswordHash, &u.Date); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail returns the account registered with exactly email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, selectUser+` WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID returns the account with the given id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, selectUser+` WHERE id = $1`, id))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// Insert adds u and fills in the generated id and registration date.
// A concurrent registration of the same email surfaces as ErrEmailTaken.
func (s *PostgresStore) Insert(ctx context.Context, u *User) error {
	query := `INSERT INTO users (name, email, avatar, password)
              VALUES ($1, $2, $3, $4)
              RETURNING id::text, date`
	err := s.db.QueryRow(ctx, query, u.Name, u.Email, u.Avatar, u.PasswordHash).Scan(&u.ID, &u.Date)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == emailConstraint {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
