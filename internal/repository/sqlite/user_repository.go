package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"messagely/internal/domain"
	"messagely/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	username TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	phone TEXT NOT NULL,
	join_at DATETIME NOT NULL,
	last_login_at DATETIME NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, first_name, last_name, phone, join_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %q already exists", domain.ErrConflict, user.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT username, password_hash, first_name, last_name, phone, join_at, last_login_at
FROM users
WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE username = ?`, at.UTC(), username); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT username, password_hash, first_name, last_name, phone, join_at, last_login_at
FROM users
ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user      domain.User
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.JoinedAt,
		&lastLogin,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	return &user, nil
}
