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

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	from_username TEXT NOT NULL REFERENCES users(username),
	to_username TEXT NOT NULL REFERENCES users(username),
	body TEXT NOT NULL,
	sent_at DATETIME NOT NULL,
	read_at DATETIME NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_username);
CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_username);
`

const selectMessage = `SELECT id, from_username, to_username, body, sent_at, read_at FROM messages`

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

// Init must run after the users table exists.
func (r *MessageRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMessagesTable); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}
	return nil
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO messages (id, from_username, to_username, body, sent_at)
VALUES (?, ?, ?, ?, ?)`,
		msg.ID,
		msg.FromUsername,
		msg.ToUsername,
		msg.Body,
		msg.SentAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: message %s already exists", domain.ErrConflict, msg.ID)
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) Get(ctx context.Context, id string) (*domain.Message, error) {
	row := r.db.QueryRowContext(ctx, selectMessage+` WHERE id = ?`, id)
	return scanMessage(row)
}

func (r *MessageRepository) ListBySender(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, selectMessage+` WHERE from_username = ? ORDER BY sent_at ASC`, username)
}

func (r *MessageRepository) ListByRecipient(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, selectMessage+` WHERE to_username = ? ORDER BY sent_at ASC`, username)
}

func (r *MessageRepository) MarkRead(ctx context.Context, id string, at time.Time) (time.Time, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	if _, err := tx.ExecContext(ctx, `UPDATE messages SET read_at = ? WHERE id = ? AND read_at IS NULL`, at.UTC(), id); err != nil {
		return time.Time{}, fmt.Errorf("mark read: %w", err)
	}

	var readAt sql.NullTime
	if err := tx.QueryRowContext(ctx, `SELECT read_at FROM messages WHERE id = ?`, id).Scan(&readAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("%w: message", domain.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("select read_at: %w", err)
	}
	if !readAt.Valid {
		return time.Time{}, fmt.Errorf("read_at still unset for message %s", id)
	}

	if err := tx.Commit(); err != nil {
		return time.Time{}, fmt.Errorf("commit tx: %w", err)
	}
	return readAt.Time, nil
}

func (r *MessageRepository) list(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *msg)
	}
	return msgs, rows.Err()
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var (
		msg    domain.Message
		readAt sql.NullTime
	)
	if err := row.Scan(
		&msg.ID,
		&msg.FromUsername,
		&msg.ToUsername,
		&msg.Body,
		&msg.SentAt,
		&readAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: message", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}
	if readAt.Valid {
		t := readAt.Time
		msg.ReadAt = &t
	}
	return &msg, nil
}
