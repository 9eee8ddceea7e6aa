package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"messagely/internal/domain"
	"messagely/internal/repository"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

// Init must run after the users table exists.
func (r *MessageRepository) Init(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&messageRecord{}); err != nil {
		return fmt.Errorf("migrate messages: %w", err)
	}
	return nil
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	rec := messageRecord{
		ID:           msg.ID,
		FromUsername: msg.FromUsername,
		ToUsername:   msg.ToUsername,
		Body:         msg.Body,
		SentAt:       msg.SentAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Omit("From", "To").Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: message %s already exists", domain.ErrConflict, msg.ID)
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) Get(ctx context.Context, id string) (*domain.Message, error) {
	if err := requireMessageID(id); err != nil {
		return nil, err
	}
	var rec messageRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return rec.toDomain(), nil
}

func (r *MessageRepository) ListBySender(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, "from_username = ?", username)
}

func (r *MessageRepository) ListByRecipient(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, "to_username = ?", username)
}

// MarkRead locks the row so concurrent transitions on the same id serialize.
func (r *MessageRepository) MarkRead(ctx context.Context, id string, at time.Time) (time.Time, error) {
	if err := requireMessageID(id); err != nil {
		return time.Time{}, err
	}
	var readAt time.Time
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec messageRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, "id = ?", id).Error; err != nil {
			return translateNotFound(err)
		}
		if rec.ReadAt != nil {
			readAt = *rec.ReadAt
			return nil
		}
		readAt = at.UTC()
		return tx.Model(&messageRecord{}).Where("id = ?", id).Update("read_at", readAt).Error
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("mark read: %w", err)
	}
	return readAt, nil
}

func (r *MessageRepository) list(ctx context.Context, where string, args ...any) ([]domain.Message, error) {
	var recs []messageRecord
	if err := r.db.WithContext(ctx).Where(where, args...).Order("sent_at ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	msgs := make([]domain.Message, len(recs))
	for i := range recs {
		msgs[i] = *recs[i].toDomain()
	}
	return msgs, nil
}

// requireMessageID rejects ids the uuid column could never hold, which postgres
// would otherwise report as a syntax error rather than a missing row.
func requireMessageID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: message %q", domain.ErrNotFound, id)
	}
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: message", domain.ErrNotFound)
	}
	return fmt.Errorf("get message: %w", err)
}
