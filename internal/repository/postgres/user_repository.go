package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"messagely/internal/domain"
	"messagely/internal/repository"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&userRecord{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	rec := userRecord{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Phone:        user.Phone,
		JoinAt:       user.JoinedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: user %q already exists", domain.ErrConflict, user.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&userRecord{}).
		Where("username = ?", username).
		Update("last_login_at", at.UTC()).Error
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Order("username ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, len(recs))
	for i := range recs {
		users[i] = *recs[i].toDomain()
	}
	return users, nil
}
