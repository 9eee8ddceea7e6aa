package postgres

import (
	"time"

	"messagely/internal/domain"
)

type userRecord struct {
	Username     string    `gorm:"primaryKey"`
	PasswordHash string    `gorm:"not null"`
	FirstName    string    `gorm:"not null"`
	LastName     string    `gorm:"not null"`
	Phone        string    `gorm:"not null"`
	JoinAt       time.Time `gorm:"not null"`
	LastLoginAt  *time.Time
}

func (userRecord) TableName() string { return "users" }

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		JoinedAt:     r.JoinAt,
		LastLoginAt:  r.LastLoginAt,
	}
}

type messageRecord struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	FromUsername string    `gorm:"not null;index"`
	ToUsername   string    `gorm:"not null;index"`
	Body         string    `gorm:"not null"`
	SentAt       time.Time `gorm:"not null"`
	ReadAt       *time.Time

	From userRecord `gorm:"foreignKey:FromUsername;references:Username"`
	To   userRecord `gorm:"foreignKey:ToUsername;references:Username"`
}

func (messageRecord) TableName() string { return "messages" }

func (r *messageRecord) toDomain() *domain.Message {
	return &domain.Message{
		ID:           r.ID,
		FromUsername: r.FromUsername,
		ToUsername:   r.ToUsername,
		Body:         r.Body,
		SentAt:       r.SentAt,
		ReadAt:       r.ReadAt,
	}
}
