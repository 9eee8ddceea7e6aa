package http

import (
	"time"

	"messagely/internal/domain"
)

type PublicUserResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type UserDetailResponse struct {
	PublicUserResponse
	JoinAt      string  `json:"join_at"`
	LastLoginAt *string `json:"last_login_at"`
}

type MessageResponse struct {
	ID           string  `json:"id"`
	FromUsername string  `json:"from_username"`
	ToUsername   string  `json:"to_username"`
	Body         string  `json:"body"`
	SentAt       string  `json:"sent_at"`
	ReadAt       *string `json:"read_at"`
}

type MessageDetailResponse struct {
	ID       string             `json:"id"`
	Body     string             `json:"body"`
	SentAt   string             `json:"sent_at"`
	ReadAt   *string            `json:"read_at"`
	FromUser PublicUserResponse `json:"from_user"`
	ToUser   PublicUserResponse `json:"to_user"`
}

type ReadReceiptResponse struct {
	ID     string `json:"id"`
	ReadAt string `json:"read_at"`
}

func publicUserToResponse(u domain.PublicUser) PublicUserResponse {
	return PublicUserResponse{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

func userDetailToResponse(u domain.UserDetail) UserDetailResponse {
	return UserDetailResponse{
		PublicUserResponse: publicUserToResponse(u.PublicUser),
		JoinAt:             formatTime(u.JoinedAt),
		LastLoginAt:        formatTimePtr(u.LastLoginAt),
	}
}

func messageToResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:           m.ID,
		FromUsername: m.FromUsername,
		ToUsername:   m.ToUsername,
		Body:         m.Body,
		SentAt:       formatTime(m.SentAt),
		ReadAt:       formatTimePtr(m.ReadAt),
	}
}

func messageDetailToResponse(m domain.MessageDetail) MessageDetailResponse {
	return MessageDetailResponse{
		ID:       m.ID,
		Body:     m.Body,
		SentAt:   formatTime(m.SentAt),
		ReadAt:   formatTimePtr(m.ReadAt),
		FromUser: publicUserToResponse(m.From),
		ToUser:   publicUserToResponse(m.To),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	v := formatTime(*t)
	return &v
}
