package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserProjections(t *testing.T) {
	joined := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	login := joined.Add(time.Hour)
	u := &User{
		Username:     "bob",
		PasswordHash: "$2a$04$secret",
		FirstName:    "Bob",
		LastName:     "B",
		Phone:        "555-0100",
		JoinedAt:     joined,
		LastLoginAt:  &login,
	}

	assert.Equal(t, PublicUser{Username: "bob", FirstName: "Bob", LastName: "B", Phone: "555-0100"}, u.Public())

	detail := u.Detail()
	assert.Equal(t, u.Public(), detail.PublicUser)
	assert.Equal(t, joined, detail.JoinedAt)
	assert.Equal(t, &login, detail.LastLoginAt)
}
