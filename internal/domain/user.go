package domain

import "time"

// User represents a registered account. PasswordHash never leaves the auth service.
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinedAt     time.Time
	LastLoginAt  *time.Time
}

// PublicUser is the profile other users are allowed to see.
type PublicUser struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// UserDetail is a PublicUser plus account timestamps.
type UserDetail struct {
	PublicUser
	JoinedAt    time.Time
	LastLoginAt *time.Time
}

// Public strips everything but the profile fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

// Detail is the profile plus join and last-login times.
func (u *User) Detail() UserDetail {
	return UserDetail{
		PublicUser:  u.Public(),
		JoinedAt:    u.JoinedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
