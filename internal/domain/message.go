package domain

import "time"

// Message is a direct message between two users.
// ReadAt stays nil until the recipient marks it read and never changes afterwards.
type Message struct {
	ID           string
	FromUsername string
	ToUsername   string
	Body         string
	SentAt       time.Time
	ReadAt       *time.Time
}

// IsRead reports whether the recipient has already read the message.
func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

// MessageDetail carries a message together with both participants' profiles.
type MessageDetail struct {
	Message
	From PublicUser
	To   PublicUser
}

// MessageSummary is a mailbox entry; Peer is the other participant.
type MessageSummary struct {
	ID     string
	Peer   PublicUser
	Body   string
	SentAt time.Time
	ReadAt *time.Time
}

// ReadReceipt is returned by a read transition.
type ReadReceipt struct {
	ID     string
	ReadAt time.Time
}
