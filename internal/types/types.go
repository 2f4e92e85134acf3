package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	Xp           int       `json:"xp"`
	Level        int       `json:"level"`
	IsOnline     bool      `json:"is_online"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Participant is the lightweight user descriptor kept in a room roster.
type Participant struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
}

type RoomMessage struct {
	Sender    Participant `json:"sender"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

type DirectMessage struct {
	Id          int       `json:"id"`
	SenderId    int       `json:"sender_id"`
	RecipientId int       `json:"recipient_id"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	NotificationKindMessage     = "message"
	NotificationKindAchievement = "achievement"
)

type Notification struct {
	Id        int       `json:"id"`
	AccountId int       `json:"account_id"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	SessionKindWork  = "work"
	SessionKindBreak = "break"
)

type FocusSession struct {
	Id              int       `json:"id"`
	AccountId       int       `json:"account_id"`
	Kind            string    `json:"kind"`
	DurationSeconds int       `json:"duration_seconds"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
}

type Habit struct {
	Id              int       `json:"id"`
	AccountId       int       `json:"account_id"`
	Name            string    `json:"name"`
	Streak          int       `json:"streak"`
	LastCompletedAt time.Time `json:"last_completed_at,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}
