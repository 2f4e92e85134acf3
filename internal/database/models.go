package database

import "time"

type Account struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	Xp           int
	IsOnline     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type DirectMessage struct {
	Id          int
	SenderId    int
	RecipientId int
	Content     string
	Read        bool
	CreatedAt   time.Time
}

type Notification struct {
	Id        int
	AccountId int
	Kind      string
	Body      string
	Read      bool
	CreatedAt time.Time
}

type FocusSession struct {
	Id              int
	AccountId       int
	Kind            string
	DurationSeconds int
	StartedAt       time.Time
	CompletedAt     time.Time
}

type Habit struct {
	Id              int
	AccountId       int
	Name            string
	Streak          int
	LastCompletedAt time.Time
	CreatedAt       time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type UpdateAccountParams struct {
	AccountId    int
	Username     string
	PasswordHash string
}

type CreateDirectMessageParams struct {
	SenderId    int
	RecipientId int
	Content     string
	Read        bool
}

type CreateNotificationParams struct {
	AccountId int
	Kind      string
	Body      string
}

type CreateFocusSessionParams struct {
	AccountId       int
	Kind            string
	DurationSeconds int
	StartedAt       time.Time
	CompletedAt     time.Time
}

type CreateHabitParams struct {
	AccountId int
	Name      string
}
