package database

import "time"

type FocusRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (Account, error)
	UpdateAccount(params UpdateAccountParams) (Account, error)
	GetAccountById(accountId int) (Account, error)
	GetAccountByEmail(email string) (Account, error)
	SetOnlineStatus(accountId int, online bool) error
	AddXp(accountId, amount int) (int, error)
	CreateFriendship(accountId, friendId int) error
	ListFriends(accountId int) ([]Account, error)
	CreateDirectMessage(params CreateDirectMessageParams) (DirectMessage, error)
	GetConversation(accountId, peerId, limit int) ([]DirectMessage, error)
	MarkConversationRead(recipientId, senderId int) error
	CreateNotification(params CreateNotificationParams) (Notification, error)
	ListNotifications(accountId int) ([]Notification, error)
	MarkNotificationsRead(accountId int) error
	CreateFocusSession(params CreateFocusSessionParams) (FocusSession, error)
	ListFocusSessions(accountId, limit int) ([]FocusSession, error)
	CreateHabit(params CreateHabitParams) (Habit, error)
	ListHabits(accountId int) ([]Habit, error)
	GetHabitById(habitId int) (Habit, error)
	UpdateHabitStreak(habitId, streak int, completedAt time.Time) (Habit, error)
}
