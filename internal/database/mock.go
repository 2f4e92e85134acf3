package database

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockFocusRepository struct {
	mock.Mock
}

func (m *MockFocusRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockFocusRepository) CreateAccount(params CreateAccountParams) (Account, error) {
	args := m.Called(params)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockFocusRepository) UpdateAccount(params UpdateAccountParams) (Account, error) {
	args := m.Called(params)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockFocusRepository) GetAccountById(accountId int) (Account, error) {
	args := m.Called(accountId)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockFocusRepository) GetAccountByEmail(email string) (Account, error) {
	args := m.Called(email)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockFocusRepository) SetOnlineStatus(accountId int, online bool) error {
	args := m.Called(accountId, online)
	return args.Error(0)
}
func (m *MockFocusRepository) AddXp(accountId, amount int) (int, error) {
	args := m.Called(accountId, amount)
	return args.Int(0), args.Error(1)
}
func (m *MockFocusRepository) CreateFriendship(accountId, friendId int) error {
	args := m.Called(accountId, friendId)
	return args.Error(0)
}
func (m *MockFocusRepository) ListFriends(accountId int) ([]Account, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Account), args.Error(1)
}
func (m *MockFocusRepository) CreateDirectMessage(params CreateDirectMessageParams) (DirectMessage, error) {
	args := m.Called(params)
	return args.Get(0).(DirectMessage), args.Error(1)
}
func (m *MockFocusRepository) GetConversation(accountId, peerId, limit int) ([]DirectMessage, error) {
	args := m.Called(accountId, peerId, limit)
	return args.Get(0).([]DirectMessage), args.Error(1)
}
func (m *MockFocusRepository) MarkConversationRead(recipientId, senderId int) error {
	args := m.Called(recipientId, senderId)
	return args.Error(0)
}
func (m *MockFocusRepository) CreateNotification(params CreateNotificationParams) (Notification, error) {
	args := m.Called(params)
	return args.Get(0).(Notification), args.Error(1)
}
func (m *MockFocusRepository) ListNotifications(accountId int) ([]Notification, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Notification), args.Error(1)
}
func (m *MockFocusRepository) MarkNotificationsRead(accountId int) error {
	args := m.Called(accountId)
	return args.Error(0)
}
func (m *MockFocusRepository) CreateFocusSession(params CreateFocusSessionParams) (FocusSession, error) {
	args := m.Called(params)
	return args.Get(0).(FocusSession), args.Error(1)
}
func (m *MockFocusRepository) ListFocusSessions(accountId, limit int) ([]FocusSession, error) {
	args := m.Called(accountId, limit)
	return args.Get(0).([]FocusSession), args.Error(1)
}
func (m *MockFocusRepository) CreateHabit(params CreateHabitParams) (Habit, error) {
	args := m.Called(params)
	return args.Get(0).(Habit), args.Error(1)
}
func (m *MockFocusRepository) ListHabits(accountId int) ([]Habit, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Habit), args.Error(1)
}
func (m *MockFocusRepository) GetHabitById(habitId int) (Habit, error) {
	args := m.Called(habitId)
	return args.Get(0).(Habit), args.Error(1)
}
func (m *MockFocusRepository) UpdateHabitStreak(habitId, streak int, completedAt time.Time) (Habit, error) {
	args := m.Called(habitId, streak, completedAt)
	return args.Get(0).(Habit), args.Error(1)
}
