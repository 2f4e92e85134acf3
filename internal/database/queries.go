package database

import (
	"database/sql"
	"fmt"
	"time"
)

func (db *PgFocusRepository) CreateAccount(params CreateAccountParams) (Account, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, username, email, xp",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var a Account
	err := res.Scan(
		&a.Id,
		&a.Username,
		&a.EmailAddress,
		&a.Xp,
	)

	return a, err
}

func (db *PgFocusRepository) UpdateAccount(params UpdateAccountParams) (Account, error) {
	res := db.conn.QueryRow(
		"UPDATE accounts SET username = $2, password_hash = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING id, username, email, xp",
		params.AccountId,
		params.Username,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var a Account
	err := res.Scan(
		&a.Id,
		&a.Username,
		&a.EmailAddress,
		&a.Xp,
	)

	return a, err
}

func (db *PgFocusRepository) GetAccountById(accountId int) (Account, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, xp, is_online, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var a Account
	err := row.Scan(
		&a.Id,
		&a.Username,
		&a.EmailAddress,
		&a.Xp,
		&a.IsOnline,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func (db *PgFocusRepository) GetAccountByEmail(email string) (Account, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, xp, is_online, created_at, updated_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var a Account
	err := row.Scan(
		&a.Id,
		&a.Username,
		&a.EmailAddress,
		&a.PasswordHash,
		&a.Xp,
		&a.IsOnline,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func (db *PgFocusRepository) SetOnlineStatus(accountId int, online bool) error {
	_, err := db.conn.Exec(
		"UPDATE accounts SET is_online = $2, updated_at = $3 WHERE id = $1",
		accountId,
		online,
		time.Now().UTC(),
	)

	return err
}

func (db *PgFocusRepository) AddXp(accountId, amount int) (int, error) {
	row := db.conn.QueryRow(
		"UPDATE accounts SET xp = xp + $2, updated_at = $3 WHERE id = $1 RETURNING xp",
		accountId,
		amount,
		time.Now().UTC(),
	)

	var total int
	err := row.Scan(&total)

	return total, err
}

func (db *PgFocusRepository) CreateFriendship(accountId, friendId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, pair := range [][2]int{{accountId, friendId}, {friendId, accountId}} {
		if _, err := tx.Exec(
			"INSERT INTO friendships (account_id, friend_id, created_at) VALUES ($1, $2, $3) "+
				"ON CONFLICT (account_id, friend_id) DO NOTHING",
			pair[0], pair[1], now,
		); err != nil {
			return fmt.Errorf("insert friendship: %w", err)
		}
	}

	return tx.Commit()
}

func (db *PgFocusRepository) ListFriends(accountId int) ([]Account, error) {
	rows, err := db.conn.Query(
		"SELECT a.id, a.username, a.email, a.xp, a.is_online FROM friendships f "+
			"JOIN accounts a ON a.id = f.friend_id WHERE f.account_id = $1 ORDER BY a.username",
		accountId,
	)
	if err != nil {
		return nil, fmt.Errorf("query friends: %w", err)
	}
	defer rows.Close()

	var friends []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.Id, &a.Username, &a.EmailAddress, &a.Xp, &a.IsOnline); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		friends = append(friends, a)
	}

	return friends, rows.Err()
}

func (db *PgFocusRepository) CreateDirectMessage(params CreateDirectMessageParams) (DirectMessage, error) {
	row := db.conn.QueryRow(
		"INSERT INTO direct_messages (sender_id, recipient_id, content, read, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, sender_id, recipient_id, content, read, created_at",
		params.SenderId,
		params.RecipientId,
		params.Content,
		params.Read,
		time.Now().UTC(),
	)

	var m DirectMessage
	err := row.Scan(
		&m.Id,
		&m.SenderId,
		&m.RecipientId,
		&m.Content,
		&m.Read,
		&m.CreatedAt,
	)

	return m, err
}

func (db *PgFocusRepository) GetConversation(accountId, peerId, limit int) ([]DirectMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(
		"SELECT id, sender_id, recipient_id, content, read, created_at FROM direct_messages "+
			"WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1) "+
			"ORDER BY created_at DESC LIMIT $3",
		accountId,
		peerId,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	var messages []DirectMessage
	for rows.Next() {
		var m DirectMessage
		if err := rows.Scan(&m.Id, &m.SenderId, &m.RecipientId, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (db *PgFocusRepository) MarkConversationRead(recipientId, senderId int) error {
	_, err := db.conn.Exec(
		"UPDATE direct_messages SET read = TRUE "+
			"WHERE recipient_id = $1 AND sender_id = $2 AND read = FALSE",
		recipientId,
		senderId,
	)

	return err
}

func (db *PgFocusRepository) CreateNotification(params CreateNotificationParams) (Notification, error) {
	row := db.conn.QueryRow(
		"INSERT INTO notifications (account_id, kind, body, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, account_id, kind, body, read, created_at",
		params.AccountId,
		params.Kind,
		params.Body,
		time.Now().UTC(),
	)

	var n Notification
	err := row.Scan(
		&n.Id,
		&n.AccountId,
		&n.Kind,
		&n.Body,
		&n.Read,
		&n.CreatedAt,
	)

	return n, err
}

func (db *PgFocusRepository) ListNotifications(accountId int) ([]Notification, error) {
	rows, err := db.conn.Query(
		"SELECT id, account_id, kind, body, read, created_at FROM notifications "+
			"WHERE account_id = $1 ORDER BY created_at DESC LIMIT 100",
		accountId,
	)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.Id, &n.AccountId, &n.Kind, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (db *PgFocusRepository) MarkNotificationsRead(accountId int) error {
	_, err := db.conn.Exec(
		"UPDATE notifications SET read = TRUE WHERE account_id = $1 AND read = FALSE",
		accountId,
	)

	return err
}

func (db *PgFocusRepository) CreateFocusSession(params CreateFocusSessionParams) (FocusSession, error) {
	row := db.conn.QueryRow(
		"INSERT INTO focus_sessions (account_id, kind, duration_seconds, started_at, completed_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, account_id, kind, duration_seconds, started_at, completed_at",
		params.AccountId,
		params.Kind,
		params.DurationSeconds,
		params.StartedAt,
		params.CompletedAt,
	)

	var s FocusSession
	err := row.Scan(
		&s.Id,
		&s.AccountId,
		&s.Kind,
		&s.DurationSeconds,
		&s.StartedAt,
		&s.CompletedAt,
	)

	return s, err
}

func (db *PgFocusRepository) ListFocusSessions(accountId, limit int) ([]FocusSession, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(
		"SELECT id, account_id, kind, duration_seconds, started_at, completed_at FROM focus_sessions "+
			"WHERE account_id = $1 ORDER BY completed_at DESC LIMIT $2",
		accountId,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query focus sessions: %w", err)
	}
	defer rows.Close()

	var sessions []FocusSession
	for rows.Next() {
		var s FocusSession
		if err := rows.Scan(&s.Id, &s.AccountId, &s.Kind, &s.DurationSeconds, &s.StartedAt, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func (db *PgFocusRepository) CreateHabit(params CreateHabitParams) (Habit, error) {
	row := db.conn.QueryRow(
		"INSERT INTO habits (account_id, name, created_at) "+
			"VALUES ($1, $2, $3) RETURNING id, account_id, name, streak, created_at",
		params.AccountId,
		params.Name,
		time.Now().UTC(),
	)

	var h Habit
	err := row.Scan(
		&h.Id,
		&h.AccountId,
		&h.Name,
		&h.Streak,
		&h.CreatedAt,
	)

	return h, err
}

func (db *PgFocusRepository) ListHabits(accountId int) ([]Habit, error) {
	rows, err := db.conn.Query(
		"SELECT id, account_id, name, streak, last_completed_at, created_at FROM habits "+
			"WHERE account_id = $1 ORDER BY created_at",
		accountId,
	)
	if err != nil {
		return nil, fmt.Errorf("query habits: %w", err)
	}
	defer rows.Close()

	var habits []Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (db *PgFocusRepository) GetHabitById(habitId int) (Habit, error) {
	row := db.conn.QueryRow(
		"SELECT id, account_id, name, streak, last_completed_at, created_at FROM habits "+
			"WHERE id = $1 LIMIT 1",
		habitId,
	)

	return scanHabit(row)
}

func (db *PgFocusRepository) UpdateHabitStreak(habitId, streak int, completedAt time.Time) (Habit, error) {
	row := db.conn.QueryRow(
		"UPDATE habits SET streak = $2, last_completed_at = $3 WHERE id = $1 "+
			"RETURNING id, account_id, name, streak, last_completed_at, created_at",
		habitId,
		streak,
		completedAt,
	)

	return scanHabit(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (Habit, error) {
	var (
		h             Habit
		lastCompleted sql.NullTime
	)

	err := row.Scan(
		&h.Id,
		&h.AccountId,
		&h.Name,
		&h.Streak,
		&lastCompleted,
		&h.CreatedAt,
	)
	if err != nil {
		return Habit{}, err
	}

	if lastCompleted.Valid {
		h.LastCompletedAt = lastCompleted.Time
	}

	return h, nil
}
