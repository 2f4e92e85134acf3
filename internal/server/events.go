package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/types"
)

// Inbound event names.
const (
	EventJoinRoom       = "joinRoom"
	EventSendMessage    = "sendMessage"
	EventAddReaction    = "addReaction"
	EventSetTyping      = "setTyping"
	EventPrivateMessage = "private_message"
	EventOpenChat       = "open_chat"
	EventCloseChat      = "close_chat"
)

// Outbound event names.
const (
	EventRoomState           = "roomState"
	EventUserJoined          = "userJoined"
	EventUserLeft            = "userLeft"
	EventNewMessage          = "newMessage"
	EventReactionAdded       = "reactionAdded"
	EventTypingStatusChanged = "typingStatusChanged"
	EventNewPrivateMessage   = "new_private_message"
	EventNotificationMessage = "notification:message"
	EventAchievementUnlocked = "notification:achievement:unlocked"
	EventSeenMessage         = "seen_message"
	EventError               = "error"
)

// ClientEvent is the envelope for everything a connection sends.
type ClientEvent struct {
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
	client *Client
}

// ServerEvent is the envelope for everything sent to a connection.
type ServerEvent struct {
	Event     string    `json:"event"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type JoinRoomPayload struct {
	RoomCode string            `json:"roomCode"`
	User     types.Participant `json:"user"`
}

type SendMessagePayload struct {
	Content string `json:"content"`
}

type ReactionPayload struct {
	MessageIndex int    `json:"messageIndex"`
	Emoji        string `json:"emoji"`
}

type TypingPayload struct {
	Typing bool `json:"typing"`
}

type PrivateMessagePayload struct {
	RecipientId int    `json:"recipientId"`
	Content     string `json:"content"`
}

type ChatPayload struct {
	FriendId int `json:"friendId"`
}

type RoomState struct {
	RoomCode     string              `json:"roomCode"`
	Participants []types.Participant `json:"participants"`
	Messages     []types.RoomMessage `json:"messages"`
}

type UserJoined struct {
	RoomCode string            `json:"roomCode"`
	User     types.Participant `json:"user"`
}

type UserLeft struct {
	RoomCode string            `json:"roomCode"`
	User     types.Participant `json:"user"`
}

type NewMessage struct {
	RoomCode string            `json:"roomCode"`
	Message  types.RoomMessage `json:"message"`
}

type ReactionAdded struct {
	RoomCode     string `json:"roomCode"`
	UserId       int    `json:"userId"`
	MessageIndex int    `json:"messageIndex"`
	Emoji        string `json:"emoji"`
}

type TypingStatusChanged struct {
	RoomCode string `json:"roomCode"`
	UserId   int    `json:"userId"`
	Username string `json:"username"`
	Typing   bool   `json:"typing"`
}

type SeenMessage struct {
	ReaderId int `json:"readerId"`
}

type AchievementUnlocked struct {
	Level int    `json:"level"`
	Xp    int    `json:"xp"`
	Title string `json:"title"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewServerEvent(event string, data any) *ServerEvent {
	return &ServerEvent{
		Event:     event,
		Data:      data,
		Timestamp: Now(),
	}
}

func ErrInvalidEvent() *ServerEvent {
	return NewServerEvent(EventError, ErrorPayload{
		Code:    http.StatusBadRequest,
		Message: "invalid event format",
	})
}

func ErrNotInRoom() *ServerEvent {
	return NewServerEvent(EventError, ErrorPayload{
		Code:    http.StatusConflict,
		Message: "not in a room",
	})
}

func ErrServiceUnavailable() *ServerEvent {
	return NewServerEvent(EventError, ErrorPayload{
		Code:    http.StatusServiceUnavailable,
		Message: "service unavailable",
	})
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
