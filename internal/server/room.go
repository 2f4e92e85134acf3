package server

import (
	"slices"

	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/stats"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/types"
)

// Room is an ad hoc collaboration session keyed by an externally
// supplied code. Created lazily on first join, never destroyed while
// the process lives. The roster is deduped by user id and the message
// history is append-only.
type Room struct {
	code         string
	participants []types.Participant
	messages     []types.RoomMessage
	clients      map[*Client]struct{}
}

func (r *Room) hasUser(userId int) bool {
	return slices.ContainsFunc(r.participants, func(p types.Participant) bool {
		return p.Id == userId
	})
}

// connsForUser counts this user's connections currently in the room.
func (r *Room) connsForUser(userId int) int {
	var n int
	for c := range r.clients {
		if c.user.Id == userId {
			n++
		}
	}
	return n
}

func (ls *LiveServer) getOrCreateRoom(code string) *Room {
	room, ok := ls.rooms[code]
	if !ok {
		ls.log.Printf("creating room %q", code)
		room = &Room{
			code:    code,
			clients: make(map[*Client]struct{}),
		}
		ls.rooms[code] = room
		ls.stats.Incr(stats.ActiveRooms)
	}

	return room
}

func (ls *LiveServer) handleJoinRoom(c *Client, payload JoinRoomPayload) {
	// a connection is in at most one room at a time
	if prev, ok := ls.clientRooms[c]; ok && prev != payload.RoomCode {
		ls.leaveRoom(c)
	}

	room := ls.getOrCreateRoom(payload.RoomCode)
	if _, ok := room.clients[c]; ok {
		// duplicate join on the same connection, just resend the state
		c.queueEvent(NewServerEvent(EventRoomState, RoomState{
			RoomCode:     room.code,
			Participants: room.participants,
			Messages:     room.messages,
		}))
		return
	}

	participant := types.Participant{Id: c.user.Id, Username: c.user.Username}
	if payload.User.Username != "" {
		participant.Username = payload.User.Username
	}

	newParticipant := !room.hasUser(c.user.Id)
	if newParticipant {
		room.participants = append(room.participants, participant)
	}

	room.clients[c] = struct{}{}
	ls.clientRooms[c] = room.code

	// full state to the joiner only
	c.queueEvent(NewServerEvent(EventRoomState, RoomState{
		RoomCode:     room.code,
		Participants: room.participants,
		Messages:     room.messages,
	}))

	// a reconnect under the same user id does not re-announce the user
	if newParticipant {
		ls.emitToRoom(room, NewServerEvent(EventUserJoined, UserJoined{
			RoomCode: room.code,
			User:     participant,
		}), c)
	}
}

// leaveRoom removes the connection from its room, if any. The roster
// entry goes away only when this was the user's last connection in the
// room, matching the join-time dedup key.
func (ls *LiveServer) leaveRoom(c *Client) {
	code, ok := ls.clientRooms[c]
	if !ok {
		return
	}

	delete(ls.clientRooms, c)

	room, ok := ls.rooms[code]
	if !ok {
		return
	}

	delete(room.clients, c)

	if room.connsForUser(c.user.Id) > 0 {
		return
	}

	idx := slices.IndexFunc(room.participants, func(p types.Participant) bool {
		return p.Id == c.user.Id
	})
	if idx < 0 {
		return
	}

	left := room.participants[idx]
	room.participants = slices.Delete(room.participants, idx, idx+1)

	ls.emitToRoom(room, NewServerEvent(EventUserLeft, UserLeft{
		RoomCode: room.code,
		User:     left,
	}), nil)
}

func (ls *LiveServer) handleRoomMessage(c *Client, payload SendMessagePayload) {
	room := ls.roomFor(c)
	if room == nil {
		c.queueEvent(ErrNotInRoom())
		return
	}

	msg := types.RoomMessage{
		Sender:    types.Participant{Id: c.user.Id, Username: c.user.Username},
		Content:   payload.Content,
		Timestamp: Now(),
	}
	room.messages = append(room.messages, msg)
	ls.stats.Incr(stats.MessagesRelayed)

	// everyone in the room sees the message, sender included
	ls.emitToRoom(room, NewServerEvent(EventNewMessage, NewMessage{
		RoomCode: room.code,
		Message:  msg,
	}), nil)
}

func (ls *LiveServer) handleReaction(c *Client, payload ReactionPayload) {
	room := ls.roomFor(c)
	if room == nil {
		c.queueEvent(ErrNotInRoom())
		return
	}

	ls.emitToRoom(room, NewServerEvent(EventReactionAdded, ReactionAdded{
		RoomCode:     room.code,
		UserId:       c.user.Id,
		MessageIndex: payload.MessageIndex,
		Emoji:        payload.Emoji,
	}), nil)
}

func (ls *LiveServer) handleTyping(c *Client, payload TypingPayload) {
	room := ls.roomFor(c)
	if room == nil {
		c.queueEvent(ErrNotInRoom())
		return
	}

	ls.emitToRoom(room, NewServerEvent(EventTypingStatusChanged, TypingStatusChanged{
		RoomCode: room.code,
		UserId:   c.user.Id,
		Username: c.user.Username,
		Typing:   payload.Typing,
	}), c)
}

func (ls *LiveServer) roomFor(c *Client) *Room {
	code, ok := ls.clientRooms[c]
	if !ok {
		return nil
	}

	return ls.rooms[code]
}

func (ls *LiveServer) emitToRoom(room *Room, ev *ServerEvent, exclude *Client) {
	for c := range room.clients {
		if c == exclude {
			continue
		}
		c.queueEvent(ev)
	}
}
