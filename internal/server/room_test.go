package server

import (
	"testing"

	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/database"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/stats"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/types"
	"github.com/stretchr/testify/assert"
)

func joinTestRoom(ls *LiveServer, c *Client, code string) {
	ls.handleRegister(c)
	ls.handleJoinRoom(c, JoinRoomPayload{RoomCode: code})
}

func TestJoinRoom_CreatesLazily(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})
	c := newTestClient(ls, types.User{Id: 1, Username: "ada"})

	joinTestRoom(ls, c, "R1")

	room, ok := ls.rooms["R1"]
	assert.True(t, ok, "expected room to be created on first join")
	assert.Equal(t, "R1", ls.clientRooms[c], "expected connection indexed to the room")
	assert.Equal(t, []types.Participant{{Id: 1, Username: "ada"}}, room.participants)

	ev := receiveEvent(t, c)
	assert.Equal(t, EventRoomState, ev.Event, "joiner receives the full room state")
	state, ok := ev.Data.(RoomState)
	assert.True(t, ok, "expected RoomState payload")
	assert.Equal(t, "R1", state.RoomCode)
	assert.Len(t, state.Participants, 1)
	assert.Empty(t, state.Messages)
}

func TestJoinRoom_DedupByUserId(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	ada := types.User{Id: 1, Username: "ada"}
	bob := types.User{Id: 2, Username: "bob"}

	c1 := newTestClient(ls, ada)
	c2 := newTestClient(ls, ada)
	c3 := newTestClient(ls, bob)

	joinTestRoom(ls, c1, "R1")
	joinTestRoom(ls, c3, "R1")
	receiveEvent(t, c1) // roomState
	receiveEvent(t, c1) // bob joined
	receiveEvent(t, c3) // roomState

	// a second connection for the same user must not duplicate the roster
	joinTestRoom(ls, c2, "R1")

	room := ls.rooms["R1"]
	assert.Equal(t, []types.Participant{
		{Id: 1, Username: "ada"},
		{Id: 2, Username: "bob"},
	}, room.participants, "roster keeps exactly one entry per user id")

	assert.Equal(t, EventRoomState, receiveEvent(t, c2).Event)
	assertNoEvent(t, c1, "reconnect under the same user id is not re-announced")
	assertNoEvent(t, c3, "reconnect under the same user id is not re-announced")
}

func TestJoinRoom_AnnouncesToOthersOnly(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	c1 := newTestClient(ls, types.User{Id: 1, Username: "ada"})
	c2 := newTestClient(ls, types.User{Id: 2, Username: "bob"})

	joinTestRoom(ls, c1, "R1")
	receiveEvent(t, c1) // roomState

	joinTestRoom(ls, c2, "R1")
	assert.Equal(t, EventRoomState, receiveEvent(t, c2).Event)
	assertNoEvent(t, c2)

	ev := receiveEvent(t, c1)
	assert.Equal(t, EventUserJoined, ev.Event)
	joined, ok := ev.Data.(UserJoined)
	assert.True(t, ok, "expected UserJoined payload")
	assert.Equal(t, 2, joined.User.Id)
}

func TestJoinRoom_SwitchingRoomsLeavesPrevious(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})
	c := newTestClient(ls, types.User{Id: 1, Username: "ada"})

	joinTestRoom(ls, c, "R1")
	ls.handleJoinRoom(c, JoinRoomPayload{RoomCode: "R2"})

	assert.Equal(t, "R2", ls.clientRooms[c], "a connection is in at most one room")
	assert.Empty(t, ls.rooms["R1"].participants, "previous roster entry is dropped")
	assert.Len(t, ls.rooms["R2"].participants, 1)
}

func TestRoomMessage_OrderedFanout(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	c1 := newTestClient(ls, types.User{Id: 1, Username: "ada"})
	c2 := newTestClient(ls, types.User{Id: 2, Username: "bob"})

	joinTestRoom(ls, c1, "R1")
	joinTestRoom(ls, c2, "R1")
	receiveEvent(t, c1) // roomState
	receiveEvent(t, c1) // bob joined
	receiveEvent(t, c2) // roomState

	ls.handleRoomMessage(c1, SendMessagePayload{Content: "first"})
	ls.handleRoomMessage(c2, SendMessagePayload{Content: "second"})

	room := ls.rooms["R1"]
	assert.Len(t, room.messages, 2, "history is append-only")
	assert.Equal(t, "first", room.messages[0].Content)
	assert.Equal(t, "second", room.messages[1].Content)

	// every member, sender included, sees both messages in order
	for _, c := range []*Client{c1, c2} {
		ev := receiveEvent(t, c)
		assert.Equal(t, EventNewMessage, ev.Event)
		assert.Equal(t, "first", ev.Data.(NewMessage).Message.Content)

		ev = receiveEvent(t, c)
		assert.Equal(t, EventNewMessage, ev.Event)
		assert.Equal(t, "second", ev.Data.(NewMessage).Message.Content)
	}
}

func TestRoomMessage_NotInRoom(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})
	c := newTestClient(ls, types.User{Id: 1, Username: "ada"})
	ls.handleRegister(c)

	ls.handleRoomMessage(c, SendMessagePayload{Content: "into the void"})

	ev := receiveEvent(t, c)
	assert.Equal(t, EventError, ev.Event, "messaging outside a room yields an error event")
}

func TestTyping_ExcludesSender(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	c1 := newTestClient(ls, types.User{Id: 1, Username: "ada"})
	c2 := newTestClient(ls, types.User{Id: 2, Username: "bob"})

	joinTestRoom(ls, c1, "R1")
	joinTestRoom(ls, c2, "R1")
	receiveEvent(t, c1)
	receiveEvent(t, c1)
	receiveEvent(t, c2)

	ls.handleTyping(c1, TypingPayload{Typing: true})

	assertNoEvent(t, c1, "typing must never echo to the originator")

	ev := receiveEvent(t, c2)
	assert.Equal(t, EventTypingStatusChanged, ev.Event)
	typing := ev.Data.(TypingStatusChanged)
	assert.Equal(t, 1, typing.UserId)
	assert.True(t, typing.Typing)
}

func TestReaction_BroadcastsToAll(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	c1 := newTestClient(ls, types.User{Id: 1, Username: "ada"})
	c2 := newTestClient(ls, types.User{Id: 2, Username: "bob"})

	joinTestRoom(ls, c1, "R1")
	joinTestRoom(ls, c2, "R1")
	receiveEvent(t, c1)
	receiveEvent(t, c1)
	receiveEvent(t, c2)

	ls.handleReaction(c1, ReactionPayload{MessageIndex: 0, Emoji: "🔥"})

	for _, c := range []*Client{c1, c2} {
		ev := receiveEvent(t, c)
		assert.Equal(t, EventReactionAdded, ev.Event)
		reaction := ev.Data.(ReactionAdded)
		assert.Equal(t, "🔥", reaction.Emoji)
	}

	assert.Empty(t, ls.rooms["R1"].messages, "reactions are not recorded in room history")
}

func TestLeaveRoom_RosterKeyedByUserId(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	ada := types.User{Id: 1, Username: "ada"}
	c1 := newTestClient(ls, ada)
	c2 := newTestClient(ls, ada)
	c3 := newTestClient(ls, types.User{Id: 2, Username: "bob"})

	joinTestRoom(ls, c1, "R1")
	joinTestRoom(ls, c2, "R1")
	joinTestRoom(ls, c3, "R1")
	for i := 0; i < 2; i++ {
		receiveEvent(t, c1)
	}
	receiveEvent(t, c2)
	receiveEvent(t, c2)
	receiveEvent(t, c3)

	// dropping one of two connections keeps the roster entry
	ls.handleDeregister(c1)
	room := ls.rooms["R1"]
	assert.True(t, room.hasUser(1), "roster entry stays while the user has a connection in the room")
	assertNoEvent(t, c2)
	assertNoEvent(t, c3)

	// dropping the last connection removes the entry and announces it
	ls.handleDeregister(c2)
	assert.False(t, room.hasUser(1), "last connection leaving removes the roster entry")

	ev := receiveEvent(t, c3)
	assert.Equal(t, EventUserLeft, ev.Event)
	assert.Equal(t, 1, ev.Data.(UserLeft).User.Id)
}

// End-to-end walk through the join/message/disconnect lifecycle.
func TestRoomLifecycleScenario(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()
	db.On("SetOnlineStatus", 1, false).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	c1 := newTestClient(ls, types.User{Id: 1, Username: "alice"})
	c2 := newTestClient(ls, types.User{Id: 2, Username: "ben"})

	joinTestRoom(ls, c1, "R1")
	joinTestRoom(ls, c2, "R1")
	receiveEvent(t, c1) // roomState
	receiveEvent(t, c1) // ben joined
	receiveEvent(t, c2) // roomState

	ls.handleRoomMessage(c1, SendMessagePayload{Content: "hi"})

	room := ls.rooms["R1"]
	assert.Len(t, room.messages, 1)
	assert.Equal(t, "hi", room.messages[0].Content)

	ev := receiveEvent(t, c2)
	assert.Equal(t, EventNewMessage, ev.Event)
	assert.Equal(t, "hi", ev.Data.(NewMessage).Message.Content)

	ls.handleDeregister(c1)

	assert.Equal(t, []types.Participant{{Id: 2, Username: "ben"}}, room.participants,
		"disconnect leaves only the remaining participant on the roster")
	assert.Len(t, room.messages, 1, "history survives a participant leaving")
}
