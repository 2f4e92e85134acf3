package server

import (
	"errors"
	"testing"
	"time"

	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/database"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/stats"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOpenChat_MarksReadAndSignalsPeer(t *testing.T) {
	db := &database.MockFocusRepository{}
	defer db.AssertExpectations(t)
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()
	db.On("MarkConversationRead", 1, 2).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	c1 := newTestClient(ls, types.User{Id: 1, Username: "ada"})
	c2 := newTestClient(ls, types.User{Id: 2, Username: "bob"})
	ls.handleRegister(c1)
	ls.handleRegister(c2)

	ls.handleOpenChat(c1, 2)

	assert.Equal(t, 2, ls.activeChats[1], "expected active chat pointer set")
	assert.True(t, ls.isViewing(1, 2))
	assert.False(t, ls.isViewing(2, 1), "pointer is directional")

	ev := receiveEvent(t, c2)
	assert.Equal(t, EventSeenMessage, ev.Event)
	assert.Equal(t, 1, ev.Data.(SeenMessage).ReaderId)
}

func TestCloseChat_ClearsPointer(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("MarkConversationRead", 1, 2).Return(nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	c1 := newTestClient(ls, types.User{Id: 1, Username: "ada"})
	ls.handleRegister(c1)

	ls.handleOpenChat(c1, 2)
	ls.handleCloseChat(c1)

	assert.NotContains(t, ls.activeChats, 1, "expected pointer cleared")
	assert.False(t, ls.isViewing(1, 2), "missing pointer means not viewing")
}

func TestPrivateMessage_ReadWhenRecipientViewing(t *testing.T) {
	db := &database.MockFocusRepository{}
	defer db.AssertExpectations(t)
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()
	db.On("MarkConversationRead", 2, 1).Return(nil).Once()
	db.On("CreateDirectMessage", database.CreateDirectMessageParams{
		SenderId:    1,
		RecipientId: 2,
		Content:     "hey",
		Read:        true,
	}).Return(database.DirectMessage{
		Id:          7,
		SenderId:    1,
		RecipientId: 2,
		Content:     "hey",
		Read:        true,
		CreatedAt:   time.Now().UTC(),
	}, nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	sender := newTestClient(ls, types.User{Id: 1, Username: "ada"})
	recipient := newTestClient(ls, types.User{Id: 2, Username: "bob"})
	ls.handleRegister(sender)
	ls.handleRegister(recipient)

	ls.handleOpenChat(recipient, 1)
	receiveEvent(t, sender) // seen_message

	ls.handlePrivateMessage(sender, PrivateMessagePayload{RecipientId: 2, Content: "hey"})

	ev := receiveEvent(t, recipient)
	assert.Equal(t, EventNewPrivateMessage, ev.Event)
	msg := ev.Data.(types.DirectMessage)
	assert.True(t, msg.Read, "message to a viewing recipient is read at creation")
	assert.Equal(t, 7, msg.Id, "delivered message carries the persisted id")

	assertNoEvent(t, recipient, "no notification when the recipient is viewing the conversation")
	assertNoEvent(t, sender, "single-connection sender gets no echo")
}

func TestPrivateMessage_NotifiesWhenNotViewing(t *testing.T) {
	db := &database.MockFocusRepository{}
	defer db.AssertExpectations(t)
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()
	db.On("CreateDirectMessage", database.CreateDirectMessageParams{
		SenderId:    1,
		RecipientId: 2,
		Content:     "hey",
		Read:        false,
	}).Return(database.DirectMessage{
		Id:          8,
		SenderId:    1,
		RecipientId: 2,
		Content:     "hey",
		CreatedAt:   time.Now().UTC(),
	}, nil).Once()
	db.On("CreateNotification", database.CreateNotificationParams{
		AccountId: 2,
		Kind:      types.NotificationKindMessage,
		Body:      "New message from ada",
	}).Return(database.Notification{
		Id:        3,
		AccountId: 2,
		Kind:      types.NotificationKindMessage,
		Body:      "New message from ada",
		CreatedAt: time.Now().UTC(),
	}, nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	sender := newTestClient(ls, types.User{Id: 1, Username: "ada"})
	recipient := newTestClient(ls, types.User{Id: 2, Username: "bob"})
	ls.handleRegister(sender)
	ls.handleRegister(recipient)

	ls.handlePrivateMessage(sender, PrivateMessagePayload{RecipientId: 2, Content: "hey"})

	ev := receiveEvent(t, recipient)
	assert.Equal(t, EventNewPrivateMessage, ev.Event)
	assert.False(t, ev.Data.(types.DirectMessage).Read, "message is created unread without an open chat")

	ev = receiveEvent(t, recipient)
	assert.Equal(t, EventNotificationMessage, ev.Event)
	notification := ev.Data.(types.Notification)
	assert.Equal(t, types.NotificationKindMessage, notification.Kind)
	assert.Equal(t, 2, notification.AccountId)
}

func TestPrivateMessage_EchoesToSendersOtherConnections(t *testing.T) {
	db := &database.MockFocusRepository{}
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("CreateDirectMessage", mock.Anything).Return(database.DirectMessage{Id: 9}, nil).Once()
	db.On("CreateNotification", mock.Anything).Return(database.Notification{Id: 4}, nil).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	ada := types.User{Id: 1, Username: "ada"}
	c1 := newTestClient(ls, ada)
	c2 := newTestClient(ls, ada)
	ls.handleRegister(c1)
	ls.handleRegister(c2)

	ls.handlePrivateMessage(c1, PrivateMessagePayload{RecipientId: 2, Content: "note to bob"})

	ev := receiveEvent(t, c2)
	assert.Equal(t, EventNewPrivateMessage, ev.Event, "the sender's other connection gets the echo")
	assertNoEvent(t, c1, "the originating connection gets no echo")
}

func TestPrivateMessage_PersistFailureStillDelivers(t *testing.T) {
	db := &database.MockFocusRepository{}
	defer db.AssertExpectations(t)
	db.On("SetOnlineStatus", 1, true).Return(nil).Once()
	db.On("SetOnlineStatus", 2, true).Return(nil).Once()
	db.On("CreateDirectMessage", mock.Anything).
		Return(database.DirectMessage{}, errors.New("db down")).Once()
	db.On("CreateNotification", mock.Anything).
		Return(database.Notification{}, errors.New("db down")).Once()

	ls := newTestLiveServer(t, db, &stats.MockStatsUpdater{})

	sender := newTestClient(ls, types.User{Id: 1, Username: "ada"})
	recipient := newTestClient(ls, types.User{Id: 2, Username: "bob"})
	ls.handleRegister(sender)
	ls.handleRegister(recipient)

	ls.handlePrivateMessage(sender, PrivateMessagePayload{RecipientId: 2, Content: "hey"})

	ev := receiveEvent(t, recipient)
	assert.Equal(t, EventNewPrivateMessage, ev.Event,
		"live delivery is independent of persistence")
	assertNoEvent(t, recipient, "failed notification save emits no notification event")
}
