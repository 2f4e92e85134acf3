package server

import (
	"fmt"

	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/database"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/stats"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/types"
)

// handleOpenChat records which peer the user is viewing, marks the
// peer's messages read and tells the peer they have been seen.
func (ls *LiveServer) handleOpenChat(c *Client, friendId int) {
	ls.activeChats[c.user.Id] = friendId

	if err := ls.db.MarkConversationRead(c.user.Id, friendId); err != nil {
		ls.log.Printf("mark conversation read %d<-%d: %v", c.user.Id, friendId, err)
	}

	ls.emitToUser(friendId, NewServerEvent(EventSeenMessage, SeenMessage{
		ReaderId: c.user.Id,
	}), nil)
}

func (ls *LiveServer) handleCloseChat(c *Client) {
	delete(ls.activeChats, c.user.Id)
}

// isViewing reports whether the user currently has the conversation
// with peer open. A missing pointer means not viewing, so the caller
// falls back to notifying.
func (ls *LiveServer) isViewing(userId, peerId int) bool {
	return ls.activeChats[userId] == peerId
}

// handlePrivateMessage persists and delivers a direct message. The
// read flag is decided at creation time from the recipient's active
// chat pointer; a recipient not viewing the conversation also gets a
// persisted notification. A failed save is logged and the live
// delivery still goes out.
func (ls *LiveServer) handlePrivateMessage(c *Client, payload PrivateMessagePayload) {
	seen := ls.isViewing(payload.RecipientId, c.user.Id)

	msg := types.DirectMessage{
		SenderId:    c.user.Id,
		RecipientId: payload.RecipientId,
		Content:     payload.Content,
		Read:        seen,
		CreatedAt:   Now(),
	}

	saved, err := ls.db.CreateDirectMessage(database.CreateDirectMessageParams{
		SenderId:    msg.SenderId,
		RecipientId: msg.RecipientId,
		Content:     msg.Content,
		Read:        msg.Read,
	})
	if err != nil {
		ls.log.Printf("save direct message %d->%d: %v", msg.SenderId, msg.RecipientId, err)
	} else {
		msg.Id = saved.Id
		msg.CreatedAt = saved.CreatedAt
	}

	ls.stats.Incr(stats.DirectMessages)

	ev := NewServerEvent(EventNewPrivateMessage, msg)
	ls.emitToUser(payload.RecipientId, ev, nil)
	// echo to the sender's other connections so every open client
	// renders the conversation consistently
	ls.emitToUser(c.user.Id, ev, c)

	if seen {
		return
	}

	notification, err := ls.db.CreateNotification(database.CreateNotificationParams{
		AccountId: payload.RecipientId,
		Kind:      types.NotificationKindMessage,
		Body:      fmt.Sprintf("New message from %s", c.user.Username),
	})
	if err != nil {
		ls.log.Printf("save notification for %d: %v", payload.RecipientId, err)
		return
	}

	ls.emitToUser(payload.RecipientId, NewServerEvent(EventNotificationMessage, types.Notification{
		Id:        notification.Id,
		AccountId: notification.AccountId,
		Kind:      notification.Kind,
		Body:      notification.Body,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}), nil)
}
