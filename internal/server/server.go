package server

import (
	"context"
	"encoding/json"
	"log"

	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/database"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/stats"
)

type stopReq struct {
	done chan struct{}
}

type presenceQuery struct {
	userId int
	reply  chan bool
}

// UserEvent targets every live connection of one user.
type UserEvent struct {
	UserId  int
	Event   *ServerEvent
	Exclude *Client
}

// LiveServer owns the live-session registries: user presence, rooms,
// the connection-to-room index and the active-chat pointers. All of
// them are mutated only by the Run goroutine; everything else talks to
// it through channels.
type LiveServer struct {
	log   *log.Logger
	db    database.FocusRepository
	stats stats.StatsProvider

	registerChan   chan *Client
	deregisterChan chan *Client
	eventChan      chan *ClientEvent
	broadcastChan  chan *UserEvent
	presenceChan   chan *presenceQuery
	stop           chan stopReq
	done           chan struct{}

	userConns   map[int]map[*Client]struct{}
	rooms       map[string]*Room
	clientRooms map[*Client]string
	activeChats map[int]int
}

func NewLiveServer(logger *log.Logger, db database.FocusRepository, sp stats.StatsProvider) (*LiveServer, error) {
	ls := &LiveServer{
		log:            logger,
		db:             db,
		stats:          sp,
		registerChan:   make(chan *Client),
		deregisterChan: make(chan *Client),
		eventChan:      make(chan *ClientEvent, 256),
		broadcastChan:  make(chan *UserEvent, 256),
		presenceChan:   make(chan *presenceQuery),
		stop:           make(chan stopReq),
		done:           make(chan struct{}),
		userConns:      make(map[int]map[*Client]struct{}),
		rooms:          make(map[string]*Room),
		clientRooms:    make(map[*Client]string),
		activeChats:    make(map[int]int),
	}

	for _, metric := range []string{
		stats.LiveConnections,
		stats.OnlineUsers,
		stats.ActiveRooms,
		stats.MessagesRelayed,
		stats.DirectMessages,
	} {
		sp.RegisterMetric(metric)
	}

	return ls, nil
}

func (ls *LiveServer) Run() {
	for {
		select {
		case c := <-ls.registerChan:
			ls.handleRegister(c)
		case c := <-ls.deregisterChan:
			ls.handleDeregister(c)
		case ev := <-ls.eventChan:
			ls.handleEvent(ev)
		case ue := <-ls.broadcastChan:
			ls.emitToUser(ue.UserId, ue.Event, ue.Exclude)
		case q := <-ls.presenceChan:
			q.reply <- len(ls.userConns[q.userId]) > 0
		case req := <-ls.stop:
			ls.log.Println("live server stopping")
			for _, conns := range ls.userConns {
				for c := range conns {
					c.stopClient()
				}
			}

			close(ls.done)
			if req.done != nil {
				close(req.done)
			}
			return
		}
	}
}

// RegisterClient hands a freshly upgraded connection to the live
// server.
func (ls *LiveServer) RegisterClient(c *Client) {
	select {
	case ls.registerChan <- c:
	case <-ls.done:
	}
}

// EmitToUser delivers an event to every live connection of a user.
// Offline users and full queues are silently skipped.
func (ls *LiveServer) EmitToUser(userId int, event string, data any) {
	ue := &UserEvent{UserId: userId, Event: NewServerEvent(event, data)}
	select {
	case ls.broadcastChan <- ue:
	default:
		ls.log.Printf("broadcast channel full, dropping %q for user %d", event, userId)
	}
}

// IsOnline reports whether the user has at least one open connection.
func (ls *LiveServer) IsOnline(userId int) bool {
	q := &presenceQuery{userId: userId, reply: make(chan bool, 1)}
	select {
	case ls.presenceChan <- q:
		return <-q.reply
	case <-ls.done:
		return false
	}
}

func (ls *LiveServer) Shutdown(ctx context.Context) error {
	req := stopReq{done: make(chan struct{})}
	select {
	case ls.stop <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ls *LiveServer) handleRegister(c *Client) {
	ls.log.Printf("adding connection %s for %q", c.id, c.user.Username)

	first := len(ls.userConns[c.user.Id]) == 0
	if first {
		ls.userConns[c.user.Id] = make(map[*Client]struct{})
	}
	ls.userConns[c.user.Id][c] = struct{}{}
	ls.stats.Incr(stats.LiveConnections)

	if first {
		ls.stats.Incr(stats.OnlineUsers)
		if err := ls.db.SetOnlineStatus(c.user.Id, true); err != nil {
			ls.log.Printf("set online status for %d: %v", c.user.Id, err)
		}
	}
}

// handleDeregister runs the disconnect cascade: room leave, active
// chat cleanup and the offline transition when the last connection
// closes. Unknown connections are a no-op.
func (ls *LiveServer) handleDeregister(c *Client) {
	conns, ok := ls.userConns[c.user.Id]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}

	ls.log.Printf("removing connection %s for %q", c.id, c.user.Username)
	ls.leaveRoom(c)

	delete(conns, c)
	ls.stats.Decr(stats.LiveConnections)

	if len(conns) == 0 {
		delete(ls.userConns, c.user.Id)
		delete(ls.activeChats, c.user.Id)
		ls.stats.Decr(stats.OnlineUsers)
		if err := ls.db.SetOnlineStatus(c.user.Id, false); err != nil {
			ls.log.Printf("set online status for %d: %v", c.user.Id, err)
		}
	}
}

func (ls *LiveServer) handleEvent(ev *ClientEvent) {
	c := ev.client

	switch ev.Event {
	case EventJoinRoom:
		var payload JoinRoomPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil || payload.RoomCode == "" {
			c.queueEvent(ErrInvalidEvent())
			return
		}
		ls.handleJoinRoom(c, payload)
	case EventSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			c.queueEvent(ErrInvalidEvent())
			return
		}
		ls.handleRoomMessage(c, payload)
	case EventAddReaction:
		var payload ReactionPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			c.queueEvent(ErrInvalidEvent())
			return
		}
		ls.handleReaction(c, payload)
	case EventSetTyping:
		var payload TypingPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			c.queueEvent(ErrInvalidEvent())
			return
		}
		ls.handleTyping(c, payload)
	case EventPrivateMessage:
		var payload PrivateMessagePayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil || payload.RecipientId == 0 {
			c.queueEvent(ErrInvalidEvent())
			return
		}
		ls.handlePrivateMessage(c, payload)
	case EventOpenChat:
		var payload ChatPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil || payload.FriendId == 0 {
			c.queueEvent(ErrInvalidEvent())
			return
		}
		ls.handleOpenChat(c, payload.FriendId)
	case EventCloseChat:
		ls.handleCloseChat(c)
	default:
		ls.log.Printf("unknown event %q from %q", ev.Event, c.user.Username)
		c.queueEvent(ErrInvalidEvent())
	}
}

func (ls *LiveServer) emitToUser(userId int, ev *ServerEvent, exclude *Client) {
	for c := range ls.userConns[userId] {
		if c == exclude {
			continue
		}
		c.queueEvent(ev)
	}
}
