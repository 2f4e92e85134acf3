package server

import (
	"testing"

	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/testutil"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestQueueEvent(t *testing.T) {
	c := NewClient(types.User{Id: 1, Username: "ada"}, nil, nil, testutil.TestLogger(t))

	ev := NewServerEvent(EventNewMessage, nil)
	assert.True(t, c.queueEvent(ev))

	got := <-c.send
	assert.Equal(t, ev, got)
}

func TestQueueEvent_DropsWhenFull(t *testing.T) {
	c := NewClient(types.User{Id: 1, Username: "ada"}, nil, nil, testutil.TestLogger(t))

	ev := NewServerEvent(EventNewMessage, nil)
	for i := 0; i < cap(c.send); i++ {
		assert.True(t, c.queueEvent(ev))
	}

	// queue is at capacity, the next enqueue is dropped
	assert.False(t, c.queueEvent(ev))
	assert.Len(t, c.send, cap(c.send))
}
