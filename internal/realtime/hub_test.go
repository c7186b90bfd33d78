package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeClient records delivered messages for assertions
type fakeClient struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *fakeClient) Deliver(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *fakeClient) messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *fakeClient) lastMessage() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.msgs) == 0 {
		return Message{}, false
	}
	return c.msgs[len(c.msgs)-1], true
}

// TestHubJoinIdempotent tests that joining the same room twice does not
// duplicate membership or deliveries
func TestHubJoinIdempotent(t *testing.T) {
	hub := NewHub()
	client := &fakeClient{}

	hub.Join(client, "chat-1")
	hub.Join(client, "chat-1")

	assert.Equal(t, 1, hub.RoomSize("chat-1"))

	hub.Broadcast("chat-1", Message{Event: "task-created"})
	assert.Len(t, client.messages(), 1)
}

// TestHubRejoinSwitchesRoom tests that joining a new room leaves the old one
func TestHubRejoinSwitchesRoom(t *testing.T) {
	hub := NewHub()
	client := &fakeClient{}

	hub.Join(client, "chat-1")
	hub.Join(client, "chat-2")

	assert.Equal(t, 0, hub.RoomSize("chat-1"))
	assert.Equal(t, 1, hub.RoomSize("chat-2"))

	room, ok := hub.Room(client)
	assert.True(t, ok)
	assert.Equal(t, "chat-2", room)
}

// TestHubLeave tests leave and its no-op on unknown clients
func TestHubLeave(t *testing.T) {
	hub := NewHub()
	client := &fakeClient{}

	// Leaving before joining is a no-op
	hub.Leave(client)

	hub.Join(client, "chat-1")
	hub.Leave(client)

	assert.Equal(t, 0, hub.RoomSize("chat-1"))
	_, ok := hub.Room(client)
	assert.False(t, ok)
}

// TestHubBroadcastIncludesSender tests that every room member receives the
// event, the originator included
func TestHubBroadcastIncludesSender(t *testing.T) {
	hub := NewHub()
	sender := &fakeClient{}
	other := &fakeClient{}

	hub.Join(sender, "chat-1")
	hub.Join(other, "chat-1")

	hub.Broadcast("chat-1", Message{Event: "task-created"})

	assert.Len(t, sender.messages(), 1)
	assert.Len(t, other.messages(), 1)
}

// TestHubBroadcastIsolation tests that rooms never leak events to each other
func TestHubBroadcastIsolation(t *testing.T) {
	hub := NewHub()
	inRoomA := &fakeClient{}
	inRoomB := &fakeClient{}

	hub.Join(inRoomA, "chat-a")
	hub.Join(inRoomB, "chat-b")

	hub.Broadcast("chat-a", Message{Event: "task-created"})

	assert.Len(t, inRoomA.messages(), 1)
	assert.Empty(t, inRoomB.messages())
}

// TestHubConcurrentAccess tests join/leave/broadcast under concurrency
func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			client := &fakeClient{}
			room := fmt.Sprintf("chat-%d", n%4)
			for j := 0; j < 50; j++ {
				hub.Join(client, room)
				hub.Broadcast(room, Message{Event: "task-moved"})
				hub.Leave(client)
			}
		}(i)
	}
	wg.Wait()

	for n := 0; n < 4; n++ {
		assert.Equal(t, 0, hub.RoomSize(fmt.Sprintf("chat-%d", n)))
	}
}
