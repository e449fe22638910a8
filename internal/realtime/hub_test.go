package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		send:   make(chan Message, 8),
	}
}

func recv(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return &msg
	case <-time.After(time.Second):
		return nil
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	// nil pub/sub: local-only delivery
	h := NewHub(zap.NewNop(), nil, nil)
	a := newTestClient(uuid.New())
	b := newTestClient(uuid.New())
	h.Register(a)
	h.Register(b)

	h.Broadcast(EventClubCreated, map[string]string{"name": "chess"})

	for _, c := range []*Client{a, b} {
		msg := recv(t, c)
		if assert.NotNil(t, msg) {
			assert.Equal(t, EventClubCreated, msg.Event)
			assert.JSONEq(t, `{"name":"chess"}`, string(msg.Data))
		}
	}
}

func TestHubNotifyUserTargetsOneUser(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)
	target := newTestClient(uuid.New())
	other := newTestClient(uuid.New())
	h.Register(target)
	h.Register(other)

	h.NotifyUser(target.UserID, EventSessionUpdated, nil)

	msg := recv(t, target)
	if assert.NotNil(t, msg) {
		assert.Equal(t, EventSessionUpdated, msg.Event)
	}
	select {
	case <-other.send:
		t.Fatal("untargeted client received a targeted message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)
	c := newTestClient(uuid.New())
	h.Register(c)
	h.Unregister(c)

	h.Broadcast(EventEventDeleted, nil)

	select {
	case <-c.send:
		t.Fatal("unregistered client received a message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFullBufferDoesNotBlock(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)
	c := &Client{ID: uuid.New().String(), UserID: uuid.New(), send: make(chan Message)} // unbuffered, never drained
	h.Register(c)

	done := make(chan struct{})
	go func() {
		h.Broadcast(EventEventUpdated, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}
