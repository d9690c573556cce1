package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Subscriber that keeps what it was sent. A positive capacity
// makes it refuse sends once that many messages are held.
type recorder struct {
	id       string
	userID   int32
	capacity int

	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func newRecorder(id string, userID int32) *recorder {
	return &recorder{id: id, userID: userID}
}

func (r *recorder) ID() string    { return r.id }
func (r *recorder) UserID() int32 { return r.userID }

func (r *recorder) Send(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClientClosed
	}
	if r.capacity > 0 && len(r.messages) >= r.capacity {
		return ErrSlowClient
	}
	r.messages = append(r.messages, data)
	return nil
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recorder) received() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]Event, 0, len(r.messages))
	for _, m := range r.messages {
		var e Event
		if err := json.Unmarshal(m, &e); err == nil {
			events = append(events, e)
		}
	}
	return events
}

func (r *recorder) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	a := newRecorder("a", 1)
	b := newRecorder("b", 1)
	c := newRecorder("c", 2)
	for _, r := range []*recorder{a, b, c} {
		require.NoError(t, hub.Register(r))
	}

	assert.Equal(t, 2, hub.ClientCount(1))
	assert.Equal(t, 1, hub.ClientCount(2))
	assert.Equal(t, 0, hub.ClientCount(99))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(a)
	hub.Unregister(a)
	assert.Equal(t, 1, hub.ClientCount(1))

	hub.Unregister(newRecorder("never-registered", 7))
	hub.Unregister(b)
	hub.Unregister(c)
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHubPublishReachesOnlyListedUsers(t *testing.T) {
	hub := NewHub()
	requesterTab1 := newRecorder("req-1", 10)
	requesterTab2 := newRecorder("req-2", 10)
	manager := newRecorder("mgr", 20)
	bystander := newRecorder("other", 30)
	for _, r := range []*recorder{requesterTab1, requesterTab2, manager, bystander} {
		require.NoError(t, hub.Register(r))
	}

	hub.Publish(RequisitionApproved(map[string]interface{}{"id": 5}), 10, 20)

	for _, r := range []*recorder{requesterTab1, requesterTab2, manager} {
		events := r.received()
		require.Len(t, events, 1, r.id)
		assert.Equal(t, "requisition.approved", events[0].Type)
	}
	assert.Empty(t, bystander.received())
}

func TestHubPublishDeduplicatesRecipients(t *testing.T) {
	hub := NewHub()
	manager := newRecorder("mgr", 20)
	require.NoError(t, hub.Register(manager))

	// A manager submitting against their own cost center is both requester and manager
	hub.Publish(RequisitionCreated(nil), 20, 20)

	assert.Len(t, manager.received(), 1)
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	require.NotPanics(t, func() {
		hub.Publish(RequisitionRejected(nil), 1, 2)
		hub.Publish(RequisitionRejected(nil))
	})
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	slow := newRecorder("slow", 1)
	slow.capacity = 1
	healthy := newRecorder("healthy", 1)
	require.NoError(t, hub.Register(slow))
	require.NoError(t, hub.Register(healthy))

	hub.Publish(RequisitionCreated(nil), 1)
	hub.Publish(RequisitionCreated(nil), 1)

	assert.True(t, slow.isClosed())
	assert.Equal(t, 1, hub.ClientCount(1))
	assert.Len(t, healthy.received(), 2)
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()
	const n = 50
	clients := make([]*recorder, n)
	for i := range clients {
		clients[i] = newRecorder(fmt.Sprintf("client-%d", i), int32(i%5))
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *recorder) {
			defer wg.Done()
			assert.NoError(t, hub.Register(c))
		}(c)
	}
	wg.Wait()
	assert.Equal(t, n, hub.TotalClientCount())

	for i, c := range clients {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			hub.Publish(RequisitionCreated(map[string]interface{}{"id": i}), int32(i%5))
		}(i)
		go func(c *recorder) {
			defer wg.Done()
			hub.Unregister(c)
		}(c)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub()
	a := newRecorder("a", 1)
	b := newRecorder("b", 2)
	require.NoError(t, hub.Register(a))
	require.NoError(t, hub.Register(b))

	hub.Shutdown()

	assert.Equal(t, 0, hub.TotalClientCount())
	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())
	assert.ErrorIs(t, hub.Register(newRecorder("late", 3)), ErrHubClosed)
	require.NotPanics(t, func() { hub.Unregister(a) })
}
