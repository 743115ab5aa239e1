package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToSubscriber(t *testing.T) {
	b := New()
	defer b.Close()

	got := make(chan Message, 1)
	_, err := b.Subscribe("/topic", func(m Message) { got <- m })
	require.NoError(t, err)

	stamp := time.Unix(1700000000, 0)
	b.Publish("/topic", stamp, "payload")

	select {
	case m := <-got:
		assert.Equal(t, "/topic", m.Topic)
		assert.Equal(t, stamp, m.Stamp)
		assert.Equal(t, "payload", m.Payload)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestBus_FIFOPerSubscription(t *testing.T) {
	b := New()
	defer b.Close()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})

	_, err := b.Subscribe("/seq", func(m Message) {
		mu.Lock()
		order = append(order, m.Payload.(int))
		n := len(order)
		mu.Unlock()
		if n == 10 {
			close(done)
		}
	})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		b.Publish("/seq", time.Now(), i)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("not all messages delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		assert.Equal(t, i, v, "delivery must be FIFO within a stream")
	}
}

func TestBus_TopicsAreIndependent(t *testing.T) {
	b := New()
	defer b.Close()

	gotA := make(chan Message, 1)
	gotB := make(chan Message, 1)
	_, err := b.Subscribe("/a", func(m Message) { gotA <- m })
	require.NoError(t, err)
	_, err = b.Subscribe("/b", func(m Message) { gotB <- m })
	require.NoError(t, err)

	b.Publish("/a", time.Now(), "for-a")

	select {
	case m := <-gotA:
		assert.Equal(t, "for-a", m.Payload)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	select {
	case <-gotB:
		t.Fatal("subscriber on /b must not see /a traffic")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_DropsWhenQueueFull(t *testing.T) {
	b := New()
	defer b.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	_, err := b.Subscribe("/slow", func(m Message) {
		once.Do(func() { close(started) })
		<-block
	})
	require.NoError(t, err)

	// First message occupies the handler, the next subQueueDepth fill the
	// queue, everything after that is dropped.
	b.Publish("/slow", time.Now(), 0)
	<-started
	for i := 0; i < subQueueDepth+5; i++ {
		b.Publish("/slow", time.Now(), i+1)
	}

	stats := b.Stats()
	assert.Equal(t, uint64(subQueueDepth+6), stats.Published)
	assert.GreaterOrEqual(t, stats.Dropped, uint64(5))

	close(block)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	got := make(chan Message, 8)
	cancel, err := b.Subscribe("/topic", func(m Message) { got <- m })
	require.NoError(t, err)

	cancel()
	b.Publish("/topic", time.Now(), "late")

	select {
	case <-got:
		t.Fatal("message delivered after unsubscribe")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_SubscribeAfterClose(t *testing.T) {
	b := New()
	require.NoError(t, b.Close())

	_, err := b.Subscribe("/topic", func(Message) {})
	assert.ErrorIs(t, err, ErrClosed)

	// Publish after close is a no-op, not a panic
	b.Publish("/topic", time.Now(), "ignored")
}
