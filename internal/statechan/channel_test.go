package statechan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recv reads one value with a timeout so a broken delivery path fails the
// test instead of hanging it.
func recv[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription channel closed unexpectedly")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		panic("unreachable")
	}
}

func TestSubscribeReplaysCurrent(t *testing.T) {
	ch := New(42)
	defer ch.Close()

	sub := ch.Subscribe()
	defer sub.Cancel()

	assert.Equal(t, 42, recv(t, sub))
}

func TestOrderedDelivery(t *testing.T) {
	ch := New(0)
	defer ch.Close()

	sub := ch.Subscribe()
	defer sub.Cancel()
	assert.Equal(t, 0, recv(t, sub))

	for i := 1; i <= 100; i++ {
		ch.Publish(i)
	}
	for i := 1; i <= 100; i++ {
		assert.Equal(t, i, recv(t, sub))
	}
}

func TestLateSubscriberSkipsHistory(t *testing.T) {
	ch := New("initial")
	defer ch.Close()

	first := ch.Subscribe()
	defer first.Cancel()
	assert.Equal(t, "initial", recv(t, first))

	// Ten transitions happen before the second observer shows up.
	for i := 0; i < 10; i++ {
		ch.Publish("old")
	}
	ch.Publish("current")
	for i := 0; i < 11; i++ {
		recv(t, first)
	}

	second := ch.Subscribe()
	defer second.Cancel()

	// The late subscriber sees the current value, never the historical ten.
	assert.Equal(t, "current", recv(t, second))

	ch.Publish("next")
	assert.Equal(t, "next", recv(t, second))
}

func TestMultipleSubscribersSeeEveryTransition(t *testing.T) {
	ch := New(0)
	defer ch.Close()

	a := ch.Subscribe()
	b := ch.Subscribe()
	defer a.Cancel()
	defer b.Cancel()
	assert.Equal(t, 0, recv(t, a))
	assert.Equal(t, 0, recv(t, b))

	ch.Publish(1)
	ch.Publish(2)

	assert.Equal(t, 1, recv(t, a))
	assert.Equal(t, 2, recv(t, a))
	assert.Equal(t, 1, recv(t, b))
	assert.Equal(t, 2, recv(t, b))
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	ch := New(0)
	defer ch.Close()

	// Never read from this subscription.
	slow := ch.Subscribe()
	defer slow.Cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			ch.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	ch := New(0)
	defer ch.Close()

	sub := ch.Subscribe()
	assert.Equal(t, 0, recv(t, sub))
	sub.Cancel()

	// Delivery channel must close.
	select {
	case _, ok := <-sub.C():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled subscription did not close its channel")
	}

	// Publishing afterwards is fine; the subscriber is just gone.
	ch.Publish(1)
}

func TestCloseDrainsThenCloses(t *testing.T) {
	ch := New(0)
	sub := ch.Subscribe()

	ch.Publish(1)
	ch.Publish(2)
	ch.Close()

	assert.Equal(t, 0, recv(t, sub))
	assert.Equal(t, 1, recv(t, sub))
	assert.Equal(t, 2, recv(t, sub))

	select {
	case _, ok := <-sub.C():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed after channel close")
	}
}

func TestUseAfterClosePanics(t *testing.T) {
	ch := New(0)
	ch.Close()

	assert.Panics(t, func() { ch.Publish(1) })
	assert.Panics(t, func() { ch.Subscribe() })
	// A second Close is harmless.
	assert.NotPanics(t, func() { ch.Close() })
}

func TestGetTracksCurrent(t *testing.T) {
	ch := New(7)
	defer ch.Close()

	assert.Equal(t, 7, ch.Get())
	ch.Publish(8)
	assert.Equal(t, 8, ch.Get())
}
