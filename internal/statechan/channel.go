// Package statechan provides a generic one-to-many state broadcast channel.
//
// A Channel holds a current value and pushes every published value, in order,
// to any number of subscribers. A late subscriber first receives the current
// value (replay-of-latest) and then only live transitions, so no observer
// ever starts blind. Publishing never blocks on a slow subscriber: each
// subscription buffers behind its own delivery goroutine.
package statechan

import (
	"sync"
)

// Channel broadcasts state transitions of type T to subscribers.
type Channel[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[uint64]*Subscription[T]
	nextID  uint64
	closed  bool
}

// New creates a channel seeded with an initial current value.
func New[T any](initial T) *Channel[T] {
	return &Channel[T]{
		current: initial,
		subs:    make(map[uint64]*Subscription[T]),
	}
}

// Get returns the current value.
func (c *Channel[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Publish sets the current value and enqueues it to every subscriber.
// Publishing on a closed channel is a caller lifecycle bug and panics.
func (c *Channel[T]) Publish(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		panic("statechan: publish on closed channel")
	}
	c.current = v
	for _, s := range c.subs {
		s.push(v)
	}
}

// Subscribe registers a new observer. The subscription's channel yields the
// current value first, then every subsequent transition in publish order.
// Subscribing to a closed channel panics.
func (c *Channel[T]) Subscribe() *Subscription[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		panic("statechan: subscribe on closed channel")
	}

	s := &Subscription[T]{
		ch:   c,
		id:   c.nextID,
		out:  make(chan T),
		stop: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	// Seed with the current value while still holding the channel lock so no
	// transition can slip in between replay and live delivery.
	s.queue = append(s.queue, c.current)
	c.subs[c.nextID] = s
	c.nextID++

	go s.pump()
	return s
}

// Close tears the channel down. Every subscription drains whatever is already
// queued and then its channel is closed. Further Publish or Subscribe calls
// panic.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.finish()
	}
}

func (c *Channel[T]) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
}

// Subscription is one observer's view of a Channel.
type Subscription[T any] struct {
	ch *Channel[T]
	id uint64

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []T
	cancelled bool
	finished  bool

	out      chan T
	stop     chan struct{}
	stopOnce sync.Once
}

// C returns the delivery channel. It is closed after Cancel, or once the
// parent channel closed and all queued transitions were delivered.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Cancel detaches the subscription. Transitions still queued are discarded.
func (s *Subscription[T]) Cancel() {
	if s.ch != nil {
		s.ch.unsubscribe(s.id)
	}
	s.mu.Lock()
	s.cancelled = true
	s.cond.Signal()
	s.mu.Unlock()
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	s.queue = append(s.queue, v)
	s.cond.Signal()
}

func (s *Subscription[T]) finish() {
	s.mu.Lock()
	s.finished = true
	s.cond.Signal()
	s.mu.Unlock()
}

// pump delivers queued transitions to the out channel in FIFO order.
func (s *Subscription[T]) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.cancelled && !s.finished {
			s.cond.Wait()
		}
		if s.cancelled {
			s.mu.Unlock()
			return
		}
		if len(s.queue) == 0 {
			// Finished and fully drained.
			s.mu.Unlock()
			return
		}
		v := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.stop:
			return
		}
	}
}
