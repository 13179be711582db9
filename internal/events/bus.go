// Package events carries group lifecycle events from the write path to
// the regeneration listener. Publishing is fire-and-forget over a
// buffered channel, so a listener failure can never roll back or slow
// down the transaction that raised the event.
package events

import (
	"log"
	"sync"
	"sync/atomic"
)

type ChangeType string

const (
	ChangeAdded   ChangeType = "ADDED"
	ChangeRemoved ChangeType = "REMOVED"
)

type Event interface {
	EventName() string
}

type GroupCreated struct {
	GroupID uint
}

func (GroupCreated) EventName() string { return "group.created" }

type GroupMembershipChanged struct {
	GroupID    uint
	ChangeType ChangeType
	UserID     uint
}

func (GroupMembershipChanged) EventName() string { return "group.membership_changed" }

type Subscriber func(Event)

// Bus is an in-process event bus. Each event is delivered to every
// subscriber from a dispatcher goroutine; subscriber panics are contained
// per event.
type Bus struct {
	ch     chan Event
	mu     sync.RWMutex
	subs   []Subscriber
	wg     sync.WaitGroup
	closed atomic.Bool
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bus{ch: make(chan Event, buffer)}
}

// Subscribe registers a handler. Must be called before Start.
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
}

// Start launches the dispatcher pool.
func (b *Bus) Start(workers int) {
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go b.dispatch()
	}
}

// Publish hands the event to the dispatchers without blocking the
// caller. When the buffer is full the event is dropped and logged; the
// next weekly batch is the safety net.
func (b *Bus) Publish(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.ch <- e:
	default:
		log.Printf("Event bus full, dropping %s: %+v", e.EventName(), e)
	}
}

// Stop drains buffered events and waits for dispatchers.
func (b *Bus) Stop() {
	if b.closed.Swap(true) {
		return
	}
	close(b.ch)
	b.wg.Wait()
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for e := range b.ch {
		b.mu.RLock()
		subs := b.subs
		b.mu.RUnlock()
		for _, s := range subs {
			b.deliver(s, e)
		}
	}
}

func (b *Bus) deliver(s Subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Event subscriber panic on %s: %v", e.EventName(), r)
		}
	}()
	s(e)
}
