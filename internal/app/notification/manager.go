// Package notification provides the notification manager for fanning timer events out to collaborators.
package notification

import (
	"sync"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/nightreign-timer/internal/app/countdown"
)

// subscription represents a subscriber's subscription.
type subscription struct {
	id      string
	name    string
	handler countdown.Handler
}

// Manager manages subscriptions and broadcasts timer events in order.
// It implements countdown.Handler so it can be plugged into the timer directly.
type Manager struct {
	mu            sync.RWMutex
	subscriptions []*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make([]*subscription, 0),
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
// Subscribers receive events in subscription order.
func (m *Manager) Subscribe(name string, handler countdown.Handler) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions = append(m.subscriptions, &subscription{
		id:      id,
		name:    name,
		handler: handler,
	})
	zlog.Debug().Msgf("notification: subscribed: name=%s id=%s", name, id)
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscriptions {
		if sub.id == subscriptionID {
			m.subscriptions = append(m.subscriptions[:i], m.subscriptions[i+1:]...)
			return
		}
	}
}

// HandleEvent stamps the event with the next sequence number and broadcasts it.
func (m *Manager) HandleEvent(event countdown.Event) {
	m.sequenceNoMu.Lock()
	m.sequenceNo++
	event.SequenceNo = m.sequenceNo
	m.sequenceNoMu.Unlock()

	m.Broadcast(event)
}

// Broadcast sends an event to all subscribers.
// A panicking subscriber is logged and does not stop delivery to the others.
func (m *Manager) Broadcast(event countdown.Event) {
	m.mu.RLock()
	// Copy subscriptions to avoid holding lock during delivery
	subs := make([]*subscription, len(m.subscriptions))
	copy(subs, m.subscriptions)
	m.mu.RUnlock()

	for _, sub := range subs {
		m.deliver(sub, event)
	}
}

func (m *Manager) deliver(sub *subscription, event countdown.Event) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("notification: subscriber panicked: name=%s event=%s: %v", sub.name, event.Type, r)
		}
	}()
	sub.handler.HandleEvent(event)
}

// LastSequenceNo returns the sequence number of the last broadcast event.
func (m *Manager) LastSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	return m.sequenceNo
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make([]*subscription, 0)
}
