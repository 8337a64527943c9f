// Package notify keeps track of transient notifications and expires them.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikhailRaia/url-submitter/internal/model"
)

// DefaultTTL is how long a notification stays visible unless dismissed earlier.
const DefaultTTL = 3 * time.Second

// DismissReason tells listeners why a notification went away.
type DismissReason string

const (
	ReasonExpired   DismissReason = "expired"
	ReasonDismissed DismissReason = "dismissed"
	ReasonReplaced  DismissReason = "replaced"
	ReasonClosed    DismissReason = "closed"
)

// Listener observes notification transitions. Listeners are called
// synchronously with the manager lock held and must not call back into the
// Manager.
type Listener interface {
	OnShow(n model.Notification)
	OnDismiss(n model.Notification, reason DismissReason)
}

type entry struct {
	notification model.Notification
	timer        *time.Timer
}

// Manager owns the set of active notifications, keyed by identity.
type Manager struct {
	mu        sync.Mutex
	ttl       time.Duration
	active    map[string]*entry
	listeners []Listener
	now       func() time.Time
}

// NewManager creates a Manager whose notifications expire after ttl.
// A non-positive ttl falls back to DefaultTTL.
func NewManager(ttl time.Duration, listeners ...Listener) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Manager{
		ttl:       ttl,
		active:    make(map[string]*entry),
		listeners: listeners,
		now:       time.Now,
	}
}

// TTL returns the configured lifetime of a notification.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Show displays a notification and schedules its removal. An active
// notification with the same id is replaced and its timer cancelled.
func (m *Manager) Show(id, message string, color model.Color) model.Notification {
	now := m.now()
	n := model.Notification{
		ID:        id,
		Token:     uuid.NewString(),
		Message:   message,
		Color:     color,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.active[id]; ok {
		old.timer.Stop()
		delete(m.active, id)
		m.emitDismiss(old.notification, ReasonReplaced)
	}

	token := n.Token
	e := &entry{notification: n}
	e.timer = time.AfterFunc(m.ttl, func() {
		m.expire(id, token)
	})
	m.active[id] = e
	m.emitShow(n)

	return n
}

// Dismiss removes the notification with the given id and cancels its pending
// expiry. It reports whether a notification was removed.
func (m *Manager) Dismiss(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.active[id]
	if !ok {
		return false
	}

	e.timer.Stop()
	delete(m.active, id)
	m.emitDismiss(e.notification, ReasonDismissed)

	return true
}

// Get returns the active notification with the given id.
func (m *Manager) Get(id string) (model.Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.active[id]
	if !ok {
		return model.Notification{}, false
	}
	return e.notification, true
}

// Active returns a snapshot of the active notifications, oldest first.
func (m *Manager) Active() []model.Notification {
	m.mu.Lock()
	result := make([]model.Notification, 0, len(m.active))
	for _, e := range m.active {
		result = append(result, e.notification)
	}
	m.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}

// Close dismisses every active notification and stops all timers.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.active {
		e.timer.Stop()
		delete(m.active, id)
		m.emitDismiss(e.notification, ReasonClosed)
	}
}

// expire runs from the timer goroutine. A timer that lost the race against
// Dismiss or a replacing Show finds a different token (or nothing) and does
// nothing.
func (m *Manager) expire(id, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.active[id]
	if !ok || e.notification.Token != token {
		return
	}

	delete(m.active, id)
	m.emitDismiss(e.notification, ReasonExpired)
}

func (m *Manager) emitShow(n model.Notification) {
	for _, l := range m.listeners {
		l.OnShow(n)
	}
}

func (m *Manager) emitDismiss(n model.Notification, reason DismissReason) {
	for _, l := range m.listeners {
		l.OnDismiss(n, reason)
	}
}
