package identity

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/International-Combat-Archery-Alliance/auth"
)

type Identity struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

func FromAuthToken(subject string, token auth.AuthToken) Identity {
	return Identity{
		Subject:   subject,
		Email:     strings.ToLower(strings.TrimSpace(token.UserEmail())),
		ExpiresAt: token.ExpiresAt(),
	}
}

// Listener is called with the new identity, or nil after sign-out.
type Listener func(ctx context.Context, id *Identity)

// Session holds the signed-in identity of a single browser session and
// notifies subscribers whenever it changes.
type Session struct {
	mu        sync.Mutex
	current   *Identity
	listeners map[int]Listener
	order     []int
	nextID    int
}

func NewSession() *Session {
	return &Session{
		listeners: map[int]Listener{},
	}
}

// Subscribe registers l and returns a function that removes it again.
func (s *Session) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.listeners, id)
		s.order = slices.DeleteFunc(s.order, func(k int) bool { return k == id })
	}
}

func (s *Session) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

func (s *Session) SignIn(ctx context.Context, id Identity) {
	s.set(ctx, &id)
}

func (s *Session) SignOut(ctx context.Context) {
	s.set(ctx, nil)
}

func (s *Session) set(ctx context.Context, id *Identity) {
	s.mu.Lock()
	s.current = id
	listeners := make([]Listener, 0, len(s.listeners))
	for _, k := range s.order {
		if l, ok := s.listeners[k]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		if id == nil {
			l(ctx, nil)
			continue
		}
		copied := *id
		l(ctx, &copied)
	}
}
