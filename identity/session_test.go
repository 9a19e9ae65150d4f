package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("starts signed out", func(t *testing.T) {
		assert.Nil(t, NewSession().Current())
	})

	t.Run("listeners see sign in and sign out in order", func(t *testing.T) {
		s := NewSession()

		var seen []string
		s.Subscribe(func(ctx context.Context, id *Identity) {
			if id == nil {
				seen = append(seen, "first:out")
				return
			}
			seen = append(seen, "first:"+id.Email)
		})
		s.Subscribe(func(ctx context.Context, id *Identity) {
			if id == nil {
				seen = append(seen, "second:out")
				return
			}
			seen = append(seen, "second:"+id.Email)
		})

		s.SignIn(ctx, Identity{Email: "ama@example.com"})
		s.SignOut(ctx)

		assert.Equal(t, []string{"first:ama@example.com", "second:ama@example.com", "first:out", "second:out"}, seen)
		assert.Nil(t, s.Current())
	})

	t.Run("unsubscribed listeners are not called", func(t *testing.T) {
		s := NewSession()

		calls := 0
		unsubscribe := s.Subscribe(func(ctx context.Context, id *Identity) { calls++ })
		unsubscribe()

		s.SignIn(ctx, Identity{Email: "ama@example.com"})

		assert.Equal(t, 0, calls)
	})

	t.Run("unsubscribing forgets the listener entirely", func(t *testing.T) {
		s := NewSession()

		for range 100 {
			unsubscribe := s.Subscribe(func(ctx context.Context, id *Identity) {})
			unsubscribe()
		}
		kept := s.Subscribe(func(ctx context.Context, id *Identity) {})
		defer kept()

		assert.Len(t, s.listeners, 1)
		assert.Len(t, s.order, 1)
	})

	t.Run("current returns a copy", func(t *testing.T) {
		s := NewSession()
		s.SignIn(ctx, Identity{Email: "ama@example.com"})

		id := s.Current()
		require.NotNil(t, id)
		id.Email = "changed@example.com"

		assert.Equal(t, "ama@example.com", s.Current().Email)
	})

	t.Run("listener may read the session", func(t *testing.T) {
		s := NewSession()

		var current *Identity
		s.Subscribe(func(ctx context.Context, id *Identity) { current = s.Current() })
		s.SignIn(ctx, Identity{Email: "ama@example.com"})

		require.NotNil(t, current)
		assert.Equal(t, "ama@example.com", current.Email)
	})
}
