package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/backend/internal/models"
)

func TestManagerGetReturnsSameReconciler(t *testing.T) {
	m := NewManager(newMemDirectory(), newMemCache(), nil)
	ctx := context.Background()

	a := m.Get(ctx, "s1")
	b := m.Get(ctx, "s1")
	c := m.Get(ctx, "s2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestManagerGetRehydratesNewSessions(t *testing.T) {
	cache := newMemCache()
	user := &models.User{ID: uuid.New(), Email: "ada@campus.example", Role: models.RoleStudent}
	require.NoError(t, cache.Put(context.Background(), "s1", user))

	m := NewManager(newMemDirectory(), cache, nil)
	r := m.Get(context.Background(), "s1")

	st := r.Snapshot()
	require.Equal(t, PhaseSignedIn, st.Phase)
	assert.Equal(t, user.ID, st.User.ID)
}

func TestManagerRemove(t *testing.T) {
	m := NewManager(newMemDirectory(), newMemCache(), nil)
	ctx := context.Background()

	a := m.Get(ctx, "s1")
	m.Remove("s1")
	b := m.Get(ctx, "s1")

	assert.NotSame(t, a, b)
}
