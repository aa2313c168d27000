package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BAWSA3/brandos/internal/types"
)

func report(handle types.Handle) *types.UnifiedReport {
	return &types.UnifiedReport{Handle: handle, GeneratedAt: time.Now().UTC()}
}

func TestMemory_SetThenGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "alice", report("alice"), time.Minute))

	got, found, err := m.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, types.Handle("alice"), got.Handle)
}

func TestMemory_MissForUnknownHandle(t *testing.T) {
	m := NewMemory()
	_, found, err := m.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_ExpiredEntryIsMiss(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	current := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	require.NoError(t, m.Set(ctx, "alice", report("alice"), time.Minute))

	current = current.Add(2 * time.Minute)
	_, found, err := m.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_LastWriterWins(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first := report("alice")
	second := report("alice")
	second.Degraded = true

	require.NoError(t, m.Set(ctx, "alice", first, time.Minute))
	require.NoError(t, m.Set(ctx, "alice", second, time.Minute))

	got, found, err := m.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Degraded)
}
