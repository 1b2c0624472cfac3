package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaychat/relay-server/internal/domain"
	"github.com/relaychat/relay-server/internal/sse"
)

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (e *recordingEmitter) Emit(event any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt, ok := event.(sse.Event); ok {
		e.events = append(e.events, evt)
	}
}

func (e *recordingEmitter) byType(t sse.EventType) []sse.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []sse.Event
	for _, evt := range e.events {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}

func TestAddChannelMembers_Idempotent(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "relay-store-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	emitter := &recordingEmitter{}
	s, err := New(filepath.Join(tmpDir, "test.db"), nil, emitter)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	require.NoError(t, s.CreateChannel(ctx, &domain.Channel{
		ID: "chan-1", TeamID: "team-1", Type: domain.ChannelTypeOpen, Name: "general",
	}))
	require.NoError(t, s.CreateProfile(ctx, testUser("user-1", "alice")))
	require.NoError(t, s.CreateProfile(ctx, testUser("user-2", "bob")))

	require.NoError(t, s.AddChannelMembers(ctx, "chan-1", []string{"user-1", "user-2"}))

	// Second call with an overlapping set adds nothing and emits nothing.
	require.NoError(t, s.AddChannelMembers(ctx, "chan-1", []string{"user-1", "user-2"}))

	ids, err := s.ChannelMemberIDs(ctx, "chan-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1", "user-2"}, ids)

	events := emitter.byType(sse.EventChannelMemberAdded)
	require.Len(t, events, 1)
	data, ok := events[0].Data.(sse.MemberAddedData)
	require.True(t, ok)
	assert.Equal(t, "chan-1", data.ChannelID)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, data.UserIDs)
}

func TestRemoveChannelMember(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateChannel(ctx, &domain.Channel{
		ID: "chan-1", TeamID: "team-1", Type: domain.ChannelTypeOpen, Name: "general",
	}))
	require.NoError(t, s.AddChannelMember(ctx, "chan-1", "user-1"))

	isMember, err := s.IsChannelMember(ctx, "chan-1", "user-1")
	require.NoError(t, err)
	assert.True(t, isMember)

	require.NoError(t, s.RemoveChannelMember(ctx, "chan-1", "user-1"))
	// Removing again is fine.
	require.NoError(t, s.RemoveChannelMember(ctx, "chan-1", "user-1"))

	isMember, err = s.IsChannelMember(ctx, "chan-1", "user-1")
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestCreateChannel_Duplicate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	channel := &domain.Channel{ID: "chan-1", TeamID: "team-1", Type: domain.ChannelTypeOpen, Name: "general"}
	require.NoError(t, s.CreateChannel(ctx, channel))
	assert.ErrorIs(t, s.CreateChannel(ctx, channel), ErrChannelExists)
}
