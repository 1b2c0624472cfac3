package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLog(t *testing.T) *Log {
	t.Helper()

	log, err := Open(filepath.Join(t.TempDir(), "audit.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestRecordAndQuery(t *testing.T) {
	log := setupTestLog(t)
	ctx := context.Background()

	entry := &Entry{
		Action:    ActionMembersInvited,
		ActorID:   "user-1",
		ChannelID: "chan-1",
		TeamID:    "team-1",
		UserIDs:   []string{"user-2", "user-3"},
	}
	require.NoError(t, log.Record(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	entries, err := log.ForChannel(ctx, "chan-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionMembersInvited, entries[0].Action)
	assert.Equal(t, []string{"user-2", "user-3"}, entries[0].UserIDs)
	assert.Equal(t, "user-1", entries[0].ActorID)
}

func TestForChannel_FiltersAndLimits(t *testing.T) {
	log := setupTestLog(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, log.Record(ctx, &Entry{
			Action:    ActionMembersInvited,
			ActorID:   "user-1",
			ChannelID: "chan-1",
			TeamID:    "team-1",
			UserIDs:   []string{"user-2"},
		}))
	}
	require.NoError(t, log.Record(ctx, &Entry{
		Action:    ActionInviteFailed,
		ActorID:   "user-1",
		ChannelID: "chan-2",
		TeamID:    "team-1",
		Detail:    "not a team member",
	}))

	entries, err := log.ForChannel(ctx, "chan-1", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = log.ForChannel(ctx, "chan-2", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionInviteFailed, entries[0].Action)
	assert.Equal(t, "not a team member", entries[0].Detail)
	assert.Empty(t, entries[0].UserIDs)
}
