package picker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/relaychat/relay-server/internal/domain"
)

func makeUser(id, username string) domain.User {
	return domain.User{ID: id, Username: username}
}

func makeUsers(prefix string, n int) []domain.User {
	users := make([]domain.User, n)
	for i := range n {
		users[i] = makeUser(fmt.Sprintf("%s-%03d", prefix, i), fmt.Sprintf("%s%03d", prefix, i))
	}
	return users
}

func optionIDs(options []Option) []string {
	ids := make([]string, len(options))
	for i, o := range options {
		ids[i] = o.ID()
	}
	return ids
}

func TestComputeOptions_CapAndOrder(t *testing.T) {
	// 30 active non-excluded users, empty term, no recents, no groups:
	// exactly 25 entries, first 25 by sort order.
	pools := Pools{NotInChannel: makeUsers("user", 30)}

	options := ComputeOptions(pools, "", nil)

	require.Len(t, options, 25)
	for i, o := range options {
		assert.Equal(t, fmt.Sprintf("user%03d", i), o.User.Username)
	}
}

func TestComputeOptions_ExcludesDeactivated(t *testing.T) {
	users := makeUsers("user", 5)
	users[2].DeleteAt = 12345

	options := ComputeOptions(Pools{NotInChannel: users}, "", nil)

	assert.Len(t, options, 4)
	assert.NotContains(t, optionIDs(options), users[2].ID)
}

func TestComputeOptions_ExclusionSet(t *testing.T) {
	users := makeUsers("user", 5)
	notInTeam := makeUsers("outsider", 2)

	pools := Pools{
		NotInChannel: append(append([]domain.User{}, users...), notInTeam...),
		NotInTeam:    notInTeam,
	}

	options := ComputeOptions(pools, "", []string{users[0].ID})

	ids := optionIDs(options)
	assert.NotContains(t, ids, users[0].ID, "explicit exclusion")
	assert.NotContains(t, ids, notInTeam[0].ID, "not-in-team exclusion")
	assert.NotContains(t, ids, notInTeam[1].ID)
	assert.Len(t, options, 4)
}

func TestComputeOptions_RecentContactsFirst(t *testing.T) {
	recents := makeUsers("zzz", 15) // sorts after everyone, placement must still win
	others := makeUsers("aaa", 5)

	pools := Pools{NotInChannel: others, RecentDMs: recents}

	options := ComputeOptions(pools, "", nil)

	require.GreaterOrEqual(t, len(options), 15)
	for i := range 10 {
		assert.Equal(t, recents[i].ID, options[i].ID(), "recent contact %d out of place", i)
	}
	// At most 10 recent entries contribute.
	assert.Equal(t, others[0].ID, options[10].ID())
}

func TestComputeOptions_RecentContactsFiltered(t *testing.T) {
	recents := makeUsers("rec", 3)
	recents[1].DeleteAt = 99

	pools := Pools{RecentDMs: recents}

	options := ComputeOptions(pools, "", []string{recents[2].ID})

	require.Len(t, options, 1)
	assert.Equal(t, recents[0].ID, options[0].ID())
}

func TestComputeOptions_DeduplicatesAcrossPools(t *testing.T) {
	shared := makeUser("dup-1", "duplicated")

	pools := Pools{
		NotInChannel: []domain.User{shared, makeUser("u-1", "alice")},
		InChannel:    []domain.User{shared},
		RecentDMs:    []domain.User{shared},
	}

	options := ComputeOptions(pools, "", nil)

	ids := optionIDs(options)
	assert.Len(t, options, 2)
	assert.Equal(t, "dup-1", ids[0], "recent occurrence wins")
}

func TestComputeOptions_PrefixMatch(t *testing.T) {
	pools := Pools{
		NotInChannel: []domain.User{
			{ID: "u1", Username: "alice"},
			{ID: "u2", Username: "bob", FirstName: "Alison"},
			{ID: "u3", Username: "carol", Nickname: "Ali"},
			{ID: "u4", Username: "dave"},
			{ID: "u5", Username: "malice"}, // substring, not prefix
		},
		Groups: []domain.Group{
			{ID: "g1", Name: "alchemists"},
			{ID: "g2", Name: "builders"},
		},
	}

	options := ComputeOptions(pools, "AL", nil)

	ids := optionIDs(options)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3", "g1"}, ids)
}

func TestComputeOptions_GroupsInterleavedByDisplayText(t *testing.T) {
	pools := Pools{
		NotInChannel: []domain.User{
			{ID: "u1", Username: "anna"},
			{ID: "u2", Username: "zoe"},
		},
		Groups: []domain.Group{
			{ID: "g1", Name: "marketing"},
		},
	}

	options := ComputeOptions(pools, "", nil)

	require.Len(t, options, 3)
	assert.Equal(t, []string{"u1", "g1", "u2"}, optionIDs(options))
}

func TestComputeOptions_IncludeOverrides(t *testing.T) {
	override := makeUser("ov-1", "hidden")

	pools := Pools{
		NotInChannel:     makeUsers("user", 2),
		IncludeOverrides: map[string]domain.User{override.ID: override},
	}

	options := ComputeOptions(pools, "", nil)
	assert.Contains(t, optionIDs(options), "ov-1")

	// Overrides still honor the active and exclusion filters.
	options = ComputeOptions(pools, "", []string{"ov-1"})
	assert.NotContains(t, optionIDs(options), "ov-1")
}

func TestComputeOptions_Idempotent(t *testing.T) {
	pools := Pools{
		NotInChannel: makeUsers("user", 40),
		RecentDMs:    makeUsers("rec", 12),
		Groups:       []domain.Group{{ID: "g1", Name: "ops"}, {ID: "g2", Name: "dev"}},
	}

	first := ComputeOptions(pools, "", nil)
	second := ComputeOptions(pools, "", nil)

	assert.Equal(t, optionIDs(first), optionIDs(second))
}

func TestComputeOptions_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		idGen := rapid.StringMatching(`[a-z]{1,6}`)

		userGen := rapid.Custom(func(t *rapid.T) domain.User {
			return domain.User{
				ID:       idGen.Draw(t, "id"),
				Username: rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "username"),
				DeleteAt: rapid.SampledFrom([]int64{0, 0, 0, 1000}).Draw(t, "delete_at"),
			}
		})
		groupGen := rapid.Custom(func(t *rapid.T) domain.Group {
			return domain.Group{
				ID:   "g-" + idGen.Draw(t, "gid"),
				Name: rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "name"),
			}
		})

		pools := Pools{
			NotInChannel: rapid.SliceOfN(userGen, 0, 40).Draw(t, "not_in_channel"),
			InChannel:    rapid.SliceOfN(userGen, 0, 20).Draw(t, "in_channel"),
			NotInTeam:    rapid.SliceOfN(userGen, 0, 10).Draw(t, "not_in_team"),
			RecentDMs:    rapid.SliceOfN(userGen, 0, 20).Draw(t, "recents"),
			Groups:       rapid.SliceOfN(groupGen, 0, 10).Draw(t, "groups"),
		}
		term := rapid.StringMatching(`[a-z]{0,3}`).Draw(t, "term")
		exclude := rapid.SliceOfN(idGen, 0, 5).Draw(t, "exclude")

		options := ComputeOptions(pools, term, exclude)

		if len(options) > MaxOptions {
			t.Fatalf("length %d exceeds cap", len(options))
		}

		excluded := make(map[string]bool)
		for _, u := range pools.NotInTeam {
			excluded[u.ID] = true
		}
		for _, id := range exclude {
			excluded[id] = true
		}

		seen := make(map[string]bool)
		for _, o := range options {
			if seen[o.ID()] {
				t.Fatalf("duplicate id %q", o.ID())
			}
			seen[o.ID()] = true
			if o.Kind == OptionUser {
				if excluded[o.User.ID] {
					t.Fatalf("excluded user %q in output", o.User.ID)
				}
				if o.User.DeleteAt != 0 {
					t.Fatalf("deactivated user %q in output", o.User.ID)
				}
			}
		}

		again := ComputeOptions(pools, term, exclude)
		if len(again) != len(options) {
			t.Fatalf("not idempotent: %d vs %d", len(options), len(again))
		}
		for i := range options {
			if options[i].ID() != again[i].ID() {
				t.Fatalf("not idempotent at %d", i)
			}
		}
	})
}
