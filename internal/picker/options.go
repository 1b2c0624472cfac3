package picker

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/relaychat/relay-server/internal/domain"
)

const (
	// MaxOptions caps the aggregated result length to bound picker render cost.
	MaxOptions = 25
	// MaxRecentContacts caps how many recent-DM entries contribute to the
	// result. They are placed before all other options.
	MaxRecentContacts = 10
)

// Pools holds the raw candidate pools the aggregation draws from. Pools are
// owned by the caller and supplied fresh on every invocation; the order of
// RecentDMs is preserved in the output and is assumed to be recency order.
type Pools struct {
	NotInChannel []domain.User
	InChannel    []domain.User
	// NotInTeam contributes only to the exclusion set; its users are never
	// shown directly.
	NotInTeam []domain.User
	RecentDMs []domain.User
	Groups    []domain.Group
	// IncludeOverrides are forcibly added to the primary pool regardless of
	// channel membership, so a previously selected option stays visible.
	IncludeOverrides map[string]domain.User
}

// ComputeOptions builds the ranked, deduplicated, length-capped option list
// for the invite picker. It is a pure function of its inputs: identical
// inputs yield identical ordered output.
//
// Shape of the result: up to MaxRecentContacts recent-DM contacts first (pool
// order preserved), then groups and remaining users interleaved by display
// text, truncated to MaxOptions, deduplicated by identity with the first
// occurrence winning.
func ComputeOptions(pools Pools, term string, exclude []string) []Option {
	excluded := make(map[string]bool, len(pools.NotInTeam)+len(exclude))
	for _, u := range pools.NotInTeam {
		excluded[u.ID] = true
	}
	for _, id := range exclude {
		excluded[id] = true
	}

	fold := cases.Fold()
	foldedTerm := fold.String(strings.TrimSpace(term))

	match := func(u domain.User) bool {
		return u.IsActive() && !excluded[u.ID] && userMatchesTerm(fold, u, foldedTerm)
	}

	recents := make([]Option, 0, MaxRecentContacts)
	for _, u := range pools.RecentDMs {
		if !match(u) {
			continue
		}
		recents = append(recents, UserOption(u))
		if len(recents) == MaxRecentContacts {
			break
		}
	}

	merged := make([]Option, 0, len(pools.Groups)+len(pools.NotInChannel)+len(pools.InChannel))
	for _, g := range pools.Groups {
		if g.IsActive() && strings.HasPrefix(fold.String(g.Name), foldedTerm) {
			merged = append(merged, GroupOption(g))
		}
	}
	for _, u := range pools.NotInChannel {
		if match(u) {
			merged = append(merged, UserOption(u))
		}
	}
	for _, u := range pools.InChannel {
		if match(u) {
			merged = append(merged, UserOption(u))
		}
	}
	for _, u := range sortedOverrides(pools.IncludeOverrides) {
		if match(u) {
			merged = append(merged, UserOption(u))
		}
	}

	// Stable sort keeps the original relative order for equal display texts.
	coll := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(merged, func(a, b Option) int {
		return coll.CompareString(a.DisplayText(), b.DisplayText())
	})

	out := make([]Option, 0, MaxOptions)
	out = append(out, recents...)
	out = append(out, merged...)
	if len(out) > MaxOptions {
		out = out[:MaxOptions]
	}

	return dedupeByID(out)
}

// userMatchesTerm reports whether the folded term is a prefix of the user's
// username or any display name field. An empty term matches everything.
func userMatchesTerm(fold cases.Caser, u domain.User, foldedTerm string) bool {
	if foldedTerm == "" {
		return true
	}
	for _, field := range []string{u.Username, u.Nickname, u.FirstName, u.LastName, u.FullName()} {
		if field == "" {
			continue
		}
		if strings.HasPrefix(fold.String(field), foldedTerm) {
			return true
		}
	}
	return false
}

// sortedOverrides flattens the override map in a deterministic order so the
// aggregation stays a pure function of its inputs.
func sortedOverrides(overrides map[string]domain.User) []domain.User {
	if len(overrides) == 0 {
		return nil
	}
	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, overrides[id])
	}
	return users
}

// dedupeByID drops later occurrences of an identity, preserving order.
func dedupeByID(options []Option) []Option {
	seen := make(map[string]bool, len(options))
	out := options[:0]
	for _, o := range options {
		if seen[o.ID()] {
			continue
		}
		seen[o.ID()] = true
		out = append(out, o)
	}
	return out
}
