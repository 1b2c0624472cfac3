package picker

import (
	"slices"

	"github.com/relaychat/relay-server/internal/domain"
)

// State is the selection state of one invite interaction. It is an immutable
// value: transitions return a new State and never alias the input's slices,
// so snapshots handed to callers stay stable.
//
// A user candidate is in exactly one place at a time: Selected (chosen, ready
// to submit), NotInTeam / NotInTeamGuests (an add was attempted but the user
// needs a team invite first), or nowhere.
type State struct {
	Term            string
	Options         []Option
	Selected        []domain.User
	NotInTeam       []domain.User
	NotInTeamGuests []domain.User
	Page            int
	LoadingMore     bool
	Saving          bool
	Submitted       bool
	InviteError     string
}

// AddUser routes a user through the add transition. Team members move to
// Selected; non-members land in the not-in-team bucket matching their guest
// flag. Adding the same identity twice is a no-op.
func AddUser(s State, u domain.User, isTeamMember bool) State {
	if isTeamMember {
		if containsUser(s.Selected, u.ID) {
			return s
		}
		s.Selected = appendUser(s.Selected, u)
		return s
	}
	if u.IsGuest() {
		if !containsUser(s.NotInTeamGuests, u.ID) {
			s.NotInTeamGuests = appendUser(s.NotInTeamGuests, u)
		}
		return s
	}
	if !containsUser(s.NotInTeam, u.ID) {
		s.NotInTeam = appendUser(s.NotInTeam, u)
	}
	return s
}

// RemoveSelected deletes a user from the selection by identity.
func RemoveSelected(s State, id string) State {
	if !containsUser(s.Selected, id) {
		return s
	}
	out := make([]domain.User, 0, len(s.Selected)-1)
	for _, u := range s.Selected {
		if u.ID != id {
			out = append(out, u)
		}
	}
	s.Selected = out
	return s
}

// ClearNotInTeam empties both not-in-team buckets.
func ClearNotInTeam(s State) State {
	s.NotInTeam = nil
	s.NotInTeamGuests = nil
	return s
}

// ResolveInvited moves users out of the not-in-team bucket into Selected,
// used after a side team-invite flow completes.
func ResolveInvited(s State, users []domain.User) State {
	for _, u := range users {
		if !containsUser(s.NotInTeam, u.ID) {
			continue
		}
		remaining := make([]domain.User, 0, len(s.NotInTeam)-1)
		for _, member := range s.NotInTeam {
			if member.ID != u.ID {
				remaining = append(remaining, member)
			}
		}
		s.NotInTeam = remaining
		if !containsUser(s.Selected, u.ID) {
			s.Selected = appendUser(s.Selected, u)
		}
	}
	return s
}

// SelectedIDs returns the ids of the current selection in order.
func (s State) SelectedIDs() []string {
	ids := make([]string, len(s.Selected))
	for i, u := range s.Selected {
		ids[i] = u.ID
	}
	return ids
}

func containsUser(users []domain.User, id string) bool {
	return slices.ContainsFunc(users, func(u domain.User) bool { return u.ID == id })
}

// appendUser copies before appending so prior State snapshots are never
// mutated through a shared backing array.
func appendUser(users []domain.User, u domain.User) []domain.User {
	out := make([]domain.User, len(users), len(users)+1)
	copy(out, users)
	return append(out, u)
}
