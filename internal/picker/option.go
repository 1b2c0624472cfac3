// Package picker implements the candidate aggregation and selection state
// behind the "invite people to channel" flow. The aggregation is a pure
// function over caller-supplied pools; all persistence, search, and network
// access is delegated to injected Actions.
package picker

import "github.com/relaychat/relay-server/internal/domain"

// OptionKind discriminates the arms of the Option union.
type OptionKind int

// Option kinds.
const (
	OptionUser OptionKind = iota
	OptionGroup
)

// Option is a single selectable entry in the invite picker: either a user or
// a group. The zero Kind is a user, matching the common case.
type Option struct {
	Kind  OptionKind
	User  domain.User
	Group domain.Group
}

// UserOption wraps a user as a picker option.
func UserOption(u domain.User) Option {
	return Option{Kind: OptionUser, User: u}
}

// GroupOption wraps a group as a picker option.
func GroupOption(g domain.Group) Option {
	return Option{Kind: OptionGroup, Group: g}
}

// ID returns the identity of the underlying entity. Options are deduplicated
// and removed by this value.
func (o Option) ID() string {
	switch o.Kind {
	case OptionGroup:
		return o.Group.ID
	default:
		return o.User.ID
	}
}

// DisplayText returns the text the option is sorted and rendered by.
func (o Option) DisplayText() string {
	switch o.Kind {
	case OptionGroup:
		return o.Group.DisplayText()
	default:
		return o.User.DisplayName()
	}
}
