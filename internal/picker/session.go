package picker

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/relaychat/relay-server/internal/domain"
)

// DefaultPerPage is the page size for candidate pool fetches.
const DefaultPerPage = 100

// ErrGroupNotSelectable is returned when a group option is passed to Add.
// Groups must be expanded into their member users by the caller first.
var ErrGroupNotSelectable = errors.New("picker: groups cannot be selected directly, expand to members first")

// Config configures a Session.
type Config struct {
	TeamID           string
	ChannelID        string
	GroupConstrained bool
	// UserID is the inviting user; their recent DM contacts get privileged
	// placement in the option list.
	UserID string
	// Exclude lists user ids the host wants omitted from the option list,
	// for example users already addressed elsewhere in the flow.
	Exclude       []string
	PerPage       int
	DebounceDelay time.Duration
	Actions       Actions
	Logger        *slog.Logger
}

// Session drives one invite interaction: it owns the candidate pools, the
// debounced search dispatch, pagination, the selection state machine, and
// the final submit. All methods are safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	cfg     Config
	actions Actions
	logger  *slog.Logger

	state State

	// Candidate pools. Base pools come from paginated fetches; search pools
	// from the latest dispatched search.
	baseNotInChannel []domain.User
	baseInChannel    []domain.User
	recentContacts   []domain.User
	notInTeam        []domain.User
	groups           []domain.Group
	searchUsers      []domain.User
	overrides        map[string]domain.User

	// teamMembers caches resolved team membership by user id. A present
	// false value means the lookup ran and found no active membership.
	teamMembers map[string]bool

	debouncer     *Debouncer
	lastOptionIDs []string
}

// NewSession creates a session. Call Start to populate the initial pools and
// Close when the interaction ends.
func NewSession(cfg Config) *Session {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		cfg:         cfg,
		actions:     cfg.Actions,
		logger:      cfg.Logger,
		overrides:   make(map[string]domain.User),
		teamMembers: make(map[string]bool),
		debouncer:   NewDebouncer(cfg.DebounceDelay),
	}
}

// Start loads the initial candidate pools and computes the first option list.
// Fetch failures are logged and leave the affected pool empty; the host may
// retry by calling Start again.
func (s *Session) Start(ctx context.Context) {
	var notInChannel, inChannel, recents []domain.User
	var groups []domain.Group

	if fetch := s.actions.FetchProfilesNotInChannel; fetch != nil {
		users, err := fetch(ctx, s.cfg.TeamID, s.cfg.ChannelID, s.cfg.GroupConstrained, 0, s.cfg.PerPage)
		if err != nil {
			s.logger.Warn("fetch profiles not in channel failed", "channel_id", s.cfg.ChannelID, "error", err)
		}
		notInChannel = users
	}
	if fetch := s.actions.FetchProfilesInChannel; fetch != nil {
		users, err := fetch(ctx, s.cfg.ChannelID, 0, s.cfg.PerPage, true)
		if err != nil {
			s.logger.Warn("fetch profiles in channel failed", "channel_id", s.cfg.ChannelID, "error", err)
		}
		inChannel = users
	}
	if fetch := s.actions.FetchRecentContacts; fetch != nil && s.cfg.UserID != "" {
		users, err := fetch(ctx, s.cfg.UserID, MaxRecentContacts)
		if err != nil {
			s.logger.Warn("fetch recent contacts failed", "user_id", s.cfg.UserID, "error", err)
		}
		recents = users
	}
	if search := s.actions.SearchGroups; search != nil {
		found, err := search(ctx, "", s.cfg.TeamID, SearchGroupsOptions{FilterChannelID: s.cfg.ChannelID})
		if err != nil {
			s.logger.Warn("group search failed", "team_id", s.cfg.TeamID, "error", err)
		}
		groups = found
	}
	if stats := s.actions.FetchTeamStats; stats != nil {
		stats(ctx, s.cfg.TeamID)
	}

	s.mu.Lock()
	s.baseNotInChannel = notInChannel
	s.baseInChannel = inChannel
	s.recentContacts = recents
	s.groups = groups
	s.recomputeLocked(ctx)
	s.mu.Unlock()
}

// Search records the new term immediately and schedules a debounced lookup.
// A term entered while a previous one is still pending replaces it; only the
// most recent term within the debounce window is ever dispatched.
func (s *Session) Search(ctx context.Context, term string) {
	s.mu.Lock()
	s.state.Term = term
	s.recomputeLocked(ctx)
	s.mu.Unlock()

	s.debouncer.Trigger(func() {
		s.dispatchSearch(ctx, term)
	})
}

// dispatchSearch runs the actual profile and group lookups for a term.
func (s *Session) dispatchSearch(ctx context.Context, term string) {
	var users []domain.User
	var groups []domain.Group

	if search := s.actions.SearchProfiles; search != nil {
		found, err := search(ctx, term, SearchProfilesOptions{TeamID: s.cfg.TeamID})
		if err != nil {
			s.logger.Warn("profile search failed", "term", term, "error", err)
		}
		users = found
	}
	if search := s.actions.SearchGroups; search != nil {
		found, err := search(ctx, term, s.cfg.TeamID, SearchGroupsOptions{FilterChannelID: s.cfg.ChannelID})
		if err != nil {
			s.logger.Warn("group search failed", "term", term, "error", err)
		}
		groups = found
	}

	members, notInTeam := s.partitionByTeam(ctx, users)

	s.mu.Lock()
	if s.state.Term != term {
		// A newer term won the race; drop this result set.
		s.mu.Unlock()
		return
	}
	s.searchUsers = members
	s.notInTeam = mergeUsers(s.notInTeam, notInTeam)
	s.groups = groups
	s.recomputeLocked(ctx)
	s.mu.Unlock()
}

// LoadMore fetches the next page of not-in-channel candidates. It is
// request-once: a page advance triggers exactly one fetch, and the loading
// flag is cleared when that fetch resolves regardless of outcome.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.state.LoadingMore {
		s.mu.Unlock()
		return nil
	}
	s.state.LoadingMore = true
	page := s.state.Page + 1
	s.mu.Unlock()

	fetch := s.actions.FetchProfilesNotInChannel

	var users []domain.User
	var err error
	if fetch != nil {
		users, err = fetch(ctx, s.cfg.TeamID, s.cfg.ChannelID, s.cfg.GroupConstrained, page, s.cfg.PerPage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LoadingMore = false
	if err != nil {
		s.logger.Warn("load more failed", "page", page, "error", err)
		return err
	}
	s.state.Page = page
	s.baseNotInChannel = mergeUsers(s.baseNotInChannel, users)
	s.recomputeLocked(ctx)
	return nil
}

// Add routes an option through the selection state machine. Team members
// move to the selection; users without an active team membership land in the
// not-in-team bucket matching their guest flag. Group options are rejected.
func (s *Session) Add(ctx context.Context, opt Option) error {
	if opt.Kind == OptionGroup {
		return ErrGroupNotSelectable
	}
	u := opt.User

	isMember, known := s.membershipCached(u.ID)
	if !known {
		isMember = s.lookupMembership(ctx, u.ID)
	}

	s.mu.Lock()
	s.state = AddUser(s.state, u, isMember)
	s.overrides[u.ID] = u
	s.recomputeLocked(ctx)
	s.mu.Unlock()
	return nil
}

// Remove deletes a user from the selection by identity.
func (s *Session) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	s.state = RemoveSelected(s.state, id)
	delete(s.overrides, id)
	s.recomputeLocked(ctx)
	s.mu.Unlock()
}

// ClearNotInTeam empties both not-in-team buckets.
func (s *Session) ClearNotInTeam() {
	s.mu.Lock()
	s.state = ClearNotInTeam(s.state)
	s.mu.Unlock()
}

// ResolveNotInTeamInvited moves users into the selection after a side
// team-invite flow completed for them.
func (s *Session) ResolveNotInTeamInvited(users []domain.User) {
	s.mu.Lock()
	for _, u := range users {
		s.teamMembers[u.ID] = true
	}
	s.state = ResolveInvited(s.state, users)
	s.mu.Unlock()
}

// Submit commits the current selection. An empty selection is a silent
// no-op. On commit failure the error message is surfaced verbatim via
// InviteError and the selection stays editable for retry.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if len(s.state.Selected) == 0 || s.state.Saving {
		s.mu.Unlock()
		return nil
	}
	s.state.Saving = true
	s.state.InviteError = ""
	ids := s.state.SelectedIDs()
	s.mu.Unlock()

	var err error
	if commit := s.actions.AddUsersToChannel; commit != nil {
		err = commit(ctx, s.cfg.ChannelID, ids)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Saving = false
	if err != nil {
		s.state.InviteError = err.Error()
		return err
	}
	s.state.Submitted = true
	return nil
}

// State returns a snapshot of the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Options returns the current aggregated option list.
func (s *Session) Options() []Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Options)
}

// Close cancels any pending debounced search. The session must not be used
// after Close.
func (s *Session) Close() {
	s.debouncer.Stop()
}

// recomputeLocked rebuilds the option list from the current pools and, when
// the computed set changed, warms team membership for all group members
// referenced by the result and loads presence for the listed users.
func (s *Session) recomputeLocked(ctx context.Context) {
	pools := Pools{
		NotInChannel:     append(slices.Clone(s.baseNotInChannel), s.searchUsers...),
		InChannel:        s.baseInChannel,
		NotInTeam:        s.notInTeam,
		RecentDMs:        s.recentContacts,
		Groups:           s.groups,
		IncludeOverrides: s.overrides,
	}
	options := ComputeOptions(pools, s.state.Term, s.cfg.Exclude)
	s.state.Options = options

	ids := make([]string, len(options))
	for i, o := range options {
		ids[i] = o.ID()
	}
	if slices.Equal(ids, s.lastOptionIDs) {
		return
	}
	s.lastOptionIDs = ids

	var groupMemberIDs []string
	var listedUsers []domain.User
	for _, o := range options {
		switch o.Kind {
		case OptionGroup:
			groupMemberIDs = append(groupMemberIDs, o.Group.MemberIDs...)
		case OptionUser:
			listedUsers = append(listedUsers, o.User)
		}
	}

	// Both warms run off the lock path; a slow store read must not block
	// session methods.
	if len(groupMemberIDs) > 0 && s.actions.GetTeamMembersByIDs != nil {
		go s.warmTeamMembers(ctx, groupMemberIDs)
	}
	if len(listedUsers) > 0 && s.actions.LoadStatusesForProfiles != nil {
		go s.actions.LoadStatusesForProfiles(listedUsers)
	}
}

// warmTeamMembers resolves team membership for the given ids and records the
// outcome for each, including negative results.
func (s *Session) warmTeamMembers(ctx context.Context, ids []string) {
	members, err := s.actions.GetTeamMembersByIDs(ctx, s.cfg.TeamID, ids)
	if err != nil {
		s.logger.Warn("team member resolution failed", "team_id", s.cfg.TeamID, "error", err)
		return
	}
	found := make(map[string]bool, len(members))
	for _, m := range members {
		found[m.UserID] = m.IsActive()
	}
	s.mu.Lock()
	for _, id := range ids {
		s.teamMembers[id] = found[id]
	}
	s.mu.Unlock()
}

func (s *Session) membershipCached(id string) (isMember, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	isMember, known = s.teamMembers[id]
	return isMember, known
}

// lookupMembership resolves a single user's team membership on demand.
// Lookup failures are treated as not-a-member; the add then routes to the
// not-in-team bucket rather than silently inviting an unverified user.
func (s *Session) lookupMembership(ctx context.Context, id string) bool {
	if s.actions.GetTeamMembersByIDs == nil {
		return false
	}
	members, err := s.actions.GetTeamMembersByIDs(ctx, s.cfg.TeamID, []string{id})
	if err != nil {
		s.logger.Warn("team member lookup failed", "user_id", id, "error", err)
		return false
	}
	isMember := false
	for _, m := range members {
		if m.UserID == id && m.IsActive() {
			isMember = true
		}
	}
	s.mu.Lock()
	s.teamMembers[id] = isMember
	s.mu.Unlock()
	return isMember
}

// partitionByTeam splits search results into team members and others.
func (s *Session) partitionByTeam(ctx context.Context, users []domain.User) (members, notInTeam []domain.User) {
	if len(users) == 0 || s.actions.GetTeamMembersByIDs == nil {
		return users, nil
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	active, err := s.actions.GetTeamMembersByIDs(ctx, s.cfg.TeamID, ids)
	if err != nil {
		s.logger.Warn("team member resolution failed", "team_id", s.cfg.TeamID, "error", err)
		return users, nil
	}
	inTeam := make(map[string]bool, len(active))
	for _, m := range active {
		if m.IsActive() {
			inTeam[m.UserID] = true
		}
	}
	s.mu.Lock()
	for _, u := range users {
		s.teamMembers[u.ID] = inTeam[u.ID]
	}
	s.mu.Unlock()
	for _, u := range users {
		if inTeam[u.ID] {
			members = append(members, u)
		} else {
			notInTeam = append(notInTeam, u)
		}
	}
	return members, notInTeam
}

// mergeUsers appends users not already present by id.
func mergeUsers(existing, incoming []domain.User) []domain.User {
	seen := make(map[string]bool, len(existing))
	for _, u := range existing {
		seen[u.ID] = true
	}
	out := existing
	for _, u := range incoming {
		if !seen[u.ID] {
			seen[u.ID] = true
			out = append(out, u)
		}
	}
	return out
}
