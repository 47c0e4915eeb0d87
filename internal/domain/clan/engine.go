package clan

import (
	"strings"
	"unicode/utf8"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
)

// Actor is the user performing a clan operation.
type Actor struct {
	UserID    string
	Username  string
	AvatarURL string
}

// ActorOf builds an Actor from the user profile.
func ActorOf(u user.User) Actor {
	return Actor{UserID: u.Profile.ID, Username: u.Profile.Username, AvatarURL: u.Profile.AvatarURL}
}

// Engine applies clan transitions to a membership and the store in place.
// Every guard is checked before anything is mutated, so a rejected
// operation leaves both untouched.
type Engine struct {
	clock shared.Clock
	ids   shared.IDGenerator
}

// NewEngine creates an Engine.
func NewEngine(clock shared.Clock, ids shared.IDGenerator) *Engine {
	return &Engine{clock: clock, ids: ids}
}

// NormalizeTag trims and upper-cases a tag.
func NormalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}

// ResolveMembership repairs a membership against the store: pointers to a
// clan that no longer exists resolve to none. changed reports whether the
// caller should persist the result.
func ResolveMembership(m user.Membership, store Store) (resolved user.Membership, changed bool) {
	repaired := m.Repair()
	changed = repaired != m

	id, ok := repaired.CurrentClan()
	if !ok {
		id, ok = repaired.PendingClan()
	}
	if ok {
		if _, found := store.Find(id); !found {
			return user.NoMembership(), true
		}
	}
	return repaired, changed
}

// Create founds a new clan led by the actor.
func (e *Engine) Create(m *user.Membership, store *Store, actor Actor, name, tag, motto string) (Clan, error) {
	name = strings.TrimSpace(name)
	tag = NormalizeTag(tag)

	if m.Status != user.StatusNone {
		return Clan{}, shared.ErrAlreadyInClan
	}
	if name == "" {
		return Clan{}, shared.ErrInvalidClanName
	}
	if tag == "" || utf8.RuneCountInString(tag) > MaxTagLength {
		return Clan{}, shared.ErrInvalidClanTag
	}

	now := e.clock.Now()
	c := Clan{
		ID:        e.ids.NewID(),
		Name:      name,
		Tag:       tag,
		Motto:     strings.TrimSpace(motto),
		CreatedAt: now,
		LeaderID:  actor.UserID,
		Members: []Member{{
			UserID:    actor.UserID,
			Username:  actor.Username,
			AvatarURL: actor.AvatarURL,
			Role:      RoleLeader,
			JoinedAt:  now,
		}},
		Invites: []Invite{},
		Stats:   Stats{CreatedAt: now},
	}

	store.Clans = append(store.Clans, c)
	*m = user.LeaderOf(c.ID)
	return c, nil
}

// RequestInvite records a join request for clanID and marks the actor as
// invited. No leader approval is involved.
func (e *Engine) RequestInvite(m *user.Membership, store *Store, actor Actor, clanID string) (Invite, error) {
	switch m.Status {
	case user.StatusNone:
	case user.StatusInvited:
		return Invite{}, shared.ErrAlreadyInvited
	default:
		return Invite{}, shared.ErrAlreadyInClan
	}
	idx := store.index(clanID)
	if idx < 0 {
		return Invite{}, shared.ErrClanNotFound
	}

	now := e.clock.Now()
	inv := Invite{
		ID:              e.ids.NewID(),
		ClanID:          clanID,
		InvitedUserID:   actor.UserID,
		InvitedUsername: actor.Username,
		InvitedAt:       now,
		Status:          InvitePending,
		Kind:            KindRequest,
	}
	store.Clans[idx].Invites = append(store.Clans[idx].Invites, inv)
	*m = user.InvitedTo(clanID, now)
	return inv, nil
}

// Accept joins the clan of the pending invite. Joining twice does not
// duplicate the member.
func (e *Engine) Accept(m *user.Membership, store *Store, actor Actor) (Clan, error) {
	clanID, ok := m.PendingClan()
	if !ok {
		return Clan{}, shared.ErrNoPendingInvite
	}
	idx := store.index(clanID)
	if idx < 0 {
		return Clan{}, shared.ErrClanNotFound
	}

	c := &store.Clans[idx]
	if c.memberIndex(actor.UserID) < 0 {
		c.Members = append(c.Members, Member{
			UserID:    actor.UserID,
			Username:  actor.Username,
			AvatarURL: actor.AvatarURL,
			Role:      RoleMember,
			JoinedAt:  e.clock.Now(),
		})
	}
	resolveInvites(c, actor.UserID, InviteAccepted)

	*m = user.MemberOf(clanID)
	return *c, nil
}

// Decline rejects the pending invite.
func (e *Engine) Decline(m *user.Membership, store *Store, actor Actor) error {
	clanID, ok := m.PendingClan()
	if !ok {
		return shared.ErrNoPendingInvite
	}
	if idx := store.index(clanID); idx >= 0 {
		resolveInvites(&store.Clans[idx], actor.UserID, InviteDeclined)
	}
	*m = user.NoMembership()
	return nil
}

func resolveInvites(c *Clan, userID string, status InviteStatus) {
	for i := range c.Invites {
		if c.Invites[i].InvitedUserID == userID && c.Invites[i].Status == InvitePending {
			c.Invites[i].Status = status
		}
	}
}

// Leave removes a regular member. Clan totals keep the member's past
// contribution. Leaders must disband instead.
func (e *Engine) Leave(m *user.Membership, store *Store, actor Actor) error {
	switch m.Status {
	case user.StatusMember:
	case user.StatusLeader:
		return shared.ErrLeaderMustDisband
	default:
		return shared.ErrNotInClan
	}

	clanID, _ := m.CurrentClan()
	if idx := store.index(clanID); idx >= 0 {
		c := &store.Clans[idx]
		if mi := c.memberIndex(actor.UserID); mi >= 0 {
			c.Members = append(c.Members[:mi], c.Members[mi+1:]...)
		}
	}
	*m = user.NoMembership()
	return nil
}

// Disband deletes the led clan. Other members keep dangling pointers that
// ResolveMembership clears when they are next read.
func (e *Engine) Disband(m *user.Membership, store *Store) (string, error) {
	if m.Status != user.StatusLeader {
		return "", shared.ErrNotClanLeader
	}
	clanID, _ := m.CurrentClan()
	if idx := store.index(clanID); idx >= 0 {
		store.Clans = append(store.Clans[:idx], store.Clans[idx+1:]...)
	}
	*m = user.NoMembership()
	return clanID, nil
}

// SendInvite appends a leader invitation addressed by name. The invitee has
// no user record, so it gets a placeholder id.
func (e *Engine) SendInvite(m *user.Membership, store *Store, username string) (Invite, error) {
	if m.Status != user.StatusLeader {
		return Invite{}, shared.ErrNotClanLeader
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return Invite{}, shared.ErrInvalidUsername
	}
	clanID, _ := m.CurrentClan()
	idx := store.index(clanID)
	if idx < 0 {
		return Invite{}, shared.ErrClanNotFound
	}

	inv := Invite{
		ID:              e.ids.NewID(),
		ClanID:          clanID,
		InvitedUserID:   e.ids.NewID(),
		InvitedUsername: username,
		InvitedAt:       e.clock.Now(),
		Status:          InvitePending,
		Kind:            KindInvitation,
	}
	store.Clans[idx].Invites = append(store.Clans[idx].Invites, inv)
	return inv, nil
}

// RecordContribution credits one session worth xp to the member and the
// clan totals. A contributor missing from the roster is added as a member
// first.
func (e *Engine) RecordContribution(store *Store, clanID string, actor Actor, xp int) error {
	if xp < 0 {
		return shared.ErrInvalidAmount
	}
	idx := store.index(clanID)
	if idx < 0 {
		return shared.ErrClanNotFound
	}

	c := &store.Clans[idx]
	mi := c.memberIndex(actor.UserID)
	if mi < 0 {
		role := RoleMember
		if c.LeaderID == actor.UserID {
			role = RoleLeader
		}
		c.Members = append(c.Members, Member{
			UserID:    actor.UserID,
			Username:  actor.Username,
			AvatarURL: actor.AvatarURL,
			Role:      role,
			JoinedAt:  e.clock.Now(),
		})
		mi = len(c.Members) - 1
	}

	c.Members[mi].ContributionXP += xp
	c.Members[mi].ContributionSessions++
	c.Stats.TotalXP += xp
	c.Stats.TotalSessions++
	return nil
}
