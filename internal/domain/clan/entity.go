// Package clan implements clans: small groups whose members pool the XP and
// sessions they log. All clans live in one ClanStore record.
package clan

import (
	"sort"
	"time"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
)

// MaxTagLength is the longest allowed clan tag.
const MaxTagLength = 5

// Role of a member inside a clan.
type Role string

const (
	RoleLeader Role = "leader"
	RoleMember Role = "member"
)

// Member is a clan member with contribution counters.
type Member struct {
	UserID               string    `json:"userId"`
	Username             string    `json:"username"`
	AvatarURL            string    `json:"avatarUrl"`
	Role                 Role      `json:"role"`
	JoinedAt             time.Time `json:"joinedAt"`
	ContributionXP       int       `json:"contributionXP"`
	ContributionSessions int       `json:"contributionSessions"`
}

// InviteStatus is terminal once accepted or declined.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// InviteKind tells a join request from a leader invitation. Records written
// before the field existed are requests.
type InviteKind string

const (
	KindRequest    InviteKind = "request"
	KindInvitation InviteKind = "invitation"
)

// Invite is an entry in a clan's invite log. Invites are never deleted.
type Invite struct {
	ID              string       `json:"id"`
	ClanID          string       `json:"clanId"`
	InvitedUserID   string       `json:"invitedUserId"`
	InvitedUsername string       `json:"invitedUsername"`
	InvitedAt       time.Time    `json:"invitedAt"`
	Status          InviteStatus `json:"status"`
	Kind            InviteKind   `json:"kind,omitempty"`
}

// EffectiveKind returns the kind, defaulting to a request.
func (i Invite) EffectiveKind() InviteKind {
	if i.Kind == "" {
		return KindRequest
	}
	return i.Kind
}

// Stats are the clan aggregates. They only grow: departures do not subtract.
type Stats struct {
	TotalXP       int       `json:"totalXP"`
	TotalSessions int       `json:"totalSessions"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Clan is one group.
type Clan struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag"`
	Motto     string    `json:"motto,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	LeaderID  string    `json:"leaderId"`
	Members   []Member  `json:"members"`
	Invites   []Invite  `json:"invites"`
	Stats     Stats     `json:"stats"`
}

// Member returns the member with userID.
func (c Clan) Member(userID string) (Member, bool) {
	if i := c.memberIndex(userID); i >= 0 {
		return c.Members[i], true
	}
	return Member{}, false
}

func (c Clan) memberIndex(userID string) int {
	for i, m := range c.Members {
		if m.UserID == userID {
			return i
		}
	}
	return -1
}

// PendingInvites returns invites still awaiting an answer.
func (c Clan) PendingInvites() []Invite {
	var out []Invite
	for _, inv := range c.Invites {
		if inv.Status == InvitePending {
			out = append(out, inv)
		}
	}
	return out
}

// RankedMembers returns members ordered by contributed XP, then sessions,
// then join time.
func (c Clan) RankedMembers() []Member {
	out := make([]Member, len(c.Members))
	copy(out, c.Members)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ContributionXP != out[j].ContributionXP {
			return out[i].ContributionXP > out[j].ContributionXP
		}
		if out[i].ContributionSessions != out[j].ContributionSessions {
			return out[i].ContributionSessions > out[j].ContributionSessions
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

// Store is the record holding every clan.
type Store struct {
	Clans []Clan `json:"clans"`
}

// NewStore returns an empty store.
func NewStore() Store {
	return Store{Clans: []Clan{}}
}

// Normalize replaces nil slices.
func (s *Store) Normalize() {
	if s.Clans == nil {
		s.Clans = []Clan{}
	}
	for i := range s.Clans {
		if s.Clans[i].Members == nil {
			s.Clans[i].Members = []Member{}
		}
		if s.Clans[i].Invites == nil {
			s.Clans[i].Invites = []Invite{}
		}
	}
}

// Find returns a copy of the clan with id.
func (s Store) Find(id string) (Clan, bool) {
	if i := s.index(id); i >= 0 {
		return s.Clans[i], true
	}
	return Clan{}, false
}

func (s Store) index(id string) int {
	for i, c := range s.Clans {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the shape a stored record must have to be trusted.
func (s Store) Validate() error {
	seen := make(map[string]struct{}, len(s.Clans))
	for _, c := range s.Clans {
		if c.ID == "" {
			return errInvalidStore("clan without id")
		}
		if _, dup := seen[c.ID]; dup {
			return errInvalidStore("duplicate clan id")
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

func errInvalidStore(msg string) error {
	return shared.NewDomainError("clan", "Validate", shared.ErrInvalidState, msg)
}
