package user

import (
	"time"
)

// MembershipStatus is the user's position in the clan state machine.
type MembershipStatus string

const (
	StatusNone    MembershipStatus = "none"
	StatusInvited MembershipStatus = "invited"
	StatusMember  MembershipStatus = "member"
	StatusLeader  MembershipStatus = "leader"
)

// Membership is the clan pointer stored on the user. ClanID is set only for
// members and leaders; InvitedClanID and InvitedAt only while invited.
type Membership struct {
	Status        MembershipStatus `json:"status"`
	ClanID        *string          `json:"clanId"`
	InvitedClanID *string          `json:"invitedClanId"`
	InvitedAt     *time.Time       `json:"invitedAt"`
}

// NoMembership is the "not in a clan" state.
func NoMembership() Membership {
	return Membership{Status: StatusNone}
}

// InvitedTo is the state of a pending request for clanID.
func InvitedTo(clanID string, at time.Time) Membership {
	return Membership{Status: StatusInvited, InvitedClanID: &clanID, InvitedAt: &at}
}

// MemberOf is the state of a regular member.
func MemberOf(clanID string) Membership {
	return Membership{Status: StatusMember, ClanID: &clanID}
}

// LeaderOf is the state of a clan leader.
func LeaderOf(clanID string) Membership {
	return Membership{Status: StatusLeader, ClanID: &clanID}
}

// InClan returns true for members and leaders.
func (m Membership) InClan() bool {
	return m.Status == StatusMember || m.Status == StatusLeader
}

// CurrentClan returns the clan id for members and leaders.
func (m Membership) CurrentClan() (string, bool) {
	if !m.InClan() || m.ClanID == nil {
		return "", false
	}
	return *m.ClanID, true
}

// PendingClan returns the clan id of a pending invite.
func (m Membership) PendingClan() (string, bool) {
	if m.Status != StatusInvited || m.InvitedClanID == nil {
		return "", false
	}
	return *m.InvitedClanID, true
}

// Valid reports whether the pointers match the status.
func (m Membership) Valid() bool {
	switch m.Status {
	case StatusNone:
		return m.ClanID == nil && m.InvitedClanID == nil && m.InvitedAt == nil
	case StatusInvited:
		return m.ClanID == nil && m.InvitedClanID != nil && *m.InvitedClanID != "" && m.InvitedAt != nil
	case StatusMember, StatusLeader:
		return m.ClanID != nil && *m.ClanID != "" && m.InvitedClanID == nil && m.InvitedAt == nil
	default:
		return false
	}
}

// Repair rebuilds a membership from whatever pointers survive, falling back
// to none. Used by migrations on legacy records.
func (m Membership) Repair() Membership {
	if m.Valid() {
		return m
	}
	switch m.Status {
	case StatusMember, StatusLeader:
		if m.ClanID != nil && *m.ClanID != "" {
			return Membership{Status: m.Status, ClanID: m.ClanID}
		}
	case StatusInvited:
		if m.InvitedClanID != nil && *m.InvitedClanID != "" {
			at := time.Time{}
			if m.InvitedAt != nil {
				at = *m.InvitedAt
			}
			return InvitedTo(*m.InvitedClanID, at)
		}
	}
	return NoMembership()
}
