package query

import (
	"context"
	"fmt"

	"github.com/levelup-fitness/levelup-core/internal/domain/clan"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLAN QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// ClanSummaryDTO is one clan in the browse list.
type ClanSummaryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Tag         string `json:"tag"`
	Motto       string `json:"motto,omitempty"`
	MemberCount int    `json:"member_count"`
	TotalXP     int    `json:"total_xp"`
}

// ClanViewResult contains the user's clan standing.
type ClanViewResult struct {
	Membership user.Membership `json:"membership"`

	// Clan is the joined or led clan.
	Clan *clan.Clan `json:"clan,omitempty"`

	// Ranked is the member list ordered by contribution.
	Ranked []clan.Member `json:"ranked,omitempty"`

	// Pending are the open invites of the led clan.
	Pending []clan.Invite `json:"pending,omitempty"`

	// InvitedTo is the clan of a pending request.
	InvitedTo *ClanSummaryDTO `json:"invited_to,omitempty"`

	// Available lists every clan, for browsing when not in one.
	Available []ClanSummaryDTO `json:"available"`
}

// ClanViewHandler handles the clan query.
type ClanViewHandler struct {
	deps Deps
}

// NewClanViewHandler creates a new ClanViewHandler.
func NewClanViewHandler(deps Deps) *ClanViewHandler {
	return &ClanViewHandler{deps: deps.withDefaults()}
}

// Handle builds the clan view.
func (h *ClanViewHandler) Handle(ctx context.Context) (*ClanViewResult, error) {
	u, err := h.deps.Users.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("clan_view: %w", err)
	}
	store, err := h.deps.Clans.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("clan_view: %w", err)
	}

	m, _ := clan.ResolveMembership(u.Clan, store)
	result := &ClanViewResult{
		Membership: m,
		Available:  make([]ClanSummaryDTO, 0, len(store.Clans)),
	}
	for _, c := range store.Clans {
		result.Available = append(result.Available, summarize(c))
	}

	if id, ok := m.CurrentClan(); ok {
		if c, found := store.Find(id); found {
			result.Clan = &c
			result.Ranked = c.RankedMembers()
			if m.Status == user.StatusLeader {
				result.Pending = c.PendingInvites()
			}
		}
	}
	if id, ok := m.PendingClan(); ok {
		if c, found := store.Find(id); found {
			s := summarize(c)
			result.InvitedTo = &s
		}
	}
	return result, nil
}

func summarize(c clan.Clan) ClanSummaryDTO {
	return ClanSummaryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Tag:         c.Tag,
		Motto:       c.Motto,
		MemberCount: len(c.Members),
		TotalXP:     c.Stats.TotalXP,
	}
}
