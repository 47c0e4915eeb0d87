package command

import (
	"context"
	"fmt"

	"github.com/levelup-fitness/levelup-core/internal/domain/clan"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLAN COMMANDS
// Each action loads the user and the clan store, repairs a dangling
// membership, applies one engine transition and saves both records.
// ══════════════════════════════════════════════════════════════════════════════

// CreateClanCommand founds a clan.
type CreateClanCommand struct {
	Name  string
	Tag   string
	Motto string
}

// ClanResult contains the membership after a clan command.
type ClanResult struct {
	// Applied is false when the action did not apply to the membership.
	Applied    bool
	Membership user.Membership

	// Clan is the clan the action touched, when it still exists.
	Clan   *clan.Clan
	Invite *clan.Invite
}

// ClanHandler handles the clan commands.
type ClanHandler struct {
	deps Deps
}

// NewClanHandler creates a new ClanHandler.
func NewClanHandler(deps Deps) *ClanHandler {
	return &ClanHandler{deps: deps.withDefaults()}
}

// clanOp applies a transition to m and store and returns the touched clan id.
type clanOp func(m *user.Membership, store *clan.Store, actor clan.Actor, res *ClanResult) (string, error)

func (h *ClanHandler) apply(ctx context.Context, op string, event shared.EventType, fn clanOp) (*ClanResult, error) {
	u, err := h.deps.Users.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	store, err := h.deps.Clans.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resolved, repaired := clan.ResolveMembership(u.Clan, store)
	u.Clan = resolved

	res := &ClanResult{}
	m := u.Clan
	clanID, opErr := fn(&m, &store, clan.ActorOf(u), res)
	if opErr != nil {
		if repaired {
			if err := h.deps.Users.Set(ctx, u); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		if h.deps.skipped(ctx, op, opErr) {
			res.Membership = u.Clan
			return res, nil
		}
		return nil, fmt.Errorf("%s: %w", op, opErr)
	}

	if err := h.deps.Clans.Set(ctx, store); err != nil {
		return nil, fmt.Errorf("%s: save clans: %w", op, err)
	}
	u.Clan = m
	if err := h.deps.Users.Set(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: save user: %w", op, err)
	}

	res.Applied = true
	res.Membership = m
	if c, ok := store.Find(clanID); ok {
		res.Clan = &c
	}

	h.deps.Logger.InfoContext(ctx, "clan action applied",
		logger.Operation(op),
		logger.ClanID(clanID),
		logger.UserID(u.Profile.ID),
	)
	if event != "" {
		h.deps.publish(ctx, shared.ClanEvent{
			BaseEvent: shared.NewBaseEvent(event, clanID, h.deps.Clock.Now()),
			ClanID:    clanID,
			UserID:    u.Profile.ID,
		})
	}
	return res, nil
}

// Create founds a clan led by the user.
func (h *ClanHandler) Create(ctx context.Context, cmd CreateClanCommand) (*ClanResult, error) {
	return h.apply(ctx, "create_clan", shared.EventClanCreated,
		func(m *user.Membership, store *clan.Store, actor clan.Actor, _ *ClanResult) (string, error) {
			c, err := h.deps.engine.Create(m, store, actor, cmd.Name, cmd.Tag, cmd.Motto)
			return c.ID, err
		})
}

// RequestInvite asks to join clanID.
func (h *ClanHandler) RequestInvite(ctx context.Context, clanID string) (*ClanResult, error) {
	return h.apply(ctx, "request_invite", "",
		func(m *user.Membership, store *clan.Store, actor clan.Actor, res *ClanResult) (string, error) {
			inv, err := h.deps.engine.RequestInvite(m, store, actor, clanID)
			if err == nil {
				res.Invite = &inv
			}
			return clanID, err
		})
}

// AcceptInvite joins the clan of the pending invite.
func (h *ClanHandler) AcceptInvite(ctx context.Context) (*ClanResult, error) {
	return h.apply(ctx, "accept_invite", shared.EventClanJoined,
		func(m *user.Membership, store *clan.Store, actor clan.Actor, _ *ClanResult) (string, error) {
			c, err := h.deps.engine.Accept(m, store, actor)
			return c.ID, err
		})
}

// DeclineInvite rejects the pending invite.
func (h *ClanHandler) DeclineInvite(ctx context.Context) (*ClanResult, error) {
	return h.apply(ctx, "decline_invite", "",
		func(m *user.Membership, store *clan.Store, actor clan.Actor, _ *ClanResult) (string, error) {
			clanID, _ := m.PendingClan()
			return clanID, h.deps.engine.Decline(m, store, actor)
		})
}

// Leave leaves the current clan. Leaders must disband instead.
func (h *ClanHandler) Leave(ctx context.Context) (*ClanResult, error) {
	return h.apply(ctx, "leave_clan", shared.EventClanLeft,
		func(m *user.Membership, store *clan.Store, actor clan.Actor, _ *ClanResult) (string, error) {
			clanID, _ := m.CurrentClan()
			return clanID, h.deps.engine.Leave(m, store, actor)
		})
}

// Disband deletes the clan the user leads.
func (h *ClanHandler) Disband(ctx context.Context) (*ClanResult, error) {
	return h.apply(ctx, "disband_clan", shared.EventClanDisbanded,
		func(m *user.Membership, store *clan.Store, _ clan.Actor, _ *ClanResult) (string, error) {
			return h.deps.engine.Disband(m, store)
		})
}

// SendInvite invites a user by name to the led clan.
func (h *ClanHandler) SendInvite(ctx context.Context, username string) (*ClanResult, error) {
	return h.apply(ctx, "send_invite", "",
		func(m *user.Membership, store *clan.Store, _ clan.Actor, res *ClanResult) (string, error) {
			inv, err := h.deps.engine.SendInvite(m, store, username)
			if err == nil {
				res.Invite = &inv
			}
			return inv.ClanID, err
		})
}
