package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-fitness/levelup-core/internal/application/command"
	"github.com/levelup-fitness/levelup-core/internal/domain/clan"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
)

func TestClanView_NotInClan(t *testing.T) {
	f := newFixture(t)

	res, err := NewClanViewHandler(f.reads).Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.StatusNone, res.Membership.Status)
	assert.Nil(t, res.Clan)
	assert.Empty(t, res.Available)
}

func TestClanView_Leader(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clans := command.NewClanHandler(f.cmds)

	_, err := clans.Create(ctx, command.CreateClanCommand{Name: "Iron Will", Tag: "IW"})
	require.NoError(t, err)
	_, err = clans.SendInvite(ctx, "friend")
	require.NoError(t, err)
	f.logSession(t)

	res, err := NewClanViewHandler(f.reads).Handle(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Clan)
	assert.Equal(t, "Iron Will", res.Clan.Name)
	require.Len(t, res.Ranked, 1)
	assert.Equal(t, 110, res.Ranked[0].ContributionXP)
	require.Len(t, res.Pending, 1)
	assert.Equal(t, "friend", res.Pending[0].InvitedUsername)
	require.Len(t, res.Available, 1)
	assert.Equal(t, 110, res.Available[0].TotalXP)
}

func TestClanView_DanglingMembershipIsShownResolved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.repos.Users.Update(ctx, func(u *user.User) error {
		u.Clan = user.MemberOf("gone")
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, f.repos.Clans.Set(ctx, clan.NewStore()))

	res, err := NewClanViewHandler(f.reads).Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.StatusNone, res.Membership.Status)

	stored, err := f.repos.Users.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.StatusMember, stored.Clan.Status, "queries do not write")
}
