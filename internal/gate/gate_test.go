package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/cinebot/internal/domain"
)

type channelList []domain.Channel

func (l channelList) ListChannels(context.Context) ([]domain.Channel, error) { return l, nil }

type brokenChannels struct{}

func (brokenChannels) ListChannels(context.Context) ([]domain.Channel, error) {
	return nil, errors.New("db down")
}

type members map[int64]domain.MemberStatus

func (m members) Membership(_ context.Context, channelID, _ int64) (domain.MemberStatus, error) {
	status, ok := m[channelID]
	if !ok {
		return "", errors.New("Bad Request: chat not found (400)")
	}
	return status, nil
}

func TestNoChannelsNeverGated(t *testing.T) {
	g := New(channelList(nil), members{})
	assert.False(t, g.IsGated(context.Background(), 1))
	kb, err := g.Buttons(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, kb)
}

func TestMembershipStatuses(t *testing.T) {
	chs := channelList{{ChatID: 1, Handle: "a"}, {ChatID: 2, Handle: "b"}, {ChatID: 3, InviteLink: "https://t.me/+x"}}
	g := New(chs, members{1: domain.MemberCreator, 2: domain.MemberLeft, 3: domain.MemberAdministrator})

	missing, err := g.UnsatisfiedChannels(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, int64(2), missing[0].ChatID)
	assert.True(t, g.IsGated(context.Background(), 7))

	kb, err := g.Buttons(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, kb, 2)
	assert.Equal(t, "https://t.me/b", kb[0][0].URL)
	assert.Equal(t, CheckUnique, kb[1][0].Unique)
}

func TestFailedQueryFailsClosed(t *testing.T) {
	g := New(channelList{{ChatID: 99, Handle: "gone"}}, members{})
	assert.True(t, g.IsGated(context.Background(), 7))

	g = New(brokenChannels{}, members{})
	assert.True(t, g.IsGated(context.Background(), 7))
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed("/start", ""))
	assert.True(t, Allowed("/MyID@cinebot", ""))
	assert.True(t, Allowed("", CheckUnique))
	assert.False(t, Allowed("/top", ""))
	assert.False(t, Allowed("", "top"))
}
