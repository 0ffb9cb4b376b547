package whatsapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfcastro/juniorbot/internal/logging"
)

func testRoster(t *testing.T, net *fakeNetwork, ready bool) *Roster {
	t.Helper()
	sess := testSession(t, net, nil)
	if ready {
		makeReady(t, sess, net)
	}
	return NewRoster(sess, logging.New(nil, "silent"))
}

func TestExtractGroupNumbers_NotReady(t *testing.T) {
	r := testRoster(t, &fakeNetwork{}, false)

	result := r.ExtractGroupNumbers(context.Background(), "12036302")
	assert.False(t, result.Success)
	assert.Empty(t, result.Numbers)
}

func TestExtractGroupNumbers_NotAGroup(t *testing.T) {
	net := &fakeNetwork{chats: map[string]ChatInfo{
		"5511999990000@g.us": {ID: "5511999990000@c.us", Name: "Maria", IsGroup: false},
	}}
	r := testRoster(t, net, true)

	result := r.ExtractGroupNumbers(context.Background(), "5511999990000")
	assert.False(t, result.Success)
	assert.Equal(t, ErrInvalidTarget.Error(), result.Error)
	assert.Empty(t, result.Numbers)
}

func TestExtractGroupNumbers_Success(t *testing.T) {
	net := &fakeNetwork{chats: map[string]ChatInfo{
		"12036302@g.us": {
			ID:      "12036302@g.us",
			Name:    "Clientes VIP",
			IsGroup: true,
			Participants: []string{
				"5511999990000@c.us",
				"5511888880000@c.us",
				"5511999990000@c.us", // duplicate from the network
			},
		},
	}}
	r := testRoster(t, net, true)

	result := r.ExtractGroupNumbers(context.Background(), "12036302")
	require.True(t, result.Success)
	assert.Equal(t, "Clientes VIP", result.GroupName)
	assert.Equal(t, 2, result.ParticipantCount)
	assert.Equal(t, []string{"5511999990000", "5511888880000"}, result.Numbers)
}

func TestExtractGroupNumbers_NetworkError(t *testing.T) {
	net := &fakeNetwork{chatErr: errors.New("chat unreachable")}
	r := testRoster(t, net, true)

	result := r.ExtractGroupNumbers(context.Background(), "12036302")
	assert.False(t, result.Success)
	assert.Equal(t, "chat unreachable", result.Error)
	assert.Empty(t, result.Numbers)
}

func TestCreateGroup_NotReady(t *testing.T) {
	r := testRoster(t, &fakeNetwork{}, false)

	result := r.CreateGroup(context.Background(), "Promo", []string{"111"})
	assert.False(t, result.Success)
}

func TestCreateGroup_Success(t *testing.T) {
	net := &fakeNetwork{}
	r := testRoster(t, net, true)

	result := r.CreateGroup(context.Background(), "Promo", []string{"111", "222@c.us"})
	require.True(t, result.Success)
	assert.Equal(t, "12036302@g.us", result.GroupID)
	assert.Equal(t, "Promo", result.GroupName)
	assert.Equal(t, 2, result.ParticipantCount)
	assert.Equal(t, "Promo", net.createdGroup)
}

func TestCreateGroup_Failure(t *testing.T) {
	net := &fakeNetwork{createErr: errors.New("quota exceeded")}
	r := testRoster(t, net, true)

	result := r.CreateGroup(context.Background(), "Promo", []string{"111"})
	assert.False(t, result.Success)
	assert.Equal(t, "quota exceeded", result.Error)
}

func TestAddressHelpers(t *testing.T) {
	tests := []struct {
		in       string
		user     string
		group    string
		isUser   bool
		stripped string
	}{
		{"5511999990000", "5511999990000@c.us", "5511999990000@g.us", false, "5511999990000"},
		{"5511999990000@c.us", "5511999990000@c.us", "5511999990000@c.us@g.us", true, "5511999990000"},
		{"12036302@g.us", "12036302@g.us@c.us", "12036302@g.us", false, "12036302@g.us"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.user, NormalizeUser(tt.in))
		assert.Equal(t, tt.group, NormalizeGroup(tt.in))
		assert.Equal(t, tt.isUser, IsUserAddress(tt.in))
		assert.Equal(t, tt.stripped, StripUser(tt.in))
	}
}
