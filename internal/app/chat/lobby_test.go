package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/app/user"
	"messenger/internal/pkg/errs"
)

func testUser(t *testing.T, name string, isAdmin bool) *user.User {
	t.Helper()

	u, err := user.NewUser(name, "pw", isAdmin)
	require.NoError(t, err)
	return u
}

// memberNames returns the usernames in a lobby snapshot.
func memberNames(d *LobbyDirectory, lobby string) []string {
	members := d.Members(lobby)
	names := make([]string, 0, len(members))
	for _, u := range members {
		names = append(names, u.Username)
	}
	return names
}

func TestDefaultLobbies(t *testing.T) {
	d := NewLobbyDirectory()

	assert.ElementsMatch(t,
		[]string{"Admin", "Games", "General", "Moderation", "Movies", "Music"},
		d.Names(),
	)
	assert.Equal(t, 6, d.Count())

	assert.True(t, d.IsAdminOnly("Admin"))
	assert.True(t, d.IsAdminOnly("Moderation"))
	assert.False(t, d.IsAdminOnly(GeneralLobby))
	assert.False(t, d.IsAdminOnly("Music"))
}

func TestAddDuplicateLobby(t *testing.T) {
	d := NewLobbyDirectory()

	assert.True(t, d.Add("VIP", false))
	assert.False(t, d.Add("VIP", true), "duplicate lobby name must be refused")
	assert.False(t, d.IsAdminOnly("VIP"), "losing Add must not flip the admin flag")
}

func TestJoinTransfersMembership(t *testing.T) {
	d := NewLobbyDirectory()
	alice := testUser(t, "alice", false)

	require.Nil(t, d.Join(alice, GeneralLobby))
	assert.Equal(t, []string{"alice"}, memberNames(d, GeneralLobby))

	require.Nil(t, d.Join(alice, "Games"))
	assert.Equal(t, "Games", alice.CurrentLobby())
	assert.Empty(t, memberNames(d, GeneralLobby), "join must vacate the previous lobby")
	assert.Equal(t, []string{"alice"}, memberNames(d, "Games"))
}

func TestJoinUnknownLobby(t *testing.T) {
	d := NewLobbyDirectory()
	alice := testUser(t, "alice", false)
	require.Nil(t, d.Join(alice, GeneralLobby))

	customErr := d.Join(alice, "Nowhere")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrLobbyNotFound, customErr.Code)

	assert.Equal(t, GeneralLobby, alice.CurrentLobby(), "failed join must leave the current lobby unchanged")
	assert.Equal(t, []string{"alice"}, memberNames(d, GeneralLobby))
}

func TestJoinAdminOnlyLobby(t *testing.T) {
	d := NewLobbyDirectory()
	alice := testUser(t, "alice", false)
	admin := testUser(t, "root", true)
	require.Nil(t, d.Join(alice, GeneralLobby))
	require.Nil(t, d.Join(admin, GeneralLobby))

	customErr := d.Join(alice, "Admin")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrLobbyAdminOnly, customErr.Code)
	assert.Equal(t, GeneralLobby, alice.CurrentLobby())

	require.Nil(t, d.Join(admin, "Admin"))
	assert.Equal(t, "Admin", admin.CurrentLobby())
	assert.Equal(t, []string{"alice"}, memberNames(d, GeneralLobby))
}

func TestLeaveIsIdempotent(t *testing.T) {
	d := NewLobbyDirectory()
	alice := testUser(t, "alice", false)
	require.Nil(t, d.Join(alice, "Games"))

	d.Leave(alice, "Games")
	assert.Empty(t, memberNames(d, "Games"))

	// Repeated and unknown-lobby leaves change nothing.
	d.Leave(alice, "Games")
	d.Leave(alice, "Nowhere")
	assert.Empty(t, memberNames(d, "Games"))
}

func TestRemoveGeneralRefused(t *testing.T) {
	d := NewLobbyDirectory()
	alice := testUser(t, "alice", false)
	require.Nil(t, d.Join(alice, GeneralLobby))

	customErr := d.Remove(GeneralLobby)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrLobbyUndeletable, customErr.Code)

	assert.True(t, d.Exists(GeneralLobby))
	assert.Equal(t, []string{"alice"}, memberNames(d, GeneralLobby))
}

func TestRemoveUnknownLobby(t *testing.T) {
	d := NewLobbyDirectory()

	customErr := d.Remove("Nowhere")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrLobbyNotFound, customErr.Code)
	assert.Equal(t, 6, d.Count())
}

func TestRemoveMigratesMembersToGeneral(t *testing.T) {
	d := NewLobbyDirectory()
	require.True(t, d.Add("Doomed", false))

	users := make([]*user.User, 0, 3)
	for i := 0; i < 3; i++ {
		u := testUser(t, fmt.Sprintf("user-%d", i), false)
		require.Nil(t, d.Join(u, "Doomed"))
		users = append(users, u)
	}

	require.Nil(t, d.Remove("Doomed"))

	assert.False(t, d.Exists("Doomed"))
	assert.NotContains(t, d.Names(), "Doomed")
	assert.Len(t, d.Members(GeneralLobby), 3)

	for _, u := range users {
		assert.Equal(t, GeneralLobby, u.CurrentLobby())
	}
}

// TestSingleLobbyInvariant drives a user through an arbitrary sequence of
// join/leave/remove operations and checks after each step that the user is a
// member of exactly one lobby.
func TestSingleLobbyInvariant(t *testing.T) {
	d := NewLobbyDirectory()
	alice := testUser(t, "alice", false)
	require.Nil(t, d.Join(alice, GeneralLobby))

	countMemberships := func() int {
		total := 0
		for _, name := range d.Names() {
			for _, u := range d.Members(name) {
				if u.Username == "alice" {
					total++
				}
			}
		}
		return total
	}

	steps := []func(){
		func() { d.Join(alice, "Games") },
		func() { d.Join(alice, "Nowhere") },
		func() { d.Add("Temp", false); d.Join(alice, "Temp") },
		func() { d.Remove("Temp") },
		func() { d.Join(alice, "Movies") },
		func() { d.Leave(alice, "Movies"); d.Join(alice, GeneralLobby) },
	}

	for i, step := range steps {
		step()
		assert.Equalf(t, 1, countMemberships(), "step %d left alice in %d lobbies", i, countMemberships())
	}
}

// TestConcurrentTransfers hammers the directory with concurrent join
// transfers and verifies nobody is duplicated or lost afterwards.
func TestConcurrentTransfers(t *testing.T) {
	d := NewLobbyDirectory()

	const workers = 16
	lobbies := []string{GeneralLobby, "Games", "Movies", "Music"}

	users := make([]*user.User, workers)
	for i := range users {
		users[i] = testUser(t, fmt.Sprintf("user-%d", i), false)
		require.Nil(t, d.Join(users[i], GeneralLobby))
	}

	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(u *user.User, seed int) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				d.Join(u, lobbies[(seed+n)%len(lobbies)])
			}
		}(u, i)
	}
	wg.Wait()

	total := 0
	for _, name := range d.Names() {
		total += len(d.Members(name))
	}
	assert.Equal(t, workers, total, "every user must occupy exactly one lobby after the storm")
}
