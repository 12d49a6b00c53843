package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/app/user"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	registry, err := user.NewRegistry("admin", "admin123")
	require.NoError(t, err)
	return NewHub(registry, NewLobbyDirectory())
}

// newTestSession builds a registered session without a network connection.
// Outbound messages accumulate in the send queue where tests can read them.
func newTestSession(h *Hub) *Session {
	s := &Session{
		id:     uuid.NewString(),
		hub:    h,
		send:   make(chan []byte, sendQueueSize),
		logger: zerolog.Nop(),
	}
	h.Register(s)
	return s
}

// authedTestSession binds a fresh user to a new session and places it in the
// given lobby, mirroring what a successful REGISTER/LOGIN does.
func authedTestSession(t *testing.T, h *Hub, name string, isAdmin bool, lobby string) *Session {
	t.Helper()

	s := newTestSession(h)
	u := testUser(t, name, isAdmin)
	require.Nil(t, h.Lobbies.Join(u, lobby))
	s.bindUser(u)
	return s
}

// drainMessages decodes everything currently queued on the session.
func drainMessages(t *testing.T, s *Session) []Message {
	t.Helper()

	var out []Message
	for {
		select {
		case payload, ok := <-s.send:
			if !ok {
				return out
			}
			var m Message
			require.NoError(t, json.Unmarshal(payload, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func TestBroadcastToLobbyTargeting(t *testing.T) {
	h := newTestHub(t)

	alice := authedTestSession(t, h, "alice", false, GeneralLobby)
	bob := authedTestSession(t, h, "bob", false, "Games")
	anon := newTestSession(h)

	h.BroadcastToLobby(NewMessage(TypeChat, "alice", "hello", GeneralLobby), GeneralLobby)

	aliceMsgs := drainMessages(t, alice)
	require.Len(t, aliceMsgs, 1)
	assert.Equal(t, TypeChat, aliceMsgs[0].Type)
	assert.Equal(t, "hello", aliceMsgs[0].Content)
	assert.Equal(t, GeneralLobby, aliceMsgs[0].Lobby)

	assert.Empty(t, drainMessages(t, bob), "sessions in other lobbies must not receive the broadcast")
	assert.Empty(t, drainMessages(t, anon), "unauthenticated sessions must be skipped")
}

func TestBroadcastToAll(t *testing.T) {
	h := newTestHub(t)

	alice := authedTestSession(t, h, "alice", false, GeneralLobby)
	bob := authedTestSession(t, h, "bob", false, "Games")
	anon := newTestSession(h)

	h.BroadcastToAll(NewMessage(TypeLobbyList, SystemSender, "General", ""))

	assert.Len(t, drainMessages(t, alice), 1)
	assert.Len(t, drainMessages(t, bob), 1)
	assert.Empty(t, drainMessages(t, anon))
}

func TestUserListContent(t *testing.T) {
	h := newTestHub(t)

	authedTestSession(t, h, "zoe", false, GeneralLobby)
	authedTestSession(t, h, "root", true, GeneralLobby)

	assert.Equal(t, "root (Admin),zoe", h.UserListContent(GeneralLobby))
	assert.Equal(t, "", h.UserListContent("Games"))
}

func TestLobbyListContent(t *testing.T) {
	h := newTestHub(t)

	assert.Equal(t,
		"Admin (Admin),Games,General,Moderation (Admin),Movies,Music",
		h.LobbyListContent(),
	)
}

func TestBroadcastUserList(t *testing.T) {
	h := newTestHub(t)

	alice := authedTestSession(t, h, "alice", false, GeneralLobby)
	bob := authedTestSession(t, h, "bob", false, GeneralLobby)
	carol := authedTestSession(t, h, "carol", false, "Movies")

	h.BroadcastUserList(GeneralLobby)

	for _, s := range []*Session{alice, bob} {
		msgs := drainMessages(t, s)
		require.Len(t, msgs, 1)
		assert.Equal(t, TypeUserList, msgs[0].Type)
		assert.Equal(t, "alice,bob", msgs[0].Content)
		assert.Equal(t, GeneralLobby, msgs[0].Lobby)
	}

	assert.Empty(t, drainMessages(t, carol))
}

// TestBroadcastDropsOverflowingSession verifies that one stuck session does
// not block fan-out and gets torn down on its own.
func TestBroadcastDropsOverflowingSession(t *testing.T) {
	h := newTestHub(t)

	stuck := authedTestSession(t, h, "stuck", false, GeneralLobby)
	healthy := authedTestSession(t, h, "healthy", false, GeneralLobby)

	for stuck.queue([]byte("{}")) {
	}

	h.BroadcastToLobby(NewMessage(TypeChat, SystemSender, "overflow probe", GeneralLobby), GeneralLobby)

	// The stuck session's async teardown may interleave its own broadcasts,
	// so only check that the probe arrived.
	var contents []string
	for _, m := range drainMessages(t, healthy) {
		contents = append(contents, m.Content)
	}
	assert.Contains(t, contents, "overflow probe", "healthy session must still receive the broadcast")

	require.Eventually(t, func() bool {
		return h.SessionCount() == 1
	}, time.Second, 10*time.Millisecond, "overflowing session must be dropped from the live set")

	assert.NotContains(t, memberNames(h.Lobbies, GeneralLobby), "stuck")
}

func TestShutdownClosesSessions(t *testing.T) {
	h := newTestHub(t)

	authedTestSession(t, h, "alice", false, GeneralLobby)
	newTestSession(h)
	require.Equal(t, 2, h.SessionCount())

	h.Shutdown()

	assert.Equal(t, 0, h.SessionCount())
	assert.Empty(t, memberNames(h.Lobbies, GeneralLobby))
}
