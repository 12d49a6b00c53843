/*
Package chat contains the core logic for handling lobbies, user sessions, and message broadcasting.

This file defines the Hub, which owns the set of live sessions, the user registry, and the
lobby directory. It routes broadcasts to the sessions whose bound user occupies a given lobby
and fans lobby-list updates out to every authenticated session.
*/
package chat

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"messenger/internal/app/user"
	"messenger/internal/pkg/logx"
)

// Hub coordinates all live sessions and the shared registry and directory.
// Sessions never call each other directly; every cross-session effect goes
// through the Hub.
type Hub struct {
	// Users holds all registered accounts.
	Users *user.Registry

	// Lobbies holds all lobbies and their membership sets.
	Lobbies *LobbyDirectory

	// mu guards the sessions set. Broadcasts iterate over a snapshot so
	// concurrent registration/removal never corrupts a fan-out pass.
	mu       sync.RWMutex
	sessions map[*Session]struct{}

	logger zerolog.Logger
}

// NewHub constructs a Hub around the given registry and lobby directory.
func NewHub(users *user.Registry, lobbies *LobbyDirectory) *Hub {
	return &Hub{
		Users:    users,
		Lobbies:  lobbies,
		sessions: make(map[*Session]struct{}),
		logger:   logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Register adds a session to the live set. It is called on accept, before
// the session's pumps start.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	total := len(h.sessions)
	h.mu.Unlock()

	h.logger.Info().Str("session_id", s.id).Int("total_sessions", total).Msg("Session registered.")
}

// unregister removes a session from the live set. Safe to call repeatedly.
func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	if ok {
		delete(h.sessions, s)
	}
	total := len(h.sessions)
	h.mu.Unlock()

	if ok {
		h.logger.Info().Str("session_id", s.id).Int("total_sessions", total).Msg("Session unregistered.")
	}
}

// SessionCount returns the number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// snapshot returns a point-in-time copy of the live session set.
func (h *Hub) snapshot() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// deliver marshals the message once and queues it on every target session.
// Delivery is best-effort: a session whose send queue is full is torn down
// on its own goroutine and never blocks delivery to the others.
func (h *Hub) deliver(msg Message, target func(*Session) bool) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("msg_type", string(msg.Type)).Msg("Error marshaling message for broadcast.")
		return
	}

	sent := 0
	for _, s := range h.snapshot() {
		if !target(s) {
			continue
		}

		if s.queue(payload) {
			sent++
			continue
		}

		h.logger.Warn().Str("session_id", s.id).Msg("Session send queue full or closed, dropping session.")
		go s.Close()
	}

	h.logger.Debug().Str("msg_type", string(msg.Type)).Int("recipients", sent).Msg("Message broadcast.")
}

// BroadcastToLobby delivers the message to every live session whose bound
// user currently occupies the named lobby. Unauthenticated sessions are skipped.
func (h *Hub) BroadcastToLobby(msg Message, lobby string) {
	h.deliver(msg, func(s *Session) bool {
		u := s.User()
		return u != nil && u.CurrentLobby() == lobby
	})
}

// BroadcastToAll delivers the message to every live, authenticated session
// regardless of lobby. Used for lobby-list refreshes, since lobby existence
// is global.
func (h *Hub) BroadcastToAll(msg Message) {
	h.deliver(msg, func(s *Session) bool {
		return s.User() != nil
	})
}

// UserListContent builds the comma-joined member list of a lobby, with
// administrators suffixed " (Admin)".
func (h *Hub) UserListContent(lobby string) string {
	members := h.Lobbies.Members(lobby)

	names := make([]string, 0, len(members))
	for _, u := range members {
		names = append(names, u.DisplayName())
	}
	sort.Strings(names)

	return strings.Join(names, ",")
}

// LobbyListContent builds the comma-joined list of all lobby names, with
// admin-only lobbies suffixed " (Admin)".
func (h *Hub) LobbyListContent() string {
	names := h.Lobbies.Names()

	entries := make([]string, 0, len(names))
	for _, name := range names {
		if h.Lobbies.IsAdminOnly(name) {
			name += " (Admin)"
		}
		entries = append(entries, name)
	}

	return strings.Join(entries, ",")
}

// BroadcastUserList sends the refreshed member list of a lobby to every
// session currently in that lobby.
func (h *Hub) BroadcastUserList(lobby string) {
	msg := NewMessage(TypeUserList, SystemSender, h.UserListContent(lobby), lobby)
	h.BroadcastToLobby(msg, lobby)
}

// BroadcastUserListAll refreshes the member list of every lobby. Used after
// login/registration so client-side totals stay current everywhere.
func (h *Hub) BroadcastUserListAll() {
	for _, lobby := range h.Lobbies.Names() {
		h.BroadcastUserList(lobby)
	}
}

// BroadcastLobbyList sends the refreshed lobby list to every authenticated
// session. Used after an admin creates or deletes a lobby.
func (h *Hub) BroadcastLobbyList() {
	msg := NewMessage(TypeLobbyList, SystemSender, h.LobbyListContent(), "")
	h.BroadcastToAll(msg)
}

// Shutdown closes every remaining session. The HTTP listener is expected to
// have stopped accepting connections before this is called.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub, closing remaining sessions...")

	for _, s := range h.snapshot() {
		s.Close()
	}

	h.logger.Info().Msg("Hub shutdown complete.")
}
