/*
Package chat contains the core logic for handling lobbies, user sessions, and message broadcasting.

This file defines the Session struct, representing one client WebSocket connection. It manages
the session's lifecycle, the message pumps (ReadPump and WritePump), in-band authentication,
and the dispatch of every inbound message kind to its handler.
*/
package chat

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"messenger/internal/app/user"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// capacity of the per-session outbound queue.
	sendQueueSize = 256
)

// Session represents one client connection and its server-side state.
// A session starts unauthenticated; REGISTER or LOGIN binds a user to it.
type Session struct {
	id string

	hub  *Hub
	conn *websocket.Conn

	// send is the buffered outbound queue drained by WritePump.
	send chan []byte

	// mu guards user and closed.
	mu     sync.RWMutex
	user   *user.User
	closed bool

	// closeOnce guarantees exactly-once teardown under concurrent
	// disconnect triggers (read error, write error, broadcast overflow,
	// server shutdown).
	closeOnce sync.Once

	logger zerolog.Logger
}

// NewSession constructs a Session around an upgraded WebSocket connection.
func NewSession(hub *Hub, conn *websocket.Conn) *Session {
	id := uuid.NewString()

	return &Session{
		id:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().Str("component", "Session").Str("session_id", id).Logger(),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// User returns the bound user, or nil while the session is unauthenticated.
func (s *Session) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) bindUser(u *user.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// ReadPump reads messages from the WebSocket connection and dispatches them.
// It handles heartbeats (Pong) and guarantees session teardown on exit,
// whether triggered by a connection error or a frame decode failure.
func (s *Session) ReadPump() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)

	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			// The framing itself is broken, not just a payload field;
			// treat it like any other transport failure.
			s.logger.Warn().Err(err).Bytes("message_bytes", raw).Msg("Session sent undecodable frame, closing.")
			return
		}

		s.dispatch(msg)
	}
}

// WritePump drains the send queue to the WebSocket connection and emits
// periodic pings. It owns all writes to the connection.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Session connection close error in WritePump")
		}
	}()

	for {
		select {
		case payload, ok := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := s.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					s.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Info().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Info().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// queue places a marshaled message on the outbound queue without blocking.
// It returns false when the session is closed or the queue is full.
func (s *Session) queue(payload []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// sendMessage marshals and queues a message for this session only.
func (s *Session) sendMessage(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error marshaling message for session")
		return
	}

	if !s.queue(payload) {
		s.logger.Warn().Int("queue_len", len(s.send)).Msg("Session send queue full, dropping message")
	}
}

// sendError queues an ERROR message carrying the error's client-facing text.
func (s *Session) sendError(customErr *errs.CustomError) {
	s.sendMessage(NewMessage(TypeError, SystemSender, customErr.Message, ""))
}

// dispatch routes one inbound message to its handler based on kind.
// Commands that require authentication answer ERROR while the session is
// unauthenticated and change no state.
func (s *Session) dispatch(msg Message) {
	switch msg.Type {
	case TypeRegister:
		s.handleRegister(msg)

	case TypeLogin:
		s.handleLogin(msg)

	case TypeChat:
		if u := s.requireUser(); u != nil {
			s.handleChat(u, msg)
		}

	case TypeJoinLobby:
		if u := s.requireUser(); u != nil {
			s.handleJoinLobby(u, msg)
		}

	case TypeLeaveLobby:
		if u := s.requireUser(); u != nil {
			s.handleLeaveLobby(u, msg)
		}

	case TypeUserList:
		if u := s.requireUser(); u != nil {
			s.handleUserList(u)
		}

	case TypeLobbyList:
		if u := s.requireUser(); u != nil {
			s.handleLobbyList()
		}

	case TypeCreateLobby:
		if u := s.requireUser(); u != nil {
			s.handleCreateLobby(u, msg)
		}

	case TypeDeleteLobby:
		if u := s.requireUser(); u != nil {
			s.handleDeleteLobby(u, msg)
		}

	default:
		s.logger.Warn().Str("msg_type", string(msg.Type)).Msg("Session sent unsupported message type")
	}
}

// requireUser returns the bound user, or answers an ERROR and returns nil
// while the session is unauthenticated.
func (s *Session) requireUser() *user.User {
	u := s.User()
	if u == nil {
		s.sendError(errs.NewError(errs.ErrNotAuthenticated))
	}
	return u
}

// splitCredentials parses a "username:password" payload. Both fields must be
// non-empty and exactly one separator is allowed.
func splitCredentials(content string) (username, password string, ok bool) {
	parts := strings.Split(content, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (s *Session) handleRegister(msg Message) {
	if s.User() != nil {
		s.sendError(errs.NewError(errs.ErrAlreadyAuthenticated))
		return
	}

	username, password, ok := splitCredentials(msg.Content)
	if !ok {
		s.sendError(errs.NewError(errs.ErrCredentialFormat))
		return
	}

	u, ok := s.hub.Users.Register(username, password)
	if !ok {
		s.logger.Warn().Str("username", username).Msg("Registration failed, username already exists.")
		s.sendError(errs.NewError(errs.ErrUserAlreadyExists))
		return
	}

	s.logger.Info().Str("username", username).Msg("New user registered.")
	s.completeAuth(u, "Registration and login successful")
}

func (s *Session) handleLogin(msg Message) {
	if s.User() != nil {
		s.sendError(errs.NewError(errs.ErrAlreadyAuthenticated))
		return
	}

	username, password, ok := splitCredentials(msg.Content)
	if !ok {
		s.sendError(errs.NewError(errs.ErrCredentialFormat))
		return
	}

	u, ok := s.hub.Users.Authenticate(username, password)
	if !ok {
		s.logger.Warn().Str("username", username).Msg("Authentication failed.")
		s.sendError(errs.NewError(errs.ErrInvalidCredentials))
		return
	}

	content := "Login successful"
	if u.IsAdmin {
		content += " (Admin)"
	}

	s.logger.Info().Str("username", username).Msg("User authenticated.")
	s.completeAuth(u, content)
}

// completeAuth binds the user, auto-joins General, confirms to the client,
// and announces the arrival: member lists refresh everywhere so client-side
// totals stay current, and General receives a join announcement.
func (s *Session) completeAuth(u *user.User, successText string) {
	s.bindUser(u)
	s.logger = s.logger.With().Str("username", u.Username).Logger()

	if customErr := s.hub.Lobbies.Join(u, GeneralLobby); customErr != nil {
		// General always exists; only reachable if an admin-only flag was
		// somehow set on it.
		s.logger.Error().Err(customErr).Msg("Auto-join of General failed after authentication.")
	}

	s.sendMessage(NewMessage(TypeSuccess, SystemSender, successText, ""))

	s.hub.BroadcastUserListAll()
	s.hub.BroadcastToLobby(
		NewMessage(TypeChat, SystemSender, "User "+u.Username+" joined the chat", GeneralLobby),
		GeneralLobby,
	)
}

func (s *Session) handleChat(u *user.User, msg Message) {
	if msg.Lobby != u.CurrentLobby() {
		s.sendError(errs.NewError(errs.ErrNotInLobby))
		return
	}

	// Sender identity is normalized to the authenticated username; the
	// client-claimed sender field is never trusted.
	s.hub.BroadcastToLobby(NewMessage(TypeChat, u.Username, msg.Content, msg.Lobby), msg.Lobby)
}

func (s *Session) handleJoinLobby(u *user.User, msg Message) {
	name := msg.Content
	previous := u.CurrentLobby()

	if customErr := s.hub.Lobbies.Join(u, name); customErr != nil {
		s.sendError(customErr)
		return
	}

	s.sendMessage(NewMessage(TypeSuccess, SystemSender, "Joined lobby: "+name, ""))

	s.hub.BroadcastUserList(previous)
	s.hub.BroadcastUserList(name)

	s.hub.BroadcastToLobby(
		NewMessage(TypeChat, SystemSender, u.Username+" joined the lobby", name),
		name,
	)

	if previous != GeneralLobby && previous != name {
		s.hub.BroadcastToLobby(
			NewMessage(TypeChat, SystemSender, u.Username+" left the lobby", previous),
			previous,
		)
	}
}

func (s *Session) handleLeaveLobby(u *user.User, msg Message) {
	name := msg.Content
	previous := u.CurrentLobby()

	s.hub.Lobbies.Leave(u, name)

	// Leaving a lobby the user does not occupy changes nothing further.
	if name != previous {
		return
	}

	// Re-home to General in the same logical transaction so the user is
	// never left roomless.
	if customErr := s.hub.Lobbies.Join(u, GeneralLobby); customErr != nil {
		s.logger.Error().Err(customErr).Msg("Re-homing to General failed after lobby leave.")
		return
	}

	s.hub.BroadcastUserList(previous)
	s.hub.BroadcastUserList(GeneralLobby)

	s.hub.BroadcastToLobby(
		NewMessage(TypeChat, SystemSender, u.Username+" moved to General lobby", GeneralLobby),
		GeneralLobby,
	)
}

func (s *Session) handleUserList(u *user.User) {
	lobby := u.CurrentLobby()
	s.sendMessage(NewMessage(TypeUserList, SystemSender, s.hub.UserListContent(lobby), lobby))
}

func (s *Session) handleLobbyList() {
	s.sendMessage(NewMessage(TypeLobbyList, SystemSender, s.hub.LobbyListContent(), ""))
}

// parseCreatePayload splits a CREATE_LOBBY payload of the form "name" or
// "name:admin" into the lobby name and its admin-only flag.
func parseCreatePayload(content string) (name string, adminOnly bool) {
	parts := strings.SplitN(content, ":", 2)
	name = parts[0]
	adminOnly = len(parts) == 2 && parts[1] == "admin"
	return name, adminOnly
}

func (s *Session) handleCreateLobby(u *user.User, msg Message) {
	if !u.IsAdmin {
		s.sendError(errs.NewError(errs.ErrAdminRequired))
		return
	}

	name, adminOnly := parseCreatePayload(msg.Content)
	if name == "" {
		s.sendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if !s.hub.Lobbies.Add(name, adminOnly) {
		s.sendError(errs.NewError(errs.ErrLobbyExists, name))
		return
	}

	content := "Lobby created: " + name
	if adminOnly {
		content += " (Admin only)"
	}
	s.sendMessage(NewMessage(TypeSuccess, SystemSender, content, ""))

	s.hub.BroadcastLobbyList()
}

func (s *Session) handleDeleteLobby(u *user.User, msg Message) {
	if !u.IsAdmin {
		s.sendError(errs.NewError(errs.ErrAdminRequired))
		return
	}

	name := msg.Content
	if customErr := s.hub.Lobbies.Remove(name); customErr != nil {
		s.sendError(customErr)
		return
	}

	s.sendMessage(NewMessage(TypeSuccess, SystemSender, "Lobby deleted: "+name, ""))

	s.hub.BroadcastLobbyList()

	// Members of the deleted lobby were migrated into General.
	s.hub.BroadcastUserList(GeneralLobby)
}

// Close tears the session down exactly once, regardless of which exit path
// triggered it: membership cleanup, live-set deregistration, a member-list
// refresh plus leave announcement for the vacated lobby, then I/O shutdown,
// in that order.
func (s *Session) Close() {
	s.closeOnce.Do(s.teardown)
}

func (s *Session) teardown() {
	s.logger.Info().Msg("Session cleanup starting.")

	u := s.User()

	var vacated string
	if u != nil {
		vacated = u.CurrentLobby()
		s.hub.Lobbies.Leave(u, vacated)
	}

	s.hub.unregister(s)

	if u != nil {
		s.hub.BroadcastUserList(vacated)
		s.hub.BroadcastToLobby(
			NewMessage(TypeChat, SystemSender, u.Username+" left the chat", vacated),
			vacated,
		)
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	close(s.send)

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Session connection close error")
		}
	}
}
