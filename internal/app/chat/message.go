/*
Package chat contains the core logic for handling lobbies, user sessions, and message broadcasting.

This file defines the Message value exchanged with clients and the enumerated message kinds.
Messages are pure transport units: they carry no identity beyond their fields and are never stored.
*/
package chat

import "time"

// MessageType enumerates the kinds of messages understood by the server.
// List replies reuse the request kind with the list placed in Content.
type MessageType string

const (
	TypeRegister    MessageType = "REGISTER"
	TypeLogin       MessageType = "LOGIN"
	TypeChat        MessageType = "CHAT"
	TypeJoinLobby   MessageType = "JOIN_LOBBY"
	TypeLeaveLobby  MessageType = "LEAVE_LOBBY"
	TypeUserList    MessageType = "USER_LIST_REQUEST"
	TypeLobbyList   MessageType = "LOBBY_LIST_REQUEST"
	TypeCreateLobby MessageType = "CREATE_LOBBY"
	TypeDeleteLobby MessageType = "DELETE_LOBBY"
	TypeError       MessageType = "ERROR"
	TypeSuccess     MessageType = "SUCCESS"
)

// SystemSender is the sender name used for all server-originated messages.
const SystemSender = "Server"

// Message is the immutable wire unit exchanged over a session's WebSocket
// connection, serialized as JSON text frames.
type Message struct {
	// Type is the enumerated message kind.
	Type MessageType `json:"type"`

	// Sender is the name of the originating user, or SystemSender.
	// On inbound CHAT messages this field is ignored and replaced with the
	// session's authenticated username before rebroadcast.
	Sender string `json:"sender"`

	// Content is the free-form payload: chat text, "user:pass" credentials,
	// a lobby name, or a comma-joined list in replies.
	Content string `json:"content"`

	// Lobby is the optional target lobby name.
	Lobby string `json:"lobby,omitempty"`

	// Timestamp is the server-local creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// NewMessage builds a Message stamped with the current server time.
func NewMessage(msgType MessageType, sender, content, lobby string) Message {
	return Message{
		Type:      msgType,
		Sender:    sender,
		Content:   content,
		Lobby:     lobby,
		Timestamp: time.Now().UnixMilli(),
	}
}
