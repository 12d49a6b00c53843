/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1002
)

// 2xxx: Lobby and Chat Business Logic Errors
const (
	// ErrLobbyExists indicates that the attempted lobby name for creation already exists.
	ErrLobbyExists = 2101

	// ErrLobbyNotFound indicates that the named lobby does not exist.
	ErrLobbyNotFound = 2102

	// ErrLobbyAdminOnly indicates that a non-admin user attempted to enter an admin-only lobby.
	ErrLobbyAdminOnly = 2103

	// ErrLobbyUndeletable indicates an attempt to delete the permanent General lobby.
	ErrLobbyUndeletable = 2104

	// ErrNotInLobby indicates that a user tried to chat in a lobby they do not occupy.
	ErrNotInLobby = 2201
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrCredentialFormat indicates a malformed REGISTER or LOGIN payload.
	ErrCredentialFormat = 3001

	// ErrInvalidCredentials indicates a username/password mismatch during login.
	ErrInvalidCredentials = 3002

	// ErrUserAlreadyExists indicates that the requested username is already registered.
	ErrUserAlreadyExists = 3003

	// ErrNotAuthenticated indicates a command that requires a signed-in user.
	ErrNotAuthenticated = 3004

	// ErrAlreadyAuthenticated indicates a REGISTER/LOGIN attempt on an already authenticated session.
	ErrAlreadyAuthenticated = 3005

	// ErrAdminRequired indicates that the command is restricted to administrators.
	ErrAdminRequired = 3006
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
