/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
// Messages are the texts delivered verbatim to chat clients inside ERROR messages.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Lobby and Chat Business Logic Errors
	ErrLobbyExists:      {Code: ErrLobbyExists, Message: "Lobby already exists: %s"},
	ErrLobbyNotFound:    {Code: ErrLobbyNotFound, Message: "Lobby does not exist: %s"},
	ErrLobbyAdminOnly:   {Code: ErrLobbyAdminOnly, Message: "Admin access required for lobby: %s"},
	ErrLobbyUndeletable: {Code: ErrLobbyUndeletable, Message: "The General lobby cannot be deleted."},
	ErrNotInLobby:       {Code: ErrNotInLobby, Message: "You are not in this lobby."},

	// 3xxx: User, Session, and Security Errors
	ErrCredentialFormat:     {Code: ErrCredentialFormat, Message: "Invalid format. Use: username:password"},
	ErrInvalidCredentials:   {Code: ErrInvalidCredentials, Message: "Invalid credentials."},
	ErrUserAlreadyExists:    {Code: ErrUserAlreadyExists, Message: "Username already exists."},
	ErrNotAuthenticated:     {Code: ErrNotAuthenticated, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrAlreadyAuthenticated: {Code: ErrAlreadyAuthenticated, Message: "You are already signed in."},
	ErrAdminRequired:        {Code: ErrAdminRequired, Message: "Admin privileges required."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
