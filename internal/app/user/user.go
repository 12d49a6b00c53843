/*
Package user contains core data structures and logic related to user identity.

It defines the basic representation of a chat participant (the User struct) and the
in-memory Registry holding every account known to the server process.
*/
package user

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// GeneralLobby is the permanent default lobby every user starts in.
const GeneralLobby = "General"

// User represents the basic identity information of a chat participant.
// The username is unique and immutable after creation; the password is kept
// only as a bcrypt hash and never leaves the registry.
type User struct {
	// Username is the unique identifier of the user.
	Username string `json:"username"`

	// IsAdmin marks users with elevated privileges (lobby creation/deletion,
	// access to admin-only lobbies).
	IsAdmin bool `json:"isAdmin"`

	passwordHash []byte

	// mu guards currentLobby. Membership transfers happen under the lobby
	// directory's lock, but broadcasts read the current lobby outside it.
	mu           sync.RWMutex
	currentLobby string
}

// NewUser creates a user with a bcrypt-hashed password, starting in the General lobby.
func NewUser(username, password string, isAdmin bool) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		Username:     username,
		IsAdmin:      isAdmin,
		passwordHash: hash,
		currentLobby: GeneralLobby,
	}, nil
}

// CurrentLobby returns the name of the lobby the user currently occupies.
func (u *User) CurrentLobby() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.currentLobby
}

// SetCurrentLobby records the lobby the user occupies. Callers are expected
// to keep the lobby directory's membership sets consistent with this field.
func (u *User) SetCurrentLobby(lobby string) {
	u.mu.Lock()
	u.currentLobby = lobby
	u.mu.Unlock()
}

// checkPassword reports whether the given plaintext password matches the stored hash.
func (u *User) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) == nil
}

// DisplayName returns the username with the " (Admin)" suffix for administrators,
// as shown in user list replies.
func (u *User) DisplayName() string {
	if u.IsAdmin {
		return u.Username + " (Admin)"
	}
	return u.Username
}

// Registry is the in-memory store of all registered users. Accounts live for
// the whole server process and are never deleted.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewRegistry creates a registry seeded with one administrator account.
// The seed is recreated identically on every startup; all other accounts are
// lost when the process exits.
func NewRegistry(adminUsername, adminPassword string) (*Registry, error) {
	admin, err := NewUser(adminUsername, adminPassword, true)
	if err != nil {
		return nil, err
	}

	return &Registry{
		users: map[string]*User{admin.Username: admin},
	}, nil
}

// Register atomically checks and inserts a new account. It returns the created
// user and true on success, or nil and false when the username is taken or the
// password cannot be hashed.
func (r *Registry) Register(username, password string) (*User, bool) {
	newUser, err := NewUser(username, password, false)
	if err != nil {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[username]; exists {
		return nil, false
	}

	r.users[username] = newUser
	return newUser, true
}

// Authenticate returns the user only on an exact username and password match.
// It returns nil and false on any miss.
func (r *Registry) Authenticate(username, password string) (*User, bool) {
	r.mu.RLock()
	u, exists := r.users[username]
	r.mu.RUnlock()

	if !exists || !u.checkPassword(password) {
		return nil, false
	}
	return u, true
}

// Count returns the number of registered accounts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
