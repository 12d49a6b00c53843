/*
Package chat contains the core logic for handling lobbies, user sessions, and message broadcasting.

This file defines the LobbyDirectory, the in-memory store of named chat lobbies and their
membership sets. All mutations are atomic under a single lock so that concurrent readers
never observe a user in two lobbies (or in none) during a transfer.
*/
package chat

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"messenger/internal/app/user"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/logx"
)

// GeneralLobby is the permanent lobby that always exists and cannot be removed.
const GeneralLobby = user.GeneralLobby

// defaultLobbies are recreated identically on every startup.
var defaultLobbies = []struct {
	name      string
	adminOnly bool
}{
	{GeneralLobby, false},
	{"Games", false},
	{"Movies", false},
	{"Music", false},
	{"Admin", true},
	{"Moderation", true},
}

// LobbyDirectory holds every lobby known to the server together with its
// membership set and admin-only flag.
type LobbyDirectory struct {
	// mu guards members and adminOnly. Join transfers hold it across the
	// leave-old/enter-new pair.
	mu sync.RWMutex

	// members maps lobby name to its membership set, keyed by username.
	members map[string]map[string]*user.User

	// adminOnly maps lobby name to its admin-only flag.
	adminOnly map[string]bool

	logger zerolog.Logger
}

// NewLobbyDirectory creates a directory seeded with the six default lobbies.
func NewLobbyDirectory() *LobbyDirectory {
	d := &LobbyDirectory{
		members:   make(map[string]map[string]*user.User),
		adminOnly: make(map[string]bool),
		logger:    logx.Logger().With().Str("component", "LobbyDirectory").Logger(),
	}

	for _, l := range defaultLobbies {
		d.Add(l.name, l.adminOnly)
	}

	d.logger.Info().Int("lobbies", len(defaultLobbies)).Msg("Lobby directory initialized with default lobbies.")
	return d
}

// Add creates a new empty lobby. It returns false if the name already exists.
func (d *LobbyDirectory) Add(name string, adminOnly bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.members[name]; exists {
		d.logger.Warn().Str("lobby", name).Msg("Attempted to add existing lobby.")
		return false
	}

	d.members[name] = make(map[string]*user.User)
	d.adminOnly[name] = adminOnly

	d.logger.Info().Str("lobby", name).Bool("admin_only", adminOnly).Msg("Lobby added.")
	return true
}

// Remove deletes a lobby, migrating every current member into General under
// the same lock. Removing General or an unknown lobby is refused.
func (d *LobbyDirectory) Remove(name string) *errs.CustomError {
	if name == GeneralLobby {
		d.logger.Warn().Msg("Attempt to delete General lobby blocked.")
		return errs.NewError(errs.ErrLobbyUndeletable)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	members, exists := d.members[name]
	if !exists {
		return errs.NewError(errs.ErrLobbyNotFound, name)
	}

	general := d.members[GeneralLobby]
	for username, u := range members {
		u.SetCurrentLobby(GeneralLobby)
		general[username] = u
	}

	delete(d.members, name)
	delete(d.adminOnly, name)

	d.logger.Info().Str("lobby", name).Int("migrated_members", len(members)).Msg("Lobby removed, members moved to General.")
	return nil
}

// Join moves the user into the named lobby. The removal from the user's
// previous lobby and the insertion into the new one happen under one lock,
// so membership snapshots never show the user twice or not at all.
// It returns a cause-specific error for unknown or admin-only lobbies.
func (d *LobbyDirectory) Join(u *user.User, name string) *errs.CustomError {
	d.mu.Lock()
	defer d.mu.Unlock()

	target, exists := d.members[name]
	if !exists {
		d.logger.Warn().Str("username", u.Username).Str("lobby", name).Msg("Join attempt for non-existent lobby.")
		return errs.NewError(errs.ErrLobbyNotFound, name)
	}

	if d.adminOnly[name] && !u.IsAdmin {
		d.logger.Warn().Str("username", u.Username).Str("lobby", name).Msg("Non-admin join attempt for admin-only lobby.")
		return errs.NewError(errs.ErrLobbyAdminOnly, name)
	}

	if previous, ok := d.members[u.CurrentLobby()]; ok {
		delete(previous, u.Username)
	}

	u.SetCurrentLobby(name)
	target[u.Username] = u

	d.logger.Debug().Str("username", u.Username).Str("lobby", name).Msg("User joined lobby.")
	return nil
}

// Leave removes the user from the named lobby's membership set. It is an
// idempotent no-op when the user is not a member. The user's current-lobby
// reference is left untouched: the caller must re-home the user (into
// General) as part of the same logical operation.
func (d *LobbyDirectory) Leave(u *user.User, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if members, exists := d.members[name]; exists {
		delete(members, u.Username)
		d.logger.Debug().Str("username", u.Username).Str("lobby", name).Msg("User left lobby.")
	}
}

// Members returns a point-in-time snapshot of the named lobby's members.
// Unknown lobbies yield an empty slice.
func (d *LobbyDirectory) Members(name string) []*user.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := d.members[name]
	snapshot := make([]*user.User, 0, len(members))
	for _, u := range members {
		snapshot = append(snapshot, u)
	}
	return snapshot
}

// Names returns a sorted snapshot of all lobby names. Sorting keeps list
// replies deterministic across broadcasts.
func (d *LobbyDirectory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.members))
	for name := range d.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exists reports whether the named lobby is present.
func (d *LobbyDirectory) Exists(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, exists := d.members[name]
	return exists
}

// IsAdminOnly reports whether the named lobby is restricted to administrators.
func (d *LobbyDirectory) IsAdminOnly(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.adminOnly[name]
}

// Count returns the number of lobbies.
func (d *LobbyDirectory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.members)
}
