package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorFormatsDetails(t *testing.T) {
	customErr := NewError(ErrLobbyNotFound, "Games")

	assert.Equal(t, ErrLobbyNotFound, customErr.Code)
	assert.Equal(t, "Lobby does not exist: Games", customErr.Message)
	assert.Equal(t, http.StatusOK, customErr.Status)
}

func TestNewErrorWithoutDetailsKeepsTemplate(t *testing.T) {
	customErr := NewError(ErrLobbyUndeletable)

	assert.Equal(t, "The General lobby cannot be deleted.", customErr.Message)
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	customErr := NewError(-1)

	assert.Equal(t, ErrUnknown, customErr.Code)
	assert.Equal(t, http.StatusInternalServerError, customErr.Status)
}

func TestNewErrorDoesNotMutateTemplate(t *testing.T) {
	first := NewError(ErrLobbyExists, "VIP")
	second := NewError(ErrLobbyExists, "Lounge")

	assert.Equal(t, "Lobby already exists: VIP", first.Message)
	assert.Equal(t, "Lobby already exists: Lounge", second.Message)
}

func TestCustomErrorImplementsError(t *testing.T) {
	var err error = NewError(ErrNotAuthenticated)

	assert.Contains(t, err.Error(), "Please sign in to continue.")
	assert.Contains(t, err.Error(), "3004")
}
