package engine

import "errors"

// ValidationError is an error on malformed or out-of-range input
// It is safe to return in a response.
type ValidationError string

func (v ValidationError) Error() string {
	return string(v)
}

// ErrNotFound is an error when the requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrForbidden is an error on a role, ownership, or visibility violation
var ErrForbidden = errors.New("forbidden")

// ErrConflict is an error when a write is based on a stale version, or when a
// seat claim loses the compare-and-set. The caller must reload and retry;
// the engine never retries on its own.
var ErrConflict = errors.New("conflict")

// ErrIllegalStateTransition is an error when an action is requested out of the
// game's state order
var ErrIllegalStateTransition = errors.New("illegal state transition")

// ErrInsufficientFunds is an error when a bet cannot be covered by the
// player's balance
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInsufficientPlayers is an error when a game is started with fewer than
// two seated players
var ErrInsufficientPlayers = errors.New("at least two seated players are required")

// ErrGameInProgress is an error when a table already has a non-terminal game
var ErrGameInProgress = errors.New("a game is already in progress")

// ErrEmptyDeck is an error when a draw requests more cards than the deck
// hand still holds
var ErrEmptyDeck = errors.New("not enough cards left in the deck")
