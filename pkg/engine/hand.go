package engine

import "drawpoker-server/pkg/deck"

// Hand is a participant's cards plus betting state within one game.
// A hand with a nil OwnerID is the game's deck hand, holding the undealt
// cards; it never bets and is only visible to admins.
type Hand struct {
	ID       int64  `json:"id"`
	GameID   int64  `json:"gameId"`
	OwnerID  *int64 `json:"ownerId"`
	Position int    `json:"position"`
	Bet      int    `json:"bet"`
	Active   bool   `json:"active"`
	Folded   bool   `json:"folded"`
	Version  int64  `json:"version"`

	cards deck.Hand
	drawn bool
}

// IsDeckHand returns true for the ownerless hand holding undealt cards
func (h *Hand) IsDeckHand() bool {
	return h.OwnerID == nil
}

// InPlay returns true if the hand still participates in betting rounds
func (h *Hand) InPlay() bool {
	return !h.IsDeckHand() && h.Active && !h.Folded
}

// Cards returns a copy of the hand's cards.
// Callers must go through the visibility policy before disclosing them.
func (h *Hand) Cards() deck.Hand {
	return h.cards.Clone()
}

// CardCount returns the number of cards the hand holds
func (h *Hand) CardCount() int {
	return len(h.cards)
}
