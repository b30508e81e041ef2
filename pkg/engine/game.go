package engine

import (
	"time"

	"drawpoker-server/pkg/deck"
)

// cardsPerHand is the number of cards dealt to each player hand
const cardsPerHand = 5

// Player is a person participating at a table.
// The balance is the table-local chip count; the account layer settles it
// back to durable storage after each game.
type Player struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Admin       bool   `json:"admin"`
	Balance     int    `json:"balance"`
}

// Game is a single five-card-draw game at a table
type Game struct {
	ID             int64     `json:"id"`
	TableUUID      string    `json:"tableUuid"`
	State          State     `json:"state"`
	Version        int64     `json:"version"`
	DealerPosition int       `json:"dealerPosition"`
	ActivityAt     time.Time `json:"activityAt"`

	hands    []*Hand
	deckHand *Hand
	players  map[int64]*Player
	discards deck.Hand
	seed     int64

	settlement *Settlement
}

// Hands returns the player hands in deal order
func (g *Game) Hands() []*Hand {
	hands := make([]*Hand, len(g.hands))
	copy(hands, g.hands)
	return hands
}

// DeckHand returns the ownerless hand holding the undealt cards
func (g *Game) DeckHand() *Hand {
	return g.deckHand
}

// Settlement returns the showdown result, or nil if the game is still running
func (g *Game) Settlement() *Settlement {
	return g.settlement
}

// Player returns the participant for the given person, or nil
func (g *Game) Player(personID int64) *Player {
	return g.players[personID]
}

// MaxBet returns the table-visible maximum bet across active, non-folded hands
func (g *Game) MaxBet() int {
	maxBet := 0
	for _, h := range g.hands {
		if h.InPlay() && h.Bet > maxBet {
			maxBet = h.Bet
		}
	}

	return maxBet
}

// Pot returns the total chips committed, including folded hands' bets
func (g *Game) Pot() int {
	pot := 0
	for _, h := range g.hands {
		pot += h.Bet
	}

	return pot
}

// allIn reports whether the hand's owner has committed their entire balance
func (g *Game) allIn(h *Hand) bool {
	if h.OwnerID == nil || h.Bet == 0 {
		return false
	}

	owner := g.players[*h.OwnerID]
	return owner != nil && owner.Balance == 0
}

// bettingRoundComplete reports whether every active, non-folded hand has
// either matched the maximum bet or is all-in
func (g *Game) bettingRoundComplete() bool {
	maxBet := g.MaxBet()
	for _, h := range g.hands {
		if !h.InPlay() {
			continue
		}

		if h.Bet != maxBet && !g.allIn(h) {
			return false
		}
	}

	return true
}

// drawComplete reports whether every active, non-folded hand has drawn or
// stood pat
func (g *Game) drawComplete() bool {
	for _, h := range g.hands {
		if h.InPlay() && !h.drawn {
			return false
		}
	}

	return true
}

// dealComplete reports whether every player hand has its full five cards
func (g *Game) dealComplete() bool {
	for _, h := range g.hands {
		if len(h.cards) != cardsPerHand {
			return false
		}
	}

	return true
}

// canAdvance returns nil if the game may move out of its current state
func (g *Game) canAdvance() error {
	switch g.State {
	case StateDeal:
		if !g.dealComplete() {
			return ErrIllegalStateTransition
		}
	case StateDealBet, StateDrawBet:
		if !g.bettingRoundComplete() {
			return ErrIllegalStateTransition
		}
	case StateDraw:
		if !g.drawComplete() {
			return ErrIllegalStateTransition
		}
	case StateShowdown:
		return ErrIllegalStateTransition
	}

	return nil
}

// advance moves the game to its next state.
// The caller is responsible for settlement when SHOWDOWN is reached.
func (g *Game) advance() error {
	if err := g.canAdvance(); err != nil {
		return err
	}

	g.State++
	return nil
}

// draw exchanges the discarded cards for fresh ones from the deck hand.
// An empty discard list stands pat. Discards are never reused this game.
func (g *Game) draw(h *Hand, discards []deck.Card) error {
	if g.State != StateDraw {
		return ErrIllegalStateTransition
	}

	if !h.InPlay() {
		return ErrIllegalStateTransition
	}

	if h.drawn {
		return ValidationError("hand already drew this game")
	}

	if len(discards) > cardsPerHand {
		return ValidationError("cannot discard more than five cards")
	}

	replacement := h.cards.Clone()
	for _, card := range discards {
		if !replacement.Discard(card) {
			return ValidationError("card " + deck.CardToString(card) + " is not in the hand")
		}
	}

	if len(g.deckHand.cards) < len(discards) {
		return ErrEmptyDeck
	}

	for range discards {
		card := g.deckHand.cards[0]
		g.deckHand.cards = g.deckHand.cards[1:]
		replacement.AddCard(card)
	}

	g.discards = append(g.discards, discards...)
	h.cards = replacement
	h.drawn = true

	return nil
}

// placeBet raises the hand's cumulative bet to amount, debiting the owner
func (g *Game) placeBet(h *Hand, amount int) error {
	if !g.State.IsBettingRound() {
		return ErrIllegalStateTransition
	}

	if h.IsDeckHand() {
		return ValidationError("the deck hand cannot bet")
	}

	if !h.InPlay() {
		return ErrIllegalStateTransition
	}

	if amount < 0 {
		return ValidationError("bet cannot be negative")
	}

	if amount < h.Bet {
		return ValidationError("bet cannot be lowered")
	}

	owner := g.players[*h.OwnerID]
	increment := amount - h.Bet
	if increment > owner.Balance {
		// a short stack may still call: the bet is capped at the stack and
		// the hand plays all-in for less than the max bet
		allIn := h.Bet + owner.Balance
		if allIn >= g.MaxBet() {
			return ErrInsufficientFunds
		}

		amount = allIn
		increment = owner.Balance
	}

	owner.Balance -= increment
	h.Bet = amount

	return nil
}

// fold folds the hand; its bet stays in the pot.
// The last hand in play cannot fold: the pot always ends up with a winner.
func (g *Game) fold(h *Hand) error {
	if g.State == StateDeal || g.State.Terminal() {
		return ErrIllegalStateTransition
	}

	if !h.InPlay() {
		return ErrIllegalStateTransition
	}

	for _, other := range g.hands {
		if other != h && other.InPlay() {
			h.Folded = true
			return nil
		}
	}

	return ValidationError("cannot fold the last hand in play")
}
