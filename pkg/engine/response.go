package engine

import (
	"time"

	"drawpoker-server/pkg/deck"
)

// SeatResult is the outcome of a seat mutation
type SeatResult struct {
	Position     int   `json:"position"`
	SeatVersion  int64 `json:"seatVersion"`
	TableVersion int64 `json:"tableVersion"`
}

// BetResult is the outcome of a bet or fold
type BetResult struct {
	HandID        int64 `json:"handId"`
	HandVersion   int64 `json:"handVersion"`
	Bet           int   `json:"bet"`
	MaxBet        int   `json:"maxBet"`
	GameVersion   int64 `json:"gameVersion"`
	State         State `json:"state"`
	RoundComplete bool  `json:"roundComplete"`
}

// DrawResult is the outcome of a draw
type DrawResult struct {
	HandID        int64 `json:"handId"`
	HandVersion   int64 `json:"handVersion"`
	Drawn         int   `json:"drawn"`
	DeckRemaining int   `json:"deckRemaining"`
	GameVersion   int64 `json:"gameVersion"`
	State         State `json:"state"`
	DrawComplete  bool  `json:"drawComplete"`
}

// GameResult is the outcome of a state transition
type GameResult struct {
	GameID      int64       `json:"gameId"`
	GameVersion int64       `json:"gameVersion"`
	State       State       `json:"state"`
	Settlement  *Settlement `json:"settlement,omitempty"`
}

// HandDetails describes one hand, with cards censored per the requester
type HandDetails struct {
	HandID    int64     `json:"handId"`
	OwnerID   *int64    `json:"ownerId"`
	Position  int       `json:"position"`
	Bet       int       `json:"bet"`
	Active    bool      `json:"active"`
	Folded    bool      `json:"folded"`
	Version   int64     `json:"version"`
	CardCount int       `json:"cardCount"`
	Cards     deck.Hand `json:"cards,omitempty"`
}

// GameDetails describes a game
type GameDetails struct {
	GameID         int64          `json:"gameId"`
	State          State          `json:"state"`
	Version        int64          `json:"version"`
	DealerPosition int            `json:"dealerPosition"`
	MaxBet         int            `json:"maxBet"`
	Pot            int            `json:"pot"`
	ActivityAt     time.Time      `json:"activityAt"`
	Hands          []*HandDetails `json:"hands"`
	DeckHand       *HandDetails   `json:"deckHand"`
	Settlement     *Settlement    `json:"settlement,omitempty"`
}

// SeatDetails describes a claimed seat
type SeatDetails struct {
	Position    int    `json:"position"`
	PersonID    int64  `json:"personId"`
	DisplayName string `json:"displayName"`
	Balance     int    `json:"balance"`
	Active      bool   `json:"active"`
	Version     int64  `json:"version"`
}

// TableDetails describes a table and, if present, its current game
type TableDetails struct {
	UUID        string         `json:"uuid"`
	Name        string         `json:"name"`
	Version     int64          `json:"version"`
	Created     time.Time      `json:"created"`
	GamesPlayed int64          `json:"gamesPlayed"`
	Seats       []*SeatDetails `json:"seats"`
	Game        *GameDetails   `json:"game,omitempty"`
}

func handDetails(h *Hand) *HandDetails {
	return &HandDetails{
		HandID:    h.ID,
		OwnerID:   h.OwnerID,
		Position:  h.Position,
		Bet:       h.Bet,
		Active:    h.Active,
		Folded:    h.Folded,
		Version:   h.Version,
		CardCount: h.CardCount(),
	}
}

func gameDetails(game *Game) *GameDetails {
	details := &GameDetails{
		GameID:         game.ID,
		State:          game.State,
		Version:        game.Version,
		DealerPosition: game.DealerPosition,
		MaxBet:         game.MaxBet(),
		Pot:            game.Pot(),
		ActivityAt:     game.ActivityAt,
		DeckHand:       handDetails(game.deckHand),
		Settlement:     game.settlement,
	}

	for _, h := range game.hands {
		details.Hands = append(details.Hands, handDetails(h))
	}

	return details
}

// tableDetailsFor builds the censored view of the table for the requester.
// Visibility is re-evaluated on every call; it is never cached across state
// transitions.
func (e *Engine) tableDetailsFor(ts *tableState, requester Requester) *TableDetails {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	t := ts.table
	details := &TableDetails{
		UUID:        t.UUID,
		Name:        t.Name,
		Version:     t.Version,
		Created:     t.Created,
		GamesPlayed: t.gamesPlayed,
	}

	for _, seat := range t.Seats() {
		details.Seats = append(details.Seats, &SeatDetails{
			Position:    seat.Position,
			PersonID:    seat.Player.ID,
			DisplayName: seat.Player.DisplayName,
			Balance:     seat.Player.Balance,
			Active:      seat.Active,
			Version:     seat.Version,
		})
	}

	if t.game != nil {
		details.Game = gameDetails(t.game)

		for i, h := range t.game.hands {
			if canSeeCards(requester, t.game, h) {
				details.Game.Hands[i].Cards = h.Cards()
			}
		}

		if canSeeCards(requester, t.game, t.game.deckHand) {
			details.Game.DeckHand.Cards = t.game.deckHand.Cards()
		}
	}

	return details
}
