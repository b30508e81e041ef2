package mux

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"drawpoker-server/pkg/engine"
)

type handCardsResponse struct {
	Cards string `json:"cards"`
}

// startTestGame seats both players and deals a game over HTTP
func startTestGame(t *testing.T, ts *httptest.Server, j1, j2 string) (*engine.TableDetails, *engine.GameDetails) {
	t.Helper()

	var tbl *engine.TableDetails
	assertPost(t, ts, "/table", postTablePayload{Name: "My Table"}, &tbl, 201, j1)

	seatPath := fmt.Sprintf("/table/%s/seat", tbl.UUID)
	assertPost(t, ts, seatPath, postSeatPayload{Position: 0}, nil, 201, j1)
	assertPost(t, ts, seatPath, postSeatPayload{Position: 1}, nil, 201, j2)

	var game *engine.GameDetails
	assertPost(t, ts, fmt.Sprintf("/table/%s/game", tbl.UUID), nil, &game, 201, j1)

	return tbl, game
}

func Test_handRoutes_ownership(t *testing.T) {
	setupJWT()
	ts := httptest.NewServer(testMux())
	defer ts.Close()

	p1, j1 := person()
	_, j2 := person()

	_, game := startTestGame(t, ts, j1, j2)

	var h1 *engine.HandDetails
	for _, h := range game.Hands {
		if *h.OwnerID == p1.ID {
			h1 = h
		}
	}

	// a person may only act on their own hand
	var errObj errorResponse
	assertPost(t, ts, fmt.Sprintf("/hand/%d/fold", h1.HandID), postFoldPayload{Version: h1.Version}, &errObj, 403, j2)
	assert.Equal(t, "Forbidden", errObj.Message)

	// nobody owns the deck hand
	errObj = errorResponse{}
	assertPost(t, ts, fmt.Sprintf("/hand/%d/bet", game.DeckHand.HandID), postBetPayload{Amount: 100, Version: 1}, &errObj, 403, j1)

	// unknown hands 404
	errObj = errorResponse{}
	assertPost(t, ts, "/hand/999999/bet", postBetPayload{Amount: 100, Version: 1}, &errObj, 404, j1)
}

func Test_handRoutes_fullGame(t *testing.T) {
	setupJWT()
	ts := httptest.NewServer(testMux())
	defer ts.Close()

	p1, j1 := person()
	p2, j2 := person()

	_, game := startTestGame(t, ts, j1, j2)

	byOwner := make(map[int64]*engine.HandDetails)
	for _, h := range game.Hands {
		byOwner[*h.OwnerID] = h
	}
	h1, h2 := byOwner[p1.ID], byOwner[p2.ID]

	betPath := fmt.Sprintf("/hand/%d/bet", h1.HandID)
	advancePath := fmt.Sprintf("/game/%d/advance", game.GameID)

	// no betting during the deal
	var errObj errorResponse
	assertPost(t, ts, betPath, postBetPayload{Amount: 100, Version: h1.Version}, &errObj, 409, j1)
	assert.Equal(t, "illegal state transition", errObj.Message)

	// a stale base version is a conflict, not a retry
	errObj = errorResponse{}
	assertPost(t, ts, advancePath, postAdvancePayload{Version: game.Version + 5}, &errObj, 409, j1)
	assert.Equal(t, "conflict", errObj.Message)

	var advanced *engine.GameResult
	assertPost(t, ts, advancePath, postAdvancePayload{Version: game.Version}, &advanced, 200, j1)
	assert.Equal(t, engine.StateDealBet, advanced.State)

	var bet *engine.BetResult
	assertPost(t, ts, betPath, postBetPayload{Amount: 100, Version: h1.Version}, &bet, 200, j1)
	assert.Equal(t, 100, bet.Bet)
	assert.Equal(t, 100, bet.MaxBet)
	assert.False(t, bet.RoundComplete)

	errObj = errorResponse{}
	assertPost(t, ts, betPath, postBetPayload{Amount: 150, Version: h1.Version}, &errObj, 409, j1)

	// a raise beyond the stack is rejected
	errObj = errorResponse{}
	assertPost(t, ts, betPath, postBetPayload{Amount: 5000, Version: bet.HandVersion}, &errObj, 400, j1)
	assert.Equal(t, "insufficient funds", errObj.Message)

	var folded *engine.BetResult
	assertPost(t, ts, fmt.Sprintf("/hand/%d/fold", h2.HandID), postFoldPayload{Version: h2.Version}, &folded, 200, j2)
	assert.True(t, folded.RoundComplete)

	// the survivor cannot abandon the pot
	errObj = errorResponse{}
	assertPost(t, ts, fmt.Sprintf("/hand/%d/fold", h1.HandID), postFoldPayload{Version: bet.HandVersion}, &errObj, 400, j1)
	assert.Equal(t, "cannot fold the last hand in play", errObj.Message)

	// a folded hand stays private to its owner
	var cards handCardsResponse
	assertGet(t, ts, fmt.Sprintf("/hand/%d/cards", h2.HandID), &errObj, 403, j1)
	assertGet(t, ts, fmt.Sprintf("/hand/%d/cards", h2.HandID), &cards, 200, j2)
	assert.NotEmpty(t, cards.Cards)

	assertPost(t, ts, advancePath, postAdvancePayload{Version: folded.GameVersion}, &advanced, 200, j1)
	assert.Equal(t, engine.StateDraw, advanced.State)

	// discards must parse as cards before anything else happens
	errObj = errorResponse{}
	assertPost(t, ts, fmt.Sprintf("/hand/%d/draw", h1.HandID), postDrawPayload{Discards: []string{"xx"}, Version: bet.HandVersion}, &errObj, 400, j1)
	assert.Equal(t, "invalid card: xx", errObj.Message)

	var draw *engine.DrawResult
	assertPost(t, ts, fmt.Sprintf("/hand/%d/draw", h1.HandID), postDrawPayload{Version: bet.HandVersion}, &draw, 200, j1)
	assert.True(t, draw.DrawComplete)

	assertPost(t, ts, advancePath, postAdvancePayload{Version: draw.GameVersion}, &advanced, 200, j1)
	assert.Equal(t, engine.StateDrawBet, advanced.State)

	assertPost(t, ts, advancePath, postAdvancePayload{Version: advanced.GameVersion}, &advanced, 200, j1)
	assert.Equal(t, engine.StateShowdown, advanced.State)

	settlement := advanced.Settlement
	assert.NotNil(t, settlement)
	assert.False(t, settlement.Contested)
	assert.Equal(t, 100, settlement.Pot)
	assert.Len(t, settlement.Winners, 1)
	assert.Equal(t, h1.HandID, settlement.Winners[0].HandID)
	assert.Empty(t, settlement.Winners[0].HandName)

	// an uncontested pot is never revealed, even at showdown
	errObj = errorResponse{}
	assertGet(t, ts, fmt.Sprintf("/hand/%d/cards", h1.HandID), &errObj, 403, j2)
}
