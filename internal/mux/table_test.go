package mux

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"drawpoker-server/pkg/engine"
)

func Test_postTable(t *testing.T) {
	setupJWT()
	_, j := person()

	ts := httptest.NewServer(testMux())
	defer ts.Close()

	var errObj errorResponse
	assertPost(t, ts, "/table", postTablePayload{Name: "Te"}, &errObj, 400, j)
	assert.Equal(t, "name must be 3-40 characters", errObj.Message)

	errObj = errorResponse{}
	assertPost(t, ts, "/table", postTablePayload{Name: strings.Repeat("A", 41)}, &errObj, 400, j)
	assert.Equal(t, "name must be 3-40 characters", errObj.Message)

	var tbl *engine.TableDetails
	assertPost(t, ts, "/table", postTablePayload{Name: "My Table"}, &tbl, 201, j)
	assert.Equal(t, "My Table", tbl.Name)
	assert.NotEmpty(t, tbl.UUID)

	// aliases are unique, case-insensitively
	errObj = errorResponse{}
	assertPost(t, ts, "/table", postTablePayload{Name: "my table"}, &errObj, 409, j)
	assert.Equal(t, "table name is already taken", errObj.Message)

	// an omitted name gets a generated one
	tbl = nil
	assertPost(t, ts, "/table", postTablePayload{}, &tbl, 201, j)
	assert.NotEmpty(t, tbl.Name)

	var tables []tableSummary
	assertGet(t, ts, "/table", &tables, 200, j)
	assert.Equal(t, 2, len(tables))
}

func Test_postTableUUIDSeat(t *testing.T) {
	setupJWT()
	ts := httptest.NewServer(testMux())
	defer ts.Close()

	_, j1 := person()
	_, j2 := person()

	var tbl *engine.TableDetails
	assertPost(t, ts, "/table", postTablePayload{Name: "My Table"}, &tbl, 201, j1)

	path := fmt.Sprintf("/table/%s/seat", tbl.UUID)

	var seat *engine.SeatResult
	assertPost(t, ts, path, postSeatPayload{Position: 0}, &seat, 201, j1)
	assert.Equal(t, 0, seat.Position)

	// the claim is a compare-and-set; the loser gets a conflict
	var errObj errorResponse
	assertPost(t, ts, path, postSeatPayload{Position: 0}, &errObj, 409, j2)

	assertPost(t, ts, path, postSeatPayload{Position: 1}, &seat, 201, j2)

	// the seated balance comes from the durable account
	var details *engine.TableDetails
	assertGet(t, ts, "/table/"+tbl.UUID, &details, 200, j1)
	assert.Len(t, details.Seats, 2)
	for _, s := range details.Seats {
		assert.Equal(t, 1000, s.Balance)
	}

	// only the occupant may vacate
	errObj = errorResponse{}
	assertDelete(t, ts, path+"/0", &errObj, 403, j2)
	assert.Equal(t, "Forbidden", errObj.Message)

	var vacated *engine.SeatResult
	assertDelete(t, ts, path+"/0", &vacated, 200, j1)
	assert.Equal(t, 0, vacated.Position)

	// unknown tables 404 before any seat logic runs
	errObj = errorResponse{}
	assertPost(t, ts, "/table/00000000-0000-0000-0000-000000000000/seat", postSeatPayload{}, &errObj, 404, j1)
}

func Test_postTableUUIDGame(t *testing.T) {
	setupJWT()
	ts := httptest.NewServer(testMux())
	defer ts.Close()

	p1, j1 := person()
	_, j2 := person()

	var tbl *engine.TableDetails
	assertPost(t, ts, "/table", postTablePayload{Name: "My Table"}, &tbl, 201, j1)

	seatPath := fmt.Sprintf("/table/%s/seat", tbl.UUID)
	gamePath := fmt.Sprintf("/table/%s/game", tbl.UUID)

	assertPost(t, ts, seatPath, postSeatPayload{Position: 0}, nil, 201, j1)

	// two players are required
	var errObj errorResponse
	assertPost(t, ts, gamePath, nil, &errObj, 400, j1)
	assert.Equal(t, "at least two seated players are required", errObj.Message)

	assertPost(t, ts, seatPath, postSeatPayload{Position: 1}, nil, 201, j2)

	var game *engine.GameDetails
	assertPost(t, ts, gamePath, nil, &game, 201, j1)
	assert.Len(t, game.Hands, 2)
	assert.Equal(t, 42, game.DeckHand.CardCount)

	// one game at a time
	errObj = errorResponse{}
	assertPost(t, ts, gamePath, nil, &errObj, 400, j2)
	assert.Equal(t, "a game is already in progress", errObj.Message)

	// each player sees their own cards and nobody else's
	var details *engine.TableDetails
	assertGet(t, ts, "/table/"+tbl.UUID, &details, 200, j1)
	for _, h := range details.Game.Hands {
		assert.Equal(t, 5, h.CardCount)
		if *h.OwnerID == p1.ID {
			assert.Len(t, h.Cards, 5)
		} else {
			assert.Empty(t, h.Cards)
		}
	}
	assert.Empty(t, details.Game.DeckHand.Cards)
}
