package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanSeeCards(t *testing.T) {
	a := assert.New(t)

	game := newTestGame(StateDealBet, map[int64]int{1: 1000, 2: 1000, 3: 1000})
	h1 := addTestHand(game, 10, 1, 0, "2c,3c,4c,5c,7d")
	h2 := addTestHand(game, 11, 2, 1, "2h,3h,4h,5h,7s")
	h3 := addTestHand(game, 12, 3, 2, "2d,3d,4d,5d,7c")
	deckHand := addTestDeckHand(game, "8c,9c,10c")

	owner := Requester{PersonID: 1}
	stranger := Requester{PersonID: 2}
	admin := Requester{PersonID: 99, Admin: true}

	// before showdown only the owner and admins see a hand
	a.True(canSeeCards(owner, game, h1))
	a.True(canSeeCards(admin, game, h1))
	a.False(canSeeCards(stranger, game, h1))

	// nobody but an admin ever sees the deck hand
	a.False(canSeeCards(owner, game, deckHand))
	a.True(canSeeCards(admin, game, deckHand))

	// a contested showdown reveals the surviving hands to everyone
	game.State = StateShowdown
	a.True(canSeeCards(stranger, game, h1))
	a.True(canSeeCards(Requester{PersonID: 42}, game, h1))

	// a folded hand stays private forever, except to its owner and admins
	h3.Folded = true
	a.False(canSeeCards(stranger, game, h3))
	a.True(canSeeCards(Requester{PersonID: 3}, game, h3))
	a.True(canSeeCards(admin, game, h3))

	// when every other hand folded the winner's cards stay hidden too
	h2.Folded = true
	a.False(canSeeCards(stranger, game, h1))
	a.True(canSeeCards(owner, game, h1))
}

func TestEngine_GetVisibleCards(t *testing.T) {
	a := assert.New(t)
	e := testEngine()
	tableUUID := seatTwoPlayers(t, e)

	game, err := e.StartGame(tableUUID)
	a.NoError(err)

	byOwner := handsByOwner(game)
	h1 := byOwner[1]

	cards, err := e.GetVisibleCards(h1.HandID, Requester{PersonID: 1})
	a.NoError(err)
	a.Len(cards, 5)

	_, err = e.GetVisibleCards(h1.HandID, Requester{PersonID: 2})
	a.Equal(ErrForbidden, err)

	_, err = e.GetVisibleCards(game.DeckHand.HandID, Requester{PersonID: 1})
	a.Equal(ErrForbidden, err)

	_, err = e.GetVisibleCards(9999, Requester{PersonID: 1})
	a.Equal(ErrNotFound, err)
}

func TestEngine_TableDetails_censorsCards(t *testing.T) {
	a := assert.New(t)
	e := testEngine()
	tableUUID := seatTwoPlayers(t, e)

	_, err := e.StartGame(tableUUID)
	a.NoError(err)

	details, err := e.TableDetails(tableUUID, Requester{PersonID: 1})
	a.NoError(err)

	byOwner := handsByOwner(details.Game)
	a.Len(byOwner[1].Cards, 5)
	a.Empty(byOwner[2].Cards)
	a.Equal(5, byOwner[2].CardCount)
	a.Empty(details.Game.DeckHand.Cards)
	a.Equal(42, details.Game.DeckHand.CardCount)

	admin, err := e.TableDetails(tableUUID, Requester{PersonID: 99, Admin: true})
	a.NoError(err)
	a.Len(handsByOwner(admin.Game)[2].Cards, 5)
	a.Len(admin.Game.DeckHand.Cards, 42)

	_, err = e.TableDetails("bad-uuid", Requester{PersonID: 1})
	a.Equal(ErrNotFound, err)
}
