package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	d := New()

	assert.Equal(t, 52, d.CardsLeft())
	assert.Equal(t, Card{Rank: 2, Suit: Diamonds}, d.Cards[0])
	assert.Equal(t, Card{Rank: Ace, Suit: Clubs}, d.Cards[51])

	// the catalog is closed: every (suit, rank) pair exactly once
	seen := make(map[Card]bool)
	for _, card := range d.Cards {
		assert.False(t, seen[card], "duplicate card: %s", card)
		seen[card] = true
	}
	assert.Equal(t, 52, len(seen))
}

func TestDeck_Shuffle(t *testing.T) {
	a := New()
	a.Shuffle(42)

	b := New()
	b.Shuffle(42)

	assert.Equal(t, a.HashCode(), b.HashCode())
	assert.Equal(t, int64(42), a.GetSeed())

	c := New()
	c.Shuffle(43)
	assert.NotEqual(t, a.HashCode(), c.HashCode())

	// shuffling is a permutation, not a mutation of the catalog
	seen := make(map[Card]bool)
	for _, card := range a.Cards {
		seen[card] = true
	}
	assert.Equal(t, 52, len(seen))

	assert.Panics(t, func() {
		a.Shuffle(-1)
	})
}

func TestDeck_Draw(t *testing.T) {
	d := New()

	assert.True(t, d.CanDraw(52))
	assert.False(t, d.CanDraw(53))

	for i := 0; i < 52; i++ {
		card, err := d.Draw()
		assert.NoError(t, err)
		assert.NotEqual(t, Card{}, card)
	}

	assert.False(t, d.CanDraw(1))

	card, err := d.Draw()
	assert.Equal(t, ErrEndOfDeck, err)
	assert.Equal(t, Card{}, card)

	d.Shuffle(1)
	assert.True(t, d.CanDraw(52))
}
