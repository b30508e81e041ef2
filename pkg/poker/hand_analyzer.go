package poker

import (
	"fmt"
	"math"
	"sort"

	"drawpoker-server/pkg/deck"
)

// HandAnalyzer analyzes a five-card hand
type HandAnalyzer struct {
	cards    []deck.Card
	flush    []int
	quads    []int
	trips    []int
	pairs    []int
	straight int

	hand Hand
}

// NewHandAnalyzer will return a new HandAnalyzer instance
// The cards must form a complete five-card hand.
func NewHandAnalyzer(cards []deck.Card) *HandAnalyzer {
	if len(cards) != 5 {
		panic(fmt.Sprintf("expected 5 cards, got %d", len(cards)))
	}

	newCards := make([]deck.Card, len(cards))
	copy(newCards, cards)

	sort.Sort(sort.Reverse(sortByRank(newCards)))

	h := &HandAnalyzer{
		cards: newCards,
	}

	h.analyze()

	if h.straight > 0 && h.flush != nil {
		if h.straight == deck.Ace {
			h.hand = RoyalFlush
		} else {
			h.hand = StraightFlush
		}
	} else if _, ok := h.GetFourOfAKind(); ok {
		h.hand = FourOfAKind
	} else if _, ok := h.GetFullHouse(); ok {
		h.hand = FullHouse
	} else if _, ok := h.GetFlush(); ok {
		h.hand = Flush
	} else if _, ok := h.GetStraight(); ok {
		h.hand = Straight
	} else if _, ok := h.GetThreeOfAKind(); ok {
		h.hand = ThreeOfAKind
	} else if _, ok := h.GetTwoPair(); ok {
		h.hand = TwoPair
	} else if _, ok := h.GetPair(); ok {
		h.hand = OnePair
	} else {
		h.hand = HighCard
	}

	return h
}

// GetHand will return the best possible hand the cards can make
func (h *HandAnalyzer) GetHand() Hand {
	return h.hand
}

// GetFourOfAKind will return the four of a kind, if present
func (h *HandAnalyzer) GetFourOfAKind() (int, bool) {
	if len(h.quads) > 0 {
		return h.quads[0], true
	}

	return 0, false
}

// GetFullHouse will return the trip and pair ranks, if present
func (h *HandAnalyzer) GetFullHouse() ([]int, bool) {
	if len(h.trips) > 0 && len(h.pairs) > 0 {
		return []int{h.trips[0], h.pairs[0]}, true
	}

	return nil, false
}

// GetFlush will return the flush ranks in descending order, if present
func (h *HandAnalyzer) GetFlush() ([]int, bool) {
	if h.flush != nil {
		return h.flush, true
	}

	return nil, false
}

// GetStraight will return the high card of the straight, if present
func (h *HandAnalyzer) GetStraight() (int, bool) {
	if h.straight > 0 {
		return h.straight, true
	}

	return 0, false
}

// GetThreeOfAKind will return the three of a kind, if present
func (h *HandAnalyzer) GetThreeOfAKind() (int, bool) {
	if len(h.trips) > 0 {
		return h.trips[0], true
	}

	return 0, false
}

// GetTwoPair will return the two best pairs, if present
func (h *HandAnalyzer) GetTwoPair() ([]int, bool) {
	if len(h.pairs) >= 2 {
		return h.pairs[0:2], true
	}

	return nil, false
}

// GetPair will return the best pair, if present
func (h *HandAnalyzer) GetPair() (int, bool) {
	if len(h.pairs) > 0 {
		return h.pairs[0], true
	}

	return 0, false
}

// GetHighCard will return the high card
func (h *HandAnalyzer) GetHighCard() int {
	return h.cards[0].Rank
}

func (h *HandAnalyzer) analyze() {
	suitCounts := make(map[deck.Suit]int)

	prevRank := math.MaxInt8
	numOfRank := 0

	quads := make([]int, 0)
	trips := make([]int, 0)
	pairs := make([]int, 0)

	nCards := len(h.cards)
	for i, card := range h.cards {
		if card.Rank == prevRank {
			numOfRank++
		}

		// if the card is no longer the same rank, or we're at the end,
		// check the longest group of cards we can form
		if card.Rank != prevRank || i+1 == nCards {
			switch numOfRank {
			case 4:
				quads = append(quads, prevRank)
			case 3:
				trips = append(trips, prevRank)
			case 2:
				pairs = append(pairs, prevRank)
			}

			numOfRank = 1
		}

		prevRank = card.Rank
		suitCounts[card.Suit]++
	}

	h.quads = quads
	h.trips = trips
	h.pairs = pairs

	for _, count := range suitCounts {
		if count == 5 {
			ranks := make([]int, 5)
			for i, card := range h.cards {
				ranks[i] = card.Rank
			}

			h.flush = ranks
		}
	}

	h.straight = h.checkStraight()
}

// checkStraight returns the high card of a straight, or 0
// Cards are sorted in descending rank order. The ace may play low (A,5,4,3,2).
func (h *HandAnalyzer) checkStraight() int {
	for i := 1; i < len(h.cards); i++ {
		if h.cards[i-1].Rank != h.cards[i].Rank+1 {
			// the wheel: ace on top, then 5,4,3,2
			if i == 1 && h.cards[0].Rank == deck.Ace && h.cards[1].Rank == 5 {
				continue
			}

			return 0
		}
	}

	if h.cards[0].Rank == deck.Ace && h.cards[1].Rank == 5 {
		return 5
	}

	return h.cards[0].Rank
}

// Strength returns the hand's total-order strength vector.
// Vectors compare lexicographically; equal vectors mean a split pot.
func (h *HandAnalyzer) Strength() []int {
	s := []int{int(h.hand)}

	switch h.hand {
	case RoyalFlush:
		// nothing beyond the ladder value
	case StraightFlush, Straight:
		high, _ := h.GetStraight()
		s = append(s, high)
	case FourOfAKind:
		quad, _ := h.GetFourOfAKind()
		s = append(s, quad)
		s = append(s, h.kickers(quad)...)
	case FullHouse:
		fh, _ := h.GetFullHouse()
		s = append(s, fh...)
	case Flush, HighCard:
		s = append(s, h.kickers()...)
	case ThreeOfAKind:
		trip, _ := h.GetThreeOfAKind()
		s = append(s, trip)
		s = append(s, h.kickers(trip)...)
	case TwoPair:
		tp, _ := h.GetTwoPair()
		s = append(s, tp...)
		s = append(s, h.kickers(tp...)...)
	case OnePair:
		pair, _ := h.GetPair()
		s = append(s, pair)
		s = append(s, h.kickers(pair)...)
	}

	return s
}

// kickers returns the ranks not in the excluded set, descending
func (h *HandAnalyzer) kickers(exclude ...int) []int {
	ranks := make([]int, 0, len(h.cards))

outer:
	for _, card := range h.cards {
		for _, ex := range exclude {
			if card.Rank == ex {
				continue outer
			}
		}

		ranks = append(ranks, card.Rank)
	}

	return ranks
}

// Compare returns a positive value if a beats b, a negative value if b beats a,
// and zero if the hands tie
func Compare(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}

	return len(a) - len(b)
}
