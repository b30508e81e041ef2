package engine

import (
	"drawpoker-server/pkg/poker"
)

// SettlementShare is one hand's share of the pot
type SettlementShare struct {
	HandID   int64  `json:"handId"`
	PersonID int64  `json:"personId"`
	Position int    `json:"position"`
	HandName string `json:"handName,omitempty"`
	Winnings int    `json:"winnings"`
}

// Settlement is the outcome of a game's showdown
type Settlement struct {
	Pot       int                `json:"pot"`
	Contested bool               `json:"contested"`
	Winners   []*SettlementShare `json:"winners"`

	// BalanceAdjustments holds each participant's net chip change for the
	// game, keyed by person ID. The account layer persists these.
	BalanceAdjustments map[int64]int `json:"balanceAdjustments"`
}

// settle ranks the surviving hands, splits the pot, and credits balances.
// Identical-rank hands split evenly; the remainder goes to the winning hand
// first clockwise from the dealer.
func (g *Game) settle() *Settlement {
	pot := g.Pot()

	contenders := make([]*Hand, 0, len(g.hands))
	for _, h := range g.hands {
		if h.InPlay() {
			contenders = append(contenders, h)
		}
	}

	settlement := &Settlement{
		Pot:                pot,
		Contested:          len(contenders) > 1,
		BalanceAdjustments: make(map[int64]int),
	}

	for _, h := range g.hands {
		if h.OwnerID != nil {
			settlement.BalanceAdjustments[*h.OwnerID] = -h.Bet
		}
	}

	var winners []*Hand
	names := make(map[int64]string)

	if len(contenders) == 1 {
		// the pot was won uncontested; the cards stay hidden
		winners = contenders
	} else {
		var best []int
		for _, h := range contenders {
			analyzer := poker.NewHandAnalyzer(h.cards)
			names[h.ID] = analyzer.GetHand().String()

			strength := analyzer.Strength()
			cmp := 1
			if best != nil {
				cmp = poker.Compare(strength, best)
			}

			switch {
			case cmp > 0:
				best = strength
				winners = []*Hand{h}
			case cmp == 0:
				winners = append(winners, h)
			}
		}
	}

	share := pot / len(winners)
	remainder := pot % len(winners)
	first := g.firstFromDealer(winners)

	for _, h := range winners {
		winnings := share
		if h == first {
			winnings += remainder
		}

		owner := g.players[*h.OwnerID]
		owner.Balance += winnings
		settlement.BalanceAdjustments[owner.ID] += winnings

		settlement.Winners = append(settlement.Winners, &SettlementShare{
			HandID:   h.ID,
			PersonID: owner.ID,
			Position: h.Position,
			HandName: names[h.ID],
			Winnings: winnings,
		})
	}

	g.settlement = settlement
	return settlement
}

// firstFromDealer returns the hand whose seat comes first clockwise from the
// dealer position
func (g *Game) firstFromDealer(hands []*Hand) *Hand {
	var first *Hand
	firstDistance := 0

	for _, h := range hands {
		distance := h.Position - g.DealerPosition
		if distance <= 0 {
			distance += 1 << 16
		}

		if first == nil || distance < firstDistance {
			first = h
			firstDistance = distance
		}
	}

	return first
}
