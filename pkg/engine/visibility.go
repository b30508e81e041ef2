package engine

// Requester is a verified identity plus role, as produced by the
// authentication boundary
type Requester struct {
	PersonID int64
	Admin    bool
}

// canSeeCards decides whether the requester may observe the hand's cards.
// A requester sees a hand iff they own it, they are an admin, or the game
// reached a contested showdown and the hand did not fold. A pot won because
// everyone else folded is never revealed.
func canSeeCards(requester Requester, game *Game, hand *Hand) bool {
	if requester.Admin {
		return true
	}

	if hand.OwnerID != nil && *hand.OwnerID == requester.PersonID {
		return true
	}

	if hand.IsDeckHand() || hand.Folded {
		return false
	}

	if game.State != StateShowdown {
		return false
	}

	for _, other := range game.hands {
		if other.ID != hand.ID && !other.Folded {
			return true
		}
	}

	return false
}
