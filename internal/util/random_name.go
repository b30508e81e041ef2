package util

import (
	"fmt"
	"math/rand"
)

var random = rand.New(rand.NewSource(rand.Int63())) // nolint:gosec

var adjectives = []string{
	"Lucky", "Bold", "Quiet", "Wild", "Steady", "Crooked", "Marble", "Velvet", "Midnight", "Golden",
	"Rusty", "Smoky", "Copper", "Ivory", "Neon", "Electric", "Frozen", "Blazing", "Silent", "Roaring",
	"Crimson", "Emerald", "Amber", "Cobalt", "Shady", "Slick", "Daring", "Gritty", "Bluffing", "Stacked",
}

var nouns = []string{
	"River", "Flop", "Turn", "Ace", "Deuce", "Joker", "Dealer", "Shark", "Fish", "Whale",
	"Maverick", "Gambit", "Bluff", "Wager", "Stakes", "Chips", "Felt", "Button", "Cutoff", "Kicker",
	"Boat", "Wheel", "Broadway", "Trips", "Quads", "Muck", "Rake", "Tilt", "Draw", "Showdown",
}

// GetRandomName returns a random table name by combining an adjective with a
// poker noun
func GetRandomName() string {
	adjectivesIndex := random.Intn(len(adjectives))
	nounsIndex := random.Intn(len(nouns))

	return fmt.Sprintf("%s %s", adjectives[adjectivesIndex], nouns[nounsIndex])
}
