package engine

import "encoding/json"

// State represents the lifecycle state of a game
type State int

// constants for State
// States only ever advance in this order; SHOWDOWN is terminal.
const (
	StateDeal State = iota
	StateDealBet
	StateDraw
	StateDrawBet
	StateShowdown
)

func (s State) String() string {
	switch s {
	case StateDeal:
		return "deal"
	case StateDealBet:
		return "deal-bet"
	case StateDraw:
		return "draw"
	case StateDrawBet:
		return "draw-bet"
	case StateShowdown:
		return "showdown"
	}

	return ""
}

// IsBettingRound returns true for the two betting states
func (s State) IsBettingRound() bool {
	return s == StateDealBet || s == StateDrawBet
}

// Terminal returns true once the game can no longer advance
func (s State) Terminal() bool {
	return s == StateShowdown
}

// MarshalJSON encodes JSON
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}{
		ID:   int(s),
		Name: s.String(),
	})
}

// UnmarshalJSON decodes JSON
func (s *State) UnmarshalJSON(data []byte) error {
	var obj struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*s = State(obj.ID)
	return nil
}
