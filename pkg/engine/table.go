package engine

import (
	"sort"
	"time"
)

// Seat is a claimed position at a table
type Seat struct {
	Position int       `json:"position"`
	Player   *Player   `json:"player"`
	Version  int64     `json:"version"`
	Active   bool      `json:"active"`
	Claimed  time.Time `json:"claimed"`
}

// Table represents a poker table
// A table has seated players and at most one non-terminal game at a time.
type Table struct {
	UUID    string    `json:"uuid"`
	Name    string    `json:"name"`
	Version int64     `json:"version"`
	Created time.Time `json:"created"`

	seats       map[int]*Seat
	game        *Game
	gamesPlayed int64
}

// Seats returns the claimed seats in position order
func (t *Table) Seats() []*Seat {
	seats := make([]*Seat, 0, len(t.seats))
	for _, seat := range t.seats {
		seats = append(seats, seat)
	}

	sort.Slice(seats, func(i, j int) bool {
		return seats[i].Position < seats[j].Position
	})

	return seats
}

// Seat returns the seat at the given position, or nil
func (t *Table) Seat(position int) *Seat {
	return t.seats[position]
}

// SeatOf returns the seat claimed by the person, or nil
func (t *Table) SeatOf(personID int64) *Seat {
	for _, seat := range t.seats {
		if seat.Player.ID == personID {
			return seat
		}
	}

	return nil
}

// Game returns the current game, or nil if none has been started.
// A terminal game remains readable until the next one starts.
func (t *Table) Game() *Game {
	return t.game
}

// GamesPlayed returns the number of completed games
func (t *Table) GamesPlayed() int64 {
	return t.gamesPlayed
}

// activeSeats returns the active seats in position order
func (t *Table) activeSeats() []*Seat {
	seats := make([]*Seat, 0, len(t.seats))
	for _, seat := range t.Seats() {
		if seat.Active {
			seats = append(seats, seat)
		}
	}

	return seats
}

// hasRunningGame reports whether the table holds a non-terminal game
func (t *Table) hasRunningGame() bool {
	return t.game != nil && !t.game.State.Terminal()
}
