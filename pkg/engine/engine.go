package engine

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"drawpoker-server/pkg/deck"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Cache is notified whenever a table's state changes so read-through
// snapshots can be invalidated. Stale reads after a commit are a bug, not an
// acceptable staleness window.
type Cache interface {
	Invalidate(tableUUID string)
}

type nopCache struct{}

func (nopCache) Invalidate(string) {}

// Engine runs the five-card-draw tables.
// Each table is a single-writer state machine guarded by its own mutex, so
// operations against different tables never contend. Every mutable entity
// carries a version; writes with a stale base version fail with ErrConflict
// and are never retried internally.
type Engine struct {
	log   logrus.FieldLogger
	cache Cache
	clock func() time.Time
	seed  func() int64

	// mu guards the routing maps only. It must never be held while
	// acquiring a tableState mutex.
	mu     sync.RWMutex
	tables map[string]*tableState
	names  map[string]string
	games  map[int64]*tableState
	hands  map[int64]*tableState

	nextID int64

	subMu   sync.Mutex
	subs    map[string]map[int64]chan struct{}
	nextSub int64
}

// tableState is the per-table critical section
type tableState struct {
	mu    sync.Mutex
	table *Table

	// games and hand routing for this table, guarded by mu
	games     map[int64]*Game
	handIndex map[int64]*Hand
	handGame  map[int64]*Game
}

// New returns a new engine
func New(logger logrus.FieldLogger) *Engine {
	return &Engine{
		log:    logger,
		cache:  nopCache{},
		clock:  time.Now,
		seed:   func() int64 { return 0 }, // deck seeds from the clock
		tables: make(map[string]*tableState),
		names:  make(map[string]string),
		games:  make(map[int64]*tableState),
		hands:  make(map[int64]*tableState),
		subs:   make(map[string]map[int64]chan struct{}),
	}
}

// SetCache installs the snapshot cache to invalidate on commits
func (e *Engine) SetCache(cache Cache) {
	e.cache = cache
}

// SetClock overrides the engine clock.
// This should only be used by tests.
func (e *Engine) SetClock(clock func() time.Time) {
	e.clock = clock
}

// SetSeeder overrides the shuffle seed source.
// This should only be used by tests.
func (e *Engine) SetSeeder(seed func() int64) {
	e.seed = seed
}

func (e *Engine) newID() int64 {
	return atomic.AddInt64(&e.nextID, 1)
}

// committed is called after a table mutation is visible
func (e *Engine) committed(tableUUID string) {
	e.cache.Invalidate(tableUUID)

	e.subMu.Lock()
	for _, ch := range e.subs[tableUUID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	e.subMu.Unlock()
}

// Subscribe returns a channel that receives a tick whenever the table's
// state changes. The returned func cancels the subscription.
func (e *Engine) Subscribe(tableUUID string) (<-chan struct{}, func()) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	e.nextSub++
	id := e.nextSub

	ch := make(chan struct{}, 1)
	if e.subs[tableUUID] == nil {
		e.subs[tableUUID] = make(map[int64]chan struct{})
	}
	e.subs[tableUUID][id] = ch

	cancel := func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subs[tableUUID], id)
	}

	return ch, cancel
}

// CreateTable creates a new table with a unique alias
func (e *Engine) CreateTable(name string) (*TableDetails, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError("table name is required")
	}

	e.mu.Lock()
	if _, found := e.names[strings.ToLower(name)]; found {
		e.mu.Unlock()
		return nil, ErrConflict
	}

	ts := &tableState{
		table: &Table{
			UUID:    uuid.New().String(),
			Name:    name,
			Version: 1,
			Created: e.clock(),
			seats:   make(map[int]*Seat),
		},
		games:     make(map[int64]*Game),
		handIndex: make(map[int64]*Hand),
		handGame:  make(map[int64]*Game),
	}

	e.tables[ts.table.UUID] = ts
	e.names[strings.ToLower(name)] = ts.table.UUID
	e.mu.Unlock()

	e.log.WithFields(logrus.Fields{
		"table": ts.table.UUID,
		"name":  name,
	}).Info("table created")

	return e.tableDetails(ts), nil
}

// Tables returns the known table UUIDs and names
func (e *Engine) Tables() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tables := make(map[string]string, len(e.tables))
	for id, ts := range e.tables {
		tables[id] = ts.table.Name
	}

	return tables
}

func (e *Engine) tableByUUID(tableUUID string) (*tableState, error) {
	e.mu.RLock()
	ts, found := e.tables[tableUUID]
	e.mu.RUnlock()

	if !found {
		return nil, ErrNotFound
	}

	return ts, nil
}

func (e *Engine) tableByHand(handID int64) (*tableState, error) {
	e.mu.RLock()
	ts, found := e.hands[handID]
	e.mu.RUnlock()

	if !found {
		return nil, ErrNotFound
	}

	return ts, nil
}

func (e *Engine) tableByGame(gameID int64) (*tableState, error) {
	e.mu.RLock()
	ts, found := e.games[gameID]
	e.mu.RUnlock()

	if !found {
		return nil, ErrNotFound
	}

	return ts, nil
}

// ClaimSeat claims the position for the player.
// The claim is a compare-and-set on (table, position): of two concurrent
// claims for the same empty seat, exactly one succeeds and the other
// receives ErrConflict.
func (e *Engine) ClaimSeat(tableUUID string, position int, player Player) (*SeatResult, error) {
	if position < 0 {
		return nil, ValidationError("position cannot be negative")
	}

	if player.Balance < 0 {
		return nil, ValidationError("balance cannot be negative")
	}

	ts, err := e.tableByUUID(tableUUID)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, taken := ts.table.seats[position]; taken {
		return nil, ErrConflict
	}

	if ts.table.SeatOf(player.ID) != nil {
		return nil, ErrConflict
	}

	seat := &Seat{
		Position: position,
		Player:   &player,
		Version:  1,
		Active:   true,
		Claimed:  e.clock(),
	}

	ts.table.seats[position] = seat
	ts.table.Version++

	e.log.WithFields(logrus.Fields{
		"table":    tableUUID,
		"position": position,
		"person":   player.ID,
	}).Info("seat claimed")

	defer e.committed(tableUUID)

	return &SeatResult{
		Position:     position,
		SeatVersion:  seat.Version,
		TableVersion: ts.table.Version,
	}, nil
}

// VacateSeat releases the position.
// A player with a live hand in a running game cannot leave mid-game.
func (e *Engine) VacateSeat(tableUUID string, position int, personID int64) (*SeatResult, error) {
	ts, err := e.tableByUUID(tableUUID)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	seat, found := ts.table.seats[position]
	if !found {
		return nil, ErrNotFound
	}

	if seat.Player.ID != personID {
		return nil, ErrForbidden
	}

	if ts.table.hasRunningGame() {
		for _, h := range ts.table.game.hands {
			if h.OwnerID != nil && *h.OwnerID == personID && h.InPlay() {
				return nil, ErrGameInProgress
			}
		}
	}

	delete(ts.table.seats, position)
	ts.table.Version++

	e.log.WithFields(logrus.Fields{
		"table":    tableUUID,
		"position": position,
		"person":   personID,
	}).Info("seat vacated")

	defer e.committed(tableUUID)

	return &SeatResult{
		Position:     position,
		SeatVersion:  seat.Version,
		TableVersion: ts.table.Version,
	}, nil
}

// StartGame deals a new game for the table.
// All 52 cards are dealt exactly once: five per seated player round-robin,
// the remainder to the ownerless deck hand.
func (e *Engine) StartGame(tableUUID string) (*GameDetails, error) {
	ts, err := e.tableByUUID(tableUUID)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.table.hasRunningGame() {
		return nil, ErrGameInProgress
	}

	seats := ts.table.activeSeats()
	if len(seats) < 2 {
		return nil, ErrInsufficientPlayers
	}

	d := deck.New()
	d.Shuffle(e.seed())

	dealerIndex := int(ts.table.gamesPlayed % int64(len(seats)))

	game := &Game{
		ID:             e.newID(),
		TableUUID:      tableUUID,
		State:          StateDeal,
		Version:        1,
		DealerPosition: seats[dealerIndex].Position,
		ActivityAt:     e.clock(),
		players:        make(map[int64]*Player),
		seed:           d.GetSeed(),
	}

	// deal order starts left of the dealer
	hands := make([]*Hand, 0, len(seats))
	for i := range seats {
		seat := seats[(dealerIndex+1+i)%len(seats)]
		game.players[seat.Player.ID] = seat.Player

		ownerID := seat.Player.ID
		hands = append(hands, &Hand{
			ID:       e.newID(),
			GameID:   game.ID,
			OwnerID:  &ownerID,
			Position: seat.Position,
			Active:   true,
			Version:  1,
		})
	}

	for i := 0; i < cardsPerHand; i++ {
		for _, h := range hands {
			card, err := d.Draw()
			if err != nil {
				// cannot happen with 52 cards and at most 10 players
				return nil, err
			}

			h.cards.AddCard(card)
		}
	}

	deckHand := &Hand{
		ID:       e.newID(),
		GameID:   game.ID,
		Position: -1,
		Active:   true,
		Version:  1,
		cards:    deck.Hand(d.Cards).Clone(),
	}

	game.hands = hands
	game.deckHand = deckHand
	ts.table.game = game
	ts.table.Version++

	ts.games[game.ID] = game
	ts.handGame[deckHand.ID] = game
	ts.handIndex[deckHand.ID] = deckHand
	for _, h := range hands {
		ts.handIndex[h.ID] = h
		ts.handGame[h.ID] = game
	}

	e.mu.Lock()
	e.games[game.ID] = ts
	e.hands[deckHand.ID] = ts
	for _, h := range hands {
		e.hands[h.ID] = ts
	}
	e.mu.Unlock()

	e.log.WithFields(logrus.Fields{
		"table":   tableUUID,
		"game":    game.ID,
		"players": len(hands),
	}).Info("game started")

	defer e.committed(tableUUID)

	return gameDetails(game), nil
}

// PlaceBet raises the hand's cumulative bet to amount
func (e *Engine) PlaceBet(handID int64, amount int, expectedVersion int64) (*BetResult, error) {
	ts, err := e.tableByHand(handID)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	h := ts.handIndex[handID]
	game := ts.handGame[handID]

	if h.Version != expectedVersion {
		return nil, ErrConflict
	}

	if err := game.placeBet(h, amount); err != nil {
		return nil, err
	}

	h.Version++
	game.Version++
	game.ActivityAt = e.clock()

	defer e.committed(ts.table.UUID)

	return &BetResult{
		HandID:        handID,
		HandVersion:   h.Version,
		Bet:           h.Bet,
		MaxBet:        game.MaxBet(),
		GameVersion:   game.Version,
		State:         game.State,
		RoundComplete: game.bettingRoundComplete(),
	}, nil
}

// Fold folds the hand; its bet stays in the pot
func (e *Engine) Fold(handID int64, expectedVersion int64) (*BetResult, error) {
	return e.fold(handID, &expectedVersion)
}

// ForceFold folds an idle hand on behalf of the timer collaborator.
// No version check is made; the timer has no base version to present.
func (e *Engine) ForceFold(handID int64) (*BetResult, error) {
	return e.fold(handID, nil)
}

func (e *Engine) fold(handID int64, expectedVersion *int64) (*BetResult, error) {
	ts, err := e.tableByHand(handID)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	h := ts.handIndex[handID]
	game := ts.handGame[handID]

	if expectedVersion != nil && h.Version != *expectedVersion {
		return nil, ErrConflict
	}

	if err := game.fold(h); err != nil {
		return nil, err
	}

	h.Version++
	game.Version++
	game.ActivityAt = e.clock()

	e.log.WithFields(logrus.Fields{
		"table":  ts.table.UUID,
		"hand":   handID,
		"forced": expectedVersion == nil,
	}).Info("hand folded")

	defer e.committed(ts.table.UUID)

	return &BetResult{
		HandID:        handID,
		HandVersion:   h.Version,
		Bet:           h.Bet,
		MaxBet:        game.MaxBet(),
		GameVersion:   game.Version,
		State:         game.State,
		RoundComplete: game.bettingRoundComplete(),
	}, nil
}

// Draw exchanges the discarded cards for fresh ones from the deck hand.
// An empty discard list stands pat.
func (e *Engine) Draw(handID int64, discards []deck.Card, expectedVersion int64) (*DrawResult, error) {
	ts, err := e.tableByHand(handID)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	h := ts.handIndex[handID]
	game := ts.handGame[handID]

	if h.Version != expectedVersion {
		return nil, ErrConflict
	}

	if err := game.draw(h, discards); err != nil {
		return nil, err
	}

	h.Version++
	game.Version++
	game.ActivityAt = e.clock()

	defer e.committed(ts.table.UUID)

	return &DrawResult{
		HandID:        handID,
		HandVersion:   h.Version,
		Drawn:         len(discards),
		DeckRemaining: game.deckHand.CardCount(),
		GameVersion:   game.Version,
		State:         game.State,
		DrawComplete:  game.drawComplete(),
	}, nil
}

// AdvanceState moves the game to its next lifecycle state.
// Reaching SHOWDOWN settles the pot and ends the game.
func (e *Engine) AdvanceState(gameID int64, expectedVersion int64) (*GameResult, error) {
	return e.advance(gameID, &expectedVersion, false)
}

// ForceAdvance advances an idle game on behalf of the timer collaborator.
// Hands blocking the transition are folded (betting rounds) or stood pat
// (draw round) first.
func (e *Engine) ForceAdvance(gameID int64) (*GameResult, error) {
	return e.advance(gameID, nil, true)
}

func (e *Engine) advance(gameID int64, expectedVersion *int64, force bool) (*GameResult, error) {
	ts, err := e.tableByGame(gameID)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	game := ts.games[gameID]

	if expectedVersion != nil && game.Version != *expectedVersion {
		return nil, ErrConflict
	}

	if force {
		forceUnblock(game)
	}

	if err := game.advance(); err != nil {
		return nil, err
	}

	var settlement *Settlement
	if game.State.Terminal() {
		settlement = game.settle()
		ts.table.gamesPlayed++
		ts.table.Version++
	}

	game.Version++
	game.ActivityAt = e.clock()

	e.log.WithFields(logrus.Fields{
		"table":  ts.table.UUID,
		"game":   gameID,
		"state":  game.State.String(),
		"forced": force,
	}).Info("game advanced")

	defer e.committed(ts.table.UUID)

	return &GameResult{
		GameID:      gameID,
		GameVersion: game.Version,
		State:       game.State,
		Settlement:  settlement,
	}, nil
}

// forceUnblock clears whatever is holding up the current state
func forceUnblock(game *Game) {
	switch game.State {
	case StateDealBet, StateDrawBet:
		maxBet := game.MaxBet()
		for _, h := range game.hands {
			if h.InPlay() && h.Bet != maxBet && !game.allIn(h) {
				h.Folded = true
				h.Version++
			}
		}
	case StateDraw:
		for _, h := range game.hands {
			if h.InPlay() && !h.drawn {
				h.drawn = true
				h.Version++
			}
		}
	}
}

// IdleGames returns the running games with no activity within idleFor.
// The idle sweeper uses this to decide which games to force forward.
func (e *Engine) IdleGames(idleFor time.Duration) []int64 {
	cutoff := e.clock().Add(-idleFor)

	e.mu.RLock()
	states := make([]*tableState, 0, len(e.tables))
	for _, ts := range e.tables {
		states = append(states, ts)
	}
	e.mu.RUnlock()

	var ids []int64
	for _, ts := range states {
		ts.mu.Lock()
		if ts.table.hasRunningGame() && ts.table.game.ActivityAt.Before(cutoff) {
			ids = append(ids, ts.table.game.ID)
		}
		ts.mu.Unlock()
	}

	return ids
}

// HandOwner returns the hand's owner ID, or nil for the deck hand
func (e *Engine) HandOwner(handID int64) (*int64, error) {
	ts, err := e.tableByHand(handID)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	return ts.handIndex[handID].OwnerID, nil
}

// GetVisibleCards returns the hand's cards if the requester may see them.
// The policy is evaluated on every call and never cached.
func (e *Engine) GetVisibleCards(handID int64, requester Requester) (deck.Hand, error) {
	ts, err := e.tableByHand(handID)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	h := ts.handIndex[handID]
	game := ts.handGame[handID]

	if !canSeeCards(requester, game, h) {
		return nil, ErrForbidden
	}

	return h.Cards(), nil
}

// TableDetails returns the table's current state with each hand's cards
// censored per the requester's visibility
func (e *Engine) TableDetails(tableUUID string, requester Requester) (*TableDetails, error) {
	ts, err := e.tableByUUID(tableUUID)
	if err != nil {
		return nil, err
	}

	return e.tableDetailsFor(ts, requester), nil
}

func (e *Engine) tableDetails(ts *tableState) *TableDetails {
	return e.tableDetailsFor(ts, Requester{})
}
