package mux

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"drawpoker-server/pkg/account"
	"drawpoker-server/pkg/deck"
)

var validCardRx = regexp.MustCompile(`^(?:[2-9]|1[0-4])[cdhs]\z`)

func pathID(r *http.Request) int64 {
	// the route guarantees an integer
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

type postBetPayload struct {
	Amount  int   `json:"amount"`
	Version int64 `json:"version"`
}

func (m *Mux) postHandIDBet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postBetPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if !m.ownsHand(w, r, pathID(r)) {
			return
		}

		result, err := m.engine.PlaceBet(pathID(r), pp.Amount, pp.Version)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

type postFoldPayload struct {
	Version int64 `json:"version"`
}

func (m *Mux) postHandIDFold() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postFoldPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if !m.ownsHand(w, r, pathID(r)) {
			return
		}

		result, err := m.engine.Fold(pathID(r), pp.Version)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

type postDrawPayload struct {
	Discards []string `json:"discards"`
	Version  int64    `json:"version"`
}

func (m *Mux) postHandIDDraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postDrawPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		discards := make([]deck.Card, 0, len(pp.Discards))
		for _, s := range pp.Discards {
			if !validCardRx.MatchString(s) {
				writeJSONError(w, http.StatusBadRequest, errors.New("invalid card: "+s))
				return
			}

			discards = append(discards, deck.CardFromString(s))
		}

		if !m.ownsHand(w, r, pathID(r)) {
			return
		}

		result, err := m.engine.Draw(pathID(r), discards, pp.Version)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func (m *Mux) getHandIDCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := m.engine.GetVisibleCards(pathID(r), requesterFrom(r))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"cards": deck.CardsToString(cards),
		})
	}
}

type postAdvancePayload struct {
	Version int64 `json:"version"`
}

func (m *Mux) postGameIDAdvance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postAdvancePayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		result, err := m.engine.AdvanceState(pathID(r), pp.Version)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		if result.Settlement != nil {
			if err := account.ApplyAdjustments(r.Context(), result.Settlement.BalanceAdjustments); err != nil {
				logrus.WithError(err).WithField("game", result.GameID).Error("could not persist settlement")
			}
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// ownsHand ensures a person only acts on their own hand. Admins may act on
// any hand.
func (m *Mux) ownsHand(w http.ResponseWriter, r *http.Request, handID int64) bool {
	requester := requesterFrom(r)
	if requester.Admin {
		return true
	}

	owner, err := m.engine.HandOwner(handID)
	if err != nil {
		writeEngineError(w, err)
		return false
	}

	if owner == nil || *owner != requester.PersonID {
		writeJSONError(w, http.StatusForbidden, nil)
		return false
	}

	return true
}
