package mux

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"drawpoker-server/internal/util"
	"drawpoker-server/pkg/account"
	"drawpoker-server/pkg/engine"
)

type tableSummary struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

func (m *Mux) getTable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables := m.engine.Tables()

		summaries := make([]tableSummary, 0, len(tables))
		for uuid, name := range tables {
			summaries = append(summaries, tableSummary{UUID: uuid, Name: name})
		}

		writeJSON(w, http.StatusOK, summaries)
	}
}

type postTablePayload struct {
	Name string `json:"name"`
}

func (m *Mux) postTable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postTablePayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if pp.Name == "" {
			pp.Name = util.GetRandomName()
		}

		if len(pp.Name) < 3 || len(pp.Name) > 40 {
			writeJSONError(w, http.StatusBadRequest, errors.New("name must be 3-40 characters"))
			return
		}

		details, err := m.engine.CreateTable(pp.Name)
		if err != nil {
			if errors.Is(err, engine.ErrConflict) {
				writeJSONError(w, http.StatusConflict, errors.New("table name is already taken"))
				return
			}

			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, details)
	}
}

func (m *Mux) getTableUUID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tableUUID := r.Context().Value(ctxTableKey).(string)
		requester := requesterFrom(r)

		details, err := m.tableDetails(r.Context(), tableUUID, requester)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, details)
	})
}

// tableDetails serves the public snapshot from the cache when the requester
// has no privileged view. Admins and seated players always read the engine
// directly so their own cards are fresh.
func (m *Mux) tableDetails(ctx context.Context, tableUUID string, requester engine.Requester) (*engine.TableDetails, error) {
	if m.snapshots == nil || requester.Admin {
		return m.engine.TableDetails(tableUUID, requester)
	}

	details, err := m.snapshots.Table(ctx, tableUUID, func() (*engine.TableDetails, error) {
		return m.engine.TableDetails(tableUUID, engine.Requester{})
	})
	if err != nil {
		return nil, err
	}

	for _, seat := range details.Seats {
		if seat.PersonID == requester.PersonID {
			return m.engine.TableDetails(tableUUID, requester)
		}
	}

	return details, nil
}

type postSeatPayload struct {
	Position int `json:"position"`
}

func (m *Mux) postTableUUIDSeat() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pp postSeatPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		person := r.Context().Value(ctxPersonKey).(*account.Person)
		tableUUID := r.Context().Value(ctxTableKey).(string)

		result, err := m.engine.ClaimSeat(tableUUID, pp.Position, engine.Player{
			ID:          person.ID,
			DisplayName: person.DisplayName,
			Admin:       person.IsSiteAdmin,
			Balance:     person.Balance,
		})
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, result)
	})
}

func (m *Mux) deleteTableUUIDSeat() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the route guarantees an integer
		position, _ := strconv.Atoi(mux.Vars(r)["position"])

		person := r.Context().Value(ctxPersonKey).(*account.Person)
		tableUUID := r.Context().Value(ctxTableKey).(string)

		result, err := m.engine.VacateSeat(tableUUID, position, person.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})
}

func (m *Mux) postTableUUIDGame() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tableUUID := r.Context().Value(ctxTableKey).(string)

		details, err := m.engine.StartGame(tableUUID)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, details)
	})
}

func (m *Mux) tableMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uuid := mux.Vars(r)["uuid"]
		if _, found := m.engine.Tables()[uuid]; !found {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxTableKey, uuid)

		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}
