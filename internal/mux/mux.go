package mux

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	gmux "github.com/gorilla/mux"

	"drawpoker-server/internal/jwt"
	"drawpoker-server/pkg/account"
	"drawpoker-server/pkg/engine"
	"drawpoker-server/pkg/snapshot"
)

type ctxKey int

const (
	ctxPersonKey ctxKey = iota
	ctxTableKey
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	config    config
	version   string
	recaptcha recaptcha
	engine    *engine.Engine
	snapshots *snapshot.Store

	// store for testing purposes
	authRouter  *gmux.Router
	adminRouter *gmux.Router
}

type config struct {
	// personCreateDelay is the minimum duration between two registrations from a single remote address
	personCreateDelay time.Duration
}

// NewMux returns a new HTTP mux.
// The snapshot store may be nil; table reads then always go to the engine.
func NewMux(version string, eng *engine.Engine, snapshots *snapshot.Store) *Mux {
	this := &Mux{
		Router:    gmux.NewRouter(),
		version:   version,
		engine:    eng,
		snapshots: snapshots,
		config: config{
			personCreateDelay: time.Minute,
		},
		recaptcha: newRecaptcha(),
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	this.adminRouter = this.authRouter.NewRoute().Subrouter()
	this.adminRouter.Use(this.adminMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodPost).Path("/person").Handler(this.postPerson())
		r.Methods(http.MethodPost).Path("/person/auth").Handler(this.postPersonAuth())
		r.Methods(http.MethodGet).Path("/person/auth/{jwt:.*}").Handler(this.getPersonAuthJWT())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodPost).Path("/person/{id:[0-9]+}").Handler(this.postPersonID())

		r.Methods(http.MethodGet).Path("/table").Handler(this.getTable())
		r.Methods(http.MethodPost).Path("/table").Handler(this.postTable())

		tr := r.PathPrefix("/table/{uuid:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}").Subrouter()
		tr.Use(this.tableMiddleware)

		tr.Methods(http.MethodGet).Path("").Handler(this.getTableUUID())
		tr.Methods(http.MethodGet).Path("/ws").Handler(this.getTableUUIDWS())
		tr.Methods(http.MethodPost).Path("/seat").Handler(this.postTableUUIDSeat())
		tr.Methods(http.MethodDelete).Path("/seat/{position:[0-9]+}").Handler(this.deleteTableUUIDSeat())
		tr.Methods(http.MethodPost).Path("/game").Handler(this.postTableUUIDGame())

		r.Methods(http.MethodPost).Path("/game/{id:[0-9]+}/advance").Handler(this.postGameIDAdvance())
		r.Methods(http.MethodPost).Path("/hand/{id:[0-9]+}/bet").Handler(this.postHandIDBet())
		r.Methods(http.MethodPost).Path("/hand/{id:[0-9]+}/fold").Handler(this.postHandIDFold())
		r.Methods(http.MethodPost).Path("/hand/{id:[0-9]+}/draw").Handler(this.postHandIDDraw())
		r.Methods(http.MethodGet).Path("/hand/{id:[0-9]+}/cards").Handler(this.getHandIDCards())
	}

	// requires admin access
	// depends on authMiddleware
	{
		r := this.adminRouter
		r.Methods(http.MethodGet).Path("/person").Handler(this.getPerson())
		r.Methods(http.MethodPost).Path("/admin/person/{id:[0-9]+}").Handler(this.postAdminPersonID())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		id, err := jwt.ValidPersonID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		person, err := account.GetPersonByID(r.Context(), id)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxPersonKey, person)
		w.Header().Set("DrawPoker-PersonID", strconv.FormatInt(person.ID, 10))
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// adminMiddleware requires authMiddleware to execute first
func (m *Mux) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		person := r.Context().Value(ctxPersonKey).(*account.Person)
		if !person.IsSiteAdmin {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requesterFrom builds the engine's view of the authenticated person
func requesterFrom(r *http.Request) engine.Requester {
	person := r.Context().Value(ctxPersonKey).(*account.Person)
	return engine.Requester{
		PersonID: person.ID,
		Admin:    person.IsSiteAdmin,
	}
}
