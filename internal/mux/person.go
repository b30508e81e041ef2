package mux

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gorilla/mux"

	appconfig "drawpoker-server/internal/config"
	"drawpoker-server/internal/jwt"
	"drawpoker-server/internal/util"
	"drawpoker-server/pkg/account"
)

type personPayload struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Token       string `json:"token"`
}

// personWithEmail should only be returned in an admin context, or for the requesting person
type personWithEmail struct {
	*account.Person
	Email string `json:"email"`
}

var validDisplayNameRx = regexp.MustCompile(`^[\p{L}\p{N} ]{0,40}\z`)
var statusOK = map[string]string{
	"status": "OK",
}

func (m *Mux) postPerson() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp personPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if err := m.recaptcha.Verify(pp.Token); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		if !validDisplayNameRx.MatchString(pp.DisplayName) {
			writeJSONError(w, http.StatusBadRequest, errors.New("display name must only contain letters, numbers, and spaces, and be 40 characters or less"))
			return
		}

		if err := checkmail.ValidateFormat(pp.Email); err != nil {
			writeJSONError(w, http.StatusBadRequest, errors.New("missing or invalid email address"))
			return
		}

		if len(pp.Password) < 6 {
			writeJSONError(w, http.StatusBadRequest, errors.New("password must be 6 or more characters"))
			return
		}

		addr := remoteAddr(r)
		at, err := account.LastPersonCreatedAt(r.Context(), addr)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		if time.Since(at) < m.config.personCreateDelay {
			writeJSONError(w, http.StatusBadRequest, errors.New("please wait before creating another account"))
			return
		}

		var displayName string
		if pp.DisplayName != "" {
			displayName = pp.DisplayName
		} else {
			displayName = util.GetRandomName()
		}

		person, err := account.CreatePerson(r.Context(), pp.Email, displayName, pp.Password, addr, appconfig.Instance().StartingBalance)
		if err != nil {
			if err == account.ErrDuplicateKey {
				writeJSONError(w, http.StatusBadRequest, errors.New("email address is already taken"))
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, &personWithEmail{
			Person: person,
			Email:  person.Email,
		})
	}
}

type postPersonIDPayload struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func (m *Mux) postPersonID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		personID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		// prevent a person from updating another person
		person := r.Context().Value(ctxPersonKey).(*account.Person)
		if person.ID != personID {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		var pp postPersonIDPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		update := false

		if displayName := pp.DisplayName; displayName != "" {
			if !validDisplayNameRx.MatchString(displayName) {
				writeJSONError(w, http.StatusBadRequest, errors.New("display name must only contain letters, numbers, and spaces"))
				return
			}

			person.DisplayName = displayName
			update = true
		}

		if email := pp.Email; email != "" {
			if err := checkmail.ValidateFormat(email); err != nil {
				writeJSONError(w, http.StatusBadRequest, errors.New("invalid email address"))
				return
			}

			person.Email = email
			update = true
		}

		if update {
			if err := person.Save(r.Context()); err != nil {
				writeJSONError(w, http.StatusInternalServerError, err)
				return
			}
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}

type postPersonAuthResponse struct {
	JWT    string          `json:"jwt"`
	Person personWithEmail `json:"person"`
}

func (m *Mux) postPersonAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp personPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		person, err := account.GetPersonByEmailAndPassword(r.Context(), pp.Email, pp.Password)
		if err != nil {
			var userErr account.UserError
			if errors.As(err, &userErr) {
				writeJSONError(w, http.StatusUnauthorized, err)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		signedToken, err := jwt.Sign(person.ID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, postPersonAuthResponse{
			JWT: signedToken,
			Person: personWithEmail{
				Person: person,
				Email:  person.Email,
			},
		})
	}
}

func (m *Mux) getPersonAuthJWT() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		signedToken := mux.Vars(r)["jwt"]
		personID, err := jwt.ValidPersonID(signedToken)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, err)
			return
		}

		person, err := account.GetPersonByID(r.Context(), personID)
		if err != nil {
			if err == sql.ErrNoRows {
				writeJSONError(w, http.StatusNotFound, errors.New("person does not exist"))
			} else {
				writeJSONError(w, http.StatusInternalServerError, err)
			}

			return
		}

		writeJSON(w, http.StatusOK, personWithEmail{
			Person: person,
			Email:  person.Email,
		})
	}
}

func (m *Mux) getPerson() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		persons, err := account.GetPersons(r.Context(), offset, int64(limit))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		adminPersons := make([]*personWithEmail, len(persons))
		for i, p := range persons {
			adminPersons[i] = &personWithEmail{
				Person: p,
				Email:  p.Email,
			}
		}

		writeJSON(w, http.StatusOK, adminPersons)
	}
}

type adminPostPersonIDRequest struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

func (m *Mux) postAdminPersonID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		personID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		person, err := account.GetPersonByID(r.Context(), personID)
		if err != nil {
			writeMaybeNotFoundError(w, err)
			return
		}

		var payload adminPostPersonIDRequest
		if !decodeRequest(w, r, &payload) {
			return
		}

		switch payload.Key {
		case "password":
			value, ok := payload.Value.(string)
			if !ok {
				writeJSONError(w, http.StatusBadRequest, errors.New("password must be a string"))
				return
			}

			if err := person.SetPassword(value); err != nil {
				writeJSONError(w, http.StatusInternalServerError, err)
				return
			}
		case "status":
			value, ok := payload.Value.(string)
			if !ok {
				writeJSONError(w, http.StatusBadRequest, errors.New("status must be a string"))
				return
			}

			person.Status = account.PersonStatus(value)
		default:
			writeJSONError(w, http.StatusBadRequest, errors.New("bad payload"))
			return
		}

		if err := person.Save(r.Context()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}
