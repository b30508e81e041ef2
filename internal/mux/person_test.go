package mux

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"drawpoker-server/internal/util"
	"drawpoker-server/pkg/account"
)

func Test_postPerson(t *testing.T) {
	setupJWT()
	m := testMux()
	m.config.personCreateDelay = time.Second * -1

	ts := httptest.NewServer(m)
	defer ts.Close()

	var obj errorResponse
	assertPost(t, ts, "/person", "{}", &obj, 400)
	assert.Equal(t, "missing or invalid email address", obj.Message)

	obj = errorResponse{}
	assertPost(t, ts, "/person", personPayload{
		DisplayName: "&",
	}, &obj, 400)
	assert.Equal(t, "display name must only contain letters, numbers, and spaces, and be 40 characters or less", obj.Message)

	email := util.RandomEmail()
	obj = errorResponse{}
	assertPost(t, ts, "/person", personPayload{
		Email:    email,
		Password: "",
	}, &obj, 400)
	assert.Equal(t, "password must be 6 or more characters", obj.Message)

	var pObj *personWithEmail
	assertPost(t, ts, "/person", personPayload{
		Email:    email,
		Password: "123456",
	}, &pObj, 201)
	assert.Greater(t, pObj.ID, int64(0))
	assert.Equal(t, email, pObj.Email)
	// an omitted display name gets a generated one
	assert.NotEmpty(t, pObj.DisplayName)
	// registration grants the starting balance
	assert.Equal(t, 1000, pObj.Balance)

	obj = errorResponse{}
	assertPost(t, ts, "/person", personPayload{
		Email:    email,
		Password: "123456",
	}, &obj, 400)
	assert.Equal(t, "email address is already taken", obj.Message)
}

func Test_postPersonAuth(t *testing.T) {
	setupJWT()
	ts := httptest.NewServer(testMux())
	defer ts.Close()

	email := util.RandomEmail()
	p, err := account.CreatePerson(cbg, email, "Person", "password", "", 1000)
	assert.NoError(t, err)

	// created but not yet verified
	var obj errorResponse
	assertPost(t, ts, "/person/auth", personPayload{
		Email:    email,
		Password: "password",
	}, &obj, 401)
	assert.Equal(t, "account not verified", obj.Message)

	p.Status = account.PersonStatusVerified
	assert.NoError(t, p.Save(cbg))

	obj = errorResponse{}
	assertPost(t, ts, "/person/auth", personPayload{
		Email:    email,
		Password: "wrong-password",
	}, &obj, 401)
	assert.Equal(t, "invalid email address and/or password", obj.Message)

	var authObj postPersonAuthResponse
	assertPost(t, ts, "/person/auth", personPayload{
		Email:    email,
		Password: "password",
	}, &authObj, 200)
	assert.NotEmpty(t, authObj.JWT)
	assert.Equal(t, p.ID, authObj.Person.ID)

	// the issued token is honored by the auth router
	var tables []tableSummary
	assertGet(t, ts, "/table", &tables, 200, authObj.JWT)
}
