package account

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/synacor/argon2id"

	"drawpoker-server/pkg/db"
)

const personColumns = `
persons.id,
persons.email,
persons.display_name,
persons.is_site_admin,
persons.status,
persons.password_hash,
persons.avatar_hash,
persons.balance,
persons.created,
persons.updated`

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// ErrInvalidEmailOrPassword is an error for an invalid email or password
var ErrInvalidEmailOrPassword = UserError("invalid email address and/or password")

// ErrDuplicateKey happens if a user tries to register with a taken email
var ErrDuplicateKey = errors.New("duplicate key constraint violation")

// ErrAccountNotVerified is an error if the user tries to log in without being verified
var ErrAccountNotVerified = UserError("account not verified")

// PersonStatus is the status of a person
type PersonStatus string

// PersonStatus constants
const (
	PersonStatusCreated  PersonStatus = "created"
	PersonStatusVerified PersonStatus = "verified"
	PersonStatusBlocked  PersonStatus = "blocked"
	PersonStatusDeleted  PersonStatus = "deleted"
)

// Person is a record in the `persons` table.
// The balance is the durable chip count; the engine works on a copy while a
// game runs and the settlement adjustments are applied back here.
type Person struct {
	ID           int64        `json:"id"`
	Email        string       `json:"-"`
	DisplayName  string       `json:"displayName"`
	IsSiteAdmin  bool         `json:"isSiteAdmin"`
	Status       PersonStatus `json:"status"`
	passwordHash string
	AvatarHash   string    `json:"avatarHash"`
	Balance      int       `json:"balance"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

func getPersonByRow(row db.Scanner) (*Person, error) {
	var person Person
	if err := row.Scan(&person.ID, &person.Email, &person.DisplayName, &person.IsSiteAdmin, &person.Status, &person.passwordHash, &person.AvatarHash, &person.Balance, &person.Created, &person.Updated); err != nil {
		return nil, err
	}

	return &person, nil
}

// GetPersonByID returns the person based on the ID
func GetPersonByID(ctx context.Context, id int64) (*Person, error) {
	const query = `
SELECT ` + personColumns + `
FROM persons
WHERE id = $1`

	row := db.Instance().QueryRowContext(ctx, query, id)
	return getPersonByRow(row)
}

// GetPersonByEmail will return a person by the email address
func GetPersonByEmail(ctx context.Context, email string) (*Person, error) {
	const query = `
SELECT ` + personColumns + `
FROM persons
WHERE lower(email) = lower($1)`

	row := db.Instance().QueryRowContext(ctx, query, email)
	return getPersonByRow(row)
}

// GetPersonByEmailAndPassword will return a person if the email and password are valid
func GetPersonByEmailAndPassword(ctx context.Context, email, password string) (*Person, error) {
	person, err := GetPersonByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			// prevent timing attacks
			_ = argon2id.Compare("", "")
			return nil, ErrInvalidEmailOrPassword
		}

		return nil, err
	}

	if err := person.ValidatePassword(password); err != nil {
		return nil, err
	}

	if person.Status == PersonStatusCreated {
		return nil, ErrAccountNotVerified
	}

	if person.Status != PersonStatusVerified {
		return nil, ErrInvalidEmailOrPassword
	}

	return person, nil
}

// CreatePerson creates a new person with the starting balance
func CreatePerson(ctx context.Context, email, displayName, password, remoteAddr string, balance int) (*Person, error) {
	hashPassword, err := argon2id.DefaultHashPassword(password)
	if err != nil {
		return nil, err
	}

	const query = `
INSERT INTO persons (email, display_name, password_hash, remote_addr, balance)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + personColumns

	row := db.Instance().QueryRowContext(ctx, query, email, displayName, hashPassword, remoteAddr, balance)
	person, err := getPersonByRow(row)
	if err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == pqDuplicateKeyErrorCode {
			return nil, ErrDuplicateKey
		}

		return nil, err
	}

	return person, nil
}

// LastPersonCreatedAt returns the last time a person was created by the remote address.
// If no person has been created yet, this returns a nil error and a zero time.
func LastPersonCreatedAt(ctx context.Context, remoteAddr string) (time.Time, error) {
	const query = `
SELECT MAX(created)
FROM persons
WHERE remote_addr = $1`

	var created sql.NullTime
	if err := db.Instance().QueryRowContext(ctx, query, remoteAddr).Scan(&created); err != nil {
		return time.Time{}, err
	}

	return created.Time, nil
}

// Save will persist any changes made to the person to the database
func (p *Person) Save(ctx context.Context) error {
	const query = `
UPDATE persons
SET email = $1,
    password_hash = $2,
    display_name = $3,
    is_site_admin = $4,
    status = $5,
    avatar_hash = $6,
    balance = $7,
    updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $8`

	_, err := db.Instance().ExecContext(ctx, query, p.Email, p.passwordHash, p.DisplayName, p.IsSiteAdmin, p.Status, p.AvatarHash, p.Balance, p.ID)
	return err
}

// ValidatePassword will validate the person's password.
// Returns nil if the password is valid.
func (p *Person) ValidatePassword(password string) error {
	if err := argon2id.Compare(p.passwordHash, password); err != nil {
		return ErrInvalidEmailOrPassword
	}

	return nil
}

// SetPassword will set a new password on the person instance.
// Important: you must call Save() to persist this change.
func (p *Person) SetPassword(password string) error {
	newHash, err := argon2id.DefaultHashPassword(password)
	if err != nil {
		return err
	}

	p.passwordHash = newHash
	return nil
}

// SetIsSiteAdmin updates the person's site-admin flag
func (p *Person) SetIsSiteAdmin(ctx context.Context, isSiteAdmin bool) error {
	const query = `
UPDATE persons
SET is_site_admin = $1,
    updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $2`

	if _, err := db.Instance().ExecContext(ctx, query, isSiteAdmin, p.ID); err != nil {
		return err
	}

	p.IsSiteAdmin = isSiteAdmin
	return nil
}

// ApplyAdjustments applies a game's settlement to the durable balances in a
// single transaction. Adjustments are deltas keyed by person ID.
func ApplyAdjustments(ctx context.Context, adjustments map[int64]int) error {
	tx, err := db.Instance().BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	const query = `
UPDATE persons
SET balance = balance + $1,
    updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $2`

	for personID, delta := range adjustments {
		if delta == 0 {
			continue
		}

		if _, err := tx.ExecContext(ctx, query, delta, personID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetPersons returns a page of persons ordered by ID
func GetPersons(ctx context.Context, offset, limit int64) ([]*Person, error) {
	const query = `
SELECT ` + personColumns + `
FROM persons
ORDER BY id
OFFSET $1 LIMIT $2`

	rows, err := db.Instance().QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	persons := make([]*Person, 0)
	for rows.Next() {
		person, err := getPersonByRow(rows)
		if err != nil {
			return nil, err
		}

		persons = append(persons, person)
	}

	return persons, rows.Err()
}
