package util

import (
	"github.com/google/uuid"
)

// RandomEmail returns a unique email address for use in tests
func RandomEmail() string {
	return "person-" + uuid.New().String() + "@example.test"
}
