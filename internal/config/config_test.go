package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	clear1 := setEnv("DP_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := setEnv("DP_JWT_PRIVATE_KEY", "private2.key")
	defer clear2()

	a := assert.New(t)
	assert.NoError(t, Load())
	cfg := Instance()
	a.Equal(45, cfg.IdleTimeout)
	a.Equal("public.pem", cfg.JWT.PublicKey)
	a.Equal("private2.key", cfg.JWT.PrivateKey)

	// ensure that it's only loaded once
	_ = os.Setenv("DP_JWT_PRIVATE_KEY", "private3.key")
	// ensure we aren't using a pointer
	cfg.JWT.PrivateKey = "bad"
	cfg = Instance()
	a.Equal("private2.key", cfg.JWT.PrivateKey)
}

func TestDefaults(t *testing.T) {
	assert.NoError(t, Load())
	cfg := Instance()
	assert.Equal(t, 120, cfg.IdleTimeout)
	assert.Equal(t, 1000, cfg.StartingBalance)
}

func setEnv(key, val string) func() {
	orig := os.Getenv(key)
	_ = os.Setenv(key, val)
	return func() {
		if orig == "" {
			_ = os.Unsetenv(key)
		} else {
			_ = os.Setenv(key, orig)
		}
	}
}
