package mux

import (
	"time"

	grecaptcha "github.com/ezzarghili/recaptcha-go"
	"github.com/sirupsen/logrus"

	appconfig "drawpoker-server/internal/config"
)

type recaptcha interface {
	// Verify will verify the token is valid
	Verify(token string) error
}

// noVerify accepts every token. Used when no recaptcha secret is configured.
type noVerify struct{}

func (noVerify) Verify(string) error { return nil }

func newRecaptcha() recaptcha {
	secret := appconfig.Instance().RecaptchaSecret
	if secret == "" {
		logrus.Warn("no recaptcha secret configured; registration is unprotected")
		return noVerify{}
	}

	captcha, err := grecaptcha.NewReCAPTCHA(secret, grecaptcha.V3, 10*time.Second)
	if err != nil {
		logrus.WithError(err).Fatal("could not load recaptcha")
	}

	return &captcha
}
