package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"drawpoker-server/internal/config"
	"drawpoker-server/internal/jwt"
	"drawpoker-server/internal/mux"
	"drawpoker-server/internal/rng"
	"drawpoker-server/pkg/account"
	"drawpoker-server/pkg/db"
	"drawpoker-server/pkg/engine"
	"drawpoker-server/pkg/snapshot"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const sweepPeriod = time.Second * 15

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	// fail fast
	jwt.LoadKeys()

	// run the db migrations
	db.Migrate()

	eng := engine.New(logrus.StandardLogger())
	eng.SetSeeder(rng.Crypto{}.Seed)

	var snaps *snapshot.Store
	if url := config.Instance().RedisURL; url != "" {
		cfg := snapshot.DefaultConfig()
		cfg.URL = url

		store, err := snapshot.New(cfg, logrus.StandardLogger())
		if err != nil {
			logrus.WithError(err).Warn("could not connect to redis; running without snapshots")
		} else {
			snaps = store
			eng.SetCache(store)
			defer store.Close()
		}
	}

	go idleSweeper(eng)

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, eng, snaps))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithField("addr", srv.Addr).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

// idleSweeper forces idle games forward so one absent player cannot park a
// table forever
func idleSweeper(eng *engine.Engine) {
	idleFor := time.Duration(config.Instance().IdleTimeout) * time.Second
	if idleFor <= 0 {
		return
	}

	ticker := time.NewTicker(sweepPeriod)
	defer ticker.Stop()

	for range ticker.C {
		for _, gameID := range eng.IdleGames(idleFor) {
			log := logrus.WithField("game", gameID)

			result, err := eng.ForceAdvance(gameID)
			if err != nil {
				log.WithError(err).Error("could not force-advance idle game")
				continue
			}

			log.WithField("state", result.State.String()).Info("forced idle game forward")

			if result.Settlement != nil {
				if err := account.ApplyAdjustments(context.Background(), result.Settlement.BalanceAdjustments); err != nil {
					log.WithError(err).Error("could not persist settlement")
				}
			}
		}
	}
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
