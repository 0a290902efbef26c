// Command identityd runs a local stand-in for the HR backend's session
// endpoints so the gateway can be exercised without the real backend.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Ryavnn/Employee-Management-system/identity/devserver"
	"github.com/Ryavnn/Employee-Management-system/internal/config"
	"github.com/Ryavnn/Employee-Management-system/internal/logging"
)

func main() {
	c := config.New()
	logging.Setup(c.GetEnv(), nil)

	users := devserver.NewInMemoryUsers()
	if path := c.GetDevUsersFile(); path != "" {
		n, err := devserver.LoadSeedFile(users, path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load seed users")
		}
		log.Info().Int("users", n).Str("file", path).Msg("Seed users loaded")
	}
	if err := devserver.SeedDefault(users); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed default user")
	}

	srv := &http.Server{
		Addr:              c.GetDevPort(),
		Handler:           devserver.New(users, []byte(c.GetDevJWTSecret()), c.GetDevTokenTTL()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Identity backend listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Identity backend failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Err(err).Msg("Shutdown failed")
	}
}
