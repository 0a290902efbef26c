package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/guard"
	"github.com/Ryavnn/Employee-Management-system/identity"
	"github.com/Ryavnn/Employee-Management-system/internal/config"
	"github.com/Ryavnn/Employee-Management-system/internal/logging"
	"github.com/Ryavnn/Employee-Management-system/server"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetEnv(), nil)
	displayAppname(c.GetAppName())

	ctx := context.Background()
	store, closeStore, err := newCredentialStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	ids, err := newIdentityService(ctx, c)
	if err != nil {
		return err
	}

	backend := identity.NewHTTPClient(c.GetIdentityBaseURL())
	g := guard.New(store, ids,
		guard.WithTimeout(c.GetGuardTimeout()),
		guard.WithObserver(auditDecision),
	)

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           server.New(c, store, backend, g),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func newCredentialStore(ctx context.Context, c config.Config) (credentials.Store, func(), error) {
	switch c.GetCredentialStore() {
	case config.StoreMemory:
		log.Info().Msg("Using in-memory credential store")
		return credentials.NewInMemoryStore(c.GetCredentialMaxAge()), func() {}, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
		})
		if err := credentials.Ping(ctx, client); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("[main newCredentialStore] redis at %s: %w", c.GetRedisAddr(), err)
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis credential store")
		return credentials.NewRedisStore(client, c.GetCredentialMaxAge()), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("[main newCredentialStore] unknown CREDENTIAL_STORE %q", c.GetCredentialStore())
	}
}

func newIdentityService(ctx context.Context, c config.Config) (identity.Service, error) {
	switch c.GetIdentityMode() {
	case config.IdentityModeHTTP:
		log.Info().Str("base_url", c.GetIdentityBaseURL()).Msg("Validating tokens against backend")
		return identity.NewHTTPClient(c.GetIdentityBaseURL()), nil
	case config.IdentityModeOIDC:
		svc, err := identity.NewOIDCService(ctx, c.GetOIDCIssuer(), c.GetOIDCRoleClaim(), nil)
		if err != nil {
			return nil, err
		}
		log.Info().Str("issuer", c.GetOIDCIssuer()).Msg("Validating tokens against OpenID provider")
		return svc, nil
	default:
		return nil, fmt.Errorf("[main newIdentityService] unknown IDENTITY_MODE %q", c.GetIdentityMode())
	}
}

// auditDecision records denied access at warn level
func auditDecision(d guard.Decision) {
	if d.Outcome != guard.Forbidden {
		return
	}
	log.Warn().
		Str("required_role", d.Required.String()).
		Str("role", d.Role.String()).
		Msg("Access forbidden")
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
