package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-gateway/internal/config"
	"github.com/jrsteele09/go-session-gateway/provider"
	"github.com/jrsteele09/go-session-gateway/refresh"
	"github.com/jrsteele09/go-session-gateway/server"
	"github.com/jrsteele09/go-session-gateway/server/authflowrepo"
	"github.com/jrsteele09/go-session-gateway/session"
	"github.com/jrsteele09/go-session-gateway/tokenstore"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load() // optional .env for local development

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	handler, err := buildGateway(c)
	if err != nil {
		return errors.Wrap(err, "[run]")
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// buildGateway wires the token store, provider client, refresh coordinator,
// session manager and HTTP server together.
func buildGateway(c config.Config) (*server.Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tokenRepo := newTokenRepo(c)

	providerClient, err := provider.NewOIDCClient(ctx, c, c.GetBaseURL()+server.RouteCallback)
	if err != nil {
		return nil, errors.Wrap(err, "[buildGateway] provider discovery")
	}

	coordinator, err := refresh.NewCoordinator(providerClient, tokenRepo, c)
	if err != nil {
		return nil, errors.Wrap(err, "[buildGateway]")
	}

	sessionManager, err := session.NewManager(session.NewInMemoryRepo(), tokenRepo, coordinator, c)
	if err != nil {
		return nil, errors.Wrap(err, "[buildGateway]")
	}

	return server.New(c, sessionManager, providerClient, authflowrepo.NewInMemoryRepo())
}

// newTokenRepo picks Redis when an address is configured, otherwise the
// in-memory store. Single-instance deployments need no Redis at all.
func newTokenRepo(c config.Config) tokenstore.Repo {
	redisAddr := c.GetRedisAddr()
	if redisAddr == "" {
		log.Info().Msg("token store: in-memory")
		return tokenstore.NewInMemoryRepo(c.GetStoreKeySecret())
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	log.Info().Str("addr", redisAddr).Msg("token store: redis")
	return tokenstore.NewRedisRepo(client, c.GetStoreKeySecret(), c.GetMaxSessionAge())
}

func setupLogging(c config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if c.GetEnv() == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(httpServer *http.Server) error {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
