package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agentconsole/go-session-keeper/internal/config"
	"github.com/agentconsole/go-session-keeper/liveness"
	"github.com/agentconsole/go-session-keeper/sessions/oidcrt"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running session keeper")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Session keeper stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runtime, err := oidcrt.New(ctx, c)
	if err != nil {
		return err
	}

	keeper, err := liveness.NewKeeper(c, runtime, signInNavigator(runtime), newUnixSignalSource())
	if err != nil {
		return err
	}
	defer keeper.Close()

	log.Info().
		Dur("refreshInterval", c.GetTokenRefreshInterval()).
		Dur("fallbackTimeout", c.GetFallbackInactivityTimeout()).
		Msg("Session keeper running; SIGUSR1 = blur, SIGUSR2 = focus")

	keeper.Run(ctx)
	return nil
}

// signInNavigator maps the replace-redirect to the daemon world: log where
// sign-in lives and surface the provider's authorization URL so the operator
// can re-authenticate.
func signInNavigator(runtime *oidcrt.Runtime) liveness.Navigator {
	return liveness.NavigatorFunc(func(path string) {
		log.Warn().
			Str("path", path).
			Str("authorizeURL", runtime.AuthCodeURL("")).
			Msg("Session requires sign-in")
	})
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
}
