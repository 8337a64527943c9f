package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/url-submitter/internal/app"
	"github.com/MikhailRaia/url-submitter/internal/config"
	"github.com/MikhailRaia/url-submitter/internal/logger"
	"github.com/MikhailRaia/url-submitter/internal/notify"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// In one-shot mode stdout carries the notifications, so logs go to stderr.
	logOut := os.Stdout
	if len(cfg.URLs) > 0 {
		logOut = os.Stderr
	}
	if err := logger.InitLogger(logOut, cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var listeners []notify.Listener
	if len(cfg.URLs) > 0 {
		listeners = append(listeners, notify.WriterListener{W: os.Stdout})
	}

	application, err := app.NewApp(cfg, listeners...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build application")
	}

	if len(cfg.URLs) > 0 {
		if err := application.SubmitAll(ctx, cfg.URLs, os.Stdout); err != nil {
			log.Error().Err(err).Msg("Submission run finished with failures")
			stop()
			os.Exit(1)
		}
		return
	}

	if err := application.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error running submission page")
	}
}
