package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arkade-os/xreserve/internal/config"
	"github.com/arkade-os/xreserve/internal/telemetry"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Version will be set during build time
var Version string

func main() {
	app := cli.NewApp()
	app.Name = "xreserved"
	app.Version = Version
	app.Usage = "cross-chain reserve registry and transfer daemon"
	app.Flags = config.Flags
	app.Action = startAction
	app.Commands = cli.Commands{
		startCmd,
		registerCmd,
		unregisterCmd,
		assetsCmd,
		resolveCmd,
		transferCmd,
		depositCmd,
		balanceCmd,
		trapsCmd,
		setVersionCmd,
		executeCmd,
		outboxCmd,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func startAction(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	if cfg.OtelCollectorEndpoint != "" {
		shutdown, err := telemetry.InitOtelSDK(
			ctx.Context, cfg.OtelCollectorEndpoint,
			time.Duration(cfg.OtelPushInterval)*time.Second, Version,
		)
		if err != nil {
			return fmt.Errorf("failed to init telemetry: %s", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("failed to shutdown telemetry")
			}
		}()
	}

	svc, err := cfg.AppService()
	if err != nil {
		return fmt.Errorf("failed to create service: %s", err)
	}

	log.Debugf("xreserved config: %s", cfg)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		return fmt.Errorf("failed to start service: %s", err)
	}
	log.Infof("xreserved started with %s transport", cfg.TransportType)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(
		sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, os.Interrupt,
	)
	<-sigChan

	log.Info("shutting down service...")
	svc.Stop()
	return nil
}
