package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arkade-os/xreserve/internal/config"
	"github.com/arkade-os/xreserve/internal/core/application"
	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/domain/wire"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// withService runs fn against a service built from the global flags and
// releases its stores afterwards.
func withService(ctx *cli.Context, fn func(application.Service) error) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	svc, err := cfg.AppService()
	if err != nil {
		return fmt.Errorf("failed to create service: %s", err)
	}
	defer svc.Stop()

	return fn(svc)
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}
	log.SetLevel(log.Level(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}
	return cfg, nil
}

func parseLocationFlag(ctx *cli.Context, name string) (domain.Location, error) {
	loc, err := domain.ParseLocation(ctx.String(name))
	if err != nil {
		return domain.Location{}, fmt.Errorf("invalid --%s: %s", name, err)
	}
	return loc, nil
}

func parseProgram(s string) (domain.VersionedProgram, error) {
	buf, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return domain.VersionedProgram{}, fmt.Errorf("invalid program hex: %s", err)
	}
	var program domain.VersionedProgram
	if err := wire.Unmarshal(buf, &program); err != nil {
		return domain.VersionedProgram{}, fmt.Errorf("invalid program: %s", err)
	}
	return program, nil
}

func currencyOf(ctx *cli.Context) string {
	if !ctx.IsSet(currencyFlagName) {
		return domain.NativeCurrency
	}
	return domain.RegisteredCurrency(uint32(ctx.Uint(currencyFlagName)))
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonBytes))
	return nil
}
