package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/arkade-os/xreserve/internal/core/application"
	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/domain/wire"
	"github.com/urfave/cli/v2"
)

var (
	startCmd = &cli.Command{
		Name:   "start",
		Usage:  "Run the daemon, executing inbound programs until interrupted",
		Action: startAction,
	}
	registerCmd = &cli.Command{
		Name:   "register",
		Usage:  "Map a local asset id to its canonical location",
		Flags:  []cli.Flag{callerFlag, localIdFlag(true), locationFlag(true)},
		Action: registerAction,
	}
	unregisterCmd = &cli.Command{
		Name:   "unregister",
		Usage:  "Remove a local asset id from the registry",
		Flags:  []cli.Flag{callerFlag, localIdFlag(true)},
		Action: unregisterAction,
	}
	assetsCmd = &cli.Command{
		Name:   "assets",
		Usage:  "List the registered assets",
		Action: assetsAction,
	}
	resolveCmd = &cli.Command{
		Name:   "resolve",
		Usage:  "Resolve a local asset id or a location, and the reserve of the location",
		Flags:  []cli.Flag{localIdFlag(false), locationFlag(false)},
		Action: resolveAction,
	}
	transferCmd = &cli.Command{
		Name:  "transfer",
		Usage: "Debit the caller and send a reserve transfer to another chain",
		Flags: []cli.Flag{
			callerFlag, destFlag, beneficiaryFlag, amountFlag, feeFlag, assetFlag,
		},
		Action: transferAction,
	}
	depositCmd = &cli.Command{
		Name:   "deposit",
		Usage:  "Credit a local account",
		Flags:  []cli.Flag{accountFlag, currencyFlag, amountFlag},
		Action: depositAction,
	}
	balanceCmd = &cli.Command{
		Name:   "balance",
		Usage:  "Show the balances of a local account",
		Flags:  []cli.Flag{accountFlag},
		Action: balanceAction,
	}
	trapsCmd = &cli.Command{
		Name:   "traps",
		Usage:  "List the trapped asset records",
		Action: trapsAction,
	}
	setVersionCmd = &cli.Command{
		Name:   "set-version",
		Usage:  "Record the protocol version a destination supports",
		Flags:  []cli.Flag{destFlag, versionFlag},
		Action: setVersionAction,
	}
	executeCmd = &cli.Command{
		Name:   "execute",
		Usage:  "Execute a program received from another chain",
		Flags:  []cli.Flag{originFlag, programFlag},
		Action: executeAction,
	}
	outboxCmd = &cli.Command{
		Name:   "outbox",
		Usage:  "List the messages enqueued for a destination (postgres transport only)",
		Flags:  []cli.Flag{destFlag},
		Action: outboxAction,
	}
)

func registerAction(ctx *cli.Context) error {
	location, err := parseLocationFlag(ctx, locationFlagName)
	if err != nil {
		return err
	}
	localId := uint32(ctx.Uint(idFlagName))

	return withService(ctx, func(svc application.Service) error {
		if err := svc.RegisterAsset(
			ctx.Context, ctx.String(callerFlagName), localId, location,
		); err != nil {
			return err
		}
		return printJSON(map[string]string{
			"id":       strconv.FormatUint(uint64(localId), 10),
			"location": location.String(),
		})
	})
}

func unregisterAction(ctx *cli.Context) error {
	localId := uint32(ctx.Uint(idFlagName))

	return withService(ctx, func(svc application.Service) error {
		return svc.UnregisterAsset(ctx.Context, ctx.String(callerFlagName), localId)
	})
}

func assetsAction(ctx *cli.Context) error {
	return withService(ctx, func(svc application.Service) error {
		entries, err := svc.ListAssets(ctx.Context)
		if err != nil {
			return err
		}
		assets := make([]map[string]string, 0, len(entries))
		for _, entry := range entries {
			assets = append(assets, map[string]string{
				"id":       strconv.FormatUint(uint64(entry.LocalId), 10),
				"location": entry.Location.String(),
			})
		}
		return printJSON(assets)
	})
}

func resolveAction(ctx *cli.Context) error {
	if ctx.IsSet(idFlagName) == ctx.IsSet(locationFlagName) {
		return fmt.Errorf("exactly one of --%s and --%s is required", idFlagName, locationFlagName)
	}

	return withService(ctx, func(svc application.Service) error {
		var location domain.Location
		var localId *uint32
		if ctx.IsSet(idFlagName) {
			id := uint32(ctx.Uint(idFlagName))
			loc, err := svc.ResolveLocation(ctx.Context, id)
			if err != nil {
				return err
			}
			localId = &id
			location = *loc
		} else {
			loc, err := parseLocationFlag(ctx, locationFlagName)
			if err != nil {
				return err
			}
			id, txErr := svc.ResolveId(ctx.Context, loc)
			if txErr != nil {
				return txErr
			}
			localId = id
			location = loc
		}

		resp := map[string]string{"location": location.String()}
		if localId != nil {
			resp["id"] = strconv.FormatUint(uint64(*localId), 10)
		}
		if reserve, ok := domain.ChainPart(location); ok {
			resp["reserve"] = reserve.String()
		}
		return printJSON(resp)
	})
}

func transferAction(ctx *cli.Context) error {
	dest, err := parseLocationFlag(ctx, destFlagName)
	if err != nil {
		return err
	}
	beneficiary, err := parseLocationFlag(ctx, beneficiaryFlagName)
	if err != nil {
		return err
	}
	req := application.TransferRequest{
		Caller:      ctx.String(callerFlagName),
		Destination: domain.NewVersionedLocation(dest),
		Beneficiary: domain.NewVersionedLocation(beneficiary),
		Amount:      ctx.Uint64(amountFlagName),
		Fee:         ctx.Uint64(feeFlagName),
	}
	if ctx.IsSet(assetFlagName) {
		assetLocation, err := parseLocationFlag(ctx, assetFlagName)
		if err != nil {
			return err
		}
		assets, err := domain.NewAssets(
			domain.NewFungibleAsset(assetLocation, req.Amount+req.Fee),
		)
		if err != nil {
			return err
		}
		versioned := domain.NewVersionedAssets(assets)
		req.Assets = &versioned
	}

	return withService(ctx, func(svc application.Service) error {
		result, err := svc.Transfer(ctx.Context, req)
		if err != nil {
			return err
		}
		payload, encErr := wire.Marshal(result.Program)
		if encErr != nil {
			return encErr
		}
		return printJSON(map[string]string{
			"message_id": result.MessageId,
			"currency":   result.Currency,
			"debited":    strconv.FormatUint(result.Debited, 10),
			"version":    strconv.Itoa(int(result.Program.Version)),
			"program":    hex.EncodeToString(payload),
		})
	})
}

func depositAction(ctx *cli.Context) error {
	account, err := domain.ParseAccount(ctx.String(accountFlagName))
	if err != nil {
		return err
	}
	currency := currencyOf(ctx)

	return withService(ctx, func(svc application.Service) error {
		if err := svc.Deposit(ctx.Context, account, currency, ctx.Uint64(amountFlagName)); err != nil {
			return err
		}
		balances, err := svc.GetBalances(ctx.Context, account)
		if err != nil {
			return err
		}
		return printJSON(balances)
	})
}

func balanceAction(ctx *cli.Context) error {
	account, err := domain.ParseAccount(ctx.String(accountFlagName))
	if err != nil {
		return err
	}

	return withService(ctx, func(svc application.Service) error {
		balances, err := svc.GetBalances(ctx.Context, account)
		if err != nil {
			return err
		}
		return printJSON(balances)
	})
}

func trapsAction(ctx *cli.Context) error {
	return withService(ctx, func(svc application.Service) error {
		records, err := svc.TrappedAssets(ctx.Context)
		if err != nil {
			return err
		}
		traps := make([]map[string]interface{}, 0, len(records))
		for _, record := range records {
			assets := make([]string, 0, len(record.Assets))
			for _, asset := range record.Assets {
				assets = append(assets, asset.String())
			}
			traps = append(traps, map[string]interface{}{
				"hash":       record.Hash,
				"origin":     record.Origin.String(),
				"assets":     assets,
				"count":      record.Count,
				"updated_at": record.UpdatedAt,
			})
		}
		return printJSON(traps)
	})
}

func setVersionAction(ctx *cli.Context) error {
	dest, err := parseLocationFlag(ctx, destFlagName)
	if err != nil {
		return err
	}
	version := domain.Version(ctx.Uint(versionFlagName))

	return withService(ctx, func(svc application.Service) error {
		return svc.SetDestinationVersion(ctx.Context, dest, version)
	})
}

func executeAction(ctx *cli.Context) error {
	origin, err := parseLocationFlag(ctx, originFlagName)
	if err != nil {
		return err
	}
	program, err := parseProgram(ctx.String(programFlagName))
	if err != nil {
		return err
	}

	return withService(ctx, func(svc application.Service) error {
		outcome := svc.Execute(ctx.Context, origin, program)
		resp := map[string]interface{}{
			"weight":   outcome.Weight,
			"executed": outcome.Executed,
		}
		if outcome.Topic != nil {
			resp["topic"] = hex.EncodeToString(outcome.Topic[:])
		}
		if outcome.Trapped != nil {
			resp["trapped"] = outcome.Trapped.Hash
		}
		if outcome.Error != nil {
			resp["error"] = outcome.Error.Error()
			resp["code"] = outcome.Error.CodeName()
		}
		return printJSON(resp)
	})
}

func outboxAction(ctx *cli.Context) error {
	dest, err := parseLocationFlag(ctx, destFlagName)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	outbox, err := cfg.Outbox()
	if err != nil {
		return err
	}

	messages, err := outbox.Messages(ctx.Context, dest)
	if err != nil {
		return err
	}
	resp := make([]map[string]string, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, map[string]string{
			"id":      msg.Id,
			"version": strconv.Itoa(int(msg.Version)),
			"payload": hex.EncodeToString(msg.Payload),
		})
	}
	return printJSON(resp)
}
