package main

import (
	"github.com/arkade-os/xreserve/internal/infrastructure/chainfile"
	"github.com/urfave/cli/v2"
)

const (
	callerFlagName      = "caller"
	idFlagName          = "id"
	locationFlagName    = "location"
	destFlagName        = "dest"
	beneficiaryFlagName = "beneficiary"
	amountFlagName      = "amount"
	feeFlagName         = "fee"
	assetFlagName       = "asset"
	accountFlagName     = "account"
	currencyFlagName    = "currency"
	versionFlagName     = "version"
	originFlagName      = "origin"
	programFlagName     = "program"
)

var (
	callerFlag = &cli.StringFlag{
		Name:  callerFlagName,
		Usage: "the account on whose behalf the command runs",
		Value: chainfile.RootCaller,
	}
	localIdFlag = func(required bool) *cli.UintFlag {
		return &cli.UintFlag{
			Name:     idFlagName,
			Usage:    "local id of the asset",
			Required: required,
		}
	}
	locationFlag = func(required bool) *cli.StringFlag {
		return &cli.StringFlag{
			Name:     locationFlagName,
			Usage:    "canonical location of the asset, e.g. '../Parachain(1000)/GeneralIndex(1984)'",
			Required: required,
		}
	}
	destFlag = &cli.StringFlag{
		Name:     destFlagName,
		Usage:    "destination chain, e.g. '../Parachain(2000)'",
		Required: true,
	}
	beneficiaryFlag = &cli.StringFlag{
		Name:     beneficiaryFlagName,
		Usage:    "beneficiary as seen from the destination, e.g. 'AccountId32(0x...)'",
		Required: true,
	}
	amountFlag = &cli.Uint64Flag{
		Name:     amountFlagName,
		Usage:    "amount to move",
		Required: true,
	}
	feeFlag = &cli.Uint64Flag{
		Name:  feeFlagName,
		Usage: "amount reserved to buy execution on the destination",
	}
	assetFlag = &cli.StringFlag{
		Name:  assetFlagName,
		Usage: "location of a registered asset to transfer, the native asset if omitted",
	}
	accountFlag = &cli.StringFlag{
		Name:     accountFlagName,
		Usage:    "hex account key or sovereign account (parent, sibling:<id>, child:<id>)",
		Required: true,
	}
	currencyFlag = &cli.UintFlag{
		Name:  currencyFlagName,
		Usage: "local id of a registered asset, the native currency if omitted",
	}
	versionFlag = &cli.UintFlag{
		Name:     versionFlagName,
		Usage:    "protocol version supported by the destination",
		Required: true,
	}
	originFlag = &cli.StringFlag{
		Name:     originFlagName,
		Usage:    "origin of the program, e.g. '../Parachain(1000)'",
		Required: true,
	}
	programFlag = &cli.StringFlag{
		Name:     programFlagName,
		Usage:    "hex encoded versioned program",
		Required: true,
	}
)
