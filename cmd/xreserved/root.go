package main

import (
	"strings"

	"github.com/arkade-os/xreserve/internal/config"
	"github.com/spf13/viper"
)

// EnvReplacer replaces `-` to `_`.
// This is used to map flag like `--my-param` to environment variables like `MY_PARAM`.
var envReplacer = strings.NewReplacer("-", "_")

func init() {
	viper.SetEnvPrefix("XRESERVE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(envReplacer)

	// show the effective datadir in --help when it comes from the env
	if datadir := viper.GetString(config.Datadir.Name); datadir != "" {
		config.Datadir.Value = datadir
	}
}
