package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	return &Config{
		Datadir:                t.TempDir(),
		DbType:                 "badger",
		DbDir:                  t.TempDir(),
		LiveStoreType:          "inmemory",
		TransportType:          "gochannel",
		SchedulerType:          "gocron",
		ChainId:                1000,
		ChainName:              defaultChainName,
		NativeLocation:         defaultNativeLocation,
		VersionRefreshInterval: int64(defaultVersionRefreshInterval),
		TrapMinBalance:         uint64(defaultTrapMinBalance),
		TrapLookupWeight:       uint64(defaultTrapLookupWeight),
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := validConfig(t)
		require.NoError(t, cfg.Validate())
		t.Cleanup(cfg.repo.Close)

		require.Nil(t, cfg.alerts)

		svc, err := cfg.AppService()
		require.NoError(t, err)
		require.NotNil(t, svc)

		again, err := cfg.AppService()
		require.NoError(t, err)
		require.Equal(t, svc, again)

		_, err = cfg.Outbox()
		require.Error(t, err)
	})

	t.Run("with alerts", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.AlertManagerURL = "http://localhost:9093"
		require.NoError(t, cfg.Validate())
		t.Cleanup(cfg.repo.Close)
		require.NotNil(t, cfg.alerts)
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name     string
			mutate   func(*Config)
			errorMsg string
		}{
			{
				name:     "db type",
				mutate:   func(c *Config) { c.DbType = "mysql" },
				errorMsg: "db type not supported",
			},
			{
				name:     "scheduler type",
				mutate:   func(c *Config) { c.SchedulerType = "block" },
				errorMsg: "scheduler type not supported",
			},
			{
				name:     "live store type",
				mutate:   func(c *Config) { c.LiveStoreType = "memcached" },
				errorMsg: "live store type not supported",
			},
			{
				name:     "transport type",
				mutate:   func(c *Config) { c.TransportType = "nats" },
				errorMsg: "transport type not supported",
			},
			{
				name:     "version refresh interval",
				mutate:   func(c *Config) { c.VersionRefreshInterval = 0 },
				errorMsg: "invalid version refresh interval",
			},
			{
				name:     "trap min balance",
				mutate:   func(c *Config) { c.TrapMinBalance = 0 },
				errorMsg: "trap min balance",
			},
			{
				name:     "native location",
				mutate:   func(c *Config) { c.NativeLocation = "../Nowhere(1)" },
				errorMsg: "invalid native location",
			},
			{
				name:     "chain file",
				mutate:   func(c *Config) { c.ChainFile = "/does/not/exist.toml" },
				errorMsg: "",
			},
		}

		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				cfg := validConfig(t)
				f.mutate(cfg)
				err := cfg.Validate()
				if cfg.repo != nil {
					t.Cleanup(cfg.repo.Close)
				}
				require.Error(t, err)
				require.ErrorContains(t, err, f.errorMsg)
			})
		}
	})
}

func TestSupportedType(t *testing.T) {
	require.True(t, supportedDbs.supports("sqlite"))
	require.False(t, supportedDbs.supports(""))
	require.Contains(t, supportedTransports.String(), "kafka")
}
