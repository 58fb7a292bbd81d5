package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arkade-os/xreserve/internal/core/application"
	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	alertsmanager "github.com/arkade-os/xreserve/internal/infrastructure/alertsmanager"
	"github.com/arkade-os/xreserve/internal/infrastructure/chainfile"
	"github.com/arkade-os/xreserve/internal/infrastructure/db"
	pgdb "github.com/arkade-os/xreserve/internal/infrastructure/db/postgres"
	inmemorylivestore "github.com/arkade-os/xreserve/internal/infrastructure/live-store/inmemory"
	redislivestore "github.com/arkade-os/xreserve/internal/infrastructure/live-store/redis"
	timescheduler "github.com/arkade-os/xreserve/internal/infrastructure/scheduler/gocron"
	kafkatransport "github.com/arkade-os/xreserve/internal/infrastructure/transport/kafka"
	watermilltransport "github.com/arkade-os/xreserve/internal/infrastructure/transport/watermill"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	supportedDbs = supportedType{
		"badger":   {},
		"sqlite":   {},
		"postgres": {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
	}
	supportedLiveStores = supportedType{
		"inmemory": {},
		"redis":    {},
	}
	supportedTransports = supportedType{
		"gochannel": {},
		"postgres":  {},
		"kafka":     {},
	}
)

type Config struct {
	Datadir  string
	LogLevel int

	DbType              string
	DbDir               string
	DbUrl               string
	LiveStoreType       string
	RedisUrl            string
	RedisTxNumOfRetries int
	TransportType       string
	TransportDbUrl      string
	KafkaBrokers        string
	SchedulerType       string
	ChainFile           string

	ChainId                uint32
	ChainName              string
	NativeLocation         string
	VersionRefreshInterval int64

	TrapMinBalance   uint64
	TrapNativeRate   uint64
	TrapFungibleRate uint64
	TrapDefaultRate  uint64
	TrapLookupWeight uint64

	OtelCollectorEndpoint string
	OtelPushInterval      int64
	AlertManagerURL       string

	repo      ports.RepoManager
	svc       application.Service
	liveStore ports.LiveStore
	transport ports.Transport
	inbox     ports.Inbox
	outbox    *watermilltransport.Outbox
	chainFile *chainfile.ChainFile
	scheduler ports.SchedulerService
	alerts    ports.Alerts
	nativeLoc domain.Location
}

func (c *Config) String() string {
	clone := *c
	if clone.DbUrl != "" {
		clone.DbUrl = "••••••"
	}
	if clone.TransportDbUrl != "" {
		clone.TransportDbUrl = "••••••"
	}
	json, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	defaultDatadir                = appDataDir("xreserved")
	defaultDbType                 = "badger"
	defaultLiveStoreType          = "inmemory"
	defaultTransportType          = "gochannel"
	defaultSchedulerType          = "gocron"
	defaultRedisTxNumOfRetries    = 10
	defaultLogLevel               = 4
	defaultChainName              = "xreserve"
	defaultNativeLocation         = "."
	defaultVersionRefreshInterval = 60 // seconds
	defaultOtelPushInterval       = 10 // seconds

	defaultTrapMinBalance   = 1
	defaultTrapNativeRate   = 0
	defaultTrapFungibleRate = 0
	defaultTrapDefaultRate  = 0
	defaultTrapLookupWeight = 25_000_000
)

// env returns a list of strings prefixed with `XRESERVE_`.
// This is used as a syntax sugar for defining env vars.
func env(values ...string) []string {
	envs := make([]string, len(values))

	for i, value := range values {
		envs[i] = fmt.Sprintf("XRESERVE_%s", value)
	}

	return envs
}

var (
	Datadir = &cli.StringFlag{
		Usage: "Directory to store data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}

	LogLevel = &cli.IntFlag{
		Usage: "Logging level (0-6, where 6 is trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}

	DbType = &cli.StringFlag{
		Usage: "Database type (postgres, sqlite, badger)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}

	DbUrl = &cli.StringFlag{
		Usage: "Postgres connection url if XRESERVE_DB_TYPE is set to postgres",
		Name:  "pg-db-url", EnvVars: env("PG_DB_URL"),
	}

	LiveStoreType = &cli.StringFlag{
		Usage: "Balances and version directory store type (inmemory, redis)",
		Name:  "live-store-type", EnvVars: env("LIVE_STORE_TYPE"),
		Value: defaultLiveStoreType,
	}

	RedisUrl = &cli.StringFlag{
		Usage: "Redis connection url if XRESERVE_LIVE_STORE_TYPE is set to redis",
		Name:  "redis-url", EnvVars: env("REDIS_URL"),
	}

	RedisTxNumOfRetries = &cli.IntFlag{
		Usage: "Maximum number of retries for redis write operations in case of conflicts",
		Name:  "redis-num-of-retries", EnvVars: env("REDIS_NUM_OF_RETRIES"),
		Value: defaultRedisTxNumOfRetries,
	}

	TransportType = &cli.StringFlag{
		Usage: "Message transport type (gochannel, postgres, kafka)",
		Name:  "transport-type", EnvVars: env("TRANSPORT_TYPE"),
		Value: defaultTransportType,
	}

	TransportDbUrl = &cli.StringFlag{
		Usage: "Postgres connection url if XRESERVE_TRANSPORT_TYPE is set to postgres",
		Name:  "pg-transport-db-url", EnvVars: env("PG_TRANSPORT_DB_URL"),
	}

	KafkaBrokers = &cli.StringFlag{
		Usage: "Comma separated kafka brokers if XRESERVE_TRANSPORT_TYPE is set to kafka",
		Name:  "kafka-brokers", EnvVars: env("KAFKA_BROKERS"),
	}

	SchedulerType = &cli.StringFlag{
		Usage: "Scheduler type (gocron)",
		Name:  "scheduler-type", EnvVars: env("SCHEDULER_TYPE"),
		Value: defaultSchedulerType,
	}

	ChainFile = &cli.StringFlag{
		Usage: "Path to the TOML file listing registry admins and destination versions",
		Name:  "chain-file", EnvVars: env("CHAIN_FILE"),
	}

	ChainId = &cli.UintFlag{
		Usage: "Id of the local chain under the shared parent",
		Name:  "chain-id", EnvVars: env("CHAIN_ID"),
	}

	ChainName = &cli.StringFlag{
		Usage: "Name of the local chain, used to label alerts",
		Name:  "chain-name", EnvVars: env("CHAIN_NAME"),
		Value: defaultChainName,
	}

	NativeLocation = &cli.StringFlag{
		Usage: "Location of the native asset, e.g. '.' or '../Parachain(1000)'",
		Name:  "native-location", EnvVars: env("NATIVE_LOCATION"),
		Value: defaultNativeLocation,
	}

	VersionRefreshInterval = &cli.Int64Flag{
		Usage: "How often (in seconds) destination versions are reloaded from the chain file",
		Name:  "version-refresh-interval", EnvVars: env("VERSION_REFRESH_INTERVAL"),
		Value: int64(defaultVersionRefreshInterval),
	}

	TrapMinBalance = &cli.Uint64Flag{
		Usage: "Minimum native amount worth trapping",
		Name:  "trap-min-balance", EnvVars: env("TRAP_MIN_BALANCE"),
		Value: uint64(defaultTrapMinBalance),
	}

	TrapNativeRate = &cli.Uint64Flag{
		Usage: "Amount charged on trapped native assets",
		Name:  "trap-native-rate", EnvVars: env("TRAP_NATIVE_RATE"),
		Value: uint64(defaultTrapNativeRate),
	}

	TrapFungibleRate = &cli.Uint64Flag{
		Usage: "Amount charged on trapped registered assets",
		Name:  "trap-fungible-rate", EnvVars: env("TRAP_FUNGIBLE_RATE"),
		Value: uint64(defaultTrapFungibleRate),
	}

	TrapDefaultRate = &cli.Uint64Flag{
		Usage: "Weight charged for trapping any other asset",
		Name:  "trap-default-rate", EnvVars: env("TRAP_DEFAULT_RATE"),
		Value: uint64(defaultTrapDefaultRate),
	}

	TrapLookupWeight = &cli.Uint64Flag{
		Usage: "Weight of a single asset registry lookup",
		Name:  "trap-lookup-weight", EnvVars: env("TRAP_LOOKUP_WEIGHT"),
		Value: uint64(defaultTrapLookupWeight),
	}

	OtelCollectorEndpoint = &cli.StringFlag{
		Usage: "OpenTelemetry collector endpoint",
		Name:  "otel-collector-endpoint", EnvVars: env("OTEL_COLLECTOR_ENDPOINT"),
	}

	OtelPushInterval = &cli.Int64Flag{
		Usage: "OpenTelemetry push interval in seconds",
		Name:  "otel-push-interval", EnvVars: env("OTEL_PUSH_INTERVAL"),
		Value: int64(defaultOtelPushInterval),
	}

	AlertManagerURL = &cli.StringFlag{
		Usage: "Alertmanager URL receiving trap and rollback alerts",
		Name:  "alert-manager-url", EnvVars: env("ALERT_MANAGER_URL"),
	}
)

var Flags = []cli.Flag{
	Datadir,
	LogLevel,
	DbType,
	DbUrl,
	LiveStoreType,
	RedisUrl,
	RedisTxNumOfRetries,
	TransportType,
	TransportDbUrl,
	KafkaBrokers,
	SchedulerType,
	ChainFile,
	ChainId,
	ChainName,
	NativeLocation,
	VersionRefreshInterval,
	TrapMinBalance,
	TrapNativeRate,
	TrapFungibleRate,
	TrapDefaultRate,
	TrapLookupWeight,
	OtelCollectorEndpoint,
	OtelPushInterval,
	AlertManagerURL,
}

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	dbPath := filepath.Join(c.String(Datadir.Name), "db")

	var dbUrl string
	if c.String(DbType.Name) == "postgres" {
		dbUrl = c.String(DbUrl.Name)
		if dbUrl == "" {
			return nil, fmt.Errorf("db type set to 'postgres' but db url is missing")
		}
	}

	var redisUrl string
	if c.String(LiveStoreType.Name) == "redis" {
		redisUrl = c.String(RedisUrl.Name)
		if redisUrl == "" {
			return nil, fmt.Errorf("live store type set to 'redis' but redis url is missing")
		}
	}

	var transportDbUrl, kafkaBrokers string
	switch c.String(TransportType.Name) {
	case "postgres":
		transportDbUrl = c.String(TransportDbUrl.Name)
		if transportDbUrl == "" {
			// fallback to the data store when it's postgres as well
			transportDbUrl = dbUrl
		}
		if transportDbUrl == "" {
			return nil, fmt.Errorf("transport type set to 'postgres' but transport db url is missing")
		}
	case "kafka":
		kafkaBrokers = c.String(KafkaBrokers.Name)
		if kafkaBrokers == "" {
			return nil, fmt.Errorf("transport type set to 'kafka' but kafka brokers are missing")
		}
	}

	return &Config{
		Datadir:                c.String(Datadir.Name),
		LogLevel:               c.Int(LogLevel.Name),
		DbType:                 c.String(DbType.Name),
		DbDir:                  dbPath,
		DbUrl:                  dbUrl,
		LiveStoreType:          c.String(LiveStoreType.Name),
		RedisUrl:               redisUrl,
		RedisTxNumOfRetries:    c.Int(RedisTxNumOfRetries.Name),
		TransportType:          c.String(TransportType.Name),
		TransportDbUrl:         transportDbUrl,
		KafkaBrokers:           kafkaBrokers,
		SchedulerType:          c.String(SchedulerType.Name),
		ChainFile:              c.String(ChainFile.Name),
		ChainId:                uint32(c.Uint(ChainId.Name)),
		ChainName:              c.String(ChainName.Name),
		NativeLocation:         c.String(NativeLocation.Name),
		VersionRefreshInterval: c.Int64(VersionRefreshInterval.Name),
		TrapMinBalance:         c.Uint64(TrapMinBalance.Name),
		TrapNativeRate:         c.Uint64(TrapNativeRate.Name),
		TrapFungibleRate:       c.Uint64(TrapFungibleRate.Name),
		TrapDefaultRate:        c.Uint64(TrapDefaultRate.Name),
		TrapLookupWeight:       c.Uint64(TrapLookupWeight.Name),
		OtelCollectorEndpoint:  c.String(OtelCollectorEndpoint.Name),
		OtelPushInterval:       c.Int64(OtelPushInterval.Name),
		AlertManagerURL:        c.String(AlertManagerURL.Name),
	}, nil
}

func initDatadir(c *cli.Context) error {
	datadir := c.String(Datadir.Name)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0o755)
	}
	return nil
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf(
			"scheduler type not supported, please select one of: %s",
			supportedSchedulers,
		)
	}
	if !supportedLiveStores.supports(c.LiveStoreType) {
		return fmt.Errorf(
			"live store type not supported, please select one of: %s",
			supportedLiveStores,
		)
	}
	if !supportedTransports.supports(c.TransportType) {
		return fmt.Errorf(
			"transport type not supported, please select one of: %s",
			supportedTransports,
		)
	}
	if c.VersionRefreshInterval < 1 {
		return fmt.Errorf("invalid version refresh interval, must be at least 1 second")
	}
	if c.TrapMinBalance == 0 {
		return fmt.Errorf("trap min balance must be greater than 0")
	}

	nativeLoc, err := domain.ParseLocation(c.NativeLocation)
	if err != nil {
		return fmt.Errorf("invalid native location: %w", err)
	}
	c.nativeLoc = nativeLoc

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.liveStoreService(); err != nil {
		return err
	}
	if err := c.transportService(); err != nil {
		return err
	}
	if err := c.chainFileService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	if err := c.alertsService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

// Outbox is only available with the postgres transport.
func (c *Config) Outbox() (*watermilltransport.Outbox, error) {
	if c.outbox == nil {
		return nil, fmt.Errorf("outbox not available with %s transport", c.TransportType)
	}
	return c.outbox, nil
}

func (c *Config) repoManager() error {
	var svc ports.RepoManager
	var err error
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		dataStoreConfig = []interface{}{c.DbDir}
	case "postgres":
		dataStoreConfig = []interface{}{c.DbUrl, true}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err = db.NewService(db.ServiceConfig{
		DataStoreType:   c.DbType,
		DataStoreConfig: dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) liveStoreService() error {
	var liveStoreSvc ports.LiveStore
	var err error
	switch c.LiveStoreType {
	case "inmemory":
		liveStoreSvc = inmemorylivestore.NewLiveStore()
	case "redis":
		redisOpts, err := redis.ParseURL(c.RedisUrl)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		liveStoreSvc = redislivestore.NewLiveStore(rdb, c.RedisTxNumOfRetries)
	default:
		err = fmt.Errorf("unknown liveStore type")
	}

	if err != nil {
		return err
	}

	c.liveStore = liveStoreSvc
	return nil
}

func (c *Config) transportService() error {
	switch c.TransportType {
	case "gochannel":
		pubsub := watermilltransport.NewGoChannel(watermilltransport.NewLogger())
		c.transport = watermilltransport.NewTransport(pubsub.Publisher, "")
		c.inbox = watermilltransport.NewInbox(pubsub.Publisher, pubsub.Subscriber, "")
	case "postgres":
		transportDb, err := pgdb.OpenDb(c.TransportDbUrl, true)
		if err != nil {
			return fmt.Errorf("failed to open transport db: %w", err)
		}
		pubsub, err := watermilltransport.NewPostgres(transportDb, watermilltransport.NewLogger())
		if err != nil {
			return err
		}
		c.transport = watermilltransport.NewTransport(pubsub.Publisher, "")
		c.inbox = watermilltransport.NewInbox(pubsub.Publisher, pubsub.Subscriber, "")
		c.outbox = watermilltransport.NewOutbox(transportDb, "")
	case "kafka":
		transport, err := kafkatransport.NewTransport(c.KafkaBrokers, "")
		if err != nil {
			return err
		}
		inbox, err := kafkatransport.NewInbox(c.KafkaBrokers, "")
		if err != nil {
			//nolint:errcheck
			transport.Close()
			return err
		}
		c.transport = transport
		c.inbox = inbox
	default:
		return fmt.Errorf("unknown transport type")
	}
	return nil
}

func (c *Config) chainFileService() error {
	chainFile, err := chainfile.Load(c.ChainFile)
	if err != nil {
		return err
	}
	c.chainFile = chainFile
	return nil
}

func (c *Config) schedulerService() error {
	var svc ports.SchedulerService
	var err error
	switch c.SchedulerType {
	case "gocron":
		svc = timescheduler.NewScheduler()
	default:
		err = fmt.Errorf("unknown scheduler type")
	}
	if err != nil {
		return err
	}

	c.scheduler = svc
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		c.repo, c.liveStore, c.transport, c.inbox, c.chainFile,
		c.scheduler, c.alerts, c.chainFile,
		application.Config{
			NativeLocation: c.nativeLoc,
			ChainId:        c.ChainId,
			Trap: application.TrapConfig{
				MinBalance:   c.TrapMinBalance,
				NativeRate:   c.TrapNativeRate,
				FungibleRate: c.TrapFungibleRate,
				DefaultRate:  c.TrapDefaultRate,
				LookupWeight: c.TrapLookupWeight,
			},
			VersionRefreshInterval: time.Duration(c.VersionRefreshInterval) * time.Second,
		},
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func (c *Config) alertsService() error {
	if c.AlertManagerURL == "" {
		return nil
	}

	c.alerts = alertsmanager.NewService(c.AlertManagerURL, c.ChainName)
	return nil
}

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
