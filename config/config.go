package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/tdex-otc/internal/core/application"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is the storage backend, one of inmemory, badger or postgres
	DBTypeKey = "DB_TYPE"
	// PgConnectAddrKey is the connection string of the postgres db
	PgConnectAddrKey = "PG_CONNECT_ADDR"
	// AdminAccountKey is the administrator account used the first time the
	// daemon initializes its params
	AdminAccountKey = "ADMIN_ACCOUNT"
	// MinStakeKey is the initial minimum native stake of an offer, in whole units
	MinStakeKey = "MIN_STAKE"
	// FeeBasisPointsKey is the initial platform fee
	FeeBasisPointsKey = "FEE_BASIS_POINTS"
	// FeeRecipientKey is the initial account receiving the platform fees
	FeeRecipientKey = "FEE_RECIPIENT"
	// CancelCooldownKey is the time a maker waits between requesting and
	// finalizing the cancellation of an offer, ie. "30m"
	CancelCooldownKey = "CANCEL_COOLDOWN"
	// MinOfferLifetimeKey is the minimum distance between creation and expiry
	// of an offer
	MinOfferLifetimeKey = "MIN_OFFER_LIFETIME"
	// KafkaBrokersKey is the comma separated list of kafka brokers. Events are
	// not published to kafka if empty
	KafkaBrokersKey = "KAFKA_BROKERS"
	// KafkaTopicKey is the kafka topic where events are published
	KafkaTopicKey = "KAFKA_TOPIC"
	// RedisAddrKey is the address of the redis instance used as shared
	// profile cache. An in-process cache is used if empty
	RedisAddrKey = "REDIS_ADDR"
	// ProfileCacheSizeKey is the max number of profiles of the in-process cache
	ProfileCacheSizeKey = "PROFILE_CACHE_SIZE"
	// ProfileCacheTTLKey is the time a cached profile is considered fresh
	ProfileCacheTTLKey = "PROFILE_CACHE_TTL"
	// GenesisFileKey is the path of the json file with the initial balances
	// of the asset ledger
	GenesisFileKey = "GENESIS_FILE"
	// WebhookRateLimitKey is the max number of webhook requests per second
	WebhookRateLimitKey = "WEBHOOK_RATE_LIMIT"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval for printing basic memory statistics
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation       = "db"
	WebhookLocation  = "webhooks"
	ProfilerLocation = "stats"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("otcd", false)

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("OTC")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 9945)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(MinStakeKey, "0.001")
	vip.SetDefault(FeeBasisPointsKey, 30)
	vip.SetDefault(CancelCooldownKey, application.DefaultCancelCooldown)
	vip.SetDefault(MinOfferLifetimeKey, application.DefaultMinOfferLifetime)
	vip.SetDefault(KafkaTopicKey, "otc-events")
	vip.SetDefault(ProfileCacheSizeKey, 1000)
	vip.SetDefault(ProfileCacheTTLKey, 5*time.Minute)
	vip.SetDefault(WebhookRateLimitKey, 10)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		log.WithError(err).Panic("error while validating config")
	}

	if err := initDatadir(); err != nil {
		log.WithError(err).Panic("error while creating datadir")
	}
}

//GetString ...
func GetString(key string) string {
	return vip.GetString(key)
}

//GetInt ...
func GetInt(key string) int {
	return vip.GetInt(key)
}

//GetUint64 ...
func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

//GetDuration ...
func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

//GetBool ...
func GetBool(key string) bool {
	return vip.GetBool(key)
}

//GetAccount ...
func GetAccount(key string) domain.Account {
	return domain.Account(vip.GetString(key))
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

// IsSet returns whether the give key is set
func IsSet(key string) bool {
	return vip.IsSet(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDBConfig returns the backend specific configuration of the storage
// expected by application.Config.
func GetDBConfig() interface{} {
	switch GetString(DBTypeKey) {
	case application.DBBadger:
		return filepath.Join(GetDatadir(), DbLocation)
	case application.DBPostgres:
		return GetString(PgConnectAddrKey)
	default:
		return nil
	}
}

// GetMinStake returns the configured min stake in units.
func GetMinStake() uint64 {
	//nolint
	stake, _ := mathutil.ToUnits(GetString(MinStakeKey))
	return stake
}

// GetKafkaBrokers returns the list of configured kafka brokers, if any.
func GetKafkaBrokers() []string {
	brokers := make([]string, 0)
	for _, b := range strings.Split(GetString(KafkaBrokersKey), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("datadir must not be null")
	}

	dbType := GetString(DBTypeKey)
	if _, ok := application.SupportedDBType[dbType]; !ok {
		return fmt.Errorf(
			"db type must be one of '%s', '%s' or '%s'",
			application.DBInMemory, application.DBBadger, application.DBPostgres,
		)
	}
	if dbType == application.DBPostgres && GetString(PgConnectAddrKey) == "" {
		return fmt.Errorf("postgres db requires a connection address")
	}

	for _, key := range []string{AdminAccountKey, FeeRecipientKey} {
		if !IsSet(key) {
			continue
		}
		if err := GetAccount(key).Validate(); err != nil {
			return fmt.Errorf("%s: %s", strings.ToLower(key), err)
		}
	}

	if _, err := mathutil.ToUnits(GetString(MinStakeKey)); err != nil {
		return fmt.Errorf("min stake: %s", err)
	}
	if bps := GetUint64(FeeBasisPointsKey); bps > domain.MaxFeeBasisPoints {
		return fmt.Errorf(
			"fee basis points must be in range [0, %d]", domain.MaxFeeBasisPoints,
		)
	}

	if GetDuration(CancelCooldownKey) <= 0 {
		return fmt.Errorf("cancel cooldown must be a positive duration")
	}
	if GetDuration(MinOfferLifetimeKey) <= 0 {
		return fmt.Errorf("min offer lifetime must be a positive duration")
	}

	if len(GetKafkaBrokers()) > 0 && GetString(KafkaTopicKey) == "" {
		return fmt.Errorf("kafka topic must not be null")
	}
	if GetInt(ProfileCacheSizeKey) <= 0 {
		return fmt.Errorf("profile cache size must be a positive number")
	}
	if GetInt(WebhookRateLimitKey) <= 0 {
		return fmt.Errorf("webhook rate limit must be a positive number")
	}

	if genesis := GetString(GenesisFileKey); genesis != "" {
		if _, err := os.Stat(genesis); err != nil {
			return fmt.Errorf("genesis file: %s", err)
		}
	}
	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if GetString(DBTypeKey) == application.DBBadger {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
	}
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, WebhookLocation)); err != nil {
		return err
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
