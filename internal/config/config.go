package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/thanhpk/randstr"
)

const (
	// ListeningPortKey is the port where the HTTP API listens on
	ListeningPortKey = "LISTENING_PORT"
	// MetricsPortKey is the port where prometheus metrics are exposed, 0
	// means they are served on the API port
	MetricsPortKey = "METRICS_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// ContractAccountKey is the name of the ledger's own account, the
	// destination of incoming transfers
	ContractAccountKey = "CONTRACT_ACCOUNT"
	// NftContractKey is the account of the non-fungible asset contract
	NftContractKey = "NFT_CONTRACT"
	// SystemAccountsKey is the comma separated list of accounts whose
	// transfers are never credited
	SystemAccountsKey = "SYSTEM_ACCOUNTS"
	// AuthSecretKey is the secret used to sign and verify HS256 access tokens
	AuthSecretKey = "AUTH_SECRET"
	// ReleaseEndpointKey is the URL of the host where release requests are
	// posted
	ReleaseEndpointKey = "RELEASE_ENDPOINT"
	// ReleaseRateLimitKey is the max number of release requests per second
	ReleaseRateLimitKey = "RELEASE_RATE_LIMIT"
	// ReleaseIntervalKey is the interval between release dispatch rounds
	ReleaseIntervalKey = "RELEASE_INTERVAL"
	// ReleaseMaxAttemptsKey is the number of failed deliveries after which a
	// release is marked as failed
	ReleaseMaxAttemptsKey = "RELEASE_MAX_ATTEMPTS"
	// EscrowSweepIntervalKey is the interval between sweeps of expired
	// escrows, 0 disables the sweeper
	EscrowSweepIntervalKey = "ESCROW_SWEEP_INTERVAL"
	// NotifierWsURLKey is the websocket feed of transfer notifications, if
	// not set notifications are accepted only through the API
	NotifierWsURLKey = "NOTIFIER_WS_URL"
	// AllowListEnabledKey makes actors and contracts not explicitly allowed
	// blocked
	AllowListEnabledKey = "ALLOW_LIST_ENABLED"

	DbLocation       = "db"
	WebhooksLocation = "webhooks"

	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("custodyd", false)

	supportedDbs = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("CUSTODY")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 9945)
	vip.SetDefault(MetricsPortKey, 0)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, int(log.InfoLevel))
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(NftContractKey, "atomicassets")
	vip.SetDefault(SystemAccountsKey, "eosio,eosio.stake,eosio.ram")
	vip.SetDefault(ReleaseRateLimitKey, 10)
	vip.SetDefault(ReleaseIntervalKey, 5*time.Second)
	vip.SetDefault(ReleaseMaxAttemptsKey, 5)
	vip.SetDefault(EscrowSweepIntervalKey, time.Minute)
	vip.SetDefault(AllowListEnabledKey, false)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	if len(GetString(AuthSecretKey)) <= 0 {
		secret := randstr.Hex(32)
		vip.Set(AuthSecretKey, secret)
		log.Warnf(
			"missing %s, using a random one valid until restart", AuthSecretKey,
		)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetStringSlice returns the comma separated values of the given key.
func GetStringSlice(key string) []string {
	values := make([]string, 0)
	for _, v := range strings.Split(vip.GetString(key), ",") {
		if v = strings.TrimSpace(v); len(v) > 0 {
			values = append(values, v)
		}
	}
	return values
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDbDir returns the db directory, empty for the in-memory db.
func GetDbDir() string {
	if GetString(DBTypeKey) == DBInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if _, ok := supportedDbs[GetString(DBTypeKey)]; !ok {
		return fmt.Errorf(
			"%s not supported, must be one of %s or %s",
			GetString(DBTypeKey), DBBadger, DBInMemory,
		)
	}

	if err := domain.ValidateName(GetString(ContractAccountKey)); err != nil {
		return fmt.Errorf("invalid %s: %s", ContractAccountKey, err)
	}
	if err := domain.ValidateName(GetString(NftContractKey)); err != nil {
		return fmt.Errorf("invalid %s: %s", NftContractKey, err)
	}
	for _, account := range GetStringSlice(SystemAccountsKey) {
		if err := domain.ValidateName(account); err != nil {
			return fmt.Errorf("invalid %s: %s", SystemAccountsKey, err)
		}
	}

	if endpoint := GetString(ReleaseEndpointKey); len(endpoint) > 0 {
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return fmt.Errorf("invalid %s: %s", ReleaseEndpointKey, err)
		}
		if GetDuration(ReleaseIntervalKey) <= 0 {
			return fmt.Errorf("%s must be a positive duration", ReleaseIntervalKey)
		}
	}
	if GetInt(ReleaseRateLimitKey) < 0 {
		return fmt.Errorf("%s must not be negative", ReleaseRateLimitKey)
	}
	if GetDuration(EscrowSweepIntervalKey) < 0 {
		return fmt.Errorf("%s must not be negative", EscrowSweepIntervalKey)
	}

	port, metricsPort := GetInt(ListeningPortKey), GetInt(MetricsPortKey)
	if port <= 0 {
		return fmt.Errorf("%s must be a positive number", ListeningPortKey)
	}
	if metricsPort == port {
		return fmt.Errorf(
			"%s and %s must be different", ListeningPortKey, MetricsPortKey,
		)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if GetString(DBTypeKey) == DBInMemory {
		return makeDirectoryIfNotExists(datadir)
	}
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}
	return makeDirectoryIfNotExists(filepath.Join(datadir, WebhooksLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
