package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tdex-network/tdex-otc/config"
	"github.com/tdex-network/tdex-otc/internal/core/application"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
	assetledger "github.com/tdex-network/tdex-otc/internal/infrastructure/asset-ledger"
	profilecache "github.com/tdex-network/tdex-otc/internal/infrastructure/cache"
	"github.com/tdex-network/tdex-otc/internal/infrastructure/clock"
	kafkapubsub "github.com/tdex-network/tdex-otc/internal/infrastructure/pubsub/kafka"
	webhookpubsub "github.com/tdex-network/tdex-otc/internal/infrastructure/pubsub/webhook"
	wspubsub "github.com/tdex-network/tdex-otc/internal/infrastructure/pubsub/websocket"
	httpinterface "github.com/tdex-network/tdex-otc/internal/interfaces/http"
	"github.com/tdex-network/tdex-otc/pkg/stats"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	app = &cobra.Command{
		Use:           "otcd",
		Short:         "otc escrow daemon",
		Long:          "otcd holds the assets of peer-to-peer OTC offers in escrow and settles them atomically",
		Version:       formatVersion(),
		RunE:          action,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	if err := app.Execute(); err != nil {
		log.Fatal(err)
	}
}

func action(_ *cobra.Command, _ []string) error {
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	datadir := config.GetDatadir()
	if config.GetBool(config.EnableProfilerKey) {
		interval := time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second
		dumpPath := filepath.Join(
			datadir, config.ProfilerLocation,
			fmt.Sprintf("metrics-%d", time.Now().Unix()),
		)
		stats.EnableMemoryStatistics(ctx, interval, dumpPath)
	}

	ledger, err := newLedger(datadir)
	if err != nil {
		return err
	}
	defer ledger.Close()

	webhookStore, err := webhookpubsub.NewBadgerStore(
		filepath.Join(datadir, config.WebhookLocation), log.New(),
	)
	if err != nil {
		return fmt.Errorf("failed to open webhook store: %w", err)
	}
	webhookSvc, err := webhookpubsub.NewService(
		webhookStore, config.GetInt(config.WebhookRateLimitKey),
	)
	if err != nil {
		return err
	}
	defer webhookSvc.Close()

	hub := wspubsub.NewHub()
	defer hub.Close()

	publishers := []ports.EventPublisher{hub}
	if brokers := config.GetKafkaBrokers(); len(brokers) > 0 {
		kafkaPublisher, err := kafkapubsub.NewPublisher(
			brokers, config.GetString(config.KafkaTopicKey),
		)
		if err != nil {
			return fmt.Errorf("failed to connect to kafka: %w", err)
		}
		defer kafkaPublisher.Close()
		publishers = append(publishers, kafkaPublisher)
	}

	cache, err := newProfileCache(ctx)
	if err != nil {
		return err
	}

	feeRecipient := config.GetAccount(config.FeeRecipientKey)
	if feeRecipient.IsZero() {
		feeRecipient = config.GetAccount(config.AdminAccountKey)
	}
	appConfig := &application.Config{
		DBType:           config.GetString(config.DBTypeKey),
		DBConfig:         config.GetDBConfig(),
		AssetTransfer:    ledger,
		Clock:            clock.NewSystemClock(),
		ProfileCache:     cache,
		WebhookPubSub:    webhookSvc,
		Publishers:       publishers,
		Admin:            config.GetAccount(config.AdminAccountKey),
		MinStake:         config.GetMinStake(),
		FeeBasisPoints:   config.GetUint64(config.FeeBasisPointsKey),
		FeeRecipient:     feeRecipient,
		CancelCooldown:   config.GetDuration(config.CancelCooldownKey),
		MinOfferLifetime: config.GetDuration(config.MinOfferLifetimeKey),
	}
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("invalid application config: %w", err)
	}
	defer appConfig.RepoManager().Close()

	svc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Address:       fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey)),
		SettlementSvc: appConfig.SettlementService(),
		AdminSvc:      appConfig.AdminService(),
		QuerySvc:      appConfig.QueryService(),
		BuildInfo: application.BuildInfo{
			Version: version,
			Commit:  commit,
			Date:    date,
		},
		Ledger:      ledger,
		EventStream: hub,
	})
	if err != nil {
		return err
	}

	log.RegisterExitHandler(svc.Stop)

	log.Info("starting daemon")
	if err := svc.Start(); err != nil {
		return fmt.Errorf("failed to start http interface: %w", err)
	}
	defer svc.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	<-sigChan

	log.Info("shutting down daemon")
	return nil
}

// newLedger returns the asset ledger. Its state is persisted under datadir
// unless offers live in memory too, so that escrow balances always match
// the locked funds of the stored offers.
func newLedger(datadir string) (*assetledger.Ledger, error) {
	var genesis assetledger.Genesis
	if path := config.GetString(config.GenesisFileKey); path != "" {
		g, err := assetledger.LoadGenesis(path)
		if err != nil {
			return nil, err
		}
		genesis = g
	}

	if config.GetString(config.DBTypeKey) == application.DBInMemory {
		if genesis == nil {
			log.Warn("no genesis file configured, starting with an empty ledger")
		}
		return assetledger.NewLedgerFromGenesis(genesis)
	}

	store, err := assetledger.NewBadgerStore(datadir, log.New())
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %w", err)
	}
	ledger, err := assetledger.NewPersistentLedger(store, genesis)
	if err != nil {
		//nolint
		store.Close()
		return nil, err
	}
	return ledger, nil
}

func newProfileCache(ctx context.Context) (ports.ProfileCache, error) {
	ttl := config.GetDuration(config.ProfileCacheTTLKey)
	if addr := config.GetString(config.RedisAddrKey); addr != "" {
		cache, err := profilecache.NewRedisCache(ctx, addr, "", 0, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Debugf("using redis profile cache at %s", addr)
		return cache, nil
	}
	return profilecache.NewLRUCache(config.GetInt(config.ProfileCacheSizeKey), ttl), nil
}

func formatVersion() string {
	return fmt.Sprintf(
		"Version: %s\nCommit: %s\nDate: %s",
		version, commit, date,
	)
}
