package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
	dbbadger "github.com/tdex-network/tdex-otc/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-otc/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/tdex-network/tdex-otc/internal/infrastructure/storage/db/pg"
)

const (
	DBInMemory = "inmemory"
	DBBadger   = "badger"
	DBPostgres = "postgres"
)

var (
	SupportedDBType = map[string]struct{}{
		DBInMemory: {},
		DBBadger:   {},
		DBPostgres: {},
	}
)

// Config holds the collaborators and settings of the application services,
// which are lazily built on first access.
type Config struct {
	DBType string
	// DBConfig is the datadir for badger and the connection string for
	// postgres. Unused for inmemory.
	DBConfig interface{}

	AssetTransfer ports.AssetTransfer
	Clock         ports.Clock
	ProfileCache  ports.ProfileCache
	WebhookPubSub ports.WebhookPubSub
	Publishers    []ports.EventPublisher

	// Admin, MinStake, FeeBasisPoints and FeeRecipient initialize the params
	// record the first time the daemon starts. Ignored afterwards.
	Admin            domain.Account
	MinStake         uint64
	FeeBasisPoints   uint64
	FeeRecipient     domain.Account
	CancelCooldown   time.Duration
	MinOfferLifetime time.Duration

	repo       ports.RepoManager
	settlement SettlementService
	admin      AdminService
	query      QueryService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("db type not supported")
	}
	if c.AssetTransfer == nil {
		return fmt.Errorf("missing asset transfer")
	}
	if c.Clock == nil {
		return fmt.Errorf("missing clock")
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if err := c.initParams(); err != nil {
		return err
	}
	if _, err := c.settlementService(); err != nil {
		return err
	}
	if _, err := c.adminService(); err != nil {
		return err
	}
	if _, err := c.queryService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	repo, _ := c.repoManager()
	return repo
}

func (c *Config) SettlementService() SettlementService {
	svc, _ := c.settlementService()
	return svc
}

func (c *Config) AdminService() AdminService {
	svc, _ := c.adminService()
	return svc
}

func (c *Config) QueryService() QueryService {
	svc, _ := c.queryService()
	return svc
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		var repoManager ports.RepoManager
		var err error

		switch c.DBType {
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			repoManager, err = dbbadger.NewRepoManager(datadir, log.New())
		case DBPostgres:
			dsn, _ := c.DBConfig.(string)
			repoManager, err = postgresdb.NewRepoManager(context.Background(), dsn)
		default:
			repoManager = inmemory.NewRepoManager()
		}
		if err != nil {
			return nil, err
		}
		c.repo = repoManager
	}
	return c.repo, nil
}

func (c *Config) initParams() error {
	repo, _ := c.repoManager()
	params, err := domain.NewParams(
		c.Admin, c.MinStake, c.FeeBasisPoints, c.FeeRecipient,
	)
	if err != nil {
		return err
	}

	stored, err := repo.ParamsRepository().InitParams(context.Background(), params)
	if err != nil {
		return fmt.Errorf("failed to initialize params: %w", err)
	}
	if stored.Admin != params.Admin {
		log.Infof(
			"admin role has been transferred to %s, ignoring configured one",
			stored.Admin,
		)
	}
	return nil
}

func (c *Config) settlementService() (SettlementService, error) {
	if c.settlement == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		svc, err := NewSettlementService(
			repo, c.AssetTransfer, c.Clock, c.ProfileCache,
			c.cancelCooldown(), c.minOfferLifetime(), c.publishers()...,
		)
		if err != nil {
			return nil, err
		}
		c.settlement = svc
	}
	return c.settlement, nil
}

func (c *Config) adminService() (AdminService, error) {
	if c.admin == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		svc, err := NewAdminService(
			repo, c.AssetTransfer, c.Clock, c.WebhookPubSub, c.publishers()...,
		)
		if err != nil {
			return nil, err
		}
		c.admin = svc
	}
	return c.admin, nil
}

func (c *Config) queryService() (QueryService, error) {
	if c.query == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		svc, err := NewQueryService(
			repo, c.Clock, c.ProfileCache, c.cancelCooldown(),
		)
		if err != nil {
			return nil, err
		}
		c.query = svc
	}
	return c.query, nil
}

func (c *Config) publishers() []ports.EventPublisher {
	pubs := make([]ports.EventPublisher, 0, len(c.Publishers)+1)
	if c.WebhookPubSub != nil {
		pubs = append(pubs, c.WebhookPubSub)
	}
	return append(pubs, c.Publishers...)
}

func (c *Config) cancelCooldown() time.Duration {
	if c.CancelCooldown > 0 {
		return c.CancelCooldown
	}
	return DefaultCancelCooldown
}

func (c *Config) minOfferLifetime() time.Duration {
	if c.MinOfferLifetime > 0 {
		return c.MinOfferLifetime
	}
	return DefaultMinOfferLifetime
}
