package application

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/custodyd/internal/core/application/allow"
	"github.com/tdex-network/custodyd/internal/core/application/escrow"
	"github.com/tdex-network/custodyd/internal/core/application/gateway"
	"github.com/tdex-network/custodyd/internal/core/application/ledger"
	"github.com/tdex-network/custodyd/internal/core/application/pubsub"
	"github.com/tdex-network/custodyd/internal/core/application/release"
	"github.com/tdex-network/custodyd/internal/core/ports"
	dbbadger "github.com/tdex-network/custodyd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/custodyd/internal/infrastructure/storage/db/inmemory"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

// Config wires together the application services. Services are built
// lazily on first access, Validate builds all of them at once.
type Config struct {
	DBType string
	// DBConfig is the db base directory for badger.
	DBConfig interface{}
	// DBLogger is the logger of the badger db, optional.
	DBLogger badger.Logger

	Authorizer ports.Authorizer
	// PubSub is optional, events are not published if missing.
	PubSub ports.PubSub
	// ReleaseSender is optional, releases are only enqueued if missing.
	ReleaseSender      ports.ReleaseSender
	ReleaseInterval    time.Duration
	ReleaseRateLimit   int
	ReleaseMaxAttempts int

	Gateway          gateway.Config
	AllowListEnabled bool

	repo    ports.RepoManager
	pubsub  *pubsub.Service
	ledger  *ledger.Service
	allow   *allow.Service
	gateway *gateway.Service
	escrow  *escrow.Service
	release *release.Service
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("unsupported db type %q", c.DBType)
	}
	if c.Authorizer == nil {
		return fmt.Errorf("missing authorizer")
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if _, err := c.gatewayService(); err != nil {
		return err
	}
	if _, err := c.escrowService(); err != nil {
		return err
	}
	if _, err := c.releaseService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	svc, _ := c.repoManager()
	return svc
}

func (c *Config) PubSubService() *pubsub.Service {
	return c.pubsubService()
}

func (c *Config) LedgerService() *ledger.Service {
	svc, _ := c.ledgerService()
	return svc
}

func (c *Config) AllowService() *allow.Service {
	svc, _ := c.allowService()
	return svc
}

func (c *Config) GatewayService() *gateway.Service {
	svc, _ := c.gatewayService()
	return svc
}

func (c *Config) EscrowService() *escrow.Service {
	svc, _ := c.escrowService()
	return svc
}

// ReleaseService returns nil if no release sender is configured.
func (c *Config) ReleaseService() *release.Service {
	svc, _ := c.releaseService()
	return svc
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			repoManager, err := dbbadger.NewRepoManager(datadir, c.DBLogger)
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		case DBInMemory:
			c.repo = inmemory.NewRepoManager()
		default:
			return nil, fmt.Errorf("unsupported db type %q", c.DBType)
		}
	}
	return c.repo, nil
}

func (c *Config) pubsubService() *pubsub.Service {
	if c.pubsub == nil {
		c.pubsub = pubsub.NewService(c.PubSub)
	}
	return c.pubsub
}

func (c *Config) ledgerService() (*ledger.Service, error) {
	if c.ledger == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		ledger, err := ledger.NewService(repo)
		if err != nil {
			return nil, err
		}
		c.ledger = ledger
	}
	return c.ledger, nil
}

func (c *Config) allowService() (*allow.Service, error) {
	if c.allow == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		allow, err := allow.NewService(repo, c.Authorizer, c.AllowListEnabled)
		if err != nil {
			return nil, err
		}
		c.allow = allow
	}
	return c.allow, nil
}

func (c *Config) gatewayService() (*gateway.Service, error) {
	if c.gateway == nil {
		ledger, err := c.ledgerService()
		if err != nil {
			return nil, err
		}
		allow, err := c.allowService()
		if err != nil {
			return nil, err
		}
		repo, _ := c.repoManager()
		gateway, err := gateway.NewService(
			repo, ledger, allow, c.pubsubService(), c.Authorizer, c.Gateway,
		)
		if err != nil {
			return nil, err
		}
		c.gateway = gateway
	}
	return c.gateway, nil
}

func (c *Config) escrowService() (*escrow.Service, error) {
	if c.escrow == nil {
		ledger, err := c.ledgerService()
		if err != nil {
			return nil, err
		}
		allow, err := c.allowService()
		if err != nil {
			return nil, err
		}
		repo, _ := c.repoManager()
		escrow, err := escrow.NewService(
			repo, ledger, allow, c.pubsubService(), c.Authorizer, c.Gateway.Contract,
		)
		if err != nil {
			return nil, err
		}
		c.escrow = escrow
	}
	return c.escrow, nil
}

func (c *Config) releaseService() (*release.Service, error) {
	if c.release == nil && c.ReleaseSender != nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		release, err := release.NewService(
			repo, c.ReleaseSender, c.ReleaseInterval,
			c.ReleaseRateLimit, c.ReleaseMaxAttempts,
		)
		if err != nil {
			return nil, err
		}
		c.release = release
	}
	return c.release, nil
}
