package di

import (
	"context"
	"log/slog"

	"github.com/LeJamon/goDutchAuction/internal/config"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/service"
	"github.com/LeJamon/goDutchAuction/internal/rpc"
	"github.com/LeJamon/goDutchAuction/internal/storage"
	"github.com/LeJamon/goDutchAuction/internal/storage/journal"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
)

// Provider configures and registers services in the container.
type Provider struct {
	ctx       context.Context
	container *Container
	config    *config.Config
}

// NewProvider creates a new service provider. ctx bounds the opening of
// storage backends.
func NewProvider(ctx context.Context, container *Container, cfg *config.Config, logger *slog.Logger) *Provider {
	container.Register(ServiceConfig, cfg)
	container.Register(ServiceLogger, logger)
	return &Provider{
		ctx:       ctx,
		container: container,
		config:    cfg,
	}
}

// RegisterAll registers all services.
func (p *Provider) RegisterAll() {
	p.registerStorageBuilders()
	p.registerLedgerBuilders()
	p.registerRPCBuilders()
}

func (p *Provider) logger() *slog.Logger {
	l, err := Resolve[*slog.Logger](p.container, ServiceLogger)
	if err != nil || l == nil {
		return slog.Default()
	}
	return l
}

func (p *Provider) registerStorageBuilders() {
	p.container.RegisterBuilder(ServiceStore, func(c *Container) (any, error) {
		return storage.Open(p.ctx, p.config.Database.StorageOptions())
	})

	p.container.RegisterBuilder(ServiceJournal, func(c *Container) (any, error) {
		return journal.Open(p.ctx, p.config.Journal.JournalOptions())
	})
}

func (p *Provider) registerLedgerBuilders() {
	p.container.RegisterBuilder(ServiceLedger, func(c *Container) (any, error) {
		store, err := Resolve[kvstore.DB](c, ServiceStore)
		if err != nil {
			return nil, err
		}
		jr, err := Resolve[journal.Journal](c, ServiceJournal)
		if err != nil {
			return nil, err
		}
		svc, err := service.New(service.Config{
			Store:   store,
			Clock:   p.config.Clock.NewSource(),
			Journal: jr,
			Logger:  p.logger(),
			Genesis: p.config.Genesis.GenesisOptions(),
		})
		if err != nil {
			return nil, err
		}
		if err := svc.Start(p.ctx); err != nil {
			return nil, err
		}
		return svc, nil
	})
}

func (p *Provider) registerRPCBuilders() {
	p.container.RegisterBuilder(ServiceRPCServer, func(c *Container) (any, error) {
		svc, err := p.LedgerService()
		if err != nil {
			return nil, err
		}
		return rpc.NewServer(svc, rpc.Config{
			Addr:           p.config.Server.Addr(),
			Admin:          p.config.Server.Admin,
			SendQueueLimit: p.config.Server.SendQueueLimit,
			Logger:         p.logger(),
		}), nil
	})
}

// LedgerService returns the started ledger service, opening its storage on
// first use.
func (p *Provider) LedgerService() (*service.Service, error) {
	return Resolve[*service.Service](p.container, ServiceLedger)
}

// RPCServer returns the RPC server bound to the ledger service.
func (p *Provider) RPCServer() (*rpc.Server, error) {
	return Resolve[*rpc.Server](p.container, ServiceRPCServer)
}

// Config returns the configuration the provider was built with.
func (p *Provider) Config() *config.Config {
	return p.config
}
