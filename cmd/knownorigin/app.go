package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mtlprog/knownorigin/internal/chain"
	"github.com/mtlprog/knownorigin/internal/config"
	"github.com/mtlprog/knownorigin/internal/database"
	"github.com/mtlprog/knownorigin/internal/domain"
	"github.com/mtlprog/knownorigin/internal/external"
	"github.com/mtlprog/knownorigin/internal/market"
	"github.com/mtlprog/knownorigin/internal/normalize"
	"github.com/mtlprog/knownorigin/internal/price"
	"github.com/mtlprog/knownorigin/internal/registry"
	"github.com/mtlprog/knownorigin/internal/subgraph"
	"github.com/mtlprog/knownorigin/internal/transfer"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// app holds the wired services for one CLI invocation.
type app struct {
	cfg      config.Config
	market   *market.Service
	external *external.Service
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func setupLogging(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	repo, err := a.quoteRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	coingecko := external.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.CoinGeckoDelay, cfg.CoinGeckoRetryMax)
	a.external = external.NewService(coingecko, repo, cfg.NativeCoinID, cfg.ReferenceCoinID, cfg.QuoteStaleThreshold)

	client := subgraph.NewClient(cfg.SubgraphURL, cfg.SubgraphRetryMax, cfg.SubgraphRetryBaseDelay)
	network := domain.Network(cfg.Network)
	reg := registry.NewStaticRegistry(network, map[registry.Role]string{
		registry.RoleDigitalAsset:       cfg.DigitalAssetAddress,
		registry.RoleMarketplaceAdapter: cfg.MarketplaceAdapterAddress,
	})

	a.market = market.NewService(
		subgraph.NewTokenSource(client),
		subgraph.NewEditionSource(client),
		price.NewOracle(a.external),
		price.NewBasisPointsFee(int64(cfg.MarketplaceFeeBPS)),
		reg,
		registry.NewStaticOrigins(cfg.KnownOriginOrigin),
		normalize.Chain{ID: domain.ChainID(cfg.ChainID), Network: network},
	)
	return a, nil
}

// quoteRepository picks Postgres when DATABASE_URL is set, memory otherwise, and fronts
// either with Redis when REDIS_URL is set.
func (a *app) quoteRepository(ctx context.Context) (external.QuoteRepository, error) {
	var repo external.QuoteRepository
	if a.cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, quotes are kept in memory")
		repo = external.NewMemoryQuoteRepository()
	} else {
		pool, err := database.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)

		if err := migrate(ctx, pool); err != nil {
			return nil, err
		}
		repo = external.NewPgQuoteRepository(pool)
	}

	if a.cfg.RedisURL == "" {
		return repo, nil
	}
	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	a.closers = append(a.closers, func() {
		if err := rdb.Close(); err != nil {
			slog.Warn("closing redis client", "error", err)
		}
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return external.NewCachedQuoteRepository(repo, rdb, a.cfg.QuoteCacheTTL), nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, sub); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// transferService connects the keystore signer and returns the transfer service with the
// identity of the connected wallet.
func (a *app) transferService(ctx context.Context) (*transfer.Service, *domain.Identity, error) {
	if !a.cfg.SignerEnabled() {
		return nil, nil, fmt.Errorf("ETH_RPC_URL and KEYSTORE_PATH are required to transfer")
	}

	key, err := chain.LoadKey(a.cfg.KeystorePath, a.cfg.KeystorePassphrase)
	if err != nil {
		return nil, nil, err
	}
	client, err := ethclient.DialContext(ctx, a.cfg.EthRPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", a.cfg.EthRPCURL, err)
	}
	a.closers = append(a.closers, client.Close)

	signer := chain.NewKeySigner(client, key, a.cfg.ChainID)
	sessions := chain.NewSessionProvider()
	sessions.Connect(signer)

	return transfer.NewService(sessions), &domain.Identity{Address: signer.Address()}, nil
}
