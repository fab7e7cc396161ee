package fx

import (
	"context"
	"fmt"
	"time"

	"rivals-tracker/internal/api"
	"rivals-tracker/internal/config"
	"rivals-tracker/internal/constants"
	"rivals-tracker/internal/database"
	"rivals-tracker/internal/logger"
	"rivals-tracker/internal/repository"
	"rivals-tracker/internal/server"
	"rivals-tracker/internal/service"
	"rivals-tracker/internal/store"
	"rivals-tracker/internal/viewer"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Stores splits viewer state the way a browser does: per-session cache, durable locks.
type Stores struct {
	SessionID viewer.SessionID
	Session   store.Store
	Durable   store.Store
}

// SessionRequest is what the caller asked for; an empty ID continues the last session.
type SessionRequest struct {
	ID    viewer.SessionID
	Fresh bool
}

func ProvideStores(lc fx.Lifecycle, cfg *config.Config, req SessionRequest, logger zerolog.Logger) (Stores, error) {
	durable, sessionStore, err := openBackend(lc, cfg, logger)
	if err != nil {
		return Stores{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()
	id, err := viewer.ResolveSession(ctx, durable, req.ID, req.Fresh)
	if err != nil {
		return Stores{}, err
	}
	logger.Debug().Str("session", string(id)).Msg("viewer session resolved")

	return Stores{
		SessionID: id,
		Session:   sessionStore(constants.SessionNamespace + string(id)),
		Durable:   durable,
	}, nil
}

// openBackend returns the durable store and a constructor for session-scoped stores.
func openBackend(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (store.Store, func(namespace string) store.Store, error) {
	switch cfg.StoreBackend {
	case constants.StoreMemory:
		mem := store.NewMemoryStore()
		return store.WithPrefix(mem, constants.LocalNamespace+":"), func(ns string) store.Store {
			return store.WithPrefix(mem, ns+":")
		}, nil

	case constants.StoreRedis:
		r := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, constants.RedisKeyPrefix)
		ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return r.Close() }})
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis store")
		return store.WithPrefix(r, constants.LocalNamespace+":"), func(ns string) store.Store {
			return store.WithPrefix(r, ns+":")
		}, nil

	case constants.StoreSQLite, "":
		db, err := database.New(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return db.Close() }})

		ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
		defer cancel()
		if n, err := store.PurgeNamespacesBefore(ctx, db, constants.SessionNamespace, time.Now().Add(-constants.SessionRetention)); err != nil {
			logger.Warn().Err(err).Msg("failed to purge old sessions")
		} else if n > 0 {
			logger.Debug().Int64("rows", n).Msg("purged old session entries")
		}

		return store.NewSQLiteStore(db, constants.LocalNamespace, logger), func(ns string) store.Store {
			return store.NewSQLiteStore(db, ns, logger)
		}, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func ProvidePlayerCache(s Stores, logger zerolog.Logger) *repository.PlayerCacheRepository {
	return repository.NewPlayerCacheRepository(s.Session, logger)
}

func ProvideUpdateLocks(s Stores, logger zerolog.Logger) *repository.UpdateLockRepository {
	return repository.NewUpdateLockRepository(s.Durable, logger)
}

func ProvideViewerClient(cfg *config.Config, logger zerolog.Logger) viewer.Client {
	return viewer.NewProxyClient(cfg, logger)
}

var CoreModule = fx.Options(
	config.Module,
)

var ServerModule = fx.Options(
	logger.Module,
	CoreModule,
	fx.Invoke(logger.ApplyLevel),
	// api client
	fx.Provide(api.NewRivalsClient),
	// svc
	fx.Provide(service.NewSummaryService),
	// server
	fx.Provide(server.NewProxyServer),
	fx.Provide(server.NewTrackerServer),
)

// ViewerModule expects a zerolog.Logger and a SessionRequest to be supplied.
var ViewerModule = fx.Options(
	CoreModule,
	fx.Provide(ProvideStores),
	// repos
	fx.Provide(ProvidePlayerCache),
	fx.Provide(ProvideUpdateLocks),
	fx.Provide(ProvideViewerClient),
)
