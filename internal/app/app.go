// Package app wires configuration, the authority, the offline store and the
// HTTP layer into one runnable unit shared by the server and bookingctl.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intconfig "busbooking/internal/config"
	"busbooking/internal/connectivity"
	"busbooking/internal/db"
	"busbooking/internal/domain/models"
	api "busbooking/internal/http"
	h "busbooking/internal/http/handlers"
	"busbooking/internal/metrics"
	"busbooking/internal/offline"
	"busbooking/internal/repositories"
	"busbooking/internal/services"
	"busbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

type App struct {
	Env       intconfig.Env
	DB        *sql.DB
	Store     *offline.Store
	Authority *repositories.Authority
	Monitor   *connectivity.Monitor

	Auth      services.AuthService
	Schedules services.ScheduleService
	Reconcile *services.ReconcileService
	Handlers  h.Handlers
}

// Build opens the authority pool and the offline store. MySQL being down is
// not an error here; the store failing to open is.
func Build(ctx context.Context, env intconfig.Env) (*App, error) {
	sqlDB, err := intconfig.OpenDB(env)
	if err != nil {
		return nil, err
	}
	return BuildWith(ctx, env, sqlDB, offline.DefaultConfig(env.OfflineDir))
}

// BuildWith is Build with the connection pool and store settings supplied.
func BuildWith(ctx context.Context, env intconfig.Env, sqlDB *sql.DB, storeCfg offline.Config) (*App, error) {
	store, err := offline.Open(storeCfg)
	if err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	a := &App{
		Env:       env,
		DB:        sqlDB,
		Store:     store,
		Authority: repositories.NewAuthority(sqlDB),
		Monitor:   connectivity.NewMonitor(connectivity.NewProbe(sqlDB, env.ProbeTimeout)),
	}

	a.Auth = services.AuthService{
		Users:  a.Authority.Users,
		Store:  store,
		Secret: []byte(env.JWTSecret),
	}
	a.Schedules = services.ScheduleService{Schedules: a.Authority.Schedules, Cache: store.Schedules}
	a.Reconcile = services.NewReconcileService(a.Authority, store)
	a.Reconcile.OnComplete = a.afterSync

	bookings := services.BookingService{Authority: a.Authority, Store: store}
	a.Handlers = h.Handlers{
		Auth:       a.Auth,
		Bookings:   bookings,
		Schedules:  a.Schedules,
		Docs:       services.DocsService{Bookings: bookings},
		Stats:      services.StatsService{Authority: a.Authority, Store: store},
		Connection: services.ConnectionService{Store: store},
		Reconcile:  a.Reconcile,
	}

	if n, err := store.PendingCount(ctx); err == nil {
		metrics.SetPending(n)
	}
	if a.Monitor.ProbeAndRemember(ctx) {
		if err := db.EnsureSchema(ctx, sqlDB); err != nil {
			logger := utils.Logger("app")
			logger.Warn().Err(err).Msg("schema check failed")
		}
	}
	return a, nil
}

// afterSync refreshes the schedule snapshot once bookings have landed, so
// offline availability reflects what was just committed.
func (a *App) afterSync(ctx context.Context, res models.SyncResult) {
	if res.BookingsSynced == 0 {
		return
	}
	if _, err := a.Schedules.RefreshCache(ctx); err != nil {
		logger := utils.Logger("app")
		logger.Warn().Err(err).Msg("snapshot refresh after sync failed")
	}
}

func (a *App) Router() *gin.Engine {
	return api.NewRouter(api.Deps{
		Env:      a.Env,
		Handlers: a.Handlers,
		Prober:   a.Monitor,
		Tokens:   a.Auth,
	})
}

// SyncOnce reconciles when the authority is reachable and something is
// pending. ran reports whether a run actually happened.
func (a *App) SyncOnce(ctx context.Context) (res models.SyncResult, ran bool, err error) {
	pending, err := a.Store.PendingCount(ctx)
	if err != nil {
		return res, false, err
	}
	if pending == 0 || !a.Monitor.ProbeAndRemember(ctx) {
		return res, false, nil
	}
	res, err = a.Reconcile.Run(ctx)
	return res, true, err
}

// RunSyncLoop calls SyncOnce every interval until ctx ends. A zero interval
// disables background sync.
func (a *App) RunSyncLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	logger := utils.Logger("sync")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res, ran, err := a.SyncOnce(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				logger.Warn().Err(err).Msg("background sync failed")
				continue
			}
			if ran {
				logger.Info().
					Int("users", res.UsersSynced).
					Int("bookings", res.BookingsSynced).
					Int("errors", len(res.Errors)).
					Msg("background sync finished")
			}
		}
	}
}

// Close releases the store and the pool. Safe to call once.
func (a *App) Close() error {
	var errs []error
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close offline store: %w", err))
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close authority db: %w", err))
		}
	}
	return errors.Join(errs...)
}
