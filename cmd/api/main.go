package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/icdstack/terminal/internal/app/migrate"
	"github.com/icdstack/terminal/internal/clock"
	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/eventbus"
	"github.com/icdstack/terminal/internal/facility"
	httpx "github.com/icdstack/terminal/internal/http"
	"github.com/icdstack/terminal/internal/repository/postgres"
	"github.com/icdstack/terminal/internal/service/container"
	"github.com/icdstack/terminal/internal/service/yard"
	"github.com/icdstack/terminal/internal/ws"
	"github.com/icdstack/terminal/pkg/config"
	"github.com/icdstack/terminal/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", slog.LevelInfo)
	log.Info("starting terminal api", "env", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The engines are authoritative in memory; postgres is an optional
	// write-behind snapshot store.
	var (
		pool     *pgxpool.Pool
		dbHealth func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
		if err != nil {
			log.Error("failed to configure migrations", "error", err)
			os.Exit(1)
		}
		defer runner.Close()
		if err := runner.Ping(ctx); err != nil {
			log.Error("database ping failed", "error", err)
			os.Exit(1)
		}
		if err := runner.Ensure(ctx); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		dbHealth = pool.Ping
	} else {
		log.Warn("DATABASE_URL not set, running without persistence")
	}

	clk := clock.NewSystem()
	bus := eventbus.New(
		eventbus.WithClock(clk),
		eventbus.WithLogger(log),
		eventbus.WithHistory(cfg.EventHistoryLimit),
		eventbus.WithAsyncBuffer(cfg.EventAsyncBuffer),
	)
	defer bus.Dispose()

	facilities := facility.NewManager(clk, log)
	facilities.BindBus(bus)

	containerOpts := []container.Option{
		container.WithClock(clk),
		container.WithLogger(log),
		container.WithFreeDays(cfg.FreeStorageDays),
	}
	yardOpts := []yard.Option{
		yard.WithClock(clk),
		yard.WithLogger(log),
	}
	if pool != nil {
		containerOpts = append(containerOpts, container.WithStore(postgres.NewContainerStore(pool)))
		yardOpts = append(yardOpts, yard.WithStore(postgres.NewWorkOrderStore(pool)))
	}
	containers := container.New(bus, facilities, containerOpts...)
	yardEngine := yard.New(bus, facilities, containers, yardOpts...)

	if config.GetBool("AUTO_GROUNDING", false) {
		unsubscribe := yardEngine.AutoGround(ctx)
		defer unsubscribe()
	}
	if config.GetBool("SEED_DEMO_YARD", false) {
		seedDemoYard(facilities, cfg.DefaultTenantID, log)
	}

	if pool != nil {
		events := postgres.NewEventStore(pool)
		unsubscribe := bus.Subscribe("*", func(e domain.Event) {
			if err := events.AppendEvent(context.Background(), e); err != nil {
				log.Error("event journal append failed", "type", e.Type, "error", err)
			}
		}, eventbus.Async())
		defer unsubscribe()
	}

	hub := ws.NewHub()
	unbridge := ws.Bridge(bus, hub, log)
	defer unbridge()

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, containers, yardEngine, facilities, bus, hub, limiter, dbHealth)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

// seedDemoYard creates a small facility layout so a fresh instance can take
// traffic without topology setup calls.
func seedDemoYard(facilities *facility.Manager, tenantID string, log *slog.Logger) {
	f := facilities.AddFacility(tenantID, "ICD1", "Demo Inland Depot", 2000)
	general := facilities.AddZone(f.ID, "GEN", "General Stacking", domain.ZoneGeneral, 4)
	reefer := facilities.AddZone(f.ID, "REF", "Reefer Yard", domain.ZoneReefer, 2)
	hazmat := facilities.AddZone(f.ID, "HAZ", "Hazmat Segregation", domain.ZoneHazmat, 2)

	specs := []struct {
		zoneID string
		spec   facility.BlockSpec
	}{
		{general.ID, facility.BlockSpec{Code: "A", Name: "Block A", Rows: 10, SlotsPerRow: 20}},
		{general.ID, facility.BlockSpec{Code: "B", Name: "Block B", Rows: 10, SlotsPerRow: 20}},
		{reefer.ID, facility.BlockSpec{Code: "R", Name: "Reefer Block", Rows: 4, SlotsPerRow: 10}},
		{hazmat.ID, facility.BlockSpec{Code: "H", Name: "Hazmat Block", Rows: 4, SlotsPerRow: 8}},
	}
	for _, s := range specs {
		if _, err := facilities.AddBlock(s.zoneID, s.spec); err != nil {
			log.Error("seed block failed", "code", s.spec.Code, "error", err)
		}
	}
	log.Info("demo yard seeded", "facility", f.ID)
}
