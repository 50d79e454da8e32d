// README: Entry point; loads config, wires stores and services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"privatehire/internal/config"
	"privatehire/internal/events"
	httptransport "privatehire/internal/http"
	"privatehire/internal/infra"
	"privatehire/internal/kv"
	"privatehire/internal/logging"
	"privatehire/internal/modules/booking"
	"privatehire/internal/modules/chat"
	"privatehire/internal/modules/fleet"
	"privatehire/internal/modules/history"
	"privatehire/internal/modules/pricing"
	"privatehire/internal/modules/routing"
	"privatehire/internal/modules/trip"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.LevelError).Error("invalid configuration", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log logging.Logger) error {
	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.KV.Backend == config.KVRedis {
		redisClient, err = infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	store, closeStore, err := newKVStore(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStore()

	pool, err := newDriverPool(ctx, redisClient)
	if err != nil {
		return err
	}

	publisher := events.Publisher(events.NewLogPublisher(log))
	if cfg.Events.AMQPURL != "" {
		rp, err := events.DialRabbit(cfg.Events.AMQPURL, log)
		if err != nil {
			return err
		}
		defer rp.Close()
		publisher = rp
	}

	fleetSvc := fleet.NewService(pool, fleet.RandomPicker())
	historyStore := history.NewStore(store)
	tripSvc := trip.NewService(trip.Deps{
		Store:   trip.NewStore(store),
		Archive: historyStore,
		Drivers: fleetSvc,
		Events:  publisher,
		Log:     log,
	})
	chatSvc := chat.NewService(tripSvc, nil)
	tripSvc.OnArchive(chatSvc.CloseTrip)

	routeClient, err := newRoutingClient(cfg.Routing)
	if err != nil {
		return err
	}
	calc := routing.NewCalculator(routeClient, pricing.NewService(), cfg.Routing.Timeout, log)

	gin.SetMode(gin.ReleaseMode)
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Booking:  booking.NewService(calc, fleetSvc, tripSvc, log),
		Trips:    tripSvc,
		Chat:     chatSvc,
		History:  historyStore,
		Fleet:    fleetSvc,
		Verifier: verifier,
		Log:      log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTP.Addr, "kv_backend", cfg.KV.Backend, "routing", cfg.Routing.Provider)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}

func newVerifier(ctx context.Context, cfg config.Config) (infra.TokenVerifier, error) {
	if cfg.Auth.Mode == config.AuthFirebase {
		return infra.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseProjectID, cfg.Auth.FirebaseCredentialsFile)
	}
	return infra.NewJWTVerifier(cfg.Auth.JWTSecret), nil
}

func newKVStore(ctx context.Context, cfg config.Config, redisClient *redis.Client) (kv.Store, func(), error) {
	switch cfg.KV.Backend {
	case config.KVRedis:
		return kv.NewRedisStore(redisClient, "privatehire:"), func() {}, nil
	case config.KVPostgres:
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}
		pg := kv.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return pg, db.Close, nil
	default:
		return kv.NewMemoryStore(), func() {}, nil
	}
}

// newDriverPool seeds the default drivers. With Redis the pool is shared and survives
// restarts.
func newDriverPool(ctx context.Context, redisClient *redis.Client) (fleet.DriverPool, error) {
	if redisClient == nil {
		return fleet.NewStaticDriverPool(fleet.DefaultDrivers()...), nil
	}
	pool := fleet.NewRedisDriverPool(redisClient)
	for _, d := range fleet.DefaultDrivers() {
		if err := pool.Seed(ctx, d); err != nil {
			return nil, err
		}
	}
	return pool, nil
}

func newRoutingClient(cfg config.RoutingConfig) (routing.Client, error) {
	if cfg.Provider == config.RoutingGoogle {
		g, err := routing.NewGoogleClient(cfg.GoogleKey)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return routing.NewOSRMClient(cfg.OSRMURL), nil
}
