// README: Entry point; loads config, wires stores and services, runs the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"swiftcab/internal/config"
	httptransport "swiftcab/internal/http"
	"swiftcab/internal/infra"
	"swiftcab/internal/logging"
	"swiftcab/internal/maps"
	"swiftcab/internal/modules/account"
	"swiftcab/internal/modules/auth"
	"swiftcab/internal/modules/fare"
	"swiftcab/internal/modules/ride"
	"swiftcab/internal/notify"
	"swiftcab/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres and Redis when configured, in-memory otherwise.
	// The in-memory path is for local development; nothing survives a
	// restart there.
	var (
		accountStore account.Store
		rideStore    ride.Store
		redisClient  *redis.Client
		blacklist    auth.Blacklist
	)
	var pool *pgxpool.Pool
	if cfg.DB.DSN != "" {
		pool, err = infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		accountStore = account.NewPostgresStore(pool)
		rideStore = ride.NewPostgresStore(pool)
	} else {
		logger.Warn("no database configured, using in-memory stores")
		accountStore = account.NewMemoryStore()
		rideStore = ride.NewMemoryStore()
	}
	switch {
	case cfg.Redis.Addr != "":
		redisClient = infra.NewRedis(cfg.Redis.Addr)
		blacklist = auth.NewRedisBlacklist(redisClient)
	case pool != nil:
		blacklist = auth.NewPostgresBlacklist(pool)
	default:
		blacklist = auth.NewMemoryBlacklist()
	}

	var dispatcher notify.Dispatcher
	if cfg.Kafka.Brokers != "" {
		kd := notify.NewKafkaDispatcher(strings.Split(cfg.Kafka.Brokers, ","), cfg.Kafka.Topic)
		defer kd.Close()
		dispatcher = kd
	} else {
		dispatcher = &notify.LogDispatcher{Logger: logger}
	}

	var provider maps.DistanceProvider
	if cfg.Maps.APIKey != "" {
		provider, err = maps.NewGoogleProvider(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps: %v", err)
		}
	} else {
		logger.Warn("no maps API key, using static distances")
		provider = maps.StaticProvider{DistanceKm: 5, DurationMin: 15}
	}

	accounts := account.NewService(accountStore, dispatcher, cfg.Phone.CountryCode, logger)
	guard := auth.NewGuard(cfg.Auth, accountStore, blacklist)
	fares := fare.NewService(provider)
	gateway := realtime.NewGateway(realtime.NewRegistry(), accountStore, rideStore, redisClient, logger)
	rides := ride.NewService(rideStore, fares, accountStore, dispatcher, gateway, cfg.Admin.Email, logger)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Accounts: accounts,
		Rides:    rides,
		Guard:    guard,
		Gateway:  gateway,
		Logger:   logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
