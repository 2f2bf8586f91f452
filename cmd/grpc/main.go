package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/school-inventory-service/config"
	"github.com/fekuna/school-inventory-service/migrations"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	inventoryv1 "github.com/fekuna/school-inventory-service/api/inventory/v1"
	"github.com/fekuna/school-inventory-service/pkg/broker"
	"github.com/fekuna/school-inventory-service/pkg/cache"
	"github.com/fekuna/school-inventory-service/pkg/database"
	"github.com/fekuna/school-inventory-service/pkg/database/memory"
	"github.com/fekuna/school-inventory-service/pkg/database/postgres"
	"github.com/fekuna/school-inventory-service/pkg/lock"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"github.com/fekuna/school-inventory-service/pkg/metrics"
	"github.com/fekuna/school-inventory-service/pkg/middleware"
	"github.com/fekuna/school-inventory-service/pkg/search"
	"github.com/fekuna/school-inventory-service/pkg/tracing"

	"github.com/fekuna/school-inventory-service/internal/category"
	catH "github.com/fekuna/school-inventory-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/school-inventory-service/internal/category/repository"
	catUCPkg "github.com/fekuna/school-inventory-service/internal/category/usecase"

	"github.com/fekuna/school-inventory-service/internal/distribution"
	distH "github.com/fekuna/school-inventory-service/internal/distribution/handler"
	distRepoPkg "github.com/fekuna/school-inventory-service/internal/distribution/repository"
	distUCPkg "github.com/fekuna/school-inventory-service/internal/distribution/usecase"

	"github.com/fekuna/school-inventory-service/internal/item"
	itemH "github.com/fekuna/school-inventory-service/internal/item/handler"
	itemRepoPkg "github.com/fekuna/school-inventory-service/internal/item/repository"
	itemUCPkg "github.com/fekuna/school-inventory-service/internal/item/usecase"

	"github.com/fekuna/school-inventory-service/internal/replenishment"
	repH "github.com/fekuna/school-inventory-service/internal/replenishment/handler"
	repListenerPkg "github.com/fekuna/school-inventory-service/internal/replenishment/listener"
	repRepoPkg "github.com/fekuna/school-inventory-service/internal/replenishment/repository"
	repUCPkg "github.com/fekuna/school-inventory-service/internal/replenishment/usecase"

	"github.com/fekuna/school-inventory-service/internal/stock"
	stockH "github.com/fekuna/school-inventory-service/internal/stock/handler"
	stockRepoPkg "github.com/fekuna/school-inventory-service/internal/stock/repository"
	stockUCPkg "github.com/fekuna/school-inventory-service/internal/stock/usecase"
)

const serviceName = "school-inventory-service"

type repositories struct {
	tx            database.TxManager
	categories    category.Repository
	items         item.Repository
	stock         stock.Repository
	distribution  distribution.Repository
	replenishment replenishment.Repository
	ping          func(ctx context.Context) error
}

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing and metrics
	shutdownTracing, err := tracing.Setup(ctx, &tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "v1",
		Endpoint:       cfg.Tracing.Endpoint,
		AuthHeader:     cfg.Tracing.AuthHeader,
		Insecure:       cfg.IsDevelopment(),
	})
	if err != nil {
		appLogger.Fatal("Could not set up tracing", zap.Error(err))
	}
	appMetrics := metrics.New()

	// 4. Storage
	var repos *repositories
	switch cfg.Storage.Driver {
	case "memory":
		repos = memoryRepositories()
		appLogger.Warn("Using in-memory storage, data is lost on restart")
	case "postgres":
		db := connectPostgres(cfg, appLogger)
		defer db.Close()
		repos = postgresRepositories(db)
	default:
		appLogger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}

	// 5. Redis: item cache and distributed locks
	var (
		itemCache   cache.Cache = cache.NewNop()
		redisClient *cache.RedisClient
	)
	redisClient, err = cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		if cfg.Lock.Backend == "redis" {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		appLogger.Warn("Redis unavailable, item cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		itemCache = redisClient
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	var locker lock.Locker
	switch cfg.Lock.Backend {
	case "redis":
		locker = lock.NewRedisLocker(redisClient, lock.RedisConfig{
			TTL:        time.Duration(cfg.Lock.TTLSeconds) * time.Second,
			Retries:    cfg.Lock.Retries,
			RetryDelay: time.Duration(cfg.Lock.RetryDelayMS) * time.Millisecond,
		})
	case "local":
		if cfg.Storage.Driver == "postgres" {
			appLogger.Warn("Local locks only serialize this replica; run a single instance or use LOCK_BACKEND=redis")
		}
		locker = lock.NewLocalLocker()
	default:
		appLogger.Fatal("Unknown lock backend", zap.String("backend", cfg.Lock.Backend))
	}

	// 6. Kafka producer for stock events
	var publisher broker.Publisher = broker.NewNopPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.StockTopic,
		})
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.StockTopic))
	}
	defer publisher.Close()

	// 7. Elasticsearch
	var esClient *search.Client
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, item search falls back to the database", zap.Error(err))
			esClient = nil
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 8. Initialize UseCases
	stockUC := stockUCPkg.NewStockUseCase(repos.stock, repos.tx, locker, itemCache, publisher, appMetrics, appLogger, cfg.Stock.AllowInactiveMovement)
	itemUC := itemUCPkg.NewItemUseCase(repos.items, stockUC, repos.tx, itemCache,
		time.Duration(cfg.Redis.ItemTTLSeconds)*time.Second, esClient, cfg.Elastic.Index, appLogger)
	distUC := distUCPkg.NewDistributionUseCase(repos.distribution, repos.items, stockUC, locker, appMetrics, appLogger)
	repUC := repUCPkg.NewReplenishmentUseCase(repos.replenishment, repos.items, stockUC, appMetrics, appLogger)
	catUC := catUCPkg.NewCategoryUseCase(repos.categories, repos.items, appLogger)

	// 9. Supplier delivery listener
	if len(cfg.Kafka.Brokers) > 0 {
		consumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.DeliveriesTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		go repListenerPkg.NewDeliveryListener(consumer, repUC, appLogger).Start(ctx)
	}

	// 10. Start gRPC Server
	port := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", port), zap.Error(err))
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RecoveryInterceptor(appLogger),
			middleware.LoggingInterceptor(appLogger, appMetrics),
		),
	)

	inventoryv1.RegisterCategoryServiceServer(grpcServer, catH.NewCategoryHandler(catUC, appLogger))
	inventoryv1.RegisterItemServiceServer(grpcServer, itemH.NewItemHandler(itemUC, appLogger))
	inventoryv1.RegisterStockServiceServer(grpcServer, stockH.NewStockHandler(stockUC, appLogger))
	inventoryv1.RegisterDistributionServiceServer(grpcServer, distH.NewDistributionHandler(distUC, appLogger))
	inventoryv1.RegisterReplenishmentServiceServer(grpcServer, repH.NewReplenishmentHandler(repUC, appLogger))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", port))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// 11. Ops HTTP server
	opsServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           opsRouter(appMetrics, repos.ping),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		appLogger.Info("Starting ops HTTP server", zap.String("addr", opsServer.Addr))
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("ops server failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("ops server shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Warn("tracing shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func connectPostgres(cfg *config.Config, log logger.ZapLogger) *sqlx.DB {
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		log.Fatal("Could not connect to database", zap.Error(err))
	}
	log.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(db, migrations.FS); err != nil {
			log.Fatal("Could not apply migrations", zap.Error(err))
		}
		log.Info("Database migrations applied")
	}
	return db
}

func postgresRepositories(db *sqlx.DB) *repositories {
	return &repositories{
		tx:            postgres.NewTxManager(db),
		categories:    catRepoPkg.NewPGRepository(db),
		items:         itemRepoPkg.NewPGRepository(db),
		stock:         stockRepoPkg.NewPGRepository(db),
		distribution:  distRepoPkg.NewPGRepository(db),
		replenishment: repRepoPkg.NewPGRepository(db),
		ping:          db.PingContext,
	}
}

func memoryRepositories() *repositories {
	store := memory.NewStore()
	items := itemRepoPkg.NewMemoryRepository(store)
	return &repositories{
		tx:            store,
		categories:    catRepoPkg.NewMemoryRepository(store),
		items:         items,
		stock:         stockRepoPkg.NewMemoryRepository(store, items),
		distribution:  distRepoPkg.NewMemoryRepository(store),
		replenishment: repRepoPkg.NewMemoryRepository(store),
		ping:          func(context.Context) error { return nil },
	}
}

func opsRouter(m *metrics.Metrics, ping func(ctx context.Context) error) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
