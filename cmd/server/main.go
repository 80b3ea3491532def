package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskdeck/backend/api/handler"
	"github.com/taskdeck/backend/internal/config"
	"github.com/taskdeck/backend/internal/infrastructure/journal"
	"github.com/taskdeck/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskdeck/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskdeck/backend/internal/infrastructure/redis"
	"github.com/taskdeck/backend/internal/middleware"
	"github.com/taskdeck/backend/internal/router"
	"github.com/taskdeck/backend/internal/services"
	"github.com/taskdeck/backend/internal/services/lifecycle"
	"github.com/taskdeck/backend/pkg/httpcontext"
	"github.com/taskdeck/backend/pkg/logger"
	"github.com/taskdeck/backend/repository/cached"
	"github.com/taskdeck/backend/repository/postgres"
	redisRepo "github.com/taskdeck/backend/repository/redis"
	authUC "github.com/taskdeck/backend/usecase/auth"
	lookupUC "github.com/taskdeck/backend/usecase/lookup"
	ruleUC "github.com/taskdeck/backend/usecase/rule"
	taskUC "github.com/taskdeck/backend/usecase/task"
	tenantUC "github.com/taskdeck/backend/usecase/tenant"
	userUC "github.com/taskdeck/backend/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.RegisterCloser("redis", redisClient)

	journalStore, err := journal.Open(cfg.Journal.Path, "journal")
	if err != nil {
		zapLogger.Fatal("failed to open audit journal", zap.Error(err))
	}
	manager.RegisterCloser("journal", journalStore)

	mon := monitor.New(pool, redisClient, journalStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	sweeper := services.NewJournalSweeper(journalStore, zapLogger, services.SweeperConfig{
		Interval:  cfg.Journal.SweepInterval,
		Retention: cfg.Journal.Retention,
	})
	sweeper.Start()
	manager.Register("journal_sweeper", func(ctx context.Context) error {
		sweeper.Stop(ctx)
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	ruleRepo := postgres.NewRuleRepository(pool)
	lookupRepo := postgres.NewLookupRepository(pool)
	tenantRepo := postgres.NewTenantRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.SessionTTL)

	taskRepo := cached.New(postgres.NewTaskStore(pool), cached.Options{
		TTL:    cfg.Cache.TaskTTL,
		Logger: zapLogger,
	})

	recorder := journal.NewRecorder(journalStore, zapLogger)

	authUseCase := authUC.New(userRepo, sessionRepo, cfg.Auth.JWTSecret, authUC.Options{
		TokenTTL:   cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     zapLogger,
	})
	taskUseCase := taskUC.New(taskRepo, userRepo, ruleRepo, taskUC.Options{
		Journal: recorder,
		Logger:  zapLogger,
	})
	userUseCase := userUC.New(userRepo, userUC.Options{
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     zapLogger,
	})
	ruleUseCase := ruleUC.New(ruleRepo, zapLogger)
	lookupUseCase := lookupUC.New(lookupRepo, zapLogger)
	tenantUseCase := tenantUC.New(tenantRepo, cfg.Auth.AdminKey, tenantUC.Options{
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     zapLogger,
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		User:   apiHandler.NewUserHandler(userUseCase, ctxAdapter, zapLogger),
		Rule:   apiHandler.NewRuleHandler(ruleUseCase, ctxAdapter, zapLogger),
		Lookup: apiHandler.NewLookupHandler(lookupUseCase, ctxAdapter, zapLogger),
		Tenant: apiHandler.NewTenantHandler(tenantUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	resolveTenant := middleware.ResolveTenant(tenantUseCase, middleware.TenantConfig{
		BaseDomain: cfg.Tenant.BaseDomain,
	}, zapLogger)
	authenticate := middleware.Authenticate(authUseCase, zapLogger)

	r := router.New(handlers, resolveTenant, authenticate)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
