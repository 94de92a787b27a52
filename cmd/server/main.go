package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/lifecycle"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/password"
	"github.com/fastygo/taskboard/pkg/token"
	"github.com/fastygo/taskboard/repository"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	taskUC "github.com/fastygo/taskboard/usecase/task"
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

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.WaitForSignal(context.Background())
	defer stop()

	fail := func(msg string, err error) {
		_ = manager.Shutdown(context.Background())
		zapLogger.Fatal(msg, zap.Error(err))
	}

	st, err := openStores(appCtx, cfg, manager, zapLogger)
	if err != nil {
		fail("store initialisation failed", err)
	}

	mon := monitor.New(cfg.Health.Interval, zapLogger)
	mon.Add(cfg.StoreDriver, st.ping, 0)

	var profileCache repository.ProfileCache
	if cfg.Redis.URL != "" {
		redisClient, err := redisInfra.NewClient(cfg.Redis)
		if err != nil {
			fail("redis connection failed", err)
		}
		manager.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})
		profileCache = redisRepo.NewProfileCache(redisClient, cfg.Redis.TTL)
		mon.Add("redis", redisInfra.Ping(redisClient), 0)
	} else {
		zapLogger.Info("profile cache disabled")
	}

	if err := mon.Start(); err != nil {
		fail("monitor start failed", err)
	}
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	tokens, err := token.NewService(cfg.JWT.Secret,
		token.WithIssuer(cfg.JWT.Issuer),
		token.WithTTL(cfg.JWT.TokenTTL),
	)
	if err != nil {
		fail("token service init failed", err)
	}
	hasher := password.New(cfg.Security.BcryptCost)

	authUseCase := authUC.New(st.users, hasher, tokens, zapLogger)
	profileUseCase := profileUC.New(st.users, profileCache, zapLogger)
	taskUseCase := taskUC.New(st.tasks, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	handler := router.New(handlers,
		middleware.JWTAuth(tokens, zapLogger),
		middleware.AccessLog(zapLogger),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	server := &fasthttp.Server{
		Handler:            handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("env", cfg.Environment),
			zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			fail("server crashed", err)
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
