package app

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"quizify_backend/internal/config"
	"quizify_backend/internal/controller"
	"quizify_backend/internal/repository"
	"quizify_backend/internal/service"
	"quizify_backend/internal/util"
	"quizify_backend/pkg/configwatcher"
	"quizify_backend/pkg/database"
	"quizify_backend/pkg/logger"
	"quizify_backend/pkg/monitoring"
	"quizify_backend/pkg/security"
	"quizify_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionPurgeInterval = 5 * time.Minute
	tokenPurgeInterval   = time.Hour
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	KV     database.KVStore

	services        *services
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	quiz *repository.QuizStore
	user *repository.UserRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	classifier *service.ClassifierService
	document   *service.DocumentService
	quiz       *service.QuizService
	session    *service.SessionService
	results    *service.ResultsService
}

type controllers struct {
	auth      *controller.AuthController
	health    *controller.HealthController
	quiz      *controller.QuizController
	document  *controller.DocumentController
	session   *controller.SessionController
	attempt   *controller.AttemptController
	dashboard *controller.DashboardController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// initBackends connects the database and redis only when the selected store needs them.
func (a *App) initBackends(cfg *config.Config) error {
	switch cfg.Store.Type {
	case "mysql":
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}
		a.DB = db
	case "redis":
		rdb, err := database.InitRedis(a.ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("initialize redis: %w", err)
		}
		a.Redis = rdb
	}

	kv, err := database.NewKVStore(cfg, a.DB, a.Redis)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	a.KV = kv
	return nil
}

func (a *App) initRepositories() (*repositories, error) {
	repos := &repositories{
		quiz: repository.NewQuizStore(a.KV),
		user: repository.NewUserRepository(a.KV),
	}
	if err := repos.quiz.Load(a.ctx); err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	if err := repos.user.Load(a.ctx); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return repos, nil
}

func (a *App) initServices(repos *repositories, cfg *config.Config) (*services, error) {
	s := &services{}

	classifier, err := service.NewClassifierService()
	if err != nil {
		return nil, err
	}
	s.classifier = classifier

	s.storage = service.NewStorageService(a.ctx, cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.document = service.NewDocumentService(s.classifier, service.NewQuestionPoolAssembler(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))), s.storage)
	s.quiz = service.NewQuizService(repos.quiz)
	s.session = service.NewSessionService(repos.quiz)
	s.results = service.NewResultsService(repos.quiz)

	return s, nil
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		health:    controller.NewHealthController(a.KV, s.session),
		quiz:      controller.NewQuizController(s.quiz),
		document:  controller.NewDocumentController(s.document),
		session:   controller.NewSessionController(s.session),
		attempt:   controller.NewAttemptController(s.results),
		dashboard: controller.NewDashboardController(s.results),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	go s.session.RunPurger(a.ctx, sessionPurgeInterval)

	go func() {
		ticker := time.NewTicker(tokenPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-ticker.C:
				if n := s.auth.PurgeRevoked(); n > 0 {
					logger.Log.Debug("Purged expired revocations", zap.Int("count", n))
				}
			}
		}
	}()

	if a.Config.Server.WatchConfig && a.Config.File != "" {
		go func() {
			err := configwatcher.WatchConfig(a.ctx, a.Config.File, func(newCfg *config.Config) {
				for _, cb := range a.configCallbacks {
					cb(newCfg)
				}
			})
			if err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}
}

// build wires everything behind the router. It is split from NewApp so tests
// can construct an App without the file logger or process exit on error.
func build(ctx context.Context, cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(ctx)
	app := &App{Config: cfg, ctx: ctx, cancel: cancel}

	if err := app.initBackends(cfg); err != nil {
		cancel()
		return nil, err
	}
	repos, err := app.initRepositories()
	if err != nil {
		cancel()
		return nil, err
	}
	services, err := app.initServices(repos, cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	app.services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, services, cfg)

	if cfg.Storage.Type == util.StorageLocal || cfg.Storage.Type == "" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
		logger.Log.Info("Config reloaded", zap.String("mode", newCfg.Server.Mode))
	})
	app.startBackgroundTasks(services)

	return app, nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	app, err := build(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
	}
	return app
}

// Close stops background work and releases tracing and backend connections.
func (a *App) Close() {
	a.cancel()

	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close()
	logger.Log.Info("Server exiting")
}
