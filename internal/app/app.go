package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"placement_portal_backend/internal/config"
	"placement_portal_backend/internal/controller"
	"placement_portal_backend/internal/repository"
	"placement_portal_backend/internal/service"
	"placement_portal_backend/pkg/configwatcher"
	"placement_portal_backend/pkg/database"
	"placement_portal_backend/pkg/logger"
	"placement_portal_backend/pkg/monitoring"
	"placement_portal_backend/pkg/security"
	"placement_portal_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
	cron     *cron.Cron
}

type repositories struct {
	user         *repository.UserRepository
	quiz         *repository.QuizRepository
	attempt      *repository.AttemptRepository
	announcement *repository.AnnouncementRepository
	job          *repository.JobPostingRepository
}

type services struct {
	auth         *service.AuthService
	quiz         *service.QuizService
	attempt      *service.AttemptService
	hub          *service.SessionHub
	storage      *service.StorageService
	announcement *service.AnnouncementService
	job          *service.JobPostingService
}

type controllers struct {
	auth         *controller.AuthController
	quiz         *controller.QuizController
	attempt      *controller.AttemptController
	announcement *controller.AnnouncementController
	job          *controller.JobController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		quiz:         repository.NewQuizRepository(db),
		attempt:      repository.NewAttemptRepository(db),
		announcement: repository.NewAnnouncementRepository(db),
		job:          repository.NewJobPostingRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	quizService := service.NewQuizService(repos.quiz, rdb, cfg.Quiz.DefinitionCacheTTL, logger.Log)
	attemptService := service.NewAttemptService(repos.attempt, quizService, logger.Log)
	hub := service.NewSessionHub(attemptService,
		time.Duration(cfg.Quiz.SessionSweepMinutes)*time.Minute, logger.Log)

	return &services{
		auth:         service.NewAuthService(repos.user, cfg),
		quiz:         quizService,
		attempt:      attemptService,
		hub:          hub,
		storage:      service.NewStorageService(cfg),
		announcement: service.NewAnnouncementService(repos.announcement),
		job:          service.NewJobPostingService(repos.job),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		quiz:         controller.NewQuizController(s.quiz, s.attempt, s.storage),
		attempt:      controller.NewAttemptController(s.hub, s.attempt, s.quiz),
		announcement: controller.NewAnnouncementController(s.announcement),
		job:          controller.NewJobController(s.job),
		health:       controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the session hub's sweep loop and the expired
// attempt reaper. The reaper is the safety net for crashed or abandoned
// sessions: any timed attempt whose window ran out gets graded and closed on
// the next tick.
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	go s.hub.Run()

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(next interface{}) {
		if reloaded, ok := next.(*config.Config); ok {
			a.Config = reloaded
			logger.Log.Info("configuration reloaded")
		}
	})

	a.cron = cron.New()
	if _, err := a.cron.AddFunc(cfg.Quiz.ReaperSpec, func() {
		if _, err := s.attempt.ProcessExpiredAttempts(); err != nil {
			logger.Log.Error("expired attempt reaper failed", zap.Error(err))
		}
	}); err != nil {
		logger.Log.Fatal("invalid reaper schedule", zap.String("spec", cfg.Quiz.ReaperSpec), zap.Error(err))
	}
	a.cron.Start()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("placement-portal", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	if !cfg.MigrateOnly {
		app.startBackgroundTasks(services, cfg)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop the reaper and close live sessions so their timers are released
	// before the listener goes away. Open attempts stay open in the database;
	// the reaper finalizes timed ones on the next start.
	if a.cron != nil {
		a.cron.Stop()
	}
	if a.services != nil && a.services.hub != nil {
		a.services.hub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
