package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"study_mentor_backend/internal/config"
	"study_mentor_backend/internal/controller"
	"study_mentor_backend/internal/repository"
	"study_mentor_backend/internal/service"
	"study_mentor_backend/pkg/database"
	"study_mentor_backend/pkg/logger"
	"study_mentor_backend/pkg/monitoring"
	"study_mentor_backend/pkg/security"
	"study_mentor_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	goal       *repository.GoalRepository
	roadmap    *repository.RoadmapRepository
	dailyTask  *repository.DailyTaskRepository
	submission *repository.SubmissionRepository
}

type services struct {
	ai       *service.AIService
	youtube  *service.YouTubeService
	mentor   *service.MentorService
	resource *service.ResourceService
	roadmap  *service.RoadmapService
	goal     *service.GoalService
	task     *service.TaskService
	progress *service.ProgressService
	chat     *service.ChatService
	auth     *service.AuthService
	user     *service.UserService
	storage  *service.StorageService
}

type controllers struct {
	auth     *controller.AuthController
	user     *controller.UserController
	goal     *controller.GoalController
	roadmap  *controller.RoadmapController
	task     *controller.TaskController
	progress *controller.ProgressController
	chat     *controller.ChatController
	health   *controller.HealthController
}

// RegisterConfigCallback hooks a listener into config hot reloads.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig fans a reloaded config out to all registered listeners.
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		goal:       repository.NewGoalRepository(db),
		roadmap:    repository.NewRoadmapRepository(db),
		dailyTask:  repository.NewDailyTaskRepository(db),
		submission: repository.NewSubmissionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)
	s.youtube = service.NewYouTubeService(cfg.YouTube)
	s.mentor = service.NewMentorService(s.ai)
	s.resource = service.NewResourceService(s.youtube, s.mentor)
	s.storage = service.NewStorageService(cfg)

	s.roadmap = service.NewRoadmapService(repos.roadmap)
	s.goal = service.NewGoalService(repos.user, repos.goal, s.roadmap, s.mentor)
	s.task = service.NewTaskService(repos.dailyTask, repos.submission, repos.goal, s.roadmap, s.resource, s.mentor, db)
	s.progress = service.NewProgressService(repos.dailyTask, repos.submission, repos.goal, s.mentor, rdb)
	s.chat = service.NewChatService(repos.goal, repos.dailyTask, s.mentor)

	s.auth = service.NewAuthService(repos.user, cfg.JWT)
	s.user = service.NewUserService(repos.user, repos.goal)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		user:     controller.NewUserController(s.user),
		goal:     controller.NewGoalController(s.goal),
		roadmap:  controller.NewRoadmapController(s.roadmap),
		task:     controller.NewTaskController(s.task, s.storage),
		progress: controller.NewProgressController(s.progress),
		chat:     controller.NewChatController(s.chat),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
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

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("database init failed", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("redis init failed", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	svcs := app.initServices(repos, cfg, db, rdb)
	app.services = svcs
	ctrls := app.initControllers(svcs, db, rdb)

	// The AI client follows config hot reloads.
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		svcs.ai.UpdateConfig(newCfg.AI)
	})

	monitoring.Init()

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("study-mentor", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Error("tracer init failed", zap.Error(err))
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, repos)

	if cfg.Storage.Type != "minio" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown:", err)
	}

	logger.Log.Sync()
}
