package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/config"
	"github.com/civicvoice/civicvoice-backend/internal/handler"
	"github.com/civicvoice/civicvoice-backend/internal/middleware"
	"github.com/civicvoice/civicvoice-backend/internal/migration"
	"github.com/civicvoice/civicvoice-backend/internal/repository"
	"github.com/civicvoice/civicvoice-backend/internal/routes"
	"github.com/civicvoice/civicvoice-backend/internal/service"
	pkgcache "github.com/civicvoice/civicvoice-backend/pkg/cache"
	"github.com/civicvoice/civicvoice-backend/pkg/jwt"
	pkglogger "github.com/civicvoice/civicvoice-backend/pkg/logger"
	pkgredis "github.com/civicvoice/civicvoice-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           CivicVoice Backend API
// @version         1.0
// @description     Civic public comment platform with automated moderation
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// MySQL
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db); err != nil {
		pkglogger.Warn("Migration warning: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		stats := sqlDB.Stats()
		middleware.SetDBConnectionsActive(float64(stats.OpenConnections))
	}

	// Redis
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
		pkglogger.Info("Cache service initialized")
	}

	// JWT Manager
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenTTL.Std())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	logRepo := repository.NewModerationLogRepository(db)
	recRepo := repository.NewRecommendationRepository(db)
	configRepo := repository.NewSystemConfigRepository(db)

	// Moderation pipeline
	piiDetector := service.NewPIIDetector()
	profanityFilter := buildProfanityFilter(cfg)
	var classifier service.RiskClassifier
	if cfg.Moderation.APIKey != "" {
		classifier = service.NewOpenAIClassifier(cfg.Moderation.APIBase, cfg.Moderation.APIKey, cfg.Moderation.Timeout.Std())
		pkglogger.Info("Risk classifier enabled (endpoint: %s)", cfg.Moderation.APIBase)
	} else {
		pkglogger.Warn("OPENAI_API_KEY not set; risk classification disabled")
	}

	moderationSvc := service.NewModerationService(piiDetector, profanityFilter, classifier)
	moderationSvc.SetConfigRepo(configRepo)

	queueSvc := service.NewModerationQueueService(commentRepo, logRepo, userRepo, moderationSvc)
	commentSvc := service.NewCommentService(commentRepo, meetingRepo, userRepo, queueSvc, cfg.RateLimit.CommentsPerDay)
	meetingSvc := service.NewMeetingService(meetingRepo)
	authSvc := service.NewAuthService(userRepo, redisClient, jwtManager, cfg.RateLimit.OTPPerHour)
	recSvc := service.NewRecommendationService(recRepo, moderationSvc, cfg.RateLimit.RecsPerWeek)
	councilSvc := service.NewCouncilService(commentRepo, meetingRepo, userRepo)

	if cacheService != nil {
		queueSvc.SetCacheService(cacheService)
		meetingSvc.SetCacheService(cacheService)
		recSvc.SetCacheService(cacheService)
		councilSvc.SetCacheService(cacheService)
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	meetingHandler := handler.NewMeetingHandler(meetingSvc)
	moderationHandler := handler.NewModerationHandler(queueSvc, moderationSvc)
	recHandler := handler.NewRecommendationHandler(recSvc)
	councilHandler := handler.NewCouncilHandler(councilSvc)

	// Router
	if env != "local" && env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           86400,
	}
	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = []string{origins}
	}
	router.Use(cors.New(corsConfig))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	if redisClient != nil && env != "local" && env != "development" {
		rateCfg := middleware.DefaultRateLimitConfig()
		rateCfg.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
		router.Use(middleware.RateLimit(redisClient, rateCfg))
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "civicvoice-backend",
			"time":    time.Now().Unix(),
		})
	})

	routes.Setup(router,
		authHandler,
		commentHandler,
		meetingHandler,
		moderationHandler,
		recHandler,
		councilHandler,
		jwtManager,
		redisClient,
	)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func buildProfanityFilter(cfg *config.Config) *service.ProfanityFilter {
	if cfg.Moderation.BlocklistPath != "" {
		filter, err := service.NewProfanityFilterFromFile(cfg.Moderation.BlocklistPath)
		if err != nil {
			pkglogger.Warn("Failed to load blocklist %s: %v (using defaults)", cfg.Moderation.BlocklistPath, err)
		} else {
			return filter
		}
	}
	return service.NewProfanityFilter(nil)
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}
	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
