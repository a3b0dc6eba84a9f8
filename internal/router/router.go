package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/profitboysub0-max/social-music-app/internal/handlers"
	"github.com/profitboysub0-max/social-music-app/internal/middleware"
	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
	"github.com/profitboysub0-max/social-music-app/internal/services"
	"github.com/profitboysub0-max/social-music-app/pkg/config"
	"github.com/profitboysub0-max/social-music-app/pkg/logger"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes wires repositories, services and handlers, and registers
// all application routes. Returns the push service so main can drain
// it on shutdown.
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client) *services.PushService {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Like{},
		&models.Repost{},
		&models.Comment{},
		&models.Share{},
		&models.Notification{},
		&models.Presence{},
		&models.PlaybackState{},
		&models.PushSubscription{},
	)
	if err != nil {
		logger.Error(err)
		panic(err)
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database("socialmusic"))
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	repostRepo := repositories.NewPostgresRepostRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	shareRepo := repositories.NewPostgresShareRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	presenceRepo := repositories.NewPostgresPresenceRepository(pgdb)
	playbackRepo := repositories.NewPostgresPlaybackRepository(pgdb)
	pushSubRepo := repositories.NewPostgresPushSubscriptionRepository(pgdb)

	// --- Services ---
	identity := services.NewIdentityResolver(userRepo, cfg.AvatarBaseURL)
	pushService := services.NewPushService(services.PushOptions{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		Subscriber:      cfg.VAPIDSubscriber,
	}, notificationRepo, pushSubRepo, identity, nil)
	engine := services.NewNotificationService(notificationRepo, followRepo, userRepo, identity, pushService)
	presenceService := services.NewPresenceService(presenceRepo, followRepo, identity, engine)
	engagement := services.NewEngagementService(postRepo, likeRepo, repostRepo, commentRepo, followRepo, shareRepo, userRepo, identity, engine)
	feedService := services.NewFeedService(postRepo, userRepo, followRepo, likeRepo, repostRepo, presenceService, identity)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Read routes; anonymous viewers allowed ---
	public := e.Group("/api/v1")
	public.Use(middleware.OptionalJWTMiddleware(cfg.JWTSecret))

	userHandler := handlers.NewUserHandler(userRepo, identity, presenceService)
	userHandler.RegisterUserRoutes(public)

	postHandler := handlers.NewPostHandler(postRepo)
	postHandler.RegisterPublicPostRoutes(public)

	feedHandler := handlers.NewFeedHandler(feedService)
	feedHandler.RegisterFeedRoutes(public)

	commentHandler := handlers.NewCommentHandler(commentRepo, engagement)
	commentHandler.RegisterPublicCommentRoutes(public)

	pushHandler := handlers.NewPushHandler(pushSubRepo, cfg.VAPIDPublicKey)
	pushHandler.RegisterPublicPushRoutes(public)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	userHandler.RegisterProfileRoutes(api)
	postHandler.RegisterPostRoutes(api)
	commentHandler.RegisterCommentRoutes(api)
	pushHandler.RegisterPushRoutes(api)

	engagementHandler := handlers.NewEngagementHandler(engagement)
	engagementHandler.RegisterEngagementRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, engagement)
	followHandler.RegisterFollowRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, identity)
	notificationHandler.RegisterNotificationRoutes(api)

	playbackHandler := handlers.NewPlaybackHandler(playbackRepo, presenceService)
	playbackHandler.RegisterPlaybackRoutes(api)

	adminHandler := handlers.NewAdminHandler(userRepo, engine)
	adminHandler.RegisterAdminRoutes(api)

	logger.Info("all routes configured")
	return pushService
}
