package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servswap/config"
	"servswap/cron"
	"servswap/database"
	connectionRepo "servswap/database/repository/connection"
	feedRepo "servswap/database/repository/feed"
	messageRepo "servswap/database/repository/message"
	notificationRepo "servswap/database/repository/notification"
	serviceRepo "servswap/database/repository/service"
	swapRepo "servswap/database/repository/swap"
	userRepoPkg "servswap/database/repository/user"
	"servswap/handlers"
	"servswap/middleware"
	"servswap/routes"
	"servswap/services/admin"
	"servswap/services/assistant"
	"servswap/services/connection"
	"servswap/services/feed"
	"servswap/services/marketplace"
	"servswap/services/messaging"
	"servswap/services/notification"
	"servswap/services/storage"
	"servswap/services/subscription"
	"servswap/services/swap"
	"servswap/services/user"
	"servswap/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()
	defer utils.FirebaseClose()
	stripe.Key = config.AppConfig.StripeSecretKey

	store, err := storage.New(rootCtx)
	if err != nil {
		logger.Fatal("main: failed to initialize storage", zap.Error(err))
	}

	queue := cron.NewClient()
	defer queue.Close()

	// repositories.
	db := database.DB()
	users := userRepoPkg.NewMongoUserRepo(db)
	services := serviceRepo.NewMongoServiceRepo(db)
	swaps := swapRepo.NewMongoSwapRepo(db)
	posts := feedRepo.NewMongoFeedRepo(db)
	connections := connectionRepo.NewMongoConnectionRepo(db)
	messages := messageRepo.NewMongoMessageRepo(db)
	notifications := notificationRepo.NewMongoNotificationRepo(db)

	// services.
	notificationService := &notification.DefaultNotificationService{
		Repo:  notifications,
		Users: users,
		Push:  utils.FCMClient,
	}
	subscriptionService := &subscription.DefaultSubscriptionService{
		Users:               users,
		Swaps:               swaps,
		Gateway:             subscription.StripeGateway{},
		Notifier:            notificationService,
		Queue:               queue,
		WebhookSecret:       config.AppConfig.StripeWebhookSecret,
		PremiumPriceID:      config.AppConfig.StripePremiumPriceID,
		VerificationPriceID: config.AppConfig.StripeVerificationPriceID,
		BaseURL:             config.AppConfig.AppBaseURL,
	}
	marketplaceService := &marketplace.DefaultMarketplaceService{
		Services: services,
		Swaps:    swaps,
		Users:    users,
		Storage:  store,
	}
	swapService := &swap.DefaultSwapService{
		Swaps:    swaps,
		Services: services,
		Users:    users,
		Notifier: notificationService,
	}
	connectionService := &connection.DefaultConnectionService{
		Connections: connections,
		Users:       users,
		Notifier:    notificationService,
	}
	messagingService := &messaging.DefaultMessagingService{
		Store:       messages,
		Connections: connections,
		Swaps:       swaps,
		Users:       users,
		Notifier:    notificationService,
	}
	if utils.FirestoreClient != nil {
		messagingService.Mirror = messaging.NewFirestoreMirror(utils.FirestoreClient)
	}
	feedService := &feed.DefaultFeedService{
		Posts:       posts,
		Users:       users,
		Services:    services,
		Connections: connections,
		Notifier:    notificationService,
		Queue:       queue,
		Cache:       feed.NewRedisExploreCache(utils.GetCacheClient()),
	}
	userService := &user.DefaultUserService{
		Repo:      users,
		Verifier:  utils.FirebaseAuth,
		Storage:   store,
		Billing:   subscriptionService,
		Cleaners:  []user.AccountCleaner{marketplaceService, swapService, connectionService, notificationService},
		AuthCache: utils.GetAuthCacheClient(),
	}
	adminService := &admin.DefaultAdminService{
		Users:    users,
		Services: services,
		Swaps:    swaps,
		Posts:    posts,
		Sessions: userService,
		Listings: marketplaceService,
	}

	var llm assistant.Generator
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gemini, err := assistant.NewGeminiClient(rootCtx, key)
		if err != nil {
			logger.Warn("main: assistant LLM disabled", zap.Error(err))
		} else {
			defer gemini.Close()
			llm = gemini
		}
	}
	var speech assistant.Transcriber
	if config.AppConfig.SpeechEnabled {
		st, err := assistant.NewSpeechTranscriber(rootCtx, option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsPath))
		if err != nil {
			logger.Warn("main: voice questions disabled", zap.Error(err))
		} else {
			defer st.Close()
			speech = st
		}
	}
	assistantService := assistant.NewDefaultAssistantService(
		assistant.NewRedisContextStore(utils.GetAssistantCacheClient(), assistant.ContextTTL),
		llm,
		speech,
	)

	// background work.
	worker := cron.StartWorker(rootCtx, &cron.Handlers{
		Users:       users,
		Connections: connections,
		Notifier:    notificationService,
	})
	utils.StartHealthMonitor(rootCtx, utils.RedisClients(), database.MongoClient)

	handlerBundle := &handlers.HandlerBundle{
		Auth:          &handlers.AuthHandler{Users: userService},
		Users:         &handlers.UserHandler{Users: userService, Swaps: swapService},
		Services:      &handlers.ServiceHandler{Marketplace: marketplaceService},
		Swaps:         &handlers.SwapHandler{Swaps: swapService},
		Feed:          &handlers.FeedHandler{Feed: feedService},
		Connections:   &handlers.ConnectionHandler{Connections: connectionService, Messaging: messagingService},
		Notifications: &handlers.NotificationHandler{Notifications: notificationService},
		Subscriptions: &handlers.SubscriptionHandler{Subscriptions: subscriptionService},
		Assistant:     &handlers.AssistantHandler{Assistant: assistantService},
		Admin:         &handlers.AdminHandler{Admin: adminService},
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := middleware.TrustProxies(router, config.AppConfig.TrustedProxies); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.NewRateLimiter(config.AppConfig.MaxRequestsPerMin).Middleware())

	routes.RegisterRoutes(router, handlerBundle, routes.Guards{
		User:  middleware.JWTAuthUserMiddleware(users, utils.GetAuthCacheClient()),
		Admin: middleware.AdminKeyMiddleware(config.AppConfig.AdminKeyHash),
	})

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := database.Close(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
