package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	clerk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/go-co-op/gocron/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coliseumAPI/handlers"
	"coliseumAPI/internal/config"
	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/firebaseapp"
	"coliseumAPI/internal/logger"
	"coliseumAPI/internal/metrics"
	"coliseumAPI/internal/notification"
	"coliseumAPI/internal/objectstore"
	"coliseumAPI/internal/thumbnail"
	"coliseumAPI/middleware"
	"coliseumAPI/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Development)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logr.Sync()

	clerk.SetKey(cfg.ClerkSecretKey)
	logr.Info("Clerk initialized successfully")

	metrics.Register()
	middleware.InitPrometheus()

	initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer initCancel()

	app, err := firebaseapp.New(initCtx, cfg, logr)
	if err != nil {
		logr.Fatalw("Failed to initialize Firebase", "error", err)
	}

	firestoreClient, err := app.Firestore(initCtx)
	if err != nil {
		logr.Fatalw("Failed to create Firestore client", "error", err)
	}
	defer firestoreClient.Close()
	store := docstore.NewFirestoreStore(firestoreClient)

	storage, err := newObjectStorage(initCtx, cfg, app)
	if err != nil {
		logr.Fatalw("Failed to initialize object storage", "error", err)
	}

	var dbPool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		dbPool, err = newPool(initCtx, cfg.DatabaseURL)
		if err != nil {
			logr.Fatalw("Failed to connect to workouts database", "error", err)
		}
		defer func() {
			logr.Info("Closing database connection pool...")
			dbPool.Close()
		}()
	} else {
		logr.Warn("DATABASE_URL not set, workout routes are disabled")
	}

	// Services
	userService := services.NewUserService(store, logr)
	notificationService := services.NewNotificationService(store, userService, logr)

	messagingClient, err := app.Messaging(initCtx)
	if err != nil {
		logr.Warnw("Could not initialize FCM, push delivery disabled", "error", err)
	} else {
		notificationService.SetPushProvider(notification.NewFCMService(messagingClient, logr))
		logr.Info("FCM Push Provider initialized successfully")
	}

	dispatcher := services.NewNotificationDispatcher(notificationService, cfg.NotifyWorkers, logr)

	buddyService := services.NewBuddyService(store, userService, dispatcher, logr)
	contactService := services.NewContactService(userService, logr)
	walletService := services.NewWalletService(store, logr)
	challengeService := services.NewChallengeService(store, userService, buddyService, walletService, dispatcher, logr)

	workoutService := services.NewWorkoutService(dbPool, logr)
	if dbPool != nil {
		if err := workoutService.EnsureSchema(initCtx); err != nil {
			logr.Fatalw("Failed to prepare workouts schema", "error", err)
		}
	}

	thumbnailService := services.NewThumbnailService(
		store,
		storage,
		thumbnail.NewClient(cfg.ThumbnailAPIURL),
		thumbnail.NewCache(),
		cfg.ThumbnailBatchSize,
		cfg.ThumbnailBatchDelay,
		logr,
	)

	var scheduler gocron.Scheduler
	if cfg.ThumbnailAPIURL != "" && cfg.ThumbnailRescanInterval > 0 {
		scheduler, err = thumbnailService.StartThumbnailRescan(cfg.ThumbnailRescanInterval)
		if err != nil {
			logr.Fatalw("Failed to start thumbnail scheduler", "error", err)
		}
		logr.Infow("Thumbnail rescan scheduled", "interval", cfg.ThumbnailRescanInterval)
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(store, logr)
	userHandler := handlers.NewUserHandler(userService, logr)
	contactHandler := handlers.NewContactHandler(contactService, userService, logr)
	buddyHandler := handlers.NewBuddyHandler(buddyService, logr)
	challengeHandler := handlers.NewChallengeHandler(challengeService, walletService, logr)
	workoutHandler := handlers.NewWorkoutHandler(workoutService, logr)
	coliseumHandler := handlers.NewColiseumHandler(thumbnailService, logr)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logr)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	rateLimiter := middleware.NewRateLimiter(10, 20)
	go rateLimiter.Cleanup(rootCtx, 3*time.Minute)

	r := mux.NewRouter()
	r.Use(rateLimiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler())).Methods("GET")
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware(middleware.ClerkVerifier, logr))

	protected.HandleFunc("/user", userHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/search", userHandler.SearchUsers).Methods("GET")

	protected.HandleFunc("/contacts/scan", contactHandler.ScanContacts).Methods("POST")

	protected.HandleFunc("/buddies", buddyHandler.GetLists).Methods("GET")
	protected.HandleFunc("/buddies/confirmed", buddyHandler.GetConfirmed).Methods("GET")
	protected.HandleFunc("/buddies/pending", buddyHandler.GetPending).Methods("GET")
	protected.HandleFunc("/buddies/incoming", buddyHandler.GetIncoming).Methods("GET")
	protected.HandleFunc("/buddies/requests", buddyHandler.SendRequest).Methods("POST")
	protected.HandleFunc("/buddies/requests/{id}/respond", buddyHandler.Respond).Methods("POST")
	protected.HandleFunc("/buddies/{id}/encourage", buddyHandler.Encourage).Methods("POST")

	protected.HandleFunc("/challenges", challengeHandler.ListChallenges).Methods("GET")
	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges/wager-preview", challengeHandler.PreviewWager).Methods("POST")
	protected.HandleFunc("/wallet/connect", challengeHandler.ConnectWallet).Methods("POST")

	protected.HandleFunc("/workouts", workoutHandler.ListWorkouts).Methods("GET")
	protected.HandleFunc("/workouts", workoutHandler.LogWorkout).Methods("POST")
	protected.HandleFunc("/workouts/recommendation", workoutHandler.GetRecommendation).Methods("GET")

	protected.HandleFunc("/coliseum/{id}/thumbnail", coliseumHandler.GetThumbnail).Methods("GET")

	admin := protected.PathPrefix("/coliseum/thumbnails").Subrouter()
	admin.Use(middleware.RequireAdmin(cfg.AdminUserIDs))
	admin.HandleFunc("/enhance", coliseumHandler.EnhanceThumbnails).Methods("POST")
	admin.HandleFunc("/cache", coliseumHandler.ClearThumbnailCache).Methods("DELETE")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	port := ":" + cfg.Port
	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 6 * time.Minute, // enhancement passes run inside the request
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logr.Infow("Starting server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatalw("Error starting server", "error", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logr.Infow("Got signal", "signal", sig)
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Errorw("Server shutdown error", "error", err)
	}
	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			logr.Errorw("Scheduler shutdown error", "error", err)
		}
	}
	dispatcher.Stop()

	logr.Info("Server shutdown complete")
}

func newPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func newObjectStorage(ctx context.Context, cfg *config.Config, app *firebase.App) (objectstore.Storage, error) {
	if cfg.StorageBackend == "s3" {
		return objectstore.NewS3Storage(ctx, objectstore.S3Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKeyID:   cfg.S3AccessKeyID,
			AccessSecret:  cfg.S3AccessSecret,
			Bucket:        cfg.StorageBucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.StorageBucket)
	if err != nil {
		return nil, err
	}
	return objectstore.NewGCSStorage(bucket, cfg.StorageBucket), nil
}
