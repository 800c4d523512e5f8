package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitQuestAPI/handlers"
	"fitQuestAPI/internal/notification"
	"fitQuestAPI/internal/workers"
	"fitQuestAPI/middleware"
	"fitQuestAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	progressService     *services.ProgressService
	userService         *services.UserService
	workoutService      *services.WorkoutService
	challengeService    *services.ChallengeService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
		fcmService = nil
	} else {
		log.Println("FCM Push Provider initialized successfully")
	}

	notificationService = services.NewNotificationService(dbPool, fcmService)
	progressService = services.NewProgressService(dbPool)
	userService = services.NewUserService(dbPool, progressService, notificationService)
	workoutService = services.NewWorkoutService(dbPool, progressService, notificationService)
	challengeService = services.NewChallengeService(dbPool, progressService, notificationService)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService, progressService)
	workoutHandler := handlers.NewWorkoutHandler(workoutService, progressService, userHandler)
	challengeHandler := handlers.NewChallengeHandler(challengeService, userHandler)
	notificationHandler := handlers.NewNotificationHandler(notificationService, userHandler)
	webhookHandler := handlers.NewWebhookHandler(userService)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workers.StartSettlementWorker(workerCtx, challengeService, time.Hour)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "fitQuest-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.CreateUser).Methods("POST")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/friends", userHandler.GetFriends).Methods("GET")
	protected.HandleFunc("/user/friends", userHandler.AddFriend).Methods("POST")
	protected.HandleFunc("/user/friends", userHandler.RemoveFriend).Methods("DELETE")
	protected.HandleFunc("/user/leaderboard", userHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/user/badges", userHandler.GetBadges).Methods("GET")
	protected.HandleFunc("/user/badges/check", userHandler.CheckBadges).Methods("POST")

	protected.HandleFunc("/workouts", workoutHandler.GetWorkouts).Methods("GET")
	protected.HandleFunc("/workouts", workoutHandler.SaveWorkout).Methods("POST")
	protected.HandleFunc("/workouts/{id}", workoutHandler.GetWorkout).Methods("GET")
	protected.HandleFunc("/workouts/{id}", workoutHandler.DeleteWorkout).Methods("DELETE")

	protected.HandleFunc("/progress", workoutHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/progress/reconcile", workoutHandler.ReconcileProgress).Methods("POST")
	protected.HandleFunc("/progress/daily-login", workoutHandler.DailyLogin).Methods("POST")

	protected.HandleFunc("/challenges", challengeHandler.GetChallenges).Methods("GET")
	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges/types", challengeHandler.GetChallengeTypes).Methods("GET")
	protected.HandleFunc("/challenges/{id}", challengeHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{id}/accept", challengeHandler.AcceptChallenge).Methods("PUT")
	protected.HandleFunc("/challenges/{id}/decline", challengeHandler.DeclineChallenge).Methods("PUT")
	protected.HandleFunc("/challenges/{id}/cancel", challengeHandler.CancelChallenge).Methods("PUT")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllRead).Methods("PUT")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDeviceToken).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
