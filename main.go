package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resolveAPI/handlers"
	"resolveAPI/internal/auth"
	"resolveAPI/internal/config"
	"resolveAPI/internal/lock"
	"resolveAPI/internal/notification"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/store"
	"resolveAPI/internal/store/postgres"
	"resolveAPI/internal/store/sqlite"
	"resolveAPI/middleware"
	"resolveAPI/services"

	_ "net/http/pprof"
)

const (
	habitLockTTL      = 10 * time.Second
	dispatcherWorkers = 4
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	appLog, err := logger.New(cfg.AppEnv, cfg.LogFile)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	if err := run(cfg, appLog); err != nil {
		appLog.Error("server exited with error", "error", err)
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Sync()
}

// run returns setup and serve errors instead of exiting, so its deferred closes always run.
func run(cfg *config.Config, appLog *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		appLog.Info("closing store")
		st.Close()
	}()
	appLog.Info("store ready", "driver", cfg.StoreDriver)

	locker, closeLocker, err := newLocker(cfg, appLog)
	if err != nil {
		return fmt.Errorf("failed to initialize %s habit lock: %w", cfg.LockBackend, err)
	}
	defer closeLocker()

	var verifier auth.Verifier
	switch cfg.AuthMode {
	case config.AuthModeClerk:
		clerk.SetKey(cfg.ClerkSecretKey)
		verifier = auth.NewClerkVerifier()
		appLog.Info("Clerk initialized successfully")
	default:
		verifier = auth.NewLocalVerifier(cfg.LocalJWTSecret)
		appLog.Warn("using local HS256 session tokens", "auth_mode", cfg.AuthMode)
	}

	services.InitMetrics(prometheus.DefaultRegisterer)
	middleware.InitPrometheus(prometheus.DefaultRegisterer)

	clock := services.NewClock(cfg.Location)

	dispatcher := services.NewNotificationDispatcher(st, appLog, dispatcherWorkers)
	defer dispatcher.Stop()
	if cfg.FCMCredentialsFile == "" {
		appLog.Info("FCM_CREDENTIALS_FILE not set, push notifications disabled")
	} else if fcmService, err := notification.NewFCMService(ctx, appLog, cfg.FCMCredentialsFile); err != nil {
		appLog.Warn("could not initialize FCM", "error", err)
	} else {
		dispatcher.SetPushProvider(fcmService)
		appLog.Info("FCM push provider initialized successfully")
	}

	notificationService := services.NewNotificationService(st, dispatcher, appLog)
	profileService := services.NewProfileService(st, appLog)
	goalService := services.NewGoalService(st, clock, appLog)
	habitService := services.NewHabitService(st, goalService, clock, appLog)
	streakService := services.NewStreakService(st, clock, appLog)
	completionService := services.NewCompletionService(st, locker, goalService, streakService, notificationService, clock, appLog)
	routineService := services.NewRoutineService(st, clock, appLog)

	profileHandler := handlers.NewProfileHandler(profileService, appLog)
	goalHandler := handlers.NewGoalHandler(goalService, appLog)
	habitHandler := handlers.NewHabitHandler(habitService, streakService, clock, appLog)
	completionHandler := handlers.NewCompletionHandler(completionService, appLog)
	routineHandler := handlers.NewRoutineHandler(routineService, appLog)
	notificationHandler := handlers.NewNotificationHandler(notificationService, appLog)
	webhookHandler, err := handlers.NewWebhookHandler(profileService, cfg.ClerkWebhookSecret, appLog)
	if err != nil {
		return fmt.Errorf("failed to initialize webhook handler: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.CleanupVisitors(ctx)

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()
	standardRouter.Use(limiter.Middleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "resolve-api"}`))
	}).Methods("GET")

	standardRouter.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(verifier, appLog))

	protected.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PUT")

	protected.HandleFunc("/goals", goalHandler.ListGoals).Methods("GET")
	protected.HandleFunc("/goals", goalHandler.CreateGoal).Methods("POST")
	protected.HandleFunc("/goals/{id}", goalHandler.GetGoal).Methods("GET")
	protected.HandleFunc("/goals/{id}", goalHandler.UpdateGoal).Methods("PUT")
	protected.HandleFunc("/goals/{id}/recompute", goalHandler.RecomputeProgress).Methods("POST")

	protected.HandleFunc("/habits", habitHandler.ListHabits).Methods("GET")
	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}", habitHandler.GetHabit).Methods("GET")
	protected.HandleFunc("/habits/{id}", habitHandler.UpdateHabit).Methods("PUT")
	protected.HandleFunc("/habits/{id}/toggle", completionHandler.Toggle).Methods("POST")
	protected.HandleFunc("/habits/{id}/track", completionHandler.Track).Methods("POST")
	protected.HandleFunc("/habits/{id}/completions/{date}", completionHandler.SetValue).Methods("PUT")
	protected.HandleFunc("/habits/{id}/completions/{date}", completionHandler.Remove).Methods("DELETE")
	protected.HandleFunc("/habits/{id}/calendar", habitHandler.GetCalendar).Methods("GET")
	protected.HandleFunc("/habits/{id}/streak", habitHandler.GetStreak).Methods("GET")
	protected.HandleFunc("/habits/{id}/stats", habitHandler.GetStats).Methods("GET")

	protected.HandleFunc("/streaks", habitHandler.GetAllStreaks).Methods("GET")
	protected.HandleFunc("/today", routineHandler.GetToday).Methods("GET")
	protected.HandleFunc("/routine", routineHandler.GetWeek).Methods("GET")

	protected.HandleFunc("/notifications/devices", notificationHandler.RegisterDevice).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLog.Info("starting server", "addr", server.Addr, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("error starting server: %w", err)
	case <-ctx.Done():
		appLog.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server shutdown error", "error", err)
	}

	appLog.Info("server shutdown complete")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var (
		st  store.Store
		err error
	)
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		st, err = sqlite.Open(ctx, cfg.SQLitePath)
	case config.StoreDriverPostgres:
		st, err = postgres.New(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return st, nil
}

func newLocker(cfg *config.Config, log *logger.Logger) (lock.Locker, func(), error) {
	if cfg.LockBackend != config.LockBackendRedis {
		return lock.NewMemory(), func() {}, nil
	}
	r, err := lock.NewRedis(log, cfg.RedisAddr, habitLockTTL)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}
