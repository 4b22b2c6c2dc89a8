package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/crucial707/opificio-cmms/internal/assistant"
	"github.com/crucial707/opificio-cmms/internal/config"
	"github.com/crucial707/opificio-cmms/internal/db"
	"github.com/crucial707/opificio-cmms/internal/handlers"
	"github.com/crucial707/opificio-cmms/internal/labor"
	mw "github.com/crucial707/opificio-cmms/internal/middleware"
	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/crucial707/opificio-cmms/internal/repo"
	"github.com/crucial707/opificio-cmms/internal/scan"
	"github.com/crucial707/opificio-cmms/internal/scheduler"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		log.Fatal("JWT_SECRET must be set in prod")
	}

	setupLogger(cfg.LogFormat)

	// Connect to database FIRST
	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)

	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	migrateURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err := db.Run(migrateURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repos and services
	userRepo := repo.NewUserRepo(database)
	assetRepo := repo.NewAssetRepo(database)
	scheduleRepo := repo.NewScheduleRepo(database)
	workOrderRepo := repo.NewWorkOrderRepo(database)
	partRepo := repo.NewPartRepo(database)
	meterRepo := repo.NewMeterRepo(database)
	auditRepo := repo.NewAuditRepo(database)

	timer := labor.NewTimer(database)
	engine := scan.NewEngine(database)

	// Handlers
	authH := &handlers.AuthHandler{UserRepo: userRepo, Secret: []byte(cfg.JWTSecret), JWTExpireHours: cfg.JWTExpireHours}
	assetH := &handlers.AssetHandler{Repo: assetRepo, Audit: auditRepo}
	scheduleH := &handlers.ScheduleHandler{Repo: scheduleRepo, Audit: auditRepo}
	workOrderH := &handlers.WorkOrderHandler{Repo: workOrderRepo, Timer: timer, Audit: auditRepo}
	laborH := &handlers.LaborHandler{Timer: timer}
	partH := &handlers.PartHandler{Repo: partRepo, Audit: auditRepo}
	meterH := &handlers.MeterHandler{Repo: meterRepo}
	auditH := &handlers.AuditHandler{Repo: auditRepo}
	scanH := &handlers.ScanHandler{Engine: engine, BatchLimit: cfg.ScanBatchLimit}
	assistantH := &handlers.AssistantHandler{Responder: assistant.New()}
	userH := &handlers.UserHandler{Repo: userRepo, Audit: auditRepo}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.Recoverer)
	r.Use(mw.RequestLog)
	r.Use(mw.Prometheus)
	r.Use(mw.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(mw.CORS(cfg.CORSAllowedOrigins))
	r.Use(mw.MaxBytes(mw.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	// Auth (rate limited)
	authLimiter := mw.AuthRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
	})

	// Authenticated API
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.JWTMiddleware([]byte(cfg.JWTSecret)))

		// Reads for all roles
		r.Get("/assets", assetH.ListAssets)
		r.Get("/assets/{id}", assetH.GetAsset)
		r.Get("/assets/{id}/readings", meterH.ListReadings)
		r.Get("/assets/{id}/readings/latest", meterH.LatestReadings)
		r.Get("/schedules", scheduleH.ListSchedules)
		r.Get("/schedules/{id}", scheduleH.GetSchedule)
		r.Get("/workorders", workOrderH.ListWorkOrders)
		r.Get("/workorders/{id}", workOrderH.GetWorkOrder)
		r.Get("/workorders/{id}/labor", laborH.ListSessions)
		r.Get("/parts", partH.ListParts)
		r.Get("/parts/{id}", partH.GetPart)
		r.Post("/assistant", assistantH.Ask)

		// Any authenticated user can submit a work request; viewers land in
		// PENDING_APPROVAL (enforced in the handler).
		r.Post("/workorders", workOrderH.CreateWorkOrder)

		// Technician and admin mutations
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(models.RoleTechnician))
			r.Post("/assets", assetH.CreateAsset)
			r.Put("/assets/{id}", assetH.UpdateAsset)
			r.Delete("/assets/{id}", assetH.DeleteAsset)
			r.Post("/assets/{id}/readings", meterH.RecordReading)
			r.Post("/schedules", scheduleH.CreateSchedule)
			r.Put("/schedules/{id}", scheduleH.UpdateSchedule)
			r.Put("/workorders/{id}", workOrderH.UpdateWorkOrder)
			r.Post("/workorders/{id}/status", workOrderH.TransitionStatus)
			r.Post("/workorders/{id}/timer/start", laborH.StartTimer)
			r.Post("/workorders/{id}/timer/pause", laborH.PauseTimer)
			r.Post("/workorders/{id}/timer/stop", laborH.StopTimer)
			r.Post("/parts", partH.CreatePart)
			r.Put("/parts/{id}", partH.UpdatePart)
			r.Post("/parts/{id}/adjust", partH.AdjustStock)
			r.Get("/scan/run", scanH.RunScan)
			r.Post("/scan/run", scanH.RunScan)
		})

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole())
			r.Delete("/schedules/{id}", scheduleH.DeleteSchedule)
			r.Delete("/parts/{id}", partH.DeletePart)
			r.Get("/audit", auditH.ListAudit)
			r.Get("/users", userH.ListUsers)
			r.Get("/users/{id}", userH.GetUser)
			r.Put("/users/{id}/role", userH.UpdateRole)
			r.Delete("/users/{id}", userH.DeleteUser)
		})
	})

	// Background preventive scan
	if c := scheduler.Run(cfg.ScanCron, engine, cfg.ScanBatchLimit); c != nil {
		defer c.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	slog.Info("starting API", "port", cfg.Port, "env", cfg.Env)
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil {
		log.Fatal(err)
	}
}

// setupLogger configures slog globally; json format for log aggregation.
func setupLogger(format string) {
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}
}
