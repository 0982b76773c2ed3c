package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/disnaker/sipelan/internal/audit"
	complaintapi "github.com/disnaker/sipelan/internal/complaint/api"
	complaintinfra "github.com/disnaker/sipelan/internal/complaint/infrastructure"
	"github.com/disnaker/sipelan/internal/complaint/service"
	"github.com/disnaker/sipelan/internal/legacy"
	"github.com/disnaker/sipelan/internal/notification"
	"github.com/disnaker/sipelan/internal/shared/auth"
	"github.com/disnaker/sipelan/internal/shared/config"
	"github.com/disnaker/sipelan/internal/shared/database"
	"github.com/disnaker/sipelan/internal/shared/events"
	"github.com/disnaker/sipelan/internal/shared/metrics"
	secmiddleware "github.com/disnaker/sipelan/internal/shared/middleware"
	"github.com/disnaker/sipelan/internal/unit"
)

// App holds application dependencies
type App struct {
	Config *config.Config
	DB     *database.DB
	Bus    *events.Bus
}

func main() {
	importLegacy := flag.Bool("import-legacy", false, "import complaints from the legacy SQL Server database and exit")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := &App{Config: cfg}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database not available: %v\n", err)
		os.Exit(1)
	}
	app.DB = db
	defer db.Close()

	if err := database.Migrate(ctx, db.Pool); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	complaintRepo := complaintinfra.NewPostgresRepository(db.Pool)
	categoryRepo := complaintinfra.NewCategoryRepository(db.Pool)
	unitRepo := unit.NewRepository(db.Pool)

	if *importLegacy {
		runLegacyImport(ctx, cfg, complaintRepo, categoryRepo)
		return
	}

	// Event bus is optional: without it the audit trail is disabled but
	// the workflow runs normally.
	var bus events.EventBus
	if cfg.EventStore.Enabled {
		b, err := events.NewBus(ctx, cfg.EventStore)
		if err != nil {
			fmt.Printf("Warning: EventStoreDB not available: %v\n", err)
			fmt.Println("Running without event streaming and audit trail...")
		} else {
			app.Bus = b
			bus = b
			defer b.Close()
			fmt.Println("EventStoreDB event bus initialized")
		}
	}

	notifier := notification.NewService(
		notification.ProviderFromConfig(cfg.SMTP),
		notification.DefaultServiceConfig(),
	)
	if err := notifier.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start notification service: %v\n", err)
		os.Exit(1)
	}
	defer notifier.Stop()

	workflow := service.NewWorkflow(complaintRepo, categoryRepo, unitRepo, notifier, bus)

	complaintHandler := complaintapi.NewHandler(workflow, categoryRepo)
	unitHandler := unit.NewHandler(unitRepo, cfg.Auth)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())
	r.Get("/", infoHandler)

	publicLimiter := secmiddleware.NewIPRateLimiter(cfg.RateLimit.PublicRPS, cfg.RateLimit.PublicBurst)

	r.Route("/api/v1", func(r chi.Router) {
		// Public surface: intake, tracking and login, rate limited per IP.
		r.Group(func(r chi.Router) {
			r.Use(publicLimiter.Middleware)
			complaintHandler.RegisterPublic(r)
			r.Post("/auth/login", unitHandler.Login)
		})

		// Staff surface behind JWT auth.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth))
			r.Use(auth.RequireRoles(auth.RoleAdmin, auth.RoleStaff))

			complaintHandler.Register(r)
			r.Mount("/units", unitHandler.UnitRoutes())
			r.Mount("/staff", unitHandler.StaffRoutes())

			if app.Bus != nil {
				auditRepo := audit.NewRepository(db.Pool)
				if err := auditRepo.Initialize(ctx); err != nil {
					fmt.Printf("Warning: audit initialization failed: %v\n", err)
				} else {
					auditHandler := audit.NewHandler(auditRepo)
					r.Mount("/audit", auditHandler.Routes())

					auditSubscriber := audit.NewSubscriber(auditRepo, app.Bus)
					if err := auditSubscriber.Start(ctx); err != nil {
						fmt.Printf("Warning: audit subscriber failed to start: %v\n", err)
					} else {
						fmt.Println("Audit subscriber started")
					}
				}
			}
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		close(done)
	}()

	fmt.Println("============================================")
	fmt.Println("SIPelan - Sistem Pengaduan Ketenagakerjaan")
	fmt.Println("============================================")
	fmt.Printf("Environment: %s\n", cfg.Server.Env)
	fmt.Printf("Server:      http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:         http://localhost:%d/api/v1\n", cfg.Server.Port)
	fmt.Printf("Health:      http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

func runLegacyImport(ctx context.Context, cfg *config.Config, repo *complaintinfra.PostgresRepository, categories *complaintinfra.CategoryRepository) {
	if cfg.Legacy.DSN == "" {
		fmt.Fprintln(os.Stderr, "LEGACY_MSSQL_DSN is not set")
		os.Exit(1)
	}

	importer, err := legacy.NewImporter(cfg.Legacy.DSN, repo, categories)
	if err != nil {
		fmt.Fprintf(os.Stderr, "legacy import: %v\n", err)
		os.Exit(1)
	}
	defer importer.Close()

	result, err := importer.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "legacy import: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Legacy import done: %d imported, %d skipped, %d failed\n",
		result.Imported, result.Skipped, result.Failed)
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":    "SIPelan",
		"version": "1.0.0",
		"docs":    "/api/v1",
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		checks := map[string]string{}
		ready := true

		if err := app.DB.Health(r.Context()); err != nil {
			checks["database"] = err.Error()
			ready = false
		} else {
			checks["database"] = "ok"
		}

		if app.Bus != nil {
			if err := app.Bus.Health(); err != nil {
				checks["eventstore"] = err.Error()
				ready = false
			} else {
				checks["eventstore"] = "ok"
			}
		}

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"ready":  ready,
			"checks": checks,
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
