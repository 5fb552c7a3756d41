package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"reviewhub/internal/domain/auth"
	"reviewhub/internal/domain/employee"
	"reviewhub/internal/domain/notifications"
	"reviewhub/internal/domain/org"
	"reviewhub/internal/domain/report"
	"reviewhub/internal/domain/review"
	"reviewhub/internal/platform/ai"
	"reviewhub/internal/platform/config"
	"reviewhub/internal/platform/db"
	"reviewhub/internal/platform/email"
	"reviewhub/internal/platform/metrics"
	"reviewhub/internal/transport/http/api"
	authhandler "reviewhub/internal/transport/http/handlers/auth"
	employeehandler "reviewhub/internal/transport/http/handlers/employee"
	notificationshandler "reviewhub/internal/transport/http/handlers/notifications"
	orghandler "reviewhub/internal/transport/http/handlers/org"
	reporthandler "reviewhub/internal/transport/http/handlers/report"
	reviewhandler "reviewhub/internal/transport/http/handlers/review"
	"reviewhub/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	var generator report.Generator = disabledGenerator{}
	if cfg.GeminiAPIKey != "" {
		client, err := ai.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("gemini client init failed: %v", err)
		}
		generator = client
	} else {
		log.Println("GEMINI_API_KEY not set; report synthesis is disabled")
	}

	authStore := auth.NewStore(pool)
	orgStore := org.NewStore(pool)
	employeeStore := employee.NewStore(pool)
	reviewStore := review.NewStore(pool)
	reportStore := report.NewStore(pool)
	notificationStore := notifications.NewStore(pool)

	mailer := email.New(cfg)
	notifySvc := notifications.New(notificationStore, mailer, cfg.EmailFrom, cfg.EmailEnabled)
	reviewSvc := review.NewService(reviewStore, employeeStore)

	employees := employeeSource{store: employeeStore}
	synth := report.NewSynthesizer(generator)
	reportSvc := report.NewService(reportStore, reviewStore, employees, synth)

	collector := metrics.New()
	reportSvc.SetSynthesisRecorder(collector)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireRole(auth.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, mailer, cfg.JWTSecret, cfg.AppBaseURL, cfg.EmailFrom, cfg.InviteTTL, cfg.AllowSelfSignup)
		authHandler.RegisterRoutes(r)

		orgHandler := orghandler.NewHandler(orgStore)
		orgHandler.RegisterRoutes(r)

		employeeHandler := employeehandler.NewHandler(employeeStore, notifySvc)
		employeeHandler.RegisterRoutes(r)

		reviewHandler := reviewhandler.NewHandler(reviewSvc, notifySvc)
		reviewHandler.RegisterRoutes(r)

		reportHandler := reporthandler.NewHandler(reportSvc, employees, notifySvc, cfg.SynthesisTimeout)
		reportHandler.RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.SynthesisRateLimit(cfg.RateLimitPerMinute, time.Minute))
			reportHandler.RegisterGenerationRoutes(r)
		})

		notificationsHandler := notificationshandler.NewHandler(notifySvc)
		notificationsHandler.RegisterRoutes(r)
	})

	log.Printf("reviewhub server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// employeeSource narrows the employee store to the fields report synthesis
// and ranking need.
type employeeSource struct {
	store *employee.Store
}

func (e employeeSource) Get(ctx context.Context, orgID, employeeID string) (report.EmployeeInfo, error) {
	emp, err := e.store.Get(ctx, orgID, employeeID)
	if err != nil {
		return report.EmployeeInfo{}, err
	}
	return report.EmployeeInfo{ID: emp.ID, Name: emp.Name, Title: emp.Title}, nil
}

func (e employeeSource) List(ctx context.Context, orgID string) ([]report.EmployeeInfo, error) {
	emps, err := e.store.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	infos := make([]report.EmployeeInfo, 0, len(emps))
	for _, emp := range emps {
		infos = append(infos, report.EmployeeInfo{ID: emp.ID, Name: emp.Name, Title: emp.Title})
	}
	return infos, nil
}

type disabledGenerator struct{}

func (disabledGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("no model configured")
}
