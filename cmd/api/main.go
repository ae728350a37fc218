// cmd/api/main.go
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"sibbap/internal/config"
	"sibbap/internal/dashboard"
	"sibbap/internal/member"
	"sibbap/internal/telemetry"
	"sibbap/internal/uploads"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, "sibbap-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	store, err := uploads.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	memberSvc := member.NewService(db)
	memberHandler := member.NewHandler(memberSvc, store)

	dashboardSvc := dashboard.NewService(db)
	dashboardHandler := dashboard.NewHandler(dashboardSvc)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rateLimit(limiter))

	r.Route("/api", func(api chi.Router) {
		api.Get("/total", dashboardHandler.HandleTotal)
		api.Get("/members/total", dashboardHandler.HandleTotal)
		memberHandler.Routes(api)
	})

	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(store.Dir()))))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(server.ListenAndServe())
}

// rateLimit applies a process-wide limiter ahead of every route.
func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
