package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Псевдоним, чтобы не конфликтовать с нашим middleware
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/poker-leaderboard/docs"
	"github.com/Dosada05/poker-leaderboard/handlers"
	"github.com/Dosada05/poker-leaderboard/middleware"
)

// Options собирает всё, что нужно маршрутизатору.
type Options struct {
	Leaderboard *handlers.LeaderboardHandler
	Export      *handlers.ExportHandler
	WebSocket   *handlers.WebSocketHandler
	Health      *handlers.HealthHandler
	Metrics     http.Handler

	ResultsPassword string
	SubmitLimiter   *middleware.IPRateLimiter
	AllowedOrigins  []string
	Logger          *slog.Logger
}

func SetupRoutes(router *chi.Mux, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(opts.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.PasswordHeader},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/", opts.Leaderboard.Page)
	router.Get("/healthz", opts.Health.Healthz)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	// WebSocket живёт вне таймаута, чтобы не рвать долгие соединения.
	router.Get("/ws/series/{series}", opts.WebSocket.ServeWs)

	// Запись: общий пароль и ограничение частоты
	writes := func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.SubmitLimiter))
		r.Use(middleware.ResultsGate(opts.ResultsPassword, opts.Logger))
	}

	// Старый адрес формы добавления результатов.
	router.Group(func(r chi.Router) {
		writes(r)
		r.Post("/results", opts.Leaderboard.SubmitResults)
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/series", opts.Leaderboard.GetSeries)
		r.Get("/standings", opts.Leaderboard.GetStandings)
		r.Get("/standings/chart.png", opts.Leaderboard.GetChart)
		r.Get("/export", opts.Export.Export)

		r.Group(func(r chi.Router) {
			writes(r)
			r.Post("/results", opts.Leaderboard.SubmitResults)
			r.Post("/export/publish", opts.Export.Publish)
		})
	})
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
