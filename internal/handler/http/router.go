package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	appConfig config.AppConfig,
	JWTService jwt.Service,
	metricsHandler http.Handler,
	attendanceHandler AttendanceHandler,
	shiftHandler ShiftHandler,
	streamHandler StreamHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(appConfig.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-cmlabs"),
		slog.String("version", "v1.0.0"),
		slog.String("env", appConfig.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appConfig.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Get("/shifts", shiftHandler.List)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)

				r.Route("/break", func(r chi.Router) {
					r.Post("/start", attendanceHandler.StartBreak)
					r.Post("/end", attendanceHandler.EndBreak)
				})

				r.Get("/today", attendanceHandler.GetToday)
				r.Get("/quick-status", attendanceHandler.GetQuickStatus)
				r.Get("/history", attendanceHandler.GetHistory)
				r.Get("/monthly", attendanceHandler.GetMonthly)
				r.Get("/summary", attendanceHandler.GetSummary)
				r.Get("/stats", attendanceHandler.GetStats)

				r.Route("/tasks", func(r chi.Router) {
					r.Post("/", attendanceHandler.AddTask)
					r.Put("/{id}", attendanceHandler.UpdateTask)
					r.Delete("/{id}", attendanceHandler.DeleteTask)
				})
			})
		})

		// EventSource cannot set headers, so the stream also accepts ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Get("/events/stream", streamHandler.Stream)
		})
	})
	return r
}
