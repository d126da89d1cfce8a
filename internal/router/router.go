package router

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ZINSTEM/SoloGym/internal/auth"
	"github.com/ZINSTEM/SoloGym/internal/progression"
	"github.com/ZINSTEM/SoloGym/internal/task"
	taskrepo "github.com/ZINSTEM/SoloGym/internal/task/repo"
	"github.com/ZINSTEM/SoloGym/internal/user"
	userrepo "github.com/ZINSTEM/SoloGym/internal/user/repo"
	"github.com/ZINSTEM/SoloGym/pkg/database"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
// It is intentionally simple and conservative so it works with most setups.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
// This keeps the project stdlib-only at the routing layer while keeping wiring
// simple and testable.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB) http.Handler {
	mux := http.NewServeMux()

	runner := database.NewRunner(db)
	users := userrepo.NewUserRepo(db)
	history := userrepo.NewHistoryRepo(db)
	tasks := taskrepo.NewTaskRepo(db)

	tokens := auth.NewTokenIssuer(auth.ConfigFromEnv())
	authSvc := auth.NewService(users, nil, tokens)
	userSvc := user.NewService(runner, users, history, logger)
	taskSvc := task.NewService(tasks, logger)
	progSvc := progression.NewService(runner, tasks, users, logger)

	authHandler := auth.NewHandler(authSvc, logger)
	userHandler := user.NewHandler(userSvc, logger)
	taskHandler := task.NewHandler(taskSvc, progSvc, logger)

	// health
	mux.HandleFunc("GET /sologym-api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// auth routes
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// protected routes
	guard := auth.RequireAuth(tokens, logger)
	protected := func(h http.HandlerFunc) http.Handler { return guard(h) }

	mux.Handle("GET /api/auth/me", protected(userHandler.Profile))

	mux.Handle("GET /api/user/profile", protected(userHandler.Profile))
	mux.Handle("PUT /api/user/profile", protected(userHandler.UpdateProfile))
	mux.Handle("PUT /api/user/attributes", protected(userHandler.Allocate))
	mux.Handle("GET /api/user/attribute-history", protected(userHandler.AttributeHistory))

	mux.Handle("GET /api/tasks", protected(taskHandler.List))
	mux.Handle("POST /api/tasks", protected(taskHandler.Create))
	mux.Handle("GET /api/tasks/{id}", protected(taskHandler.Get))
	mux.Handle("PUT /api/tasks/{id}", protected(taskHandler.Update))
	mux.Handle("DELETE /api/tasks/{id}", protected(taskHandler.Delete))
	mux.Handle("POST /api/tasks/{id}/complete", protected(taskHandler.Complete))

	// wrap with security headers middleware then logging middleware
	handler := LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
	return handler
}
