package bookclub

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/book-club/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/book-club/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/book-club/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/book-club/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/book-club/internal/http/handlers/books/create"
	"github.com/magabrotheeeer/book-club/internal/http/handlers/books/list"
	"github.com/magabrotheeeer/book-club/internal/http/handlers/books/read"
	"github.com/magabrotheeeer/book-club/internal/http/handlers/books/remove"
	"github.com/magabrotheeeer/book-club/internal/http/handlers/books/update"
	"github.com/magabrotheeeer/book-club/internal/http/handlers/health"
	"github.com/magabrotheeeer/book-club/internal/http/middlewarectx"
	"github.com/magabrotheeeer/book-club/internal/http/response"
	"github.com/magabrotheeeer/book-club/internal/http/sessioncookie"
	"github.com/magabrotheeeer/book-club/internal/lib/metrics"
	"github.com/magabrotheeeer/book-club/internal/models"
	authservice "github.com/magabrotheeeer/book-club/internal/services/auth"
	bookservice "github.com/magabrotheeeer/book-club/internal/services/books"
	"github.com/magabrotheeeer/book-club/internal/session"

	// Регистрация swagger-спецификации.
	_ "github.com/magabrotheeeer/book-club/docs"
)

// MsgAPINotFound — ответ на неизвестный маршрут под /api.
const MsgAPINotFound = "API route not found"

// Deps — зависимости HTTP-маршрутов.
type Deps struct {
	Logger         *slog.Logger
	Auth           *authservice.Service
	Books          *bookservice.Service
	Sessions       session.Store
	Cookies        *sessioncookie.Codec
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Limiter        *middlewarectx.IPRateLimiter
	AllowedOrigins []string
	UniformErrors  bool
	Version        string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	log := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.CORS(d.AllowedOrigins),
		middlewarectx.Metrics(d.Metrics),
	)

	requireSession := middlewarectx.RequireSession(d.Sessions, d.Cookies, log)
	limit := middlewarectx.RateLimitMiddleware(d.Limiter, log)

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error(MsgAPINotFound))
		})

		r.Route("/users", func(r chi.Router) {
			// Открытые конечные точки
			r.With(limit).Post("/register", register.New(log, d.Auth).ServeHTTP)
			r.With(limit).Post("/login", login.New(log, d.Auth, d.Cookies, d.UniformErrors).ServeHTTP)
			r.Post("/logout", logout.New(log, d.Auth, d.Cookies).ServeHTTP)

			r.With(requireSession).Get("/me", me.New().ServeHTTP)
		})

		// Группа с проверкой сессии
		r.Route("/books", func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", list.New(log, d.Books).ServeHTTP)
			r.Post("/", create.New(log, d.Books).ServeHTTP)
			r.Get("/{id}", read.New(log, d.Books).ServeHTTP)
			r.Put("/{id}", update.New(log, d.Books).ServeHTTP)
			r.With(middlewarectx.RequireRole(models.RoleAdmin, log)).
				Delete("/{id}", remove.New(log, d.Books).ServeHTTP)
		})
	})

	r.Get("/health", health.New(d.Version).ServeHTTP)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
