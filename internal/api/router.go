package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/verdantlabs/voicerelay/internal/api/handlers"
	"github.com/verdantlabs/voicerelay/internal/api/middleware"
	"github.com/verdantlabs/voicerelay/internal/auth"
	"github.com/verdantlabs/voicerelay/internal/config"
	"github.com/verdantlabs/voicerelay/internal/convlog"
	"github.com/verdantlabs/voicerelay/internal/session"
)

type Router struct {
	mux      *chi.Mux
	db       *pgxpool.Pool
	redis    *redis.Client
	cfg      *config.Config
	sessions *session.Router
	logs     *convlog.Service
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, sessions *session.Router, logs *convlog.Service) *Router {
	return &Router{
		mux:      chi.NewRouter(),
		db:       db,
		redis:    rdb,
		cfg:      cfg,
		sessions: sessions,
		logs:     logs,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	verifier := auth.NewDeviceVerifier(rt.cfg.Auth.DeviceTokenSecret)
	ws := handlers.NewWSHandler(rt.sessions, verifier)
	r.Get("/ws", ws.Serve)

	conv := handlers.NewConversationsHandler(rt.logs)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/conversations/{deviceID}", conv.List)
	})

	return r
}
