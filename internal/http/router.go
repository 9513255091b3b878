package http

import (
	"net/http"

	"ember/internal/auth"
	"ember/internal/config"
	"ember/internal/group"
	"ember/internal/habit"
	"ember/internal/http/handler"
	mw "ember/internal/http/middleware"
	"ember/internal/streak"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, cal streak.Calendar) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	propagator := &group.Propagator{DB: db}
	habitSvc := &habit.Service{DB: db, Cal: cal, Groups: propagator}
	groupSvc := &group.Service{DB: db}

	me := &handler.MeHandler{Habits: habitSvc}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	habitH := &handler.HabitHandler{Svc: habitSvc}
	r.Route("/habits", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", habitH.Create)
		r.Get("/", habitH.List)
		r.Put("/{id}", habitH.Update)
		r.Delete("/{id}", habitH.Delete)
	})

	groupH := &handler.GroupHandler{Svc: groupSvc}
	r.Route("/groups", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", groupH.Create)
		r.Get("/", groupH.List)
		r.Post("/join", groupH.Join)
		r.Get("/{id}", groupH.Get)
		r.Post("/{id}/leave", groupH.Leave)
		r.Post("/{id}/habits", groupH.LinkHabit)
	})

	return r
}
