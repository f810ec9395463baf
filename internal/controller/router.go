package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signin", c.signIn)
			r.Post("/signup", c.signUp)
			r.Post("/guest", c.registerGuest)
		})

		r.Get("/home", c.homeConfig)

		r.Route("/user", func(r chi.Router) {
			r.Get("/me", c.getUser)
			r.Put("/nickname", c.updateNickname)
			r.Post("/recharge", c.recharge)
			r.Post("/recharge-vip", c.rechargeVIP)
			r.Get("/charging-records", c.chargingRecords)
			r.Get("/vvvip-record", c.vvvipRecord)
		})

		r.Route("/ws", func(r chi.Router) {
			r.Route("/feed", func(r chi.Router) {
				r.Route("/{video-id}", func(r chi.Router) {
					r.Get("/", c.watchFeed)
				})
			})
		})
	})

	return r
}
