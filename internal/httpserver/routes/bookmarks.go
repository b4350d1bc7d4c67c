package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/coursemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/coursemark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/coursemark/internal/httpserver/mw"
)

func init() { Register("bookmarks", registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	writeLimit := mw.RateLimit(mw.RateLimitConfig{
		Burst:           d.RateLimitBurst,
		RefillPerMinute: d.RateLimitPerMinute,
		MaxEntries:      10000,
		TrustProxy:      d.TrustProxy,
	})

	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(mw.RequireUser(d.UserHeader, d.Logger))

		r.Get("/", handlers.ListBookmarks(d))
		r.With(writeLimit).Post("/", handlers.CreateBookmark(d))
		r.Get("/{id}", handlers.GetBookmark(d))
	})
}
