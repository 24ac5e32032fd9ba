// Package router wires all HTTP routes to their handlers.
package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/easeops/elibrary/internal/middleware/metrics"
	"github.com/easeops/elibrary/internal/setup"
)

// New builds the chi router. Catalog browsing, contact, FAQ, surveys and
// share links are public; everything touching per-user state sits behind
// NeedAuth.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(metrics.Middleware)

	h := deps.Handler
	needAuth := deps.AuthMiddleware.NeedAuth()

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(needAuth)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Get("/preferences", h.GetPreferences)
			r.Put("/preferences", h.UpdatePreferences)
		})

		r.Route("/library", func(r chi.Router) {
			r.Get("/books", h.GetBooks)
			r.Get("/books/{book_id}", h.GetBook)
			r.Get("/categories", h.GetCategories)
			r.Get("/tags", h.GetTags)
			r.Get("/featured", h.GetFeaturedBooks)
			r.Get("/popular", h.GetPopularBooks)
		})

		r.Route("/bookmarks", func(r chi.Router) {
			r.Use(needAuth)
			r.Get("/", h.GetBookmarks)
			r.Get("/notes", h.GetNotes)
			r.Post("/notes", h.CreateNote)
			r.Put("/notes/{note_id}", h.UpdateNote)
			r.Delete("/notes/{note_id}", h.DeleteNote)
			r.Post("/{book_id}", h.AddBookmark)
			r.Delete("/{book_id}", h.RemoveBookmark)
		})

		r.Route("/interactions", func(r chi.Router) {
			r.Post("/contact", h.SubmitContactRequest)
			r.Get("/faq", h.GetFaq)
			r.Get("/surveys", h.GetSurveys)
			r.Get("/surveys/{survey_id}", h.GetSurvey)
			r.Post("/share/{book_id}", h.ShareBook)

			r.Group(func(r chi.Router) {
				r.Use(needAuth)
				r.Post("/feedback", h.SubmitFeedback)
				r.Get("/feedback", h.GetMyFeedback)
				r.Post("/surveys/{survey_id}/respond", h.RespondToSurvey)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			// Dispatch trigger stays open for the internal catalog
			// pipeline, which calls it without a user token.
			r.Post("/trigger/new-release/{book_id}", h.TriggerNewRelease)

			r.Group(func(r chi.Router) {
				r.Use(needAuth)
				r.Get("/", h.GetNotifications)
				r.Post("/mark-read/{notification_id}", h.MarkNotificationRead)
				r.Post("/subscribe/new-releases", h.Subscribe)
				r.Post("/unsubscribe/new-releases", h.Unsubscribe)
				r.Post("/test", h.SendTestNotification)
			})
		})
	})

	return r
}
