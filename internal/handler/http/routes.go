package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.NotFound(notFound)
	router.MethodNotAllowed(CheckHTTPMethod(router))

	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Recoverer)
	router.Use(h.metrics.Instrument)
	router.Use(withGZip)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	router.Get("/health", h.health)
	router.Method(http.MethodGet, metricsPath, h.metrics.Handler())

	router.Route("/profiles", func(r chi.Router) {
		// routes without authorization
		r.Group(func(r chi.Router) {
			r.Use(h.limiter.Handler)
			r.Post("/", h.register)
			r.Post("/login", h.login)
			r.Post("/refresh", h.refresh)
		})
		r.Post("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Get("/", h.listProfiles)
			r.Get("/me", h.getMe)
			r.Get("/{id}", h.getProfile)
			r.Put("/{id}", h.updateProfile)
			r.Patch("/{id}", h.updateProfile)
			r.Delete("/{id}", h.deleteProfile)
			r.Put("/{id}/categories/{categoryID}", h.linkCategory)
			r.Delete("/{id}/categories/{categoryID}", h.unlinkCategory)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.createCategory)
			r.Get("/", h.listCategories)
			r.Get("/{id}", h.getCategory)
			r.Put("/{id}", h.updateCategory)
			r.Patch("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
			r.Put("/{id}/conversations/{conversationID}", h.addConversationToCategory)
			r.Delete("/{id}/conversations/{conversationID}", h.removeConversationFromCategory)
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", h.createConversation)
			r.Get("/", h.listConversations)
			r.Get("/{id}", h.getConversation)
			r.Put("/{id}", h.updateConversation)
			r.Patch("/{id}", h.updateConversation)
			r.Delete("/{id}", h.deleteConversation)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", h.sendMessage)
			r.Get("/", h.listMessages)
			r.Get("/{id}", h.getMessage)
			r.Put("/{id}", h.updateMessage)
			r.Patch("/{id}", h.updateMessage)
			r.Delete("/{id}", h.deleteMessage)
			r.Post("/{id}/delivered", h.markMessageDelivered)
		})
	})

	return router
}
