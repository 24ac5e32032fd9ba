package handler

import (
	"encoding/json"
	"net/http"

	"github.com/easeops/elibrary/internal/config"
	"github.com/easeops/elibrary/internal/logger"
	"github.com/easeops/elibrary/internal/service"
)

type Handler struct {
	auth         service.AuthService
	user         service.UserService
	library      service.LibraryService
	bookmark     service.BookmarkService
	interaction  service.InteractionService
	notification service.NotificationService
	cfg          *config.Config
}

func New(
	auth service.AuthService,
	user service.UserService,
	library service.LibraryService,
	bookmark service.BookmarkService,
	interaction service.InteractionService,
	notification service.NotificationService,
	cfg *config.Config,
) *Handler {
	return &Handler{auth, user, library, bookmark, interaction, notification, cfg}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"message": "EaseOps E-Library User Backend API",
		"version": "1.0.0",
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "healthy",
		"service": "EaseOps E-Library User Backend",
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, map[string]string{"message": message})
}
