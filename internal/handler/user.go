package handler

import (
	"net/http"
	"time"

	"github.com/easeops/elibrary/internal/domain"
	"github.com/easeops/elibrary/internal/middleware"
	"github.com/easeops/elibrary/internal/utils"
)

type userResponse struct {
	Id                    domain.UserId `json:"id"`
	Email                 string        `json:"email"`
	Username              string        `json:"username"`
	FullName              string        `json:"full_name,omitempty"`
	IsActive              bool          `json:"is_active"`
	IsVerified            bool          `json:"is_verified"`
	DarkMode              bool          `json:"dark_mode"`
	EmailNotifications    bool          `json:"email_notifications"`
	WhatsappNotifications bool          `json:"whatsapp_notifications"`
	CreatedAt             time.Time     `json:"created_at"`
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		Id:                    user.Id,
		Email:                 user.Email,
		Username:              user.Username,
		FullName:              user.FullName,
		IsActive:              user.IsActive,
		IsVerified:            user.IsVerified,
		DarkMode:              user.DarkMode,
		EmailNotifications:    user.EmailNotifications,
		WhatsappNotifications: user.WhatsappNotifications,
		CreatedAt:             user.CreatedAt,
	}
}

type profileUpdateRequest struct {
	FullName              *string `json:"full_name"`
	DarkMode              *bool   `json:"dark_mode"`
	EmailNotifications    *bool   `json:"email_notifications"`
	WhatsappNotifications *bool   `json:"whatsapp_notifications"`
}

func (req profileUpdateRequest) toDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		FullName:              req.FullName,
		DarkMode:              req.DarkMode,
		EmailNotifications:    req.EmailNotifications,
		WhatsappNotifications: req.WhatsappNotifications,
	}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	writeJSON(w, toUserResponse(*user))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req profileUpdateRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	updated, err := h.user.UpdateProfile(user.Id, req.toDomain())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toUserResponse(updated))
}

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	prefs, err := h.user.Preferences(user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, prefs)
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req profileUpdateRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	prefs, err := h.user.UpdatePreferences(user.Id, req.toDomain())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, prefs)
}
