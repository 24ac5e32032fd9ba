package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/easeops/elibrary/internal/domain"
	"github.com/easeops/elibrary/internal/middleware"
	"github.com/easeops/elibrary/internal/utils"
)

type feedbackRequest struct {
	Type    string `json:"feedback_type" validate:"required"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

type feedbackResponse struct {
	Id        int64          `json:"id"`
	UserId    *domain.UserId `json:"user_id,omitempty"`
	Type      string         `json:"feedback_type"`
	Subject   string         `json:"subject"`
	Message   string         `json:"message"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

func toFeedbackResponse(f domain.Feedback) feedbackResponse {
	return feedbackResponse{
		Id:        f.Id,
		UserId:    f.UserId,
		Type:      f.Type,
		Subject:   f.Subject,
		Message:   f.Message,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
	}
}

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req feedbackRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	saved, err := h.interaction.SubmitFeedback(domain.Feedback{
		UserId:  &user.Id,
		Type:    req.Type,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toFeedbackResponse(saved))
}

func (h *Handler) GetMyFeedback(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	items, err := h.interaction.FeedbackByUser(user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	out := make([]feedbackResponse, 0, len(items))
	for _, f := range items {
		out = append(out, toFeedbackResponse(f))
	}
	writeJSON(w, out)
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

func (h *Handler) SubmitContactRequest(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	saved, err := h.interaction.SubmitContactRequest(domain.ContactRequest{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"id":      saved.Id,
		"message": "Contact request submitted. We'll get back to you soon!",
	})
}

type surveyResponseDTO struct {
	Id          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Questions   json.RawMessage `json:"questions"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toSurveyResponse(s domain.Survey) surveyResponseDTO {
	return surveyResponseDTO{
		Id:          s.Id,
		Title:       s.Title,
		Description: s.Description,
		Questions:   s.Questions,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
}

func (h *Handler) GetSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.interaction.ActiveSurveys()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	out := make([]surveyResponseDTO, 0, len(surveys))
	for _, s := range surveys {
		out = append(out, toSurveyResponse(s))
	}
	writeJSON(w, out)
}

func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	surveyId, err := idParam(r, "survey_id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	survey, err := h.interaction.Survey(surveyId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toSurveyResponse(survey))
}

type surveyAnswerRequest struct {
	Responses json.RawMessage `json:"responses" validate:"required"`
}

func (h *Handler) RespondToSurvey(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	surveyId, err := idParam(r, "survey_id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var req surveyAnswerRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.interaction.RespondToSurvey(domain.SurveyResponse{
		SurveyId:  surveyId,
		UserId:    &user.Id,
		Responses: req.Responses,
	}); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]string{"message": "Survey response recorded"})
}

// GetFaq serves the static FAQ payload.
func (h *Handler) GetFaq(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, faqEntries)
}

type faqEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var faqEntries = []faqEntry{
	{
		Question: "How do I bookmark a book?",
		Answer:   "Open the book page and use the bookmark action. Bookmarked books appear in your personal library.",
	},
	{
		Question: "Can I read books offline?",
		Answer:   "Offline reading is not supported yet. Books are streamed from the library while you are online.",
	},
	{
		Question: "How do I change my notification settings?",
		Answer:   "Go to your profile preferences and toggle email or WhatsApp notifications.",
	},
	{
		Question: "How do I reset my password?",
		Answer:   "Use the contact form and our support team will help you reset your password.",
	},
	{
		Question: "Are all books free to read?",
		Answer:   "Yes, every book in the EaseOps E-Library is free for registered users.",
	},
}

// ShareBook returns share links for a book without requiring auth.
func (h *Handler) ShareBook(w http.ResponseWriter, r *http.Request) {
	bookId, err := idParam(r, "book_id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	book, err := h.library.Book(bookId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	shareUrl := fmt.Sprintf("https://easeops-elibrary.com/books/%d", book.Id)
	text := fmt.Sprintf("Check out \"%s\" by %s on EaseOps E-Library: %s", book.Title, book.Author, shareUrl)
	writeJSON(w, map[string]string{
		"share_url":  shareUrl,
		"share_text": text,
	})
}
