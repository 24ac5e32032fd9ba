package service

import (
	"net/http"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
	"github.com/easeops/elibrary/internal/utils"
)

type InteractionService interface {
	SubmitFeedback(feedback domain.Feedback) (domain.Feedback, error)
	FeedbackByUser(userId domain.UserId) ([]domain.Feedback, error)
	SubmitContactRequest(contact domain.ContactRequest) (domain.ContactRequest, error)
	ActiveSurveys() ([]domain.Survey, error)
	Survey(id int64) (domain.Survey, error)
	RespondToSurvey(response domain.SurveyResponse) error
}

type InteractionStorage interface {
	SaveFeedback(feedback domain.Feedback) (domain.Feedback, error)
	FeedbackByUser(userId domain.UserId) ([]domain.Feedback, error)
	SaveContactRequest(contact domain.ContactRequest) (domain.ContactRequest, error)
	ActiveSurveys() ([]domain.Survey, error)
	Survey(id int64) (domain.Survey, error)
	HasSurveyResponse(surveyId int64, userId domain.UserId) (bool, error)
	SaveSurveyResponse(response domain.SurveyResponse) error
}

type Interaction struct {
	storage InteractionStorage
	email   EmailChecker
}

func NewInteraction(storage InteractionStorage, email EmailChecker) *Interaction {
	return &Interaction{storage: storage, email: email}
}

func (i *Interaction) SubmitFeedback(feedback domain.Feedback) (domain.Feedback, error) {
	switch feedback.Type {
	case domain.FeedbackTypeBugReport, domain.FeedbackTypeFeatureRequest, domain.FeedbackTypeGeneral:
	default:
		return domain.Feedback{}, &internal_errors.ErrorWithStatusCode{Message: "Unknown feedback type", StatusCode: http.StatusBadRequest}
	}
	feedback.Message = utils.SanitizeText(feedback.Message)
	return i.storage.SaveFeedback(feedback)
}

func (i *Interaction) FeedbackByUser(userId domain.UserId) ([]domain.Feedback, error) {
	return i.storage.FeedbackByUser(userId)
}

func (i *Interaction) SubmitContactRequest(contact domain.ContactRequest) (domain.ContactRequest, error) {
	if err := i.email.IsCorrect(contact.Email); err != nil {
		return domain.ContactRequest{}, err
	}
	contact.Message = utils.SanitizeText(contact.Message)
	return i.storage.SaveContactRequest(contact)
}

func (i *Interaction) ActiveSurveys() ([]domain.Survey, error) {
	return i.storage.ActiveSurveys()
}

func (i *Interaction) Survey(id int64) (domain.Survey, error) {
	return i.storage.Survey(id)
}

// RespondToSurvey accepts one response per user per active survey.
func (i *Interaction) RespondToSurvey(response domain.SurveyResponse) error {
	survey, err := i.storage.Survey(response.SurveyId)
	if err != nil {
		return err
	}
	if !survey.IsActive {
		return &internal_errors.ErrorWithStatusCode{Message: "Survey not found or inactive", StatusCode: http.StatusNotFound}
	}

	if response.UserId != nil {
		responded, err := i.storage.HasSurveyResponse(response.SurveyId, *response.UserId)
		if err != nil {
			return err
		}
		if responded {
			return &internal_errors.ErrorWithStatusCode{Message: "User has already responded to this survey", StatusCode: http.StatusBadRequest}
		}
	}

	return i.storage.SaveSurveyResponse(response)
}
