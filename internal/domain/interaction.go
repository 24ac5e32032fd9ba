package domain

import (
	"encoding/json"
	"time"
)

const (
	FeedbackTypeBugReport      = "bug_report"
	FeedbackTypeFeatureRequest = "feature_request"
	FeedbackTypeGeneral        = "general"

	IntakeStatusPending    = "pending"
	IntakeStatusInProgress = "in_progress"
	IntakeStatusResolved   = "resolved"
)

type Feedback struct {
	Id        int64
	UserId    *UserId // nil for anonymous submissions
	Type      string
	Subject   string
	Message   string
	Status    string
	CreatedAt time.Time
}

type ContactRequest struct {
	Id        int64
	Name      string
	Email     string
	Subject   string
	Message   string
	Status    string
	CreatedAt time.Time
}

type Survey struct {
	Id          int64
	Title       string
	Description string
	Questions   json.RawMessage
	IsActive    bool
	CreatedAt   time.Time
}

type SurveyResponse struct {
	Id        int64
	SurveyId  int64
	UserId    *UserId
	Responses json.RawMessage
	CreatedAt time.Time
}
