package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
)

func (s *Storage) SaveFeedback(feedback domain.Feedback) (domain.Feedback, error) {
	ctx, cancel := s.writeCtx()
	defer cancel()

	var saved domain.Feedback
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRow(
			`INSERT INTO feedback(user_id, feedback_type, subject, message)
			VALUES($1, $2, $3, $4)
			RETURNING id, user_id, feedback_type, subject, message, status, created_at`,
			feedback.UserId, feedback.Type, feedback.Subject, feedback.Message,
		).Scan(&saved.Id, &saved.UserId, &saved.Type, &saved.Subject, &saved.Message, &saved.Status, &saved.CreatedAt)
	})
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("failed to insert feedback: %w", err)
	}
	return saved, nil
}

func (s *Storage) FeedbackByUser(userId domain.UserId) ([]domain.Feedback, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, feedback_type, subject, message, status, created_at
		FROM feedback WHERE user_id = $1 ORDER BY created_at DESC`, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var items []domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.Id, &f.UserId, &f.Type, &f.Subject, &f.Message, &f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (s *Storage) SaveContactRequest(contact domain.ContactRequest) (domain.ContactRequest, error) {
	ctx, cancel := s.writeCtx()
	defer cancel()

	var saved domain.ContactRequest
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRow(
			`INSERT INTO contact_requests(name, email, subject, message)
			VALUES($1, $2, $3, $4)
			RETURNING id, name, email, subject, message, status, created_at`,
			contact.Name, contact.Email, contact.Subject, contact.Message,
		).Scan(&saved.Id, &saved.Name, &saved.Email, &saved.Subject, &saved.Message, &saved.Status, &saved.CreatedAt)
	})
	if err != nil {
		return domain.ContactRequest{}, fmt.Errorf("failed to insert contact request: %w", err)
	}
	return saved, nil
}

func (s *Storage) ActiveSurveys() ([]domain.Survey, error) {
	rows, err := s.db.Query(
		`SELECT id, title, description, questions, is_active, created_at
		FROM surveys WHERE is_active = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query surveys: %w", err)
	}
	defer rows.Close()

	var surveys []domain.Survey
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		surveys = append(surveys, survey)
	}
	return surveys, rows.Err()
}

func (s *Storage) Survey(id int64) (domain.Survey, error) {
	row := s.db.QueryRow(
		"SELECT id, title, description, questions, is_active, created_at FROM surveys WHERE id = $1", id)
	survey, err := scanSurvey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Survey{}, &internal_errors.ErrorWithStatusCode{Message: "Survey not found", StatusCode: http.StatusNotFound}
		}
		return domain.Survey{}, fmt.Errorf("failed to query survey: %w", err)
	}
	return survey, nil
}

func (s *Storage) HasSurveyResponse(surveyId int64, userId domain.UserId) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM survey_responses WHERE survey_id = $1 AND user_id = $2)",
		surveyId, userId).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check survey response: %w", err)
	}
	return exists, nil
}

func (s *Storage) SaveSurveyResponse(response domain.SurveyResponse) error {
	ctx, cancel := s.writeCtx()
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO survey_responses(survey_id, user_id, responses) VALUES($1, $2, $3)",
			response.SurveyId, response.UserId, string(response.Responses))
		if err != nil {
			return fmt.Errorf("failed to insert survey response: %w", err)
		}
		return nil
	})
}

func scanSurvey(row rowScanner) (domain.Survey, error) {
	var survey domain.Survey
	var description sql.NullString
	var questions string
	err := row.Scan(&survey.Id, &survey.Title, &description, &questions, &survey.IsActive, &survey.CreatedAt)
	if err != nil {
		return domain.Survey{}, err
	}
	survey.Description = description.String
	survey.Questions = []byte(questions)
	return survey, nil
}
