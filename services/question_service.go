package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
)

type CreateQuestionInput struct {
	Discipline      models.Discipline `json:"discipline"`
	Text            string            `json:"text"`
	ReferenceAnswer string            `json:"reference_answer"`
	Points          float64           `json:"points"`
}

type QuestionService struct {
	questionRepo   repositories.QuestionRepository
	tournamentRepo repositories.TournamentRepository
}

func NewQuestionService(
	questionRepo repositories.QuestionRepository,
	tournamentRepo repositories.TournamentRepository,
) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, tournamentRepo: tournamentRepo}
}

func (s *QuestionService) Create(ctx context.Context, tournamentID int, input CreateQuestionInput) (*models.Question, error) {
	if !input.Discipline.Valid() {
		return nil, ErrInvalidDiscipline
	}
	if input.Text == "" {
		return nil, ErrValidationFailed
	}
	if input.Points <= 0 {
		input.Points = 1
	}

	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	question := &models.Question{
		TournamentID:    tournamentID,
		Discipline:      input.Discipline,
		Text:            input.Text,
		ReferenceAnswer: input.ReferenceAnswer,
		Points:          input.Points,
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		if errors.Is(err, repositories.ErrQuestionInvalidTournament) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return question, nil
}

func (s *QuestionService) ListByTournament(ctx context.Context, tournamentID int, discipline *models.Discipline) ([]models.Question, error) {
	if discipline != nil && !discipline.Valid() {
		return nil, ErrInvalidDiscipline
	}
	questions, err := s.questionRepo.ListByTournament(ctx, tournamentID, discipline)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return questions, nil
}

func (s *QuestionService) Update(ctx context.Context, id int, input CreateQuestionInput) (*models.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrQuestionNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	if input.Text != "" {
		question.Text = input.Text
	}
	if input.ReferenceAnswer != "" {
		question.ReferenceAnswer = input.ReferenceAnswer
	}
	if input.Points > 0 {
		question.Points = input.Points
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		if errors.Is(err, repositories.ErrQuestionNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return question, nil
}

func (s *QuestionService) Delete(ctx context.Context, id int) error {
	err := s.questionRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrQuestionNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return nil
}
