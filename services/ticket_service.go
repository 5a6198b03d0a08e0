package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
	"github.com/google/uuid"
)

type CreateTicketInput struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type TicketService struct {
	ticketRepo repositories.TicketRepository
}

func NewTicketService(ticketRepo repositories.TicketRepository) *TicketService {
	return &TicketService{ticketRepo: ticketRepo}
}

func (s *TicketService) Create(ctx context.Context, authorID int, input CreateTicketInput) (*models.Ticket, error) {
	if input.Subject == "" {
		return nil, ErrTicketSubjectEmpty
	}

	ticket := &models.Ticket{
		Code:     uuid.NewString(),
		AuthorID: authorID,
		Subject:  input.Subject,
		Body:     input.Body,
		Status:   models.TicketOpen,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return ticket, nil
}

func (s *TicketService) GetByID(ctx context.Context, id int) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTicketNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return ticket, nil
}

func (s *TicketService) ListByAuthor(ctx context.Context, authorID int) ([]models.Ticket, error) {
	tickets, err := s.ticketRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return tickets, nil
}

func (s *TicketService) ListByStatus(ctx context.Context, status models.TicketStatus, limit, offset int) ([]models.Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	tickets, err := s.ticketRepo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return tickets, nil
}

func (s *TicketService) ChangeStatus(ctx context.Context, id int, status models.TicketStatus) error {
	switch status {
	case models.TicketOpen, models.TicketInProgress, models.TicketClosed:
	default:
		return ErrValidationFailed
	}
	err := s.ticketRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repositories.ErrTicketNotFound) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return nil
}
