package handlers

import (
	"net/http"

	"github.com/Bekzhan05/quiz-platform/middleware"
	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/services"
)

type TicketHandler struct {
	ticketService *services.TicketService
}

func NewTicketHandler(ticketService *services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// Create godoc
// @Summary Создать обращение в поддержку
// @Tags tickets
// @Accept json
// @Produce json
// @Param body body services.CreateTicketInput true "Обращение"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tickets [post]
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.CreateTicketInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ticket, err := h.ticketService.Create(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"ticket": ticket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMine godoc
// @Summary Мои обращения
// @Tags tickets
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tickets [get]
func (h *TicketHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tickets, err := h.ticketService.ListByAuthor(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tickets": tickets}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByStatus godoc
// @Summary Обращения по статусу (модератор)
// @Tags tickets
// @Produce json
// @Param status query string true "open | in_progress | closed"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tickets/queue [get]
func (h *TicketHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.TicketStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.TicketOpen
	}

	tickets, err := h.ticketService.ListByStatus(r.Context(), status,
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tickets": tickets}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type ticketStatusInput struct {
	Status models.TicketStatus `json:"status"`
}

// ChangeStatus godoc
// @Summary Сменить статус обращения (модератор)
// @Tags tickets
// @Accept json
// @Param ticketID path int true "Ticket ID"
// @Param body body ticketStatusInput true "Новый статус"
// @Success 204
// @Security BearerAuth
// @Router /tickets/{ticketID}/status [patch]
func (h *TicketHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	ticketID, err := getIDFromURL(r, "ticketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input ticketStatusInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.ticketService.ChangeStatus(r.Context(), ticketID, input.Status); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
