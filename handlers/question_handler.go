package handlers

import (
	"net/http"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/services"
)

type QuestionHandler struct {
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// Create godoc
// @Summary Добавить вопрос в турнир (модератор)
// @Tags questions
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body services.CreateQuestionInput true "Вопрос"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/questions [post]
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateQuestionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	question, err := h.questionService.Create(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"question": question}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary Вопросы турнира
// @Tags questions
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param discipline query string false "Фильтр по дисциплине"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/questions [get]
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var discipline *models.Discipline
	if d := r.URL.Query().Get("discipline"); d != "" {
		dv := models.Discipline(d)
		discipline = &dv
	}

	questions, err := h.questionService.ListByTournament(r.Context(), tournamentID, discipline)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"questions": questions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update godoc
// @Summary Изменить вопрос (модератор)
// @Tags questions
// @Accept json
// @Produce json
// @Param questionID path int true "Question ID"
// @Param body body services.CreateQuestionInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /questions/{questionID} [put]
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	questionID, err := getIDFromURL(r, "questionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateQuestionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	question, err := h.questionService.Update(r.Context(), questionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"question": question}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Удалить вопрос (модератор)
// @Tags questions
// @Param questionID path int true "Question ID"
// @Success 204
// @Security BearerAuth
// @Router /questions/{questionID} [delete]
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	questionID, err := getIDFromURL(r, "questionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.questionService.Delete(r.Context(), questionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
