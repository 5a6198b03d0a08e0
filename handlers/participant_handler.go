package handlers

import (
	"net/http"

	"github.com/Bekzhan05/quiz-platform/middleware"
	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/services"
)

type ParticipantHandler struct {
	registrationService *services.RegistrationService
	scoringService      *services.ScoringService
	rankingService      *services.RankingService
}

func NewParticipantHandler(
	registrationService *services.RegistrationService,
	scoringService *services.ScoringService,
	rankingService *services.RankingService,
) *ParticipantHandler {
	return &ParticipantHandler{
		registrationService: registrationService,
		scoringService:      scoringService,
		rankingService:      rankingService,
	}
}

type registerInput struct {
	Discipline models.Discipline `json:"discipline"`
}

// Register godoc
// @Summary Зарегистрироваться в дисциплине турнира
// @Tags participants
// @Description Повторная регистрация с теми же аргументами возвращает существующую запись, не ошибку.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body registerInput true "Дисциплина"
// @Success 201 {object} map[string]interface{} "Запись участия"
// @Failure 400 {object} map[string]string "Неизвестная дисциплина"
// @Failure 403 {object} map[string]string "Турнир закрыт для регистрации"
// @Failure 409 {object} map[string]string "Турнир полон"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/participants [post]
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input registerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.registrationService.Register(r.Context(), services.RegisterInput{
		TournamentID: tournamentID,
		UserID:       currentUserID,
		Discipline:   input.Discipline,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type addScoreInput struct {
	PointsDelta float64 `json:"points_delta"`
	CasesDelta  *int    `json:"cases_delta"`
	Description string  `json:"description"`
}

// AddScore godoc
// @Summary Начислить очки участнику (модератор)
// @Tags participants
// @Accept json
// @Produce json
// @Param participantID path int true "Participant ID"
// @Param body body addScoreInput true "Дельта очков"
// @Success 200 {object} map[string]interface{} "Обновлённая запись участия"
// @Failure 400 {object} map[string]string "Участник удалён из турнира"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /participants/{participantID}/score [post]
func (h *ParticipantHandler) AddScore(w http.ResponseWriter, r *http.Request) {
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input addScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	casesDelta := 1
	if input.CasesDelta != nil {
		casesDelta = *input.CasesDelta
	}

	participant, err := h.scoringService.AddScore(r.Context(), services.AddScoreInput{
		ParticipantID: participantID,
		PointsDelta:   input.PointsDelta,
		CasesDelta:    casesDelta,
		Description:   input.Description,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type submitAnswerInput struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

// SubmitAnswer godoc
// @Summary Отправить ответ на вопрос турнира
// @Tags participants
// @Description Ответ оценивается внешним оракулом; при его недоступности начисляется ноль.
// @Accept json
// @Produce json
// @Param participantID path int true "Participant ID"
// @Param body body submitAnswerInput true "Ответ"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /participants/{participantID}/answers [post]
func (h *ParticipantHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitAnswerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.scoringService.SubmitAnswer(r.Context(), services.SubmitAnswerInput{
		ParticipantID: participantID,
		QuestionID:    input.QuestionID,
		Answer:        input.Answer,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Leaderboard godoc
// @Summary Турнирная таблица
// @Tags participants
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param discipline query string false "Фильтр по дисциплине; без него все дисциплины вместе"
// @Param limit query int false "Лимит"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/leaderboard [get]
func (h *ParticipantHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
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

	participants, err := h.rankingService.Leaderboard(r.Context(), tournamentID, discipline,
		parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Summary godoc
// @Summary Сводка турнира: топ участников по каждой дисциплине
// @Tags participants
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param top query int false "Размер топа (по умолчанию 10)"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/summary [get]
func (h *ParticipantHandler) Summary(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	boards, err := h.rankingService.Summary(r.Context(), tournamentID, parseIntQuery(r, "top", 10))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": boards}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SnapshotPositions godoc
// @Summary Зафиксировать текущие позиции участников (модератор)
// @Tags participants
// @Param tournamentID path int true "Tournament ID"
// @Success 204
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/leaderboard/snapshot [post]
func (h *ParticipantHandler) SnapshotPositions(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rankingService.SnapshotPositions(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
