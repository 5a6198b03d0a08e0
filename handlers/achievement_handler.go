package handlers

import (
	"net/http"

	"github.com/Bekzhan05/quiz-platform/middleware"
	"github.com/Bekzhan05/quiz-platform/services"
)

type AchievementHandler struct {
	achievementService *services.AchievementService
}

func NewAchievementHandler(achievementService *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// List godoc
// @Summary Справочник наград
// @Tags achievements
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /achievements [get]
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievementService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"achievements": achievements}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMine godoc
// @Summary Награды текущего пользователя
// @Tags achievements
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /achievements/mine [get]
func (h *AchievementHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	achievements, err := h.achievementService.ListByUser(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"achievements": achievements}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
