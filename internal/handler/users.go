package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/player"
)

// CategoryPointsResponse is one category's point balance.
type CategoryPointsResponse struct {
	CategoryID string `json:"categoryId"`
	Points     int64  `json:"points"`
}

// HandleGetUserProfile returns the full gamification state for a user
// @Summary Get user profile
// @Tags users
// @Produce json
// @Param userId path string true "User id"
// @Success 200 {object} player.Profile
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{userId}/state [get]
func HandleGetUserProfile(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := svc.GetProfile(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			respondServiceError(w, r, "Get user profile", err)
			return
		}
		respondJSON(w, http.StatusOK, profile)
	}
}

// HandleGetUserPoints returns point balances per category
// @Summary Get user points
// @Tags users
// @Produce json
// @Param userId path string true "User id"
// @Success 200 {object} map[string]int64
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{userId}/points [get]
func HandleGetUserPoints(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		points, err := svc.GetPoints(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			respondServiceError(w, r, "Get user points", err)
			return
		}
		respondJSON(w, http.StatusOK, points)
	}
}

// HandleGetUserCategoryPoints returns the balance of one category. Users with
// no points in the category report zero rather than 404.
// @Summary Get user points in one category
// @Tags users
// @Produce json
// @Param userId path string true "User id"
// @Param categoryId path string true "Point category"
// @Success 200 {object} CategoryPointsResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{userId}/points/{categoryId} [get]
func HandleGetUserCategoryPoints(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		points, err := svc.GetPoints(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			respondServiceError(w, r, "Get user category points", err)
			return
		}
		categoryID := chi.URLParam(r, "categoryId")
		respondJSON(w, http.StatusOK, CategoryPointsResponse{
			CategoryID: categoryID,
			Points:     points[categoryID],
		})
	}
}

// HandleGetUserBadges returns the badges a user holds
// @Summary Get user badges
// @Tags users
// @Produce json
// @Param userId path string true "User id"
// @Success 200 {array} player.BadgeView
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{userId}/badges [get]
func HandleGetUserBadges(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		badges, err := svc.GetBadges(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			respondServiceError(w, r, "Get user badges", err)
			return
		}
		respondJSON(w, http.StatusOK, badges)
	}
}

// HandleGetUserTrophies returns the trophies a user holds
// @Summary Get user trophies
// @Tags users
// @Produce json
// @Param userId path string true "User id"
// @Success 200 {array} player.TrophyView
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{userId}/trophies [get]
func HandleGetUserTrophies(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trophies, err := svc.GetTrophies(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			respondServiceError(w, r, "Get user trophies", err)
			return
		}
		respondJSON(w, http.StatusOK, trophies)
	}
}

// HandleGetUserLevels returns the user's current level per category
// @Summary Get user levels
// @Tags users
// @Produce json
// @Param userId path string true "User id"
// @Success 200 {array} player.LevelView
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{userId}/levels [get]
func HandleGetUserLevels(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		levels, err := svc.GetLevels(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			respondServiceError(w, r, "Get user levels", err)
			return
		}
		respondJSON(w, http.StatusOK, levels)
	}
}

// HandleGetUserCategoryLevel returns the user's current level in one category
// @Summary Get user level in one category
// @Tags users
// @Produce json
// @Param userId path string true "User id"
// @Param categoryId path string true "Point category"
// @Success 200 {object} player.LevelView
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{userId}/levels/{categoryId} [get]
func HandleGetUserCategoryLevel(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		levels, err := svc.GetLevels(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			respondServiceError(w, r, "Get user category level", err)
			return
		}
		categoryID := chi.URLParam(r, "categoryId")
		for _, level := range levels {
			if level.CategoryID == categoryID {
				respondJSON(w, http.StatusOK, level)
				return
			}
		}
		respondServiceError(w, r, "Get user category level",
			fmt.Errorf("%w: no level in category %s", domain.ErrNotFound, categoryID))
	}
}

// HandleGetUserHistory returns a page of the user's reward history
// @Summary Get user reward history
// @Tags users
// @Produce json
// @Param userId path string true "User id"
// @Param rewardType query string false "Filter by reward type"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (1-1000)"
// @Success 200 {object} domain.HistoryPage
// @Failure 400 {object} ErrorResponse
// @Router /api/users/{userId}/rewards/history [get]
func HandleGetUserHistory(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := intQueryParam(r, w, "page", 1, 1, int(^uint(0)>>1), ErrMsgInvalidPage)
		if !ok {
			return
		}
		pageSize, ok := intQueryParam(r, w, "pageSize", player.DefaultHistoryPageSize, 1, player.MaxHistoryPageSize, ErrMsgInvalidLimit)
		if !ok {
			return
		}
		rewardType := GetOptionalQueryParam(r, "rewardType", "")

		history, err := svc.GetHistory(r.Context(), chi.URLParam(r, "userId"), rewardType, page, pageSize)
		if err != nil {
			respondServiceError(w, r, "Get user history", err)
			return
		}
		respondJSON(w, http.StatusOK, history)
	}
}
