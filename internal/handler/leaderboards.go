package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/leaderboard"
)

// leaderboardQueryFromRequest builds a query from query parameters. An invalid
// referenceDate writes the error response and returns ok=false.
func leaderboardQueryFromRequest(w http.ResponseWriter, r *http.Request) (domain.LeaderboardQuery, bool) {
	query := domain.LeaderboardQuery{
		Type:      domain.LeaderboardType(GetOptionalQueryParam(r, "type", "")),
		Category:  GetOptionalQueryParam(r, "category", ""),
		TimeRange: domain.TimeRange(GetOptionalQueryParam(r, "timeRange", "")),
	}

	if raw := GetOptionalQueryParam(r, "referenceDate", ""); raw != "" {
		ref, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidDate)
			return domain.LeaderboardQuery{}, false
		}
		query.ReferenceDate = ref
	}

	page, ok := intQueryParam(r, w, "page", 0, 1, int(^uint(0)>>1), ErrMsgInvalidPage)
	if !ok {
		return domain.LeaderboardQuery{}, false
	}
	pageSize, ok := intQueryParam(r, w, "pageSize", 0, domain.LeaderboardMinPageSize, domain.LeaderboardMaxPageSize, ErrMsgInvalidLimit)
	if !ok {
		return domain.LeaderboardQuery{}, false
	}
	query.Page = page
	query.PageSize = pageSize
	return query, true
}

// HandleGetLeaderboard returns one page of a ranked projection
// @Summary Get leaderboard
// @Tags leaderboards
// @Produce json
// @Param type query string true "Leaderboard type (points, badges, trophies, level)"
// @Param category query string false "Point category (required for points and level)"
// @Param timeRange query string false "daily, weekly, monthly, or alltime"
// @Param referenceDate query string false "RFC 3339 date selecting the window"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (1-1000)"
// @Success 200 {object} domain.LeaderboardResult
// @Failure 400 {object} ErrorResponse
// @Router /api/leaderboards [get]
func HandleGetLeaderboard(engine *leaderboard.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, ok := leaderboardQueryFromRequest(w, r)
		if !ok {
			return
		}
		result, err := engine.GetLeaderboard(r.Context(), query)
		if err != nil {
			respondServiceError(w, r, "Get leaderboard", err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleGetTypedLeaderboard serves the convenience routes where the type (and
// for points/level the category) is fixed by the path.
// @Summary Get leaderboard by type
// @Tags leaderboards
// @Produce json
// @Param categoryId path string false "Point category (points and levels routes)"
// @Param timeRange query string false "daily, weekly, monthly, or alltime"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (1-1000)"
// @Success 200 {object} domain.LeaderboardResult
// @Failure 400 {object} ErrorResponse
// @Router /api/leaderboards/{points|levels}/{categoryId} [get]
func HandleGetTypedLeaderboard(engine *leaderboard.Engine, lbType domain.LeaderboardType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, ok := leaderboardQueryFromRequest(w, r)
		if !ok {
			return
		}
		query.Type = lbType
		if category := chi.URLParam(r, "categoryId"); category != "" {
			query.Category = category
		}
		result, err := engine.GetLeaderboard(r.Context(), query)
		if err != nil {
			respondServiceError(w, r, "Get leaderboard", err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleGetUserLeaderboardRank returns one user's entry in a projection
// @Summary Get a user's rank
// @Tags leaderboards
// @Produce json
// @Param userId path string true "User id"
// @Param type query string true "Leaderboard type"
// @Param category query string false "Point category"
// @Success 200 {object} domain.LeaderboardEntry
// @Failure 404 {object} ErrorResponse
// @Router /api/leaderboards/user/{userId}/rank [get]
func HandleGetUserLeaderboardRank(engine *leaderboard.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, ok := leaderboardQueryFromRequest(w, r)
		if !ok {
			return
		}
		entry, err := engine.GetUserRank(r.Context(), query, chi.URLParam(r, "userId"))
		if err != nil {
			respondServiceError(w, r, "Get user rank", err)
			return
		}
		respondJSON(w, http.StatusOK, entry)
	}
}

// HandleGetUserLeaderboardContext returns the entries around one user
// @Summary Get a user's leaderboard context
// @Tags leaderboards
// @Produce json
// @Param userId path string true "User id"
// @Param type query string true "Leaderboard type"
// @Param contextSize query int false "Entries in the window (default 5)"
// @Success 200 {object} leaderboard.UserContext
// @Failure 404 {object} ErrorResponse
// @Router /api/leaderboards/user/{userId}/context [get]
func HandleGetUserLeaderboardContext(engine *leaderboard.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, ok := leaderboardQueryFromRequest(w, r)
		if !ok {
			return
		}
		contextSize, ok := intQueryParam(r, w, "contextSize", 5, 1, 101, ErrMsgInvalidLimit)
		if !ok {
			return
		}
		uc, err := engine.GetUserContext(r.Context(), query, chi.URLParam(r, "userId"), contextSize)
		if err != nil {
			respondServiceError(w, r, "Get user context", err)
			return
		}
		respondJSON(w, http.StatusOK, uc)
	}
}

// HandleRefreshLeaderboard regenerates a cached projection
// @Summary Refresh leaderboard
// @Tags leaderboards
// @Produce json
// @Param type query string true "Leaderboard type"
// @Param category query string false "Point category"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/leaderboards/refresh [post]
func HandleRefreshLeaderboard(engine *leaderboard.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, ok := leaderboardQueryFromRequest(w, r)
		if !ok {
			return
		}
		if err := engine.Refresh(r.Context(), query); err != nil {
			respondServiceError(w, r, "Refresh leaderboard", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgLeaderboardRefreshed})
	}
}

// HandleClearLeaderboardCache drops every cached projection
// @Summary Clear leaderboard cache
// @Tags leaderboards
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/leaderboards/cache [delete]
func HandleClearLeaderboardCache(engine *leaderboard.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine.Clear(r.Context())
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgLeaderboardCacheCleared})
	}
}
