package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/rules"
)

// RuleListResponse wraps the rule collection
type RuleListResponse struct {
	Rules []domain.Rule `json:"rules"`
}

// HandleListRules returns all configured rules
// @Summary List rules
// @Tags rules
// @Produce json
// @Param active query string false "Filter to active rules (true/false)"
// @Success 200 {object} RuleListResponse
// @Router /api/rules [get]
func HandleListRules(svc rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			list []domain.Rule
			err  error
		)
		if GetOptionalQueryParam(r, "active", "") == "true" {
			list, err = svc.ListActiveRules(r.Context())
		} else {
			list, err = svc.ListRules(r.Context())
		}
		if err != nil {
			respondServiceError(w, r, "List rules", err)
			return
		}
		respondJSON(w, http.StatusOK, RuleListResponse{Rules: list})
	}
}

// HandleListActiveRules returns the rules currently eligible for evaluation
// @Summary List active rules
// @Tags rules
// @Produce json
// @Success 200 {object} RuleListResponse
// @Router /api/rules/active [get]
func HandleListActiveRules(svc rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListActiveRules(r.Context())
		if err != nil {
			respondServiceError(w, r, "List active rules", err)
			return
		}
		respondJSON(w, http.StatusOK, RuleListResponse{Rules: list})
	}
}

// HandleListRulesByTrigger returns the active rules triggered by an event type
// @Summary List rules by trigger
// @Tags rules
// @Produce json
// @Param eventType path string true "Event type tag"
// @Success 200 {object} RuleListResponse
// @Router /api/rules/trigger/{eventType} [get]
func HandleListRulesByTrigger(svc rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListRulesByTrigger(r.Context(), chi.URLParam(r, "eventType"))
		if err != nil {
			respondServiceError(w, r, "List rules by trigger", err)
			return
		}
		respondJSON(w, http.StatusOK, RuleListResponse{Rules: list})
	}
}

// HandleGetRule returns one rule
// @Summary Get rule by id
// @Tags rules
// @Produce json
// @Param ruleId path string true "Rule id"
// @Success 200 {object} domain.Rule
// @Failure 404 {object} ErrorResponse
// @Router /api/rules/{ruleId} [get]
func HandleGetRule(svc rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rule, err := svc.GetRule(r.Context(), chi.URLParam(r, "ruleId"))
		if err != nil {
			respondServiceError(w, r, "Get rule", err)
			return
		}
		respondJSON(w, http.StatusOK, rule)
	}
}

// HandleCreateRule creates a rule
// @Summary Create rule
// @Tags rules
// @Accept json
// @Produce json
// @Param rule body domain.Rule true "Rule definition"
// @Success 201 {object} domain.Rule
// @Failure 400 {object} ErrorResponse
// @Router /api/rules [post]
func HandleCreateRule(svc rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rule domain.Rule
		if err := DecodeAndValidateRequest(r, w, &rule, "Create rule"); err != nil {
			return
		}
		created, err := svc.CreateRule(r.Context(), rule)
		if err != nil {
			respondServiceError(w, r, "Create rule", err)
			return
		}
		respondJSON(w, http.StatusCreated, created)
	}
}

// HandleUpdateRule replaces a rule definition
// @Summary Update rule
// @Tags rules
// @Accept json
// @Produce json
// @Param ruleId path string true "Rule id"
// @Param rule body domain.Rule true "Rule definition"
// @Success 200 {object} domain.Rule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/rules/{ruleId} [put]
func HandleUpdateRule(svc rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rule domain.Rule
		if err := DecodeAndValidateRequest(r, w, &rule, "Update rule"); err != nil {
			return
		}
		updated, err := svc.UpdateRule(r.Context(), chi.URLParam(r, "ruleId"), rule)
		if err != nil {
			respondServiceError(w, r, "Update rule", err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

// HandleSetRuleActive flips a rule's active flag
// @Summary Activate or deactivate a rule
// @Tags rules
// @Produce json
// @Param ruleId path string true "Rule id"
// @Success 200 {object} domain.Rule
// @Failure 404 {object} ErrorResponse
// @Router /api/rules/{ruleId}/activate [post]
func HandleSetRuleActive(svc rules.Service, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rule, err := svc.SetRuleActive(r.Context(), chi.URLParam(r, "ruleId"), active)
		if err != nil {
			respondServiceError(w, r, "Set rule active", err)
			return
		}
		respondJSON(w, http.StatusOK, rule)
	}
}

// HandleDeleteRule removes a rule
// @Summary Delete rule
// @Tags rules
// @Produce json
// @Param ruleId path string true "Rule id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/rules/{ruleId} [delete]
func HandleDeleteRule(svc rules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteRule(r.Context(), chi.URLParam(r, "ruleId")); err != nil {
			respondServiceError(w, r, "Delete rule", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgRuleDeletedSuccess})
	}
}
