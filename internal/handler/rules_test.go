package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osheron/meritum/internal/database/memory"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/handler"
	"github.com/osheron/meritum/internal/rules"
)

func newRulesRouter() chi.Router {
	svc := rules.NewService(memory.NewRuleRepository())

	r := chi.NewRouter()
	r.Route("/api/rules", func(r chi.Router) {
		r.Get("/", handler.HandleListRules(svc))
		r.Post("/", handler.HandleCreateRule(svc))
		r.Get("/active", handler.HandleListActiveRules(svc))
		r.Get("/trigger/{eventType}", handler.HandleListRulesByTrigger(svc))
		r.Get("/{ruleId}", handler.HandleGetRule(svc))
		r.Put("/{ruleId}", handler.HandleUpdateRule(svc))
		r.Delete("/{ruleId}", handler.HandleDeleteRule(svc))
		r.Post("/{ruleId}/activate", handler.HandleSetRuleActive(svc, true))
		r.Post("/{ruleId}/deactivate", handler.HandleSetRuleActive(svc, false))
	})
	return r
}

func ruleBody(id string) domain.Rule {
	return domain.Rule{
		ID:       id,
		Name:     "Login reward",
		Triggers: []string{"user.login"},
		Conditions: []domain.Condition{
			{Type: domain.ConditionAlwaysTrue},
		},
		Rewards: []domain.Reward{
			{Type: domain.RewardPoints, TargetID: "xp", Amount: 10},
		},
		IsActive: true,
	}
}

func TestRuleLifecycleOverHTTP(t *testing.T) {
	r := newRulesRouter()

	// Create
	rec := doJSON(t, r, http.MethodPost, "/api/rules", ruleBody("rule-1"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Rule
	decodeBody(t, rec, &created)
	assert.Equal(t, "rule-1", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	// Duplicate create is rejected
	rec = doJSON(t, r, http.MethodPost, "/api/rules", ruleBody("rule-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Read back
	rec = doJSON(t, r, http.MethodGet, "/api/rules/rule-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Update
	update := ruleBody("rule-1")
	update.Name = "Renamed"
	rec = doJSON(t, r, http.MethodPut, "/api/rules/rule-1", update)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Rule
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Renamed", updated.Name)

	// Deactivate drops it from the active listing
	rec = doJSON(t, r, http.MethodPost, "/api/rules/rule-1/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/rules/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing handler.RuleListResponse
	decodeBody(t, rec, &listing)
	assert.Empty(t, listing.Rules)

	rec = doJSON(t, r, http.MethodPost, "/api/rules/rule-1/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Back in the trigger listing once reactivated
	rec = doJSON(t, r, http.MethodGet, "/api/rules/trigger/USER.LOGIN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &listing)
	require.Len(t, listing.Rules, 1)
	assert.Equal(t, "rule-1", listing.Rules[0].ID)

	// Delete
	rec = doJSON(t, r, http.MethodDelete, "/api/rules/rule-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/rules/rule-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRuleRejectsMissingRewards(t *testing.T) {
	r := newRulesRouter()

	body := ruleBody("rule-1")
	body.Rewards = nil
	rec := doJSON(t, r, http.MethodPost, "/api/rules", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp handler.ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, handler.ErrMsgInvalidRuleError, resp.Error)
}

func TestUpdateUnknownRuleReturnsNotFound(t *testing.T) {
	r := newRulesRouter()
	rec := doJSON(t, r, http.MethodPut, "/api/rules/ghost", ruleBody("ghost"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
