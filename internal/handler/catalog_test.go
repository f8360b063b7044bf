package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/handler"
)

func TestHandleGetCatalog(t *testing.T) {
	cat := testCatalog(t)
	r := chi.NewRouter()
	r.Get("/api/catalog", handler.HandleGetCatalog(cat))

	rec := doJSON(t, r, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.CatalogResponse
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Categories, 2)
	assert.Len(t, resp.Badges, 1)
	assert.Len(t, resp.Trophies, 1)
	assert.Len(t, resp.Levels, 2)
}

func TestHandleGetEventTypes(t *testing.T) {
	cat := testCatalog(t)
	r := chi.NewRouter()
	r.Get("/api/events/catalog", handler.HandleGetEventTypes(cat))

	rec := doJSON(t, r, http.MethodGet, "/api/events/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var types []domain.EventTypeDescriptor
	decodeBody(t, rec, &types)
	require.Len(t, types, 1)
	assert.Equal(t, "user.login", types[0].ID)
}
