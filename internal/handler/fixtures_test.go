package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osheron/meritum/internal/catalog"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/handler"
)

func init() {
	handler.InitValidator()
}

// testCatalog builds a small descriptor set shared by the handler tests.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(
		[]domain.PointCategory{
			{ID: "xp", Name: "Experience", Aggregation: domain.AggregationSum},
			{ID: "coins", Name: "Coins", Aggregation: domain.AggregationSum, IsSpendable: true},
		},
		[]domain.Badge{
			{ID: "first-login", Name: "First Login"},
		},
		[]domain.Trophy{
			{ID: "champion", Name: "Champion"},
		},
		[]domain.Level{
			{ID: "novice", CategoryID: "xp", MinPoints: 0},
			{ID: "adept", CategoryID: "xp", MinPoints: 100},
		},
		[]domain.EventTypeDescriptor{
			{ID: "user.login", Description: "User signed in"},
		},
	)
	require.NoError(t, err)
	return cat
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
