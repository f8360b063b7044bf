package handler

import (
	"net/http"

	"github.com/osheron/meritum/internal/catalog"
)

// CatalogResponse bundles the descriptor sets for clients
type CatalogResponse struct {
	Categories interface{} `json:"categories"`
	Badges     interface{} `json:"badges"`
	Trophies   interface{} `json:"trophies"`
	Levels     interface{} `json:"levels"`
}

// HandleGetCatalog returns the full descriptor catalog
// @Summary Get catalog
// @Description Returns point categories, badges, trophies, and level thresholds
// @Tags catalog
// @Produce json
// @Success 200 {object} CatalogResponse
// @Router /api/catalog [get]
func HandleGetCatalog(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, CatalogResponse{
			Categories: cat.Categories(),
			Badges:     cat.Badges(),
			Trophies:   cat.Trophies(),
			Levels:     cat.Levels(),
		})
	}
}
