package handlers

import (
	"net/http"

	"github.com/wolfman30/vitrine/internal/site"
)

// CatalogHandler serves the product cards.
type CatalogHandler struct {
	site *site.Site
}

func NewCatalogHandler(s *site.Site) *CatalogHandler {
	return &CatalogHandler{site: s}
}

type catalogResponse struct {
	Category   string      `json:"category"`
	Categories []string    `json:"categories"`
	Cards      []site.Card `json:"cards"`
}

// List handles GET /products?category=.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = site.CategoryAll
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Category:   category,
		Categories: h.site.Categories(),
		Cards:      h.site.List(category),
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
