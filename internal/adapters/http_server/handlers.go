// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"guide_gateway/internal/domain"
)

// GuideQueries is the aggregation surface the handlers need.
type GuideQueries interface {
	ListGuides(ctx context.Context, f domain.GuideFilter) ([]domain.Guide, error)
	GetGuideItems(ctx context.Context, guideID string) ([]domain.GuideItemWithRestaurant, error)
	GetGuide(ctx context.Context, id string) (domain.Guide, error)
	GetGuideItem(ctx context.Context, id string) (domain.GuideItem, error)
	GetRestaurant(ctx context.Context, id string) (domain.Restaurant, error)
}

type Handlers struct{ Q GuideQueries }

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Route("/v1", func(r chi.Router) {
			r.Get("/guides", h.listGuides)
			r.Get("/guides/items/{guideItemId}", h.getGuideItem)
			r.Get("/guides/{guideId}", h.getGuide)
			r.Get("/guides/{guideId}/items", h.listGuideItems)
			r.Get("/restaurants/{restaurantId}", h.getRestaurant)
		})
	})
}

// uuidParam reads a path parameter that must be a hyphenated UUID.
func uuidParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return "", &domain.ValidationError{Field: name, Rule: "required"}
	}
	// uuid.Parse also accepts urn and braced forms; only the canonical layout is valid here
	if len(raw) != 36 {
		return "", &domain.ValidationError{Field: name, Rule: "uuid"}
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", &domain.ValidationError{Field: name, Rule: "uuid"}
	}
	return raw, nil
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, map[string]string{"status": "online"}, "Service is healthy")
}

func (h *Handlers) listGuides(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	guides, err := h.Q.ListGuides(r.Context(), domain.GuideFilter{Query: q.Get("q"), Tag: q.Get("tag")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, guides, "Guides fetched successfully")
}

func (h *Handlers) listGuideItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "guideId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.Q.GetGuideItems(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, items, "Guide items fetched successfully")
}

func (h *Handlers) getGuide(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "guideId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := h.Q.GetGuide(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, g, "Guide fetched successfully")
}

func (h *Handlers) getGuideItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "guideItemId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	it, err := h.Q.GetGuideItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, it, "Guide item fetched successfully")
}

func (h *Handlers) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "restaurantId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rest, err := h.Q.GetRestaurant(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, rest, "Restaurant fetched successfully")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusNotFound, struct{}{}, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusMethodNotAllowed, struct{}{}, "Method not allowed")
}
