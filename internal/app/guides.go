package app

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"guide_gateway/internal/adapters/observability"
	"guide_gateway/internal/domain"
)

// GuideService aggregates the guide and restaurant services. It holds no
// per-request state and is safe for concurrent use.
type GuideService struct {
	guides      domain.GuideSource
	restaurants domain.RestaurantSource
	fanout      int // max concurrent upstream calls per fan-out step; 0 = unbounded
}

func NewGuideService(g domain.GuideSource, r domain.RestaurantSource, fanout int) *GuideService {
	return &GuideService{guides: g, restaurants: r, fanout: fanout}
}

// ListGuides fetches every guide, newest first. One failing detail fetch fails
// the whole list.
func (s *GuideService) ListGuides(ctx context.Context, f domain.GuideFilter) ([]domain.Guide, error) {
	ids, err := s.guides.ListGuideIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Guide{}, nil
	}

	guides, err := JoinAll(ctx, len(ids), s.fanout, func(ctx context.Context, i int) (domain.Guide, error) {
		return s.guides.GetGuide(ctx, ids[i])
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(guides)
	return FilterGuides(guides, f), nil
}

// GetGuideItems returns the items of a guide in guide order, each joined with
// its restaurant. Item fetches are all-or-nothing; restaurant lookups are
// best-effort and leave Restaurant nil on failure.
func (s *GuideService) GetGuideItems(ctx context.Context, guideID string) ([]domain.GuideItemWithRestaurant, error) {
	guide, err := s.guides.GetGuide(ctx, guideID)
	if err != nil {
		return nil, err
	}
	if len(guide.Items) == 0 {
		return []domain.GuideItemWithRestaurant{}, nil
	}

	items, err := JoinAll(ctx, len(guide.Items), s.fanout, func(ctx context.Context, i int) (domain.GuideItem, error) {
		return s.guides.GetGuideItem(ctx, guide.Items[i])
	})
	if err != nil {
		return nil, err
	}

	restaurants := s.resolveRestaurants(ctx, distinctRestaurantIDs(items))

	out := make([]domain.GuideItemWithRestaurant, len(items))
	for i, it := range items {
		out[i] = domain.GuideItemWithRestaurant{GuideItem: it, Restaurant: restaurants[it.RestaurantID]}
	}
	return out, nil
}

func (s *GuideService) GetGuide(ctx context.Context, id string) (domain.Guide, error) {
	return s.guides.GetGuide(ctx, id)
}

func (s *GuideService) GetGuideItem(ctx context.Context, id string) (domain.GuideItem, error) {
	return s.guides.GetGuideItem(ctx, id)
}

func (s *GuideService) GetRestaurant(ctx context.Context, id string) (domain.Restaurant, error) {
	return s.restaurants.GetRestaurant(ctx, id)
}

// resolveRestaurants looks up each id once. The map only holds ids that
// resolved; a missing key is a resolution gap, never an error.
func (s *GuideService) resolveRestaurants(ctx context.Context, ids []string) map[string]*domain.Restaurant {
	settled := JoinAllSettled(ctx, len(ids), s.fanout, func(ctx context.Context, i int) (domain.Restaurant, error) {
		return s.restaurants.GetRestaurant(ctx, ids[i])
	})

	found := make(map[string]*domain.Restaurant, len(ids))
	for i, r := range settled {
		if !r.OK() {
			reason := "error"
			if domain.IsNotFound(r.Err) {
				reason = "not_found"
			}
			observability.ObserveResolutionGap(reason)
			log.Warn().Err(r.Err).Str("restaurant_id", ids[i]).Str("reason", reason).Msg("restaurant unresolved")
			continue
		}
		rest := r.Value
		found[ids[i]] = &rest
	}
	return found
}

func distinctRestaurantIDs(items []domain.GuideItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.RestaurantID]; ok {
			continue
		}
		seen[it.RestaurantID] = struct{}{}
		ids = append(ids, it.RestaurantID)
	}
	return ids
}

// sortNewestFirst orders guides by createdAt descending. Ties keep fetch
// order; unparseable timestamps sort last.
func sortNewestFirst(guides []domain.Guide) {
	type keyed struct {
		at time.Time
		g  domain.Guide
	}
	ks := make([]keyed, len(guides))
	for i, g := range guides {
		ks[i] = keyed{at: parseTimestamp(g.CreatedAt), g: g}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int { return b.at.Compare(a.at) })
	for i := range ks {
		guides[i] = ks[i].g
	}
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
