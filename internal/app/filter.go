package app

import (
	"strings"

	"guide_gateway/internal/domain"
)

// FilterGuides keeps the guides matching f, preserving order. Query matches
// case-insensitively against title, descriptions and tags; Tag must equal one
// of the guide's tags ignoring case.
func FilterGuides(guides []domain.Guide, f domain.GuideFilter) []domain.Guide {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	tag := strings.TrimSpace(f.Tag)
	if q == "" && tag == "" {
		return guides
	}

	out := make([]domain.Guide, 0, len(guides))
	for _, g := range guides {
		if tag != "" && !hasTag(g, tag) {
			continue
		}
		if q != "" && !matchesQuery(g, q) {
			continue
		}
		out = append(out, g)
	}
	return out
}

func hasTag(g domain.Guide, tag string) bool {
	for _, t := range g.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

func matchesQuery(g domain.Guide, q string) bool {
	for _, field := range []string{g.Title, g.SocialTitle, g.ShortDescription, g.Description} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, t := range g.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
