package upstream

import (
	"context"
	"net/url"

	"guide_gateway/internal/domain"
)

// GuideClient talks to the guide content service.
type GuideClient struct{ c *Client }

func NewGuideClient(c *Client) *GuideClient { return &GuideClient{c: c} }

func (g *GuideClient) ListGuideIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := g.c.GetJSON(ctx, "/guides", "/guides", &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (g *GuideClient) GetGuide(ctx context.Context, id string) (domain.Guide, error) {
	path := "/guides/" + url.PathEscape(id)
	var out domain.Guide
	if err := g.c.GetJSON(ctx, "/guides/{id}", path, &out); err != nil {
		return domain.Guide{}, err
	}
	if err := g.c.validate(path, &out); err != nil {
		return domain.Guide{}, err
	}
	return out, nil
}

func (g *GuideClient) GetGuideItem(ctx context.Context, id string) (domain.GuideItem, error) {
	path := "/guide-items/" + url.PathEscape(id)
	var out domain.GuideItem
	if err := g.c.GetJSON(ctx, "/guide-items/{id}", path, &out); err != nil {
		return domain.GuideItem{}, err
	}
	if err := g.c.validate(path, &out); err != nil {
		return domain.GuideItem{}, err
	}
	return out, nil
}

var _ domain.GuideSource = (*GuideClient)(nil)
