package upstream

import (
	"context"
	"net/url"

	"guide_gateway/internal/domain"
)

// RestaurantClient talks to the restaurant directory service.
type RestaurantClient struct{ c *Client }

func NewRestaurantClient(c *Client) *RestaurantClient { return &RestaurantClient{c: c} }

func (r *RestaurantClient) GetRestaurant(ctx context.Context, id string) (domain.Restaurant, error) {
	path := "/restaurants/" + url.PathEscape(id)
	var out domain.Restaurant
	if err := r.c.GetJSON(ctx, "/restaurants/{id}", path, &out); err != nil {
		return domain.Restaurant{}, err
	}
	if err := r.c.validate(path, &out); err != nil {
		return domain.Restaurant{}, err
	}
	return out, nil
}

var _ domain.RestaurantSource = (*RestaurantClient)(nil)
