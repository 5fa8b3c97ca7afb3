package domain

import "context"

// GuideSource reads from the guide content service.
type GuideSource interface {
	ListGuideIDs(ctx context.Context) ([]string, error)
	GetGuide(ctx context.Context, id string) (Guide, error)
	GetGuideItem(ctx context.Context, id string) (GuideItem, error)
}

// RestaurantSource reads from the restaurant directory service.
type RestaurantSource interface {
	GetRestaurant(ctx context.Context, id string) (Restaurant, error)
}
