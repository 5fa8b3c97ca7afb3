package domain

type Photo struct {
	ID       string `json:"id" validate:"required"`
	SmallURL string `json:"smallUrl" validate:"required,url"`
	LargeURL string `json:"largeUrl" validate:"required,url"`
}

// Guide is both the list entry and the detail view; the guide service serves
// the same shape for either.
type Guide struct {
	ID               string   `json:"id" validate:"required"`
	Title            string   `json:"title" validate:"required"`
	SocialTitle      string   `json:"socialTitle"`
	ShortDescription string   `json:"shortDescription"`
	Description      string   `json:"description"`
	CoverPhoto       Photo    `json:"coverPhoto"`
	Tags             []string `json:"tags"`
	WriteDate        string   `json:"writeDate"` // display only
	CreatedAt        string   `json:"createdAt" validate:"required"`
	UpdatedAt        string   `json:"updatedAt"`
	Items            []string `json:"items" validate:"omitempty,dive,required"`
}

type GuideItem struct {
	ID           string  `json:"id" validate:"required"`
	Description  string  `json:"description"`
	RestaurantID string  `json:"restaurantId" validate:"required"`
	Photos       []Photo `json:"photos" validate:"dive"`
}

// GuideItemWithRestaurant is a guide item joined with its restaurant.
// Restaurant is nil when the lookup failed or the id is unknown upstream.
type GuideItemWithRestaurant struct {
	GuideItem
	Restaurant *Restaurant `json:"restaurant,omitempty"`
}

// GuideFilter narrows a guide list. The zero value matches everything.
type GuideFilter struct {
	Query string
	Tag   string
}
