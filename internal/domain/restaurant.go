package domain

type WorkingHours struct {
	Day   int    `json:"day" validate:"gte=1,lte=7"`
	Open  string `json:"open" validate:"clock"`
	Close string `json:"close" validate:"clock"`
}

type Restaurant struct {
	ID              string         `json:"id" validate:"required"`
	Name            string         `json:"name" validate:"required"`
	Branch          *string        `json:"branch,omitempty"`
	Rating          float64        `json:"rating" validate:"gte=0,lte=5"`
	NumberOfReviews int            `json:"numberOfReviews" validate:"gte=0"`
	URL             string         `json:"url" validate:"omitempty,url"`
	Address         string         `json:"address"`
	Lat             float64        `json:"lat" validate:"gte=-90,lte=90"`
	Lng             float64        `json:"lng" validate:"gte=-180,lte=180"`
	PhoneNo         string         `json:"phoneNo"`
	Categories      []string       `json:"categories"`
	Line            *string        `json:"line,omitempty"`
	Instagram       *string        `json:"instagram,omitempty"`
	Facebook        *string        `json:"facebook,omitempty"`
	WorkingHours    []WorkingHours `json:"workingHours" validate:"dive"`
	Official        bool           `json:"official"`
	Delivery        bool           `json:"delivery"`
	Pickup          bool           `json:"pickup"`
}
