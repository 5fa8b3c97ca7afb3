package upstream

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var clockRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// schema checks decoded upstream payloads against the validate tags on the
// domain types. validator.Validate caches struct metadata and is safe for
// concurrent use.
var schema = newSchema()

func newSchema() *validator.Validate {
	v := validator.New()
	// "H:MM" / "HH:MM" opening-hours strings
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockRe.MatchString(fl.Field().String())
	})
	return v
}

func (c *Client) validate(path string, v any) error {
	if err := schema.Struct(v); err != nil {
		return c.malformed(path, err)
	}
	return nil
}
