// Package search models the property search criteria and their query
// string form. Criteria are replaced wholesale on every submit and are
// read-only once handed to a pager.
package search

import (
	"net/url"
	"strconv"

	"github.com/estately/portal-server-go/internal/apperr"
	"github.com/estately/portal-server-go/internal/model"
)

// Criteria are the user-specified search constraints. Price bounds are
// pointers because zero is a meaningful bound; every other numeric
// field treats zero as unset.
type Criteria struct {
	City             string   `json:"city,omitempty"`
	State            string   `json:"state,omitempty"`
	MinPrice         *float64 `json:"minPrice,omitempty"`
	MaxPrice         *float64 `json:"maxPrice,omitempty"`
	HomeType         string   `json:"homeType,omitempty"`
	MinBedroomCount  int      `json:"minBedroomCount,omitempty"`
	MinBathroomCount int      `json:"minBathroomCount,omitempty"`
	HasParking       bool     `json:"hasParking,omitempty"`
	HasPool          bool     `json:"hasPool,omitempty"`
	HasAC            bool     `json:"hasAC,omitempty"`
}

// Reset returns the all-empty criteria. Submitting the filter form
// replaces the previous criteria with a fresh value, never merges.
func Reset() Criteria {
	return Criteria{}
}

// Values serializes the criteria into query parameters. Unset fields
// are omitted; a price bound of zero is still emitted; amenity flags
// appear only when set.
func (c Criteria) Values() url.Values {
	values := url.Values{}

	if c.City != "" {
		values.Set("city", c.City)
	}
	if c.State != "" {
		values.Set("state", c.State)
	}
	if c.MinPrice != nil {
		values.Set("minPrice", formatPrice(*c.MinPrice))
	}
	if c.MaxPrice != nil {
		values.Set("maxPrice", formatPrice(*c.MaxPrice))
	}
	if c.HomeType != "" {
		values.Set("homeType", c.HomeType)
	}
	if c.MinBedroomCount > 0 {
		values.Set("minBedroomCount", strconv.Itoa(c.MinBedroomCount))
	}
	if c.MinBathroomCount > 0 {
		values.Set("minBathroomCount", strconv.Itoa(c.MinBathroomCount))
	}
	if c.HasParking {
		values.Set("hasParking", "true")
	}
	if c.HasPool {
		values.Set("hasPool", "true")
	}
	if c.HasAC {
		values.Set("hasAC", "true")
	}

	return values
}

// Encode returns the URL-encoded query string fragment.
func (c Criteria) Encode() string {
	return c.Values().Encode()
}

// ParseValues reconstructs criteria from query parameters, the inverse
// of Values.
func ParseValues(values url.Values) (Criteria, error) {
	c := Criteria{
		City:     values.Get("city"),
		State:    values.Get("state"),
		HomeType: values.Get("homeType"),
	}

	var err error
	if c.MinPrice, err = parsePrice(values, "minPrice"); err != nil {
		return Criteria{}, err
	}
	if c.MaxPrice, err = parsePrice(values, "maxPrice"); err != nil {
		return Criteria{}, err
	}
	if c.MinBedroomCount, err = parseCount(values, "minBedroomCount"); err != nil {
		return Criteria{}, err
	}
	if c.MinBathroomCount, err = parseCount(values, "minBathroomCount"); err != nil {
		return Criteria{}, err
	}

	c.HasParking = values.Get("hasParking") == "true"
	c.HasPool = values.Get("hasPool") == "true"
	c.HasAC = values.Get("hasAC") == "true"

	return c, nil
}

// Validate enforces the cross-field rules the individual inputs cannot:
// non-negative numerics, ordered price bounds, a known home type.
func (c Criteria) Validate() error {
	if c.MinBedroomCount < 0 {
		return apperr.InvalidInput("minBedroomCount", "must not be negative")
	}
	if c.MinBathroomCount < 0 {
		return apperr.InvalidInput("minBathroomCount", "must not be negative")
	}
	if c.MinPrice != nil && *c.MinPrice < 0 {
		return apperr.InvalidInput("minPrice", "must not be negative")
	}
	if c.MaxPrice != nil && *c.MaxPrice < 0 {
		return apperr.InvalidInput("maxPrice", "must not be negative")
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return apperr.ValidationError("minPrice must not exceed maxPrice")
	}
	if c.HomeType != "" && !model.IsHomeType(c.HomeType) {
		return apperr.InvalidInput("homeType", "unknown home type")
	}
	return nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func parsePrice(values url.Values, key string) (*float64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.InvalidInput(key, "must be a number")
	}
	return &parsed, nil
}

func parseCount(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidInput(key, "must be an integer")
	}
	return parsed, nil
}

// Price is a convenience for building criteria literals.
func Price(p float64) *float64 {
	return &p
}
