package handler

import (
	"regexp"
	"strings"

	"github.com/estately/portal-server-go/internal/apperr"
	"github.com/estately/portal-server-go/internal/model"
)

var zipCodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// OfferForm is the body a customer submits when making an offer on a
// listing. It is validated locally before any marketplace call.
type OfferForm struct {
	PropertyID   int64   `json:"propertyId"`
	OfferedPrice float64 `json:"offeredPrice"`
	Message      string  `json:"message"`
}

func (f OfferForm) Validate() error {
	if f.PropertyID <= 0 {
		return apperr.MissingRequired("propertyId")
	}
	if f.OfferedPrice <= 0 {
		return apperr.InvalidInput("offeredPrice", "must be greater than zero")
	}
	if len(strings.TrimSpace(f.Message)) < 10 {
		return apperr.InvalidInput("message", "must be at least 10 characters")
	}
	return nil
}

// PropertyForm is the body an owner submits to create or update a
// listing.
type PropertyForm struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	ZipCode       string   `json:"zipCode"`
	Address       string   `json:"address"`
	Price         float64  `json:"price"`
	BedroomCount  int      `json:"bedroomCount"`
	BathroomCount int      `json:"bathroomCount"`
	HomeType      string   `json:"homeType"`
	SquareFootage float64  `json:"squareFootage"`
	HasParking    bool     `json:"hasParking"`
	HasPool       bool     `json:"hasPool"`
	HasAC         bool     `json:"hasAC"`
	ImageURLs     []string `json:"imageURLs"`
}

func (f PropertyForm) Validate() error {
	if len(strings.TrimSpace(f.Title)) < 3 {
		return apperr.InvalidInput("title", "must be at least 3 characters")
	}
	if len(strings.TrimSpace(f.Description)) < 10 {
		return apperr.InvalidInput("description", "must be at least 10 characters")
	}
	if strings.TrimSpace(f.City) == "" {
		return apperr.MissingRequired("city")
	}
	if strings.TrimSpace(f.State) == "" {
		return apperr.MissingRequired("state")
	}
	if strings.TrimSpace(f.Address) == "" {
		return apperr.MissingRequired("address")
	}
	if !zipCodePattern.MatchString(f.ZipCode) {
		return apperr.InvalidInput("zipCode", "must be a valid ZIP code")
	}
	if f.Price <= 0 {
		return apperr.InvalidInput("price", "must be greater than zero")
	}
	if f.BedroomCount < 0 {
		return apperr.InvalidInput("bedroomCount", "must not be negative")
	}
	if f.BathroomCount < 0 {
		return apperr.InvalidInput("bathroomCount", "must not be negative")
	}
	if f.SquareFootage < 0 {
		return apperr.InvalidInput("squareFootage", "must not be negative")
	}
	if f.HomeType != "" && !model.IsHomeType(f.HomeType) {
		return apperr.InvalidInput("homeType", "unknown home type")
	}
	return nil
}

// CredentialsForm is the login body.
type CredentialsForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f CredentialsForm) Validate() error {
	if strings.TrimSpace(f.Email) == "" {
		return apperr.MissingRequired("email")
	}
	if f.Password == "" {
		return apperr.MissingRequired("password")
	}
	return nil
}
