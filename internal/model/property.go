package model

// Property is a marketplace listing as served by the upstream API.
type Property struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	ZipCode       string   `json:"zipCode"`
	Address       string   `json:"address"`
	LocationLat   float64  `json:"locationLat"`
	LocationLng   float64  `json:"locationLng"`
	Price         float64  `json:"price"`
	BedroomCount  int      `json:"bedroomCount"`
	BathroomCount int      `json:"bathroomCount"`
	HomeType      string   `json:"homeType"`
	SquareFootage float64  `json:"squareFootage"`
	HasParking    bool     `json:"hasParking"`
	HasPool       bool     `json:"hasPool"`
	HasAC         bool     `json:"hasAC"`
	ProcessedAt   string   `json:"processedAt,omitempty"`
	OwnerID       int64    `json:"ownerId"`
	Status        string   `json:"status"`
	ImageURLs     []string `json:"imageURLs"`
	Approved      bool     `json:"approved"`
}

// HomeTypes is the fixed set of listing categories offered by the search UI.
var HomeTypes = []string{"House", "Town Home", "Condo", "Apartment"}

func IsHomeType(s string) bool {
	for _, t := range HomeTypes {
		if s == t {
			return true
		}
	}
	return false
}
