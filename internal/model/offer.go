package model

// OfferStatus follows the upstream status-transition endpoints:
// an owner accepts or rejects, a customer may withdraw a pending offer.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

type Offer struct {
	ID           int64       `json:"id"`
	PropertyID   int64       `json:"propertyId"`
	CustomerID   int64       `json:"customerId,omitempty"`
	OfferedPrice float64     `json:"offeredPrice"`
	Message      string      `json:"message"`
	Status       OfferStatus `json:"status"`
	CreatedAt    string      `json:"createdAt,omitempty"`
	Property     *Property   `json:"property,omitempty"`
}

// User is the account record surfaced on the admin screen.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	IsActive  bool   `json:"isActive"`
	ImageURL  string `json:"imageUrl"`
	Approved  bool   `json:"approved"`
}
