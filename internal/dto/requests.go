package dto

import (
	"github.com/google/uuid"
)

// PlaceOrderRequest represents the request to place a production order
type PlaceOrderRequest struct {
	ListingID             string  `json:"listing_id" binding:"required"`
	Title                 string  `json:"title"`
	Requirements          *string `json:"requirements"`
	Amount                float64 `json:"amount"`
	ConsultationRequested bool    `json:"consultation_requested"`
}

// ParseListingID converts the listing ID string to uuid.UUID
func (r *PlaceOrderRequest) ParseListingID() (uuid.UUID, error) {
	return uuid.Parse(r.ListingID)
}

// CancelOrderRequest represents the request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ShipOrderRequest represents the request to mark an order as shipped
type ShipOrderRequest struct {
	TrackingNumber *string `json:"tracking_number"`
	Carrier        *string `json:"carrier"`
}

// SubmitProofRequest represents the request to submit a new proof version
type SubmitProofRequest struct {
	Comment  *string  `json:"comment"`
	FileKeys []string `json:"file_keys" binding:"required,min=1"`
}

// ResolveProofRequest represents the customer decision on a proof version
type ResolveProofRequest struct {
	Decision string  `json:"decision" binding:"required"`
	Comment  *string `json:"comment"`
}

// RequestRefundRequest represents the request to open a refund request
type RequestRefundRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	Reason string  `json:"reason" binding:"required"`
}

// RespondRefundRequest represents the provider decision on a refund request
type RespondRefundRequest struct {
	Decision string  `json:"decision" binding:"required"`
	Response *string `json:"response"`
}

// CreateListingRequest represents the request to create a listing
type CreateListingRequest struct {
	Title            string  `json:"title" binding:"required"`
	Description      *string `json:"description"`
	ListingType      string  `json:"listing_type" binding:"required"`
	ProofingRequired bool    `json:"proofing_required"`
	Price            float64 `json:"price" binding:"required"`
}

// SetListingActiveRequest represents the request to toggle listing availability
type SetListingActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
