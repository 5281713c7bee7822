package dto

import (
	"github.com/ignatzorin/masterskaya-backend/internal/models"
)

// OrderResponse represents an order together with its recent timeline
// This is the payload of the order detail screen in the mobile app
type OrderResponse struct {
	*models.ProductionOrder
	Timeline []models.TimelineEvent `json:"timeline,omitempty"`
}

// NewOrderResponse creates an OrderResponse from components
func NewOrderResponse(order *models.ProductionOrder, timeline []models.TimelineEvent) *OrderResponse {
	return &OrderResponse{
		ProductionOrder: order,
		Timeline:        timeline,
	}
}

// CompleteOrderResponse represents the result of confirming delivery
type CompleteOrderResponse struct {
	Order       *models.ProductionOrder `json:"order"`
	EscrowSplit *models.EscrowSplit     `json:"escrow_split"`
}

// PaginatedOrdersResponse represents paginated orders list
type PaginatedOrdersResponse struct {
	Data       []models.ProductionOrder `json:"data"`
	Pagination Pagination               `json:"pagination"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
