package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus описывает этап жизненного цикла производственного заказа.
type OrderStatus string

const (
	OrderStatusPendingConsultation  OrderStatus = "pending_consultation"
	OrderStatusPendingOrderReceived OrderStatus = "pending_order_received"
	OrderStatusOrderReceived        OrderStatus = "order_received"
	OrderStatusInProduction         OrderStatus = "in_production"
	OrderStatusPendingApproval      OrderStatus = "pending_approval"
	OrderStatusReadyForDelivery     OrderStatus = "ready_for_delivery"
	OrderStatusShipped              OrderStatus = "shipped"
	OrderStatusCompleted            OrderStatus = "completed"
	OrderStatusCancelled            OrderStatus = "cancelled"
)

// orderTransitions фиксирует разрешённые переходы статусов.
// Любой нетерминальный статус дополнительно может перейти в cancelled.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingConsultation:  {OrderStatusPendingOrderReceived},
	OrderStatusPendingOrderReceived: {OrderStatusOrderReceived},
	OrderStatusOrderReceived:        {OrderStatusInProduction, OrderStatusPendingApproval},
	OrderStatusInProduction:         {OrderStatusPendingApproval, OrderStatusReadyForDelivery},
	OrderStatusPendingApproval:      {OrderStatusInProduction, OrderStatusReadyForDelivery},
	OrderStatusReadyForDelivery:     {OrderStatusShipped},
	OrderStatusShipped:              {OrderStatusCompleted},
	OrderStatusCompleted:            {},
	OrderStatusCancelled:            {},
}

func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	if newStatus == OrderStatusCancelled {
		return !s.IsTerminal() && s.IsValid()
	}

	allowed, ok := orderTransitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// ProductionOrder описывает заказ на изготовление с удержанием средств.
type ProductionOrder struct {
	ID                  uuid.UUID   `db:"id" json:"id"`
	ListingID           uuid.UUID   `db:"listing_id" json:"listing_id"`
	CustomerID          uuid.UUID   `db:"customer_id" json:"customer_id"`
	ProviderID          uuid.UUID   `db:"provider_id" json:"provider_id"`
	Title               string      `db:"title" json:"title"`
	Requirements        *string     `db:"requirements" json:"requirements,omitempty"`
	Status              OrderStatus `db:"status" json:"status"`
	ProofingRequired    bool        `db:"proofing_required" json:"proofing_required"`
	EscrowAmount        float64     `db:"escrow_amount" json:"escrow_amount"`
	EscrowReleasedAt    *time.Time  `db:"escrow_released_at" json:"escrow_released_at,omitempty"`
	ProviderAmount      *float64    `db:"provider_amount" json:"provider_amount,omitempty"`
	PlatformFee         *float64    `db:"platform_fee" json:"platform_fee,omitempty"`
	EscrowRefundedTotal float64     `db:"escrow_refunded_total" json:"escrow_refunded_total"`
	TrackingNumber      *string     `db:"tracking_number" json:"tracking_number,omitempty"`
	Carrier             *string     `db:"carrier" json:"carrier,omitempty"`
	CancelReason        *string     `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	StatusChangedAt     time.Time   `db:"status_changed_at" json:"status_changed_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}

// EscrowRemaining возвращает невозвращённый остаток удержанных средств.
func (o *ProductionOrder) EscrowRemaining() float64 {
	return o.EscrowAmount - o.EscrowRefundedTotal
}

// EscrowSplit содержит итог разделения удержанной суммы при выплате.
type EscrowSplit struct {
	ProviderAmount float64 `json:"provider_amount"`
	PlatformFee    float64 `json:"platform_fee"`
}
