package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы событий таймлайна заказа. Каждый переход и каждое решение по макету
// получают собственный тип, чтобы история читалась без разбора metadata.
const (
	TimelineEventOrderCreated           = "order_created"
	TimelineEventPaymentCaptured        = "payment_captured"
	TimelineEventConsultationClosed     = "consultation_closed"
	TimelineEventOrderReceived          = "order_received"
	TimelineEventProductionStarted      = "production_started"
	TimelineEventApprovalRequested      = "approval_requested"
	TimelineEventProofSubmitted         = "proof_submitted"
	TimelineEventProofApproved          = "proof_approved"
	TimelineEventProofRejected          = "proof_rejected"
	TimelineEventProofRevisionRequested = "proof_revision_requested"
	TimelineEventReadyForDelivery       = "ready_for_delivery"
	TimelineEventShipped                = "shipped"
	TimelineEventDelivered              = "delivered"
	TimelineEventEscrowReleased         = "escrow_released"
	TimelineEventEscrowRefunded         = "escrow_refunded"
	TimelineEventOrderCancelled         = "order_cancelled"
	TimelineEventRefundRequested        = "refund_requested"
	TimelineEventRefundResolved         = "refund_resolved"
)

// StatusEventType возвращает тип события таймлайна для перехода в статус.
func StatusEventType(to OrderStatus) string {
	switch to {
	case OrderStatusPendingOrderReceived:
		return TimelineEventConsultationClosed
	case OrderStatusOrderReceived:
		return TimelineEventOrderReceived
	case OrderStatusInProduction:
		return TimelineEventProductionStarted
	case OrderStatusPendingApproval:
		return TimelineEventApprovalRequested
	case OrderStatusReadyForDelivery:
		return TimelineEventReadyForDelivery
	case OrderStatusShipped:
		return TimelineEventShipped
	case OrderStatusCompleted:
		return TimelineEventDelivered
	case OrderStatusCancelled:
		return TimelineEventOrderCancelled
	default:
		// В начальный статус перехода не бывает, но историю не роняем.
		return "status_changed"
	}
}

// ProofResolutionEventType возвращает тип события для решения по версии макета.
func ProofResolutionEventType(proofStatus string) string {
	switch proofStatus {
	case ProofStatusApproved:
		return TimelineEventProofApproved
	case ProofStatusRevisionRequested:
		return TimelineEventProofRevisionRequested
	default:
		return TimelineEventProofRejected
	}
}

// TimelineEvent фиксирует действие в истории заказа. Записи только добавляются,
// обновление и удаление не предусмотрены.
type TimelineEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OrderID     uuid.UUID       `db:"order_id" json:"order_id"`
	ActorID     *uuid.UUID      `db:"actor_id" json:"actor_id,omitempty"`
	EventType   string          `db:"event_type" json:"event_type"`
	Description string          `db:"description" json:"description"`
	Metadata    json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// StatusChangeMetadata содержимое metadata для событий смены статуса.
type StatusChangeMetadata struct {
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
}
