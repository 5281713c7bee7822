package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы запроса на возврат.
const (
	RefundStatusPending    = "pending"
	RefundStatusApproved   = "approved"
	RefundStatusRejected   = "rejected"
	RefundStatusProcessing = "processing"
	RefundStatusCompleted  = "completed"
)

// Решения по запросу на возврат.
const (
	RefundDecisionApprove = "approve"
	RefundDecisionReject  = "reject"
)

// RefundRequest описывает запрос заказчика на возврат части или всей удержанной суммы.
// Завершённый запрос неизменяем; повторные запросы по тому же заказу — независимые записи.
type RefundRequest struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	OrderID          uuid.UUID  `db:"order_id" json:"order_id"`
	CustomerID       uuid.UUID  `db:"customer_id" json:"customer_id"`
	Amount           float64    `db:"amount" json:"amount"`
	Reason           string     `db:"reason" json:"reason"`
	Status           string     `db:"status" json:"status"`
	ProviderResponse *string    `db:"provider_response" json:"provider_response,omitempty"`
	ResolvedBy       *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt       *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// IsFinal сообщает, что запрос больше нельзя изменить.
func (r *RefundRequest) IsFinal() bool {
	return r.Status == RefundStatusCompleted || r.Status == RefundStatusRejected
}
