package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы макета (пробного образца работы).
const (
	ProofStatusPending           = "pending"
	ProofStatusApproved          = "approved"
	ProofStatusRevisionRequested = "revision_requested"
	ProofStatusRejected          = "rejected"
)

// Решения заказчика по макету.
const (
	ProofDecisionApprove         = "approve"
	ProofDecisionRequestRevision = "request_revision"
	ProofDecisionReject          = "reject"
)

// ValidProofDecisions список допустимых решений по макету
var ValidProofDecisions = map[string]struct{}{
	ProofDecisionApprove:         {},
	ProofDecisionRequestRevision: {},
	ProofDecisionReject:          {},
}

// ProofDecisionToStatus переводит решение заказчика в статус макета.
var ProofDecisionToStatus = map[string]string{
	ProofDecisionApprove:         ProofStatusApproved,
	ProofDecisionRequestRevision: ProofStatusRevisionRequested,
	ProofDecisionReject:          ProofStatusRejected,
}

// ProofSubmission описывает одну версию макета, отправленную мастером на согласование.
// Версии неизменяемы: правка создаёт новую версию, а не редактирует старую.
type ProofSubmission struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	OrderID         uuid.UUID  `db:"order_id" json:"order_id"`
	ProviderID      uuid.UUID  `db:"provider_id" json:"provider_id"`
	VersionNumber   int        `db:"version_number" json:"version_number"`
	Comment         *string    `db:"comment" json:"comment,omitempty"`
	FileKeys        []string   `db:"file_keys" json:"file_keys"`
	Status          string     `db:"status" json:"status"`
	CustomerComment *string    `db:"customer_comment" json:"customer_comment,omitempty"`
	ResolvedAt      *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// IsResolved сообщает, вынесено ли решение по этой версии.
func (p *ProofSubmission) IsResolved() bool {
	return p.Status != ProofStatusPending
}
