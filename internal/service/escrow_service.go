package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/pkg/apperror"
)

// EscrowRepository описывает операции с удержанными средствами заказа.
type EscrowRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error)
	ReleaseEscrow(ctx context.Context, orderID uuid.UUID, feeRate float64) (*models.EscrowSplit, error)
}

// EscrowService содержит бизнес-логику удержания и выплаты средств.
type EscrowService struct {
	repo    EscrowRepository
	feeRate float64
}

// NewEscrowService создаёт новый сервис удержания средств.
func NewEscrowService(repo EscrowRepository, feeRate float64) *EscrowService {
	return &EscrowService{
		repo:    repo,
		feeRate: feeRate,
	}
}

// EscrowState описывает текущее состояние удержанных средств по заказу.
type EscrowState struct {
	OrderID        uuid.UUID  `json:"order_id"`
	Amount         float64    `json:"amount"`
	RefundedTotal  float64    `json:"refunded_total"`
	Remaining      float64    `json:"remaining"`
	ReleasedAt     *time.Time `json:"released_at,omitempty"`
	ProviderAmount *float64   `json:"provider_amount,omitempty"`
	PlatformFee    *float64   `json:"platform_fee,omitempty"`
}

// Release выплачивает удержанные средства мастеру завершённого заказа.
// Повторный вызов возвращает сохранённое разделение без второй выплаты,
// поэтому операцию можно безопасно повторять после сбоев.
func (s *EscrowService) Release(ctx context.Context, orderID uuid.UUID) (*models.EscrowSplit, error) {
	return s.repo.ReleaseEscrow(ctx, orderID, s.feeRate)
}

// GetState возвращает состояние удержанных средств участникам заказа.
func (s *EscrowService) GetState(ctx context.Context, orderID, viewerID uuid.UUID, viewerRole string) (*EscrowState, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !canViewOrder(order, viewerID, viewerRole) {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет доступа к этому заказу")
	}

	return &EscrowState{
		OrderID:        order.ID,
		Amount:         order.EscrowAmount,
		RefundedTotal:  order.EscrowRefundedTotal,
		Remaining:      order.EscrowRemaining(),
		ReleasedAt:     order.EscrowReleasedAt,
		ProviderAmount: order.ProviderAmount,
		PlatformFee:    order.PlatformFee,
	}, nil
}
