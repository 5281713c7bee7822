package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/pkg/apperror"
)

// Ошибки уровня репозитория возвратов.
var (
	ErrRefundNotFound        = apperror.New(apperror.ErrCodeNotFound, "запрос на возврат не найден")
	ErrRefundAlreadyResolved = apperror.New(apperror.ErrCodeConflict, "запрос на возврат уже рассмотрен")
)

// RefundRepository хранит запросы на возврат. Решение по запросу и списание
// с удержанной суммы заказа выполняются в одной транзакции, поэтому сумма
// одобренных возвратов не может превысить удержанную сумму даже при
// конкурирующих запросах. Возврат доступен и по завершённому заказу:
// он уменьшает остаток удержания в пределах невозвращённой части.
type RefundRepository struct {
	db *sqlx.DB
}

func NewRefundRepository(db *sqlx.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

const refundColumns = `
	id, order_id, customer_id, amount, reason, status, provider_response,
	resolved_by, created_at, resolved_at
`

// GetByID возвращает запрос на возврат по идентификатору.
func (r *RefundRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error) {
	var req models.RefundRequest
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("refund repository: get by id %w", err)
	}
	return &req, nil
}

// ListByOrder возвращает запросы на возврат по заказу, свежие первыми.
func (r *RefundRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.RefundRequest, error) {
	var requests []models.RefundRequest
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE order_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &requests, query, orderID); err != nil {
		return nil, fmt.Errorf("refund repository: list by order %w", err)
	}
	return requests, nil
}

// ListByUser возвращает запросы, касающиеся пользователя как заказчика или мастера.
func (r *RefundRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.RefundRequest, error) {
	var requests []models.RefundRequest
	query := `
		SELECT rr.id, rr.order_id, rr.customer_id, rr.amount, rr.reason, rr.status,
		       rr.provider_response, rr.resolved_by, rr.created_at, rr.resolved_at
		FROM refund_requests rr
		JOIN production_orders o ON o.id = rr.order_id
		WHERE o.customer_id = $1 OR o.provider_id = $1
		ORDER BY rr.created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &requests, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("refund repository: list by user %w", err)
	}
	return requests, nil
}

// Create регистрирует запрос заказчика на возврат. Заказ блокируется, чтобы
// проверка остатка и вставка запроса увидели согласованное состояние.
func (r *RefundRepository) Create(ctx context.Context, req *models.RefundRequest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("refund repository: begin tx %w", err)
	}
	defer tx.Rollback()

	order, err := lockOrderTx(ctx, tx, req.OrderID)
	if err != nil {
		return err
	}

	if err = refundRequestGuard(order, req.Amount); err != nil {
		return err
	}

	query := `
		INSERT INTO refund_requests (order_id, customer_id, amount, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + refundColumns + `
	`
	if err = tx.GetContext(ctx, req, query, req.OrderID, req.CustomerID, req.Amount, req.Reason, models.RefundStatusPending); err != nil {
		return fmt.Errorf("refund repository: insert request %w", err)
	}

	if err = recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
		OrderID:     req.OrderID,
		ActorID:     &req.CustomerID,
		EventType:   models.TimelineEventRefundRequested,
		Description: "Заказчик запросил возврат средств",
		Metadata: mustJSON(map[string]interface{}{
			"refund_request_id": req.ID,
			"amount":            req.Amount,
		}),
	}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("refund repository: commit %w", err)
	}
	return nil
}

// Resolve выносит решение по запросу. Одобрение сразу списывает сумму с
// удержанных средств заказа и закрывает запрос как completed; завершённый
// запрос повторно изменить нельзя.
func (r *RefundRepository) Resolve(ctx context.Context, requestID, resolverID uuid.UUID, decision string, response *string) (*models.RefundRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("refund repository: begin tx %w", err)
	}
	defer tx.Rollback()

	// Сначала блокируем заказ, затем запрос: тот же порядок, что и в Create.
	var orderID uuid.UUID
	if err = tx.GetContext(ctx, &orderID, `SELECT order_id FROM refund_requests WHERE id = $1`, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("refund repository: find order %w", err)
	}
	order, err := lockOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	var req models.RefundRequest
	if err = tx.GetContext(ctx, &req, `
		SELECT `+refundColumns+` FROM refund_requests WHERE id = $1 FOR UPDATE
	`, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("refund repository: lock request %w", err)
	}

	if req.Status != models.RefundStatusPending {
		return nil, ErrRefundAlreadyResolved
	}

	newStatus := models.RefundStatusRejected
	if decision == models.RefundDecisionApprove {
		if err = refundApprovalGuard(order, req.Amount); err != nil {
			return nil, err
		}

		if _, err = tx.ExecContext(ctx, `
			UPDATE production_orders
			SET escrow_refunded_total = escrow_refunded_total + $2, updated_at = NOW()
			WHERE id = $1
		`, orderID, req.Amount); err != nil {
			return nil, fmt.Errorf("refund repository: apply refund %w", err)
		}

		if err = recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
			OrderID:     orderID,
			ActorID:     &resolverID,
			EventType:   models.TimelineEventEscrowRefunded,
			Description: "Возврат средств заказчику выполнен",
			Metadata: mustJSON(map[string]interface{}{
				"refund_request_id": req.ID,
				"refund_amount":     req.Amount,
			}),
		}); err != nil {
			return nil, err
		}

		newStatus = models.RefundStatusCompleted
	}

	if err = tx.GetContext(ctx, &req, `
		UPDATE refund_requests
		SET status = $2, provider_response = $3, resolved_by = $4, resolved_at = NOW()
		WHERE id = $1
		RETURNING `+refundColumns+`
	`, requestID, newStatus, response, resolverID); err != nil {
		return nil, fmt.Errorf("refund repository: resolve request %w", err)
	}

	if err = recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
		OrderID:     orderID,
		ActorID:     &resolverID,
		EventType:   models.TimelineEventRefundResolved,
		Description: refundResolutionDescription(newStatus),
		Metadata: mustJSON(map[string]interface{}{
			"refund_request_id": req.ID,
			"decision":          decision,
			"status":            newStatus,
		}),
	}); err != nil {
		return nil, err
	}

	return &req, tx.Commit()
}

func refundResolutionDescription(status string) string {
	if status == models.RefundStatusCompleted {
		return "Запрос на возврат одобрен"
	}
	return "Запрос на возврат отклонён"
}

// refundRequestGuard проверяет под блокировкой заказа, что возврат ещё
// возможен. Завершённый заказ остаётся возвратным: одобрение спишет сумму
// с удержания задним числом, пока не исчерпан остаток escrow_amount минус
// escrow_refunded_total.
func refundRequestGuard(order *models.ProductionOrder, amount float64) error {
	if order.Status == models.OrderStatusCancelled {
		return ErrEscrowAlreadyRefunded
	}
	remaining := order.EscrowRemaining()
	if remaining <= 0 {
		return ErrEscrowAlreadyRefunded
	}
	if amount > remaining {
		return ErrRefundExceedsEscrow
	}
	return nil
}

// refundApprovalGuard повторяет проверку остатка в момент одобрения: между
// созданием запроса и решением по нему другие одобренные возвраты могли
// уменьшить остаток.
func refundApprovalGuard(order *models.ProductionOrder, amount float64) error {
	if amount > order.EscrowRemaining() {
		return ErrRefundExceedsEscrow
	}
	return nil
}
