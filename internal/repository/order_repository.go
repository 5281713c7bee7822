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
	"github.com/ignatzorin/masterskaya-backend/internal/repository/common"
)

// OrderRepository отвечает за производственные заказы и их жизненный цикл.
// Каждый переход статуса выполняется в одной транзакции: блокировка строки
// заказа, проверка гвардов, запись нового статуса и событие таймлайна либо
// фиксируются вместе, либо откатываются вместе.
type OrderRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория. Каждая несёт код и HTTP статус,
// хэндлеры сверяются с ними через errors.Is.
var (
	ErrOrderNotFound         = apperror.New(apperror.ErrCodeNotFound, "заказ не найден")
	ErrInvalidTransition     = apperror.New(apperror.ErrCodeInvalidTransition, "недопустимый переход статуса заказа")
	ErrProofingRequired      = apperror.New(apperror.ErrCodeProofingRequired, "для продолжения требуется одобренный макет")
	ErrEscrowAlreadyReleased = apperror.New(apperror.ErrCodeEscrowAlreadyReleased, "средства по заказу уже выплачены")
	ErrEscrowAlreadyRefunded = apperror.New(apperror.ErrCodeEscrowAlreadyRefunded, "удержанные средства уже возвращены")
	ErrRefundExceedsEscrow   = apperror.New(apperror.ErrCodeRefundExceedsEscrow, "сумма возврата превышает остаток удержания")
)

// NewOrderRepository создаёт новый экземпляр.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	id, listing_id, customer_id, provider_id, title, requirements, status,
	proofing_required, escrow_amount, escrow_released_at, provider_amount,
	platform_fee, escrow_refunded_total, tracking_number, carrier,
	cancel_reason, created_at, status_changed_at, updated_at
`

// GetByID возвращает заказ по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	query := `SELECT ` + orderColumns + ` FROM production_orders WHERE id = $1`
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get by id %w", err)
	}
	return &order, nil
}

// ListByParticipant возвращает страницу заказов, где пользователь выступает
// заказчиком или мастером, и общее число подходящих строк.
func (r *OrderRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.ProductionOrder, int, error) {
	where := `WHERE (customer_id = $1 OR provider_id = $1)`
	args := []interface{}{userID}
	argIndex := 2

	if status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM production_orders `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("order repository: count by participant %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM production_orders ` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var orders []models.ProductionOrder
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("order repository: list by participant %w", err)
	}
	return orders, total, nil
}

// Create сохраняет заказ с захватом средств и стартовые события таймлайна в одной транзакции.
func (r *OrderRepository) Create(ctx context.Context, order *models.ProductionOrder) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO production_orders (listing_id, customer_id, provider_id, title, requirements, status, proofing_required, escrow_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + orderColumns + `
		`
		if err := tx.GetContext(ctx, order, query,
			order.ListingID,
			order.CustomerID,
			order.ProviderID,
			order.Title,
			order.Requirements,
			order.Status,
			order.ProofingRequired,
			order.EscrowAmount,
		); err != nil {
			return fmt.Errorf("order repository: insert order %w", err)
		}

		if err := recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
			OrderID:     order.ID,
			ActorID:     &order.CustomerID,
			EventType:   models.TimelineEventOrderCreated,
			Description: "Заказ оформлен",
			Metadata:    mustJSON(map[string]interface{}{"status": order.Status}),
		}); err != nil {
			return err
		}

		return recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
			OrderID:     order.ID,
			ActorID:     &order.CustomerID,
			EventType:   models.TimelineEventPaymentCaptured,
			Description: "Средства удержаны до завершения заказа",
			Metadata:    mustJSON(map[string]interface{}{"escrow_amount": order.EscrowAmount}),
		})
	})
}

// StatusUpdate описывает один переход статуса.
type StatusUpdate struct {
	OrderID        uuid.UUID
	ActorID        uuid.UUID
	ToStatus       models.OrderStatus
	Description    string
	// RequireApprovedProof включает проверку, что последняя версия макета одобрена.
	RequireApprovedProof bool
	TrackingNumber       *string
	Carrier              *string
	CancelReason         *string
}

// UpdateStatus применяет переход статуса заказа.
// Строка заказа блокируется FOR UPDATE, поэтому конкурирующие сигналы
// сериализуются: второй увидит уже изменённый статус и получит ErrInvalidTransition.
func (r *OrderRepository) UpdateStatus(ctx context.Context, upd StatusUpdate) (*models.ProductionOrder, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("order repository: begin tx %w", err)
	}
	defer tx.Rollback()

	order, err := lockOrderTx(ctx, tx, upd.OrderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(upd.ToStatus) {
		return nil, ErrInvalidTransition
	}

	if upd.RequireApprovedProof {
		if err := ensureApprovedProofTx(ctx, tx, order.ID); err != nil {
			return nil, err
		}
	}

	fromStatus := order.Status
	query := `
		UPDATE production_orders
		SET status = $2,
		    tracking_number = COALESCE($3, tracking_number),
		    carrier = COALESCE($4, carrier),
		    cancel_reason = COALESCE($5, cancel_reason),
		    status_changed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns + `
	`
	if err = tx.GetContext(ctx, order, query, order.ID, upd.ToStatus, upd.TrackingNumber, upd.Carrier, upd.CancelReason); err != nil {
		return nil, fmt.Errorf("order repository: update status %w", err)
	}

	if err = recordStatusChangeTx(ctx, tx, order, upd.ActorID, fromStatus, upd.Description); err != nil {
		return nil, err
	}

	return order, tx.Commit()
}

// CompleteAndRelease подтверждает доставку и выплачивает удержанные средства.
// Смена статуса и разделение суммы выполняются в одной транзакции, чтобы
// повторный сигнал о доставке не смог выплатить средства дважды.
func (r *OrderRepository) CompleteAndRelease(ctx context.Context, orderID, actorID uuid.UUID, feeRate float64) (*models.ProductionOrder, *models.EscrowSplit, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("order repository: begin tx %w", err)
	}
	defer tx.Rollback()

	order, err := lockOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, nil, err
	}

	if !order.Status.CanTransitionTo(models.OrderStatusCompleted) {
		return nil, nil, ErrInvalidTransition
	}
	if order.EscrowReleasedAt != nil {
		return nil, nil, ErrEscrowAlreadyReleased
	}

	// Выплачивается остаток удержания: одобренные возвраты уже ушли заказчику.
	split := computeSplit(order.EscrowRemaining(), feeRate)
	fromStatus := order.Status

	query := `
		UPDATE production_orders
		SET status = $2,
		    escrow_released_at = NOW(),
		    provider_amount = $3,
		    platform_fee = $4,
		    status_changed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns + `
	`
	if err = tx.GetContext(ctx, order, query, order.ID, models.OrderStatusCompleted, split.ProviderAmount, split.PlatformFee); err != nil {
		return nil, nil, fmt.Errorf("order repository: complete and release %w", err)
	}

	if err = recordStatusChangeTx(ctx, tx, order, actorID, fromStatus, "Доставка подтверждена, заказ завершён"); err != nil {
		return nil, nil, err
	}

	if err = recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
		OrderID:     order.ID,
		ActorID:     &actorID,
		EventType:   models.TimelineEventEscrowReleased,
		Description: "Средства выплачены мастеру",
		Metadata: mustJSON(map[string]interface{}{
			"provider_amount": split.ProviderAmount,
			"platform_fee":    split.PlatformFee,
		}),
	}); err != nil {
		return nil, nil, err
	}

	return order, &split, tx.Commit()
}

// ReleaseEscrow идемпотентно выплачивает средства по завершённому заказу.
// Повторный вызов возвращает сохранённое разделение без повторной выплаты.
func (r *OrderRepository) ReleaseEscrow(ctx context.Context, orderID uuid.UUID, feeRate float64) (*models.EscrowSplit, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("order repository: begin tx %w", err)
	}
	defer tx.Rollback()

	order, err := lockOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if split, done := releasedSplit(order); done {
		// Выплата уже состоялась, отдаём исходный расчёт.
		return split, tx.Commit()
	}

	if order.Status != models.OrderStatusCompleted {
		return nil, ErrInvalidTransition
	}

	split := computeSplit(order.EscrowRemaining(), feeRate)
	_, err = tx.ExecContext(ctx, `
		UPDATE production_orders
		SET escrow_released_at = NOW(), provider_amount = $2, platform_fee = $3, updated_at = NOW()
		WHERE id = $1
	`, order.ID, split.ProviderAmount, split.PlatformFee)
	if err != nil {
		return nil, fmt.Errorf("order repository: release escrow %w", err)
	}

	if err = recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
		OrderID:     order.ID,
		EventType:   models.TimelineEventEscrowReleased,
		Description: "Средства выплачены мастеру",
		Metadata: mustJSON(map[string]interface{}{
			"provider_amount": split.ProviderAmount,
			"platform_fee":    split.PlatformFee,
		}),
	}); err != nil {
		return nil, err
	}

	return &split, tx.Commit()
}

// CancelAndRefund отменяет заказ и возвращает заказчику невыплаченный остаток.
func (r *OrderRepository) CancelAndRefund(ctx context.Context, orderID, actorID uuid.UUID, reason string) (*models.ProductionOrder, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("order repository: begin tx %w", err)
	}
	defer tx.Rollback()

	order, err := lockOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(models.OrderStatusCancelled) {
		return nil, ErrInvalidTransition
	}

	refundAmount := order.EscrowRemaining()
	fromStatus := order.Status

	query := `
		UPDATE production_orders
		SET status = $2,
		    cancel_reason = $3,
		    escrow_refunded_total = escrow_refunded_total + $4,
		    status_changed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns + `
	`
	if err = tx.GetContext(ctx, order, query, order.ID, models.OrderStatusCancelled, reason, refundAmount); err != nil {
		return nil, fmt.Errorf("order repository: cancel order %w", err)
	}

	if err = recordStatusChangeTx(ctx, tx, order, actorID, fromStatus, "Заказ отменён"); err != nil {
		return nil, err
	}

	if refundAmount > 0 {
		if err = recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
			OrderID:     order.ID,
			ActorID:     &actorID,
			EventType:   models.TimelineEventEscrowRefunded,
			Description: "Удержанные средства возвращены заказчику",
			Metadata:    mustJSON(map[string]interface{}{"refund_amount": refundAmount}),
		}); err != nil {
			return nil, err
		}
	}

	return order, tx.Commit()
}

// lockOrderTx читает строку заказа под блокировкой FOR UPDATE.
func lockOrderTx(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	query := `SELECT ` + orderColumns + ` FROM production_orders WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &order, query, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: lock order %w", err)
	}
	return &order, nil
}

// ensureApprovedProofTx проверяет внутри транзакции, что последняя версия макета одобрена.
func ensureApprovedProofTx(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID) error {
	var status string
	query := `
		SELECT status FROM proof_submissions
		WHERE order_id = $1
		ORDER BY version_number DESC
		LIMIT 1
	`
	if err := tx.GetContext(ctx, &status, query, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return proofGateGuard("", false)
		}
		return fmt.Errorf("order repository: check proof %w", err)
	}
	return proofGateGuard(status, true)
}

// proofGateGuard пропускает производство и отгрузку только при одобренной
// последней версии макета. Отсутствие версий равносильно неодобренному макету.
func proofGateGuard(latestStatus string, hasProofs bool) error {
	if !hasProofs || latestStatus != models.ProofStatusApproved {
		return ErrProofingRequired
	}
	return nil
}

// recordStatusChangeTx добавляет событие применённого перехода. Тип события
// именован по целевому статусу, metadata хранит обе стороны перехода.
func recordStatusChangeTx(ctx context.Context, tx *sqlx.Tx, order *models.ProductionOrder, actorID uuid.UUID, fromStatus models.OrderStatus, description string) error {
	if description == "" {
		description = fmt.Sprintf("Статус заказа изменён с %s на %s", fromStatus, order.Status)
	}
	return recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
		OrderID:     order.ID,
		ActorID:     &actorID,
		EventType:   models.StatusEventType(order.Status),
		Description: description,
		Metadata: mustJSON(models.StatusChangeMetadata{
			FromStatus: fromStatus,
			ToStatus:   order.Status,
		}),
	})
}

// releasedSplit возвращает сохранённое при выплате разделение суммы, если
// выплата по заказу уже состоялась. Повторная выплата при этом не выполняется.
func releasedSplit(order *models.ProductionOrder) (*models.EscrowSplit, bool) {
	if order.EscrowReleasedAt == nil {
		return nil, false
	}
	split := models.EscrowSplit{}
	if order.ProviderAmount != nil {
		split.ProviderAmount = *order.ProviderAmount
	}
	if order.PlatformFee != nil {
		split.PlatformFee = *order.PlatformFee
	}
	return &split, true
}

// computeSplit делит удержанную сумму на выплату мастеру и комиссию платформы.
func computeSplit(escrowAmount, feeRate float64) models.EscrowSplit {
	fee := roundMoney(escrowAmount * feeRate)
	return models.EscrowSplit{
		ProviderAmount: roundMoney(escrowAmount - fee),
		PlatformFee:    fee,
	}
}

// roundMoney округляет сумму до копеек.
func roundMoney(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
