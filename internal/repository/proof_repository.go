package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/pkg/apperror"
)

// Ошибки уровня репозитория макетов.
var (
	ErrProofNotFound       = apperror.New(apperror.ErrCodeNotFound, "макет не найден")
	ErrStaleProof          = apperror.New(apperror.ErrCodeStaleProof, "версия макета устарела или решение уже вынесено")
	ErrProofAlreadyPending = apperror.New(apperror.ErrCodeConflict, "по заказу уже есть макет на согласовании")
)

// ProofRepository хранит версии макетов. Версии по заказу нумеруются с единицы
// без пропусков; одновременно на согласовании может быть не более одной версии.
type ProofRepository struct {
	db *sqlx.DB
}

func NewProofRepository(db *sqlx.DB) *ProofRepository {
	return &ProofRepository{db: db}
}

const proofColumns = `
	id, order_id, provider_id, version_number, comment, status,
	customer_comment, resolved_at, created_at
`

// GetByID возвращает версию макета по идентификатору.
func (r *ProofRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ProofSubmission, error) {
	row := r.db.QueryRowxContext(ctx, `
		SELECT `+proofColumns+`, file_keys FROM proof_submissions WHERE id = $1
	`, id)
	proof, err := scanProof(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProofNotFound
		}
		return nil, fmt.Errorf("proof repository: get by id %w", err)
	}
	return proof, nil
}

// ListByOrder возвращает все версии макетов заказа, свежие первыми.
func (r *ProofRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ProofSubmission, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT `+proofColumns+`, file_keys
		FROM proof_submissions
		WHERE order_id = $1
		ORDER BY version_number DESC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("proof repository: list by order %w", err)
	}
	defer rows.Close()

	var proofs []models.ProofSubmission
	for rows.Next() {
		proof, err := scanProof(rows)
		if err != nil {
			return nil, fmt.Errorf("proof repository: scan %w", err)
		}
		proofs = append(proofs, *proof)
	}
	return proofs, rows.Err()
}

// Submit создаёт следующую версию макета. В одной транзакции блокируется заказ,
// проверяется отсутствие версии на согласовании, вычисляется номер версии и,
// для объявлений с согласованием, заказ переводится в pending_approval.
func (r *ProofRepository) Submit(ctx context.Context, orderID, providerID uuid.UUID, comment *string, fileKeys []string) (*models.ProofSubmission, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("proof repository: begin tx %w", err)
	}
	defer tx.Rollback()

	order, err := lockOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err = proofSubmissionGuard(order.Status); err != nil {
		return nil, err
	}

	var pendingCount int
	if err = tx.GetContext(ctx, &pendingCount, `
		SELECT COUNT(*) FROM proof_submissions WHERE order_id = $1 AND status = 'pending'
	`, orderID); err != nil {
		return nil, fmt.Errorf("proof repository: count pending %w", err)
	}
	if pendingCount > 0 {
		return nil, ErrProofAlreadyPending
	}

	var maxVersion int
	if err = tx.GetContext(ctx, &maxVersion, `
		SELECT COALESCE(MAX(version_number), 0) FROM proof_submissions WHERE order_id = $1
	`, orderID); err != nil {
		return nil, fmt.Errorf("proof repository: next version %w", err)
	}
	nextVersion := nextProofVersion(maxVersion)

	if fileKeys == nil {
		fileKeys = []string{}
	}

	row := tx.QueryRowxContext(ctx, `
		INSERT INTO proof_submissions (order_id, provider_id, version_number, comment, file_keys, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING `+proofColumns+`, file_keys
	`, orderID, providerID, nextVersion, comment, pq.Array(fileKeys))
	proof, err := scanProof(row)
	if err != nil {
		return nil, fmt.Errorf("proof repository: insert proof %w", err)
	}

	if err = recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
		OrderID:     orderID,
		ActorID:     &providerID,
		EventType:   models.TimelineEventProofSubmitted,
		Description: fmt.Sprintf("Мастер отправил макет на согласование (версия %d)", nextVersion),
		Metadata: mustJSON(map[string]interface{}{
			"proof_id":       proof.ID,
			"version_number": nextVersion,
			"file_count":     len(fileKeys),
		}),
	}); err != nil {
		return nil, err
	}

	// Заказы без согласования получают только запись макета, статус не трогаем.
	if order.ProofingRequired && order.Status != models.OrderStatusPendingApproval {
		if !order.Status.CanTransitionTo(models.OrderStatusPendingApproval) {
			return nil, ErrInvalidTransition
		}
		fromStatus := order.Status
		if _, err = tx.ExecContext(ctx, `
			UPDATE production_orders
			SET status = $2, status_changed_at = NOW(), updated_at = NOW()
			WHERE id = $1
		`, orderID, models.OrderStatusPendingApproval); err != nil {
			return nil, fmt.Errorf("proof repository: move order to approval %w", err)
		}
		order.Status = models.OrderStatusPendingApproval
		if err = recordStatusChangeTx(ctx, tx, order, providerID, fromStatus, "Макет ожидает решения заказчика"); err != nil {
			return nil, err
		}
	}

	return proof, tx.Commit()
}

// Resolve выносит решение заказчика по версии макета. Решение принимается
// только по последней версии в статусе pending; любая другая версия считается
// устаревшей. Статус заказа решение не меняет: переходы к производству и
// отгрузке сверяются с макетом в момент самого перехода.
func (r *ProofRepository) Resolve(ctx context.Context, proofID, customerID uuid.UUID, decision string, comment *string) (*models.ProofSubmission, error) {
	newStatus, ok := models.ProofDecisionToStatus[decision]
	if !ok {
		return nil, fmt.Errorf("proof repository: unknown decision %q", decision)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("proof repository: begin tx %w", err)
	}
	defer tx.Rollback()

	// Сначала блокируем заказ, затем макет: тот же порядок, что и в Submit.
	var orderID uuid.UUID
	if err = tx.GetContext(ctx, &orderID, `SELECT order_id FROM proof_submissions WHERE id = $1`, proofID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProofNotFound
		}
		return nil, fmt.Errorf("proof repository: find order %w", err)
	}
	if _, err = lockOrderTx(ctx, tx, orderID); err != nil {
		return nil, err
	}

	row := tx.QueryRowxContext(ctx, `
		SELECT `+proofColumns+`, file_keys FROM proof_submissions WHERE id = $1 FOR UPDATE
	`, proofID)
	proof, err := scanProof(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProofNotFound
		}
		return nil, fmt.Errorf("proof repository: lock proof %w", err)
	}

	var currentVersion int
	if err = tx.GetContext(ctx, &currentVersion, `
		SELECT COALESCE(MAX(version_number), 0) FROM proof_submissions WHERE order_id = $1
	`, orderID); err != nil {
		return nil, fmt.Errorf("proof repository: current version %w", err)
	}

	if err = staleProofGuard(proof, currentVersion); err != nil {
		return nil, err
	}

	row = tx.QueryRowxContext(ctx, `
		UPDATE proof_submissions
		SET status = $2, customer_comment = $3, resolved_at = NOW()
		WHERE id = $1
		RETURNING `+proofColumns+`, file_keys
	`, proofID, newStatus, comment)
	proof, err = scanProof(row)
	if err != nil {
		return nil, fmt.Errorf("proof repository: resolve proof %w", err)
	}

	if err = recordTimelineEventTx(ctx, tx, &models.TimelineEvent{
		OrderID:     orderID,
		ActorID:     &customerID,
		EventType:   models.ProofResolutionEventType(newStatus),
		Description: proofResolutionDescription(newStatus, proof.VersionNumber),
		Metadata: mustJSON(map[string]interface{}{
			"proof_id":       proof.ID,
			"version_number": proof.VersionNumber,
			"decision":       decision,
			"status":         newStatus,
		}),
	}); err != nil {
		return nil, err
	}

	return proof, tx.Commit()
}

// scanProof читает строку макета, разворачивая массив файловых ключей.
func scanProof(row sqlx.ColScanner) (*models.ProofSubmission, error) {
	var proof models.ProofSubmission
	var fileKeys pq.StringArray
	if err := row.Scan(
		&proof.ID,
		&proof.OrderID,
		&proof.ProviderID,
		&proof.VersionNumber,
		&proof.Comment,
		&proof.Status,
		&proof.CustomerComment,
		&proof.ResolvedAt,
		&proof.CreatedAt,
		&fileKeys,
	); err != nil {
		return nil, err
	}
	proof.FileKeys = fileKeys
	return &proof, nil
}

// proofSubmissionGuard разрешает отправку новой версии только на этапах,
// где макет ещё может влиять на производство.
func proofSubmissionGuard(status models.OrderStatus) error {
	switch status {
	case models.OrderStatusOrderReceived, models.OrderStatusInProduction, models.OrderStatusPendingApproval:
		return nil
	default:
		return ErrInvalidTransition
	}
}

// staleProofGuard отклоняет решение по всему, кроме последней версии в
// статусе pending: уже рассмотренная или перекрытая новой версия устарела.
func staleProofGuard(proof *models.ProofSubmission, latestVersion int) error {
	if proof.Status != models.ProofStatusPending || proof.VersionNumber != latestVersion {
		return ErrStaleProof
	}
	return nil
}

// nextProofVersion выдаёт следующий номер версии без пропусков.
func nextProofVersion(maxVersion int) int {
	return maxVersion + 1
}

func proofResolutionDescription(status string, version int) string {
	switch status {
	case models.ProofStatusApproved:
		return fmt.Sprintf("Заказчик одобрил макет (версия %d)", version)
	case models.ProofStatusRevisionRequested:
		return fmt.Sprintf("Заказчик запросил доработку макета (версия %d)", version)
	case models.ProofStatusRejected:
		return fmt.Sprintf("Заказчик отклонил макет (версия %d)", version)
	default:
		return fmt.Sprintf("Решение по макету (версия %d)", version)
	}
}
