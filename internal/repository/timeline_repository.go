package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
)

// TimelineRepository хранит историю заказа. Записи только добавляются:
// обновление и удаление не предусмотрены ни одним методом.
type TimelineRepository struct {
	db *sqlx.DB
}

func NewTimelineRepository(db *sqlx.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// Record добавляет событие вне транзакций жизненного цикла.
func (r *TimelineRepository) Record(ctx context.Context, event *models.TimelineEvent) error {
	query := `
		INSERT INTO timeline_events (order_id, actor_id, event_type, description, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		event.OrderID, event.ActorID, event.EventType, event.Description, event.Metadata,
	).Scan(&event.ID, &event.CreatedAt); err != nil {
		return fmt.Errorf("timeline repository: record %w", err)
	}
	return nil
}

// ListByOrder возвращает события заказа, новые первыми.
func (r *TimelineRepository) ListByOrder(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]models.TimelineEvent, error) {
	var events []models.TimelineEvent
	query := `
		SELECT id, order_id, actor_id, event_type, description, metadata, created_at
		FROM timeline_events
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &events, query, orderID, limit, offset); err != nil {
		return nil, fmt.Errorf("timeline repository: list by order %w", err)
	}
	return events, nil
}

// recordTimelineEventTx добавляет событие внутри открытой транзакции,
// чтобы запись истории фиксировалась вместе с вызвавшим её переходом.
func recordTimelineEventTx(ctx context.Context, tx *sqlx.Tx, event *models.TimelineEvent) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO timeline_events (order_id, actor_id, event_type, description, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`, event.OrderID, event.ActorID, event.EventType, event.Description, event.Metadata)
	if err != nil {
		return fmt.Errorf("timeline repository: record event %w", err)
	}
	return nil
}

// mustJSON сериализует metadata события; ошибки здесь невозможны для поддерживаемых типов.
func mustJSON(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
