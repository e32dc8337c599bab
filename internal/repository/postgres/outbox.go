package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

type outboxRepository struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now().UTC()
	event.UpdatedAt = event.CreatedAt
	event.Status = model.OutboxStatusPending

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		string(event.Payload),
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// ClaimPendingEvents marks up to limit events as processing and returns them
// oldest first.
func (r *outboxRepository) ClaimPendingEvents(ctx context.Context, limit, maxRetries int, staleBefore time.Time) ([]*model.OutboxEvent, error) {
	query := `
		WITH claimed AS (
			UPDATE outbox_events
			SET status = 'processing', updated_at = NOW()
			WHERE id IN (
				SELECT id FROM outbox_events
				WHERE status = 'pending'
					OR (status = 'failed' AND retry_count < $2)
					OR (status = 'processing' AND updated_at < $3)
				ORDER BY created_at ASC
				LIMIT $1
				FOR UPDATE SKIP LOCKED
			)
			RETURNING id, event_type, payload, status, error_message, retry_count, created_at, processed_at, updated_at
		)
		SELECT * FROM claimed
		ORDER BY created_at ASC, id ASC
	`

	var events []*model.OutboxEvent
	if err := r.db.SelectContext(ctx, &events, query, limit, maxRetries, staleBefore); err != nil {
		return nil, fmt.Errorf("failed to claim outbox events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	query := `
		UPDATE outbox_events
		SET status = $1::text,
			error_message = $2,
			retry_count = retry_count + CASE WHEN $1::text = 'failed' THEN 1 ELSE 0 END,
			processed_at = CASE WHEN $1::text = 'processed' THEN NOW() ELSE processed_at END,
			updated_at = NOW()
		WHERE id = $3
	`
	res, err := r.db.ExecContext(ctx, query, string(status), errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update outbox event: %w", err)
	}
	return expectOne(res, repository.ErrNotFound)
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = 'processed'
		AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}

	return result.RowsAffected()
}
