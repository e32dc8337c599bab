package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

type outboxRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewOutboxRepository(db *mongo.Database) repository.OutboxRepository {
	return &outboxRepository{coll: db.Collection(colOutbox), now: time.Now}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	now := r.now().UTC()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = model.OutboxStatusPending
	}
	event.CreatedAt, event.UpdatedAt = now, now
	return insert(ctx, r.coll, event)
}

// ClaimPendingEvents claims events one at a time with FindOneAndUpdate so
// concurrent workers never receive the same event.
func (r *outboxRepository) ClaimPendingEvents(ctx context.Context, limit, maxRetries int, staleBefore time.Time) ([]*model.OutboxEvent, error) {
	filter := claimFilter(maxRetries, staleBefore)
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetReturnDocument(options.After)

	events := make([]*model.OutboxEvent, 0, limit)
	for len(events) < limit {
		update := bson.M{"$set": bson.M{"status": model.OutboxStatusProcessing, "updated_at": r.now().UTC()}}

		var event model.OutboxEvent
		err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&event)
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			break
		}
		if err != nil {
			return events, fmt.Errorf("failed to claim outbox event: %w", err)
		}
		events = append(events, &event)
	}
	return events, nil
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	now := r.now().UTC()
	set := bson.M{"status": status, "error_message": errorMessage, "updated_at": now}
	update := bson.M{"$set": set}
	switch status {
	case model.OutboxStatusProcessed:
		set["processed_at"] = now
	case model.OutboxStatusFailed:
		update["$inc"] = bson.M{"retry_count": 1}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update outbox event: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{
		"status":       model.OutboxStatusProcessed,
		"processed_at": bson.M{"$lt": before},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed outbox events: %w", err)
	}
	return res.DeletedCount, nil
}

func claimFilter(maxRetries int, staleBefore time.Time) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"status": model.OutboxStatusPending},
		bson.M{"status": model.OutboxStatusFailed, "retry_count": bson.M{"$lt": maxRetries}},
		bson.M{"status": model.OutboxStatusProcessing, "updated_at": bson.M{"$lt": staleBefore}},
	}}
}
