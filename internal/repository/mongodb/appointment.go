package mongodb

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

type appointmentRepository struct {
	coll *mongo.Collection
}

func NewAppointmentRepository(db *mongo.Database) repository.AppointmentRepository {
	return &appointmentRepository{coll: db.Collection(colAppointments)}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	stamp(&appointment.Base)
	appointment.Version = 1
	return insert(ctx, r.coll, appointment)
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return findOne[model.Appointment](ctx, r.coll, bson.M{"_id": id})
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	return replaceVersioned(ctx, r.coll, appointment.ID, &appointment.Version, appointment)
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	filter, limit := appointmentFilter(filters)
	opts := options.Find().
		SetSort(bson.D{{Key: "scheduling.date_time", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	return findMany[model.Appointment](ctx, r.coll, filter, opts)
}

func appointmentFilter(filters *model.AppointmentFilters) (bson.D, int) {
	filter := bson.D{}
	limit := defaultListLimit
	if filters == nil {
		return filter, limit
	}

	if filters.Customer != nil {
		filter = append(filter, bson.E{Key: "customer", Value: *filters.Customer})
	}
	if filters.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: filters.Status})
	}
	dateRange := bson.D{}
	if filters.StartDate != nil {
		dateRange = append(dateRange, bson.E{Key: "$gte", Value: *filters.StartDate})
	}
	if filters.EndDate != nil {
		dateRange = append(dateRange, bson.E{Key: "$lte", Value: *filters.EndDate})
	}
	if len(dateRange) > 0 {
		filter = append(filter, bson.E{Key: "scheduling.date_time", Value: dateRange})
	}
	if filters.Limit > 0 {
		limit = filters.Limit
	}
	return filter, limit
}
