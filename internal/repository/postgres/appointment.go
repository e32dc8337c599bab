package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

const defaultListLimit = 100

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	stamp(&appointment.Base)
	appointment.Version = 1

	doc, err := marshalDoc(appointment)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO appointments (
			id, customer_id, status, date_time, version, doc, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`
	_, err = r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.Customer,
		appointment.Status,
		appointment.Scheduling.DateTime,
		appointment.Version,
		doc,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return getDoc[model.Appointment](ctx, r.db, `SELECT doc FROM appointments WHERE id = $1`, id)
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	expected := appointment.Version
	appointment.Version++

	doc, err := marshalDoc(appointment)
	if err != nil {
		appointment.Version = expected
		return err
	}

	query := `
		UPDATE appointments
		SET customer_id = $1, status = $2, date_time = $3, version = $4, doc = $5, updated_at = $6
		WHERE id = $7 AND version = $8
	`
	res, err := r.db.ExecContext(ctx, query,
		appointment.Customer,
		appointment.Status,
		appointment.Scheduling.DateTime,
		appointment.Version,
		doc,
		appointment.UpdatedAt,
		appointment.ID,
		expected,
	)
	if err != nil {
		appointment.Version = expected
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if err := expectOne(res, repository.ErrConflict); err != nil {
		appointment.Version = expected
		return err
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	limit := defaultListLimit
	if filters != nil {
		if filters.Customer != nil {
			where = append(where, "customer_id = "+arg(*filters.Customer))
		}
		if filters.Status != "" {
			where = append(where, "status = "+arg(string(filters.Status)))
		}
		if filters.StartDate != nil {
			where = append(where, "date_time >= "+arg(*filters.StartDate))
		}
		if filters.EndDate != nil {
			where = append(where, "date_time <= "+arg(*filters.EndDate))
		}
		if filters.Limit > 0 {
			limit = filters.Limit
		}
	}

	query := "SELECT doc FROM appointments"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date_time DESC NULLS LAST, created_at DESC LIMIT " + arg(limit)

	return listDocs[model.Appointment](ctx, r.db, query, args...)
}
