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

type customerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	stamp(&customer.Base)

	doc, err := marshalDoc(customer)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO customers (id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, customer.ID, doc, customer.CreatedAt, customer.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return getDoc[model.Customer](ctx, r.db, `SELECT doc FROM customers WHERE id = $1`, id)
}

func (r *customerRepository) UpdateLoyaltySummary(ctx context.Context, id uuid.UUID, summary model.LoyaltySummary) error {
	now := time.Now().UTC()
	query := `
		UPDATE customers
		SET doc = doc || jsonb_build_object(
				'loyaltyStatus', $2::text,
				'currentTier', $3::text,
				'loyaltyPoints', $4::int,
				'updatedAt', $5::text),
			updated_at = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		id,
		string(summary.Status),
		summary.Tier,
		summary.Points,
		now.Format(time.RFC3339Nano),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer loyalty summary: %w", err)
	}
	return expectOne(res, repository.ErrNotFound)
}
