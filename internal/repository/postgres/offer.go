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

type offerRepository struct {
	db *sqlx.DB
}

func NewOfferRepository(db *sqlx.DB) repository.OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, offer *model.RewardsOffer) error {
	stamp(&offer.Base)
	offer.Version = 1

	doc, err := marshalDoc(offer)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO offers (
			id, category, is_active, valid_from, valid_until, version, doc, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`
	_, err = r.db.ExecContext(ctx, query,
		offer.ID,
		offer.Category,
		offer.IsActive,
		offer.ValidFrom,
		offer.ValidUntil,
		offer.Version,
		doc,
		offer.CreatedAt,
		offer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (r *offerRepository) Get(ctx context.Context, id uuid.UUID) (*model.RewardsOffer, error) {
	return getDoc[model.RewardsOffer](ctx, r.db, `SELECT doc FROM offers WHERE id = $1`, id)
}

func (r *offerRepository) Update(ctx context.Context, offer *model.RewardsOffer) error {
	expected := offer.Version
	offer.Version++

	doc, err := marshalDoc(offer)
	if err != nil {
		offer.Version = expected
		return err
	}

	query := `
		UPDATE offers
		SET category = $1, is_active = $2, valid_from = $3, valid_until = $4,
			version = $5, doc = $6, updated_at = $7
		WHERE id = $8 AND version = $9
	`
	res, err := r.db.ExecContext(ctx, query,
		offer.Category,
		offer.IsActive,
		offer.ValidFrom,
		offer.ValidUntil,
		offer.Version,
		doc,
		offer.UpdatedAt,
		offer.ID,
		expected,
	)
	if err != nil {
		offer.Version = expected
		return fmt.Errorf("failed to update offer: %w", err)
	}
	if err := expectOne(res, repository.ErrConflict); err != nil {
		offer.Version = expected
		return err
	}
	return nil
}

func (r *offerRepository) ListActive(ctx context.Context, at time.Time, category string, limit int) ([]*model.RewardsOffer, error) {
	query := `
		SELECT doc FROM offers
		WHERE is_active
			AND valid_from <= $1
			AND valid_until >= $1
			AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	return listDocs[model.RewardsOffer](ctx, r.db, query, at, category, limit)
}
