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

type loyaltyAccountRepository struct {
	db *sqlx.DB
}

func NewLoyaltyAccountRepository(db *sqlx.DB) repository.LoyaltyAccountRepository {
	return &loyaltyAccountRepository{db: db}
}

func (r *loyaltyAccountRepository) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*model.CustomerLoyalty, error) {
	return getDoc[model.CustomerLoyalty](ctx, r.db, `SELECT doc FROM loyalty_accounts WHERE customer_id = $1`, customerID)
}

func (r *loyaltyAccountRepository) Create(ctx context.Context, account *model.CustomerLoyalty) error {
	stamp(&account.Base)
	account.Version = 1

	doc, err := marshalDoc(account)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO loyalty_accounts (id, customer_id, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (customer_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Customer,
		account.Version,
		doc,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create loyalty account: %w", err)
	}
	return expectOne(res, repository.ErrConflict)
}

func (r *loyaltyAccountRepository) Update(ctx context.Context, account *model.CustomerLoyalty) error {
	expected := account.Version
	account.Version++

	doc, err := marshalDoc(account)
	if err != nil {
		account.Version = expected
		return err
	}

	query := `
		UPDATE loyalty_accounts
		SET version = $1, doc = $2, updated_at = $3
		WHERE id = $4 AND version = $5
	`
	res, err := r.db.ExecContext(ctx, query, account.Version, doc, account.UpdatedAt, account.ID, expected)
	if err != nil {
		account.Version = expected
		return fmt.Errorf("failed to update loyalty account: %w", err)
	}
	if err := expectOne(res, repository.ErrConflict); err != nil {
		account.Version = expected
		return err
	}
	return nil
}

type loyaltyProgramRepository struct {
	BaseRepository
}

func NewLoyaltyProgramRepository(db *sqlx.DB) repository.LoyaltyProgramRepository {
	return &loyaltyProgramRepository{NewBaseRepository(db)}
}

func (r *loyaltyProgramRepository) GetActive(ctx context.Context) (*model.LoyaltyProgram, error) {
	query := `
		SELECT doc FROM loyalty_programs
		WHERE is_active
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return getDoc[model.LoyaltyProgram](ctx, r.db, query)
}

func (r *loyaltyProgramRepository) Save(ctx context.Context, program *model.LoyaltyProgram) error {
	stamp(&program.Base)

	doc, err := marshalDoc(program)
	if err != nil {
		return err
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if program.IsActive {
			deactivate := `
				UPDATE loyalty_programs
				SET is_active = FALSE,
					doc = jsonb_set(doc, '{isActive}', 'false'::jsonb),
					updated_at = $2
				WHERE is_active AND id <> $1
			`
			if _, err := tx.ExecContext(ctx, deactivate, program.ID, time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to deactivate loyalty programs: %w", err)
			}
		}

		upsert := `
			INSERT INTO loyalty_programs (id, is_active, doc, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET is_active = EXCLUDED.is_active, doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
		`
		if _, err := tx.ExecContext(ctx, upsert, program.ID, program.IsActive, doc, program.CreatedAt, program.UpdatedAt); err != nil {
			return fmt.Errorf("failed to save loyalty program: %w", err)
		}
		return nil
	})
}
