package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

type challengeRepository struct {
	db *sqlx.DB
}

func NewChallengeRepository(db *sqlx.DB) repository.ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *model.Challenge) error {
	stamp(&challenge.Base)
	challenge.Version = 1

	doc, err := marshalDoc(challenge)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO challenges (id, status, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		challenge.ID,
		challenge.Status,
		challenge.Version,
		doc,
		challenge.CreatedAt,
		challenge.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

func (r *challengeRepository) Get(ctx context.Context, id uuid.UUID) (*model.Challenge, error) {
	return getDoc[model.Challenge](ctx, r.db, `SELECT doc FROM challenges WHERE id = $1`, id)
}

func (r *challengeRepository) Update(ctx context.Context, challenge *model.Challenge) error {
	expected := challenge.Version
	challenge.Version++

	doc, err := marshalDoc(challenge)
	if err != nil {
		challenge.Version = expected
		return err
	}

	query := `
		UPDATE challenges
		SET status = $1, version = $2, doc = $3, updated_at = $4
		WHERE id = $5 AND version = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		challenge.Status,
		challenge.Version,
		doc,
		challenge.UpdatedAt,
		challenge.ID,
		expected,
	)
	if err != nil {
		challenge.Version = expected
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	if err := expectOne(res, repository.ErrConflict); err != nil {
		challenge.Version = expected
		return err
	}
	return nil
}

func (r *challengeRepository) ListByStatus(ctx context.Context, statuses []model.ChallengeStatus, offset, limit int) ([]*model.Challenge, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	query := `
		SELECT doc FROM challenges
		WHERE status = ANY($1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	return listDocs[model.Challenge](ctx, r.db, query, pq.Array(values), limit, offset)
}
