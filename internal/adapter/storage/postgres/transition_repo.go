package postgres

import (
	"context"
	"fmt"

	"marketplace-backoffice/internal/core/domain"

	"github.com/google/uuid"
)

// TransitionRepo implements ports.TransitionRepository. Rows are
// append-only; there is no update or delete path.
type TransitionRepo struct {
	pool Pool
}

// NewTransitionRepo creates a new TransitionRepo.
func NewTransitionRepo(pool Pool) *TransitionRepo {
	return &TransitionRepo{pool: pool}
}

// Append inserts a transition audit row.
func (r *TransitionRepo) Append(ctx context.Context, rec *domain.TransitionRecord) error {
	query := `INSERT INTO transitions (id, entity_type, entity_id, from_status, to_status, actor_id, actor_role, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.EntityType, rec.EntityID,
		rec.FromStatus, rec.ToStatus,
		rec.ActorID, rec.ActorRole, rec.Reason, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

// ListByEntity fetches the transition history of one entity, oldest first.
func (r *TransitionRepo) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]domain.TransitionRecord, error) {
	query := `SELECT id, entity_type, entity_id, from_status, to_status, actor_id, actor_role, reason, created_at
		FROM transitions
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var records []domain.TransitionRecord
	for rows.Next() {
		rec := domain.TransitionRecord{}
		err := rows.Scan(
			&rec.ID, &rec.EntityType, &rec.EntityID,
			&rec.FromStatus, &rec.ToStatus,
			&rec.ActorID, &rec.ActorRole, &rec.Reason, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transition row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transition rows: %w", err)
	}
	return records, nil
}
