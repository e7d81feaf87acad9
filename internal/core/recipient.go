package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/mailings/internal/model"
	"github.com/edvin/mailings/internal/platform"
)

type RecipientService struct {
	db DB
}

func NewRecipientService(db DB) *RecipientService {
	return &RecipientService{db: db}
}

func (s *RecipientService) Create(ctx context.Context, scope Scope, r *model.Recipient) error {
	r.ID = platform.NewID()
	r.OwnerID = scope.ActorID
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO recipients (id, email, full_name, comment, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.Email, r.FullName, r.Comment, r.OwnerID, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return validationf("recipient with email %s already exists", r.Email)
		}
		return fmt.Errorf("create recipient: %w", err)
	}
	return nil
}

func (s *RecipientService) GetByID(ctx context.Context, scope Scope, id string) (*model.Recipient, error) {
	var r model.Recipient
	err := s.db.QueryRow(ctx,
		`SELECT id, email, full_name, comment, owner_id, created_at, updated_at
		 FROM recipients WHERE id = $1 AND ($2::bool OR owner_id = $3)`,
		id, scope.All, scope.ActorID,
	).Scan(&r.ID, &r.Email, &r.FullName, &r.Comment, &r.OwnerID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get recipient %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get recipient %s: %w", id, err)
	}
	return &r, nil
}

func (s *RecipientService) List(ctx context.Context, scope Scope, limit int, cursor string) ([]model.Recipient, bool, error) {
	query := `SELECT id, email, full_name, comment, owner_id, created_at, updated_at
		 FROM recipients WHERE ($1::bool OR owner_id = $2)`
	args := []any{scope.All, scope.ActorID}
	argIdx := 3

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	var recipients []model.Recipient
	for rows.Next() {
		var r model.Recipient
		if err := rows.Scan(&r.ID, &r.Email, &r.FullName, &r.Comment, &r.OwnerID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate recipients: %w", err)
	}

	hasMore := len(recipients) > limit
	if hasMore {
		recipients = recipients[:limit]
	}
	return recipients, hasMore, nil
}

func (s *RecipientService) Update(ctx context.Context, scope Scope, r *model.Recipient) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE recipients SET email = $1, full_name = $2, comment = $3, updated_at = now()
		 WHERE id = $4 AND ($5::bool OR owner_id = $6)`,
		r.Email, r.FullName, r.Comment, r.ID, scope.All, scope.ActorID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return validationf("recipient with email %s already exists", r.Email)
		}
		return fmt.Errorf("update recipient %s: %w", r.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update recipient %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

func (s *RecipientService) Delete(ctx context.Context, scope Scope, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM recipients WHERE id = $1 AND ($2::bool OR owner_id = $3)`,
		id, scope.All, scope.ActorID,
	)
	if err != nil {
		return fmt.Errorf("delete recipient %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete recipient %s: %w", id, ErrNotFound)
	}
	return nil
}
