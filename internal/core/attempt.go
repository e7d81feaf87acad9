package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/mailings/internal/model"
)

// AttemptService reads the mail attempt log. Attempts are written by the
// dispatch engine only and are never updated or deleted through the API.
type AttemptService struct {
	db DB
}

func NewAttemptService(db DB) *AttemptService {
	return &AttemptService{db: db}
}

func (s *AttemptService) GetByID(ctx context.Context, scope Scope, id string) (*model.MailAttempt, error) {
	var a model.MailAttempt
	err := s.db.QueryRow(ctx,
		`SELECT id, mailing_id, recipient_id, attempted_at, status, response, owner_id
		 FROM mail_attempts WHERE id = $1 AND ($2::bool OR owner_id = $3)`,
		id, scope.All, scope.ActorID,
	).Scan(&a.ID, &a.MailingID, &a.RecipientID, &a.AttemptedAt, &a.Status, &a.Response, &a.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get mail attempt %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get mail attempt %s: %w", id, err)
	}
	return &a, nil
}

func (s *AttemptService) List(ctx context.Context, scope Scope, mailingID string, limit int, cursor string) ([]model.MailAttempt, bool, error) {
	query := `SELECT id, mailing_id, recipient_id, attempted_at, status, response, owner_id
		 FROM mail_attempts WHERE ($1::bool OR owner_id = $2)`
	args := []any{scope.All, scope.ActorID}
	argIdx := 3

	if mailingID != "" {
		query += fmt.Sprintf(` AND mailing_id = $%d`, argIdx)
		args = append(args, mailingID)
		argIdx++
	}
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
		return nil, false, fmt.Errorf("list mail attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.MailAttempt
	for rows.Next() {
		var a model.MailAttempt
		if err := rows.Scan(&a.ID, &a.MailingID, &a.RecipientID, &a.AttemptedAt, &a.Status, &a.Response, &a.OwnerID); err != nil {
			return nil, false, fmt.Errorf("scan mail attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate mail attempts: %w", err)
	}

	hasMore := len(attempts) > limit
	if hasMore {
		attempts = attempts[:limit]
	}
	return attempts, hasMore, nil
}
