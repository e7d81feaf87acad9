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

type MailingService struct {
	db DB
}

func NewMailingService(db DB) *MailingService {
	return &MailingService{db: db}
}

// checkReferences verifies that the message and every recipient attached to
// a mailing are visible to the caller. Attaching another user's entities is
// reported as a validation failure, not a not-found, because the mailing
// itself is what the caller is creating.
func (s *MailingService) checkReferences(ctx context.Context, scope Scope, messageID string, recipientIDs []string) error {
	var ownerID string
	err := s.db.QueryRow(ctx,
		`SELECT owner_id FROM messages WHERE id = $1 AND ($2::bool OR owner_id = $3)`,
		messageID, scope.All, scope.ActorID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return validationf("message %s does not exist", messageID)
		}
		return fmt.Errorf("check mailing message: %w", err)
	}

	if len(recipientIDs) == 0 {
		return validationf("mailing requires at least one recipient")
	}

	var count int
	err = s.db.QueryRow(ctx,
		`SELECT count(*) FROM recipients WHERE id = ANY($1) AND ($2::bool OR owner_id = $3)`,
		recipientIDs, scope.All, scope.ActorID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check mailing recipients: %w", err)
	}
	if count != len(recipientIDs) {
		return validationf("one or more recipients do not exist")
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *MailingService) Create(ctx context.Context, scope Scope, m *model.Mailing) error {
	m.RecipientIDs = dedupe(m.RecipientIDs)
	if err := s.checkReferences(ctx, scope, m.MessageID, m.RecipientIDs); err != nil {
		return err
	}

	m.ID = platform.NewID()
	m.Status = model.MailingCreated
	m.OwnerID = scope.ActorID
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO mailings (id, start_at, end_at, status, message_id, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.StartAt, m.EndAt, m.Status, m.MessageID, m.OwnerID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create mailing: %w", err)
	}

	for _, rid := range m.RecipientIDs {
		_, err := s.db.Exec(ctx,
			`INSERT INTO mailing_recipients (mailing_id, recipient_id) VALUES ($1, $2)`,
			m.ID, rid,
		)
		if err != nil {
			return fmt.Errorf("attach mailing recipient %s: %w", rid, err)
		}
	}
	return nil
}

const mailingSelect = `SELECT m.id, m.start_at, m.end_at, m.status, m.message_id,
		 coalesce(array_agg(mr.recipient_id ORDER BY mr.recipient_id)
		   FILTER (WHERE mr.recipient_id IS NOT NULL), '{}'),
		 m.owner_id, m.created_at, m.updated_at
	 FROM mailings m
	 LEFT JOIN mailing_recipients mr ON mr.mailing_id = m.id`

func (s *MailingService) GetByID(ctx context.Context, scope Scope, id string) (*model.Mailing, error) {
	var m model.Mailing
	err := s.db.QueryRow(ctx,
		mailingSelect+` WHERE m.id = $1 AND ($2::bool OR m.owner_id = $3) GROUP BY m.id`,
		id, scope.All, scope.ActorID,
	).Scan(&m.ID, &m.StartAt, &m.EndAt, &m.Status, &m.MessageID, &m.RecipientIDs,
		&m.OwnerID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get mailing %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get mailing %s: %w", id, err)
	}
	return &m, nil
}

func (s *MailingService) List(ctx context.Context, scope Scope, limit int, cursor string) ([]model.Mailing, bool, error) {
	query := mailingSelect + ` WHERE ($1::bool OR m.owner_id = $2)`
	args := []any{scope.All, scope.ActorID}
	argIdx := 3

	if cursor != "" {
		query += fmt.Sprintf(` AND m.id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` GROUP BY m.id ORDER BY m.id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list mailings: %w", err)
	}
	defer rows.Close()

	var mailings []model.Mailing
	for rows.Next() {
		var m model.Mailing
		if err := rows.Scan(&m.ID, &m.StartAt, &m.EndAt, &m.Status, &m.MessageID, &m.RecipientIDs,
			&m.OwnerID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan mailing: %w", err)
		}
		mailings = append(mailings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate mailings: %w", err)
	}

	hasMore := len(mailings) > limit
	if hasMore {
		mailings = mailings[:limit]
	}
	return mailings, hasMore, nil
}

// Update replaces the schedule, message and recipient set of a mailing.
// Status is never writable through Update; only dispatch advances it.
func (s *MailingService) Update(ctx context.Context, scope Scope, m *model.Mailing) error {
	m.RecipientIDs = dedupe(m.RecipientIDs)
	if err := s.checkReferences(ctx, scope, m.MessageID, m.RecipientIDs); err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE mailings SET start_at = $1, end_at = $2, message_id = $3, updated_at = now()
		 WHERE id = $4 AND ($5::bool OR owner_id = $6)`,
		m.StartAt, m.EndAt, m.MessageID, m.ID, scope.All, scope.ActorID,
	)
	if err != nil {
		return fmt.Errorf("update mailing %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update mailing %s: %w", m.ID, ErrNotFound)
	}

	_, err = s.db.Exec(ctx, `DELETE FROM mailing_recipients WHERE mailing_id = $1`, m.ID)
	if err != nil {
		return fmt.Errorf("detach mailing recipients %s: %w", m.ID, err)
	}
	for _, rid := range m.RecipientIDs {
		_, err := s.db.Exec(ctx,
			`INSERT INTO mailing_recipients (mailing_id, recipient_id) VALUES ($1, $2)`,
			m.ID, rid,
		)
		if err != nil {
			return fmt.Errorf("attach mailing recipient %s: %w", rid, err)
		}
	}
	return nil
}

func (s *MailingService) Delete(ctx context.Context, scope Scope, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM mailings WHERE id = $1 AND ($2::bool OR owner_id = $3)`,
		id, scope.All, scope.ActorID,
	)
	if err != nil {
		return fmt.Errorf("delete mailing %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete mailing %s: %w", id, ErrNotFound)
	}
	return nil
}
