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

type MessageService struct {
	db DB
}

func NewMessageService(db DB) *MessageService {
	return &MessageService{db: db}
}

func (s *MessageService) Create(ctx context.Context, scope Scope, m *model.Message) error {
	m.ID = platform.NewID()
	m.OwnerID = scope.ActorID
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO messages (id, subject, body, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.Subject, m.Body, m.OwnerID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (s *MessageService) GetByID(ctx context.Context, scope Scope, id string) (*model.Message, error) {
	var m model.Message
	err := s.db.QueryRow(ctx,
		`SELECT id, subject, body, owner_id, created_at, updated_at
		 FROM messages WHERE id = $1 AND ($2::bool OR owner_id = $3)`,
		id, scope.All, scope.ActorID,
	).Scan(&m.ID, &m.Subject, &m.Body, &m.OwnerID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get message %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return &m, nil
}

func (s *MessageService) List(ctx context.Context, scope Scope, limit int, cursor string) ([]model.Message, bool, error) {
	query := `SELECT id, subject, body, owner_id, created_at, updated_at
		 FROM messages WHERE ($1::bool OR owner_id = $2)`
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
		return nil, false, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Subject, &m.Body, &m.OwnerID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate messages: %w", err)
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	return messages, hasMore, nil
}

func (s *MessageService) Update(ctx context.Context, scope Scope, m *model.Message) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE messages SET subject = $1, body = $2, updated_at = now()
		 WHERE id = $3 AND ($4::bool OR owner_id = $5)`,
		m.Subject, m.Body, m.ID, scope.All, scope.ActorID,
	)
	if err != nil {
		return fmt.Errorf("update message %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update message %s: %w", m.ID, ErrNotFound)
	}
	return nil
}

func (s *MessageService) Delete(ctx context.Context, scope Scope, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM messages WHERE id = $1 AND ($2::bool OR owner_id = $3)`,
		id, scope.All, scope.ActorID,
	)
	if err != nil {
		return fmt.Errorf("delete message %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete message %s: %w", id, ErrNotFound)
	}
	return nil
}
