package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/mailings/internal/mailer"
	"github.com/edvin/mailings/internal/model"
	"github.com/edvin/mailings/internal/platform"
)

const attemptSuccessResponse = "OK"

// DispatchService runs a mailing: it marks the mailing RUNNING, sends the
// message to every attached recipient through the mail transport, records
// one MailAttempt per recipient, and settles the final status.
type DispatchService struct {
	db        DB
	transport mailer.Transport
	from      string

	// locks holds one mutex per mailing id so that at most one dispatch of
	// a given mailing runs at a time. Losers are rejected, not queued.
	locks sync.Map
}

func NewDispatchService(db DB, transport mailer.Transport, from string) *DispatchService {
	return &DispatchService{db: db, transport: transport, from: from}
}

type DispatchResult struct {
	MailingID string              `json:"mailing_id"`
	Status    string              `json:"status"`
	Attempts  []model.MailAttempt `json:"attempts"`
}

func (s *DispatchService) Send(ctx context.Context, scope Scope, mailingID string) (*DispatchResult, error) {
	lock, _ := s.locks.LoadOrStore(mailingID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	if !mu.TryLock() {
		return nil, fmt.Errorf("dispatch mailing %s: %w", mailingID, ErrDispatchInProgress)
	}
	defer mu.Unlock()

	var (
		status    string
		messageID string
		endAt     time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT status, message_id, end_at FROM mailings
		 WHERE id = $1 AND ($2::bool OR owner_id = $3)`,
		mailingID, scope.All, scope.ActorID,
	).Scan(&status, &messageID, &endAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("dispatch mailing %s: %w", mailingID, ErrNotFound)
		}
		return nil, fmt.Errorf("dispatch mailing %s: %w", mailingID, err)
	}
	if status == model.MailingFinished {
		return nil, fmt.Errorf("dispatch mailing %s: %w", mailingID, ErrMailingFinished)
	}

	if err := s.setStatus(ctx, mailingID, model.MailingRunning); err != nil {
		return nil, err
	}

	var msg model.Message
	err = s.db.QueryRow(ctx,
		`SELECT subject, body FROM messages WHERE id = $1`, messageID,
	).Scan(&msg.Subject, &msg.Body)
	if err != nil {
		return nil, fmt.Errorf("dispatch mailing %s: load message: %w", mailingID, err)
	}

	recipients, err := s.loadRecipients(ctx, mailingID)
	if err != nil {
		return nil, err
	}

	attempts := make([]model.MailAttempt, 0, len(recipients))
	for _, r := range recipients {
		attempt := model.MailAttempt{
			ID:          platform.NewID(),
			MailingID:   mailingID,
			RecipientID: r.ID,
			AttemptedAt: time.Now(),
			OwnerID:     scope.ActorID,
		}

		sendErr := s.transport.Send(ctx, mailer.Mail{
			From:    s.from,
			To:      r.Email,
			Subject: msg.Subject,
			Body:    msg.Body,
		})
		if sendErr != nil {
			attempt.Status = model.AttemptFailed
			attempt.Response = sendErr.Error()
		} else {
			attempt.Status = model.AttemptSuccess
			attempt.Response = attemptSuccessResponse
		}

		if err := s.recordAttempt(ctx, &attempt); err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}

	final := model.MailingRunning
	if time.Now().After(endAt) {
		final = model.MailingFinished
	}
	final = model.NextMailingStatus(model.MailingRunning, final)
	if err := s.setStatus(ctx, mailingID, final); err != nil {
		return nil, err
	}

	return &DispatchResult{MailingID: mailingID, Status: final, Attempts: attempts}, nil
}

func (s *DispatchService) setStatus(ctx context.Context, mailingID, status string) error {
	// The status guard keeps a concurrent observer from ever seeing a
	// FINISHED mailing move backwards.
	_, err := s.db.Exec(ctx,
		`UPDATE mailings SET status = $1, updated_at = now()
		 WHERE id = $2 AND status <> $3`,
		status, mailingID, model.MailingFinished,
	)
	if err != nil {
		return fmt.Errorf("set mailing %s status %s: %w", mailingID, status, err)
	}
	return nil
}

func (s *DispatchService) loadRecipients(ctx context.Context, mailingID string) ([]model.Recipient, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.email, r.full_name
		 FROM recipients r
		 JOIN mailing_recipients mr ON mr.recipient_id = r.id
		 WHERE mr.mailing_id = $1
		 ORDER BY r.id`,
		mailingID,
	)
	if err != nil {
		return nil, fmt.Errorf("load mailing %s recipients: %w", mailingID, err)
	}
	defer rows.Close()

	var recipients []model.Recipient
	for rows.Next() {
		var r model.Recipient
		if err := rows.Scan(&r.ID, &r.Email, &r.FullName); err != nil {
			return nil, fmt.Errorf("scan mailing recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mailing recipients: %w", err)
	}
	return recipients, nil
}

func (s *DispatchService) recordAttempt(ctx context.Context, a *model.MailAttempt) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO mail_attempts (id, mailing_id, recipient_id, attempted_at, status, response, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.MailingID, a.RecipientID, a.AttemptedAt, a.Status, a.Response, a.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("record mail attempt: %w", err)
	}
	return nil
}
