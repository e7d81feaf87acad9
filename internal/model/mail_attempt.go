package model

import "time"

// MailAttempt is an immutable audit record of one send outcome for one
// (mailing, recipient) pair. Repeated dispatches append new records.
type MailAttempt struct {
	ID          string    `json:"id"`
	MailingID   string    `json:"mailing_id"`
	RecipientID string    `json:"recipient_id"`
	AttemptedAt time.Time `json:"attempted_at"`
	Status      string    `json:"status"`
	Response    string    `json:"response"`
	OwnerID     string    `json:"owner_id"`
}
