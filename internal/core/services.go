package core

import (
	"github.com/edvin/mailings/internal/mailer"
	"github.com/edvin/mailings/internal/policy"
)

// Scope bounds queries to what the acting identity may see: everything for
// staff and managers, otherwise only entities the actor owns.
type Scope struct {
	ActorID string
	All     bool
}

// ScopeFor derives the visibility scope for an identity.
func ScopeFor(id *policy.Identity) Scope {
	if id == nil {
		return Scope{}
	}
	return Scope{ActorID: id.UserID, All: policy.SeesAll(id)}
}

type Services struct {
	User      *UserService
	Token     *TokenService
	Recipient *RecipientService
	Message   *MessageService
	Mailing   *MailingService
	Attempt   *AttemptService
	Dispatch  *DispatchService
	Search    *SearchService
	Dashboard *DashboardService
}

func NewServices(db DB, transport mailer.Transport, mailFrom string) *Services {
	return &Services{
		User:      NewUserService(db),
		Token:     NewTokenService(db),
		Recipient: NewRecipientService(db),
		Message:   NewMessageService(db),
		Mailing:   NewMailingService(db),
		Attempt:   NewAttemptService(db),
		Dispatch:  NewDispatchService(db, transport, mailFrom),
		Search:    NewSearchService(db),
		Dashboard: NewDashboardService(db),
	}
}
