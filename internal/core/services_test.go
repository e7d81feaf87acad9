package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/mailings/internal/policy"
)

func TestNewServices(t *testing.T) {
	db := &mockDB{}
	svcs := NewServices(db, &fakeTransport{}, "noreply@example.com")

	require.NotNil(t, svcs)
	assert.NotNil(t, svcs.User)
	assert.NotNil(t, svcs.Token)
	assert.NotNil(t, svcs.Recipient)
	assert.NotNil(t, svcs.Message)
	assert.NotNil(t, svcs.Mailing)
	assert.NotNil(t, svcs.Attempt)
	assert.NotNil(t, svcs.Dispatch)
	assert.NotNil(t, svcs.Search)
	assert.NotNil(t, svcs.Dashboard)
}

func TestScopeFor(t *testing.T) {
	assert.Equal(t, Scope{}, ScopeFor(nil))

	member := &policy.Identity{UserID: "user-1"}
	assert.Equal(t, Scope{ActorID: "user-1"}, ScopeFor(member))

	staff := &policy.Identity{UserID: "staff-1", IsStaff: true}
	assert.Equal(t, Scope{ActorID: "staff-1", All: true}, ScopeFor(staff))

	manager := &policy.Identity{UserID: "mgr-1", Groups: []string{policy.ManagersGroup}}
	assert.Equal(t, Scope{ActorID: "mgr-1", All: true}, ScopeFor(manager))
}
