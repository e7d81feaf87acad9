package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCan_NilIdentity(t *testing.T) {
	assert.False(t, Can(nil, CapRecipientView))
}

func TestCan_ExactMatch(t *testing.T) {
	id := &Identity{Permissions: []string{"recipient:view", "mailing:send"}}

	assert.True(t, Can(id, CapRecipientView))
	assert.True(t, Can(id, CapMailingSend))
	assert.False(t, Can(id, CapRecipientDelete))
	assert.False(t, Can(id, CapMailingChange))
}

func TestCan_Wildcard(t *testing.T) {
	id := &Identity{Permissions: []string{Wildcard}}

	assert.True(t, Can(id, CapRecipientView))
	assert.True(t, Can(id, CapMailingSend))
	assert.True(t, Can(id, CapAttemptView))
}

func TestCan_FailsClosed(t *testing.T) {
	// Staff and group membership grant visibility, not capabilities.
	id := &Identity{IsStaff: true, Groups: []string{ManagersGroup}}
	assert.False(t, Can(id, CapRecipientView))
}

func TestSeesAll(t *testing.T) {
	assert.False(t, SeesAll(nil))
	assert.False(t, SeesAll(&Identity{}))
	assert.True(t, SeesAll(&Identity{IsStaff: true}))
	assert.True(t, SeesAll(&Identity{Groups: []string{"support", ManagersGroup}}))
	assert.False(t, SeesAll(&Identity{Groups: []string{"support"}}))
}

func TestManagerPermissions_CoversSend(t *testing.T) {
	perms := ManagerPermissions()
	assert.Contains(t, perms, string(CapMailingSend))
	assert.Contains(t, perms, string(CapAttemptView))
	assert.Len(t, perms, 14)
}
