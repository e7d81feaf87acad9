package policy

// Capability names one {entity, operation} pair. Capabilities replace the
// string-keyed permission checks of the legacy system with an enumerated
// type checked through Can.
type Capability string

const (
	CapRecipientView   Capability = "recipient:view"
	CapRecipientAdd    Capability = "recipient:add"
	CapRecipientChange Capability = "recipient:change"
	CapRecipientDelete Capability = "recipient:delete"

	CapMessageView   Capability = "message:view"
	CapMessageAdd    Capability = "message:add"
	CapMessageChange Capability = "message:change"
	CapMessageDelete Capability = "message:delete"

	CapMailingView   Capability = "mailing:view"
	CapMailingAdd    Capability = "mailing:add"
	CapMailingChange Capability = "mailing:change"
	CapMailingDelete Capability = "mailing:delete"
	// CapMailingSend is distinct from change: triggering a dispatch is its
	// own grant.
	CapMailingSend Capability = "mailing:send"

	CapAttemptView Capability = "attempt:view"
)

// Wildcard grants every capability.
const Wildcard = "*:*"

// ManagersGroup members see all entities regardless of ownership.
const ManagersGroup = "managers"

// Identity is the resolved acting identity passed explicitly through every
// CRUD and dispatch call.
type Identity struct {
	UserID      string
	Email       string
	IsStaff     bool
	Groups      []string
	Permissions []string
}

// Can reports whether the identity holds the named capability. It fails
// closed: a nil identity or a missing grant denies the operation.
func Can(id *Identity, cap Capability) bool {
	if id == nil {
		return false
	}
	for _, p := range id.Permissions {
		if p == Wildcard || p == string(cap) {
			return true
		}
	}
	return false
}

// SeesAll reports whether the identity's listings span every owner: true for
// staff users and members of the managers group.
func SeesAll(id *Identity) bool {
	if id == nil {
		return false
	}
	if id.IsStaff {
		return true
	}
	for _, g := range id.Groups {
		if g == ManagersGroup {
			return true
		}
	}
	return false
}

// MemberPermissions is the default capability set for a newly created user:
// full CRUD on their own entities plus attempt reads. Dispatch is granted
// separately through the managers group.
func MemberPermissions() []string {
	caps := []Capability{
		CapRecipientView, CapRecipientAdd, CapRecipientChange, CapRecipientDelete,
		CapMessageView, CapMessageAdd, CapMessageChange, CapMessageDelete,
		CapMailingView, CapMailingAdd, CapMailingChange, CapMailingDelete,
		CapAttemptView,
	}
	perms := make([]string, len(caps))
	for i, c := range caps {
		perms[i] = string(c)
	}
	return perms
}

// ManagerPermissions is the full capability set granted to the managers
// group.
func ManagerPermissions() []string {
	caps := []Capability{
		CapRecipientView, CapRecipientAdd, CapRecipientChange, CapRecipientDelete,
		CapMessageView, CapMessageAdd, CapMessageChange, CapMessageDelete,
		CapMailingView, CapMailingAdd, CapMailingChange, CapMailingDelete,
		CapMailingSend,
		CapAttemptView,
	}
	perms := make([]string, len(caps))
	for i, c := range caps {
		perms[i] = string(c)
	}
	return perms
}
