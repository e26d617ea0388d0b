package auth

import "sync"

// Capability identifies a guarded administrative operation. The ledgers
// consult an Authorizer with the calling account and the capability before
// performing the mutation; they never store roles themselves.
type Capability string

const (
	CapSetFees           Capability = "fees.set"
	CapCollectFees       Capability = "fees.collect"
	CapRouteFunds        Capability = "funds.route"
	CapUpdateRate        Capability = "rate.update"
	CapTransferOwnership Capability = "ownership.transfer"
)

// Authorizer is the capability-check collaborator. IsAuthorized must be a
// pure predicate: no side effects, answered synchronously.
type Authorizer interface {
	IsAuthorized(caller string, capability Capability) bool
}

// RoleTable is a static in-memory Authorizer backed by explicit grants.
type RoleTable struct {
	mu     sync.RWMutex
	grants map[string]map[Capability]bool
}

// NewRoleTable returns an empty RoleTable. A table with no grants denies
// every capability.
func NewRoleTable() *RoleTable {
	return &RoleTable{
		grants: make(map[string]map[Capability]bool),
	}
}

// Grant allows the account to exercise the capability.
func (r *RoleTable) Grant(account string, capability Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()

	caps, ok := r.grants[account]
	if !ok {
		caps = make(map[Capability]bool)
		r.grants[account] = caps
	}
	caps[capability] = true
}

// Revoke removes a previously issued grant. Revoking an absent grant is a
// no-op.
func (r *RoleTable) Revoke(account string, capability Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caps, ok := r.grants[account]; ok {
		delete(caps, capability)
	}
}

// IsAuthorized reports whether the account holds the capability.
func (r *RoleTable) IsAuthorized(caller string, capability Capability) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.grants[caller][capability]
}
