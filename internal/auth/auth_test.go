package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleTable_GrantRevoke(t *testing.T) {
	roles := NewRoleTable()

	assert.False(t, roles.IsAuthorized("alice", CapSetFees))

	roles.Grant("alice", CapSetFees)
	assert.True(t, roles.IsAuthorized("alice", CapSetFees))
	assert.False(t, roles.IsAuthorized("alice", CapRouteFunds))
	assert.False(t, roles.IsAuthorized("bob", CapSetFees))

	roles.Revoke("alice", CapSetFees)
	assert.False(t, roles.IsAuthorized("alice", CapSetFees))

	// Revoking an absent grant is a no-op.
	roles.Revoke("bob", CapUpdateRate)
	assert.False(t, roles.IsAuthorized("bob", CapUpdateRate))
}
