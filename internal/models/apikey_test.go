package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApiKey_HasPermission(t *testing.T) {
	scoped := &ApiKey{Permissions: []Permission{PermRequestsCreate, PermRequestsRead}}

	assert.True(t, scoped.HasPermission(PermRequestsCreate))
	assert.True(t, scoped.HasPermission(PermRequestsRead))
	assert.False(t, scoped.HasPermission(PermRequestsCancel))
	assert.False(t, scoped.HasPermission(PermProvidersRead))

	wildcard := &ApiKey{Permissions: []Permission{PermWildcard}}
	for _, p := range Permissions {
		assert.True(t, wildcard.HasPermission(p), string(p))
	}

	empty := &ApiKey{}
	assert.False(t, empty.HasPermission(PermRequestsRead))
}

func TestIsValidPermission(t *testing.T) {
	assert.True(t, IsValidPermission(PermWildcard))
	for _, p := range Permissions {
		assert.True(t, IsValidPermission(p), string(p))
	}
	assert.False(t, IsValidPermission("requests:delete"))
	assert.False(t, IsValidPermission(""))
}
