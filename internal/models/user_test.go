package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoles(t *testing.T) {
	set, err := ParseRoles(" admin, beta,admin,,USER ")
	require.NoError(t, err)
	assert.Equal(t, RoleSet{RoleAdmin, RoleBeta, RoleUser}, set)
	assert.True(t, set.Has(RoleBeta))
	assert.Equal(t, "admin,beta,user", set.String())

	_, err = ParseRoles("admin,root")
	assert.Error(t, err)
}

func TestRoleSetScan(t *testing.T) {
	var set RoleSet
	require.NoError(t, set.Scan([]byte("user")))
	assert.Equal(t, RoleSet{RoleUser}, set)

	require.NoError(t, set.Scan(nil))
	assert.Nil(t, set)

	assert.Error(t, set.Scan(42))
}
