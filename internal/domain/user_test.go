package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_CanModerate(t *testing.T) {
	assert.True(t, RoleModerator.CanModerate())
	assert.True(t, RoleAdmin.CanModerate())
	assert.False(t, RoleResident.CanModerate())
	assert.False(t, RoleStaff.CanModerate())
	assert.False(t, RoleCouncilMember.CanModerate())
}

func TestRole_CanViewAllComments(t *testing.T) {
	assert.False(t, RoleResident.CanViewAllComments())
	assert.True(t, RoleStaff.CanViewAllComments())
	assert.True(t, RoleModerator.CanViewAllComments())
	assert.True(t, RoleCouncilMember.CanViewAllComments())
	assert.True(t, RoleAdmin.CanViewAllComments())
}
