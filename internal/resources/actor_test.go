package resources

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, role := range []Role{RoleFarmer, RoleBuyer, RoleTransporter, RoleAdmin} {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		require.Equal(t, role, parsed)
	}

	parsed, err := ParseRole(" farmer ")
	require.NoError(t, err)
	require.Equal(t, RoleFarmer, parsed)

	_, err = ParseRole("landlord")
	require.Error(t, err)
}

func TestRoleDisplayName(t *testing.T) {
	require.Equal(t, "Buyer", RoleBuyer.DisplayName())
	require.Equal(t, "Transporter", RoleTransporter.DisplayName())
}
