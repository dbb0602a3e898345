package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole_CaseInsensitive(t *testing.T) {
	for _, in := range []string{"admin", "Admin", " ADMIN "} {
		r, err := ParseRole(in)
		require.NoError(t, err, in)
		require.Equal(t, RoleAdmin, r)
	}
	r, err := ParseRole("User")
	require.NoError(t, err)
	require.Equal(t, RoleUser, r)

	_, err = ParseRole("owner")
	require.Error(t, err)
}

func TestParseInstitution_Canonicalizes(t *testing.T) {
	got, ok := ParseInstitution("LOCALGOV")
	require.True(t, ok)
	require.Equal(t, "localGov", got)

	_, ok = ParseInstitution("ministry")
	require.False(t, ok)
	_, ok = ParseInstitution("")
	require.False(t, ok)
}

func TestParseCategoryAndStatus(t *testing.T) {
	c, ok := ParseCategory(" Roads ")
	require.True(t, ok)
	require.Equal(t, "roads", c)

	s, ok := ParseStatus("RESOLVED")
	require.True(t, ok)
	require.Equal(t, StatusResolved, s)

	_, ok = ParseStatus("archived")
	require.False(t, ok)
}

func TestReportOwnedBy(t *testing.T) {
	owner := uint64(7)
	r := &Report{UserID: &owner}
	require.True(t, r.OwnedBy(7))
	require.False(t, r.OwnedBy(8))
	require.False(t, (&Report{}).OwnedBy(7))
}

func TestUserIsAdmin(t *testing.T) {
	require.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	require.False(t, (&User{Role: RoleUser}).IsAdmin())
	var nilUser *User
	require.False(t, nilUser.IsAdmin())
}
