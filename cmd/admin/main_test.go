package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/testutil"
)

type plainHasher struct{}

func (plainHasher) HashPassword(p string) (string, error) { return "hash:" + p, nil }

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewUsers()

	u, err := createAdmin(ctx, users, plainHasher{}, adminInput{Email: " Boss@City.GOV ", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, "boss@city.gov", u.Email)
	require.Equal(t, "Admin", u.FullName)
	require.Equal(t, model.RoleAdmin, u.Role)
	require.Equal(t, "hash:secret123", u.PasswordHash)

	_, err = createAdmin(ctx, users, plainHasher{}, adminInput{Email: "boss@city.gov", Password: "secret123"})
	require.ErrorContains(t, err, "already exists")
}

func TestCreateAdminValidation(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewUsers()

	_, err := createAdmin(ctx, users, plainHasher{}, adminInput{Email: "nope", Password: "secret123"})
	require.Error(t, err)

	_, err = createAdmin(ctx, users, plainHasher{}, adminInput{Email: "a@b.co", Password: "short"})
	require.Error(t, err)

	_, err = createAdmin(ctx, users, plainHasher{}, adminInput{Email: "a@b.co", Password: "onlyletters"})
	require.Error(t, err)

	_, err = createAdmin(ctx, users, plainHasher{}, adminInput{Email: "a@b.co", Password: strings.Repeat("a", 72) + "1"})
	require.ErrorContains(t, err, "72 bytes")

	users.Err = errors.New("db down")
	_, err = createAdmin(ctx, users, plainHasher{}, adminInput{Email: "a@b.co", Password: "secret123"})
	require.ErrorContains(t, err, "db down")
}

func TestShowAdmins(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewUsers()

	var buf bytes.Buffer
	require.Error(t, showAdmins(ctx, users, &buf))

	users.Put(&model.User{FullName: "Citizen", Email: "c@b.co", Role: model.RoleUser})
	users.Put(&model.User{FullName: "Chief", Email: "chief@b.co", Role: model.RoleAdmin})

	buf.Reset()
	require.NoError(t, showAdmins(ctx, users, &buf))
	require.Contains(t, buf.String(), "chief@b.co")
	require.NotContains(t, buf.String(), "Citizen")
}
