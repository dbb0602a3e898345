package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/publicvoice/internal/credential"
	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/storage"
	"github.com/iliyamo/publicvoice/internal/testutil"
)

func newCreds(t *testing.T) *credential.Service {
	t.Helper()
	c, err := credential.New(credential.Options{Secret: "test-secret", Algorithm: "HS256", BcryptCost: 4})
	require.NoError(t, err)
	return c
}

type authFixture struct {
	svc      *AuthService
	users    *testutil.Users
	notifier *testutil.Notifier
	avatars  *storage.AvatarStore
	creds    *credential.Service
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	users := testutil.NewUsers()
	notifier := &testutil.Notifier{}
	avatars, err := storage.NewAvatarStore(t.TempDir(), 16)
	require.NoError(t, err)
	creds := newCreds(t)
	svc := NewAuthService(AuthDeps{
		Users:       users,
		Credentials: creds,
		Notifier:    notifier,
		Avatars:     avatars,
		FrontendURL: "http://localhost:5173/",
	})
	return authFixture{svc: svc, users: users, notifier: notifier, avatars: avatars, creds: creds}
}

func register(t *testing.T, f authFixture, email string) *model.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{FullName: "Amina Uwase", Email: email, Password: "secret123"})
	require.NoError(t, err)
	return u
}

func citizen(id uint64) *model.User {
	return &model.User{ID: id, FullName: "Citizen", Role: model.RoleUser}
}

func admin() *model.User {
	return &model.User{ID: 1000, FullName: "Admin", Role: model.RoleAdmin}
}
