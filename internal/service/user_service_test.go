package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/repository"
	"github.com/iliyamo/publicvoice/internal/testutil"
)

func repositoryAll() repository.ReportQuery {
	return repository.ReportQuery{Limit: ReportPageMax}
}

func TestUserService_List(t *testing.T) {
	users := testutil.NewUsers()
	users.Put(&model.User{FullName: "Root", Email: "root@pv.rw", Role: model.RoleAdmin})
	users.Put(&model.User{FullName: "Amina", Email: "amina@pv.rw", Role: model.RoleUser})
	users.Put(&model.User{FullName: "Jean", Email: "jean@pv.rw", Role: model.RoleUser})
	svc := NewUserService(users)
	ctx := context.Background()

	out, err := svc.List(ctx, admin(), Page{}, false)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "jean@pv.rw", out[0].Email)

	out, err = svc.List(ctx, admin(), Page{}, true)
	require.NoError(t, err)
	require.Len(t, out, 3)

	out, err = svc.List(ctx, admin(), Page{Skip: 1, Limit: 1}, true)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "amina@pv.rw", out[0].Email)

	_, err = svc.List(ctx, citizen(2), Page{}, false)
	require.ErrorIs(t, err, ErrAdminRequired)
	_, err = svc.List(ctx, nil, Page{}, false)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPageBounds(t *testing.T) {
	off, lim, err := Page{}.bounds(UserPageDefault, UserPageMax)
	require.NoError(t, err)
	require.Equal(t, 0, off)
	require.Equal(t, UserPageDefault, lim)

	_, lim, err = Page{Limit: 9999}.bounds(UserPageDefault, UserPageMax)
	require.NoError(t, err)
	require.Equal(t, UserPageMax, lim)

	_, _, err = Page{Limit: -3}.bounds(UserPageDefault, UserPageMax)
	require.True(t, IsValidation(err))
}
