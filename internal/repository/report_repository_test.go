package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/publicvoice/internal/model"
)

func reportRow(rows *sqlmock.Rows, id int64, owner any, status string, response any) *sqlmock.Rows {
	return rows.AddRow(id, owner, nil, "Alice", "0788", "Kigali", "district", "roads",
		"umuhanda wangiritse", nil, response, status, fixedTime, fixedTime)
}

func TestReportRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	r := NewReportRepo(db)
	owner := uint64(2)

	mock.ExpectExec(`INSERT INTO reports`).
		WithArgs(2, nil, "Alice", "0788", "Kigali", "district", "roads", "umuhanda wangiritse", nil, "pending").
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectQuery(`SELECT .+ FROM reports WHERE id = \?`).
		WithArgs(31).
		WillReturnRows(reportRow(sqlmock.NewRows(reportCols), 31, 2, "pending", nil))

	rp := &model.Report{
		UserID: &owner, Name: "Alice", Phone: "0788", Location: "Kigali",
		Institution: "district", Category: "roads", RawDescription: "umuhanda wangiritse",
	}
	require.NoError(t, r.Create(context.Background(), rp))
	require.Equal(t, uint64(31), rp.ID)
	require.Equal(t, model.StatusPending, rp.Status)
	require.True(t, rp.OwnedBy(2))
	require.Nil(t, rp.StructuredDescription)
}

func TestReportRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	r := NewReportRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM reports WHERE id = \?`).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows(reportCols))

	_, err := r.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReportRepo_List_Filters(t *testing.T) {
	db, mock := newMock(t)
	r := NewReportRepo(db)
	status := model.StatusResolved
	category := "water"

	mock.ExpectQuery(`SELECT .+ FROM reports WHERE status = \? AND category = \? ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs("resolved", "water", 50, 0).
		WillReturnRows(reportRow(sqlmock.NewRows(reportCols), 1, nil, "resolved", "fixed"))

	out, err := r.List(context.Background(), ReportQuery{Status: &status, Category: &category, Limit: 50})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Nil(t, out[0].UserID)
	require.Equal(t, "fixed", *out[0].AdminResponse)

	owner := uint64(9)
	mock.ExpectQuery(`SELECT .+ FROM reports WHERE user_id = \? ORDER BY`).
		WithArgs(9, 20, 40).
		WillReturnRows(sqlmock.NewRows(reportCols))
	out, err = r.List(context.Background(), ReportQuery{OwnerID: &owner, Limit: 20, Offset: 40})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestReportRepo_Update_StatusOnly(t *testing.T) {
	db, mock := newMock(t)
	r := NewReportRepo(db)
	status := model.StatusResolved

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM reports WHERE id = \? FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`UPDATE reports SET status = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \?`).
		WithArgs("resolved", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM reports WHERE id = \?`).
		WithArgs(7).
		WillReturnRows(reportRow(sqlmock.NewRows(reportCols), 7, 2, "resolved", "earlier note"))
	mock.ExpectCommit()

	rp, err := r.Update(context.Background(), 7, ReportPatch{Status: &status})
	require.NoError(t, err)
	require.Equal(t, model.StatusResolved, rp.Status)
	require.Equal(t, "earlier note", *rp.AdminResponse)
}

func TestReportRepo_Update_NotFound(t *testing.T) {
	db, mock := newMock(t)
	r := NewReportRepo(db)
	resp := "on it"

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(8).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := r.Update(context.Background(), 8, ReportPatch{AdminResponse: &resp})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReportRepo_CountByStatus(t *testing.T) {
	db, mock := newMock(t)
	r := NewReportRepo(db)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM reports GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("pending", 4).AddRow("resolved", 2))

	counts, err := r.CountByStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), counts[model.StatusPending])
	require.Equal(t, int64(2), counts[model.StatusResolved])
	require.Equal(t, int64(0), counts[model.StatusRejected])
}
