package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/publicvoice/internal/model"
)

const reportColumns = "id,user_id,title,name,phone,location,institution,category,raw_description,structured_description,admin_response,status,created_at,updated_at"

// ReportRepo encapsulates all database queries related to reports.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo constructs a ReportRepo with the provided DB handle.
func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func scanReport(s rowScanner) (*model.Report, error) {
	var (
		rp         model.Report
		userID     sql.NullInt64
		title      sql.NullString
		structured sql.NullString
		response   sql.NullString
		status     string
	)
	if err := s.Scan(&rp.ID, &userID, &title, &rp.Name, &rp.Phone, &rp.Location, &rp.Institution, &rp.Category,
		&rp.RawDescription, &structured, &response, &status, &rp.CreatedAt, &rp.UpdatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		id := uint64(userID.Int64)
		rp.UserID = &id
	}
	rp.Title = stringPtr(title)
	rp.StructuredDescription = stringPtr(structured)
	rp.AdminResponse = stringPtr(response)
	rp.Status = model.Status(status)
	return &rp, nil
}

// Create inserts a report and reloads it so that the caller receives the
// generated ID and timestamps.  raw_description is written here and
// nowhere else.
func (r *ReportRepo) Create(ctx context.Context, rp *model.Report) error {
	var owner sql.NullInt64
	if rp.UserID != nil {
		owner = sql.NullInt64{Int64: int64(*rp.UserID), Valid: true}
	}
	if rp.Status == "" {
		rp.Status = model.StatusPending
	}
	const qInsert = `INSERT INTO reports
        (user_id, title, name, phone, location, institution, category, raw_description, structured_description, status)
        VALUES (?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		owner, nullString(rp.Title), rp.Name, rp.Phone, rp.Location, rp.Institution, rp.Category,
		rp.RawDescription, nullString(rp.StructuredDescription), string(rp.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rp = *stored
	return nil
}

// GetByID fetches a report regardless of owner.  Ownership checks belong to
// the service layer so that absent and foreign reports can be told apart.
func (r *ReportRepo) GetByID(ctx context.Context, id uint64) (*model.Report, error) {
	rp, err := scanReport(r.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rp, err
}

// List returns reports matching q ordered newest first.
func (r *ReportRepo) List(ctx context.Context, q ReportQuery) ([]*model.Report, error) {
	var (
		where []string
		args  []any
	)
	if q.OwnerID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *q.OwnerID)
	}
	if q.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*q.Status))
	}
	if q.Category != nil {
		where = append(where, "category = ?")
		args = append(args, *q.Category)
	}
	query := "SELECT " + reportColumns + " FROM reports"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Report, 0)
	for rows.Next() {
		rp, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the non-nil fields of p inside a transaction holding the
// row lock and returns the updated report.  Concurrent admin edits are
// serialized by the lock; the last writer wins.
func (r *ReportRepo) Update(ctx context.Context, id uint64, p ReportPatch) (*model.Report, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var lockedID uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM reports WHERE id = ? FOR UPDATE", id).Scan(&lockedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var (
		sets []string
		args []any
	)
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.AdminResponse != nil {
		sets = append(sets, "admin_response = ?")
		args = append(args, *p.AdminResponse)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)
		if _, err := tx.ExecContext(ctx, "UPDATE reports SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
			return nil, err
		}
	}

	updated, err := scanReport(tx.QueryRowContext(ctx, "SELECT "+reportColumns+" FROM reports WHERE id = ?", id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return updated, nil
}

// CountByStatus returns the number of reports in each status.  Statuses
// without reports are reported as zero.
func (r *ReportRepo) CountByStatus(ctx context.Context) (map[model.Status]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM reports GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Status]int64, len(model.Statuses))
	for _, s := range model.Statuses {
		out[s] = 0
	}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
