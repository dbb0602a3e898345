package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/publicvoice/internal/enrich"
	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/repository"
	"github.com/iliyamo/publicvoice/internal/validate"
)

// Field limits shared with the reports table.
const (
	maxTitle       = 255
	maxName        = 255
	maxPhone       = 50
	maxLocation    = 500
	maxDescription = 10000
	maxResponse    = 10000
)

// DefaultEnrichTimeout bounds the enrichment call when none is configured.
const DefaultEnrichTimeout = 20 * time.Second

// ReportInput is a citizen submission before validation.  A blank Name
// defaults to the submitter's full name.
type ReportInput struct {
	Title       *string
	Name        string
	Phone       string
	Location    string
	Institution string
	Category    string
	Description string
}

// ReportFilter holds the optional exact-match filters of ListAll.
type ReportFilter struct {
	Status   string
	Category string
}

// ReportUpdate lists the fields an admin may change.  Nil leaves a field as is.
type ReportUpdate struct {
	Status        *string
	AdminResponse *string
}

// ReportService implements the report lifecycle.
type ReportService struct {
	reports  repository.ReportStore
	enricher enrich.Enricher
	timeout  time.Duration
	log      *zap.Logger
}

// NewReportService wires a ReportService.  A nil enricher disables
// enrichment.
func NewReportService(reports repository.ReportStore, enricher enrich.Enricher, timeout time.Duration, log *zap.Logger) *ReportService {
	if enricher == nil {
		enricher = enrich.Disabled{}
	}
	if timeout <= 0 {
		timeout = DefaultEnrichTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{reports: reports, enricher: enricher, timeout: timeout, log: log}
}

// Submit validates in, applies enrichment suggestions and stores a pending
// report owned by user.  Enrichment runs before the insert and its failure
// never fails the submission.
func (s *ReportService) Submit(ctx context.Context, user *model.User, in ReportInput) (*model.Report, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	rp, err := s.normalize(user, in)
	if err != nil {
		return nil, err
	}

	s.applyEnrichment(ctx, rp)

	rp.UserID = &user.ID
	rp.Status = model.StatusPending
	if err := s.reports.Create(ctx, rp); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	s.log.Info("report submitted",
		zap.Uint64("report_id", rp.ID),
		zap.Uint64("user_id", user.ID),
		zap.String("category", rp.Category),
		zap.Bool("enriched", rp.StructuredDescription != nil),
	)
	return rp, nil
}

func (s *ReportService) normalize(user *model.User, in ReportInput) (*model.Report, error) {
	name := validate.Text(in.Name, 0)
	if name == "" {
		name = user.FullName
	}
	name, err := validate.Required("name", name, maxName)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	phone, err := validate.Required("phone", in.Phone, maxPhone)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	location, err := validate.Required("location", in.Location, maxLocation)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	description, err := validate.Verbatim("description", in.Description, maxDescription)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	institution, ok := model.ParseInstitution(in.Institution)
	if !ok {
		return nil, oneOf("institution", model.Institutions)
	}
	category, ok := model.ParseCategory(in.Category)
	if !ok {
		return nil, oneOf("category", model.Categories)
	}
	return &model.Report{
		Title:          validate.Optional(in.Title, maxTitle),
		Name:           name,
		Phone:          phone,
		Location:       location,
		Institution:    institution,
		Category:       category,
		RawDescription: description,
	}, nil
}

// applyEnrichment overrides fields with non-empty, valid suggestions.
func (s *ReportService) applyEnrichment(ctx context.Context, rp *model.Report) {
	ectx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, ok := s.enricher.Enrich(ectx, rp.RawDescription)
	if !ok {
		return
	}
	if res.StructuredDescription != "" {
		d := res.StructuredDescription
		rp.StructuredDescription = &d
	}
	if res.Title != "" {
		t := validate.Text(res.Title, maxTitle)
		if t != "" {
			rp.Title = &t
		}
	}
	if v, ok := model.ParseCategory(res.Category); ok {
		rp.Category = v
	}
	if v, ok := model.ParseInstitution(res.Institution); ok {
		rp.Institution = v
	}
}

// Get returns a report visible to user: admins see every report, other
// users only their own.
func (s *ReportService) Get(ctx context.Context, user *model.User, id uint64) (*model.Report, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	rp, err := s.reports.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if !user.IsAdmin() && !rp.OwnedBy(user.ID) {
		return nil, ErrForbidden
	}
	return rp, nil
}

// ListMine returns the caller's reports, newest first.
func (s *ReportService) ListMine(ctx context.Context, user *model.User, page Page) ([]*model.Report, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	offset, limit, err := page.bounds(ReportPageDefault, ReportPageMax)
	if err != nil {
		return nil, err
	}
	owner := user.ID
	out, err := s.reports.List(ctx, repository.ReportQuery{OwnerID: &owner, Offset: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list own reports: %w", err)
	}
	return out, nil
}

// ListAll returns every report matching f.  Admin only.
func (s *ReportService) ListAll(ctx context.Context, user *model.User, f ReportFilter, page Page) ([]*model.Report, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	offset, limit, err := page.bounds(ReportPageDefault, ReportPageMax)
	if err != nil {
		return nil, err
	}
	q := repository.ReportQuery{Offset: offset, Limit: limit}
	if f.Status != "" {
		st, ok := model.ParseStatus(f.Status)
		if !ok {
			return nil, oneOf("status", model.StatusNames())
		}
		q.Status = &st
	}
	if f.Category != "" {
		c, ok := model.ParseCategory(f.Category)
		if !ok {
			return nil, oneOf("category", model.Categories)
		}
		q.Category = &c
	}
	out, err := s.reports.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

// Update sets status and/or admin response.  Admin only.  Any status may be
// set from any status.
func (s *ReportService) Update(ctx context.Context, user *model.User, id uint64, u ReportUpdate) (*model.Report, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	var patch repository.ReportPatch
	if u.Status != nil {
		st, ok := model.ParseStatus(*u.Status)
		if !ok {
			return nil, oneOf("status", model.StatusNames())
		}
		patch.Status = &st
	}
	if u.AdminResponse != nil {
		resp := validate.Text(*u.AdminResponse, 0)
		if len([]rune(resp)) > maxResponse {
			return nil, invalid("admin_response is too long")
		}
		patch.AdminResponse = &resp
	}

	rp, err := s.reports.Update(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	s.log.Info("report updated",
		zap.Uint64("report_id", id),
		zap.Uint64("admin_id", user.ID),
		zap.Stringer("status", rp.Status),
	)
	return rp, nil
}

// Stats counts reports per status.  Admin only.
func (s *ReportService) Stats(ctx context.Context, user *model.User) (model.ReportStats, error) {
	if err := requireAdmin(user); err != nil {
		return model.ReportStats{}, err
	}
	counts, err := s.reports.CountByStatus(ctx)
	if err != nil {
		return model.ReportStats{}, fmt.Errorf("count reports: %w", err)
	}
	stats := model.ReportStats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func requireAdmin(user *model.User) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}
