package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/publicvoice/internal/middleware"
	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/service"
)

// ReportHandler serves /api/reports.
type ReportHandler struct {
	Reports *service.ReportService
	Log     *zap.Logger
	Timeout time.Duration
	// SubmitTimeout bounds report creation, which includes the enrichment call.
	SubmitTimeout time.Duration
}

func NewReportHandler(reports *service.ReportService, log *zap.Logger, enrichTimeout time.Duration) *ReportHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportHandler{
		Reports:       reports,
		Log:           log,
		Timeout:       defaultTimeout,
		SubmitTimeout: enrichTimeout + defaultTimeout,
	}
}

type createReportReq struct {
	Title       *string `json:"title"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Location    string  `json:"location"`
	Institution string  `json:"institution"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

type updateReportReq struct {
	Status        *string `json:"status"`
	AdminResponse *string `json:"admin_response"`
}

type statsResp struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

func (h *ReportHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// Create submits a report owned by the caller.
func (h *ReportHandler) Create(c echo.Context) error {
	var req createReportReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.SubmitTimeout)
	defer cancel()

	rp, err := h.Reports.Submit(ctx, middleware.CurrentUser(c), service.ReportInput{
		Title:       req.Title,
		Name:        req.Name,
		Phone:       req.Phone,
		Location:    req.Location,
		Institution: req.Institution,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toReport(rp))
}

// Mine lists the caller's reports.
func (h *ReportHandler) Mine(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	out, err := h.Reports.ListMine(ctx, middleware.CurrentUser(c), page)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toReports(out))
}

// Get returns one report if the caller owns it or is an admin.
func (h *ReportHandler) Get(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return badRequest(c, "invalid report id")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	rp, err := h.Reports.Get(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toReport(rp))
}

// List returns all reports, optionally filtered by status and category.
func (h *ReportHandler) List(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter := service.ReportFilter{Status: c.QueryParam("status"), Category: c.QueryParam("category")}
	ctx, cancel := h.ctx(c)
	defer cancel()

	out, err := h.Reports.ListAll(ctx, middleware.CurrentUser(c), filter, page)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toReports(out))
}

// Update changes status and/or admin response.
func (h *ReportHandler) Update(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return badRequest(c, "invalid report id")
	}
	var req updateReportReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	rp, err := h.Reports.Update(ctx, middleware.CurrentUser(c), id, service.ReportUpdate{
		Status:        req.Status,
		AdminResponse: req.AdminResponse,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toReport(rp))
}

// Stats returns report counts per status.
func (h *ReportHandler) Stats(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	st, err := h.Reports.Stats(ctx, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	resp := statsResp{Total: st.Total, ByStatus: make(map[string]int64, len(model.Statuses))}
	for _, s := range model.Statuses {
		resp.ByStatus[string(s)] = st.ByStatus[s]
	}
	return c.JSON(http.StatusOK, resp)
}
