package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"safisha/internal/analytics"
	"safisha/internal/auth"
	"safisha/internal/core"
	applog "safisha/internal/log"
	"safisha/internal/store"
)

// handleDashboard serves GET /api/dashboard?date=&period=&employee=. The
// date defaults to today and the period to a single day.
func (s *Server) handleDashboard(c *gin.Context) {
	date, err := queryDate(c, "date", core.Today())
	if err != nil {
		s.fail(c, applog.OpRead, store.Sales, err)
		return
	}
	period, err := analytics.ParsePeriod(sanitizeInput(c.Query("period")))
	if err != nil {
		s.fail(c, applog.OpRead, store.Sales, err)
		return
	}

	sum, err := s.deps.Sales.Summary(c.Request.Context(), analytics.Query{
		Date:     date,
		Period:   period,
		Employee: sanitizeInput(c.Query("employee")),
	})
	if err != nil {
		s.fail(c, applog.OpRead, store.Sales, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

type adminOverview struct {
	Remote    bool              `json:"remote"`
	Counts    map[string]int    `json:"counts"`
	Employees []core.Employee   `json:"employees"`
	Expenses  []core.Expense    `json:"expenses"`
	Notes     []core.Note       `json:"notes"`
	Leads     []core.Lead       `json:"leads"`
	Today     analytics.Summary `json:"today"`
	Viewer    string            `json:"viewer,omitempty"`
}

// handleAdminOverview loads every collection concurrently and returns them
// with today's sales summary.
func (s *Server) handleAdminOverview(c *gin.Context) {
	gw := s.deps.Gateway
	var (
		sales []core.Sale
		out   = adminOverview{Remote: gw.RemoteActive()}
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) { sales, err = gw.Sales.GetAll(ctx); return })
	g.Go(func() (err error) { out.Employees, err = gw.Employees.GetAll(ctx); return })
	g.Go(func() (err error) { out.Expenses, err = gw.Expenses.GetAll(ctx); return })
	g.Go(func() (err error) { out.Notes, err = gw.Notes.GetAll(ctx); return })
	g.Go(func() (err error) { out.Leads, err = gw.Leads.GetAll(ctx); return })
	if err := g.Wait(); err != nil {
		s.fail(c, applog.OpList, "", err)
		return
	}

	today, err := analytics.Summarize(sales, analytics.Query{Date: core.Today()})
	if err != nil {
		s.fail(c, applog.OpRead, store.Sales, err)
		return
	}
	out.Today = today
	out.Counts = map[string]int{
		store.Sales.String():     len(sales),
		store.Employees.String(): len(out.Employees),
		store.Expenses.String():  len(out.Expenses),
		store.Notes.String():     len(out.Notes),
		store.Leads.String():     len(out.Leads),
	}
	if p, ok := auth.FromContext(c.Request.Context()); ok {
		out.Viewer = p.Name
	}
	c.JSON(http.StatusOK, out)
}

// handleMirrorSync runs one mirror sync pass synchronously.
func (s *Server) handleMirrorSync(c *gin.Context) {
	if s.deps.Sync == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "spreadsheet mirror is not configured"})
		return
	}
	res, err := s.deps.Sync.Run(c.Request.Context())
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), "Mirror sync failed",
			applog.FieldOperation, applog.OpSync,
			applog.FieldError, err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": res})
		return
	}
	c.JSON(http.StatusOK, res)
}
