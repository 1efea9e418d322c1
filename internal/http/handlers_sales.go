package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safisha/internal/core"
	applog "safisha/internal/log"
	"safisha/internal/store"
)

// handleListSales serves GET /api/sales?date=&employee=.
func (s *Server) handleListSales(c *gin.Context) {
	date, err := queryDate(c, "date", "")
	if err != nil {
		s.fail(c, applog.OpList, store.Sales, err)
		return
	}
	sales, err := s.deps.Sales.List(c.Request.Context(), date, sanitizeInput(c.Query("employee")))
	if err != nil {
		s.fail(c, applog.OpList, store.Sales, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": sales, "count": len(sales)})
}

func (s *Server) handleCreateSale(c *gin.Context) {
	var sale core.Sale
	if err := bindJSON(c, &sale); err != nil {
		s.fail(c, applog.OpCreate, store.Sales, err)
		return
	}
	created, err := s.deps.Sales.Create(c.Request.Context(), sale)
	if err != nil {
		s.fail(c, applog.OpCreate, store.Sales, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateSale(c *gin.Context) {
	var fields map[string]any
	if err := bindJSON(c, &fields); err != nil {
		s.fail(c, applog.OpUpdate, store.Sales, err)
		return
	}
	updated, err := s.deps.Sales.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		s.fail(c, applog.OpUpdate, store.Sales, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteSale(c *gin.Context) {
	if err := s.deps.Sales.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, applog.OpDelete, store.Sales, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleMarkReturned serves POST /api/sales/:id/returned.
func (s *Server) handleMarkReturned(c *gin.Context) {
	updated, err := s.deps.Sales.MarkAsReturned(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, applog.OpUpdate, store.Sales, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
