package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"safisha/internal/gateway"
	applog "safisha/internal/log"
	"safisha/internal/store"
)

// registerCRUD mounts list, create, patch and delete for one repository.
func registerCRUD[T gateway.Record](s *Server, g *gin.RouterGroup, repo *gateway.Repository[T]) {
	coll := repo.Collection()

	g.GET("", func(c *gin.Context) {
		items, err := repo.GetAll(c.Request.Context())
		if err != nil {
			s.fail(c, applog.OpList, coll, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": items, "count": len(items)})
	})

	g.POST("", func(c *gin.Context) {
		var rec T
		if err := bindJSON(c, &rec); err != nil {
			s.fail(c, applog.OpCreate, coll, err)
			return
		}
		created, err := repo.Create(c.Request.Context(), rec)
		if err != nil {
			s.fail(c, applog.OpCreate, coll, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	})

	g.PATCH("/:id", func(c *gin.Context) {
		var fields map[string]any
		if err := bindJSON(c, &fields); err != nil {
			s.fail(c, applog.OpUpdate, coll, err)
			return
		}
		updated, err := repo.Update(c.Request.Context(), c.Param("id"), fields)
		if err != nil {
			s.fail(c, applog.OpUpdate, coll, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		if err := repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, applog.OpDelete, coll, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

// handleUploadPhoto serves POST /api/employees/:id/photo with the image in
// the multipart field "photo".
func (s *Server) handleUploadPhoto(c *gin.Context) {
	fh, err := c.FormFile("photo")
	if err != nil {
		s.fail(c, applog.OpUpload, store.Employees, fmt.Errorf("%w: photo: %v", errMalformedBody, err))
		return
	}
	if fh.Size > gateway.MaxPhotoBytes {
		s.fail(c, applog.OpUpload, store.Employees, gateway.ErrPhotoTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.fail(c, applog.OpUpload, store.Employees, fmt.Errorf("%w: photo: %v", errMalformedBody, err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, gateway.MaxPhotoBytes+1))
	if err != nil {
		s.fail(c, applog.OpUpload, store.Employees, fmt.Errorf("%w: photo: %v", errMalformedBody, err))
		return
	}

	emp, err := s.deps.Gateway.Employees.UploadPhoto(c.Request.Context(), c.Param("id"), fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		s.fail(c, applog.OpUpload, store.Employees, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}
