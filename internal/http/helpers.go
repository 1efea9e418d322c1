package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"safisha/internal/analytics"
	"safisha/internal/core"
	"safisha/internal/gateway"
	applog "safisha/internal/log"
	"safisha/internal/store"
)

var errMalformedBody = errors.New("invalid request body")

func init() {
	// Request numbers bind as json.Number so amounts keep their digits.
	binding.EnableDecoderUseNumber = true
}

// statusFor maps domain errors to HTTP status codes. Anything unrecognised
// is a storage failure: 502 when a remote is in play, 500 otherwise.
func (s *Server) statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gateway.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, analytics.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrPhotoTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, gateway.ErrNotImage):
		return http.StatusUnsupportedMediaType
	case s.deps.Gateway.RemoteActive():
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorType(status int) string {
	switch {
	case status == http.StatusNotFound:
		return applog.ErrorTypeNotFound
	case status < 500:
		return applog.ErrorTypeValidation
	default:
		return applog.ErrorTypeDatabase
	}
}

// fail writes err as {"error": "..."} and logs it with the operation and
// collection it came from.
func (s *Server) fail(c *gin.Context, op string, coll store.Collection, err error) {
	status := s.statusFor(err)
	ctx := c.Request.Context()
	fields := applog.NewFields().
		WithOperation(op).
		WithRecord(coll.String(), c.Param("id")).
		WithErrorType(errorType(status)).
		WithError(err)

	logger := applog.FromContext(ctx).WithComponent(applog.ComponentHTTP)
	if status >= 500 {
		logger.ErrorContext(ctx, "Request failed", fields.ToSlice()...)
	} else {
		logger.WarnContext(ctx, "Request rejected", fields.ToSlice()...)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes the body into v. Decode failures wrap errMalformedBody.
func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// queryDate returns a YYYY-MM-DD query parameter, or def when absent.
func queryDate(c *gin.Context, key, def string) (string, error) {
	v := sanitizeInput(c.Query(key))
	if v == "" {
		return def, nil
	}
	if _, err := time.Parse(core.DateLayout, v); err != nil {
		return "", fmt.Errorf("%w: %s must be a YYYY-MM-DD date", errMalformedBody, key)
	}
	return v, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
