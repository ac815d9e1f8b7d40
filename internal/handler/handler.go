// Package handler translates HTTP requests into service calls and
// service errors into the JSON error contract.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"schooltrack/internal/apierr"
	"schooltrack/internal/attendance"
	"schooltrack/internal/auth"
	"schooltrack/internal/roster"
)

// Handler holds the services behind the REST surface.
type Handler struct {
	auth       *auth.Service
	roster     *roster.Service
	attendance *attendance.Service
}

// New creates a handler.
func New(authSvc *auth.Service, rosterSvc *roster.Service, attendanceSvc *attendance.Service) *Handler {
	return &Handler{auth: authSvc, roster: rosterSvc, attendance: attendanceSvc}
}

// respondError maps any failure onto the error taxonomy. Unclassified
// errors become 500s with a generic message; the cause only goes to the
// log.
func respondError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		body := gin.H{"error": ae.Message()}
		if ae.Fields() != nil {
			body["details"] = ae.Fields()
		}
		c.JSON(ae.Kind().HTTPStatus(), body)
		return
	}
	slog.Error("unhandled error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}
