package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"schooltrack/internal/attendance"
	"schooltrack/internal/auth"
)

type markRequest struct {
	Date     string                  `json:"date"`
	Standard string                  `json:"standard"`
	Section  string                  `json:"section"`
	Subject  *string                 `json:"subject"`
	Records  []attendance.MarkRecord `json:"records"`
}

// MarkAttendance bulk-upserts a class's statuses for one day.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	result, err := h.attendance.MarkBulk(c.Request.Context(), auth.UserID(c), attendance.MarkInput{
		Date:     req.Date,
		Standard: req.Standard,
		Section:  req.Section,
		Subject:  req.Subject,
		Records:  req.Records,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "attendance marked successfully",
		"processed": result.Processed,
		"inserted":  result.Inserted,
		"updated":   result.Updated,
	})
}

// QueryAttendance returns a filtered, paginated page of the ledger.
// Omitting subject matches records without one.
func (h *Handler) QueryAttendance(c *gin.Context) {
	in := attendance.QueryInput{
		Date:      c.Query("date"),
		Standard:  c.Query("standard"),
		Section:   c.Query("section"),
		StudentID: c.Query("studentId"),
		Page:      intQuery(c, "page"),
		Limit:     intQuery(c, "limit"),
	}
	if subject := c.Query("subject"); subject != "" {
		in.Subject = &subject
	}
	result, err := h.attendance.Query(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// StudentReport aggregates one student's attendance over a date range.
func (h *Handler) StudentReport(c *gin.Context) {
	in := attendance.ReportInput{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
	if subject := c.Query("subject"); subject != "" {
		in.Subject = &subject
	}
	result, err := h.attendance.StudentReport(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func intQuery(c *gin.Context, key string) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return 0
}
