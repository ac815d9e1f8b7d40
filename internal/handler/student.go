package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schooltrack/internal/roster"
)

// ListStudents returns active students, optionally filtered by class.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.roster.List(c.Request.Context(), roster.Filter{
		Standard: c.Query("standard"),
		Section:  c.Query("section"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if students == nil {
		students = []roster.Student{}
	}
	c.JSON(http.StatusOK, students)
}

// GetStudent returns one active student.
func (h *Handler) GetStudent(c *gin.Context) {
	student, err := h.roster.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

type addStudentRequest struct {
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
	Standard   string `json:"standard"`
	Section    string `json:"section"`
}

// AddStudent enrolls a student.
func (h *Handler) AddStudent(c *gin.Context) {
	var req addStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	student, err := h.roster.Add(c.Request.Context(), roster.AddInput{
		Name:       req.Name,
		RollNumber: req.RollNumber,
		Standard:   req.Standard,
		Section:    req.Section,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, student)
}

type updateStudentRequest struct {
	Name       *string `json:"name"`
	RollNumber *string `json:"rollNumber"`
	Standard   *string `json:"standard"`
	Section    *string `json:"section"`
	IsActive   *bool   `json:"isActive"`
}

// UpdateStudent merges provided fields into the student.
func (h *Handler) UpdateStudent(c *gin.Context) {
	var req updateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	student, err := h.roster.Update(c.Request.Context(), c.Param("id"), roster.UpdateInput{
		Name:       req.Name,
		RollNumber: req.RollNumber,
		Standard:   req.Standard,
		Section:    req.Section,
		IsActive:   req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

// DeactivateStudent soft-deletes a student; repeating it is not an error.
func (h *Handler) DeactivateStudent(c *gin.Context) {
	if err := h.roster.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student deactivated successfully"})
}
