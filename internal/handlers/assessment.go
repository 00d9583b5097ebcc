package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nelc/HCx-sub001/internal/logger"
	pkgerrors "github.com/nelc/HCx-sub001/internal/pkg/errors"
	"github.com/nelc/HCx-sub001/internal/services"
)

type AssessmentHandler struct {
	log           *logger.Logger
	assessmentSvc services.AssessmentService
}

func NewAssessmentHandler(log *logger.Logger, assessmentSvc services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		log:           log.With("handler", "AssessmentHandler"),
		assessmentSvc: assessmentSvc,
	}
}

// POST /api/assignments/:id/submit
// Score a submitted assignment and persist its skill results.
func (h *AssessmentHandler) SubmitAssignment(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}
	result, err := h.assessmentSvc.ScoreSubmission(c.Request.Context(), assignmentID)
	if err != nil {
		h.respondError(c, assignmentID, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/assignments/:id/results
func (h *AssessmentHandler) GetResults(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}
	result, err := h.assessmentSvc.GetResults(c.Request.Context(), assignmentID)
	if err != nil {
		h.respondError(c, assignmentID, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AssessmentHandler) respondError(c *gin.Context, assignmentID uuid.UUID, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
	case errors.Is(err, pkgerrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "assignment not in a scoreable state"})
	default:
		h.log.Error("assessment request failed", "assignment_id", assignmentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
