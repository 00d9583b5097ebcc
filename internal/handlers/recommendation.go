package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nelc/HCx-sub001/internal/logger"
	pkgerrors "github.com/nelc/HCx-sub001/internal/pkg/errors"
	"github.com/nelc/HCx-sub001/internal/recommend"
	"github.com/nelc/HCx-sub001/internal/services"
)

type RecommendationHandler struct {
	log    *logger.Logger
	recSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:    log.With("handler", "RecommendationHandler"),
		recSvc: recSvc,
	}
}

type recommendationRequest struct {
	// AllowedCourseIDs is the visibility allow-list maintained by the
	// surrounding application. Empty means nothing is shown.
	AllowedCourseIDs []uuid.UUID `json:"allowed_course_ids"`
	InterestSkills   []string    `json:"interest_skills"`
	CareerSkills     []string    `json:"career_skills"`
	Policy           string      `json:"policy"`
}

// POST /api/users/:id/recommendations
// Compute ranked recommendation sections for a user.
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req recommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	set, err := h.recSvc.GetRecommendations(c.Request.Context(), userID, services.RecommendationOptions{
		AllowedCourseIDs: req.AllowedCourseIDs,
		InterestSkills:   req.InterestSkills,
		CareerSkills:     req.CareerSkills,
		Policy:           recommend.Policy(req.Policy),
	})
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no scored assessment for user"})
		default:
			h.log.Error("recommendation request failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, set)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/users/:id/recommendations/:course_id
// Record an acceptance or dismissal.
func (h *RecommendationHandler) UpdateStatus(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.recSvc.UpdateStatus(c.Request.Context(), userID, courseID, req.Status); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrInvalidArgument):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		default:
			h.log.Error("status update failed", "user_id", userID, "course_id", courseID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
