package nutrition

import (
	"errors"
	"net/http"

	"foodsync/internal/auth"
	"foodsync/internal/httperr"

	"github.com/gin-gonic/gin"
)

type AnalyzeInput struct {
	FamilyID int64 `json:"familyId" binding:"required,gt=0"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// respond maps the nutrition errors before falling back to the shared mapping.
func respond(c *gin.Context, err error) {
	var incomplete *IncompleteProfileError
	var invalid *InvalidDomainError
	switch {
	case errors.As(err, &incomplete):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "complete your nutrition profile before requesting an analysis",
			"code":    "INCOMPLETE_PROFILE",
			"missing": incomplete.Missing,
		})
	case errors.As(err, &invalid):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"message": "validation failed",
			"errors":  invalid.Fields,
		})
	case errors.Is(err, ErrMealsUnavailable):
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"message": "could not generate meal suggestions, please try again",
		})
	default:
		httperr.Respond(c, err)
	}
}

// GET /nutrition/profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	view, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PUT /nutrition/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	var req BiometricProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BindFailed(c, err)
		return
	}

	targets, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "nutrition profile updated",
		"profile": req,
		"targets": targets,
	})
}

// GET /nutrition/targets
func (h *Handler) Targets(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	targets, err := h.service.Targets(c.Request.Context(), userID)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"targets": targets})
}

// POST /nutrition/analyze
func (h *Handler) Analyze(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	var req AnalyzeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BindFailed(c, err)
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), userID, req.FamilyID)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "nutrition analysis generated",
		"analysis":        result.Analysis,
		"fridgeItemCount": result.FridgeItemCount,
		"cached":          result.Cached,
	})
}
