package family

import (
	"errors"
	"net/http"

	"foodsync/internal/auth"
	"foodsync/internal/httperr"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GET /families
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	families, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"families": families})
}

// POST /families
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BindFailed(c, err)
		return
	}

	f, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "family created",
		"family":  f,
	})
}

// POST /families/join
func (h *Handler) Join(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	var req JoinInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BindFailed(c, err)
		return
	}

	f, err := h.service.Join(c.Request.Context(), userID, req)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "joined family",
		"family":  f,
	})
}

// GET /families/:id
func (h *Handler) Show(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	familyID, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.Show(c.Request.Context(), userID, familyID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"family": detail})
}

// DELETE /families/:id/leave
func (h *Handler) Leave(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	familyID, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	err := h.service.Leave(c.Request.Context(), userID, familyID)
	if errors.Is(err, ErrOwnerCannotLeave) {
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left family"})
}

// PUT /families/:id/preferences
func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	familyID, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	var req PreferencesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BindFailed(c, err)
		return
	}

	prefs, err := h.service.UpdatePreferences(c.Request.Context(), userID, familyID, req)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "preferences updated",
		"preferences": prefs,
	})
}
