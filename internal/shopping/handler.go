package shopping

import (
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

// GET /shopping?familyId=
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	familyID, ok := httperr.QueryID(c, "familyId")
	if !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), userID, familyID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// POST /shopping
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BindFailed(c, err)
		return
	}

	item, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "item added",
		"item":    item,
	})
}

// PUT /shopping/:id
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BindFailed(c, err)
		return
	}

	item, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "item updated",
		"item":    item,
	})
}

// POST /shopping/:id/toggle
func (h *Handler) Toggle(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.Toggle(c.Request.Context(), userID, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DELETE /shopping/:id
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
}

// DELETE /shopping/clear-purchased?familyId=
func (h *Handler) ClearPurchased(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	familyID, ok := httperr.QueryID(c, "familyId")
	if !ok {
		return
	}

	n, err := h.service.ClearPurchased(c.Request.Context(), userID, familyID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "purchased items cleared",
		"deleted": n,
	})
}
