package recipe

import (
	"net/http"
	"strconv"

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

// GET /recipes
func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recipes": h.service.Catalog()})
}

// GET /recipes/:id
func (h *Handler) Show(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid id")
		return
	}

	r, err := h.service.CatalogRecipe(id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": r})
}

// GET /recipes/suggestions?familyId=
func (h *Handler) Suggestions(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	familyID, ok := httperr.QueryID(c, "familyId")
	if !ok {
		return
	}

	out, err := h.service.Suggest(c.Request.Context(), userID, familyID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /recipes/family?familyId=
func (h *Handler) ListFamily(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	familyID, ok := httperr.QueryID(c, "familyId")
	if !ok {
		return
	}

	recipes, err := h.service.ListFamily(c.Request.Context(), userID, familyID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// POST /recipes/family
func (h *Handler) CreateFamily(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BindFailed(c, err)
		return
	}

	r, err := h.service.CreateFamily(c.Request.Context(), userID, req)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "recipe created",
		"recipe":  r,
	})
}

// PUT /recipes/family/:id
func (h *Handler) UpdateFamily(c *gin.Context) {
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

	r, err := h.service.UpdateFamily(c.Request.Context(), userID, id, req)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "recipe updated",
		"recipe":  r,
	})
}

// DELETE /recipes/family/:id
func (h *Handler) DeleteFamily(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteFamily(c.Request.Context(), userID, id); err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recipe deleted"})
}
