package receipt

import (
	"errors"
	"net/http"
	"strconv"

	"foodsync/internal/auth"
	"foodsync/internal/httperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const DefaultMaxUpload int64 = 10 << 20

type Handler struct {
	service   *Service
	maxUpload int64
}

func NewHandler(service *Service, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	return &Handler{service: service, maxUpload: maxUpload}
}

// POST /receipts/scan
func (h *Handler) Scan(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	var in ScanInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BindFailed(c, err)
		return
	}

	items, err := h.service.ScanBase64(c.Request.Context(), userID, in.Image)
	if err != nil {
		if errors.Is(err, ErrScanFailed) {
			httperr.BadRequest(c, "Erreur lors de l'analyse du ticket")
			return
		}
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket analysé avec succès", "items": items})
}

// POST /receipts (multipart: receipt, familyId)
func (h *Handler) Upload(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	if c.Request.ContentLength > h.maxUpload {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": "receipt too large"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	file, err := c.FormFile("receipt")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": "receipt too large"})
			return
		}
		httperr.BadRequest(c, "receipt file is required")
		return
	}
	familyID, err := strconv.ParseInt(c.PostForm("familyId"), 10, 64)
	if err != nil || familyID <= 0 {
		httperr.BadRequest(c, "invalid familyId")
		return
	}

	scan, err := h.service.Upload(c.Request.Context(), userID, familyID, file)
	if err != nil {
		if errors.Is(err, ErrUnsupportedMedia) {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"message": err.Error()})
			return
		}
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"scan": scan})
}

func scanID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// GET /receipts/:id
func (h *Handler) Show(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	id, ok := scanID(c)
	if !ok {
		return
	}

	scan, err := h.service.Status(c.Request.Context(), userID, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scan": scan})
}

// POST /receipts/:id/import
func (h *Handler) Import(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	id, ok := scanID(c)
	if !ok {
		return
	}

	items, err := h.service.Import(c.Request.Context(), userID, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Articles ajoutés au frigo", "items": items})
}
