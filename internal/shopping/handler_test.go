package shopping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"foodsync/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(newTestService())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
		auth.SetCurrent(c, &auth.Claims{UserID: id})
	})
	r.GET("/shopping", h.List)
	r.POST("/shopping", h.Create)
	r.DELETE("/shopping/clear-purchased", h.ClearPurchased)
	r.PUT("/shopping/:id", h.Update)
	r.POST("/shopping/:id/toggle", h.Toggle)
	r.DELETE("/shopping/:id", h.Delete)
	return r
}

func do(r http.Handler, method, path string, userID int64, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestShoppingHandlers(t *testing.T) {
	r := setupTestRouter()

	w := do(r, http.MethodPost, "/shopping", 10, map[string]any{"familyId": 1, "name": "Lait", "priority": "urgent"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/shopping", 10, map[string]any{"familyId": 1, "name": "Lait", "priority": "high"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Item Item `json:"item"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(r, http.MethodPost, fmt.Sprintf("/shopping/%d/toggle", created.Item.ID), 10, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var toggled struct {
		Item Item `json:"item"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toggled))
	assert.True(t, toggled.Item.IsPurchased)

	w = do(r, http.MethodPut, fmt.Sprintf("/shopping/%d", created.Item.ID), 10, map[string]any{"quantity": 3})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/shopping?familyId=1", 99, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodDelete, "/shopping/clear-purchased", 10, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/shopping/clear-purchased?familyId=1", 10, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cleared struct {
		Deleted int64 `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cleared))
	assert.Equal(t, int64(1), cleared.Deleted)

	w = do(r, http.MethodGet, "/shopping?familyId=1", 10, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Items)

	w = do(r, http.MethodDelete, "/shopping/42", 10, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
