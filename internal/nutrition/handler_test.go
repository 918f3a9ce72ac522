package nutrition

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"foodsync/internal/auth"
	"foodsync/internal/llm"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, fixture) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	h := NewHandler(f.svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
		auth.SetCurrent(c, &auth.Claims{UserID: id})
	})
	r.GET("/nutrition/profile", h.GetProfile)
	r.PUT("/nutrition/profile", h.UpdateProfile)
	r.GET("/nutrition/targets", h.Targets)
	r.POST("/nutrition/analyze", h.Analyze)
	return r, f
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

func TestNutritionHandlers(t *testing.T) {
	r, f := setupTestRouter(t)

	w := do(r, http.MethodPost, "/nutrition/analyze", 10, map[string]any{"familyId": 1})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var incomplete map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &incomplete))
	assert.Equal(t, "INCOMPLETE_PROFILE", incomplete["code"])

	w = do(r, http.MethodGet, "/nutrition/targets", 10, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/nutrition/profile", 10, map[string]any{
		"weight": 500, "height": 175, "age": 30, "gender": "male", "activityLevel": "sedentary", "goal": "maintain",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var invalid struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invalid))
	assert.Contains(t, invalid.Errors, "weight")

	w = do(r, http.MethodPut, "/nutrition/profile", 10, map[string]any{
		"weight": 70, "height": 175, "age": 30, "gender": "male", "activityLevel": "sedentary", "goal": "maintain",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/nutrition/profile", 10, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view ProfileView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.True(t, view.HasProfile)

	w = do(r, http.MethodGet, "/nutrition/targets", 10, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var targets struct {
		Targets Targets `json:"targets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &targets))
	assert.Equal(t, 22.9, targets.Targets.BMI)
	assert.Equal(t, BMINormal, targets.Targets.BMICategory)

	w = do(r, http.MethodPost, "/nutrition/analyze", 10, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/nutrition/analyze", 10, map[string]any{"familyId": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/nutrition/analyze", 10, map[string]any{"familyId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	var analyzed struct {
		Analysis        Analysis `json:"analysis"`
		FridgeItemCount int      `json:"fridgeItemCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analyzed))
	assert.Equal(t, 1979, analyzed.Analysis.DailyCalorieTarget)
	assert.Len(t, analyzed.Analysis.DinnerSuggestions, 1)
	assert.Equal(t, 2, analyzed.FridgeItemCount)

	f.redis.FlushAll()
	f.meals.err = llm.ErrInvalidOutput
	w = do(r, http.MethodPost, "/nutrition/analyze", 10, map[string]any{"familyId": 1})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
