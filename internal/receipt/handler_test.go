package receipt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"foodsync/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T, maxUpload int64) (*gin.Engine, fixture) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	h := NewHandler(f.svc, maxUpload)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
		auth.SetCurrent(c, &auth.Claims{UserID: id})
	})
	r.POST("/receipts/scan", h.Scan)
	r.POST("/receipts", h.Upload)
	r.GET("/receipts/:id", h.Show)
	r.POST("/receipts/:id/import", h.Import)
	return r, f
}

func doJSON(r http.Handler, method, path string, userID int64, payload any) *httptest.ResponseRecorder {
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

func doUpload(t *testing.T, r http.Handler, userID int64, familyID string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("familyId", familyID))
	fw, err := mw.CreateFormFile("receipt", "ticket.png")
	require.NoError(t, err)
	_, _ = fw.Write(content)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/receipts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScanHandler(t *testing.T) {
	r, f := setupTestRouter(t, 0)

	w := doJSON(r, http.MethodPost, "/receipts/scan", 10, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, "/receipts/scan", 10, map[string]any{
		"image": base64.StdEncoding.EncodeToString(pngHeader),
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Message string `json:"message"`
		Items   []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.NotEmpty(t, resp.Message)

	f.parser.err = assert.AnError
	w = doJSON(r, http.MethodPost, "/receipts/scan", 10, map[string]any{
		"image": base64.StdEncoding.EncodeToString(pngHeader),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadFlow(t *testing.T) {
	r, f := setupTestRouter(t, 0)

	w := doUpload(t, r, 10, "abc", pngHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doUpload(t, r, 20, "1", pngHeader)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doUpload(t, r, 10, "1", []byte("plain text receipt"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = doUpload(t, r, 10, "1", pngHeader)
	require.Equal(t, http.StatusAccepted, w.Code)
	var created struct {
		Scan struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"scan"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, StatusPending, created.Scan.Status)

	w = doJSON(r, http.MethodGet, "/receipts/not-a-uuid", 10, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/receipts/"+created.Scan.ID, 11, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/receipts/"+created.Scan.ID+"/import", 10, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	_, err := f.svc.ProcessOne(t.Context())
	require.NoError(t, err)

	w = doJSON(r, http.MethodGet, "/receipts/"+created.Scan.ID, 10, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	w = doJSON(r, http.MethodPost, "/receipts/"+created.Scan.ID+"/import", 10, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpload_TooLarge(t *testing.T) {
	r, _ := setupTestRouter(t, 256)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 4096)...)
	w := doUpload(t, r, 10, "1", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
