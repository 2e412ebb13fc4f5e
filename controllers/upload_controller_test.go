package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/models"
	"github.com/rui-valente/shopfloor-api/services"
)

func buildImageUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadOrderImage(t *testing.T) {
	db := setupControllerTestDB(t)
	config.SetDB(db)

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	defer services.SetS3Service(nil)

	prep := seedStation(t, db, "Prep", 1)
	accessory := seedAccessory(t, db, "Side Mirror")
	supervisor := seedOperator(t, db, "sofia", models.RoleSupervisor)

	order := models.ProductionOrder{SerialNumber: "SN-1", AccessoryID: accessory.ID, StationID: prep.ID, Status: models.StatusPending}
	assert.NoError(t, db.Create(&order).Error)

	router := setupTestRouter()
	auth := mockAuthMiddleware(supervisor.Auth0ID, models.RoleSupervisor, "mock-token")
	router.POST("/orders/:id/image", auth, UploadOrderImage)

	// Successful PNG upload
	body, contentType := buildImageUpload(t, "drawing.png", []byte("png-bytes"))
	req, _ := http.NewRequest(http.MethodPost, "/orders/1/image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	s3Key := data["image_s3_key"].(string)
	assert.True(t, mockS3.FileExists(s3Key))

	var reloaded models.ProductionOrder
	assert.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.NotNil(t, reloaded.ImageS3Key)

	// Replacing the drawing removes the old object
	body, contentType = buildImageUpload(t, "drawing2.png", []byte("png-bytes-2"))
	req, _ = http.NewRequest(http.MethodPost, "/orders/1/image", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, mockS3.FileExists(s3Key), "old drawing is deleted from storage")

	// Reject non-PNG files
	body, contentType = buildImageUpload(t, "drawing.jpg", []byte("jpg-bytes"))
	req, _ = http.NewRequest(http.MethodPost, "/orders/1/image", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown order
	body, contentType = buildImageUpload(t, "drawing.png", []byte("png-bytes"))
	req, _ = http.NewRequest(http.MethodPost, "/orders/999/image", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrderIncludesPresignedURL(t *testing.T) {
	db := setupControllerTestDB(t)
	config.SetDB(db)

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	defer services.SetS3Service(nil)

	prep := seedStation(t, db, "Prep", 1)
	accessory := seedAccessory(t, db, "Side Mirror")
	alice := seedOperator(t, db, "alice", models.RoleOperator, prep)

	order := models.ProductionOrder{SerialNumber: "SN-1", AccessoryID: accessory.ID, StationID: prep.ID, Status: models.StatusPending}
	assert.NoError(t, db.Create(&order).Error)

	// Attach a drawing through the mock
	s3Key, err := mockS3.UploadOrderImage(order.ID, mustFileHeader(t, "drawing.png", []byte("png-bytes")))
	assert.NoError(t, err)
	assert.NoError(t, db.Model(&order).Update("image_s3_key", s3Key).Error)

	router := setupTestRouter()
	router.GET("/orders/:id",
		mockAuthMiddleware(alice.Auth0ID, models.RoleOperator, "mock-token"),
		GetOrder,
	)

	req, _ := http.NewRequest(http.MethodGet, "/orders/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Contains(t, data["image_url"].(string), s3Key)
}

// mustFileHeader builds a real multipart.FileHeader by round-tripping a
// request, since the struct cannot be opened when constructed directly
func mustFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body, contentType := buildImageUpload(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("Failed to parse multipart form: %v", err)
	}
	return req.MultipartForm.File["image"][0]
}
