package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"regexp"
	"strings"
	"testing"

	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/service"
)

var dishImageKeyPattern = regexp.MustCompile(`^dishes/restaurant-\d+/[0-9a-fA-F-]{36}\.(jpg|png)$`)

func TestDishImageUploadStoresInMinIO(t *testing.T) {
	env := newMinIOIntegrationEnv(t)
	baseURL, client, mailer, closeFn := newTestServerWithOptions(t, testServerOptions{storageSvc: env.storage})
	defer closeFn()

	token := loginWithOTP(t, client, baseURL, mailer, "owner@example.com")
	restaurant, dish := createRestaurantWithDish(t, client, baseURL, token)

	uploadURL := fmt.Sprintf("%s/api/v1/restaurants/%d/dishes/%d/image", baseURL, restaurant.ID, dish.ID)
	resp, raw := uploadImageMultipart(t, client, uploadURL, token, "dish.jpg", jpegFixtureBytes(), "image/jpeg")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload failed: status=%d body=%s", resp.StatusCode, raw)
	}

	var updated domain.Dish
	if err := json.Unmarshal(raw, &updated); err != nil {
		t.Fatalf("decode dish: %v", err)
	}
	if updated.ImageURL == "" {
		t.Fatal("expected image url on the dish")
	}

	// The key is recorded on the dish but never serialized; recover it from
	// the presigned URL to verify the stored object.
	keyStart := strings.Index(updated.ImageURL, "dishes/")
	if keyStart < 0 {
		t.Fatalf("expected object key inside presigned url, got %q", updated.ImageURL)
	}
	objectKey := updated.ImageURL[keyStart:]
	if q := strings.Index(objectKey, "?"); q >= 0 {
		objectKey = objectKey[:q]
	}
	if !dishImageKeyPattern.MatchString(objectKey) {
		t.Fatalf("unexpected object key format %q", objectKey)
	}

	obj := env.mustStatObject(t, objectKey)
	if obj.ContentType != "image/jpeg" {
		t.Fatalf("expected content type image/jpeg, got %q", obj.ContentType)
	}
	if obj.Size != int64(len(jpegFixtureBytes())) {
		t.Fatalf("expected object size %d, got %d", len(jpegFixtureBytes()), obj.Size)
	}

	// The public menu picks up the image after the cache invalidation.
	var menu service.PublicMenuView
	resp, raw = doJSON(t, client, http.MethodGet, baseURL+"/api/v1/public/menus/"+restaurant.PublicID, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public menu failed: status=%d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &menu); err != nil {
		t.Fatalf("decode public menu: %v", err)
	}
	if len(menu.Uncategorized) != 1 || menu.Uncategorized[0].ImageURL == "" {
		t.Fatalf("expected image url in public menu, got %+v", menu.Uncategorized)
	}
}

func TestDishImageUploadRejectsNonImages(t *testing.T) {
	env := newMinIOIntegrationEnv(t)
	baseURL, client, mailer, closeFn := newTestServerWithOptions(t, testServerOptions{storageSvc: env.storage})
	defer closeFn()

	token := loginWithOTP(t, client, baseURL, mailer, "owner@example.com")
	restaurant, dish := createRestaurantWithDish(t, client, baseURL, token)

	uploadURL := fmt.Sprintf("%s/api/v1/restaurants/%d/dishes/%d/image", baseURL, restaurant.ID, dish.ID)
	resp, raw := uploadImageMultipart(t, client, uploadURL, token, "notes.txt", []byte("plain text, not an image"), "text/plain")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-image upload, got %d body=%s", resp.StatusCode, raw)
	}
	if env := decodeAPIError(t, raw); env.Error == nil || env.Error.Code != "BAD_REQUEST" {
		t.Fatalf("expected BAD_REQUEST envelope, got %s", raw)
	}
}

func TestDishImageUploadWithoutStorageBackend(t *testing.T) {
	baseURL, client, mailer, closeFn := newTestServer(t)
	defer closeFn()

	token := loginWithOTP(t, client, baseURL, mailer, "owner@example.com")
	restaurant, dish := createRestaurantWithDish(t, client, baseURL, token)

	uploadURL := fmt.Sprintf("%s/api/v1/restaurants/%d/dishes/%d/image", baseURL, restaurant.ID, dish.ID)
	resp, raw := uploadImageMultipart(t, client, uploadURL, token, "dish.jpg", jpegFixtureBytes(), "image/jpeg")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without storage, got %d body=%s", resp.StatusCode, raw)
	}
	if env := decodeAPIError(t, raw); env.Error == nil || env.Error.Code != "STORAGE_DISABLED" {
		t.Fatalf("expected STORAGE_DISABLED envelope, got %s", raw)
	}
}

func createRestaurantWithDish(t *testing.T, client *http.Client, baseURL, token string) (service.RestaurantView, domain.Dish) {
	t.Helper()

	var restaurant service.RestaurantView
	resp, raw := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/restaurants/", map[string]string{
		"name": "Photo Kitchen",
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create restaurant failed: status=%d body=%s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &restaurant); err != nil {
		t.Fatalf("decode restaurant: %v", err)
	}

	var dish domain.Dish
	resp, raw = doJSON(t, client, http.MethodPost, fmt.Sprintf("%s/api/v1/restaurants/%d/dishes/", baseURL, restaurant.ID), map[string]any{
		"name":  "Signature Plate",
		"price": 21.0,
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create dish failed: status=%d body=%s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &dish); err != nil {
		t.Fatalf("decode dish: %v", err)
	}
	return restaurant, dish
}

func uploadImageMultipart(t *testing.T, client *http.Client, url, token, filename string, fileContent []byte, contentType string) (*http.Response, []byte) {
	t.Helper()

	payload := &bytes.Buffer{}
	writer := multipart.NewWriter(payload)
	partHeaders := make(textproto.MIMEHeader)
	partHeaders.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	partHeaders.Set("Content-Type", contentType)
	part, err := writer.CreatePart(partHeaders)
	if err != nil {
		t.Fatalf("create multipart file part: %v", err)
	}
	if _, err := part.Write(fileContent); err != nil {
		t.Fatalf("write multipart file part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, payload)
	if err != nil {
		t.Fatalf("create upload request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("execute upload request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func jpegFixtureBytes() []byte {
	return append([]byte{
		0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46,
		0x49, 0x46, 0x00, 0x01, 0x01, 0x00, 0x00, 0x01,
		0x00, 0x01, 0x00, 0x00,
	}, bytes.Repeat([]byte{0x11}, 1024)...)
}
