package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/plumecms/plume/internal/accounts"
	"github.com/plumecms/plume/internal/config"
	"github.com/plumecms/plume/internal/content"
	"github.com/plumecms/plume/internal/media"
	"github.com/plumecms/plume/internal/server"
	"github.com/plumecms/plume/internal/settings"
	"github.com/plumecms/plume/internal/storage"
)

const testSecret = "test-secret"

type testAPI struct {
	http  http.Handler
	token string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := slog.Default()

	accountService := accounts.NewService(log, accounts.NewMemoryRepository())
	if err := accountService.EnsureAdmin(t.Context(), "admin", "s3cret"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	contentService := content.NewService(log, content.NewMemoryRepository())
	settingsService := settings.NewService(log, settings.NewMemoryRepository(), config.UploadConfig{})

	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	mediaService := media.NewService(log, store, media.NewMemoryRepository())

	srv := server.NewServer(log, ":0", testSecret,
		NewPingHandler(log),
		NewAuthHandler(log, accountService, testSecret, time.Hour),
		NewContentHandler(log, contentService),
		NewMediaHandler(log, mediaService, settingsService),
		NewSettingsHandler(log, settingsService),
	)

	api := &testAPI{http: srv}
	api.token = api.login(t, "admin", "s3cret")
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.http.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, identity, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/login", LoginRequest{Identity: identity, Password: password}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func base64PNG(t *testing.T) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(testPNG(t, 40, 30))
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7 % 256), G: uint8(y * 13 % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPingIsPublic(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/ping", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/content", "/media", "/settings/upload", "/auth/me"} {
		rec := api.do(t, http.MethodGet, path, nil, false)
		if rec.Code != http.StatusBadRequest && rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected auth rejection, got %d", path, rec.Code)
		}
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/auth/login", LoginRequest{Identity: "admin", Password: "wrong"}, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMe(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/auth/me", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	account := decodeJSON[accounts.Account](t, rec)
	if account.Username != "admin" {
		t.Fatalf("expected admin, got %q", account.Username)
	}
}

func TestContentLifecycle(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/content", map[string]string{
		"title": "Hello World",
		"body":  "First post.",
	}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	entry := decodeJSON[content.Entry](t, rec)
	if entry.Slug != "hello-world" {
		t.Fatalf("expected generated slug hello-world, got %q", entry.Slug)
	}
	if entry.Status != content.StatusDraft {
		t.Fatalf("expected draft, got %s", entry.Status)
	}
	if entry.AuthorID == "" {
		t.Fatal("expected author to be set from the token")
	}

	rec = api.do(t, http.MethodPost, "/content/"+entry.ID+"/publish", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	published := decodeJSON[content.Entry](t, rec)
	if published.Status != content.StatusPublished || published.PublishedAt == nil {
		t.Fatalf("expected published entry with timestamp, got %+v", published)
	}

	rec = api.do(t, http.MethodGet, "/content?status=published", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	entries := decodeJSON[[]content.Entry](t, rec)
	if len(entries) != 1 {
		t.Fatalf("expected 1 published entry, got %d", len(entries))
	}

	rec = api.do(t, http.MethodDelete, "/content/"+entry.ID, nil, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = api.do(t, http.MethodGet, "/content/"+entry.ID, nil, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestContentDuplicateSlugConflict(t *testing.T) {
	api := newTestAPI(t)
	first := api.do(t, http.MethodPost, "/content", map[string]string{"title": "Same", "slug": "same"}, true)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}
	second := api.do(t, http.MethodPost, "/content", map[string]string{"title": "Same Again", "slug": "same"}, true)
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", second.Code, second.Body.String())
	}
}

func TestMediaUploadMultipart(t *testing.T) {
	api := newTestAPI(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(testPNG(t, 64, 48)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/media", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+api.token)
	rec := httptest.NewRecorder()
	api.http.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeJSON[media.IngestOutput](t, rec)
	if out.Asset.Mime != "image/jpeg" {
		t.Fatalf("expected jpeg output, got %s", out.Asset.Mime)
	}
	if !strings.HasPrefix(out.DataURL, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected data url prefix: %.40s", out.DataURL)
	}

	fileRec := api.do(t, http.MethodGet, "/media/"+out.Asset.ID+"/file", nil, true)
	if fileRec.Code != http.StatusOK {
		t.Fatalf("file: expected 200, got %d", fileRec.Code)
	}
	if got := fileRec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %s", got)
	}
	if int64(fileRec.Body.Len()) != out.Asset.SizeBytes {
		t.Fatalf("expected %d stored bytes, got %d", out.Asset.SizeBytes, fileRec.Body.Len())
	}
}

func TestMediaUploadRejectsNonImage(t *testing.T) {
	api := newTestAPI(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="report.pdf"`}
	header["Content-Type"] = []string{"application/pdf"}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	part.Write([]byte("%PDF-1.4 not an image"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/media", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+api.token)
	rec := httptest.NewRecorder()
	api.http.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMediaUploadJSONDataURL(t *testing.T) {
	api := newTestAPI(t)

	dataURL := "data:image/png;base64," + base64PNG(t)
	rec := api.do(t, http.MethodPost, "/media", uploadJSON{FileName: "inline.png", Data: dataURL}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeJSON[media.IngestOutput](t, rec)
	if out.Asset.FileName != "inline.png" {
		t.Fatalf("expected inline.png, got %s", out.Asset.FileName)
	}
}

func TestSettingsUpdateChangesPipeline(t *testing.T) {
	api := newTestAPI(t)

	outputType := "image/png"
	rec := api.do(t, http.MethodPut, "/settings/upload", settings.UpsertRequest{OutputType: &outputType}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("put settings: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	saved := decodeJSON[settings.Settings](t, rec)
	if saved.OutputType != "image/png" {
		t.Fatalf("expected image/png, got %s", saved.OutputType)
	}

	dataURL := "data:image/png;base64," + base64PNG(t)
	upload := api.do(t, http.MethodPost, "/media", uploadJSON{FileName: "a.png", Data: dataURL}, true)
	if upload.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", upload.Code, upload.Body.String())
	}
	out := decodeJSON[media.IngestOutput](t, upload)
	if out.Asset.Mime != "image/png" {
		t.Fatalf("expected png output after settings change, got %s", out.Asset.Mime)
	}
}

func TestSettingsRejectInvalidQuality(t *testing.T) {
	api := newTestAPI(t)
	quality := 1.5
	rec := api.do(t, http.MethodPut, "/settings/upload", settings.UpsertRequest{Quality: &quality}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
