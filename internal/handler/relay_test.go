package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"library/internal/metrics"
	"library/internal/storage"
)

type relayFixture struct {
	server  *httptest.Server
	store   *storage.MemoryStore
	metrics *metrics.Metrics
}

func newRelay(t *testing.T, maxBytes int64) *relayFixture {
	t.Helper()
	store := storage.NewMemoryStore("https://files.example.com")
	m := metrics.New("relay-test")

	mux := http.NewServeMux()
	NewRelayHandler(store, maxBytes, m, discardLogger()).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &relayFixture{server: server, store: store, metrics: m}
}

func (f *relayFixture) upload(t *testing.T, fields map[string]string, filename, contentType string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		header := map[string][]string{
			"Content-Disposition": {`form-data; name="file"; filename="` + filename + `"`},
		}
		if contentType != "" {
			header["Content-Type"] = []string{contentType}
		}
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/upload", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *relayFixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

type uploadResult struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

func TestRelay_Upload(t *testing.T) {
	f := newRelay(t, 1<<20)

	resp := f.upload(t, map[string]string{"folder": "content/video", "type": "content"}, "Lecture.MP4", "video/mp4", []byte("not really a video"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[uploadResult](t, resp)
	assert.True(t, out.Success)
	assert.Regexp(t, `^content/video/content-\d+-[0-9a-f]{8}\.mp4$`, out.Filename)
	assert.Equal(t, "https://files.example.com/"+out.Filename, out.URL)
	assert.Equal(t, int64(18), out.Size)
	assert.Equal(t, "video/mp4", out.Type)

	obj, err := f.store.Head(context.Background(), out.Filename)
	require.NoError(t, err)
	assert.Equal(t, "Lecture.MP4", obj.Metadata[storage.MetaOriginalName])
	assert.Equal(t, "content", obj.Metadata[storage.MetaType])
	assert.NotEmpty(t, obj.Metadata[storage.MetaUploadedAt])

	count, err := testutil.GatherAndCount(f.metrics.Registry(), "library_storage_uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRelay_UploadDefaultsAndSniffing(t *testing.T) {
	f := newRelay(t, 1<<20)

	resp := f.upload(t, nil, "noext", "application/octet-stream", []byte("%PDF-1.7\n%âãÏÓ\n1 0 obj\n"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[uploadResult](t, resp)
	assert.Regexp(t, `^uploads/content-\d+-[0-9a-f]{8}\.bin$`, out.Filename)
	assert.Equal(t, "application/pdf", out.Type)
}

func TestRelay_UploadErrors(t *testing.T) {
	f := newRelay(t, 16)

	resp := f.upload(t, map[string]string{"folder": "x"}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file provided", decode[map[string]string](t, resp)["error"])

	resp = f.upload(t, nil, "big.pdf", "application/pdf", bytes.Repeat([]byte("a"), 64))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "File too large", decode[map[string]string](t, resp)["error"])

	resp = f.do(t, http.MethodPost, "/upload", `{"file": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestRelay_ListInfoDelete(t *testing.T) {
	f := newRelay(t, 1<<20)
	var keys []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		out := decode[uploadResult](t, f.upload(t, map[string]string{"folder": "thumbnails", "type": "thumbnail"}, name, "image/png", []byte(name)))
		keys = append(keys, out.Filename)
	}
	f.upload(t, map[string]string{"folder": "content/pdf"}, "doc.pdf", "application/pdf", []byte("%PDF"))

	resp := f.do(t, http.MethodGet, "/list?prefix=thumbnails/&limit=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[struct {
		Success   bool         `json:"success"`
		Files     []objectInfo `json:"files"`
		Truncated bool         `json:"truncated"`
	}](t, resp)
	assert.True(t, list.Success)
	assert.True(t, list.Truncated)
	require.Len(t, list.Files, 2)
	assert.Equal(t, "image/png", list.Files[0].HTTPMetadata.ContentType)
	assert.Equal(t, "thumbnail", list.Files[0].CustomMetadata[storage.MetaType])

	resp = f.do(t, http.MethodGet, "/list?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/info/"+keys[0], "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[map[string]any](t, resp)
	assert.Equal(t, true, info["success"])
	assert.Equal(t, keys[0], info["key"])

	resp = f.do(t, http.MethodDelete, "/delete", `{"filename": "`+keys[0]+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "File deleted successfully", decode[map[string]any](t, resp)["message"])

	resp = f.do(t, http.MethodGet, "/info/"+keys[0], "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	// Deleting again succeeds, whatever the backend
	resp = f.do(t, http.MethodDelete, "/delete", `{"filename": "`+keys[0]+`"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodDelete, "/delete", `{"filename": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No filename provided", decode[map[string]string](t, resp)["error"])
}

type downStore struct {
	*storage.MemoryStore
}

func (downStore) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestRelay_Health(t *testing.T) {
	f := newRelay(t, 1<<20)
	resp := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])

	rec := httptest.NewRecorder()
	h := NewRelayHandler(downStore{storage.NewMemoryStore("")}, 1, nil, discardLogger())
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Storage unreachable")
}

func TestFiles(t *testing.T) {
	store := storage.NewMemoryStore("")
	require.NoError(t, store.Put(context.Background(), &storage.PutInput{
		Key:         "thumbnails/cover.png",
		Body:        strings.NewReader("png-bytes"),
		ContentType: "image/png",
	}))

	mux := http.NewServeMux()
	mux.Handle("GET /files/{filename...}", Files(store))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/thumbnails/cover.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
