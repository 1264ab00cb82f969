package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"library/internal/config"
	"library/internal/httputil"
	"library/internal/metrics"
	"library/internal/storage"
)

// sniffLen is how much of an upload is read to detect its type
const sniffLen = 3072

// RelayHandler fronts the object store for clients that hold no storage credentials.
// Every error is answered with the {"error": message} envelope.
type RelayHandler struct {
	store    storage.ObjectStore
	maxBytes int64
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewRelayHandler creates a relay handler that refuses files larger than maxBytes
func NewRelayHandler(store storage.ObjectStore, maxBytes int64, m *metrics.Metrics, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{
		store:    store,
		maxBytes: maxBytes,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// Upload stores the multipart "file" part
// POST /upload (file, folder, type)
func (h *RelayHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+httputil.MaxJSONBodyBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondEnvelopeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		httputil.RespondEnvelopeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondEnvelopeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		httputil.RespondEnvelopeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	folder := strings.TrimSpace(r.FormValue("folder"))
	if folder == "" {
		folder = storage.DefaultFolder
	}
	kind := strings.TrimSpace(r.FormValue("type"))
	if kind == "" {
		kind = storage.DefaultType
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		httputil.RespondEnvelopeError(w, http.StatusBadRequest, "Unreadable file")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.logger.Error("rewind upload", "error", err)
		httputil.RespondEnvelopeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}
	contentType := storage.DetectContentType(header.Header.Get("Content-Type"), head[:n])

	now := h.now().UTC()
	key := storage.ObjectKey(folder, kind, header.Filename, now)
	err = h.store.Put(r.Context(), &storage.PutInput{
		Key:         key,
		Body:        file,
		Size:        header.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			storage.MetaOriginalName: header.Filename,
			storage.MetaUploadedAt:   now.Format(time.RFC3339),
			storage.MetaType:         kind,
		},
	})
	if err != nil {
		h.logger.Error("upload failed", "key", key, "error", err)
		httputil.RespondEnvelopeError(w, http.StatusBadGateway, "Upload failed: "+err.Error())
		return
	}

	h.metrics.ObserveUpload(kind, header.Size)
	h.logger.Info("file uploaded", "key", key, "size", header.Size, "content_type", contentType)

	httputil.RespondJSON(w, http.StatusOK, uploadResponse{
		Success:  true,
		URL:      h.store.PublicURL(key),
		Filename: key,
		Size:     header.Size,
		Type:     contentType,
	})
}

type deleteRequest struct {
	Filename string `json:"filename"`
}

// Delete removes one object
// DELETE /delete {"filename": key}
func (h *RelayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondEnvelopeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	key := strings.TrimSpace(req.Filename)
	if key == "" {
		httputil.RespondEnvelopeError(w, http.StatusBadRequest, "No filename provided")
		return
	}

	if err := h.store.Delete(r.Context(), key); err != nil {
		h.logger.Error("delete failed", "key", key, "error", err)
		httputil.RespondEnvelopeError(w, http.StatusBadGateway, "Delete failed: "+err.Error())
		return
	}

	h.logger.Info("file deleted", "key", key)
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "File deleted successfully",
	})
}

type objectInfo struct {
	Key            string            `json:"key"`
	Size           int64             `json:"size"`
	Uploaded       time.Time         `json:"uploaded"`
	HTTPMetadata   httpMetadata      `json:"httpMetadata"`
	CustomMetadata map[string]string `json:"customMetadata"`
}

type httpMetadata struct {
	ContentType string `json:"contentType,omitempty"`
}

func toObjectInfo(o storage.Object) objectInfo {
	meta := o.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	return objectInfo{
		Key:            o.Key,
		Size:           o.Size,
		Uploaded:       o.Uploaded,
		HTTPMetadata:   httpMetadata{ContentType: o.ContentType},
		CustomMetadata: meta,
	}
}

// List returns objects under a prefix
// GET /list?prefix=&limit=
func (h *RelayHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := config.DefaultListLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.RespondEnvelopeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, config.MaxListLimit)
	}

	objects, truncated, err := h.store.List(r.Context(), r.URL.Query().Get("prefix"), limit)
	if err != nil {
		h.logger.Error("list failed", "error", err)
		httputil.RespondEnvelopeError(w, http.StatusBadGateway, "List failed: "+err.Error())
		return
	}

	files := make([]objectInfo, 0, len(objects))
	for _, o := range objects {
		files = append(files, toObjectInfo(o))
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"files":     files,
		"truncated": truncated,
	})
}

// Info returns one object's metadata
// GET /info/{filename...}
func (h *RelayHandler) Info(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("filename")
	if key == "" {
		httputil.RespondEnvelopeError(w, http.StatusBadRequest, "No filename provided")
		return
	}

	obj, err := h.store.Head(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			httputil.RespondEnvelopeError(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error("head failed", "key", key, "error", err)
		httputil.RespondEnvelopeError(w, http.StatusBadGateway, "Info failed: "+err.Error())
		return
	}

	info := toObjectInfo(*obj)
	httputil.RespondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		objectInfo
	}{Success: true, objectInfo: info})
}

// Health reports whether the relay can reach its store
// GET /health
func (h *RelayHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("storage unreachable", "error", err)
		httputil.RespondEnvelopeError(w, http.StatusServiceUnavailable, "Storage unreachable")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Files serves objects of the in-memory backend, standing in for the bucket's public
// URL in local development
// GET /files/{filename...}
func Files(store *storage.MemoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("filename")
		obj, err := store.Head(r.Context(), key)
		if err != nil {
			httputil.RespondEnvelopeError(w, http.StatusNotFound, "File not found")
			return
		}
		data, _ := store.Bytes(key)
		if obj.ContentType != "" {
			w.Header().Set("Content-Type", obj.ContentType)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
