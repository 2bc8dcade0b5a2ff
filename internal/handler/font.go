package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dukerupert/fontgroup/internal/auth"
	"github.com/dukerupert/fontgroup/internal/fontfile"
	"github.com/dukerupert/fontgroup/internal/metrics"
	"github.com/dukerupert/fontgroup/internal/model"
	"github.com/dukerupert/fontgroup/internal/storage"
	"github.com/dukerupert/fontgroup/internal/store"
	"github.com/dukerupert/fontgroup/internal/websocket"
)

// UploadsPath is where stored font files are served from.
const UploadsPath = "/uploads/"

type FontHandler struct {
	broadcaster
	fontStore *store.FontStore
	files     storage.Storage
	logger    *slog.Logger
}

func NewFontHandler(fs *store.FontStore, files storage.Storage, hub *websocket.Hub, logger *slog.Logger) *FontHandler {
	return &FontHandler{
		broadcaster: broadcaster{hub: hub},
		fontStore:   fs,
		files:       files,
		logger:      logger,
	}
}

// FileURL is the public URL of a stored font file.
func FileURL(f model.Font) string {
	return UploadsPath + f.StoredName
}

// Upload accepts a multipart form with font_file and optional file_name and
// font_name fields. The extension is checked before the file is read and
// the font is parsed before anything is stored.
func (h *FontHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, fontfile.MaxSize+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		h.reject(w, http.StatusBadRequest, "Error uploading the file!")
		return
	}
	file, header, err := r.FormFile("font_file")
	if err != nil {
		h.reject(w, http.StatusBadRequest, "No file selected")
		return
	}
	defer file.Close()

	fileName := strings.TrimSpace(r.FormValue("file_name"))
	if fileName == "" {
		fileName = header.Filename
	}
	fileName = filepath.Base(fileName)

	if err := fontfile.ValidateName(fileName); err != nil {
		h.reject(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, fontfile.MaxSize+1))
	if err != nil {
		h.logger.Error("read upload", "error", err)
		h.reject(w, http.StatusBadRequest, "Error uploading the file!")
		return
	}
	info, err := fontfile.Parse(data)
	if err != nil {
		msg := fontfile.ErrInvalidFont.Error()
		if errors.Is(err, fontfile.ErrTooLarge) {
			msg = fontfile.ErrTooLarge.Error()
		}
		h.logger.Info("rejected font", "file", fileName, "error", err)
		h.reject(w, http.StatusBadRequest, msg)
		return
	}

	fontName := strings.TrimSpace(r.FormValue("font_name"))
	if fontName == "" {
		fontName = info.DisplayName(fileName)
	}

	key := storage.NewKey(fontfile.Extension)
	if err := h.files.Put(r.Context(), key, bytes.NewReader(data), int64(len(data))); err != nil {
		h.logger.Error("store font file", "key", key, "error", err)
		metrics.UploadsTotal.WithLabelValues(metrics.ResultError).Inc()
		writeFail(w, http.StatusInternalServerError, "Error uploading the file!")
		return
	}

	font, err := h.fontStore.Create(fontName, fileName, key, int64(len(data)))
	if err != nil {
		h.logger.Error("create font", "error", err)
		if derr := h.files.Delete(context.WithoutCancel(r.Context()), key); derr != nil {
			h.logger.Error("remove orphaned font file", "key", key, "error", derr)
		}
		metrics.UploadsTotal.WithLabelValues(metrics.ResultError).Inc()
		writeFail(w, http.StatusInternalServerError, "Error uploading the file!")
		return
	}

	metrics.UploadsTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.UploadBytes.Observe(float64(len(data)))
	metrics.FontsStored.Inc()
	h.logger.Info("font uploaded", "id", font.ID, "font", font.FontName, "file", fileName, "user", auth.Username(r.Context()))

	h.broadcast(websocket.NewMessage(websocket.EntityFont, websocket.ActionCreated, font.ID, map[string]any{
		"font_name": font.FontName,
	}))

	writeOK(w, font)
}

func (h *FontHandler) reject(w http.ResponseWriter, status int, message string) {
	metrics.UploadsTotal.WithLabelValues(metrics.ResultRejected).Inc()
	writeFail(w, status, message)
}

func (h *FontHandler) List(w http.ResponseWriter, r *http.Request) {
	fonts, err := h.fontStore.List()
	if err != nil {
		h.logger.Error("list fonts", "error", err)
		writeFail(w, http.StatusInternalServerError, msgFailed)
		return
	}
	if fonts == nil {
		fonts = []model.Font{}
	}
	metrics.FontsStored.Set(float64(len(fonts)))
	writeOK(w, fonts)
}

func (h *FontHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.fontStore.GetByID(id)
	if err != nil {
		h.logger.Error("get font", "id", id, "error", err)
		writeFail(w, http.StatusInternalServerError, msgFailed)
		return
	}
	if existing == nil {
		writeFail(w, http.StatusNotFound, "font not found")
		return
	}

	if err := h.fontStore.Delete(id); err != nil {
		h.logger.Error("delete font", "id", id, "error", err)
		writeFail(w, http.StatusInternalServerError, msgFailed)
		return
	}
	if err := h.files.Delete(r.Context(), existing.StoredName); err != nil {
		h.logger.Warn("remove font file", "key", existing.StoredName, "error", err)
	}

	metrics.FontsStored.Dec()
	h.logger.Info("font deleted", "id", id, "font", existing.FontName, "user", auth.Username(r.Context()))
	h.broadcast(websocket.NewMessage(websocket.EntityFont, websocket.ActionDeleted, id, nil))

	writeOK(w, map[string]int64{"id": id})
}

// File serves a stored font file by key.
func (h *FontHandler) File(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("name")
	if storage.ValidKey(key) != nil {
		http.NotFound(w, r)
		return
	}

	rc, err := h.files.Open(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("open font file", "key", key, "error", err)
		http.Error(w, "failed to read font", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "font/ttf")
	// Keys are never reused, so the content behind one never changes.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Debug("copy font file", "key", key, "error", err)
	}
}

// Stylesheet serves an @font-face rule for every stored font so pages can
// preview them by family name or class.
func (h *FontHandler) Stylesheet(w http.ResponseWriter, r *http.Request) {
	fonts, err := h.fontStore.List()
	if err != nil {
		h.logger.Error("list fonts for stylesheet", "error", err)
		http.Error(w, "failed to load fonts", http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	for _, f := range fonts {
		b.WriteString(fontfile.FaceRule(f.FontName, FileURL(f)))
		b.WriteByte('\n')
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	io.WriteString(w, b.String())
}
