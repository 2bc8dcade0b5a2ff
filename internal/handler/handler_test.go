package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/dukerupert/fontgroup/internal/database"
	"github.com/dukerupert/fontgroup/internal/storage"
	"github.com/dukerupert/fontgroup/internal/store"
)

type testEnv struct {
	fontStore  *store.FontStore
	groupStore *store.GroupStore
	files      *storage.Disk
	fonts      *FontHandler
	groups     *GroupHandler
	pages      *PageHandler
}

func setupHandlers(t *testing.T) testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	files, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("new disk storage: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fs := store.NewFontStore(db)
	gs := store.NewGroupStore(db)
	pages, err := NewPageHandler(fs, gs, logger)
	if err != nil {
		t.Fatalf("new page handler: %v", err)
	}
	return testEnv{
		fontStore:  fs,
		groupStore: gs,
		files:      files,
		fonts:      NewFontHandler(fs, files, nil, logger),
		groups:     NewGroupHandler(gs, fs, nil, logger),
		pages:      pages,
	}
}

type response struct {
	Success int             `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success != rec.Code {
		t.Errorf("success = %d, status = %d; want equal", resp.Success, rec.Code)
	}
	return resp
}

func uploadRequest(t *testing.T, fileName string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile("font_file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(data)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/font_upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// seedFonts stores n fonts directly and returns their ids.
func seedFonts(t *testing.T, env testEnv, names ...string) []int64 {
	t.Helper()
	ids := make([]int64, len(names))
	for i, name := range names {
		f, err := env.fontStore.Create(name, name+".ttf", storage.NewKey("ttf"), 100)
		if err != nil {
			t.Fatalf("seed font: %v", err)
		}
		ids[i] = f.ID
	}
	return ids
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
