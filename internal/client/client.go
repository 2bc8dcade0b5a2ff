// Package client talks to the font group API. Uploads and group saves are
// validated locally and never reach the network when they would be
// rejected.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/fontgroup/internal/fontfile"
	"github.com/dukerupert/fontgroup/internal/fontgroup"
	"github.com/dukerupert/fontgroup/internal/model"
)

// MsgFailed is used when the server gave no message of its own.
const MsgFailed = "sorry operation failed try again"

// Error is the single user-facing failure. Err, when set, is the cause.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func failed(err error) *Error {
	return &Error{Message: MsgFailed, Err: err}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string
}

// New returns a client for the API at baseURL. A nil httpClient gets a
// default with a 30 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetBasicAuth sends admin credentials with every request.
func (c *Client) SetBasicAuth(username, password string) {
	c.username = username
	c.password = password
}

type envelope struct {
	Success int             `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(req *http.Request, out any) error {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failed(fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &Error{Status: resp.StatusCode, Message: MsgFailed, Err: fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)}
	}
	if env.Success != http.StatusOK || resp.StatusCode != http.StatusOK {
		msg := env.Message
		if msg == "" {
			msg = MsgFailed
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return failed(fmt.Errorf("decode data: %w", err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return failed(err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, contentType string, body io.Reader, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return failed(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req, out)
}

func idQuery(id int64) url.Values {
	return url.Values{"id": {strconv.FormatInt(id, 10)}}
}

func (c *Client) ListFonts(ctx context.Context) ([]model.Font, error) {
	var fonts []model.Font
	if err := c.get(ctx, "/api/upload_list", nil, &fonts); err != nil {
		return nil, err
	}
	return fonts, nil
}

func (c *Client) DeleteFont(ctx context.Context, id int64) error {
	return c.post(ctx, "/api/delete_font", idQuery(id), "", nil, nil)
}

// UploadFont checks the extension, then parses the file to name it, then
// sends it and returns the refreshed font list. A rejected file never
// reaches the server.
func (c *Client) UploadFont(ctx context.Context, path string) ([]model.Font, error) {
	fileName := filepath.Base(path)
	if err := fontfile.ValidateName(fileName); err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: "Error uploading the file!", Err: err}
	}
	info, err := fontfile.Parse(data)
	if err != nil {
		msg := fontfile.ErrInvalidFont.Error()
		if errors.Is(err, fontfile.ErrTooLarge) {
			msg = err.Error()
		}
		return nil, &Error{Message: msg, Err: err}
	}

	body, contentType, err := uploadBody(fileName, info.DisplayName(fileName), data)
	if err != nil {
		return nil, failed(err)
	}

	if err := c.post(ctx, "/api/font_upload", nil, contentType, body, nil); err != nil {
		return nil, err
	}
	return c.ListFonts(ctx)
}

// uploadBody builds the multipart form the upload endpoint reads.
func uploadBody(fileName, fontName string, data []byte) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("font_file", fileName)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write font file: %w", err)
	}
	if err := mw.WriteField("file_name", fileName); err != nil {
		return nil, "", fmt.Errorf("write file_name: %w", err)
	}
	if err := mw.WriteField("font_name", fontName); err != nil {
		return nil, "", fmt.Errorf("write font_name: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &body, mw.FormDataContentType(), nil
}

func (c *Client) ListGroups(ctx context.Context) ([]model.GroupSummary, error) {
	var groups []model.GroupSummary
	if err := c.get(ctx, "/api/group_list", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup loads a group for editing.
func (c *Client) GetGroup(ctx context.Context, id int64) (*model.GroupSummary, error) {
	var g model.GroupSummary
	if err := c.get(ctx, "/api/edit_font_group", idQuery(id), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// SaveGroup creates the group when id is zero and updates it otherwise,
// then returns the refreshed group list. Only filled rows are sent.
func (c *Client) SaveGroup(ctx context.Context, id int64, form fontgroup.Form) ([]model.GroupSummary, error) {
	if err := form.Validate(); err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}

	payload := fontgroup.Form{Title: strings.TrimSpace(form.Title), Rows: form.Filled()}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, failed(err)
	}

	path, query := "/api/create_font_group", url.Values(nil)
	if id > 0 {
		path, query = "/api/update_font_group", idQuery(id)
	}
	if err := c.post(ctx, path, query, "application/json", bytes.NewReader(b), nil); err != nil {
		return nil, err
	}
	return c.ListGroups(ctx)
}

func (c *Client) DeleteGroup(ctx context.Context, id int64) error {
	return c.post(ctx, "/api/delete_group", idQuery(id), "", nil, nil)
}
