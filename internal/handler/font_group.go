package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/dukerupert/fontgroup/internal/auth"
	"github.com/dukerupert/fontgroup/internal/fontgroup"
	"github.com/dukerupert/fontgroup/internal/metrics"
	"github.com/dukerupert/fontgroup/internal/model"
	"github.com/dukerupert/fontgroup/internal/store"
	"github.com/dukerupert/fontgroup/internal/websocket"
)

type GroupHandler struct {
	broadcaster
	groupStore *store.GroupStore
	fontStore  *store.FontStore
	logger     *slog.Logger
}

func NewGroupHandler(gs *store.GroupStore, fs *store.FontStore, hub *websocket.Hub, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{
		broadcaster: broadcaster{hub: hub},
		groupStore:  gs,
		fontStore:   fs,
		logger:      logger,
	}
}

// groupRequest is the JSON body form of a submission. Fonts may be an array
// or a string holding one, matching the form-encoded field.
type groupRequest struct {
	GroupTitle string          `json:"group_title"`
	Fonts      json.RawMessage `json:"fonts"`
}

// decodeForm reads group_title and fonts from a JSON body, a multipart form
// or a urlencoded form.
func decodeForm(r *http.Request) (fontgroup.Form, error) {
	var title string
	var fonts []byte

	ctype, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ctype {
	case "application/json":
		var req groupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return fontgroup.Form{}, fmt.Errorf("invalid JSON: %w", err)
		}
		title = req.GroupTitle
		fonts = req.Fonts
		var inner string
		if json.Unmarshal(req.Fonts, &inner) == nil {
			fonts = []byte(inner)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return fontgroup.Form{}, fmt.Errorf("invalid form: %w", err)
		}
		title = r.FormValue("group_title")
		fonts = []byte(r.FormValue("fonts"))
	default:
		if err := r.ParseForm(); err != nil {
			return fontgroup.Form{}, fmt.Errorf("invalid form: %w", err)
		}
		title = r.FormValue("group_title")
		fonts = []byte(r.FormValue("fonts"))
	}

	rows, err := fontgroup.DecodeRows(fonts)
	if err != nil {
		return fontgroup.Form{}, err
	}
	return fontgroup.Form{Title: strings.TrimSpace(title), Rows: rows}, nil
}

// formError is a rejected submission; its message is shown to the user.
type formError struct {
	msg string
}

func (e formError) Error() string { return e.msg }

// checkForm validates the form and that every referenced font exists.
func (h *GroupHandler) checkForm(form fontgroup.Form) error {
	if err := form.Validate(); err != nil {
		return formError{msg: err.Error()}
	}

	rows := form.Filled()
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.FontID
	}
	found, err := h.fontStore.Exists(ids)
	if err != nil {
		return fmt.Errorf("check fonts: %w", err)
	}
	for _, id := range ids {
		if !found[id] {
			return formError{msg: fmt.Sprintf("unknown font id %d", id)}
		}
	}
	return nil
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		h.failForm(w, "create", formError{msg: err.Error()})
		return
	}
	if err := h.checkForm(form); err != nil {
		h.failForm(w, "create", err)
		return
	}

	group, err := h.groupStore.Create(form.Title, form.ModelRows())
	if err != nil {
		h.logger.Error("create font group", "error", err)
		h.mutation("create", metrics.ResultError)
		writeFail(w, http.StatusInternalServerError, msgFailed)
		return
	}

	h.mutation("create", metrics.ResultOK)
	h.logger.Info("font group created", "id", group.ID, "title", group.Title, "fonts", len(group.Rows), "user", auth.Username(r.Context()))
	h.broadcast(websocket.NewMessage(websocket.EntityGroup, websocket.ActionCreated, group.ID, nil))

	writeOK(w, group.Summary())
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.groupStore.GetByID(id)
	if err != nil {
		h.logger.Error("get font group", "id", id, "error", err)
		writeFail(w, http.StatusInternalServerError, msgFailed)
		return
	}
	if existing == nil {
		writeFail(w, http.StatusNotFound, "font group not found")
		return
	}

	form, err := decodeForm(r)
	if err != nil {
		h.failForm(w, "update", formError{msg: err.Error()})
		return
	}
	if err := h.checkForm(form); err != nil {
		h.failForm(w, "update", err)
		return
	}

	group, err := h.groupStore.Update(id, form.Title, form.ModelRows())
	if err != nil {
		h.logger.Error("update font group", "id", id, "error", err)
		h.mutation("update", metrics.ResultError)
		writeFail(w, http.StatusInternalServerError, msgFailed)
		return
	}

	h.mutation("update", metrics.ResultOK)
	h.logger.Info("font group updated", "id", id, "title", group.Title, "fonts", len(group.Rows), "user", auth.Username(r.Context()))
	h.broadcast(websocket.NewMessage(websocket.EntityGroup, websocket.ActionUpdated, id, nil))

	writeOK(w, group.Summary())
}

func (h *GroupHandler) failForm(w http.ResponseWriter, action string, err error) {
	var fe formError
	if errors.As(err, &fe) {
		h.mutation(action, metrics.ResultRejected)
		writeFail(w, http.StatusBadRequest, fe.msg)
		return
	}
	h.logger.Error("check font group", "action", action, "error", err)
	h.mutation(action, metrics.ResultError)
	writeFail(w, http.StatusInternalServerError, msgFailed)
}

func (h *GroupHandler) mutation(action, result string) {
	metrics.GroupMutationsTotal.WithLabelValues(action, result).Inc()
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupStore.List()
	if err != nil {
		h.logger.Error("list font groups", "error", err)
		writeFail(w, http.StatusInternalServerError, msgFailed)
		return
	}

	summaries := make([]model.GroupSummary, len(groups))
	for i := range groups {
		summaries[i] = groups[i].Summary()
	}
	writeOK(w, summaries)
}

// Get returns one group for the edit form.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid id")
		return
	}

	group, err := h.groupStore.GetByID(id)
	if err != nil {
		h.logger.Error("get font group", "id", id, "error", err)
		writeFail(w, http.StatusInternalServerError, msgFailed)
		return
	}
	if group == nil {
		writeFail(w, http.StatusNotFound, "font group not found")
		return
	}
	writeOK(w, group.Summary())
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.groupStore.GetByID(id)
	if err != nil {
		h.logger.Error("get font group", "id", id, "error", err)
		writeFail(w, http.StatusInternalServerError, msgFailed)
		return
	}
	if existing == nil {
		writeFail(w, http.StatusNotFound, "font group not found")
		return
	}

	if err := h.groupStore.Delete(id); err != nil {
		h.logger.Error("delete font group", "id", id, "error", err)
		h.mutation("delete", metrics.ResultError)
		writeFail(w, http.StatusInternalServerError, msgFailed)
		return
	}

	h.mutation("delete", metrics.ResultOK)
	h.logger.Info("font group deleted", "id", id, "title", existing.Title, "user", auth.Username(r.Context()))
	h.broadcast(websocket.NewMessage(websocket.EntityGroup, websocket.ActionDeleted, id, nil))

	writeOK(w, map[string]int64{"id": id})
}
