package handler

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/fontgroup/internal/fontfile"
	"github.com/dukerupert/fontgroup/internal/fontgroup"
	"github.com/dukerupert/fontgroup/internal/model"
	"github.com/dukerupert/fontgroup/internal/store"
	"github.com/dukerupert/fontgroup/web"
	"github.com/dustin/go-humanize"
)

// PageHandler renders the admin page and the list partials it refreshes.
type PageHandler struct {
	fontStore  *store.FontStore
	groupStore *store.GroupStore
	templates  *template.Template
	logger     *slog.Logger
}

var templateFuncs = template.FuncMap{
	"bytes":     func(n int64) string { return humanize.Bytes(uint64(n)) },
	"ago":       func(t time.Time) string { return humanize.Time(t) },
	"className": fontfile.ClassName,
	"fileURL":   FileURL,
	"newRow":    fontgroup.NewRow,
	"rowData": func(fonts []model.Font, row fontgroup.Row) map[string]any {
		return map[string]any{"Fonts": fonts, "Row": row}
	},
	"optionData": func(fonts []model.Font, selected int64) map[string]any {
		return map[string]any{"Fonts": fonts, "Selected": selected}
	},
}

func NewPageHandler(fs *store.FontStore, gs *store.GroupStore, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		fontStore:  fs,
		groupStore: gs,
		templates:  tmpl,
		logger:     logger,
	}, nil
}

type pageData struct {
	Title    string
	Fonts    []model.Font
	Groups   []model.GroupSummary
	Form     fontgroup.Form
	EditID   int64
	MinFonts int
}

// Index renders the whole page. ?edit=<id> preloads that group into the form.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	fonts, err := h.fontStore.List()
	if err != nil {
		h.logger.Error("list fonts", "error", err)
		http.Error(w, "failed to load fonts", http.StatusInternalServerError)
		return
	}
	groups, err := h.summaries()
	if err != nil {
		h.logger.Error("list font groups", "error", err)
		http.Error(w, "failed to load font groups", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Title:    "Font Groups",
		Fonts:    fonts,
		Groups:   groups,
		Form:     fontgroup.NewForm(),
		MinFonts: fontgroup.MinFonts,
	}

	if s := r.URL.Query().Get("edit"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		group, err := h.groupStore.GetByID(id)
		if err != nil {
			h.logger.Error("get font group", "id", id, "error", err)
			http.Error(w, "failed to load font group", http.StatusInternalServerError)
			return
		}
		if group == nil {
			http.Error(w, "font group not found", http.StatusNotFound)
			return
		}
		data.Form = fontgroup.FormFromGroup(group)
		data.EditID = group.ID
	}

	h.render(w, "layout", data)
}

func (h *PageHandler) FontList(w http.ResponseWriter, r *http.Request) {
	fonts, err := h.fontStore.List()
	if err != nil {
		h.logger.Error("list fonts", "error", err)
		http.Error(w, "failed to load fonts", http.StatusInternalServerError)
		return
	}
	h.render(w, "font-list", pageData{Fonts: fonts})
}

func (h *PageHandler) GroupList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.summaries()
	if err != nil {
		h.logger.Error("list font groups", "error", err)
		http.Error(w, "failed to load font groups", http.StatusInternalServerError)
		return
	}
	h.render(w, "group-list", pageData{Groups: groups})
}

func (h *PageHandler) summaries() ([]model.GroupSummary, error) {
	groups, err := h.groupStore.List()
	if err != nil {
		return nil, err
	}
	out := make([]model.GroupSummary, len(groups))
	for i := range groups {
		out[i] = groups[i].Summary()
	}
	return out, nil
}

// render executes into a buffer so a template error never leaves a
// half-written page behind.
func (h *PageHandler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
