package server

import (
	"database/sql"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/fontgroup/internal/handler"
	"github.com/dukerupert/fontgroup/internal/metrics"
	"github.com/dukerupert/fontgroup/internal/middleware"
	"github.com/dukerupert/fontgroup/internal/storage"
	"github.com/dukerupert/fontgroup/internal/store"
	ws "github.com/dukerupert/fontgroup/internal/websocket"
	"github.com/dukerupert/fontgroup/web"
)

// Config holds the server options that are not dependencies.
type Config struct {
	Admin middleware.Credentials
	// OriginPatterns are extra hosts allowed to open /ws.
	OriginPatterns []string
	// UploadLimit is the uploads allowed per client IP per minute. Zero
	// means the default of 30.
	UploadLimit int
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	fontH       *handler.FontHandler
	groupH      *handler.GroupHandler
	pageH       *handler.PageHandler
	rateLimiter *middleware.RateLimiter
	cfg         Config
	logger      *slog.Logger
}

func New(db *sql.DB, files storage.Storage, cfg Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))
	metrics.WatchHub(hub.ClientCount, hub.Dropped)

	fontStore := store.NewFontStore(db)
	groupStore := store.NewGroupStore(db)

	pageH, err := handler.NewPageHandler(fontStore, groupStore, logger.With("component", "page"))
	if err != nil {
		return nil, err
	}
	if cfg.UploadLimit <= 0 {
		cfg.UploadLimit = 30
	}

	if n, err := fontStore.Count(); err == nil {
		metrics.FontsStored.Set(float64(n))
	}

	return &Server{
		db:          db,
		hub:         hub,
		fontH:       handler.NewFontHandler(fontStore, files, hub, logger.With("component", "font")),
		groupH:      handler.NewGroupHandler(groupStore, fontStore, hub, logger.With("component", "font_group")),
		pageH:       pageH,
		rateLimiter: middleware.NewRateLimiter(),
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required). Font files and the stylesheet are
	// public so other sites can preview uploaded fonts.
	static, _ := fs.Sub(web.Static, "static")
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", metrics.Handler())
	outerMux.HandleFunc("GET "+handler.UploadsPath+"{name}", s.fontH.File)
	outerMux.HandleFunc("GET /fonts.css", s.fontH.Stylesheet)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)
	outerMux.Handle("/", middleware.RequireAdmin(s.cfg.Admin)(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, s.cfg.UploadLimit, time.Minute)
	return rl(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Font API
	mux.HandleFunc("POST /api/font_upload", s.rateLimitedHandler(s.fontH.Upload))
	mux.HandleFunc("GET /api/upload_list", s.fontH.List)
	mux.HandleFunc("GET /api/delete_font", s.fontH.Delete)
	mux.HandleFunc("POST /api/delete_font", s.fontH.Delete)

	// Font group API
	mux.HandleFunc("POST /api/create_font_group", s.groupH.Create)
	mux.HandleFunc("POST /api/update_font_group", s.groupH.Update)
	mux.HandleFunc("GET /api/group_list", s.groupH.List)
	mux.HandleFunc("GET /api/edit_font_group", s.groupH.Get)
	mux.HandleFunc("GET /api/delete_group", s.groupH.Delete)
	mux.HandleFunc("POST /api/delete_group", s.groupH.Delete)

	// Page and partials
	mux.HandleFunc("GET /", s.pageH.Index)
	mux.HandleFunc("GET /partials/fonts", s.pageH.FontList)
	mux.HandleFunc("GET /partials/groups", s.pageH.GroupList)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.cfg.OriginPatterns, s.logger.With("component", "websocket")))
}
