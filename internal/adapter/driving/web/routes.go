package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers the HTML pages and embedded static assets on mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /leaderboard/{id}", h.CategoryLeaderboard)
}
