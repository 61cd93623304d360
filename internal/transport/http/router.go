package http

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"rhel-assessment-service/internal/app"
)

// NewRouter wires health, websocket, REST and (when staticDir is set) the
// single-page client.
func NewRouter(service *app.AssessmentService, logger *zap.Logger, staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", NewWSHandler(service, logger).ServeWS)
	NewAPIHandler(service, logger).Register(r.PathPrefix("/api").Subrouter())

	if staticDir != "" {
		r.PathPrefix("/").Handler(spaHandler{dir: staticDir})
	}
	return r
}

// spaHandler serves files from dir and falls back to index.html for any path
// that does not name a file.
type spaHandler struct {
	dir string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(h.dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
		return
	}
	http.FileServer(http.Dir(h.dir)).ServeHTTP(w, r)
}
