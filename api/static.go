package api

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// mimeTypes is the closed extension set served with a concrete type;
// anything else falls back to application/octet-stream.
var mimeTypes = map[string]string{
	".htm":  "text/html",
	".html": "text/html",
	".css":  "text/css",
	".txt":  "text/plain",
	".js":   "text/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpe":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".ico":  "image/vnd.microsoft.icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".svg":  "image/svg+xml",
	".svgz": "image/svg+xml",
	".mp3":  "audio/mpeg",
}

// StaticHandler is the read-only file responder rooted at a directory.
// Paths are URL-decoded, resolved under the root with symlinks
// followed, and rejected if they escape it. Directory targets resolve
// to index.html.
type StaticHandler struct {
	root string
}

// NewStaticHandler creates a handler serving files under root.
func NewStaticHandler(root string) *StaticHandler {
	return &StaticHandler{root: root}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	default:
		w.Header().Set("Allow", "GET, HEAD")
		respondError(w, http.StatusMethodNotAllowed, codeInvalidMethod,
			"Only GET and HEAD methods are expected")
		return
	}

	path, err := url.PathUnescape(r.URL.EscapedPath())
	if err != nil || !strings.HasPrefix(path, "/") {
		staticError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	full, ok := h.resolve(path)
	if !ok {
		staticError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		full = filepath.Join(full, "index.html")
		info, err = os.Stat(full)
	}
	if err != nil || info.IsDir() {
		staticError(w, http.StatusNotFound, "File not found")
		return
	}

	data, err := os.ReadFile(full)
	if err != nil {
		staticError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", mimeType(full))
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(data)
}

// resolve joins the decoded request path onto the root and verifies
// the result, with symlinks evaluated, still lives under the root.
func (h *StaticHandler) resolve(path string) (string, bool) {
	rootAbs, err := filepath.Abs(h.root)
	if err != nil {
		return "", false
	}
	full := filepath.Join(rootAbs, filepath.FromSlash(path))
	if !isSubPath(full, rootAbs) {
		return "", false
	}

	// A symlink inside the tree may still point outside it.
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		if os.IsNotExist(err) {
			return full, true
		}
		return "", false
	}
	resolvedRoot, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return "", false
	}
	if !isSubPath(resolved, resolvedRoot) {
		return "", false
	}
	return resolved, true
}

func isSubPath(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

func mimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}

func staticError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(message))
}
