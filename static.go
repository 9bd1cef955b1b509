package verso

import (
	"bytes"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verso-dev/verso/internal/dev"
	"github.com/verso-dev/verso/pkg/assets"
)

// =============================================================================
// Static File Serving
// =============================================================================

// staticRelPath returns a sanitized relative path for a static file request.
// It rejects traversal and absolute-path tricks so static serving cannot
// escape the configured store.
func (a *App) staticRelPath(urlPath string) (string, bool) {
	rel := a.stripStaticPrefix(urlPath)
	if rel == "" {
		return "", false
	}

	// Reject NUL early (can appear via %00).
	if strings.IndexByte(rel, 0) != -1 {
		return "", false
	}

	// Reject platform-dependent separators.
	if strings.Contains(rel, "\\") {
		return "", false
	}

	// After prefix stripping, a leading "/" indicates an absolute-path
	// attempt (e.g. "/static//etc/passwd" => "/etc/passwd").
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Reject dot-segments before cleaning; cleaning a traversal attempt
	// away would change the meaning of the request path.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == "" || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}

	// Reject OS-absolute/volume paths after slash conversion.
	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

// stripStaticPrefix removes the static prefix from a URL path, returning
// the store-relative file path.
func (a *App) stripStaticPrefix(urlPath string) string {
	prefix := a.staticPrefix
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	if prefix == "/" {
		return strings.TrimPrefix(urlPath, "/")
	}

	if !strings.HasPrefix(urlPath, prefix) {
		return ""
	}
	return strings.TrimPrefix(urlPath, prefix)
}

// tryStatic serves the request from the asset store if it names an
// existing file. It reports whether the request was handled.
func (a *App) tryStatic(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}

	rel, ok := a.staticRelPath(r.URL.Path)
	if !ok {
		return false
	}

	f, err := a.store.Open(r.Context(), rel)
	if err != nil {
		return false
	}
	defer f.Reader.Close()

	a.applyCacheHeaders(w, rel)
	for key, value := range a.config.Static.Headers {
		w.Header().Set(key, value)
	}
	if f.ContentType != "" {
		w.Header().Set("Content-Type", f.ContentType)
	}

	// Dev mode: HTML pages get the live-reload client appended.
	if a.reload != nil && isHTML(f) {
		a.serveHTMLWithReload(w, r, f)
		return true
	}

	if f.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(f.Size, 10))
	}
	if r.Method == http.MethodHead {
		return true
	}
	if _, err := io.Copy(w, f.Reader); err != nil {
		a.logger.Debug("static write failed", "path", rel, "error", err)
	}
	return true
}

// serveHTMLWithReload buffers an HTML asset and injects the reload client
// before the closing body tag (appended when the tag is absent).
func (a *App) serveHTMLWithReload(w http.ResponseWriter, r *http.Request, f *assets.File) {
	body, err := io.ReadAll(f.Reader)
	if err != nil {
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
		return
	}

	script := []byte(dev.ClientScript)
	if idx := bytes.LastIndex(body, []byte("</body>")); idx != -1 {
		out := make([]byte, 0, len(body)+len(script))
		out = append(out, body[:idx]...)
		out = append(out, script...)
		out = append(out, body[idx:]...)
		body = out
	} else {
		body = append(body, script...)
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write(body)
}

func isHTML(f *assets.File) bool {
	if strings.HasPrefix(f.ContentType, "text/html") {
		return true
	}
	ext := strings.ToLower(path.Ext(f.Name))
	return ext == ".html" || ext == ".htm"
}

// applyCacheHeaders applies cache control headers per the configuration.
func (a *App) applyCacheHeaders(w http.ResponseWriter, filePath string) {
	switch a.config.Static.CacheControl {
	case CacheControlNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")

	case CacheControlProduction:
		if isFingerprinted(filePath) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted checks if a file path appears to carry a content hash
// in its name, e.g. "app.a1b2c3d4.css".
func isFingerprinted(filePath string) bool {
	parts := strings.Split(path.Base(filePath), ".")
	if len(parts) < 3 {
		return false
	}

	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
