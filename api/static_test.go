package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newStaticRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":     "<html>home</html>",
		"style.css":      "body {}",
		"app.js":         "console.log(1)",
		"data.bin":       "\x00\x01",
		"img/logo.png":   "not-really-png",
		"sub/index.html": "<html>sub</html>",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func serveStatic(t *testing.T, root, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewStaticHandler(root)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStaticServesFile(t *testing.T) {
	root := newStaticRoot(t)
	rec := serveStatic(t, root, "GET", "/style.css")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/css" {
		t.Fatalf("Content-Type = %q, want text/css", ct)
	}
	if rec.Body.String() != "body {}" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestStaticDirectoryServesIndex(t *testing.T) {
	root := newStaticRoot(t)
	for _, target := range []string{"/", "/sub/", "/sub"} {
		rec := serveStatic(t, root, "GET", target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/html" {
			t.Fatalf("%s: Content-Type = %q", target, ct)
		}
	}
}

func TestStaticMimeTypes(t *testing.T) {
	root := newStaticRoot(t)
	cases := []struct {
		target string
		want   string
	}{
		{"/index.html", "text/html"},
		{"/app.js", "text/javascript"},
		{"/img/logo.png", "image/png"},
		{"/data.bin", "application/octet-stream"},
	}
	for _, c := range cases {
		rec := serveStatic(t, root, "GET", c.target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", c.target, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != c.want {
			t.Errorf("%s: Content-Type = %q, want %q", c.target, ct, c.want)
		}
	}
}

func TestStaticNotFound(t *testing.T) {
	root := newStaticRoot(t)
	rec := serveStatic(t, root, "GET", "/missing.html")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Fatalf("Content-Type = %q, want text/plain", ct)
	}
	if rec.Body.String() != "File not found" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestStaticPathEscapeRejected(t *testing.T) {
	root := newStaticRoot(t)
	secret := filepath.Join(filepath.Dir(root), "secret.txt")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(secret)

	for _, target := range []string{
		"/../secret.txt",
		"/%2e%2e/secret.txt",
		"/sub/../../secret.txt",
	} {
		rec := serveStatic(t, root, "GET", target)
		if rec.Code == http.StatusOK && rec.Body.String() == "secret" {
			t.Fatalf("%s: escaped the web root", target)
		}
	}
}

func TestStaticSymlinkEscapeRejected(t *testing.T) {
	root := newStaticRoot(t)
	secret := filepath.Join(filepath.Dir(root), "secret.txt")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(secret)
	if err := os.Symlink(secret, filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	rec := serveStatic(t, root, "GET", "/link.txt")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStaticRejectsPost(t *testing.T) {
	root := newStaticRoot(t)
	rec := serveStatic(t, root, "POST", "/index.html")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("Allow = %q", allow)
	}
}

func TestStaticURLDecoding(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "hello world.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := serveStatic(t, root, "GET", "/hello%20world.txt")
	if rec.Code != http.StatusOK || rec.Body.String() != "hi" {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}
