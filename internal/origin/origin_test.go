package origin

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/huangsam/swcache/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "index.html"},
		{"", "index.html"},
		{"/index.html", "index.html"},
		{"main.dart.js", "main.dart.js"},
		{"/assets/fonts/", "assets/fonts/index.html"},
		{"/assets/a.png?v=2", "assets/a.png"},
		{"/../secret.txt", "secret.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, objectName(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("http", func(t *testing.T) {
		f, err := New(t.Context(), "https://example.com/app", Options{})
		require.NoError(t, err)
		assert.IsType(t, &HTTPFetcher{}, f)
	})

	t.Run("directory", func(t *testing.T) {
		f, err := New(t.Context(), t.TempDir(), Options{})
		require.NoError(t, err)
		assert.IsType(t, &DirFetcher{}, f)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := New(t.Context(), filepath.Join(t.TempDir(), "nope"), Options{})
		assert.Error(t, err)
	})

	t.Run("file is not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
		_, err := New(t.Context(), file, Options{})
		assert.Error(t, err)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		_, err := New(t.Context(), "s3://", Options{})
		assert.Error(t, err)
	})
}

func TestDirFetcher(t *testing.T) {
	fsys := fstest.MapFS{
		"index.html":         {Data: []byte("<html>home</html>")},
		"main.dart.js":       {Data: []byte("console.log(1)")},
		"assets/logo.png":    {Data: []byte("\x89PNG\r\n\x1a\n")},
		"docs/index.html":    {Data: []byte("<html>docs</html>")},
		"assets/data.custom": {Data: []byte("plain words")},
	}
	f := NewDirFetcher(fsys)
	ctx := t.Context()

	t.Run("root maps to index.html", func(t *testing.T) {
		resp, err := f.Fetch(ctx, schema.GetRequest("/"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "<html>home</html>", string(resp.Body))
		assert.Contains(t, resp.ContentType(), "text/html")
	})

	t.Run("content type by extension", func(t *testing.T) {
		resp, err := f.Fetch(ctx, schema.GetRequest("main.dart.js"))
		require.NoError(t, err)
		assert.Contains(t, resp.ContentType(), "javascript")

		resp, err = f.Fetch(ctx, schema.GetRequest("/assets/logo.png"))
		require.NoError(t, err)
		assert.Equal(t, "image/png", resp.ContentType())
	})

	t.Run("content type sniffed without a known extension", func(t *testing.T) {
		resp, err := f.Fetch(ctx, schema.GetRequest("/assets/data.custom"))
		require.NoError(t, err)
		assert.Contains(t, resp.ContentType(), "text/plain")
	})

	t.Run("directory maps to its index", func(t *testing.T) {
		resp, err := f.Fetch(ctx, schema.GetRequest("/docs"))
		require.NoError(t, err)
		assert.Equal(t, "<html>docs</html>", string(resp.Body))
	})

	t.Run("missing file is a 404 response", func(t *testing.T) {
		resp, err := f.Fetch(ctx, schema.GetRequest("/missing.txt"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.False(t, resp.OK())
	})

	t.Run("head has no body", func(t *testing.T) {
		resp, err := f.Fetch(ctx, schema.Request{Method: http.MethodHead, Path: "/main.dart.js"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Empty(t, resp.Body)
		assert.Equal(t, "14", resp.Header.Get("Content-Length"))
	})

	t.Run("other methods are rejected", func(t *testing.T) {
		resp, err := f.Fetch(ctx, schema.Request{Method: http.MethodPost, Path: "/"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := contextWithCancel(t)
		cancel()
		_, err := f.Fetch(cctx, schema.GetRequest("/"))
		assert.Error(t, err)
	})
}
