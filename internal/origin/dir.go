package origin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
)

// DirFetcher serves resources out of a file system, usually a build directory.
type DirFetcher struct {
	fsys fs.FS
}

var _ contract.Fetcher = &DirFetcher{} // Compile-time check

// NewDirFetcher returns a fetcher reading from fsys.
func NewDirFetcher(fsys fs.FS) *DirFetcher {
	return &DirFetcher{fsys: fsys}
}

// Fetch reads the file behind the request path. Missing files are 404 responses.
func (f *DirFetcher) Fetch(ctx context.Context, req schema.Request) (*schema.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.IsGet() && req.Method != http.MethodHead {
		return simpleResponse(http.StatusMethodNotAllowed), nil
	}

	name := objectName(req.Path)
	if !fs.ValidPath(name) {
		return simpleResponse(http.StatusNotFound), nil
	}
	if info, err := fs.Stat(f.fsys, name); err == nil && info.IsDir() {
		name = path.Join(name, "index.html")
	}

	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return simpleResponse(http.StatusNotFound), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	header := http.Header{}
	header.Set("Content-Type", contentType)
	header.Set("Content-Length", strconv.Itoa(len(data)))
	if req.Method == http.MethodHead {
		data = nil
	}
	return &schema.Response{
		Status: http.StatusOK,
		Header: header,
		Body:   data,
	}, nil
}
