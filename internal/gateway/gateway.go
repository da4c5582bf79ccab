// Package gateway serves HTTP requests through the offline cache manager.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/huangsam/swcache/core"
	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
)

// Admin routes live under this prefix. Unknown admin paths get a 404 and never reach the origin.
const AdminPrefix = "/_swcache/"

// CacheHeader reports whether a response came from the cache.
const CacheHeader = "X-Swcache"

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
	maxRequestBody    = 10 << 20
)

// hopHeaders are connection-level headers that must not be replayed from a stored response.
var hopHeaders = []string{"Connection", "Content-Length", "Keep-Alive", "Transfer-Encoding", "Upgrade"}

// Interceptor is the part of the cache manager the gateway needs.
type Interceptor interface {
	Intercept(ctx context.Context, req schema.Request) (*schema.Response, error)
	Activate(ctx context.Context) (schema.ActivationResult, error)
	Status() schema.ManagerStatus
}

var _ Interceptor = &core.Manager{} // Compile-time check

// Handler answers every request through the manager and exposes
// status and activate endpoints under AdminPrefix.
func Handler(m Interceptor, store contract.CacheStore) http.Handler {
	h := &handler{manager: m, store: store}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+AdminPrefix+"status", h.handleStatus)
	mux.HandleFunc("POST "+AdminPrefix+"activate", h.handleActivate)
	mux.HandleFunc(AdminPrefix, h.handleUnknownAdmin)
	mux.HandleFunc("/", h.handleIntercept)
	return mux
}

type handler struct {
	manager Interceptor
	store   contract.CacheStore
}

func (h *handler) handleIntercept(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	req := schema.Request{
		Method: r.Method,
		Path:   requestPath(r.URL),
		Header: r.Header.Clone(),
		Body:   body,
	}

	resp, err := h.manager.Intercept(r.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, core.ErrNotReady) {
			status = http.StatusServiceUnavailable
		}
		core.Logger().Warn("intercept failed",
			zap.String("method", r.Method),
			zap.String("path", req.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(status), status)
		return
	}

	header := w.Header()
	for k, values := range resp.Header {
		for _, v := range values {
			header.Add(k, v)
		}
	}
	for _, k := range hopHeaders {
		header.Del(k)
	}
	header.Set(CacheHeader, contract.GetSourceLabel(resp.Source))
	w.WriteHeader(resp.Status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(resp.Body)
	}
}

// requestPath returns the decoded path plus the raw query, the form manifest
// paths are keyed by.
func requestPath(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}

// statusReply is the body of the status endpoint.
type statusReply struct {
	Manager    schema.ManagerStatus `json:"manager"`
	Store      *schema.CacheStatus  `json:"store,omitempty"`
	StoreError string               `json:"store_error,omitempty"`
}

func (h *handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	reply := statusReply{Manager: h.manager.Status()}
	if h.store != nil {
		status, err := h.store.GetStatus()
		if err != nil {
			reply.StoreError = err.Error()
		} else {
			reply.Store = &status
		}
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.Activate(core.WithTrigger(r.Context(), core.TriggerAdmin))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleUnknownAdmin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": fmt.Sprintf("no admin endpoint for %s %s", r.Method, r.URL.Path),
	})
}

// Serve listens on addr and serves handler until ctx ends.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return ServeListener(ctx, ln, handler)
}

// ServeListener serves handler on ln until ctx ends, then shuts down gracefully.
func ServeListener(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	core.Logger().Info("gateway listening", zap.String("addr", ln.Addr().String()))
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := srv.Shutdown(shutdownCtx)
		cancel()
		<-serveErr
		core.Logger().Info("gateway stopped")
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
