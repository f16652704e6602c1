package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
	"github.com/ironsheep/xray-edge-tools/internal/service"
	"github.com/ironsheep/xray-edge-tools/internal/store"
)

// Banner is the body of GET /.
const Banner = "Fuzzy Xray API"

// HTTPHandler holds the REST routes over an analyzer and batch runner.
type HTTPHandler struct {
	analyzer       *service.Analyzer
	runner         *service.Runner
	maxUploadBytes int64
	log            logrus.FieldLogger
	mux            *http.ServeMux
}

// NewHTTPHandler builds the REST routes. maxUploadBytes <= 0 disables the
// upload limit.
func NewHTTPHandler(analyzer *service.Analyzer, runner *service.Runner, maxUploadBytes int64, log logrus.FieldLogger) http.Handler {
	h := &HTTPHandler{
		analyzer:       analyzer,
		runner:         runner,
		maxUploadBytes: maxUploadBytes,
		log:            log,
		mux:            http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /{$}", h.handleRoot)
	h.mux.HandleFunc("POST /edge-detect", h.handleEdgeDetect)
	h.mux.HandleFunc("POST /batch-edge-detect", h.handleBatchEdgeDetect)
	h.mux.HandleFunc("GET /image/{id}/{kind}", h.handleImage)

	return h.logRequests(withCORS(h.mux))
}

func (h *HTTPHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": Banner})
}

func (h *HTTPHandler) handleEdgeDetect(w http.ResponseWriter, r *http.Request) {
	name, data, status := h.readUpload(w, r)
	if status != 0 {
		writeDetail(w, status, uploadError(status, "Invalid image file"))
		return
	}

	report, err := h.analyzer.AnalyzeBytes(name, data)
	if err != nil {
		if errors.Is(err, imaging.ErrDecode) {
			writeDetail(w, http.StatusBadRequest, "Invalid image file")
			return
		}
		h.log.WithError(err).WithField("filename", name).Error("Edge detection failed")
		writeDetail(w, http.StatusInternalServerError, "Processing failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *HTTPHandler) handleBatchEdgeDetect(w http.ResponseWriter, r *http.Request) {
	name, data, status := h.readUpload(w, r)
	if status != 0 {
		writeDetail(w, status, uploadError(status, "Invalid upload"))
		return
	}
	if !isZipName(name) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Only ZIP files supported"})
		return
	}

	result, err := h.runner.RunZip(r.Context(), data)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArchive) {
			writeDetail(w, http.StatusBadRequest, "Invalid zip archive")
			return
		}
		h.log.WithError(err).Warn("Batch interrupted")
		if result == nil {
			writeDetail(w, http.StatusInternalServerError, "Processing failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleImage(w http.ResponseWriter, r *http.Request) {
	id, kind := r.PathValue("id"), r.PathValue("kind")
	if !store.ValidKind(kind) {
		writeDetail(w, http.StatusBadRequest, "Invalid edge type")
		return
	}

	data, err := h.analyzer.Store().Get(id, kind)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Image not found")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// readUpload reads the multipart "file" field. A non-zero status reports
// why the upload was rejected.
func (h *HTTPHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, int) {
	if h.maxUploadBytes > 0 {
		if r.ContentLength > h.maxUploadBytes {
			return "", nil, http.StatusRequestEntityTooLarge
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, http.StatusRequestEntityTooLarge
		}
		return "", nil, http.StatusBadRequest
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, http.StatusBadRequest
	}
	return header.Filename, data, 0
}

func uploadError(status int, fallback string) string {
	if status == http.StatusRequestEntityTooLarge {
		return "Upload too large"
	}
	return fallback
}

func isZipName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zip")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// withCORS allows any origin, method and header.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("HTTP request")
	})
}

// ListenAndServe listens on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
