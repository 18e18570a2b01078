// Package server exposes a bridge over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/valpere/codeconv/internal"
	"github.com/valpere/codeconv/internal/bridge"
	"github.com/valpere/codeconv/internal/buffer"
	"github.com/valpere/codeconv/internal/language"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 30 * time.Second
)

type Server struct {
	bridge  *bridge.Bridge
	log     logrus.FieldLogger
	mux     *http.ServeMux
	limiter *rate.Limiter
}

type Option func(*Server)

// WithRateLimit caps conversions at perMinute, allowing a burst of one.
// Requests over the limit get 429 and make no outbound call. Zero or less
// means unlimited.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute > 0 {
			s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

func New(b *bridge.Bridge, log logrus.FieldLogger, opts ...Option) *Server {
	s := &Server{
		bridge: b,
		log:    log,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("GET /api/languages", s.handleLanguages)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("PUT /api/input", s.handleInput)
	s.mux.HandleFunc("PUT /api/display", s.handleDisplay)
	s.mux.HandleFunc("POST /api/convert", s.handleConvert)
	return s
}

// Handler returns the API with request logging applied.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve takes ownership of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	s.log.WithField("addr", ln.Addr().String()).Info("HTTP server listening")

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.log.Info("shutdown signal received, stopping HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.WithError(err).Error("HTTP server shutdown failed")
		return err
	}
	<-serverErr

	s.log.Info("HTTP server stopped gracefully")
	return nil
}

type languageInfo struct {
	Name    language.Language `json:"name"`
	Aliases []string          `json:"aliases"`
}

type languagesResponse struct {
	Languages     []languageInfo    `json:"languages"`
	DefaultSource language.Language `json:"default_source"`
	DefaultTarget language.Language `json:"default_target"`
	Modes         []buffer.Mode     `json:"modes"`
	Themes        []buffer.Theme    `json:"themes"`
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	resp := languagesResponse{
		DefaultSource: language.DefaultSource,
		DefaultTarget: language.DefaultTarget,
		Modes:         buffer.Modes(),
		Themes:        []buffer.Theme{buffer.ThemeDark, buffer.ThemeLight},
	}
	for _, l := range language.All() {
		resp.Languages = append(resp.Languages, languageInfo{Name: l, Aliases: language.Aliases(l)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bridge.State())
}

// inputRequest updates only the fields that are present.
type inputRequest struct {
	SourceText     *string `json:"source_text"`
	SourceLanguage *string `json:"source_language"`
	TargetLanguage *string `json:"target_language"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var src, tgt language.Language
	var err error
	if req.SourceLanguage != nil {
		if src, err = language.ParseOptional(*req.SourceLanguage); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid source_language: %v", err))
			return
		}
	}
	if req.TargetLanguage != nil {
		if tgt, err = language.Parse(*req.TargetLanguage); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid target_language: %v", err))
			return
		}
	}

	if req.SourceText != nil {
		s.bridge.SetSourceText(*req.SourceText)
	}
	if req.SourceLanguage != nil {
		s.bridge.SetSourceLanguage(src)
	}
	if req.TargetLanguage != nil {
		s.bridge.SetTargetLanguage(tgt)
	}
	writeJSON(w, http.StatusOK, s.bridge.State())
}

type displayRequest struct {
	Buffer string `json:"buffer"`
	Mode   string `json:"mode,omitempty"`
	Theme  string `json:"theme,omitempty"`
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	var req displayRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf *buffer.Buffer
	switch req.Buffer {
	case "input":
		buf = s.bridge.Input()
	case "output":
		buf = s.bridge.Output()
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("buffer must be input or output, got %q", req.Buffer))
		return
	}

	var mode buffer.Mode
	var theme buffer.Theme
	var ok bool
	if req.Mode != "" {
		if mode, ok = buffer.ParseMode(req.Mode); !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode %q", req.Mode))
			return
		}
	}
	if req.Theme != "" {
		if theme, ok = buffer.ParseTheme(req.Theme); !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown theme %q", req.Theme))
			return
		}
	}

	if mode != "" {
		buf.SetMode(mode)
	}
	if theme != "" {
		buf.SetTheme(theme)
	}
	writeJSON(w, http.StatusOK, buf.Display())
}

// convertRequest is optional. Without a body the current input and
// selection are converted.
type convertRequest struct {
	SourceText     string `json:"source_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var body convertRequest
	err := decodeBody(w, r, &body)
	hasBody := err == nil
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req internal.ConversionRequest
	if hasBody {
		if req, err = toConversionRequest(body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	// Rejected requests make no outbound call and must not spend the
	// allowance.
	if s.bridge.Busy() {
		writeError(w, http.StatusConflict, bridge.ErrBusy.Error())
		return
	}
	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "conversion rate limit exceeded")
		return
	}

	var res internal.ConversionResult
	if hasBody {
		res, err = s.bridge.ConvertRequest(r.Context(), req)
	} else {
		res, err = s.bridge.Convert(r.Context())
	}

	switch {
	case errors.Is(err, bridge.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeJSON(w, http.StatusBadGateway, res)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func toConversionRequest(body convertRequest) (internal.ConversionRequest, error) {
	src, err := language.ParseOptional(body.SourceLanguage)
	if err != nil {
		return internal.ConversionRequest{}, fmt.Errorf("invalid source_language: %w", err)
	}
	tgt, err := language.Parse(body.TargetLanguage)
	if err != nil {
		return internal.ConversionRequest{}, fmt.Errorf("invalid target_language: %w", err)
	}
	return internal.ConversionRequest{
		SourceText:     body.SourceText,
		SourceLanguage: src,
		TargetLanguage: tgt,
	}, nil
}

// decodeBody returns io.EOF for an empty body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request handled")
	})
}
