// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	POST   /v1/layout          lay out the request body (a document payload)
//	POST   /v1/sessions        create a session from a collection and config
//	GET    /v1/sessions/{id}   read a session
//	DELETE /v1/sessions/{id}   delete a session
//	GET    /v1/healthz         liveness
//	GET    /v1/version         build information
//
// /v1/layout accepts the query parameters width, abbrev and session.
// Identical concurrent layout requests share a single pipeline pass. Every
// response carries an X-Request-ID header.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/spantower/pkg/buildinfo"
	"github.com/matzehuels/spantower/pkg/cache"
	"github.com/matzehuels/spantower/pkg/collection"
	"github.com/matzehuels/spantower/pkg/config"
	"github.com/matzehuels/spantower/pkg/errors"
	"github.com/matzehuels/spantower/pkg/fonts"
	spanio "github.com/matzehuels/spantower/pkg/io"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/observability"
	"github.com/matzehuels/spantower/pkg/pipeline"
	"github.com/matzehuels/spantower/pkg/render/spans/layout"
	"github.com/matzehuels/spantower/pkg/session"
)

// RequestIDHeader carries the request id on every response.
const RequestIDHeader = "X-Request-ID"

// Server handles layout requests.
type Server struct {
	runner   *pipeline.Runner
	sessions session.Store
	logger   *log.Logger
	group    singleflight.Group
}

// New creates a server. A nil store keeps sessions in memory.
func New(runner *pipeline.Runner, sessions session.Store, logger *log.Logger) *Server {
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, sessions: sessions, logger: logger}
}

// Handler returns the router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", s.healthz)
		r.Get("/version", s.version)
		r.Post("/layout", s.layout)
		r.Post("/sessions", s.createSession)
		r.Get("/sessions/{id}", s.getSession)
		r.Delete("/sessions/{id}", s.deleteSession)
	})
	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestID keeps a valid inbound X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"id", w.Header().Get(RequestIDHeader),
			"elapsed", elapsed.Round(time.Microsecond))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}

// LayoutResponse is the body of a successful layout request.
type LayoutResponse struct {
	Model    *layout.Model      `json:"model"`
	Messages []messages.Message `json:"messages"`
	Cached   bool               `json:"cached"`
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, spanio.MaxDocumentSize))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	if len(body) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "empty body"))
		return
	}

	opts, key, err := s.layoutOptions(r, body)
	if err != nil {
		writeError(w, err)
		return
	}

	// The pass outlives a canceled caller so that coalesced requests
	// still get their result.
	ctx := context.WithoutCancel(r.Context())
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.runner.Execute(ctx, opts)
	})
	if err != nil {
		s.logger.Error("layout failed", "id", w.Header().Get(RequestIDHeader), "error", err)
		writeError(w, err)
		return
	}
	if shared {
		s.logger.Debug("layout shared", "id", w.Header().Get(RequestIDHeader))
	}

	res := v.(*pipeline.Result)
	msgs := res.Messages
	if msgs == nil {
		msgs = []messages.Message{}
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		Model:    res.Model,
		Messages: msgs,
		Cached:   res.CacheInfo.LayoutHit,
	})
}

// layoutOptions parses the query of r and returns pipeline options with
// the singleflight key of the request.
func (s *Server) layoutOptions(r *http.Request, body []byte) (pipeline.Options, string, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Document: body, Logger: s.logger}

	if v := q.Get("width"); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, "", errors.New(errors.ErrCodeInvalidInput, "invalid width %q", v)
		}
		opts.Width = w
	}
	if v := q.Get("abbrev"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, "", errors.New(errors.ErrCodeInvalidInput, "invalid abbrev %q", v)
		}
		opts.Abbrevs = &b
	}
	if id := q.Get("session"); id != "" {
		sess, err := s.lookup(r.Context(), id)
		if err != nil {
			return opts, "", err
		}
		opts.Session = sess
	}
	if err := opts.Validate(); err != nil {
		return opts, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}

	key := fmt.Sprintf("%s|%s|%s|%s", cache.Hash(body), q.Get("width"), q.Get("abbrev"), q.Get("session"))
	return opts, key, nil
}

// SessionRequest creates a session. Config fields left out keep their
// defaults; a missing collection selects the default collection.
type SessionRequest struct {
	Collection json.RawMessage `json:"collection,omitempty"`
	Config     json.RawMessage `json:"config,omitempty"`
	Font       string          `json:"font,omitempty"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil && !stderrors.Is(err, io.EOF) {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode session request"))
		return
	}

	sess, err := newSession(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.Put(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// newSession builds a session from a request. Only the built-in font
// kinds are accepted over HTTP.
func newSession(req SessionRequest) (*session.Session, error) {
	font := req.Font
	switch font {
	case "":
		font = fonts.KindFixed
	case fonts.KindGo, fonts.KindFixed:
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported font %q (%s, %s)", font, fonts.KindGo, fonts.KindFixed)
	}

	cfg := config.Default()
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
		}
	}
	var coll *collection.Collection
	if len(req.Collection) > 0 {
		var err error
		if coll, err = collection.Parse(req.Collection); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse collection")
		}
	}
	sess, err := session.New(coll, cfg, font)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "create session")
	}
	return sess, nil
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.lookup(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookup returns the stored session id or a SESSION_NOT_FOUND error.
func (s *Server) lookup(ctx context.Context, id string) (*session.Session, error) {
	if err := errors.ValidateSessionName(id); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return sess, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, errors.HTTPStatus(code), errorResponse{Error: errors.UserMessage(err), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
