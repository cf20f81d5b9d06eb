// Package httpapi exposes finder sessions over HTTP. Each session owns one
// controller plus its assistant bridge; all map mutations go through the same
// controller operations the CLI uses.
package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/location-finder/internal/assistant"
	"github.com/sells-group/location-finder/internal/finder"
	"github.com/sells-group/location-finder/internal/layer"
	"github.com/sells-group/location-finder/pkg/backend"
	"github.com/sells-group/location-finder/pkg/geocode"
)

// Server holds the shared clients and the live session table.
type Server struct {
	api           backend.Client
	geo           geocode.Client
	defaultRadius float64
	origins       []string

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	id      string
	ctrl    *finder.Controller
	bridge  *assistant.Bridge
	zones   *finder.ZoneFinder
	created time.Time
}

// NewServer creates a Server. defaultRadiusMiles seeds each new session's
// search radius.
func NewServer(api backend.Client, geo geocode.Client, defaultRadiusMiles float64, allowedOrigins []string) *Server {
	return &Server{
		api:           api,
		geo:           geo,
		defaultRadius: defaultRadiusMiles,
		origins:       allowedOrigins,
		sessions:      make(map[string]*session),
	}
}

// Router builds the chi router for the session API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/layers", s.handleCatalog)
	r.Get("/geocode", s.handleGeocode)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/center", s.handleSetCenter)
			r.Put("/radius", s.handleSetRadius)
			r.Put("/tab", s.handleSetTab)
			r.Post("/layers", s.handleAddLayer)
			r.Delete("/layers/{layerID}", s.handleRemoveLayer)
			r.Post("/layers/{layerID}/toggle", s.handleToggleLayer)
			r.Patch("/layers/{layerID}/config", s.handleLayerConfig)
			r.Post("/interpret", s.handleInterpret)
			r.Post("/zones", s.handleZones)
		})
	})
	return r
}

// Close shuts down every live session and waits for their in-flight fetches.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.ctrl.Close()
	}
}

func (s *Server) newSession() *session {
	ctrl := finder.NewController(layer.NewFetcher(s.api), s.defaultRadius)
	sess := &session{
		id:      uuid.NewString(),
		ctrl:    ctrl,
		bridge:  assistant.NewBridge(s.api, ctrl),
		zones:   finder.NewZoneFinder(s.api),
		created: time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

// lookup resolves the session from the URL, writing a 404 when it does not
// exist. Callers must return immediately on nil.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *session {
	id := chi.URLParam(r, "sessionID")
	s.mu.Lock()
	sess := s.sessions[id]
	s.mu.Unlock()
	if sess == nil {
		writeError(w, http.StatusNotFound, "not_found", "unknown session")
		return nil
	}
	return sess
}

func (s *Server) remove(id string) *session {
	s.mu.Lock()
	sess := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	return sess
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("httpapi: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "malformed request body: "+err.Error())
		return false
	}
	return true
}
