package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/location-finder/internal/assistant"
	"github.com/sells-group/location-finder/internal/finder"
	"github.com/sells-group/location-finder/internal/layer"
	"github.com/sells-group/location-finder/pkg/geocode"
)

// minGeocodeQuery mirrors the autocomplete threshold: shorter queries return
// an empty suggestion list without hitting the geocoders.
const minGeocodeQuery = 3

type sessionView struct {
	ID    string       `json:"id"`
	State finder.State `json:"state"`
}

func view(sess *session) sessionView {
	return sessionView{ID: sess.id, State: sess.ctrl.Snapshot()}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type catalogEntry struct {
	Type              layer.Type     `json:"type"`
	Label             string         `json:"label"`
	Description       string         `json:"description"`
	Icon              string         `json:"icon"`
	Color             string         `json:"color"`
	DefaultConfig     map[string]any `json:"default_config,omitempty"`
	SignificantFields []string       `json:"significant_fields,omitempty"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	types := layer.Types()
	entries := make([]catalogEntry, 0, len(types))
	for _, t := range types {
		def := layer.Get(t)
		entries = append(entries, catalogEntry{
			Type:              def.Type,
			Label:             def.Label,
			Description:       def.Description,
			Icon:              def.Icon,
			Color:             def.Color,
			DefaultConfig:     def.DefaultConfig,
			SignificantFields: def.SignificantFields,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]catalogEntry{"layers": entries})
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < minGeocodeQuery {
		writeJSON(w, http.StatusOK, map[string][]geocode.Suggestion{"suggestions": {}})
		return
	}
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 20 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer between 1 and 20")
			return
		}
		limit = parsed
	}
	suggestions, err := s.geo.Search(r.Context(), query, limit)
	if err != nil {
		zap.L().Warn("httpapi: geocode search", zap.String("query", query), zap.Error(err))
		writeError(w, http.StatusBadGateway, "geocode_failed", "address lookup failed")
		return
	}
	if suggestions == nil {
		suggestions = []geocode.Suggestion{}
	}
	writeJSON(w, http.StatusOK, map[string][]geocode.Suggestion{"suggestions": suggestions})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.newSession()
	writeJSON(w, http.StatusCreated, view(sess))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess := s.remove(chi.URLParam(r, "sessionID"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "not_found", "unknown session")
		return
	}
	sess.ctrl.Close()
	w.WriteHeader(http.StatusNoContent)
}

type setCenterRequest struct {
	Center *layer.Point `json:"center"`
}

// handleSetCenter moves the map center. A null center clears the selection
// and parks every layer.
func (s *Server) handleSetCenter(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	var req setCenterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Center != nil {
		if req.Center.Lat < -90 || req.Center.Lat > 90 || req.Center.Lng < -180 || req.Center.Lng > 180 {
			writeError(w, http.StatusBadRequest, "invalid_center", "lat/lng out of range")
			return
		}
	}
	sess.ctrl.SetCenter(req.Center)
	writeJSON(w, http.StatusOK, view(sess))
}

type setRadiusRequest struct {
	RadiusMiles float64 `json:"radius_miles"`
}

func (s *Server) handleSetRadius(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	var req setRadiusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := sess.ctrl.SetRadius(req.RadiusMiles); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_radius", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

type setTabRequest struct {
	Tab finder.Tab `json:"tab"`
}

func (s *Server) handleSetTab(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	var req setTabRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := sess.ctrl.SetActiveTab(req.Tab); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_tab", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

type addLayerRequest struct {
	Type layer.Type `json:"type"`
}

func (s *Server) handleAddLayer(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	var req addLayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := sess.ctrl.AddLayer(req.Type); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_layer_type", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

func (s *Server) handleRemoveLayer(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	sess.ctrl.RemoveLayer(chi.URLParam(r, "layerID"))
	writeJSON(w, http.StatusOK, view(sess))
}

func (s *Server) handleToggleLayer(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	id := chi.URLParam(r, "layerID")
	if sess.ctrl.Snapshot().LayerByID(id) == nil {
		writeError(w, http.StatusNotFound, "not_found", "unknown layer")
		return
	}
	sess.ctrl.ToggleVisibility(id)
	writeJSON(w, http.StatusOK, view(sess))
}

type layerConfigRequest struct {
	Config map[string]any `json:"config"`
}

func (s *Server) handleLayerConfig(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	var req layerConfigRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Config) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_config", "config must be a non-empty object")
		return
	}
	id := chi.URLParam(r, "layerID")
	if sess.ctrl.Snapshot().LayerByID(id) == nil {
		writeError(w, http.StatusNotFound, "not_found", "unknown layer")
		return
	}
	sess.ctrl.SetLayerConfig(id, req.Config)
	writeJSON(w, http.StatusOK, view(sess))
}

type interpretRequest struct {
	Prompt string `json:"prompt"`
}

type interpretResponse struct {
	Message string       `json:"message"`
	State   finder.State `json:"state"`
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	var req interpretRequest
	if !decodeBody(w, r, &req) {
		return
	}
	msg, err := sess.bridge.Interpret(r.Context(), req.Prompt)
	switch {
	case eris.Is(err, assistant.ErrInterpretPending):
		writeError(w, http.StatusConflict, "interpret_pending", "an interpretation is already in progress")
		return
	case err != nil:
		zap.L().Warn("httpapi: interpret", zap.Error(err))
		writeError(w, http.StatusBadGateway, "interpret_failed", "could not reach the command interpreter")
		return
	}
	writeJSON(w, http.StatusOK, interpretResponse{Message: msg, State: sess.ctrl.Snapshot()})
}

type zonesRequest struct {
	TargetRadiusMiles float64 `json:"target_radius_miles"`
	BusinessType      string  `json:"business_type"`
	TopN              int     `json:"top_n"`
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	var req zonesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st := sess.ctrl.Snapshot()
	if st.Center == nil {
		writeError(w, http.StatusConflict, "no_center", "select a center before requesting zones")
		return
	}
	report, err := sess.zones.Find(r.Context(), st, finder.ZoneQuery{
		TargetRadiusMiles: req.TargetRadiusMiles,
		BusinessType:      req.BusinessType,
		TopN:              req.TopN,
	})
	if err != nil {
		zap.L().Warn("httpapi: zone analysis", zap.Error(err))
		writeError(w, http.StatusBadGateway, "zones_failed", "zone analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
