package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"rivals-tracker/internal/api"
	"rivals-tracker/internal/domain"

	"github.com/rs/zerolog"
)

const (
	msgFetchFailed   = "Failed to fetch data"
	msgHistoryFailed = "Failed to fetch history"
	msgUpdateFailed  = "Failed to update player"
)

// ProxyServer forwards player requests to the upstream with the server-held API key.
// The {version} path segment is accepted for routing only; the upstream version comes from config.
type ProxyServer struct {
	rivals *api.RivalsClient
	logger zerolog.Logger
}

func NewProxyServer(rivals *api.RivalsClient, logger zerolog.Logger) *ProxyServer {
	return &ProxyServer{rivals: rivals, logger: logger}
}

func (s *ProxyServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/{version}/player/{$}", s.HandleMissingPlayer)
	mux.HandleFunc("GET /api/{version}/player/{player}", s.HandlePlayer)
	mux.HandleFunc("GET /api/{version}/player/{player}/match-history", s.HandleMatchHistory)
	mux.HandleFunc("GET /api/{version}/player/{player}/update", s.HandleUpdate)
	mux.HandleFunc("GET /api/heroes", s.HandleHeroes)
	mux.HandleFunc("GET /healthz", s.HandleHealth)
}

func (s *ProxyServer) HandleMissingPlayer(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusBadRequest, domain.ErrPlayerMissing.Msg)
}

func (s *ProxyServer) HandlePlayer(w http.ResponseWriter, r *http.Request) {
	s.forwardPlayer(w, r, s.rivals.PlayerPath, msgFetchFailed)
}

func (s *ProxyServer) HandleMatchHistory(w http.ResponseWriter, r *http.Request) {
	s.forwardPlayer(w, r, s.rivals.MatchHistoryPath, msgHistoryFailed)
}

func (s *ProxyServer) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	s.forwardPlayer(w, r, s.rivals.UpdatePath, msgUpdateFailed)
}

// forwardPlayer passes the upstream status and JSON body through unchanged.
func (s *ProxyServer) forwardPlayer(w http.ResponseWriter, r *http.Request, path func(string) string, failure string) {
	log := s.requestLogger(r)
	w.Header().Set("Cache-Control", "no-store")

	player := strings.TrimSpace(r.PathValue("player"))
	if player == "" {
		writeError(w, http.StatusBadRequest, domain.ErrPlayerMissing.Msg)
		return
	}

	resp, err := s.rivals.Forward(r.Context(), path(player), api.ForwardOptions{NoStore: true})
	if err != nil {
		s.writeForwardError(w, log, err, failure)
		return
	}
	if !json.Valid(resp.Body) {
		log.Warn().Int("status", resp.Status).Str("player", player).Msg("upstream returned non-JSON body")
		writeError(w, http.StatusInternalServerError, failure)
		return
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	log.Debug().Str("player", player).Int("status", status).Msg("forwarded player request")
	writeRaw(w, status, resp.Body)
}

// HandleHeroes only passes successful replies through.
func (s *ProxyServer) HandleHeroes(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	resp, err := s.rivals.Forward(r.Context(), s.rivals.HeroesPath(), api.ForwardOptions{})
	if err != nil {
		s.writeForwardError(w, log, err, msgFetchFailed)
		return
	}
	if resp.Status < 200 || resp.Status > 299 || !json.Valid(resp.Body) {
		log.Warn().Int("status", resp.Status).Msg("heroes request failed")
		writeError(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}
	writeRaw(w, http.StatusOK, resp.Body)
}

func (s *ProxyServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"api_version": s.rivals.Version(),
		"rate_limit":  s.rivals.GetRateLimitInfo(),
	})
}

func (s *ProxyServer) writeForwardError(w http.ResponseWriter, log *zerolog.Logger, err error, failure string) {
	if domain.IsConfig(err) {
		log.Error().Err(err).Msg("proxy misconfigured")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Error().Err(err).Msg("upstream request failed")
	writeError(w, http.StatusInternalServerError, failure)
}

func (s *ProxyServer) requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeRaw(w, http.StatusInternalServerError, []byte(`{"error":"internal error"}`))
		return
	}
	writeRaw(w, status, b)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
