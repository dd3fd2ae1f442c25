// Package httpapi serves the catalog over a local HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/index"
	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/skills"
	"github.com/skillet-ai/skillet/pkg/telemetry"
)

// ServerConfig holds configuration for the HTTP API server.
type ServerConfig struct {
	Host string
	Port int
}

// Validate checks the configuration.
func (c *ServerConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Server exposes catalog discovery and the search index over HTTP.
type Server struct {
	router *mux.Router
	server *http.Server
	config *ServerConfig

	skills *skills.Discovery
	agents *agents.Loader
	store  *index.Store
}

// NewServer creates an HTTP API server. The index store may be nil, in which
// case search and stats endpoints report the index as unavailable.
func NewServer(config *ServerConfig, skillDiscovery *skills.Discovery, agentLoader *agents.Loader, store *index.Store) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		router: mux.NewRouter(),
		config: config,
		skills: skillDiscovery,
		agents: agentLoader,
		store:  store,
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/skills", s.handleListSkills).Methods("GET")
	api.HandleFunc("/skills/{name:.+}", s.handleGetSkill).Methods("GET")
	api.HandleFunc("/agents", s.handleListAgents).Methods("GET")
	api.HandleFunc("/agents/{name:.+}", s.handleGetAgent).Methods("GET")
	api.HandleFunc("/match", s.handleMatch).Methods("GET")
	api.HandleFunc("/search", s.handleSearch).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.tracingMiddleware)
	s.router.Use(s.corsMiddleware)
}

// Handler returns the root HTTP handler, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, map[string]any{"status": "ok"})
}

type skillSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AppliesTo   string `json:"applies_to,omitempty"`
	Category    string `json:"category,omitempty"`
	Plugin      string `json:"plugin,omitempty"`
	Domain      string `json:"domain,omitempty"`
	Path        string `json:"path"`
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	discovered, err := s.skills.DiscoverSkills()
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to discover skills", err)
		return
	}

	stack := r.URL.Query().Get("stack")
	summaries := make([]skillSummary, 0, len(discovered))
	for _, skill := range discovered {
		if stack != "" && skill.AppliesTo != stack {
			continue
		}
		summaries = append(summaries, skillSummary{
			Name:        skill.Name,
			Description: skill.Description,
			AppliesTo:   skill.AppliesTo,
			Category:    skill.Category,
			Plugin:      skill.Plugin,
			Domain:      skill.Domain,
			Path:        skill.Path,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	s.writeJSONResponse(w, map[string]any{"skills": summaries})
}

func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	skill, err := s.skills.GetSkill(name)
	if err != nil {
		s.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("skill %q not found", name), nil)
		return
	}
	s.writeJSONResponse(w, map[string]any{
		"name":        skill.Name,
		"description": skill.Description,
		"applies_to":  skill.AppliesTo,
		"category":    skill.Category,
		"plugin":      skill.Plugin,
		"domain":      skill.Domain,
		"path":        skill.Path,
		"content":     skill.Content,
	})
}

type agentSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tier        string   `json:"tier,omitempty"`
	Domain      string   `json:"domain,omitempty"`
	Triggers    []string `json:"triggers,omitempty"`
	Path        string   `json:"path"`
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	loaded, err := s.agents.ListAgents(r.Context())
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to load agents", err)
		return
	}

	domain := r.URL.Query().Get("domain")
	summaries := make([]agentSummary, 0, len(loaded))
	for _, agent := range loaded {
		if domain != "" && agent.Metadata.Domain != domain {
			continue
		}
		summaries = append(summaries, agentSummary{
			Name:        agent.Metadata.Name,
			Description: agent.Metadata.Description,
			Tier:        agent.Metadata.Tier,
			Domain:      agent.Metadata.Domain,
			Triggers:    agent.Metadata.Triggers,
			Path:        agent.Path,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	s.writeJSONResponse(w, map[string]any{"agents": summaries})
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	agent, err := s.agents.GetAgent(r.Context(), name)
	if err != nil {
		s.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("agent %q not found", name), nil)
		return
	}

	templates := make([]string, 0, len(agent.Templates))
	for _, tmpl := range agent.Templates {
		templates = append(templates, tmpl.Name)
	}

	s.writeJSONResponse(w, map[string]any{
		"name":         agent.Metadata.Name,
		"id":           agent.Metadata.ID,
		"description":  agent.Metadata.Description,
		"tier":         agent.Metadata.Tier,
		"domain":       agent.Metadata.Domain,
		"triggers":     agent.Metadata.Triggers,
		"capabilities": agent.Metadata.Capabilities,
		"templates":    templates,
		"path":         agent.Path,
		"body":         agent.Body,
	})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	phrase := r.URL.Query().Get("phrase")
	if phrase == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "phrase query parameter is required", nil)
		return
	}

	loaded, err := s.agents.ListAgents(r.Context())
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to load agents", err)
		return
	}

	var opts []agents.MatcherOption
	if domain := r.URL.Query().Get("domain"); domain != "" {
		opts = append(opts, agents.WithDomain(domain))
	}

	matches := agents.NewMatcher(loaded, opts...).Match(phrase)
	results := make([]map[string]any, 0, len(matches))
	for _, match := range matches {
		results = append(results, map[string]any{
			"name":    match.Agent.Metadata.Name,
			"tier":    match.Agent.Metadata.Tier,
			"domain":  match.Agent.Metadata.Domain,
			"trigger": match.Trigger,
			"score":   match.Score,
		})
	}

	s.writeJSONResponse(w, map[string]any{"phrase": phrase, "matches": results})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "search index is not available; run 'skillet index' first", nil)
		return
	}

	params := r.URL.Query()
	query := index.Query{
		Term:     params.Get("q"),
		Kind:     params.Get("kind"),
		Stack:    params.Get("stack"),
		Domain:   params.Get("domain"),
		Plugin:   params.Get("plugin"),
		Category: params.Get("category"),
	}
	if limitStr := params.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid limit parameter", nil)
			return
		}
		query.Limit = limit
	}

	docs, err := s.store.Search(r.Context(), query)
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "search failed", err)
		return
	}

	s.writeJSONResponse(w, map[string]any{"results": docs})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "search index is not available; run 'skillet index' first", nil)
		return
	}

	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to read index stats", err)
		return
	}
	if stats == nil {
		s.writeErrorResponse(w, http.StatusNotFound, "index has not been built yet", nil)
		return
	}

	s.writeJSONResponse(w, stats)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration":    time.Since(start),
			"remote_addr": r.RemoteAddr,
		}).Info("HTTP request")
	})
}

func (s *Server) tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := telemetry.Tracer("skillet.httpapi").Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			))
		defer span.End()

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(rw, r.WithContext(ctx))

		telemetry.SetAttributes(ctx, attribute.Int("http.status_code", rw.statusCode))
		if rw.statusCode >= http.StatusInternalServerError {
			telemetry.RecordError(ctx, errors.Errorf("request failed: %s", http.StatusText(rw.statusCode)))
		}
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.G(context.TODO()).WithError(err).Error("failed to encode JSON response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		logger.G(context.TODO()).WithError(err).Error(message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"error":   message,
		"status":  statusCode,
		"success": false,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.G(context.TODO()).WithError(err).Error("failed to encode error response")
	}
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:    address,
		Handler: s.router,
	}

	logger.G(ctx).WithField("address", address).Info("Starting catalog API server")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.G(ctx).WithError(err).Error("API server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Stop force-closes the server.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
