package editord

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/opencode-ai/netforge/internal/events"
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/opencode-ai/netforge/internal/starters"
	"github.com/opencode-ai/netforge/internal/state"
	"github.com/rs/zerolog"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// Server holds the single shared editor state and serves the JSON API.
type Server struct {
	logger    zerolog.Logger
	version   string
	startedAt time.Time
	maxBody   int64
	defaults  models.LLMConfig
	journal   *events.Journal
	starters  []*starters.Starter

	mu    sync.RWMutex
	state *state.AppState
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithVersion sets the reported version.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithDefaults sets the LLM config used for new networks.
func WithDefaults(llm models.LLMConfig) ServerOption {
	return func(s *Server) {
		s.defaults = llm
	}
}

// WithState starts the server from an existing network.
func WithState(st *state.AppState) ServerOption {
	return func(s *Server) {
		if st != nil {
			s.state = st
		}
	}
}

// WithJournal records changes into j.
func WithJournal(j *events.Journal) ServerOption {
	return func(s *Server) {
		if j != nil {
			s.journal = j
		}
	}
}

// WithStarters sets the starter networks offered by the API. Without it the
// built-in starters are served.
func WithStarters(list []*starters.Starter) ServerOption {
	return func(s *Server) {
		if list != nil {
			s.starters = list
		}
	}
}

// NewServer creates the editor API server.
func NewServer(logger zerolog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		logger:    logger,
		startedAt: time.Now(),
		maxBody:   DefaultMaxBodyBytes,
		defaults:  models.DefaultLLMConfig(),
		journal:   events.NewJournal(events.DefaultJournalSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.state == nil {
		s.state = state.New(s.defaults)
	}
	if s.starters == nil {
		builtins, err := starters.LoadBuiltinStarters()
		if err != nil {
			logger.Warn().Err(err).Msg("builtin starters unavailable")
		}
		s.starters = builtins
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Server) Snapshot() *state.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Journal returns the change journal.
func (s *Server) Journal() *events.Journal {
	return s.journal
}

// read runs fn with the state under the read lock.
func (s *Server) read(fn func(st *state.AppState) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// write runs fn with the state under the write lock. State methods leave
// the state unchanged when they fail.
func (s *Server) write(fn func(st *state.AppState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// swap replaces the whole state.
func (s *Server) swap(next *state.AppState) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// record writes a journal entry. Failures are logged and otherwise ignored.
func (s *Server) record(ctx context.Context, eventType models.EventType, entityType models.EntityType, entityID string, payload any) {
	if err := events.Log(ctx, s.journal, eventType, entityType, entityID, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", string(eventType)).Msg("failed to record change")
	}
}

// recordNetwork writes a journal entry for a whole-network change.
func (s *Server) recordNetwork(ctx context.Context, eventType models.EventType, payload any) {
	if err := events.LogNetwork(ctx, s.journal, eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", string(eventType)).Msg("failed to record change")
	}
}

// Handler returns the HTTP handler with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("POST /api/preview", s.handlePreview)

	mux.HandleFunc("POST /api/network", s.handleNewNetwork)
	mux.HandleFunc("PATCH /api/network", s.handleUpdateNetwork)
	mux.HandleFunc("POST /api/network/import", s.handleImportNetwork)
	mux.HandleFunc("GET /api/network/export", s.handleExportNetwork)
	mux.HandleFunc("GET /api/network/graph", s.handleGraph)
	mux.HandleFunc("GET /api/starters", s.handleStarters)
	mux.HandleFunc("POST /api/network/starter", s.handleNetworkFromStarter)

	mux.HandleFunc("POST /api/variables", s.handleAddBinding)
	mux.HandleFunc("PUT /api/variables/{id}", s.handleUpdateBinding)
	mux.HandleFunc("DELETE /api/variables/{id}", s.handleRemoveBinding)
	mux.HandleFunc("POST /api/variables/import", s.handleImportVariables)
	mux.HandleFunc("GET /api/variables/export", s.handleExportVariables)

	mux.HandleFunc("POST /api/nodes", s.handleAddNode)
	mux.HandleFunc("PATCH /api/nodes/{id}", s.handleUpdateNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", s.handleRemoveNode)

	mux.HandleFunc("POST /api/functions", s.handleAddFunction)
	mux.HandleFunc("PATCH /api/functions/{id}", s.handleUpdateFunction)
	mux.HandleFunc("DELETE /api/functions/{id}", s.handleRemoveFunction)
	mux.HandleFunc("POST /api/functions/{id}/parameters", s.handleAddParameter)
	mux.HandleFunc("PATCH /api/functions/{id}/parameters/{param}", s.handleUpdateParameter)
	mux.HandleFunc("DELETE /api/functions/{id}/parameters/{param}", s.handleRemoveParameter)
	mux.HandleFunc("POST /api/functions/import", s.handleImportFunctions)
	mux.HandleFunc("GET /api/functions/export", s.handleExportFunctions)

	return bodyLimitMiddleware(s.maxBody, mux)
}

// bodyLimitMiddleware limits request body size for POST, PUT, PATCH.
func bodyLimitMiddleware(maxBytes int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next.ServeHTTP(w, r)
	})
}
