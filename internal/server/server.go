// Package server exposes annealing runs over HTTP and JSON-RPC 2.0. Each
// run executes in its own goroutine with its own driver; the server keeps
// their state in memory.
package server

import (
	"sync"

	"github.com/copyleftdev/annealer/internal/config"
	"github.com/copyleftdev/annealer/internal/logging"
	"github.com/copyleftdev/annealer/internal/metrics"
	"github.com/copyleftdev/annealer/internal/optimization/functions"
)

// Logger defines the logging interface used by the server.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Server manages annealing runs and serves the API.
type Server struct {
	cfg     *config.Config
	logger  Logger
	metrics *metrics.Collector

	// Surfaces served in addition to the built-in registry
	surfaces map[string]functions.Surface

	runs   map[string]*RunState
	runsMu sync.RWMutex // Protects runs and closed
	closed bool
	wg     sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records every run on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithSurface makes an extra surface available by name.
func WithSurface(surface functions.Surface) Option {
	return func(s *Server) { s.surfaces[surface.Name] = surface }
}

// NewServer creates a server that fills unset run parameters from
// cfg.AnnealingDefaults.
func NewServer(cfg *config.Config, logger Logger, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		surfaces: make(map[string]functions.Surface),
		runs:     make(map[string]*RunState),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCollector(nil)
	}
	return s
}

// lookup resolves a surface, preferring ones registered with WithSurface.
func (s *Server) lookup(name string) (functions.Surface, error) {
	if surface, ok := s.surfaces[name]; ok {
		return surface, nil
	}
	return functions.Lookup(name)
}

// surfaceList returns every surface the server can run.
func (s *Server) surfaceList() []functions.Surface {
	list := functions.All()
	for _, surface := range s.surfaces {
		list = append(list, surface)
	}
	return list
}

// Wait blocks until every started run has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

// Close stops accepting new runs. Runs in progress finish on their own;
// the driver has no cancellation point.
func (s *Server) Close() error {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()

	s.closed = true
	running := 0
	for _, run := range s.runs {
		if !run.Status.Finished() {
			running++
		}
	}
	if running > 0 {
		s.logger.Warn("closing with runs in progress", map[string]interface{}{"running": running})
	}
	return nil
}
