package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/copyleftdev/annealer/internal/errors"
	"github.com/copyleftdev/annealer/internal/logging"
	"github.com/copyleftdev/annealer/internal/optimization"
	"github.com/copyleftdev/annealer/internal/optimization/annealing"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Finished reports whether the run has reached a terminal state.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// RunState is the server-side record of one run.
type RunState struct {
	ID         string
	Function   string
	Status     Status
	Config     annealing.Config
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	Result     *optimization.Result
	Err        error
}

// StartRequest asks for a new run. Config holds partial overrides in the
// annealing.Config JSON shape; omitted fields keep the server defaults and
// the surface's interval.
type StartRequest struct {
	Function string          `json:"function"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// StartResponse acknowledges a new run.
type StartResponse struct {
	RunID  string `json:"run_id"`
	Status Status `json:"status"`
}

// RunStatus is the public view of a run.
type RunStatus struct {
	RunID      string           `json:"run_id"`
	Function   string           `json:"function"`
	Status     Status           `json:"status"`
	Config     annealing.Config `json:"config"`
	CreatedAt  time.Time        `json:"created_at"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Error      string           `json:"error,omitempty"`
	Result     *RunResult       `json:"result,omitempty"`
}

// RunResult summarises a completed run.
type RunResult struct {
	Outcome         optimization.Outcome  `json:"outcome"`
	Iterations      int64                 `json:"iterations"`
	TotalIterations int64                 `json:"total_iterations"`
	Reannealed      bool                  `json:"reannealed"`
	Reanneals       int                   `json:"reanneals"`
	Final           optimization.Solution `json:"final"`
	Best            optimization.Solution `json:"best"`
	HistoryLength   int                   `json:"history_length"`
	Summary         string                `json:"summary"`
	History         *History              `json:"history,omitempty"`
}

// History is the final epoch's record.
type History struct {
	States       []optimization.Point `json:"states"`
	Energies     []float64            `json:"energies"`
	Temperatures []float64            `json:"temperatures"`
}

// startRun validates the request, registers a pending run and launches it.
func (s *Server) startRun(req StartRequest) (StartResponse, error) {
	surface, err := s.lookup(req.Function)
	if err != nil {
		return StartResponse{}, err
	}

	cfg := s.cfg.AnnealingDefaults()
	cfg.Interval = surface.Interval
	if len(req.Config) > 0 && string(req.Config) != "null" {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return StartResponse{}, apperrors.Wrap(apperrors.ErrBadRequest, "decode config: "+err.Error())
		}
	}

	id := uuid.NewString()
	runLogger := s.logger.WithFields(map[string]interface{}{
		"run_id":   id,
		"function": surface.Name,
	})

	// Service runs have no cancellation; k_max is capped instead.
	if limit := s.cfg.Annealing.MaxRunIterations; limit > 0 && cfg.KMax > limit {
		runLogger.Debug("k_max capped", map[string]interface{}{
			"requested": cfg.KMax,
			"limit":     limit,
		})
		cfg.KMax = limit
	}

	a, err := annealing.New(cfg, surface.Objective,
		annealing.WithObserver(s.metrics.Observer(surface.Name)),
		annealing.WithLogger(logging.NewZapLogger(runLogger)),
	)
	if err != nil {
		return StartResponse{}, err
	}

	run := &RunState{
		ID:        id,
		Function:  surface.Name,
		Status:    StatusPending,
		Config:    a.Config(),
		CreatedAt: time.Now(),
	}

	s.runsMu.Lock()
	if s.closed {
		s.runsMu.Unlock()
		return StartResponse{}, apperrors.Wrap(apperrors.ErrConflict, "server is shutting down")
	}
	s.runs[id] = run
	s.wg.Add(1)
	s.runsMu.Unlock()

	go s.execute(run, a, runLogger)

	runLogger.Info("run accepted")
	return StartResponse{RunID: id, Status: StatusPending}, nil
}

// execute drives one run to completion. A panicking objective fails the
// run instead of the process.
func (s *Server) execute(run *RunState, a *annealing.Annealer, logger *logging.Logger) {
	defer s.wg.Done()

	s.runsMu.Lock()
	started := time.Now()
	run.Status = StatusRunning
	run.StartedAt = &started
	s.runsMu.Unlock()

	var result *optimization.Result
	err := apperrors.Recover(func() error {
		var err error
		result, err = a.Optimize()
		return err
	})

	s.runsMu.Lock()
	defer s.runsMu.Unlock()

	finished := time.Now()
	run.FinishedAt = &finished
	if err != nil {
		run.Status = StatusFailed
		run.Err = err
		s.metrics.RecordFailure(run.Function)
		logger.WithError(err).Error("run failed")
		return
	}

	run.Status = StatusCompleted
	run.Result = result
	logger.Info("run completed", map[string]interface{}{
		"outcome":    result.Outcome.String(),
		"iterations": result.TotalIterations,
		"energy":     result.Final.Energy,
		"duration":   finished.Sub(started).String(),
	})
}

// runStatus returns a snapshot of the run with the given id.
func (s *Server) runStatus(id string, withHistory bool) (RunStatus, error) {
	if err := checkID(id); err != nil {
		return RunStatus{}, err
	}

	s.runsMu.RLock()
	defer s.runsMu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return RunStatus{}, apperrors.Wrapf(apperrors.ErrNotFound, "run %s", id)
	}

	status := RunStatus{
		RunID:      run.ID,
		Function:   run.Function,
		Status:     run.Status,
		Config:     run.Config,
		CreatedAt:  run.CreatedAt,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if run.Err != nil {
		status.Error = run.Err.Error()
	}
	if res := run.Result; res != nil {
		status.Result = &RunResult{
			Outcome:         res.Outcome,
			Iterations:      res.Iterations,
			TotalIterations: res.TotalIterations,
			Reannealed:      res.Reannealed,
			Reanneals:       res.Reanneals,
			Final:           res.Final,
			Best:            res.Best,
			HistoryLength:   len(res.Energies),
			Summary:         res.Summary(),
		}
		if withHistory {
			status.Result.History = &History{
				States:       res.States,
				Energies:     res.Energies,
				Temperatures: res.Temperatures,
			}
		}
	}
	return status, nil
}

// deleteRun forgets a finished run.
func (s *Server) deleteRun(id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	s.runsMu.Lock()
	defer s.runsMu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "run %s", id)
	}
	if !run.Status.Finished() {
		return apperrors.Wrapf(apperrors.ErrConflict, "run %s is %s", id, run.Status)
	}
	delete(s.runs, id)
	return nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Wrapf(apperrors.ErrBadRequest, "invalid run id %q", id)
	}
	return nil
}
