// Package session orchestrates persistence and execution of the graph being
// edited: create-or-update saves, the auto-save-then-run cycle, and the
// client-visible status and execution state that result from them. Every
// failure is folded into the status string; nothing here panics or halts the
// client.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openflow/studio/backend"
	"github.com/openflow/studio/canvas"
	"github.com/openflow/studio/catalog"
	"github.com/openflow/studio/internal/metrics"
)

// Status messages for locally rejected operations.
const (
	statusEmptyInput  = "Run input must not be empty."
	statusRunInFlight = "A run is already in progress."
	statusSaved       = "Workflow saved."
)

// missingValue is shown when an execution result lacks a transcript field.
const missingValue = "(not found)"

// Transcript is the two-party conversation view of the latest run.
type Transcript struct {
	UserMessage string
	AgentOutput string
}

// Session owns one workflow's save/run lifecycle against the backend.
type Session struct {
	graph   *canvas.Graph
	client  *backend.Client
	snap    *catalog.Snapshot
	logger  *zap.Logger
	metrics *metrics.Collector

	workflowID string
	name       string

	status   string
	lastExec *backend.ExecutionRecord
	running  bool
}

// New creates a session for the given graph. The workflow id is allocated
// once and reused across saves, which is what makes the create→409→update
// fallback collapse repeated saves into updates.
func New(graph *canvas.Graph, client *backend.Client, snap *catalog.Snapshot, name string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if name == "" {
		name = "Untitled workflow"
	}
	return &Session{
		graph:      graph,
		client:     client,
		snap:       snap,
		logger:     logger.With(zap.String("component", "session")),
		workflowID: uuid.NewString(),
		name:       name,
	}
}

// WithMetrics attaches a metrics collector. Nil is allowed.
func (s *Session) WithMetrics(c *metrics.Collector) *Session {
	s.metrics = c
	return s
}

// Graph returns the graph this session persists.
func (s *Session) Graph() *canvas.Graph { return s.graph }

// WorkflowID returns the id the workflow is saved under.
func (s *Session) WorkflowID() string { return s.workflowID }

// Status returns the latest user-visible status message.
func (s *Session) Status() string { return s.status }

// LastExecution returns the most recent execution record, or nil when the
// last run failed or none has happened.
func (s *Session) LastExecution() *backend.ExecutionRecord { return s.lastExec }

// Save serializes the graph and persists it with create-or-update semantics:
// a create that hits an id conflict is transparently retried as an update
// with the same payload, so repeated saves are idempotent. Any other backend
// failure surfaces the backend's error text verbatim and returns false.
func (s *Session) Save(ctx context.Context) bool {
	payload := s.graph.Payload(s.workflowID, s.name, true)

	start := time.Now()
	_, err := s.client.CreateWorkflow(ctx, payload)
	if errors.Is(err, backend.ErrWorkflowExists) {
		s.observe("create", "conflict", start)
		start = time.Now()
		_, err = s.client.UpdateWorkflow(ctx, payload)
		s.observe("update", outcome(err), start)
	} else {
		s.observe("create", outcome(err), start)
	}

	if err != nil {
		s.status = backend.ErrorBody(err)
		s.logger.Warn("save failed", zap.String("workflow", s.workflowID), zap.Error(err))
		return false
	}
	s.status = statusSaved
	return true
}

// Run validates the input, auto-saves, and executes the workflow. The save
// strictly precedes the run request; a failed save aborts the run. Only one
// run may be in flight at a time — a second Run during an active one is
// rejected locally without touching the network.
func (s *Session) Run(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		s.status = statusEmptyInput
		return false
	}
	if s.running {
		s.status = statusRunInFlight
		return false
	}
	s.running = true
	defer func() { s.running = false }()

	if !s.Save(ctx) {
		return false
	}

	field := s.snap.InputField()
	start := time.Now()
	rec, err := s.client.RunWorkflow(ctx, s.workflowID, map[string]any{field: input})
	s.observe("run", outcome(err), start)
	if err != nil {
		s.lastExec = nil
		if errors.Is(err, backend.ErrBadResponse) {
			s.status = fmt.Sprintf("Execution response could not be decoded: %v", err)
		} else {
			s.status = backend.ErrorBody(err)
		}
		s.logger.Warn("run failed", zap.String("workflow", s.workflowID), zap.Error(err))
		return false
	}

	s.lastExec = rec
	s.status = fmt.Sprintf("Run finished with status %s.", rec.Status)
	s.logger.Info("run finished",
		zap.String("workflow", s.workflowID),
		zap.String("execution", rec.ID),
		zap.String("status", string(rec.Status)))
	return true
}

// Transcript extracts the conversation view from the latest execution: the
// user message under the backend-declared input field and the chain's final
// agent output. Missing fields get an explicit placeholder instead of being
// left undefined.
func (s *Session) Transcript() Transcript {
	t := Transcript{UserMessage: missingValue, AgentOutput: missingValue}
	if s.lastExec == nil || s.lastExec.Result == nil {
		return t
	}
	if v, ok := s.lastExec.Result[s.snap.InputField()]; ok {
		t.UserMessage = fmt.Sprintf("%v", v)
	}
	if v, ok := s.lastExec.Result["agent_output"]; ok {
		t.AgentOutput = fmt.Sprintf("%v", v)
	}
	return t
}

func (s *Session) observe(op, outcome string, start time.Time) {
	s.metrics.Observe(op, outcome, time.Since(start))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
