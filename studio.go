// Package studio provides a top-level convenience entry point for the
// OpenFlow workflow builder's client core with minimal boilerplate.
//
// Usage:
//
//	import "github.com/openflow/studio"
//
//	sess, err := studio.New(ctx, studio.WithBaseURL("http://127.0.0.1:8000"))
//	node := sess.Graph().AddNode(catalog.NodeTypeAgent)
//	sess.Run(ctx, "hello")
//
// New performs the bootstrap fetches (node catalog, tool catalog, config) and
// returns a ready Session; the node catalog is required, everything else
// falls back to built-in defaults.
package studio

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/openflow/studio/backend"
	"github.com/openflow/studio/canvas"
	"github.com/openflow/studio/catalog"
	"github.com/openflow/studio/internal/metrics"
	"github.com/openflow/studio/session"
)

// Option configures the session created by [New].
type Option func(*options)

type options struct {
	baseURL       string
	timeout       time.Duration
	workflowName  string
	fallbacksFile string
	logger        *zap.Logger
	registerer    prometheus.Registerer
}

// WithBaseURL sets the backend base URL.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithTimeout sets the per-request timeout for backend calls.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithWorkflowName sets the display name the workflow is saved under.
func WithWorkflowName(name string) Option {
	return func(o *options) { o.workflowName = name }
}

// WithFallbacksFile points at a YAML file overriding the built-in fallback
// defaults used when the backend config is unavailable.
func WithFallbacksFile(path string) Option {
	return func(o *options) { o.fallbacksFile = path }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics enables prometheus metrics on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// New bootstraps the catalogs and returns a session holding a fresh, empty
// graph. It fails only when the node catalog cannot be fetched.
func New(ctx context.Context, opts ...Option) (*session.Session, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	cfg := backend.DefaultClientConfig()
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.timeout > 0 {
		cfg.Timeout = o.timeout
	}
	client := backend.NewClient(cfg, o.logger)

	fb, err := catalog.LoadFallbacks(o.fallbacksFile)
	if err != nil {
		o.logger.Warn("fallback overrides not loaded, using builtins", zap.Error(err))
	}

	snap, err := catalog.Load(ctx, client, fb, o.logger)
	if err != nil {
		return nil, err
	}

	graph := canvas.NewGraph(snap, o.logger)
	sess := session.New(graph, client, snap, o.workflowName, o.logger)
	if o.registerer != nil {
		sess.WithMetrics(metrics.NewCollector("studio", o.registerer))
	}
	return sess, nil
}
