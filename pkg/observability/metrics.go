package observability

import (
	"context"
	"net/http"
	"sync"

	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records flow and transaction activity on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	flowsStarted  *prometheus.CounterVec
	flowsFinished *prometheus.CounterVec
	flowsAborted  *prometheus.CounterVec
	steps         *prometheus.CounterVec
	suspension    *prometheus.HistogramVec
	commits       prometheus.Counter
	commitEdits   prometheus.Histogram

	mu          sync.Mutex
	suspendedAt map[string]domain.FlowEvent
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		flowsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathflow_flows_started_total",
			Help: "Total number of flow invocations started",
		}, []string{"flow"}),
		flowsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathflow_flows_finished_total",
			Help: "Total number of flow invocations that reached a terminal result",
		}, []string{"flow", "progress"}),
		flowsAborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathflow_flows_aborted_total",
			Help: "Total number of flow invocations aborted or discarded",
		}, []string{"flow", "reason"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathflow_steps_total",
			Help: "Total number of executed steps",
		}, []string{"flow", "step"}),
		suspension: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathflow_suspension_seconds",
			Help:    "Time a flow waited for a dialog answer or a click",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"flow", "kind"}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pathflow_transactions_committed_total",
			Help: "Total number of finished undo transactions",
		}),
		commitEdits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pathflow_transaction_edits",
			Help:    "Number of edits per finished transaction",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		suspendedAt: make(map[string]domain.FlowEvent),
	}
	m.registry.MustRegister(
		m.flowsStarted, m.flowsFinished, m.flowsAborted, m.steps,
		m.suspension, m.commits, m.commitEdits,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFlowStart: func(ctx context.Context, e *domain.FlowEvent) {
			m.flowsStarted.WithLabelValues(e.Flow).Inc()
		},
		OnStep: func(ctx context.Context, e *domain.FlowEvent) {
			m.steps.WithLabelValues(e.Flow, string(e.Step)).Inc()
		},
		OnSuspend: func(ctx context.Context, e *domain.FlowEvent) {
			m.mu.Lock()
			m.suspendedAt[e.InvocationID] = *e
			m.mu.Unlock()
		},
		OnResume: func(ctx context.Context, e *domain.FlowEvent) {
			m.observeSuspension(e.InvocationID)
		},
		OnFinish: func(ctx context.Context, e *domain.FlowEvent) {
			m.flowsFinished.WithLabelValues(e.Flow, e.Progress.String()).Inc()
		},
		OnAbort: func(ctx context.Context, e *domain.FlowEvent) {
			reason := "discarded"
			if e.Err != nil {
				reason = "error"
			}
			m.mu.Lock()
			delete(m.suspendedAt, e.InvocationID)
			m.mu.Unlock()
			m.flowsAborted.WithLabelValues(e.Flow, reason).Inc()
		},
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			m.commits.Inc()
			m.commitEdits.Observe(float64(e.Edits))
		},
	}
}

func (m *Metrics) observeSuspension(invocation string) {
	m.mu.Lock()
	start, ok := m.suspendedAt[invocation]
	delete(m.suspendedAt, invocation)
	m.mu.Unlock()
	if !ok {
		return
	}

	kind := "click"
	if start.Progress == domain.ProgressHaveDialog {
		kind = "dialog"
	}
	m.suspension.WithLabelValues(start.Flow, kind).Observe(timeSince(start.Timestamp))
}
