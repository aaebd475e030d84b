package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/pathflow/pkg/domain"
)

var timeSince = func(t time.Time) float64 { return time.Since(t).Seconds() }

// LogHooks logs every lifecycle transition.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	flow := func(msg string, level slog.Level) func(context.Context, *domain.FlowEvent) {
		return func(ctx context.Context, e *domain.FlowEvent) {
			attrs := []any{"flow", e.Flow, "invocation", e.InvocationID, "progress", e.Progress.String()}
			if e.Step != "" {
				attrs = append(attrs, "step", e.Step)
			}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			logger.Log(ctx, level, msg, attrs...)
		}
	}
	return domain.LifecycleHooks{
		OnFlowStart: flow("flow_start", slog.LevelDebug),
		OnStep:      flow("step", slog.LevelDebug),
		OnSuspend:   flow("suspend", slog.LevelDebug),
		OnResume:    flow("resume", slog.LevelDebug),
		OnFinish:    flow("finish", slog.LevelDebug),
		OnAbort:     flow("abort", slog.LevelWarn),
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			logger.Debug("commit", "description", e.Description, "edits", e.Edits, "events", e.Events)
		},
	}
}

// Combine merges hook sets. Each callback runs the non-nil callbacks of every
// set, in argument order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	flow := func(pick func(domain.LifecycleHooks) func(context.Context, *domain.FlowEvent)) func(context.Context, *domain.FlowEvent) {
		var fns []func(context.Context, *domain.FlowEvent)
		for _, s := range sets {
			if fn := pick(s); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(ctx context.Context, e *domain.FlowEvent) {
			for _, fn := range fns {
				fn(ctx, e)
			}
		}
	}

	var commits []func(context.Context, *domain.CommitEvent)
	for _, s := range sets {
		if s.OnCommit != nil {
			commits = append(commits, s.OnCommit)
		}
	}
	var onCommit func(context.Context, *domain.CommitEvent)
	if len(commits) > 0 {
		onCommit = func(ctx context.Context, e *domain.CommitEvent) {
			for _, fn := range commits {
				fn(ctx, e)
			}
		}
	}

	return domain.LifecycleHooks{
		OnFlowStart: flow(func(h domain.LifecycleHooks) func(context.Context, *domain.FlowEvent) { return h.OnFlowStart }),
		OnStep:      flow(func(h domain.LifecycleHooks) func(context.Context, *domain.FlowEvent) { return h.OnStep }),
		OnSuspend:   flow(func(h domain.LifecycleHooks) func(context.Context, *domain.FlowEvent) { return h.OnSuspend }),
		OnResume:    flow(func(h domain.LifecycleHooks) func(context.Context, *domain.FlowEvent) { return h.OnResume }),
		OnFinish:    flow(func(h domain.LifecycleHooks) func(context.Context, *domain.FlowEvent) { return h.OnFinish }),
		OnAbort:     flow(func(h domain.LifecycleHooks) func(context.Context, *domain.FlowEvent) { return h.OnAbort }),
		OnCommit:    onCommit,
	}
}
