package domain

import (
	"context"
	"time"
)

// ChangeKind defines the category of a model change.
type ChangeKind string

const (
	ChangeModel  ChangeKind = "model_change"
	ChangeLayout ChangeKind = "layout_change"
)

// ChangeEvent announces that a model changed. It is only dispatched after the
// transaction that produced it has been finished.
type ChangeEvent struct {
	ModelID     string     `json:"model_id"`
	Kind        ChangeKind `json:"kind"`
	Description string     `json:"description,omitempty"`
}

// FlowEvent describes a harness lifecycle transition.
type FlowEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	InvocationID string    `json:"invocation_id"`
	Flow         string    `json:"flow"`
	Step         StepID    `json:"step,omitempty"`
	Progress     Progress  `json:"progress"`
	Err          error     `json:"-"`
}

// CommitEvent describes a finished transaction.
type CommitEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Edits       int       `json:"edits"`
	Events      int       `json:"events"`
}

// LifecycleHooks defines callbacks for observability. Nil hooks are skipped.
type LifecycleHooks struct {
	OnFlowStart func(context.Context, *FlowEvent)
	OnStep      func(context.Context, *FlowEvent)
	OnSuspend   func(context.Context, *FlowEvent)
	OnResume    func(context.Context, *FlowEvent)
	OnFinish    func(context.Context, *FlowEvent)
	OnAbort     func(context.Context, *FlowEvent)
	OnCommit    func(context.Context, *CommitEvent)
}
