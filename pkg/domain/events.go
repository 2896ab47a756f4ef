package domain

import (
	"context"
	"time"
)

// ForkEvent is emitted when a walk reaches a node with several successors.
type ForkEvent struct {
	NodeID   int
	Branches int
	RejoinID *int
}

// UnitEvent is emitted when a talk unit is expanded or deduplicated.
type UnitEvent struct {
	UnitID      int
	TopLevel    bool
	Placeholder bool
}

// RunEvent is emitted when a generation run finishes.
type RunEvent struct {
	RunID    string
	Kind     string
	Sections int
	Missing  int
	Duration time.Duration
	Err      error
}

// Hooks defines observability callbacks for the generation engine.
// Every field is optional.
type Hooks struct {
	OnFork  func(context.Context, *ForkEvent)
	OnCycle func(ctx context.Context, nodeID int)
	OnUnit  func(context.Context, *UnitEvent)
	OnDrop  func(ctx context.Context, reason string, id int)
	OnRun   func(context.Context, *RunEvent)
}

func (h Hooks) Fork(ctx context.Context, e *ForkEvent) {
	if h.OnFork != nil {
		h.OnFork(ctx, e)
	}
}

func (h Hooks) Cycle(ctx context.Context, id int) {
	if h.OnCycle != nil {
		h.OnCycle(ctx, id)
	}
}

func (h Hooks) Unit(ctx context.Context, e *UnitEvent) {
	if h.OnUnit != nil {
		h.OnUnit(ctx, e)
	}
}

func (h Hooks) Drop(ctx context.Context, reason string, id int) {
	if h.OnDrop != nil {
		h.OnDrop(ctx, reason, id)
	}
}

func (h Hooks) Run(ctx context.Context, e *RunEvent) {
	if h.OnRun != nil {
		h.OnRun(ctx, e)
	}
}
