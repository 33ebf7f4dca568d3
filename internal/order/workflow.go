package order

import (
	"fmt"
	"slices"
)

// Workflow is the legal transition graph over the configured statuses.
// It is built once at start-up and only read afterwards.
type Workflow struct {
	initial  Status
	statuses []Status
	edges    map[Status][]Status
}

// DefaultEdges is the transition graph used when no configuration overrides it.
func DefaultEdges() map[Status][]Status {
	return map[Status][]Status{
		StatusPending:  {StatusAccepted, StatusCancelled},
		StatusAccepted: {StatusCompleted, StatusCancelled},
	}
}

// DefaultStatuses lists the built-in statuses, initial status first.
func DefaultStatuses() []Status {
	return []Status{StatusPending, StatusAccepted, StatusCompleted, StatusCancelled}
}

// NewWorkflow validates and builds a Workflow. The first status is the one new
// orders start in. Every edge endpoint must be a declared status.
func NewWorkflow(statuses []Status, edges map[Status][]Status) (*Workflow, error) {
	if len(statuses) == 0 {
		return nil, fmt.Errorf("workflow needs at least one status")
	}

	seen := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		if s == "" {
			return nil, fmt.Errorf("workflow contains an empty status")
		}
		if seen[s] {
			return nil, fmt.Errorf("duplicate status %q", s)
		}
		seen[s] = true
	}

	copied := make(map[Status][]Status, len(edges))
	for from, targets := range edges {
		if !seen[from] {
			return nil, fmt.Errorf("transition from unknown status %q", from)
		}
		for _, to := range targets {
			if !seen[to] {
				return nil, fmt.Errorf("transition %q -> %q targets unknown status", from, to)
			}
			if to == from {
				return nil, fmt.Errorf("self transition on %q is not allowed", from)
			}
		}
		copied[from] = slices.Clone(targets)
	}

	return &Workflow{
		initial:  statuses[0],
		statuses: slices.Clone(statuses),
		edges:    copied,
	}, nil
}

// Initial returns the status new orders are created in.
func (w *Workflow) Initial() Status { return w.initial }

// Statuses returns a copy of the declared statuses.
func (w *Workflow) Statuses() []Status { return slices.Clone(w.statuses) }

// Known reports whether s is a declared status.
func (w *Workflow) Known(s Status) bool {
	return slices.Contains(w.statuses, s)
}

// Allowed reports whether from -> to is a legal edge.
func (w *Workflow) Allowed(from, to Status) bool {
	return slices.Contains(w.edges[from], to)
}

// Next returns the statuses reachable from s in one step.
func (w *Workflow) Next(s Status) []Status {
	return slices.Clone(w.edges[s])
}
