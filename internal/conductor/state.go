// Package conductor orchestrates a brand analysis run: fan out the
// source connectors, aggregate, fingerprint, fan out the agents, and
// synthesize the unified report.
package conductor

import (
	"sync"

	"github.com/google/uuid"

	"github.com/BAWSA3/brandos/internal/types"
)

// State is one stage of the run state machine.
type State string

// The run states, in pipeline order. Failed is terminal and reachable
// from Aggregating (insufficient signal) or an internal fault.
const (
	StateIdle            State = "idle"
	StateFetchingSources State = "fetching_sources"
	StateAggregating     State = "aggregating"
	StateFingerprinting  State = "fingerprinting"
	StateRunningAgents   State = "running_agents"
	StateSynthesizing    State = "synthesizing"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// EventType tags a streamed run event.
type EventType string

// Event types emitted over a run subscription.
const (
	EventState       EventType = "state"
	EventFingerprint EventType = "fingerprint"
	EventAgent       EventType = "agent"
	EventComplete    EventType = "complete"
	EventFailed      EventType = "failed"
)

// Event is one incremental update from an in-flight run, consumed by
// the chat/SSE surfaces.
type Event struct {
	Type        EventType            `json:"type"`
	State       State                `json:"state,omitempty"`
	Fingerprint *types.Fingerprint   `json:"fingerprint,omitempty"`
	Agent       *types.AgentReport   `json:"agent,omitempty"`
	Report      *types.UnifiedReport `json:"report,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Run tracks one orchestration invocation: current stage, partial agent
// results, and subscribers. It is created at run start and discarded
// when the conductor forgets the handle; it is never persisted.
type Run struct {
	ID     uuid.UUID
	Handle types.Handle

	mu      sync.RWMutex
	state   State
	partial map[types.AgentKind]types.AgentReport
	subs    map[int]chan Event
	nextSub int
	report  *types.UnifiedReport
	err     error
	done    chan struct{}
}

func newRun(handle types.Handle) *Run {
	return &Run{
		ID:      uuid.New(),
		Handle:  handle,
		state:   StateIdle,
		partial: make(map[types.AgentKind]types.AgentReport),
		subs:    make(map[int]chan Event),
		done:    make(chan struct{}),
	}
}

// State returns the run's current stage.
func (r *Run) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Report returns the finished report and error, valid once Done() is
// closed.
func (r *Run) Report() (*types.UnifiedReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.report, r.err
}

// Done is closed when the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Subscribe returns a channel of run events and a cancel function.
// Agent reports that completed before the subscription are replayed
// first, so late subscribers see every agent outcome. Delivery is
// best-effort: a subscriber that stops draining misses events rather
// than stalling the run.
func (r *Run) Subscribe() (<-chan Event, func()) {
	r.mu.Lock()
	select {
	case <-r.done:
		// Terminal already; hand back a closed channel so the
		// subscriber's drain loop exits immediately.
		r.mu.Unlock()
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	default:
	}
	id := r.nextSub
	r.nextSub++
	ch := make(chan Event, 16)
	for _, kind := range types.AllAgents() {
		if report, ok := r.partial[kind]; ok {
			ch <- Event{Type: EventAgent, Agent: &report}
		}
	}
	r.subs[id] = ch
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if existing, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(existing)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Run) setState(state State) {
	r.mu.Lock()
	r.state = state
	r.emitLocked(Event{Type: EventState, State: state})
	r.mu.Unlock()
}

func (r *Run) recordAgent(report types.AgentReport) {
	r.mu.Lock()
	r.partial[report.Kind] = report
	r.emitLocked(Event{Type: EventAgent, Agent: &report})
	r.mu.Unlock()
}

func (r *Run) finish(report *types.UnifiedReport, err error) {
	r.mu.Lock()
	r.report = report
	r.err = err
	if err != nil {
		r.state = StateFailed
		r.emitLocked(Event{Type: EventFailed, State: StateFailed, Error: err.Error()})
	} else {
		r.state = StateDone
		r.emitLocked(Event{Type: EventComplete, State: StateDone, Report: report})
	}
	close(r.done)
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	r.mu.Unlock()
}

func (r *Run) emit(event Event) {
	r.mu.Lock()
	r.emitLocked(event)
	r.mu.Unlock()
}

// emitLocked fans an event out to subscribers. Caller holds mu, so
// subscription replay, state updates, and delivery are atomic; sends
// never block because subscriber channels are buffered and drop-on-full.
func (r *Run) emitLocked(event Event) {
	for _, ch := range r.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
