package sync

import (
	"context"
	gosync "sync"
	"time"
)

// Op names an independent backend operation.
type Op string

const (
	OpEmails   Op = "emails"
	OpAnalysis Op = "analysis"
)

// State represents the current state of an operation.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateError
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Status holds the state of a single operation.
type Status struct {
	Op          Op
	State       State
	LastSuccess time.Time
	Error       error
}

// Token identifies one request of an operation. Results are accepted only
// for the latest token.
type Token uint64

type inflight struct {
	token  Token
	cancel context.CancelFunc
}

// Tracker guards the in-flight requests of the view. Starting a request
// cancels the previous one of the same operation, and closing the tracker
// cancels everything so late results are discarded.
type Tracker struct {
	mu       gosync.Mutex
	parent   context.Context
	next     Token
	inflight map[Op]inflight
	statuses map[Op]*Status
	closed   bool
}

// New creates a tracker whose requests derive from parent.
func New(parent context.Context) *Tracker {
	if parent == nil {
		parent = context.Background()
	}
	return &Tracker{
		parent:   parent,
		inflight: make(map[Op]inflight),
		statuses: make(map[Op]*Status),
	}
}

// Begin starts a request for op, cancelling any request of op still in
// flight. The returned context is already cancelled if the tracker is
// closed.
func (t *Tracker) Begin(op Op) (context.Context, Token) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.inflight[op]; ok {
		prev.cancel()
		delete(t.inflight, op)
	}

	t.next++
	token := t.next

	ctx, cancel := context.WithCancel(t.parent)
	if t.closed {
		cancel()
		return ctx, token
	}

	t.inflight[op] = inflight{token: token, cancel: cancel}
	t.status(op).State = StateRunning
	return ctx, token
}

// Finish records the outcome of the request identified by token. It
// reports false when the result is stale (a newer request started, or the
// tracker was closed) and must be dropped.
func (t *Tracker) Finish(op Op, token Token, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.inflight[op]
	if t.closed || !ok || cur.token != token {
		return false
	}

	cur.cancel()
	delete(t.inflight, op)

	st := t.status(op)
	st.Error = err
	if err != nil {
		st.State = StateError
	} else {
		st.State = StateIdle
		st.LastSuccess = time.Now()
	}
	return true
}

// Running reports whether a request of op is in flight.
func (t *Tracker) Running(op Op) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inflight[op]
	return ok
}

// Status returns a copy of the status of op.
func (t *Tracker) Status(op Op) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.status(op)
}

// Close cancels every in-flight request. Any later Finish returns false.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for op, in := range t.inflight {
		in.cancel()
		delete(t.inflight, op)
	}
}

// Closed reports whether Close has been called.
func (t *Tracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// status must be called with mu held.
func (t *Tracker) status(op Op) *Status {
	st, ok := t.statuses[op]
	if !ok {
		st = &Status{Op: op, State: StateIdle}
		t.statuses[op] = st
	}
	return st
}
