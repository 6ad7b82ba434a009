// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mutation runs a single asynchronous call with observable status.
//
// A Mutation allows at most one call in flight. Start flips the status to
// Pending synchronously, so a UI that checks IsPending before acting can
// never issue a duplicate. The returned run function does the work and
// always settles the status, even if the call panics.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Status is the lifecycle state of a Mutation.
type Status int

const (
	Idle Status = iota
	Pending
	Succeeded
	Failed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrInFlight is returned by Do when a call is already pending.
	ErrInFlight = errors.New("mutation already in flight")

	// ErrPanicked wraps a panic raised by the mutation function.
	ErrPanicked = errors.New("mutation panicked")
)

// Func performs the mutation.
type Func[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Result is the outcome of one run.
type Result[Resp any] struct {
	Data Resp
	Err  error
}

// OK reports whether the run succeeded.
func (r Result[Resp]) OK() bool {
	return r.Err == nil
}

// Mutation is a single-flight wrapper around a Func.
type Mutation[Req, Resp any] struct {
	fn Func[Req, Resp]

	mu     sync.Mutex
	status Status
	data   Resp
	err    error
}

// New creates an idle mutation.
func New[Req, Resp any](fn Func[Req, Resp]) *Mutation[Req, Resp] {
	return &Mutation[Req, Resp]{fn: fn}
}

// Start moves the mutation to Pending and returns the function that performs
// the call. It returns ok=false, and does nothing, if a call is already
// pending.
func (m *Mutation[Req, Resp]) Start(ctx context.Context, req Req) (run func() Result[Resp], ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == Pending {
		return nil, false
	}
	m.status = Pending
	m.err = nil

	return func() Result[Resp] {
		return m.run(ctx, req)
	}, true
}

// Do runs the mutation synchronously. It returns ErrInFlight if another call
// is pending.
func (m *Mutation[Req, Resp]) Do(ctx context.Context, req Req) (Resp, error) {
	run, ok := m.Start(ctx, req)
	if !ok {
		var zero Resp
		return zero, ErrInFlight
	}
	res := run()
	return res.Data, res.Err
}

func (m *Mutation[Req, Resp]) run(ctx context.Context, req Req) (res Result[Resp]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[Resp]{Err: fmt.Errorf("%w: %v", ErrPanicked, r)}
		}
		m.settle(res)
	}()

	data, err := m.fn(ctx, req)
	return Result[Resp]{Data: data, Err: err}
}

func (m *Mutation[Req, Resp]) settle(res Result[Resp]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = res.Data
	m.err = res.Err
	if res.Err != nil {
		m.status = Failed
	} else {
		m.status = Succeeded
	}
}

// Status returns the current status.
func (m *Mutation[Req, Resp]) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// IsPending reports whether a call is in flight.
func (m *Mutation[Req, Resp]) IsPending() bool {
	return m.Status() == Pending
}

// Err returns the error of the last settled call.
func (m *Mutation[Req, Resp]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Data returns the response of the last settled call.
func (m *Mutation[Req, Resp]) Data() Resp {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// Reset returns a settled mutation to Idle. A pending mutation is left alone.
func (m *Mutation[Req, Resp]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == Pending {
		return
	}
	var zero Resp
	m.status = Idle
	m.data = zero
	m.err = nil
}
