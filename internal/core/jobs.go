// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by a JobDispatcher that cannot accept more work.
var ErrQueueFull = errors.New("job queue is full")

// JobDispatcher defines the contract for a system that can accept and queue
// background jobs for asynchronous processing. This interface decouples the
// webhook handler from the job execution mechanism.
//
//go:generate mockgen -destination=../mocks/mock_dispatcher.go -package=mocks . JobDispatcher
type JobDispatcher interface {
	// Dispatch accepts a ReviewEvent and queues it for processing.
	// It returns ErrQueueFull when the queue cannot take the event,
	// providing a mechanism for backpressure.
	Dispatch(ctx context.Context, event *ReviewEvent) error
}

// Job represents a single, executable unit of work triggered by a ReviewEvent.
type Job interface {
	// Run executes the job's logic. It returns an error only if the job could
	// not reach a terminal state on its own terms.
	Run(ctx context.Context, event *ReviewEvent) error
}
