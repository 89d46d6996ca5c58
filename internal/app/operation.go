package app

import (
	"time"

	"paiid/internal/gallery"
)

// Operation is one CLI invocation. Its ID tags every log line and journal
// event the invocation produces.
type Operation struct {
	ID         string
	Name       string
	Parameters string
	StartedAt  time.Time
	Status     string // "success" or "error"
}

// NewOperation creates an operation that has not failed yet.
func NewOperation(name, parameters string, clock gallery.Clock, idgen gallery.IDGenerator) *Operation {
	return &Operation{
		ID:         idgen.New(),
		Name:       name,
		Parameters: parameters,
		StartedAt:  clock.Now(),
		Status:     "success",
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = "error"
}

// Failed returns true if Fail was called.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
