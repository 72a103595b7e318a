// Package events announces rental lifecycle changes to other systems.
package events

import (
	"context"
	"time"
)

const (
	RentalCreated   = "rental.created"
	RentalFinished  = "rental.finished"
	RentalCancelled = "rental.cancelled"
	RentalDeleted   = "rental.deleted"
)

// RentalEvent is the JSON body of every rental message.
type RentalEvent struct {
	Type       string    `json:"type"`
	RentalID   int64     `json:"rental_id"`
	CustomerID int64     `json:"customer_id"`
	VehicleID  string    `json:"vehicle_id"`
	Status     string    `json:"status"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev RentalEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RentalEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// Recorder keeps events in memory; handy for tests.
type Recorder struct {
	Events []RentalEvent
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ev RentalEvent) error {
	r.Events = append(r.Events, ev)
	return r.Err
}

func (r *Recorder) Close() error { return nil }
