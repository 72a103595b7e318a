package events

import (
	"context"
	"errors"
	"testing"
)

func TestRecorderKeepsEventsAndError(t *testing.T) {
	boom := errors.New("broker down")
	rec := &Recorder{Err: boom}
	var p Publisher = rec

	err := p.Publish(context.Background(), RentalEvent{Type: RentalCreated, RentalID: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected recorder error, got %v", err)
	}
	if len(rec.Events) != 1 || rec.Events[0].Type != RentalCreated {
		t.Fatalf("event not recorded: %+v", rec.Events)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), RentalEvent{Type: RentalDeleted}); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
}

func TestNewRabbitPublisherFailsOnBadURL(t *testing.T) {
	if _, err := NewRabbitPublisher("not-a-url", "locacar.rentals"); err == nil {
		t.Fatalf("expected dial error")
	}
}
