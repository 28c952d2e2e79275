package notifier

import (
	"context"
	"testing"

	"github.com/sanchez188/serviProf/pkg/events"
	"github.com/sanchez188/serviProf/pkg/logger"
)

type sent struct {
	recipient string
	subject   string
}

type recordingSender struct {
	messages []sent
}

func (s *recordingSender) Send(ctx context.Context, recipientID, subject, body string) error {
	s.messages = append(s.messages, sent{recipient: recipientID, subject: subject})
	return nil
}

func newTestNotifier() (*Notifier, *recordingSender) {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	sender := &recordingSender{}
	return NewNotifier(sender, log), sender
}

func eventMessage(eventType string) events.Message {
	return events.NewBookingMessage(eventType, "test", events.BookingEvent{
		BookingID:      "booking-1",
		ClientID:       "client-1",
		ProfessionalID: "pro-1",
		Date:           "2026-09-14",
		StartTime:      "10:00",
		EndTime:        "12:00",
		Rating:         5,
	})
}

func TestHandle_RoutesToRecipient(t *testing.T) {
	tests := []struct {
		eventType      string
		wantRecipients []string
	}{
		{events.EventBookingCreated, []string{"pro-1"}},
		{events.EventBookingAccepted, []string{"client-1"}},
		{events.EventBookingRejected, []string{"client-1"}},
		{events.EventBookingStarted, []string{"client-1"}},
		{events.EventBookingCompleted, []string{"client-1"}},
		{events.EventBookingCancelled, []string{"client-1", "pro-1"}},
		{events.EventBookingReviewed, []string{"pro-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			n, sender := newTestNotifier()

			if err := n.Handle(context.Background(), eventMessage(tt.eventType)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sender.messages) != len(tt.wantRecipients) {
				t.Fatalf("expected %d notifications, got %d", len(tt.wantRecipients), len(sender.messages))
			}
			for i, want := range tt.wantRecipients {
				if sender.messages[i].recipient != want {
					t.Errorf("notification %d: expected recipient %s, got %s", i, want, sender.messages[i].recipient)
				}
			}
		})
	}
}

func TestHandle_UnknownEventTypeSkipped(t *testing.T) {
	n, sender := newTestNotifier()

	if err := n.Handle(context.Background(), eventMessage("booking.relocated")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Errorf("expected no notifications for unknown event, got %d", len(sender.messages))
	}
}
