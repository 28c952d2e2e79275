// Package notifier consumes the booking event stream and fans each
// lifecycle change out as a notification to the affected party. Delivery
// is a log line here; a mail or push gateway plugs in behind Sender.
package notifier

import (
	"context"
	"fmt"

	"github.com/sanchez188/serviProf/pkg/events"
	"github.com/sanchez188/serviProf/pkg/logger"
)

// Sender delivers one rendered notification to a recipient.
type Sender interface {
	Send(ctx context.Context, recipientID string, subject string, body string) error
}

// LogSender writes notifications to the structured log. It is the default
// sink until a real delivery channel is wired in.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, recipientID string, subject string, body string) error {
	s.log.Info("Notification sent",
		"recipient_id", recipientID,
		"subject", subject,
		"body", body,
	)
	return nil
}

type Notifier struct {
	sender Sender
	log    *logger.Logger
}

func NewNotifier(sender Sender, log *logger.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		log:    log,
	}
}

// Handle is the consumer callback. Unknown event types are skipped, not
// failed, so schema additions never poison the stream.
func (n *Notifier) Handle(ctx context.Context, msg events.Message) error {
	var event events.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("failed to decode booking event: %w", err)
	}

	eventType := msg.GetEventType()
	n.log.Debug("Processing booking event",
		"event_type", eventType,
		"booking_id", event.BookingID,
		"event_id", msg.GetEventID(),
	)

	switch eventType {
	case events.EventBookingCreated:
		return n.sender.Send(ctx, event.ProfessionalID,
			"New booking request",
			fmt.Sprintf("You have a new booking request for %s %s-%s.", event.Date, event.StartTime, event.EndTime))

	case events.EventBookingAccepted:
		return n.sender.Send(ctx, event.ClientID,
			"Booking accepted",
			fmt.Sprintf("Your booking for %s %s-%s was accepted.", event.Date, event.StartTime, event.EndTime))

	case events.EventBookingRejected:
		body := fmt.Sprintf("Your booking for %s %s-%s was declined.", event.Date, event.StartTime, event.EndTime)
		if event.Reason != "" {
			body += " Reason: " + event.Reason
		}
		return n.sender.Send(ctx, event.ClientID, "Booking declined", body)

	case events.EventBookingStarted:
		return n.sender.Send(ctx, event.ClientID,
			"Service started",
			fmt.Sprintf("Your booking for %s %s-%s is now in progress.", event.Date, event.StartTime, event.EndTime))

	case events.EventBookingCompleted:
		return n.sender.Send(ctx, event.ClientID,
			"Service completed",
			fmt.Sprintf("Your booking for %s %s-%s is complete. You can now leave a review.", event.Date, event.StartTime, event.EndTime))

	case events.EventBookingCancelled:
		// both parties hear about cancellations
		body := fmt.Sprintf("The booking for %s %s-%s was cancelled.", event.Date, event.StartTime, event.EndTime)
		if err := n.sender.Send(ctx, event.ClientID, "Booking cancelled", body); err != nil {
			return err
		}
		return n.sender.Send(ctx, event.ProfessionalID, "Booking cancelled", body)

	case events.EventBookingReviewed:
		return n.sender.Send(ctx, event.ProfessionalID,
			"New review",
			fmt.Sprintf("You received a %d-star review.", event.Rating))

	default:
		n.log.Warn("Skipping unknown event type", "event_type", eventType)
		return nil
	}
}
