// Package notify turns reservation events into passenger-facing notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airreserve/internal/events"
	"go.uber.org/zap"
)

// Notifier logs one notification line per event. Delivery over email or SMS would
// plug in here.
type Notifier struct {
	log *zap.Logger
}

func NewNotifier(log *zap.Logger) *Notifier {
	return &Notifier{log: log.With(zap.String("component", "notifier"))}
}

func (n *Notifier) Handle(ctx context.Context, event events.ReservationEvent) error {
	if event.Type == events.FlightDeleted {
		for _, b := range event.RemovedBookings {
			n.log.Info(Message(events.ForBooking(events.ReservationCancelled, b)),
				zap.String("event_id", event.ID),
				zap.String("passenger_id", b.PassengerID))
		}
		return nil
	}
	n.log.Info(Message(event),
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("passenger_id", event.PassengerID))
	return nil
}

func Message(event events.ReservationEvent) string {
	switch event.Type {
	case events.ReservationCreated:
		return fmt.Sprintf("%s, your seat %d on flight %s is confirmed", event.Name, event.SeatNumber, event.FlightNumber)
	case events.ReservationCancelled:
		return fmt.Sprintf("%s, your seat %d on flight %s has been cancelled", nameOr(event), event.SeatNumber, event.FlightNumber)
	case events.BookingModified:
		return fmt.Sprintf("%s, your booking moved from flight %s seat %d to flight %s seat %d",
			event.Name, event.PreviousFlightNumber, event.PreviousSeatNumber, event.FlightNumber, event.SeatNumber)
	case events.FlightCreated:
		return fmt.Sprintf("flight %s is open for reservations", event.FlightNumber)
	case events.FlightModified:
		return fmt.Sprintf("flight %s details have changed", event.FlightNumber)
	case events.FlightDeleted:
		return fmt.Sprintf("flight %s has been withdrawn", event.FlightNumber)
	default:
		return fmt.Sprintf("event %s for flight %s", event.Type, event.FlightNumber)
	}
}

func nameOr(event events.ReservationEvent) string {
	if event.Name != "" {
		return event.Name
	}
	return "passenger " + event.PassengerID
}
