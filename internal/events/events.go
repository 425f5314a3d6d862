// Package events defines the reservation events published after a committed change
// and the interfaces brokers implement to carry them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/google/uuid"
)

type Type string

const (
	FlightCreated        Type = "flight_created"
	FlightModified       Type = "flight_modified"
	FlightDeleted        Type = "flight_deleted"
	ReservationCreated   Type = "reservation_created"
	ReservationCancelled Type = "reservation_cancelled"
	BookingModified      Type = "booking_modified"
)

type ReservationEvent struct {
	ID                   string           `json:"id"`
	Type                 Type             `json:"type"`
	PassengerID          string           `json:"passenger_id,omitempty"`
	Name                 string           `json:"name,omitempty"`
	FlightNumber         string           `json:"flight_number"`
	SeatNumber           int              `json:"seat_number,omitempty"`
	PreviousFlightNumber string           `json:"previous_flight_number,omitempty"`
	PreviousSeatNumber   int              `json:"previous_seat_number,omitempty"`
	RemovedBookings      []domain.Booking `json:"removed_bookings,omitempty"`
	OccurredAt           time.Time        `json:"occurred_at"`
}

// Publisher sends a payload to a topic; brokers marshal the payload as JSON.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Handler processes one decoded event on the consuming side.
type Handler func(ctx context.Context, event ReservationEvent) error

func newEvent(t Type, flightNumber string) ReservationEvent {
	return ReservationEvent{
		ID:           uuid.NewString(),
		Type:         t,
		FlightNumber: flightNumber,
		OccurredAt:   time.Now().UTC(),
	}
}

func ForFlight(t Type, f domain.Flight) ReservationEvent {
	return newEvent(t, f.FlightNumber)
}

func ForBooking(t Type, b domain.Booking) ReservationEvent {
	e := newEvent(t, b.FlightNumber)
	e.PassengerID = b.PassengerID
	e.Name = b.Name
	e.SeatNumber = b.SeatNumber
	return e
}

func FlightRemoved(flightNumber string, removed []domain.Booking) ReservationEvent {
	e := newEvent(FlightDeleted, flightNumber)
	e.RemovedBookings = removed
	return e
}

func BookingMoved(before, after domain.Booking) ReservationEvent {
	e := ForBooking(BookingModified, after)
	e.PreviousFlightNumber = before.FlightNumber
	e.PreviousSeatNumber = before.SeatNumber
	return e
}

// Key orders events per passenger, or per flight for flight-level events.
func (e ReservationEvent) Key() string {
	if e.PassengerID != "" {
		return e.PassengerID
	}
	return e.FlightNumber
}

func Decode(data []byte) (ReservationEvent, error) {
	var e ReservationEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ReservationEvent{}, fmt.Errorf("decode reservation event: %w", err)
	}
	return e, nil
}
