package reservation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/Domenick1991/airreserve/internal/events"
	"github.com/Domenick1991/airreserve/internal/repository"
	"github.com/Domenick1991/airreserve/internal/store"
	"github.com/Domenick1991/airreserve/internal/validate"
	"go.uber.org/zap"
)

type ReservationUseCase interface {
	Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error)
	CancelReservation(ctx context.Context, passengerID string) (*domain.Booking, error)
	ModifyBooking(ctx context.Context, input ModifyBookingInput) (*domain.Booking, error)
	CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	ModifyFlight(ctx context.Context, flightNumber string, input ModifyFlightInput) (*domain.Flight, error)
	DeleteFlightCascade(ctx context.Context, flightNumber string) ([]domain.Booking, error)
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type ReserveInput struct {
	PassengerID  string `json:"passenger_id" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=128"`
	FlightNumber string `json:"flight_number" validate:"required,max=16"`
	SeatNumber   int    `json:"seat_number" validate:"gte=1"`
}

type ModifyBookingInput struct {
	PassengerID  string `json:"-" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=128"`
	FlightNumber string `json:"flight_number" validate:"required,max=16"`
	SeatNumber   int    `json:"seat_number" validate:"gte=1"`
}

type CreateFlightInput struct {
	FlightNumber  string `json:"flight_number" validate:"required,max=16"`
	AirlineName   string `json:"airline_name" validate:"required,max=128"`
	StartingPoint string `json:"starting_point" validate:"required,max=128"`
	Destination   string `json:"destination" validate:"required,max=128"`
	TotalTickets  int    `json:"total_tickets" validate:"gte=0,lte=10000"`
}

// ModifyFlightInput lists the flight fields an operator may change. The available
// ticket count is not among them: it always follows from the total and the bookings.
type ModifyFlightInput struct {
	AirlineName   *string `json:"airline_name" validate:"omitnil,min=1,max=128"`
	StartingPoint *string `json:"starting_point" validate:"omitnil,min=1,max=128"`
	Destination   *string `json:"destination" validate:"omitnil,min=1,max=128"`
	TotalTickets  *int    `json:"total_tickets" validate:"omitnil,gte=0,lte=10000"`
}

type ReservationService struct {
	tx       store.Transactor
	flights  repository.FlightRepository
	bookings repository.BookingRepository
	cache    Cache
	producer Producer
	topic    string
	log      *zap.Logger

	sideEffectTimeout time.Duration
}

type ReservationServiceOption func(*ReservationService)

func WithCache(cache Cache) ReservationServiceOption {
	return func(s *ReservationService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.producer = producer
		s.topic = topic
	}
}

func NewReservationService(
	tx store.Transactor,
	flights repository.FlightRepository,
	bookings repository.BookingRepository,
	log *zap.Logger,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		tx:                tx,
		flights:           flights,
		bookings:          bookings,
		log:               log.With(zap.String("service", "reservation")),
		sideEffectTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *ReservationService) Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		PassengerID:  input.PassengerID,
		Name:         input.Name,
		FlightNumber: input.FlightNumber,
		SeatNumber:   input.SeatNumber,
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		exists, err := s.bookings.Exists(ctx, input.PassengerID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("passenger %s: %w", input.PassengerID, domain.ErrConflict)
		}

		flight, err := s.flights.GetForUpdate(ctx, input.FlightNumber)
		if err != nil {
			return err
		}
		if flight.AvailableTickets <= 0 {
			return fmt.Errorf("flight %s: %w", flight.FlightNumber, domain.ErrExhausted)
		}

		taken, err := s.bookings.IsSeatTaken(ctx, input.FlightNumber, input.SeatNumber, "")
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("flight %s seat %d: %w", input.FlightNumber, input.SeatNumber, domain.ErrSeatTaken)
		}

		if err := s.bookings.Create(ctx, booking); err != nil {
			return err
		}
		_, err = s.flights.AdjustAvailable(ctx, input.FlightNumber, -1)
		return err
	})
	if err != nil {
		s.rejected("reserve", err, zap.String("passenger_id", input.PassengerID), zap.String("flight_number", input.FlightNumber), zap.Int("seat_number", input.SeatNumber))
		return nil, err
	}

	s.log.Info("reservation created",
		zap.String("passenger_id", booking.PassengerID),
		zap.String("flight_number", booking.FlightNumber),
		zap.Int("seat_number", booking.SeatNumber))
	s.afterCommit(ctx, events.ForBooking(events.ReservationCreated, *booking))
	return booking, nil
}

func (s *ReservationService) CancelReservation(ctx context.Context, passengerID string) (*domain.Booking, error) {
	if passengerID == "" {
		return nil, fmt.Errorf("%w: passenger id is required", domain.ErrInvalidInput)
	}

	var cancelled *domain.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		booking, _, err := s.lockBooking(ctx, passengerID, "")
		if err != nil {
			return err
		}
		if err := s.bookings.Delete(ctx, passengerID); err != nil {
			return err
		}
		// the flight row may already be gone; there is no counter left to restore then
		if _, err := s.flights.AdjustAvailable(ctx, booking.FlightNumber, 1); err != nil {
			return err
		}
		cancelled = booking
		return nil
	})
	if err != nil {
		s.rejected("cancel", err, zap.String("passenger_id", passengerID))
		return nil, err
	}

	s.log.Info("reservation cancelled",
		zap.String("passenger_id", cancelled.PassengerID),
		zap.String("flight_number", cancelled.FlightNumber),
		zap.Int("seat_number", cancelled.SeatNumber))
	s.afterCommit(ctx, events.ForBooking(events.ReservationCancelled, *cancelled))
	return cancelled, nil
}

func (s *ReservationService) ModifyBooking(ctx context.Context, input ModifyBookingInput) (*domain.Booking, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var before domain.Booking
	updated := &domain.Booking{
		PassengerID:  input.PassengerID,
		Name:         input.Name,
		FlightNumber: input.FlightNumber,
		SeatNumber:   input.SeatNumber,
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, locked, err := s.lockBooking(ctx, input.PassengerID, input.FlightNumber)
		if err != nil {
			return err
		}
		before = *current

		taken, err := s.bookings.IsSeatTaken(ctx, input.FlightNumber, input.SeatNumber, input.PassengerID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("flight %s seat %d: %w", input.FlightNumber, input.SeatNumber, domain.ErrSeatTaken)
		}

		moving := current.FlightNumber != input.FlightNumber
		if moving && locked[input.FlightNumber].AvailableTickets <= 0 {
			return fmt.Errorf("flight %s: %w", input.FlightNumber, domain.ErrExhausted)
		}

		if err := s.bookings.Update(ctx, updated); err != nil {
			return err
		}
		if !moving {
			return nil
		}
		if _, err := s.flights.AdjustAvailable(ctx, current.FlightNumber, 1); err != nil {
			return err
		}
		_, err = s.flights.AdjustAvailable(ctx, input.FlightNumber, -1)
		return err
	})
	if err != nil {
		s.rejected("modify booking", err, zap.String("passenger_id", input.PassengerID), zap.String("flight_number", input.FlightNumber), zap.Int("seat_number", input.SeatNumber))
		return nil, err
	}

	s.log.Info("booking modified",
		zap.String("passenger_id", updated.PassengerID),
		zap.String("from_flight", before.FlightNumber),
		zap.String("to_flight", updated.FlightNumber),
		zap.Int("seat_number", updated.SeatNumber))
	s.afterCommit(ctx, events.BookingMoved(before, *updated))
	return updated, nil
}

func (s *ReservationService) CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		FlightNumber:  input.FlightNumber,
		AirlineName:   input.AirlineName,
		StartingPoint: input.StartingPoint,
		Destination:   input.Destination,
		TotalTickets:  input.TotalTickets,
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		return s.flights.Create(ctx, flight)
	})
	if err != nil {
		s.rejected("create flight", err, zap.String("flight_number", input.FlightNumber))
		return nil, err
	}

	s.log.Info("flight created", zap.String("flight_number", flight.FlightNumber), zap.Int("total_tickets", flight.TotalTickets))
	s.afterCommit(ctx, events.ForFlight(events.FlightCreated, *flight))
	return flight, nil
}

func (s *ReservationService) ModifyFlight(ctx context.Context, flightNumber string, input ModifyFlightInput) (*domain.Flight, error) {
	if flightNumber == "" {
		return nil, fmt.Errorf("%w: flight number is required", domain.ErrInvalidInput)
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var updated *domain.Flight
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		flight, err := s.flights.GetForUpdate(ctx, flightNumber)
		if err != nil {
			return err
		}
		booked, err := s.bookings.CountByFlight(ctx, flightNumber)
		if err != nil {
			return err
		}

		total := flight.TotalTickets
		if input.TotalTickets != nil {
			total = *input.TotalTickets
		}
		if total < booked {
			return fmt.Errorf("flight %s has %d bookings, total %d: %w", flightNumber, booked, total, domain.ErrCapacityViolation)
		}
		available := total - booked

		updated, err = s.flights.Update(ctx, flightNumber, domain.FlightUpdate{
			AirlineName:      input.AirlineName,
			StartingPoint:    input.StartingPoint,
			Destination:      input.Destination,
			TotalTickets:     &total,
			AvailableTickets: &available,
		})
		return err
	})
	if err != nil {
		s.rejected("modify flight", err, zap.String("flight_number", flightNumber))
		return nil, err
	}

	s.log.Info("flight modified",
		zap.String("flight_number", updated.FlightNumber),
		zap.Int("total_tickets", updated.TotalTickets),
		zap.Int("available_tickets", updated.AvailableTickets))
	s.afterCommit(ctx, events.ForFlight(events.FlightModified, *updated))
	return updated, nil
}

func (s *ReservationService) DeleteFlightCascade(ctx context.Context, flightNumber string) ([]domain.Booking, error) {
	if flightNumber == "" {
		return nil, fmt.Errorf("%w: flight number is required", domain.ErrInvalidInput)
	}

	var removed []domain.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.flights.GetForUpdate(ctx, flightNumber); err != nil {
			return err
		}
		var err error
		if removed, err = s.bookings.DeleteByFlight(ctx, flightNumber); err != nil {
			return err
		}
		return s.flights.Delete(ctx, flightNumber)
	})
	if err != nil {
		s.rejected("delete flight", err, zap.String("flight_number", flightNumber))
		return nil, err
	}

	s.log.Info("flight deleted", zap.String("flight_number", flightNumber), zap.Int("removed_bookings", len(removed)))
	s.afterCommit(ctx, events.FlightRemoved(flightNumber, removed))
	return removed, nil
}

// lockBooking locks the booking of passengerID together with its flight and, when
// given, the flight named by also. Flight rows are locked before the booking row and
// in ascending flight-number order. A missing row for the booking's own flight is
// tolerated; a missing also flight is ErrNotFound.
func (s *ReservationService) lockBooking(ctx context.Context, passengerID, also string) (*domain.Booking, map[string]*domain.Flight, error) {
	booking, err := s.bookings.Get(ctx, passengerID)
	if err != nil {
		return nil, nil, err
	}

	locked := make(map[string]*domain.Flight, 2)
	// a concurrent modify can move the booking between the read above and the locks;
	// once its flight is locked the booking cannot move again
	for range 3 {
		numbers := []string{booking.FlightNumber}
		if also != "" && also != booking.FlightNumber {
			numbers = append(numbers, also)
		}
		slices.Sort(numbers)

		for _, n := range numbers {
			if _, ok := locked[n]; ok {
				continue
			}
			flight, err := s.flights.GetForUpdate(ctx, n)
			if err != nil {
				if n != also && errors.Is(err, domain.ErrNotFound) {
					locked[n] = nil
					continue
				}
				return nil, nil, err
			}
			locked[n] = flight
		}

		current, err := s.bookings.GetForUpdate(ctx, passengerID)
		if err != nil {
			return nil, nil, err
		}
		if current.FlightNumber == booking.FlightNumber {
			return current, locked, nil
		}
		booking = current
	}
	return nil, nil, fmt.Errorf("passenger %s: booking keeps moving: %w", passengerID, domain.ErrConflict)
}

// afterCommit runs the side effects of a committed change. They are best effort:
// a failure is logged and never reaches the caller.
func (s *ReservationService) afterCommit(ctx context.Context, event events.ReservationEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sideEffectTimeout)
	defer cancel()

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.Warn("failed to invalidate flights cache", zap.Error(err))
		}
	}
	if s.producer == nil || s.topic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, event.Key(), event); err != nil {
		s.log.Warn("failed to publish reservation event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}

func (s *ReservationService) rejected(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("kind", string(domain.KindOf(err))), zap.Error(err))
	if errors.Is(err, domain.ErrStore) || domain.KindOf(err) == domain.KindUnknown {
		s.log.Error(op+" failed", fields...)
		return
	}
	s.log.Info(op+" rejected", fields...)
}

var _ ReservationUseCase = (*ReservationService)(nil)
