package inventory

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/Domenick1991/airreserve/internal/repository"
	"github.com/Domenick1991/airreserve/internal/store"
	"go.uber.org/zap"
)

type InventoryUseCase interface {
	ListFlights(ctx context.Context) ([]domain.Flight, error)
	GetFlight(ctx context.Context, flightNumber string) (*domain.Flight, error)
	FlightExists(ctx context.Context, flightNumber string) (bool, error)
	ListPassengers(ctx context.Context) ([]domain.Booking, error)
	GetPassenger(ctx context.Context, passengerID string) (*domain.Booking, error)
	PassengerExists(ctx context.Context, passengerID string) (bool, error)
	TakenSeats(ctx context.Context, flightNumber string) ([]int, error)
	SeatMap(ctx context.Context, flightNumber string) (*domain.SeatMap, error)
}

// FlightCache holds the flight listing between changes. A nil slice from GetFlights
// means nothing is cached.
type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	FlightsGeneration(ctx context.Context) (int64, error)
	SetFlights(ctx context.Context, generation int64, flights []domain.Flight) (bool, error)
}

type InventoryService struct {
	tx       store.Transactor
	flights  repository.FlightRepository
	bookings repository.BookingRepository
	cache    FlightCache
	log      *zap.Logger
}

func NewInventoryService(
	tx store.Transactor,
	flights repository.FlightRepository,
	bookings repository.BookingRepository,
	cache FlightCache,
	log *zap.Logger,
) *InventoryService {
	return &InventoryService{
		tx:       tx,
		flights:  flights,
		bookings: bookings,
		cache:    cache,
		log:      log.With(zap.String("service", "inventory")),
	}
}

// ListFlights serves the listing from the cache when it holds one. On a miss the
// cache generation is read before the database snapshot, so a change committed while
// listing keeps the result out of the cache.
func (s *InventoryService) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	if s.cache == nil {
		return s.listFlights(ctx)
	}

	cached, err := s.cache.GetFlights(ctx)
	if err != nil {
		s.log.Warn("failed to read flights cache", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	generation, err := s.cache.FlightsGeneration(ctx)
	if err != nil {
		s.log.Warn("failed to read flights cache generation", zap.Error(err))
		return s.listFlights(ctx)
	}

	flights, err := s.listFlights(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := s.cache.SetFlights(ctx, generation, flights)
	switch {
	case err != nil:
		s.log.Warn("failed to fill flights cache", zap.Error(err))
	case !stored:
		s.log.Debug("flights changed while listing, cache left empty", zap.Int64("generation", generation))
	}
	return flights, nil
}

func (s *InventoryService) listFlights(ctx context.Context) ([]domain.Flight, error) {
	var flights []domain.Flight
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		flights, err = s.flights.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return flights, nil
}

func (s *InventoryService) GetFlight(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	var flight *domain.Flight
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		flight, err = s.flights.Get(ctx, flightNumber)
		return err
	})
	return flight, err
}

func (s *InventoryService) FlightExists(ctx context.Context, flightNumber string) (bool, error) {
	var exists bool
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		exists, err = s.flights.Exists(ctx, flightNumber)
		return err
	})
	return exists, err
}

func (s *InventoryService) ListPassengers(ctx context.Context) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		bookings, err = s.bookings.List(ctx)
		return err
	})
	return bookings, err
}

func (s *InventoryService) GetPassenger(ctx context.Context, passengerID string) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.Get(ctx, passengerID)
		return err
	})
	return booking, err
}

func (s *InventoryService) PassengerExists(ctx context.Context, passengerID string) (bool, error) {
	var exists bool
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		exists, err = s.bookings.Exists(ctx, passengerID)
		return err
	})
	return exists, err
}

func (s *InventoryService) TakenSeats(ctx context.Context, flightNumber string) ([]int, error) {
	var seats []int
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		seats, err = s.bookings.TakenSeats(ctx, flightNumber)
		return err
	})
	return seats, err
}

// SeatMap reads the flight and its taken seats from one snapshot. An unknown flight
// is ErrNotFound.
func (s *InventoryService) SeatMap(ctx context.Context, flightNumber string) (*domain.SeatMap, error) {
	var seatMap domain.SeatMap
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		flight, err := s.flights.Get(ctx, flightNumber)
		if err != nil {
			return err
		}
		taken, err := s.bookings.TakenSeats(ctx, flightNumber)
		if err != nil {
			return fmt.Errorf("seat map of %s: %w", flightNumber, err)
		}
		seatMap = domain.NewSeatMap(*flight, taken)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &seatMap, nil
}

var _ InventoryUseCase = (*InventoryService)(nil)
