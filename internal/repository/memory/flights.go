package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/Domenick1991/airreserve/internal/repository"
)

type FlightRepository struct {
	db *DB
}

func NewFlightRepository(db *DB) repository.FlightRepository {
	return &FlightRepository{db: db}
}

func (r *FlightRepository) Exists(ctx context.Context, flightNumber string) (bool, error) {
	var ok bool
	err := r.db.do(ctx, func() error {
		_, ok = r.db.flights[flightNumber]
		return nil
	})
	return ok, err
}

func (r *FlightRepository) Get(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	var f domain.Flight
	err := r.db.do(ctx, func() error {
		var ok bool
		if f, ok = r.db.flights[flightNumber]; !ok {
			return fmt.Errorf("flight %s: %w", flightNumber, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetForUpdate is Get: the transaction lock already excludes other writers.
func (r *FlightRepository) GetForUpdate(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	return r.Get(ctx, flightNumber)
}

func (r *FlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	err := r.db.do(ctx, func() error {
		for _, f := range r.db.flights {
			flights = append(flights, f)
		}
		return nil
	})
	slices.SortFunc(flights, func(a, b domain.Flight) int {
		return strings.Compare(a.FlightNumber, b.FlightNumber)
	})
	return flights, err
}

func (r *FlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return r.db.do(ctx, func() error {
		if _, ok := r.db.flights[flight.FlightNumber]; ok {
			return fmt.Errorf("flight %s: %w", flight.FlightNumber, domain.ErrConflict)
		}
		if flight.TotalTickets < 0 {
			return fmt.Errorf("flight %s: %w: negative total tickets", flight.FlightNumber, domain.ErrInvalidInput)
		}
		flight.AvailableTickets = flight.TotalTickets
		r.db.flights[flight.FlightNumber] = *flight
		return nil
	})
}

func (r *FlightRepository) Update(ctx context.Context, flightNumber string, upd domain.FlightUpdate) (*domain.Flight, error) {
	var updated domain.Flight
	err := r.db.do(ctx, func() error {
		f, ok := r.db.flights[flightNumber]
		if !ok {
			return fmt.Errorf("flight %s: %w", flightNumber, domain.ErrNotFound)
		}
		updated = upd.Apply(f)
		if !counterInRange(updated) {
			return fmt.Errorf("flight %s: %w", flightNumber, domain.ErrCapacityViolation)
		}
		r.db.flights[flightNumber] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *FlightRepository) AdjustAvailable(ctx context.Context, flightNumber string, delta int) (bool, error) {
	var found bool
	err := r.db.do(ctx, func() error {
		f, ok := r.db.flights[flightNumber]
		if !ok {
			return nil
		}
		found = true
		f.AvailableTickets += delta
		if !counterInRange(f) {
			if delta < 0 {
				return fmt.Errorf("flight %s: %w", flightNumber, domain.ErrExhausted)
			}
			return fmt.Errorf("flight %s: %w", flightNumber, domain.ErrCapacityViolation)
		}
		r.db.flights[flightNumber] = f
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *FlightRepository) Delete(ctx context.Context, flightNumber string) error {
	return r.db.do(ctx, func() error {
		if _, ok := r.db.flights[flightNumber]; !ok {
			return fmt.Errorf("flight %s: %w", flightNumber, domain.ErrNotFound)
		}
		for _, b := range r.db.bookings {
			if b.FlightNumber == flightNumber {
				return fmt.Errorf("flight %s still has bookings: %w", flightNumber, domain.ErrConflict)
			}
		}
		delete(r.db.flights, flightNumber)
		return nil
	})
}

func counterInRange(f domain.Flight) bool {
	return f.TotalTickets >= 0 && f.AvailableTickets >= 0 && f.AvailableTickets <= f.TotalTickets
}

var _ repository.FlightRepository = (*FlightRepository)(nil)
