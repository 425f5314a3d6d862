package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/Domenick1991/airreserve/internal/repository"
)

type BookingRepository struct {
	db *DB
}

func NewBookingRepository(db *DB) repository.BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Exists(ctx context.Context, passengerID string) (bool, error) {
	var ok bool
	err := r.db.do(ctx, func() error {
		_, ok = r.db.bookings[passengerID]
		return nil
	})
	return ok, err
}

func (r *BookingRepository) Get(ctx context.Context, passengerID string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.do(ctx, func() error {
		var ok bool
		if b, ok = r.db.bookings[passengerID]; !ok {
			return fmt.Errorf("passenger %s: %w", passengerID, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetForUpdate(ctx context.Context, passengerID string) (*domain.Booking, error) {
	return r.Get(ctx, passengerID)
}

func (r *BookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	bookings := make([]domain.Booking, 0)
	err := r.db.do(ctx, func() error {
		for _, b := range r.db.bookings {
			bookings = append(bookings, b)
		}
		return nil
	})
	sortByPassenger(bookings)
	return bookings, err
}

func (r *BookingRepository) TakenSeats(ctx context.Context, flightNumber string) ([]int, error) {
	seats := make([]int, 0)
	err := r.db.do(ctx, func() error {
		for _, b := range r.db.bookings {
			if b.FlightNumber == flightNumber {
				seats = append(seats, b.SeatNumber)
			}
		}
		return nil
	})
	slices.Sort(seats)
	return seats, err
}

func (r *BookingRepository) IsSeatTaken(ctx context.Context, flightNumber string, seat int, excludePassengerID string) (bool, error) {
	var taken bool
	err := r.db.do(ctx, func() error {
		taken = r.seatHolder(flightNumber, seat, excludePassengerID) != ""
		return nil
	})
	return taken, err
}

func (r *BookingRepository) CountByFlight(ctx context.Context, flightNumber string) (int, error) {
	var n int
	err := r.db.do(ctx, func() error {
		for _, b := range r.db.bookings {
			if b.FlightNumber == flightNumber {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.db.do(ctx, func() error {
		if _, ok := r.db.bookings[booking.PassengerID]; ok {
			return fmt.Errorf("passenger %s: %w", booking.PassengerID, domain.ErrConflict)
		}
		if err := r.checkWrite(booking); err != nil {
			return err
		}
		r.db.bookings[booking.PassengerID] = *booking
		return nil
	})
}

func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	return r.db.do(ctx, func() error {
		if _, ok := r.db.bookings[booking.PassengerID]; !ok {
			return fmt.Errorf("passenger %s: %w", booking.PassengerID, domain.ErrNotFound)
		}
		if err := r.checkWrite(booking); err != nil {
			return err
		}
		r.db.bookings[booking.PassengerID] = *booking
		return nil
	})
}

func (r *BookingRepository) Delete(ctx context.Context, passengerID string) error {
	return r.db.do(ctx, func() error {
		if _, ok := r.db.bookings[passengerID]; !ok {
			return fmt.Errorf("passenger %s: %w", passengerID, domain.ErrNotFound)
		}
		delete(r.db.bookings, passengerID)
		return nil
	})
}

func (r *BookingRepository) DeleteByFlight(ctx context.Context, flightNumber string) ([]domain.Booking, error) {
	removed := make([]domain.Booking, 0)
	err := r.db.do(ctx, func() error {
		for id, b := range r.db.bookings {
			if b.FlightNumber == flightNumber {
				removed = append(removed, b)
				delete(r.db.bookings, id)
			}
		}
		return nil
	})
	sortByPassenger(removed)
	return removed, err
}

// checkWrite enforces the same rules the SQL schema does: seat range, flight
// reference and seat uniqueness.
func (r *BookingRepository) checkWrite(b *domain.Booking) error {
	if b.SeatNumber < 1 {
		return fmt.Errorf("seat %d: %w", b.SeatNumber, domain.ErrInvalidInput)
	}
	if _, ok := r.db.flights[b.FlightNumber]; !ok {
		return fmt.Errorf("flight %s: %w", b.FlightNumber, domain.ErrNotFound)
	}
	if r.seatHolder(b.FlightNumber, b.SeatNumber, b.PassengerID) != "" {
		return fmt.Errorf("flight %s seat %d: %w", b.FlightNumber, b.SeatNumber, domain.ErrSeatTaken)
	}
	return nil
}

func (r *BookingRepository) seatHolder(flightNumber string, seat int, excludePassengerID string) string {
	for id, b := range r.db.bookings {
		if id != excludePassengerID && b.FlightNumber == flightNumber && b.SeatNumber == seat {
			return id
		}
	}
	return ""
}

func sortByPassenger(bookings []domain.Booking) {
	slices.SortFunc(bookings, func(a, b domain.Booking) int {
		return strings.Compare(a.PassengerID, b.PassengerID)
	})
}

var _ repository.BookingRepository = (*BookingRepository)(nil)
