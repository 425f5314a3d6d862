package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/Domenick1991/airreserve/internal/store"
)

type BookingRepository interface {
	Exists(ctx context.Context, passengerID string) (bool, error)
	Get(ctx context.Context, passengerID string) (*domain.Booking, error)
	GetForUpdate(ctx context.Context, passengerID string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	TakenSeats(ctx context.Context, flightNumber string) ([]int, error)
	IsSeatTaken(ctx context.Context, flightNumber string, seat int, excludePassengerID string) (bool, error)
	CountByFlight(ctx context.Context, flightNumber string) (int, error)
	Create(ctx context.Context, booking *domain.Booking) error
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, passengerID string) error
	DeleteByFlight(ctx context.Context, flightNumber string) ([]domain.Booking, error)
}

// constraint names from the init migration
const (
	bookingsPKey       = "bookings_pkey"
	bookingsSeatKey    = "bookings_flight_seat_key"
	bookingsFlightFKey = "bookings_flight_number_fkey"
)

const bookingColumns = `passenger_id, name, flight_number, seat_number`

type PGBookingRepository struct {
	db store.Querier
}

func NewBookingRepository(db store.Querier) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Exists(ctx context.Context, passengerID string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE passenger_id = $1)`, passengerID).Scan(&exists); err != nil {
		return false, storeErr("passenger exists", err)
	}
	return exists, nil
}

func (r *PGBookingRepository) Get(ctx context.Context, passengerID string) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE passenger_id = $1`, passengerID)
}

func (r *PGBookingRepository) GetForUpdate(ctx context.Context, passengerID string) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE passenger_id = $1 FOR UPDATE`, passengerID)
}

func (r *PGBookingRepository) get(ctx context.Context, query, passengerID string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, query, passengerID))
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return nil, fmt.Errorf("passenger %s: %w", passengerID, domain.ErrNotFound)
		}
		return nil, storeErr("get booking", err)
	}
	return b, nil
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	return r.query(ctx, "list bookings", `SELECT `+bookingColumns+` FROM bookings ORDER BY passenger_id`)
}

func (r *PGBookingRepository) TakenSeats(ctx context.Context, flightNumber string) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT seat_number FROM bookings WHERE flight_number = $1 ORDER BY seat_number`, flightNumber)
	if err != nil {
		return nil, storeErr("taken seats", err)
	}
	defer rows.Close()

	seats := make([]int, 0)
	for rows.Next() {
		var seat int
		if err := rows.Scan(&seat); err != nil {
			return nil, storeErr("taken seats", err)
		}
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("taken seats", err)
	}
	return seats, nil
}

// IsSeatTaken reports whether a passenger other than excludePassengerID holds the seat.
// An empty excludePassengerID checks against every passenger.
func (r *PGBookingRepository) IsSeatTaken(ctx context.Context, flightNumber string, seat int, excludePassengerID string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE flight_number = $1 AND seat_number = $2 AND passenger_id <> $3)`,
		flightNumber, seat, excludePassengerID).Scan(&taken)
	if err != nil {
		return false, storeErr("seat taken", err)
	}
	return taken, nil
}

func (r *PGBookingRepository) CountByFlight(ctx context.Context, flightNumber string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE flight_number = $1`, flightNumber).Scan(&n); err != nil {
		return 0, storeErr("count bookings", err)
	}
	return n, nil
}

// Create inserts the booking. Flight counters are left to the caller.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	_, err := r.db.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`) VALUES ($1, $2, $3, $4)`,
		booking.PassengerID, booking.Name, booking.FlightNumber, booking.SeatNumber)
	if err != nil {
		return mapBookingWriteErr("create booking", booking, err)
	}
	return nil
}

func (r *PGBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	n, err := r.db.Exec(ctx, `UPDATE bookings SET name = $2, flight_number = $3, seat_number = $4 WHERE passenger_id = $1`,
		booking.PassengerID, booking.Name, booking.FlightNumber, booking.SeatNumber)
	if err != nil {
		return mapBookingWriteErr("update booking", booking, err)
	}
	if n == 0 {
		return fmt.Errorf("passenger %s: %w", booking.PassengerID, domain.ErrNotFound)
	}
	return nil
}

func (r *PGBookingRepository) Delete(ctx context.Context, passengerID string) error {
	n, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE passenger_id = $1`, passengerID)
	if err != nil {
		return storeErr("delete booking", err)
	}
	if n == 0 {
		return fmt.Errorf("passenger %s: %w", passengerID, domain.ErrNotFound)
	}
	return nil
}

func (r *PGBookingRepository) DeleteByFlight(ctx context.Context, flightNumber string) ([]domain.Booking, error) {
	return r.query(ctx, "delete flight bookings",
		`DELETE FROM bookings WHERE flight_number = $1 RETURNING `+bookingColumns, flightNumber)
}

func (r *PGBookingRepository) query(ctx context.Context, op, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return bookings, nil
}

func mapBookingWriteErr(op string, b *domain.Booking, err error) error {
	switch {
	case store.IsConstraint(err, store.UniqueViolation, bookingsSeatKey):
		return fmt.Errorf("flight %s seat %d: %w", b.FlightNumber, b.SeatNumber, domain.ErrSeatTaken)
	case store.IsConstraint(err, store.UniqueViolation, bookingsPKey):
		return fmt.Errorf("passenger %s: %w", b.PassengerID, domain.ErrConflict)
	case store.IsConstraint(err, store.ForeignKeyViolation, bookingsFlightFKey):
		return fmt.Errorf("flight %s: %w", b.FlightNumber, domain.ErrNotFound)
	case store.IsConstraint(err, store.CheckViolation, ""):
		return fmt.Errorf("seat %d: %w", b.SeatNumber, domain.ErrInvalidInput)
	}
	return storeErr(op, err)
}

func scanBooking(row store.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.PassengerID, &b.Name, &b.FlightNumber, &b.SeatNumber); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
