package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/Domenick1991/airreserve/internal/store"
)

type FlightRepository interface {
	Exists(ctx context.Context, flightNumber string) (bool, error)
	Get(ctx context.Context, flightNumber string) (*domain.Flight, error)
	GetForUpdate(ctx context.Context, flightNumber string) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flightNumber string, upd domain.FlightUpdate) (*domain.Flight, error)
	AdjustAvailable(ctx context.Context, flightNumber string, delta int) (bool, error)
	Delete(ctx context.Context, flightNumber string) error
}

const flightColumns = `flight_number, airline_name, starting_point, destination, total_tickets, available_tickets`

type PGFlightRepository struct {
	db store.Querier
}

func NewFlightRepository(db store.Querier) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) Exists(ctx context.Context, flightNumber string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE flight_number = $1)`, flightNumber).Scan(&exists); err != nil {
		return false, storeErr("flight exists", err)
	}
	return exists, nil
}

func (r *PGFlightRepository) Get(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	return r.get(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_number = $1`, flightNumber)
}

func (r *PGFlightRepository) GetForUpdate(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	return r.get(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_number = $1 FOR UPDATE`, flightNumber)
}

func (r *PGFlightRepository) get(ctx context.Context, query, flightNumber string) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, query, flightNumber))
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return nil, fmt.Errorf("flight %s: %w", flightNumber, domain.ErrNotFound)
		}
		return nil, storeErr("get flight", err)
	}
	return f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY flight_number`)
	if err != nil {
		return nil, storeErr("list flights", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, storeErr("list flights", err)
		}
		flights = append(flights, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list flights", err)
	}
	return flights, nil
}

// Create inserts flight with every ticket available.
func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	flight.AvailableTickets = flight.TotalTickets
	_, err := r.db.Exec(ctx, `INSERT INTO flights (`+flightColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		flight.FlightNumber, flight.AirlineName, flight.StartingPoint, flight.Destination, flight.TotalTickets, flight.AvailableTickets)
	if err != nil {
		if store.IsConstraint(err, store.UniqueViolation, "") {
			return fmt.Errorf("flight %s: %w", flight.FlightNumber, domain.ErrConflict)
		}
		if store.IsConstraint(err, store.CheckViolation, "") {
			return fmt.Errorf("flight %s: %w: %w", flight.FlightNumber, domain.ErrInvalidInput, err)
		}
		return storeErr("create flight", err)
	}
	return nil
}

func (r *PGFlightRepository) Update(ctx context.Context, flightNumber string, upd domain.FlightUpdate) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `UPDATE flights SET
		airline_name = COALESCE($2, airline_name),
		starting_point = COALESCE($3, starting_point),
		destination = COALESCE($4, destination),
		total_tickets = COALESCE($5, total_tickets),
		available_tickets = COALESCE($6, available_tickets)
		WHERE flight_number = $1
		RETURNING `+flightColumns,
		flightNumber, upd.AirlineName, upd.StartingPoint, upd.Destination, upd.TotalTickets, upd.AvailableTickets))
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return nil, fmt.Errorf("flight %s: %w", flightNumber, domain.ErrNotFound)
		}
		if store.IsConstraint(err, store.CheckViolation, "") {
			return nil, fmt.Errorf("flight %s: %w", flightNumber, domain.ErrCapacityViolation)
		}
		return nil, storeErr("update flight", err)
	}
	return f, nil
}

// AdjustAvailable adds delta to the available counter. It reports false, with no error,
// when the flight row does not exist.
func (r *PGFlightRepository) AdjustAvailable(ctx context.Context, flightNumber string, delta int) (bool, error) {
	n, err := r.db.Exec(ctx, `UPDATE flights SET available_tickets = available_tickets + $2 WHERE flight_number = $1`, flightNumber, delta)
	if err != nil {
		if store.IsConstraint(err, store.CheckViolation, "") {
			if delta < 0 {
				return false, fmt.Errorf("flight %s: %w", flightNumber, domain.ErrExhausted)
			}
			return false, fmt.Errorf("flight %s: %w", flightNumber, domain.ErrCapacityViolation)
		}
		return false, storeErr("adjust available tickets", err)
	}
	return n > 0, nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, flightNumber string) error {
	n, err := r.db.Exec(ctx, `DELETE FROM flights WHERE flight_number = $1`, flightNumber)
	if err != nil {
		if store.IsConstraint(err, store.ForeignKeyViolation, "") {
			return fmt.Errorf("flight %s still has bookings: %w", flightNumber, domain.ErrConflict)
		}
		return storeErr("delete flight", err)
	}
	if n == 0 {
		return fmt.Errorf("flight %s: %w", flightNumber, domain.ErrNotFound)
	}
	return nil
}

func scanFlight(row store.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.FlightNumber, &f.AirlineName, &f.StartingPoint, &f.Destination, &f.TotalTickets, &f.AvailableTickets); err != nil {
		return nil, err
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
