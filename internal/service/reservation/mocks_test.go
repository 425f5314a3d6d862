package reservation

import (
	"context"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) Exists(ctx context.Context, flightNumber string) (bool, error) {
	args := m.Called(ctx, flightNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) Get(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetForUpdate(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, flightNumber string, upd domain.FlightUpdate) (*domain.Flight, error) {
	args := m.Called(ctx, flightNumber, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) AdjustAvailable(ctx context.Context, flightNumber string, delta int) (bool, error) {
	args := m.Called(ctx, flightNumber, delta)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) Delete(ctx context.Context, flightNumber string) error {
	args := m.Called(ctx, flightNumber)
	return args.Error(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Exists(ctx context.Context, passengerID string) (bool, error) {
	args := m.Called(ctx, passengerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) Get(ctx context.Context, passengerID string) (*domain.Booking, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetForUpdate(ctx context.Context, passengerID string) (*domain.Booking, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) TakenSeats(ctx context.Context, flightNumber string) ([]int, error) {
	args := m.Called(ctx, flightNumber)
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockBookingRepository) IsSeatTaken(ctx context.Context, flightNumber string, seat int, excludePassengerID string) (bool, error) {
	args := m.Called(ctx, flightNumber, seat, excludePassengerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) CountByFlight(ctx context.Context, flightNumber string) (int, error) {
	args := m.Called(ctx, flightNumber)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, passengerID string) error {
	args := m.Called(ctx, passengerID)
	return args.Error(0)
}

func (m *MockBookingRepository) DeleteByFlight(ctx context.Context, flightNumber string) ([]domain.Booking, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value any) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

// MockTransactor runs fn directly and records how many scopes were opened.
type MockTransactor struct {
	opened int
}

func (m *MockTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.opened++
	return fn(ctx)
}

func (m *MockTransactor) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.opened++
	return fn(ctx)
}
