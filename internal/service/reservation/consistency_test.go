package reservation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/Domenick1991/airreserve/internal/repository"
	"github.com/Domenick1991/airreserve/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryEngine struct {
	service  *ReservationService
	flights  repository.FlightRepository
	bookings repository.BookingRepository
}

func newMemoryEngine(t *testing.T, flights ...CreateFlightInput) *memoryEngine {
	t.Helper()
	db := memory.New()
	e := &memoryEngine{
		flights:  memory.NewFlightRepository(db),
		bookings: memory.NewBookingRepository(db),
	}
	e.service = NewReservationService(db, e.flights, e.bookings, zap.NewNop())
	for _, f := range flights {
		_, err := e.service.CreateFlight(context.Background(), f)
		require.NoError(t, err)
	}
	return e
}

func flightInput(number string, total int) CreateFlightInput {
	return CreateFlightInput{FlightNumber: number, AirlineName: "Aero", StartingPoint: "JFK", Destination: "LAX", TotalTickets: total}
}

// assertConsistent checks the counter of every flight against its bookings and that
// no two bookings share a seat.
func (e *memoryEngine) assertConsistent(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	flights, err := e.flights.List(ctx)
	require.NoError(t, err)
	bookings, err := e.bookings.List(ctx)
	require.NoError(t, err)

	perFlight := make(map[string]int)
	seats := make(map[string]string)
	for _, b := range bookings {
		perFlight[b.FlightNumber]++
		key := fmt.Sprintf("%s/%d", b.FlightNumber, b.SeatNumber)
		holder, dup := seats[key]
		assert.False(t, dup, "seat %s held by %s and %s", key, holder, b.PassengerID)
		seats[key] = b.PassengerID
	}
	for _, f := range flights {
		assert.Equal(t, f.TotalTickets-perFlight[f.FlightNumber], f.AvailableTickets, "flight %s", f.FlightNumber)
		assert.GreaterOrEqual(t, f.AvailableTickets, 0)
	}
}

func (e *memoryEngine) available(t *testing.T, flightNumber string) int {
	t.Helper()
	f, err := e.flights.Get(context.Background(), flightNumber)
	require.NoError(t, err)
	return f.AvailableTickets
}

func TestReservation_WalkThrough(t *testing.T) {
	e := newMemoryEngine(t, flightInput("AA100", 2))
	ctx := context.Background()

	_, err := e.service.Reserve(ctx, ReserveInput{PassengerID: "P1", Name: "Ann", FlightNumber: "AA100", SeatNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, e.available(t, "AA100"))

	_, err = e.service.Reserve(ctx, ReserveInput{PassengerID: "P2", Name: "Bob", FlightNumber: "AA100", SeatNumber: 1})
	assert.ErrorIs(t, err, domain.ErrSeatTaken)

	_, err = e.service.Reserve(ctx, ReserveInput{PassengerID: "P2", Name: "Bob", FlightNumber: "AA100", SeatNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, e.available(t, "AA100"))

	_, err = e.service.Reserve(ctx, ReserveInput{PassengerID: "P3", Name: "Cid", FlightNumber: "AA100", SeatNumber: 3})
	assert.ErrorIs(t, err, domain.ErrExhausted)

	_, err = e.service.CancelReservation(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 1, e.available(t, "AA100"))

	seats, err := e.bookings.TakenSeats(ctx, "AA100")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, seats)
	e.assertConsistent(t)
}

func TestReservation_FailedReserveLeavesStateUnchanged(t *testing.T) {
	e := newMemoryEngine(t, flightInput("AA100", 1))
	ctx := context.Background()

	_, err := e.service.Reserve(ctx, ReserveInput{PassengerID: "P1", Name: "Ann", FlightNumber: "AA100", SeatNumber: 1})
	require.NoError(t, err)

	_, err = e.service.Reserve(ctx, ReserveInput{PassengerID: "P2", Name: "Bob", FlightNumber: "AA100", SeatNumber: 2})
	assert.ErrorIs(t, err, domain.ErrExhausted)

	exists, err := e.bookings.Exists(ctx, "P2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 0, e.available(t, "AA100"))
}

func TestReservation_ModifyBookingMovesCounters(t *testing.T) {
	e := newMemoryEngine(t, flightInput("AA100", 2), flightInput("BB200", 1))
	ctx := context.Background()

	_, err := e.service.Reserve(ctx, ReserveInput{PassengerID: "P1", Name: "Ann", FlightNumber: "AA100", SeatNumber: 1})
	require.NoError(t, err)

	_, err = e.service.ModifyBooking(ctx, ModifyBookingInput{PassengerID: "P1", Name: "Ann", FlightNumber: "BB200", SeatNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, e.available(t, "AA100"))
	assert.Equal(t, 0, e.available(t, "BB200"))

	_, err = e.service.Reserve(ctx, ReserveInput{PassengerID: "P2", Name: "Bob", FlightNumber: "AA100", SeatNumber: 2})
	require.NoError(t, err)
	_, err = e.service.ModifyBooking(ctx, ModifyBookingInput{PassengerID: "P2", Name: "Bob", FlightNumber: "BB200", SeatNumber: 2})
	assert.ErrorIs(t, err, domain.ErrExhausted)

	e.assertConsistent(t)
}

func TestReservation_DeleteFlightCascade(t *testing.T) {
	e := newMemoryEngine(t, flightInput("AA100", 3), flightInput("BB200", 3))
	ctx := context.Background()

	for i, id := range []string{"P1", "P2"} {
		_, err := e.service.Reserve(ctx, ReserveInput{PassengerID: id, Name: id, FlightNumber: "AA100", SeatNumber: i + 1})
		require.NoError(t, err)
	}
	_, err := e.service.Reserve(ctx, ReserveInput{PassengerID: "P3", Name: "P3", FlightNumber: "BB200", SeatNumber: 1})
	require.NoError(t, err)

	removed, err := e.service.DeleteFlightCascade(ctx, "AA100")
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	exists, err := e.flights.Exists(ctx, "AA100")
	require.NoError(t, err)
	assert.False(t, exists)
	seats, err := e.bookings.TakenSeats(ctx, "AA100")
	require.NoError(t, err)
	assert.Empty(t, seats)
	left, err := e.bookings.Exists(ctx, "P3")
	require.NoError(t, err)
	assert.True(t, left)

	_, err = e.service.DeleteFlightCascade(ctx, "AA100")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	e.assertConsistent(t)
}

func TestReservation_ModifyFlightCapacity(t *testing.T) {
	e := newMemoryEngine(t, flightInput("AA100", 3))
	ctx := context.Background()

	for i, id := range []string{"P1", "P2"} {
		_, err := e.service.Reserve(ctx, ReserveInput{PassengerID: id, Name: id, FlightNumber: "AA100", SeatNumber: i + 1})
		require.NoError(t, err)
	}

	one := 1
	_, err := e.service.ModifyFlight(ctx, "AA100", ModifyFlightInput{TotalTickets: &one})
	assert.ErrorIs(t, err, domain.ErrCapacityViolation)
	assert.Equal(t, 1, e.available(t, "AA100"))

	two := 2
	f, err := e.service.ModifyFlight(ctx, "AA100", ModifyFlightInput{TotalTickets: &two})
	require.NoError(t, err)
	assert.Equal(t, 0, f.AvailableTickets)

	ten := 10
	f, err = e.service.ModifyFlight(ctx, "AA100", ModifyFlightInput{TotalTickets: &ten})
	require.NoError(t, err)
	assert.Equal(t, 8, f.AvailableTickets)
	e.assertConsistent(t)
}

func TestReservation_ConcurrentSameSeat(t *testing.T) {
	e := newMemoryEngine(t, flightInput("AA100", 50))
	const clients = 20

	var wg sync.WaitGroup
	errs := make([]error, clients)
	for i := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.service.Reserve(context.Background(), ReserveInput{
				PassengerID:  fmt.Sprintf("P%02d", i),
				Name:         "racer",
				FlightNumber: "AA100",
				SeatNumber:   7,
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrSeatTaken)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 49, e.available(t, "AA100"))
	e.assertConsistent(t)
}

func TestReservation_ConcurrentLastSeat(t *testing.T) {
	e := newMemoryEngine(t, flightInput("AA100", 3))
	const clients = 12

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.service.Reserve(context.Background(), ReserveInput{
				PassengerID:  fmt.Sprintf("P%02d", i),
				Name:         "racer",
				FlightNumber: "AA100",
				SeatNumber:   i + 1,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, e.available(t, "AA100"))
	e.assertConsistent(t)
}

func TestReservation_RandomOperationsKeepInvariant(t *testing.T) {
	flightNumbers := []string{"AA100", "BB200", "CC300"}
	e := newMemoryEngine(t, flightInput("AA100", 4), flightInput("BB200", 3), flightInput("CC300", 5))
	rng := rand.New(rand.NewSource(42))
	ctx := context.Background()

	for step := 0; step < 500; step++ {
		passenger := fmt.Sprintf("P%d", rng.Intn(15))
		flight := flightNumbers[rng.Intn(len(flightNumbers))]
		seat := rng.Intn(6) + 1

		switch rng.Intn(5) {
		case 0, 1:
			_, _ = e.service.Reserve(ctx, ReserveInput{PassengerID: passenger, Name: passenger, FlightNumber: flight, SeatNumber: seat})
		case 2:
			_, _ = e.service.CancelReservation(ctx, passenger)
		case 3:
			_, _ = e.service.ModifyBooking(ctx, ModifyBookingInput{PassengerID: passenger, Name: passenger, FlightNumber: flight, SeatNumber: seat})
		case 4:
			total := rng.Intn(7)
			_, _ = e.service.ModifyFlight(ctx, flight, ModifyFlightInput{TotalTickets: &total})
		}
		e.assertConsistent(t)
		if t.Failed() {
			t.Fatalf("invariant broken at step %d", step)
		}
	}
}
