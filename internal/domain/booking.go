package domain

// Booking binds one passenger to one seat of one flight.
type Booking struct {
	PassengerID  string `json:"passenger_id"`
	Name         string `json:"name"`
	FlightNumber string `json:"flight_number"`
	SeatNumber   int    `json:"seat_number"`
}
