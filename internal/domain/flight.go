package domain

type Flight struct {
	FlightNumber     string `json:"flight_number"`
	AirlineName      string `json:"airline_name"`
	StartingPoint    string `json:"starting_point"`
	Destination      string `json:"destination"`
	TotalTickets     int    `json:"total_tickets"`
	AvailableTickets int    `json:"available_tickets"`
}

// Booked is the number of seats the counter says are held.
func (f Flight) Booked() int {
	return f.TotalTickets - f.AvailableTickets
}

// FlightUpdate carries the columns a flight update writes. Nil fields are left untouched.
type FlightUpdate struct {
	AirlineName      *string
	StartingPoint    *string
	Destination      *string
	TotalTickets     *int
	AvailableTickets *int
}

// Apply returns f with every non-nil field of u written over it.
func (u FlightUpdate) Apply(f Flight) Flight {
	if u.AirlineName != nil {
		f.AirlineName = *u.AirlineName
	}
	if u.StartingPoint != nil {
		f.StartingPoint = *u.StartingPoint
	}
	if u.Destination != nil {
		f.Destination = *u.Destination
	}
	if u.TotalTickets != nil {
		f.TotalTickets = *u.TotalTickets
	}
	if u.AvailableTickets != nil {
		f.AvailableTickets = *u.AvailableTickets
	}
	return f
}

// SeatMap is a snapshot of which seats of a flight are held and which are still free.
type SeatMap struct {
	FlightNumber     string `json:"flight_number"`
	TotalTickets     int    `json:"total_tickets"`
	AvailableTickets int    `json:"available_tickets"`
	Taken            []int  `json:"taken"`
	Free             []int  `json:"free"`
}

// NewSeatMap lists seats 1..TotalTickets that are not in taken. Taken seats above the
// capacity (possible after an administrative resize) are reported but never free.
func NewSeatMap(f Flight, taken []int) SeatMap {
	held := make(map[int]struct{}, len(taken))
	for _, s := range taken {
		held[s] = struct{}{}
	}
	free := make([]int, 0, f.AvailableTickets)
	for s := 1; s <= f.TotalTickets; s++ {
		if _, ok := held[s]; !ok {
			free = append(free, s)
		}
	}
	if taken == nil {
		taken = []int{}
	}
	return SeatMap{
		FlightNumber:     f.FlightNumber,
		TotalTickets:     f.TotalTickets,
		AvailableTickets: f.AvailableTickets,
		Taken:            taken,
		Free:             free,
	}
}
