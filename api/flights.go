package api

import (
	"net/http"

	"github.com/Domenick1991/airreserve/internal/service/inventory"
	"github.com/Domenick1991/airreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	reservations reservation.ReservationUseCase
	inventory    inventory.InventoryUseCase
}

type deleteFlightResponse struct {
	FlightNumber    string `json:"flight_number"`
	RemovedBookings int    `json:"removed_bookings"`
}

func NewFlightHandler(reservations reservation.ReservationUseCase, inventory inventory.InventoryUseCase) *FlightHandler {
	return &FlightHandler{reservations: reservations, inventory: inventory}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:number", h.get)
	router.PUT("/:number", h.modify)
	router.DELETE("/:number", h.delete)
	router.GET("/:number/seats", h.seats)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.inventory.ListFlights(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req reservation.CreateFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	flight, err := h.reservations.CreateFlight(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.inventory.GetFlight(c.Request.Context(), c.Param("number"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) modify(c *gin.Context) {
	var req reservation.ModifyFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	flight, err := h.reservations.ModifyFlight(c.Request.Context(), c.Param("number"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) delete(c *gin.Context) {
	number := c.Param("number")
	removed, err := h.reservations.DeleteFlightCascade(c.Request.Context(), number)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleteFlightResponse{FlightNumber: number, RemovedBookings: len(removed)})
}

func (h *FlightHandler) seats(c *gin.Context) {
	seatMap, err := h.inventory.SeatMap(c.Request.Context(), c.Param("number"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seatMap)
}
