package api

import (
	"net/http"

	"github.com/Domenick1991/airreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.reserve)
	router.PUT("/:passenger_id", h.modify)
	router.DELETE("/:passenger_id", h.cancel)
}

func (h *ReservationHandler) reserve(c *gin.Context) {
	var req reservation.ReserveInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := h.service.Reserve(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *ReservationHandler) modify(c *gin.Context) {
	var req reservation.ModifyBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.PassengerID = c.Param("passenger_id")

	booking, err := h.service.ModifyBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	booking, err := h.service.CancelReservation(c.Request.Context(), c.Param("passenger_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
