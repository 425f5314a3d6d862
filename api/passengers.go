package api

import (
	"net/http"

	"github.com/Domenick1991/airreserve/internal/service/inventory"
	"github.com/gin-gonic/gin"
)

type PassengerHandler struct {
	inventory inventory.InventoryUseCase
}

func NewPassengerHandler(inventory inventory.InventoryUseCase) *PassengerHandler {
	return &PassengerHandler{inventory: inventory}
}

func (h *PassengerHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *PassengerHandler) list(c *gin.Context) {
	bookings, err := h.inventory.ListPassengers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *PassengerHandler) get(c *gin.Context) {
	booking, err := h.inventory.GetPassenger(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
