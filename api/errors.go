package api

import (
	"net/http"

	"github.com/Domenick1991/airreserve/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string      `json:"error"`
	Kind  domain.Kind `json:"kind"`
}

var statusByKind = map[domain.Kind]int{
	domain.KindInvalidInput:      http.StatusBadRequest,
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindConflict:          http.StatusConflict,
	domain.KindSeatTaken:         http.StatusConflict,
	domain.KindExhausted:         http.StatusConflict,
	domain.KindCapacityViolation: http.StatusUnprocessableEntity,
	domain.KindStore:             http.StatusInternalServerError,
}

// writeError renders err with the status of its kind. Store and unclassified errors
// reach the client as a generic message and stay attached to the context for logging.
func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Kind: kind})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: domain.KindInvalidInput})
}
