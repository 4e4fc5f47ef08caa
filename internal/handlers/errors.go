package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"queuely/internal/logger"
	"queuely/internal/queue"
	"queuely/internal/response"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var errorTable = []errorMapping{
	{queue.ErrQueueNotFound, http.StatusNotFound, "QUEUE_NOT_FOUND", "Queue not found"},
	{queue.ErrOwnerNotFound, http.StatusNotFound, "PROVIDER_NOT_FOUND", "Service provider not found"},
	{queue.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Queue belongs to another service provider"},
	{queue.ErrImmutableField, http.StatusBadRequest, "IMMUTABLE_FIELD", "max_block_capacity cannot be changed"},
	{queue.ErrInvalidConfig, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid queue configuration"},
	{queue.ErrInvalidParty, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid party"},
	{queue.ErrPartyExceedsCapacity, http.StatusUnprocessableEntity, "PARTY_EXCEEDS_CAPACITY", "Party is larger than the queue allows"},
	{queue.ErrQueueClosed, http.StatusConflict, "QUEUE_CLOSED", "Queue is closed"},
	{queue.ErrAlreadyJoined, http.StatusConflict, "ALREADY_IN_QUEUE", "Party is already waiting in this queue"},
	{queue.ErrPartyNotFound, http.StatusNotFound, "NOT_IN_QUEUE", "Party is not waiting in this queue"},
	{queue.ErrConcurrentModification, http.StatusConflict, "CONCURRENT_MODIFICATION", "Queue is busy, try again"},
	{queue.ErrStoreUnavailable, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Queue store unavailable"},
	{queue.ErrCodeGenerationExhausted, http.StatusServiceUnavailable, "CODE_GENERATION_EXHAUSTED", "Could not allocate a queue code"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out"},
	{context.Canceled, http.StatusGatewayTimeout, "TIMEOUT", "Request cancelled"},
}

// writeError maps a service error onto the API error envelope
func writeError(c *gin.Context, log *logger.Logger, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			c.JSON(m.status, response.ErrorResponse{
				Code:    m.code,
				Message: m.message,
				Details: err.Error(),
			})
			return
		}
	}

	log = logger.FromContext(c.Request.Context(), log)
	log.Error("unhandled error", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, response.ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	})
}

func validationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorResponse{
		Code:    "VALIDATION_ERROR",
		Message: "Invalid request",
		Details: err.Error(),
	})
}
