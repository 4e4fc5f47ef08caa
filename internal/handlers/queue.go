package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"queuely/internal/auth"
	"queuely/internal/codegen"
	"queuely/internal/logger"
	"queuely/internal/models"
	"queuely/internal/queue"
	"queuely/internal/response"
	"queuely/internal/ws"
)

// JoinRequest is the body of a join. party_id defaults to a random id.
type JoinRequest struct {
	PartyID   string `json:"party_id" binding:"max=64"`
	Name      string `json:"name" binding:"max=80"`
	PartySize int    `json:"party_size" binding:"required,min=1"`
	Priority  string `json:"priority" binding:"omitempty,oneof=normal vip"`
}

// DispatchRequest names the queue to dispatch
type DispatchRequest struct {
	Code string `json:"code" binding:"required"`
}

// ListQueuesQuery are the query parameters of GET /queues
type ListQueuesQuery struct {
	Search string `form:"search" binding:"max=100"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// QueueHandler serves the queue endpoints
type QueueHandler struct {
	svc *queue.Service
	hub *ws.Hub
	log *logger.Logger
}

// NewQueueHandler creates the queue handlers
func NewQueueHandler(svc *queue.Service, hub *ws.Hub, log *logger.Logger) *QueueHandler {
	return &QueueHandler{svc: svc, hub: hub, log: log.WithComponent("queue-handler")}
}

// queueCode reads and normalizes the :code path parameter
func queueCode(c *gin.Context) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if !codegen.Valid(code) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_QUEUE_CODE",
			Message: "Queue code must be 6 letters or digits",
		})
		return "", false
	}
	return code, true
}

// Create godoc
// @Summary		Create a queue
// @Description	Allocates a fresh 6-character code and opens the queue
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			queue	body		models.QueueConfig	true	"Queue configuration"
// @Security		BearerAuth
// @Success		201	{object}	models.Queue
// @Failure		400	{object}	response.ErrorResponse	"VALIDATION_ERROR"
// @Failure		401	{object}	response.ErrorResponse	"NO_AUTH_HEADER, INVALID_TOKEN"
// @Failure		503	{object}	response.ErrorResponse	"STORE_UNAVAILABLE, CODE_GENERATION_EXHAUSTED"
// @Router			/queue/create [post]
func (h *QueueHandler) Create(c *gin.Context) {
	var cfg models.QueueConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		validationError(c, err)
		return
	}

	q, err := h.svc.CreateQueue(c.Request.Context(), auth.ProviderID(c), cfg)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// Join godoc
// @Summary		Join a queue
// @Description	Places the party into the first block with room, opening a new block when none has room
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			code	path		string		true	"Queue code"
// @Param			party	body		JoinRequest	true	"Party"
// @Success		200	{object}	response.JoinResponse
// @Failure		400	{object}	response.ErrorResponse	"INVALID_QUEUE_CODE, VALIDATION_ERROR"
// @Failure		404	{object}	response.ErrorResponse	"QUEUE_NOT_FOUND"
// @Failure		409	{object}	response.ErrorResponse	"QUEUE_CLOSED, ALREADY_IN_QUEUE, CONCURRENT_MODIFICATION"
// @Failure		422	{object}	response.ErrorResponse	"PARTY_EXCEEDS_CAPACITY"
// @Router			/queue/join/{code} [post]
func (h *QueueHandler) Join(c *gin.Context) {
	code, ok := queueCode(c)
	if !ok {
		return
	}
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	adm, err := h.svc.JoinQueue(c.Request.Context(), code, models.Party{
		ID:          strings.TrimSpace(req.PartyID),
		DisplayName: req.Name,
		Size:        req.PartySize,
		Priority:    models.Priority(req.Priority),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, response.JoinResponse{
		Message:        "joined",
		PartyID:        adm.PartyID,
		BlockID:        adm.BlockID,
		Position:       adm.Position,
		BlockOccupancy: adm.Occupancy,
		BlockCapacity:  adm.Capacity,
	})
}

// Leave godoc
// @Summary		Leave a queue
// @Description	Removes a waiting party from its block
// @Tags			queue
// @Produce		json
// @Param			code		path		string	true	"Queue code"
// @Param			party_id	path		string	true	"Party id"
// @Success		200	{object}	response.SuccessResponse
// @Failure		404	{object}	response.ErrorResponse	"QUEUE_NOT_FOUND, NOT_IN_QUEUE"
// @Router			/queue/leave/{code}/{party_id} [delete]
func (h *QueueHandler) Leave(c *gin.Context) {
	code, ok := queueCode(c)
	if !ok {
		return
	}
	if err := h.svc.LeaveQueue(c.Request.Context(), code, c.Param("party_id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "left the queue"})
}

// Get godoc
// @Summary		Get a queue
// @Description	Returns metadata, counter and blocks to the owner
// @Tags			queue
// @Produce		json
// @Param			code	path		string	true	"Queue code"
// @Security		BearerAuth
// @Success		200	{object}	models.QueueView
// @Failure		403	{object}	response.ErrorResponse	"FORBIDDEN"
// @Failure		404	{object}	response.ErrorResponse	"QUEUE_NOT_FOUND"
// @Router			/queue/{code} [get]
func (h *QueueHandler) Get(c *gin.Context) {
	code, ok := queueCode(c)
	if !ok {
		return
	}
	view, err := h.svc.GetQueue(c.Request.Context(), code, auth.ProviderID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Status godoc
// @Summary		Queue status
// @Description	Public summary of a queue: open state, open blocks and waiting people
// @Tags			queue
// @Produce		json
// @Param			code	path		string	true	"Queue code"
// @Success		200	{object}	models.QueueStatus
// @Failure		404	{object}	response.ErrorResponse	"QUEUE_NOT_FOUND"
// @Router			/queue/{code}/status [get]
func (h *QueueHandler) Status(c *gin.Context) {
	code, ok := queueCode(c)
	if !ok {
		return
	}
	st, err := h.svc.QueueStatus(c.Request.Context(), code)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// List godoc
// @Summary		List my queues
// @Description	Queues of the caller ordered by name, optionally filtered by a search term
// @Tags			queue
// @Produce		json
// @Param			search	query		string	false	"Search term"
// @Param			limit	query		int		false	"Page size (1-100, default 50)"
// @Param			offset	query		int		false	"Offset"
// @Security		BearerAuth
// @Success		200	{object}	response.QueueListResponse
// @Failure		400	{object}	response.ErrorResponse	"VALIDATION_ERROR"
// @Router			/queues [get]
func (h *QueueHandler) List(c *gin.Context) {
	var q ListQueuesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		validationError(c, err)
		return
	}

	res, err := h.svc.ListQueues(c.Request.Context(), auth.ProviderID(c), queue.ListQuery{
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.QueueListResponse{
		Queues: res.Queues,
		Total:  res.Total,
		Limit:  res.Limit,
		Offset: res.Offset,
	})
}

// Update godoc
// @Summary		Update a queue
// @Description	Merges the given fields. max_block_capacity cannot be changed.
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			code	path		string				true	"Queue code"
// @Param			patch	body		models.QueuePatch	true	"Fields to change"
// @Security		BearerAuth
// @Success		200	{object}	models.Queue
// @Failure		400	{object}	response.ErrorResponse	"IMMUTABLE_FIELD, VALIDATION_ERROR"
// @Failure		403	{object}	response.ErrorResponse	"FORBIDDEN"
// @Failure		404	{object}	response.ErrorResponse	"QUEUE_NOT_FOUND"
// @Router			/queue/update/{code} [patch]
func (h *QueueHandler) Update(c *gin.Context) {
	code, ok := queueCode(c)
	if !ok {
		return
	}
	var patch models.QueuePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		validationError(c, err)
		return
	}

	q, err := h.svc.UpdateQueue(c.Request.Context(), code, auth.ProviderID(c), patch)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// Close godoc
// @Summary		Close a queue
// @Description	Stops admission; waiting blocks remain until dispatched
// @Tags			queue
// @Produce		json
// @Param			code	path		string	true	"Queue code"
// @Security		BearerAuth
// @Success		200	{object}	models.Queue
// @Failure		403	{object}	response.ErrorResponse	"FORBIDDEN"
// @Failure		404	{object}	response.ErrorResponse	"QUEUE_NOT_FOUND"
// @Router			/queue/close/{code} [patch]
func (h *QueueHandler) Close(c *gin.Context) {
	code, ok := queueCode(c)
	if !ok {
		return
	}
	q, err := h.svc.CloseQueue(c.Request.Context(), code, auth.ProviderID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// Delete godoc
// @Summary		Delete a queue
// @Description	Removes the queue, its blocks and counters
// @Tags			queue
// @Produce		json
// @Param			code	path		string	true	"Queue code"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		403	{object}	response.ErrorResponse	"FORBIDDEN"
// @Failure		404	{object}	response.ErrorResponse	"QUEUE_NOT_FOUND"
// @Router			/queue/delete/{code} [delete]
func (h *QueueHandler) Delete(c *gin.Context) {
	code, ok := queueCode(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteQueue(c.Request.Context(), code, auth.ProviderID(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "queue deleted"})
}

// Dispatch godoc
// @Summary		Dispatch the oldest open block
// @Description	Marks the oldest open block as served. Succeeds without a block when none is open.
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			body	body		DispatchRequest	true	"Queue code"
// @Security		BearerAuth
// @Success		200	{object}	response.DispatchResponse
// @Failure		403	{object}	response.ErrorResponse	"FORBIDDEN"
// @Failure		404	{object}	response.ErrorResponse	"QUEUE_NOT_FOUND"
// @Router			/queue/dispatch [post]
func (h *QueueHandler) Dispatch(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !codegen.Valid(code) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_QUEUE_CODE",
			Message: "Queue code must be 6 letters or digits",
		})
		return
	}

	b, err := h.svc.DispatchQueue(c.Request.Context(), code, auth.ProviderID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if b == nil {
		c.JSON(http.StatusOK, response.DispatchResponse{Message: "no open blocks"})
		return
	}
	c.JSON(http.StatusOK, response.DispatchResponse{Message: "block dispatched", Block: b})
}

// Subscribe godoc
// @Summary		Queue event stream
// @Description	Upgrades to a WebSocket that receives join, leave, dispatch, update and delete events
// @Tags			queue
// @Param			code	path	string	true	"Queue code"
// @Success		101
// @Failure		404	{object}	response.ErrorResponse	"QUEUE_NOT_FOUND"
// @Router			/queue/{code}/ws [get]
func (h *QueueHandler) Subscribe(c *gin.Context) {
	code, ok := queueCode(c)
	if !ok {
		return
	}
	if _, err := h.svc.QueueStatus(c.Request.Context(), code); err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, code); err != nil {
		h.log.Debug("websocket closed", "code", code, "error", err)
	}
}
