package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/detailing-scheduler/internal/middleware"
	ucOrder "github.com/BruksfildServices01/detailing-scheduler/internal/usecase/order"
)

// ======================================================
// HANDLER
// ======================================================

type OrderHandler struct {
	create *ucOrder.CreateOrder
	update *ucOrder.UpdateOrder
	delete *ucOrder.DeleteOrder
	list   *ucOrder.ListOrders
	log    *zap.SugaredLogger
}

func NewOrderHandler(
	create *ucOrder.CreateOrder,
	update *ucOrder.UpdateOrder,
	del *ucOrder.DeleteOrder,
	list *ucOrder.ListOrders,
	log *zap.SugaredLogger,
) *OrderHandler {
	return &OrderHandler{
		create: create,
		update: update,
		delete: del,
		list:   list,
		log:    log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateOrderRequest struct {
	ClientID   string   `json:"client_id"`
	CarID      string   `json:"car_id"`
	ServiceIDs []string `json:"service_ids"`
	StartTime  string   `json:"start_time"`
	EmployeeID *string  `json:"employee_id"`
}

// ======================================================
// CREATE
// ======================================================

func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	o, err := h.create.Execute(c.Request.Context(), ucOrder.CreateOrderInput{
		Origin:     domain.OriginAdmin,
		ClientID:   req.ClientID,
		CarID:      req.CarID,
		ServiceIDs: req.ServiceIDs,
		StartTime:  req.StartTime,
		EmployeeID: req.EmployeeID,
		ActorID:    middleware.ActorID(c),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.Created(c, gin.H{"_id": o.ID})
}

// ======================================================
// UPDATE
// ======================================================

func (h *OrderHandler) Update(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		invalidRequest(c, err)
		return
	}

	var upd ucOrder.OrderUpdate
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&upd); err != nil {
		invalidRequest(c, err)
		return
	}

	o, err := h.update.Execute(c.Request.Context(), c.Param("id"), upd, middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

// ======================================================
// DELETE
// ======================================================

func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.delete.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted."})
}

// ======================================================
// LIST
// ======================================================

func (h *OrderHandler) List(c *gin.Context) {
	items, err := h.list.Execute(c.Request.Context(), ucOrder.ListOrdersInput{
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.List(c, items)
}
