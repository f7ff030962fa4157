package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loayeid/shophub/internal/adapter/http/middleware"
	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/usecase"
)

// AdminOrderHandler backs the staff order console: list everything, drive
// the status lifecycle. Routes sit behind Require(admin, manager).
type AdminOrderHandler struct {
	orders usecase.OrderRepo
	update *usecase.UpdateStatus
}

func NewAdminOrderHandler(orders usecase.OrderRepo, update *usecase.UpdateStatus) *AdminOrderHandler {
	return &AdminOrderHandler{orders: orders, update: update}
}

func (h *AdminOrderHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.orders.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type editOrderReq struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Refund  bool   `json:"refund"`
}

func (h *AdminOrderHandler) Edit(c *gin.Context) {
	var req editOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	if req.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_order_id"})
		return
	}

	actor, _ := middleware.Principal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.update.Execute(ctx, actor, usecase.UpdateStatusInput{
		OrderID: req.OrderID,
		Status:  entity.OrderStatus(req.Status),
		Refund:  req.Refund,
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		case errors.Is(err, usecase.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		case errors.Is(err, usecase.ErrMissingStatus), errors.Is(err, entity.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, usecase.ErrConcurrentUpdate):
			c.JSON(http.StatusConflict, gin.H{"error": "concurrent_update"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
